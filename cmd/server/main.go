package main

import (
	"net/http"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"codesync/internal/api"
	"codesync/internal/config"
	"codesync/internal/genie"
	"codesync/internal/hub"
	"codesync/internal/presence"
	"codesync/internal/routers"
	"codesync/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("invalid configuration: " + err.Error())
	}

	var logger *zap.Logger
	if cfg.DevLog {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	registry := session.NewRegistry(logger)
	h := hub.New(logger, registry, nil)

	if cfg.RedisAddr != "" {
		broker := presence.NewBroker(cfg.RedisAddr, logger, h.OnRemotePresence)
		h.SetBroker(broker)
		go broker.Run()
		defer broker.Close()
		logger.Info("presence events enabled",
			zap.String("redisAddr", cfg.RedisAddr),
			zap.String("instanceId", broker.InstanceID()))
	}

	var genieHandler *genie.Handler
	provider, err := genie.NewProvider(cfg.AIProvider)
	if err != nil {
		logger.Warn("assistant endpoint disabled", zap.Error(err))
	} else {
		genieHandler = genie.NewHandler(provider, cfg.AuthSecret, logger)
		logger.Info("assistant endpoint enabled", zap.String("provider", provider.Name()))
	}

	handlers := api.NewHandlers(logger, h, registry)
	router := routers.New(handlers, genieHandler)

	// Free-tier hosts idle out without traffic; ping ourselves every 8 minutes.
	if cfg.SelfURL != "" {
		c := cron.New()
		_, err := c.AddFunc("*/8 * * * *", func() {
			resp, err := http.Get(cfg.SelfURL + "/keep-alive")
			if err != nil {
				logger.Warn("keep-alive ping failed", zap.Error(err))
				return
			}
			_ = resp.Body.Close()
			logger.Info("keep-alive ping", zap.Int("status", resp.StatusCode))
		})
		if err != nil {
			logger.Warn("failed to schedule keep-alive ping", zap.Error(err))
		} else {
			c.Start()
			defer c.Stop()
		}
	}

	addr := ":" + cfg.Port
	logger.Info("codesync server listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
