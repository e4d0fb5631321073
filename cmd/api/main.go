package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"gemini-chat/cmd/api/router"
	"gemini-chat/cmd/api/services"
	"gemini-chat/internal/logger"
	"gemini-chat/config"
	"gemini-chat/eventbus"
	"gemini-chat/provider"
	"gemini-chat/repositories"
)

// @title           Gemini Chat API
// @version         1.0
// @description     Session-authenticated chat service with persisted conversations
// @BasePath        /
// @securityDefinitions.apikey SessionCookie
// @in              cookie
// @name            chat_session
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repositories.Open(ctx, cfg.Storage)
	if err != nil {
		logger.Log.Errorf("failed to open store: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	adapter, err := provider.FromConfig(cfg.Provider)
	if err != nil {
		logger.Log.Errorf("failed to init provider: %v", err)
		os.Exit(1)
	}

	publisher := newPublisher(cfg.Events)
	defer publisher.Close()

	authSvc, err := services.NewAuthServiceFromConfig(store, cfg.Session)
	if err != nil {
		logger.Log.Errorf("failed to init auth: %v", err)
		os.Exit(1)
	}

	engine := router.New(router.Services{
		Auth: authSvc,
		Turns: services.NewTurnService(store, adapter, services.TurnServiceOptions{
			Publisher: publisher,
			Topic:     cfg.Events.Topic,
			Timeout:   cfg.Provider.Timeout(),
		}),
		Conversations: services.NewConversationService(store),
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           router.WithCORS(engine, cfg.Server.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.InfoWithFields("api server listening", logger.Fields{
			"addr":     srv.Addr,
			"provider": adapter.Name(),
			"storage":  cfg.Storage.Driver,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Errorf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("graceful shutdown failed: %v", err)
	}
}

// newPublisher 는 브로커가 설정된 경우에만 Kafka 로 turn 이벤트를 발행한다.
func newPublisher(cfg config.EventsConfig) eventbus.Publisher {
	if cfg.Brokers == "" || cfg.Topic == "" {
		return eventbus.NoopPublisher{}
	}

	if err := eventbus.EnsureTopic(cfg.Brokers, cfg.Topic, 1); err != nil {
		logger.Log.Warnf("ensure topic %s failed: %v", cfg.Topic, err)
	}

	p, err := eventbus.NewKafkaPublisher(cfg.Brokers)
	if err != nil {
		logger.Log.Warnf("kafka publisher disabled: %v", err)
		return eventbus.NoopPublisher{}
	}
	return p
}
