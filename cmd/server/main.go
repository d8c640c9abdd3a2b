// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/tahcohcat/platepals-web/config"
	"github.com/tahcohcat/platepals-web/internal/api"
	"github.com/tahcohcat/platepals-web/internal/auth"
	"github.com/tahcohcat/platepals-web/internal/llm"
	"github.com/tahcohcat/platepals-web/internal/logger"
	"github.com/tahcohcat/platepals-web/internal/ninjas"
	"github.com/tahcohcat/platepals-web/internal/quiz"
	"github.com/tahcohcat/platepals-web/internal/recipe"
	"github.com/tahcohcat/platepals-web/internal/services"
	"github.com/tahcohcat/platepals-web/internal/store"
	"github.com/tahcohcat/platepals-web/internal/tts"
	"github.com/tahcohcat/platepals-web/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logger.New()
	if err := run(); err != nil {
		log.WithError(err).Error("PlatePals server stopped")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.SetGlobalLevel(cfg.Log.Level)
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profiles, err := store.New(cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}
	defer profiles.Close()

	table, err := services.TableFromConfig(cfg.Gamification)
	if err != nil {
		return fmt.Errorf("invalid achievement table: %w", err)
	}
	engine, err := services.NewAchievementEngine(table)
	if err != nil {
		return err
	}

	bank, err := quiz.NewBank(cfg.Quiz.Dir)
	if err != nil {
		return err
	}

	llmClient, err := llm.NewLLMClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := llmClient.IsModelAvailable(checkCtx); err != nil {
		log.WithError(err).Warn("language model is not reachable, generation will fail until it is")
	}
	cancel()

	var searcher recipe.Searcher
	if cfg.Ninjas.APIKey != "" {
		client, err := ninjas.NewClient(&cfg.Ninjas)
		if err != nil {
			return err
		}
		searcher = client
		log.Info("Recipe search uses API Ninjas")
	}

	adapter := recipe.NewAdapter(llmClient, searcher, cfg.Generation.Cooldown, cfg.Generation.Timeout)
	pantry := recipe.NewPantry(recipe.BeverageExtras, recipe.DessertExtras)
	kitchen := services.NewKitchenService(profiles, adapter, engine, bank, pantry, cfg.Gamification.Points)

	hub := websocket.NewHub()
	kitchen.SetNotifier(hub)

	speaker, err := tts.New(ctx, cfg.Tts)
	if err != nil {
		log.WithError(err).Warn("text to speech unavailable")
		speaker = tts.NewDummyTts()
	}
	if closer, ok := speaker.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	authManager := auth.NewManager(cfg.Auth)
	handler := api.NewKitchenHandler(
		services.NewUserService(profiles, cfg.Auth.HashPasswords),
		services.NewPointsLedger(profiles),
		services.NewLeaderboardService(profiles),
		engine,
		kitchen,
		authManager,
	)

	r := mux.NewRouter()
	api.RegisterRoutes(r, handler, api.NewSpeechHandler(kitchen, speaker), hub)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info(fmt.Sprintf("PlatePals server starting on port %s", cfg.Server.Port))
		log.Info(fmt.Sprintf("Profiles: %s (%s), LLM: %s, achievements: %d, quiz questions: %d",
			cfg.Store.Path, cfg.Store.Backend, cfg.LLM.Provider, len(table), bank.Len()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
