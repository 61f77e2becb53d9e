package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 5 * time.Second

// NewRouter - mounts the game API.
func NewRouter(logger *slog.Logger, game gameUseCase) http.Handler {
	handler := NewGameHandler(logger, game)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.Get("/ping", ping)

	router.Post("/players", handler.CreatePlayer)

	router.Route("/games", func(r chi.Router) {
		r.Post("/", handler.CreateGame)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handler.GetGame)
			r.Get("/board", handler.RenderBoard)
			r.Post("/join", handler.JoinGame)
			r.Post("/moves", handler.MakeMove)
			r.Post("/resign", handler.Resign)
		})
	})

	router.Get("/results", handler.ListResults)
	router.Get("/results/{id}", handler.GetResult)

	return router
}

// Start - serves handler on port until ctx is cancelled, then shuts down gracefully.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	if err := <-shutdownErr; err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
