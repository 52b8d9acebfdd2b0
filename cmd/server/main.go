// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"fortyone/internal/cache"
	"fortyone/internal/database"
	"fortyone/internal/handlers"
	"fortyone/internal/middleware"
	"fortyone/internal/session"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	ctx := context.Background()

	pool, err := database.Connect(ctx)
	if err != nil {
		logger.Fatalf("database connect failed: %v", err)
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		logger.Fatalf("schema setup failed: %v", err)
	}
	store := database.NewStore(pool)

	var queue *cache.PlayQueue
	redisClient, err := cache.Connect(ctx)
	if err != nil {
		logger.Warnf("redis unavailable, play history queue disabled: %v", err)
	} else {
		queue = cache.NewPlayQueue(redisClient)
		defer redisClient.Close()
	}

	sessions := session.NewDirectory(logger)
	dispatcher := handlers.NewDispatcher(store, sessions, queue, logger)

	mux := http.NewServeMux()
	mux.Handle("/game/create", middleware.LogMiddleware(logger)(
		handlers.CreateGameHandler(dispatcher),
	))
	mux.Handle("/game/join", middleware.LogMiddleware(logger)(
		handlers.JoinGameHandler(dispatcher),
	))
	mux.Handle("/game/ws/", middleware.LogMiddleware(logger)(
		handlers.GameWSHandler(logger, dispatcher),
	))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatalf("server exited: %v", err)
	}
}
