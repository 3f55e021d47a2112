package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gameplatform/internal/broadcast"
	"gameplatform/internal/cache"
	"gameplatform/internal/config"
	"gameplatform/internal/repository"
	"gameplatform/internal/service"
	"gameplatform/internal/session"
	"gameplatform/internal/transport/rest"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// MongoDB connection
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal(err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())
	db := client.Database(cfg.MongoDatabase)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal(err)
	}

	log.Println("connected to MongoDB and Redis")

	hub := broadcast.NewHub()
	matches := repository.NewMatchRepo(db)
	leaderboard := cache.NewLeaderboardCache(rdb)
	results := service.NewResultService(matches, leaderboard)

	manager := session.NewManager(session.Config{
		Broadcaster: hub,
		Recorder:    results,
		ResetDelay:  cfg.ResetDelay,
		SessionTTL:  cfg.SessionTTL,
	})

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go manager.RunJanitor(janitorCtx, cfg.JanitorPeriod)

	router := rest.NewRouter(&rest.Container{
		Manager:        manager,
		Hub:            hub,
		Leaderboard:    leaderboard,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("server starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	stopJanitor()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
