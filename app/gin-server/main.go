package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/jobhive/jobhive/config"
	"github.com/jobhive/jobhive/internal/api/handlers"
	"github.com/jobhive/jobhive/internal/api/routes"
	"github.com/jobhive/jobhive/internal/logger"
	mongorepo "github.com/jobhive/jobhive/internal/repositories/mongo"
	"github.com/jobhive/jobhive/internal/services"
	"github.com/jobhive/jobhive/internal/session"
	"github.com/jobhive/jobhive/internal/storage"
)

func main() {
	_ = godotenv.Load()

	l := logger.New()

	if err := config.InitMongo(); err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	l.Info("MongoDB connected")

	if err := config.EnsureMongoIndexes(); err != nil {
		log.Fatalf("MongoDB index error: %v", err)
	}

	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	l.Info("Redis connected")

	db := config.MongoDatabase()
	users := mongorepo.NewUserRepo(db)
	jobs := mongorepo.NewJobRepo(db)
	tx := mongorepo.NewTxRunner(config.MongoClient)

	var uploader storage.Uploader
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		up, err := storage.NewGCSUploader(context.Background(), bucket)
		if err != nil {
			log.Fatalf("GCS init error: %v", err)
		}
		defer up.Close()
		uploader = up
	} else {
		l.Warn("GCS_BUCKET not set; resume upload disabled")
	}

	sessions := session.NewRedisStore(config.RedisClient, sessionTTL())

	userSvc := services.NewUserService(users, uploader, l)
	jobSvc := services.NewJobService(jobs, users, tx, services.JobServiceOptions{
		EnforceOwnerDelete: os.Getenv("ENFORCE_JOB_OWNER_DELETE") == "true",
	})

	r := gin.New()
	r.Use(gin.Recovery())

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{clientURL},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
		}))
	}

	routes.RegisterRoutes(r, routes.Deps{
		Log:      l,
		Sessions: sessions,
		Job:      handlers.NewJobHandler(jobSvc),
		User:     handlers.NewUserHandler(userSvc, sessions),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func sessionTTL() time.Duration {
	if s := os.Getenv("SESSION_TTL_HOURS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return time.Duration(n) * time.Hour
		}
	}
	return 24 * time.Hour
}
