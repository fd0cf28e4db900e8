package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-attendance/internal/attendance"
	"ms-attendance/internal/attendance/attendance_api"
	attendance_db "ms-attendance/internal/attendance/db"
	"ms-attendance/internal/auth"
	"ms-attendance/internal/config"
	"ms-attendance/internal/database/migrations"
	"ms-attendance/internal/events"
	"ms-attendance/internal/events/db"
	"ms-attendance/internal/events/event_api"
	rediswrap "ms-attendance/internal/events/redis"
	"ms-attendance/internal/kafka"
	"ms-attendance/internal/logger"
	"ms-attendance/internal/models"
)

func connectPostgres(cfg config.DatabaseConfig, log *logger.Logger) *bun.DB {
	if cfg.DSN == "" {
		log.Fatal("CONFIG", "POSTGRES_DSN not set")
	}

	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.DSN)
		if err != nil {
			log.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	log.Info("DATABASE", "PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Attendance Service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	bunDB := connectPostgres(cfg.Database, log)
	defer bunDB.Close()

	if cfg.Database.AutoMigrate {
		runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
		if err := runner.MigrateUp(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migration failed: %v", err))
		}
		log.Info("DATABASE", "Schema migrations applied")
	}

	// Redis is optional: without it every access-code lookup goes to Postgres.
	var eventCache *rediswrap.Redis
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
		}
		defer redisClient.Close()
		eventCache = rediswrap.NewRedis(redisClient, cfg.Redis.CacheTTL)
		log.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))
	} else {
		log.Warn("CONFIG", "REDIS_ADDR not set, access-code caching disabled")
	}

	// Kafka is optional as well; the service only publishes notifications.
	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics)
		defer producer.Close()

		requiredTopics := []string{
			cfg.Kafka.Topics.EventCreated,
			cfg.Kafka.Topics.EventDeleted,
			cfg.Kafka.Topics.AttendanceChecked,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", "Required topics ensured successfully")
		}
	} else {
		log.Info("KAFKA", "Kafka disabled, domain events will not be published")
	}

	eventService := events.NewEventService(&db.DB{Bun: bunDB}, producerOrNil(producer), cacheOrNil(eventCache), log)
	eventService.RecentLimit = cfg.Events.RecentLimit

	attendanceService := attendance.NewAttendanceService(
		&attendance_db.DB{Bun: bunDB},
		attendanceCacheOrNil(eventCache),
		checkInPublisherOrNil(producer),
		log,
	)

	eventHandler := event_api.NewHandler(eventService, log)
	attendanceHandler := attendance_api.NewHandler(attendanceService, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(cfg.Auth))
		log.Info("AUTH", "JWT middleware applied to protected API routes")

		r.Route("/api", func(r chi.Router) {
			// Organizer surface
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(models.RoleOrganizer))

				r.Route("/groups", func(r chi.Router) {
					r.Post("/", eventHandler.CreateGroup)
					r.Get("/", eventHandler.ListGroups)
					r.Patch("/{groupId}/settings", eventHandler.UpdateGroupSettings)
					r.Delete("/{groupId}", eventHandler.DeleteGroup)
					r.Get("/{groupId}/events", eventHandler.ListGroupEvents)
					r.Post("/{groupId}/events", eventHandler.CreateGroupEvent)
				})
				log.Info("ROUTER", "Group routes registered under /api/groups")

				r.Route("/events", func(r chi.Router) {
					r.Get("/standalone", eventHandler.ListStandaloneEvents)
					r.Post("/standalone", eventHandler.CreateStandaloneEvent)
					r.Delete("/{eventId}", eventHandler.DeleteEvent)
					r.Get("/{eventId}/qr", eventHandler.EventQR)
					r.Get("/{eventId}/attendance", attendanceHandler.ListForEvent)
				})
				log.Info("ROUTER", "Event routes registered under /api/events")
			})

			// Participant surface
			r.Get("/events/code/{code}", attendanceHandler.EventByCode)
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(models.RoleParticipant))
				r.Post("/attendance/check-in", attendanceHandler.CheckIn)
			})
			log.Info("ROUTER", "Check-in routes registered under /api/attendance")
		})
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Attendance Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	}
	log.Info("APP", "Server exited gracefully")
}

// The nil-interface wrappers below keep a typed nil from masquerading as a
// non-nil interface inside the services.

func producerOrNil(p *kafka.Producer) events.KafkaPublisher {
	if p == nil {
		return nil
	}
	return p
}

func checkInPublisherOrNil(p *kafka.Producer) attendance.KafkaPublisher {
	if p == nil {
		return nil
	}
	return p
}

func cacheOrNil(c *rediswrap.Redis) events.CodeInvalidator {
	if c == nil {
		return nil
	}
	return c
}

func attendanceCacheOrNil(c *rediswrap.Redis) attendance.EventCache {
	if c == nil {
		return nil
	}
	return c
}
