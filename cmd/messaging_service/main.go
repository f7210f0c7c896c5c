package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	_ "brand_collab_service/docs" // generated swagger docs
	"brand_collab_service/internal/api/handlers"
	apirouter "brand_collab_service/internal/api/router"
	chatapp "brand_collab_service/internal/chat/app"
	"brand_collab_service/internal/chat/events"
	"brand_collab_service/internal/chat/presence"
	chatrepo "brand_collab_service/internal/chat/repository"
	chatrouter "brand_collab_service/internal/chat/router"
	identityapp "brand_collab_service/internal/identity/app"
	identitydomain "brand_collab_service/internal/identity/domain"
	identityrepo "brand_collab_service/internal/identity/repository"
	"brand_collab_service/pkg/config"
	"brand_collab_service/pkg/database"
	"brand_collab_service/pkg/encrypt"
	"brand_collab_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.MessagingService, config.EnvConfig.MessagingServiceLogPath)
	cfg := config.LoadConfig[config.MessagingService](config.EnvConfig.MessagingService, config.EnvConfig.MessagingServiceYAMLPath)

	// 1. Mongo connection (conversations and messages)
	ctx := context.Background()
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.Mongo.User, cfg.Mongo.Password, cfg.Mongo.Host, cfg.Mongo.Port)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    uri,
			RetryCount:    cfg.Mongo.RetryCount,
			RetryInterval: time.Duration(cfg.Mongo.RetryInterval),
		},
		cfg.Mongo.Database)
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to mongoDB database after retries",
			zap.String("address", fmt.Sprintf("[%s]", uri)),
			zap.Error(err),
		)
	}
	defer mongo.Close(ctx)

	// 2. PostgreSQL connection (accounts)
	sqlParams := fmt.Sprintf("postgres://%s:%s@%s:%d/%s", cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Host, cfg.PostgreSQL.Port, cfg.PostgreSQL.Database)
	pool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    sqlParams,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to postgreSQL database after retries",
			zap.String("address", fmt.Sprintf("[%s]", sqlParams)),
			zap.Error(err),
		)
	}
	defer pool.Close()

	// 3. Redis connection (sessions)
	masterName, addr, sentinel := config.GetRedisSetting()
	redisRepo, err := database.NewRedisRepository[identitydomain.UserSession](masterName, addr, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}

	// 4. Kafka writer (event stream). The service keeps running
	// without it, a nil writer turns the publisher into a no-op.
	var kafkaWriter *kafka.Writer
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaWriter, err = database.NewKafkaWriterWithRetry(database.KafkaConnection{
			Brokers:       cfg.Kafka.Brokers,
			Topic:         cfg.Kafka.Topic,
			RetryCount:    cfg.Kafka.RetryCount,
			RetryInterval: time.Duration(cfg.Kafka.RetryInterval),
		})
		if err != nil {
			logger.Log.Warn(fmt.Sprintf("kafka unreachable, event stream disabled : %v", err))
			kafkaWriter = nil
		}
	}
	defer func() {
		if kafkaWriter != nil {
			kafkaWriter.Close()
		}
	}()

	// 5. Repositories
	conversationRepo := chatrepo.NewMongoConversationRepository(mongo.Database)
	messageRepo := chatrepo.NewMongoMessageRepository(mongo.Database)
	if err := conversationRepo.EnsureIndexes(ctx); err != nil {
		logger.Log.Fatal(fmt.Sprintf("ensure conversation indexes err : %v", err))
	}
	if err := messageRepo.EnsureIndexes(ctx); err != nil {
		logger.Log.Fatal(fmt.Sprintf("ensure message indexes err : %v", err))
	}
	userRepo := identityrepo.NewUserRepository(pool)

	// 6. UseCases
	identityUC := identityapp.NewIdentityUseCase(userRepo, cfg.SessionTTL*time.Minute, redisRepo, encrypt.HashPassword)
	publisher := events.NewKafkaPublisher(kafkaWriter)
	hub := presence.NewHub()
	broadcaster := chatapp.NewHubBroadcaster(hub)
	conversationUC := chatapp.NewConversationUseCase(conversationRepo, messageRepo, identityUC, publisher)
	messageUC := chatapp.NewMessageUseCase(conversationRepo, messageRepo, broadcaster, publisher)
	wsHandler := chatapp.NewChatWebsocketHandler(conversationUC, messageUC, identityUC, hub, broadcaster)

	// 7. Fiber
	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.MessagingServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	apirouter.RegisterRoutes(r,
		handlers.NewUserHandler(identityUC),
		handlers.NewConversationHandler(conversationUC, messageUC),
		handlers.NewMessageHandler(messageUC),
	)
	chatrouter.RegisterRoutes(r, wsHandler)

	// Listen
	port := ":" + cfg.Port
	log.Printf("Messaging Service listening on %s", port)
	if err := r.Listen(port); err != nil {
		log.Fatalf("Failed to start Fiber: %v", err)
	}
}
