//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/Kilat-Rental/service-reservation/internal/application"
	"github.com/Kilat-Rental/service-reservation/internal/domain/reservation"
	rentalEvents "github.com/Kilat-Rental/service-reservation/internal/events"
	"github.com/Kilat-Rental/service-reservation/internal/platform/clock"
	"github.com/Kilat-Rental/service-reservation/internal/platform/database"
	"github.com/Kilat-Rental/service-reservation/internal/platform/kafka"
	"github.com/Kilat-Rental/service-reservation/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	Redis        *redis.Client
	KafkaBrokers []string
	Cleanup      func()
}

// reservationStack holds wired-up reservation service components.
type reservationStack struct {
	Sessions        *application.SessionService
	Catalog         *application.CatalogService
	Consumer        *rentalEvents.CatalogEventConsumer
	CleanupProducer func()
}

// setupContainers starts PostgreSQL, Redis and Kafka testcontainers and applies the migrations.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "test_reservation",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	pgConfig := database.PostgresConfig{
		Host: pgHost, Port: pgPort.Port(), User: "test", Password: "test",
		DBName: "test_reservation", SSLMode: "disable",
	}

	var db *gorm.DB
	require.Eventually(t, func() bool {
		db, err = database.Connect(pgConfig, logger)
		return err == nil
	}, 30*time.Second, time.Second, "PostgreSQL not ready for connections")
	require.NoError(t, database.RunMigrations(pgConfig.DatabaseURL(), "migrations", logger))

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start Redis container")
	redisHost, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	redisPort, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)
	redisClient, err := database.ConnectRedis(ctx, fmt.Sprintf("redis://%s:%s/0", redisHost, redisPort.Port()), logger)
	require.NoError(t, err)

	// confluent-local supports KRaft natively.
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, rentalEvents.TopicBookingEvents, rentalEvents.TopicCatalogEvents)

	cleanup := func() {
		_ = redisClient.Close()
		for name, c := range map[string]testcontainers.Container{
			"Kafka": kafkaContainer, "Redis": redisContainer, "PostgreSQL": pgContainer,
		} {
			if err := c.Terminate(ctx); err != nil {
				t.Logf("failed to terminate %s container: %v", name, err)
			}
		}
	}

	return &testInfra{
		DB:           db,
		Redis:        redisClient,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupReservationStack wires the reservation service the way cmd/server does.
func setupReservationStack(t *testing.T, infra *testInfra) *reservationStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	vehicles := repository.NewCachedCatalog(repository.NewGormVehicleRepository(infra.DB), infra.Redis, time.Minute, logger)
	receipts := application.NewReceiptService(repository.NewGormReceiptRepository(infra.DB), logger)
	producer := kafka.NewProducer(infra.KafkaBrokers, logger)

	pipeline := reservation.NewPipeline(
		repository.NewGormBookingRepository(infra.DB),
		repository.NewGormReservationRepository(infra.DB),
		receipts,
		rentalEvents.NewPublisher(producer),
		10*time.Second,
		logger,
	)
	clk := clock.NewSystem()
	sessions := application.NewSessionService(vehicles, pipeline, reservation.NewResolver(true),
		reservation.NewIdentifierGenerator(clk, nil), clk, time.Hour, logger)
	catalog := application.NewCatalogService(vehicles, logger)

	groupID := fmt.Sprintf("test-reservation-%s", uuid.New().String()[:8])
	consumer := rentalEvents.NewCatalogEventConsumer(infra.KafkaBrokers, groupID, catalog, logger)

	return &reservationStack{
		Sessions:        sessions,
		Catalog:         catalog,
		Consumer:        consumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	require.NoError(t, controllerConn.CreateTopics(topicConfigs...), "failed to create Kafka topics")

	time.Sleep(1 * time.Second)
}
