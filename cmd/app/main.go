package main

import (
	"fmt"
	"log/slog"
	"os"

	"fulfillment/cmd"
	adapterhttp "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/postgres/driverrepo"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	gormDB := mustOpenDatabase(configs)

	root, err := cmd.NewCompositionRoot(configs, gormDB, logger)
	if err != nil {
		log.Fatalf("Failed to build composition root: %v", err)
	}
	defer func() {
		_ = root.Close()
	}()

	// Bus subscribers: push notifications and the SSE relay.
	root.CreateNotificationDispatcher().Register(root.Bus())
	stream := adapterhttp.NewEventStream(logger)
	stream.Register(root.Bus())

	jobManager := jobs.NewJobManager(root.CreateOfferReadyOrdersCommandHandler(), logger)
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(root, stream, logger, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	config := cmd.Config{
		HTTPPort:                 goDotEnvVariable("HTTP_PORT"),
		DBHost:                   goDotEnvVariable("DB_HOST"),
		DBPort:                   goDotEnvVariable("DB_PORT"),
		DBUser:                   goDotEnvVariable("DB_USER"),
		DBPassword:               goDotEnvVariable("DB_PASSWORD"),
		DBName:                   goDotEnvVariable("DB_NAME"),
		DBSslMode:                goDotEnvVariable("DB_SSLMODE"),
		RedisAddr:                os.Getenv("REDIS_ADDR"),
		RedisPassword:            os.Getenv("REDIS_PASSWORD"),
		RedisDB:                  os.Getenv("REDIS_DB"),
		RefundProviderURL:        os.Getenv("REFUND_PROVIDER_URL"),
		KafkaHost:                os.Getenv("KAFKA_HOST"),
		LocationBroadcastSeconds: os.Getenv("LOCATION_BROADCAST_SECONDS"),
	}
	return config
}

func goDotEnvVariable(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalf("Error loading .env file")
	}
	return os.Getenv(key)
}

func mustOpenDatabase(configs cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser, configs.DBPassword,
		configs.DBName, configs.DBSslMode)

	gormDB, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := gormDB.AutoMigrate(&orderrepo.OrderDTO{}, &driverrepo.DriverDTO{}); err != nil {
		log.Fatalf("Failed to migrate database schema: %v", err)
	}

	return gormDB
}

func startWebServer(root *cmd.CompositionRoot, stream *adapterhttp.EventStream, logger *slog.Logger, port string) {
	server := adapterhttp.NewServer(
		root.CreateChangeOrderStatusCommandHandler(),
		root.CreateClaimOrderCommandHandler(),
		root.CreateStartDeliveryCommandHandler(),
		root.CreateCompleteDeliveryCommandHandler(),
		root.CreateReportLocationCommandHandler(),
		root.CreateRecordPaymentEventCommandHandler(),
		root.CreateGetTrackingSnapshotQueryHandler(),
		root.CreateGetAvailableOrdersQueryHandler(),
		stream,
		logger,
	)

	e := echo.New()
	server.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", port)))
}
