package main

import (
	"clinicore/internal/booking/handler"
	"clinicore/internal/booking/repository"
	"clinicore/internal/booking/service"
	"clinicore/internal/booking/validator"
	"clinicore/pkg/app"
	"clinicore/pkg/config"
	mongotx "clinicore/pkg/db/mongo"
	"clinicore/pkg/kafka"
	kafka_config "clinicore/pkg/kafka/config"
)

const ServiceName = "booking"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Booking service")

	serverApp := app.NewApplication(cfg)

	engine, sweeper := initServices(cfg, serverApp)

	sweeper.Start()
	serverApp.OnShutdown(sweeper.Stop)

	serverApp.SetApp(handler.NewBookingHandler(engine, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config, serverApp *app.Application) (service.ReservationEngine, *service.Sweeper) {
	slotStore := repository.NewMongoSlotStore(cfg)
	lockLedger := repository.NewMongoLockLedger(cfg)
	admissionGate := repository.NewMongoAdmissionGate(cfg)
	appointmentWriter := repository.NewMongoAppointmentWriter(cfg)
	txManager := mongotx.NewTransactionManager(cfg.Client.Mongo)
	bookingValidator := validator.NewBookingValidator(cfg.Log)

	var publisher service.EventPublisher
	if cfg.KafkaEventsEnabled {
		kafkaCfg := kafka_config.Load()
		producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.AppointmentsTopic)
		if err != nil {
			cfg.Log.Fatal("Failed to initialize Kafka producer", "error", err)
		}
		serverApp.OnShutdown(func() {
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka producer", "error", err)
			}
		})
		publisher = producer
		cfg.Log.Info("Kafka event publishing enabled", "topic", kafkaCfg.AppointmentsTopic)
	}

	engine := service.NewReservationEngine(
		slotStore,
		lockLedger,
		admissionGate,
		appointmentWriter,
		txManager,
		bookingValidator,
		publisher,
		cfg,
	)

	sweeper := service.NewSweeper(lockLedger, admissionGate, cfg)

	cfg.Log.Info("Reservation engine initialized", "database", cfg.MongoDatabaseName)
	return engine, sweeper
}
