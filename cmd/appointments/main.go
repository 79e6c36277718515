package main

import (
	"clinicore/internal/appointments/handler"
	"clinicore/internal/appointments/repository"
	"clinicore/internal/appointments/service"
	"clinicore/pkg/app"
	"clinicore/pkg/config"
	"clinicore/pkg/kafka"
	kafka_config "clinicore/pkg/kafka/config"
)

const ServiceName = "appointments"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Appointments service")

	serverApp := app.NewApplication(cfg)
	appointmentService := initServices(cfg, serverApp)

	serverApp.SetApp(handler.NewAppointmentHandler(appointmentService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config, serverApp *app.Application) service.AppointmentService {
	appointmentRepository := repository.NewMongoAppointmentRepository(cfg)

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

	return service.NewAppointmentService(appointmentRepository, publisher, cfg)
}
