package main

import (
	"clinicore/internal/slots/handler"
	"clinicore/internal/slots/repository"
	"clinicore/internal/slots/service"
	"clinicore/internal/slots/validator"
	"clinicore/pkg/app"
	"clinicore/pkg/config"
)

const ServiceName = "slots"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Slots service")

	slotService := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewSlotHandler(slotService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.SlotService {
	slotRepository := repository.NewMongoSlotRepository(cfg)
	slotValidator := validator.NewSlotValidator(cfg.Log)

	return service.NewSlotService(slotRepository, slotValidator, cfg)
}
