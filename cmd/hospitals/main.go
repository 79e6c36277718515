package main

import (
	"clinicore/internal/hospitals/handler"
	"clinicore/internal/hospitals/repository"
	"clinicore/internal/hospitals/service"
	"clinicore/internal/hospitals/validator"
	"clinicore/pkg/app"
	"clinicore/pkg/config"
)

const ServiceName = "hospitals"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Hospitals service")

	hospitalService := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewHospitalHandler(hospitalService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.HospitalService {
	hospitalRepository := repository.NewMongoHospitalRepository(cfg)
	hospitalValidator := validator.NewHospitalValidator(cfg.Log)

	return service.NewHospitalService(hospitalRepository, hospitalValidator, cfg)
}
