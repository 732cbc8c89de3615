package main

import (
	"context"
	"flag"

	velibdata "github.com/Karim-DataScience/JeVelibererLaData"
	"github.com/Karim-DataScience/JeVelibererLaData/config"
	"github.com/Karim-DataScience/JeVelibererLaData/storage"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml")
	flag.Parse()

	log := velibdata.NewLogger()

	cfg, err := config.LoadAppConfig(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer store.Close()

	api := velibdata.NewAPI(store.DB(), cfg.API, log)
	api.StartServer()
	api.HandleGracefulShutdown()
}
