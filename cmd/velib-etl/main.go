package main

import (
	"context"
	"flag"

	velibdata "github.com/Karim-DataScience/JeVelibererLaData"
	"github.com/Karim-DataScience/JeVelibererLaData/config"
	"github.com/Karim-DataScience/JeVelibererLaData/etl"
	"github.com/Karim-DataScience/JeVelibererLaData/storage"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml")
	dataFolder := flag.String("data", "", "snapshot folder (overrides config)")
	progressFile := flag.String("progress", "", "progress file path (overrides config)")
	flag.Parse()

	bootLog := velibdata.NewLogger()

	cfg, err := config.LoadAppConfig(*configPath)
	if err != nil {
		bootLog.WithError(err).Fatal("failed to load config")
	}
	if *dataFolder != "" {
		cfg.ETL.DataFolder = *dataFolder
	}
	if *progressFile != "" {
		cfg.ETL.ProgressFile = *progressFile
	}
	if cfg.ETL.DataFolder == "" {
		bootLog.Fatal("no data folder configured; set etl.dataFolder, DATA_FOLDER or -data")
	}

	log, closeLog, err := velibdata.NewETLLogger(cfg.ETL.ErrorLog)
	if err != nil {
		bootLog.WithError(err).Fatal("failed to open error log")
	}
	defer closeLog.Close()

	ctx := context.Background()

	store, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		log.WithError(err).Fatal("failed to apply schema")
	}

	progress, err := etl.LoadProgress(ctx, cfg.ETL.ProgressFile, cfg.ETL.DataFolder, store, log)
	if err != nil {
		log.WithError(err).Fatal("failed to load progress")
	}

	driver := etl.NewDriver(cfg.ETL, store, progress, log)
	stats, err := driver.Run(ctx)
	if err != nil {
		log.WithError(err).WithField("stats", stats.String()).Fatal("import aborted")
	}
}
