package main

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/jengzang/reallocation-screener/internal/cleaning"
	"github.com/jengzang/reallocation-screener/internal/config"
	"github.com/jengzang/reallocation-screener/internal/database"
	"github.com/jengzang/reallocation-screener/internal/loader"
	"github.com/jengzang/reallocation-screener/internal/presentation"
	"github.com/jengzang/reallocation-screener/internal/repository"
	"github.com/jengzang/reallocation-screener/internal/service"
)

// app holds the wired services shared by every command
type app struct {
	db          *sql.DB
	screening   *service.ScreeningService
	integration *service.IntegrationService
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	// 初始化数据库
	conn, err := database.Setup(database.Config{Path: cfg.DBPath, Logger: logger})
	if err != nil {
		return nil, err
	}

	warehouse := repository.NewWarehouseRepository(conn)
	ld := loader.New(warehouse, loader.Tables{
		Main:         cfg.Tables.Main,
		Master:       cfg.Tables.Master,
		MasterColumn: cfg.Tables.MasterColumn,
	}, logger.Named("loader"))

	cleaner := cleaning.NewCleaner(cleaning.Rules{
		AllowedPrefectures: cfg.Cleaning.AllowedPrefectures,
		ExcludedFlags:      cfg.Cleaning.ExcludedFlags,
	})

	screening := service.NewScreeningService(loader.NewCache(ld), cleaner, service.ScreeningOptions{
		Map:           presentation.MapOptions{Zoom: cfg.Map.Zoom, Pitch: cfg.Map.Pitch},
		StationColumn: cfg.Upload.StationColumn,
	}, logger.Named("screening"))

	integration := service.NewIntegrationService(
		repository.NewIntegrationRepository(conn),
		cfg.Integration,
		logger.Named("integration"),
	)

	return &app{db: conn, screening: screening, integration: integration}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
