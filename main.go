package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/cppla/focusdesk/ai"
	"github.com/cppla/focusdesk/config"
	"github.com/cppla/focusdesk/events"
	"github.com/cppla/focusdesk/models"
	"github.com/cppla/focusdesk/routes"
	"github.com/cppla/focusdesk/utils"
)

func main() {
	configPath := flag.String("config", "", "path to config json (default config/config.json)")
	flag.Parse()

	cfg := config.MustLoad(*configPath)

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	loc, err := cfg.Location()
	if err != nil {
		utils.Sugar.Fatalf("invalid timezone: %v", err)
	}

	db, err := config.OpenDatabase(cfg,
		&models.User{},
		&models.ActivityRecord{},
		&models.Task{},
		&models.Schedule{},
		&models.Milestone{},
		&models.Overview{},
		&models.DeepWorkStats{},
		&models.Note{},
	)
	if err != nil {
		utils.Sugar.Fatalf("database init failed: %v", err)
	}

	rc := utils.NewRedis(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	generator, err := ai.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.AITimeout())
	cancel()
	if err != nil {
		utils.Sugar.Fatalf("ai client init failed: %v", err)
	}
	if cfg.GeminiAPIKey == "" {
		utils.Sugar.Warn("GEMINI_API_KEY not set, AI endpoints will answer 503")
	}

	publisher := events.New(cfg.KafkaBrokers, cfg.KafkaTopic)

	accessLog, err := utils.NewRollingFileLogger(cfg.GinPath, cfg)
	if err != nil {
		utils.Sugar.Warnf("gin access log unavailable, using app logger: %v", err)
		accessLog = utils.Logger
	}

	blacklist := utils.NewTokenBlacklist(rc)
	states := utils.NewStateStore(rc)
	signups := utils.NewSignupGuard(rc, cfg.SignupCooldown(), cfg.SignupMaxPerIPPerDay)

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	utils.StartJanitor(janitorCtx, 5*time.Minute, blacklist, states, signups)

	r := routes.SetupRouter(routes.Dependencies{
		Config:    cfg,
		DB:        db,
		Location:  loc,
		Cache:     utils.NewCache(rc),
		Blacklist: blacklist,
		States:    states,
		Signups:   signups,
		Generator: generator,
		Publisher: publisher,
		AccessLog: accessLog,
	})

	cleanup := func() {
		stopJanitor()
		if err := publisher.Close(); err != nil {
			utils.Sugar.Warnf("close event publisher: %v", err)
		}
		if rc != nil {
			_ = rc.Close()
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	utils.Sugar.Infof("Starting server on port %s (timezone %s)", cfg.AppPort, loc)
	if err := utils.GraceServer(":"+cfg.AppPort, r, cleanup); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
