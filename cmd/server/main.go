package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"dinehub/internal/auth"
	"dinehub/internal/config"
	"dinehub/internal/importer"
	"dinehub/internal/model"
	"dinehub/internal/otp"
	"dinehub/internal/queue"
	"dinehub/internal/router"
	"dinehub/internal/sms"
	rediskey "dinehub/pkg/redis"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	// 1. 连接 SQLite，自动建表
	db, err := gorm.Open(sqlite.Open(cfg.DBPath+"?_foreign_keys=on"), &gorm.Config{})
	if err != nil {
		log.WithError(err).Fatal("db open")
	}
	if err := db.AutoMigrate(
		&model.Restaurant{},
		&model.RestaurantSettings{},
		&model.MenuCategory{},
		&model.MenuItem{},
		&model.MenuItemVariant{},
		&model.User{},
		&model.UserRestaurant{},
		&model.Customer{},
		&model.ImportJob{},
	); err != nil {
		log.WithError(err).Fatal("db migrate")
	}

	rdb := rd.NewClient(&rd.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 导入终态事件（可选）
	var events importer.EventPublisher
	if cfg.EventsEnabled {
		producer := queue.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		events = producer
	}

	// 批量导入引擎：单后台 worker，独立于请求生命周期。
	eng := importer.NewEngine(db, cfg.ImportQueueSize, events, log)
	eng.Start(ctx)

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	store := rediskey.NewChallengeStore(rdb)
	otpSvc := otp.NewService(store, db, sms.NewLogSender(log), issuer, cfg.OTPTTL, cfg.OTPMaxAttempts)

	r := gin.Default()
	router.Setup(r, db, rdb, eng, otpSvc, issuer, cfg)

	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.WithError(err).Fatal("http server")
	}
}
