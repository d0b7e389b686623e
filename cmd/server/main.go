package main

import (
	"log"
	"net/http"

	"printdesk-be/internal/asset"
	"printdesk-be/internal/config"
	"printdesk-be/internal/db"
	"printdesk-be/internal/liveview"
	"printdesk-be/internal/logger"
	"printdesk-be/internal/mailer"
	"printdesk-be/internal/metrics"
	"printdesk-be/internal/notification"
	"printdesk-be/internal/order"

	"printdesk-be/internal/httpserver"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	var mail mailer.Mailer = mailer.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		km := mailer.NewKafkaMailer(cfg.KafkaBrokers)
		defer km.Close()
		mail = km
	}

	source := liveview.NewRedisSource(rdb)

	notifRepo := notification.NewRepository(database)
	emitter := notification.NewEmitter(notifRepo, mail)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, emitter, source)

	syncMetrics := &metrics.SyncMetrics{}
	live := liveview.NewSynchronizer(orderRepo, source, syncMetrics)

	assets := asset.NewFSWriter(cfg.AssetsDir, cfg.PublicBaseURL)

	srv := httpserver.NewServer(orderSvc, live, assets)

	log.Printf("printdesk server running on :%s", cfg.AppPort)
	log.Fatal(http.ListenAndServe(":"+cfg.AppPort, srv.Router()))
}
