package main

import (
	"flag"
	"os"

	"github.com/shaikfardeenhussain/fixroute/cmd/api"
	"github.com/shaikfardeenhussain/fixroute/internal/common/config"
	"github.com/shaikfardeenhussain/fixroute/internal/common/db"
	"github.com/shaikfardeenhussain/fixroute/internal/common/logger"
	"github.com/shaikfardeenhussain/fixroute/internal/common/mq"
)

func main() {
	configPath := flag.String("config", os.Getenv("FIXROUTE_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		boot := logger.NewZerologLogger("main", "info")
		boot.Errorf("load config: %v", err)
		os.Exit(1)
	}

	log := logger.NewZerologLogger("main", cfg.Log.Level)

	pg, err := db.NewPostgres(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		log,
	)
	if err != nil {
		log.Errorf("connect postgres: %v", err)
		os.Exit(1)
	}
	defer pg.Close()

	if err := pg.RunMigrations("migrations"); err != nil {
		log.Errorf("run migrations: %v", err)
		os.Exit(1)
	}

	rabbit, err := mq.NewRabbitMQ(
		cfg.RabbitMQ.Host,
		cfg.RabbitMQ.Port,
		cfg.RabbitMQ.User,
		cfg.RabbitMQ.Password,
	)
	if err != nil {
		log.Errorf("connect rabbitmq: %v", err)
		os.Exit(1)
	}
	defer rabbit.Close()

	if err := api.Run(cfg, log, pg, rabbit); err != nil {
		log.Errorf("server stopped: %v", err)
		os.Exit(1)
	}
}
