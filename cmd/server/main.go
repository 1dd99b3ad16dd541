package main

import (
	"fmt"
	"log"

	"equiptrack/internal/config"
	"equiptrack/internal/cron"
	"equiptrack/internal/database"
	"equiptrack/internal/server"
)

func main() {
	cfg := config.Load()
	database.Init(cfg.DBDSN)

	sched := cron.Start(database.DB)
	defer sched.Stop()

	r := server.NewRouter(cfg)

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("starting server on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
