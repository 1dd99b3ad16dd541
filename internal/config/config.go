package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN         string
	ServerPort    string
	SessionSecret string
	TemplateGlob  string
	StaticDir     string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBDSN:         os.Getenv("DB_DSN"),
		ServerPort:    os.Getenv("SERVER_PORT"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		TemplateGlob:  os.Getenv("TEMPLATE_GLOB"),
		StaticDir:     os.Getenv("STATIC_DIR"),
	}

	if cfg.DBDSN == "" {
		// no DSN means local sqlite, handy for development
		cfg.DBDSN = "equiptrack.db"
		log.Printf("DB_DSN is not set, using sqlite file %s", cfg.DBDSN)
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.SessionSecret == "" {
		log.Fatal("SESSION_SECRET is not set")
	}
	if cfg.TemplateGlob == "" {
		cfg.TemplateGlob = "web/templates/*.html"
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = "./web/static"
	}

	return cfg
}
