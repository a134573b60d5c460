package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string        `yaml:"addr"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	DatabasePath  string        `yaml:"database_path"`
	TokenDuration time.Duration `yaml:"token_duration"`
	ClaimTTL      time.Duration `yaml:"claim_ttl"`
	PublicBaseURL string        `yaml:"public_base_url"`
	WorkerCount   int           `yaml:"worker_count"`
	SMTP          SMTPConfig    `yaml:"smtp"`
}

type SMTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	From string `yaml:"from"`
}

func LoadConfig(path string) (*Config, error) {
	apiTimeout := 15 * time.Second
	tokenDuration := 1 * time.Hour
	claimTTL := 7 * 24 * time.Hour

	cfg := &Config{
		Addr:          getEnv("REALTOR_ADDR", ":8080"),
		JWTSecret:     getEnv("REALTOR_JWT_SECRET", "supersecretkey"),
		APITimeout:    apiTimeout,
		DatabasePath:  getEnv("REALTOR_DATABASE_PATH", "realtors.db"),
		TokenDuration: tokenDuration,
		ClaimTTL:      claimTTL,
		PublicBaseURL: getEnv("REALTOR_PUBLIC_BASE_URL", "http://localhost:8080"),
		WorkerCount:   2,
		SMTP: SMTPConfig{
			Host: getEnv("REALTOR_SMTP_HOST", ""),
			Port: 587,
			From: getEnv("REALTOR_SMTP_FROM", "claims@localhost"),
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
