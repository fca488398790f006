// Package config содержит логику чтения конфигурации шлюза заказов.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации шлюза заказов.
type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	DBFile        string `env:"DB_FILE"`
	DatabaseURI   string `env:"DATABASE_URI"`
	SheetID       string `env:"SHEET_ID"`
	KeyFile       string `env:"KEY_FILE"`
	ViaCEPAddress string `env:"VIACEP_ADDRESS"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDBFile := cfg.DBFile
	envDatabaseURI := cfg.DatabaseURI
	envSheetID := cfg.SheetID
	envKeyFile := cfg.KeyFile
	envViaCEPAddress := cfg.ViaCEPAddress

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DBFile, "f", "", "path to the record store JSON file")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI (takes precedence over the file store)")
	flag.StringVar(&cfg.SheetID, "s", "", "order journal spreadsheet ID")
	flag.StringVar(&cfg.KeyFile, "k", "", "path to the service account key file")
	flag.StringVar(&cfg.ViaCEPAddress, "c", "https://viacep.com.br", "address of the CEP lookup service")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDBFile != "" {
		cfg.DBFile = envDBFile
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envSheetID != "" {
		cfg.SheetID = envSheetID
	}
	if envKeyFile != "" {
		cfg.KeyFile = envKeyFile
	}
	if envViaCEPAddress != "" {
		cfg.ViaCEPAddress = envViaCEPAddress
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	if cfg.DBFile == "" && cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("either DB_FILE or DATABASE_URI must be set")
	}

	return cfg, nil
}
