package config

import (
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// LoadAppConfig loads and validates the application configuration. An empty
// path falls back to config.yml in the working directory. The returned config
// is the only copy; there is no package-level state.
func LoadAppConfig(path string) (*AppConfig, error) {
	paths := []string{path}
	if path == "" {
		paths = []string{"config.yml", "./config/config.yml"}
	}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	v := validator.New()
	if err := v.Struct(cfg.Database); err != nil {
		return nil, err
	}
	if err := v.Struct(cfg.ETL); err != nil {
		return nil, err
	}
	if err := v.Struct(cfg.API); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides keeps the original .env deployment contract working:
// environment variables win over the YAML file.
func applyEnvOverrides(cfg *AppConfig) {
	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.ETL.DataFolder, "DATA_FOLDER")
	setString(&cfg.ETL.ProgressFile, "PROGRESS_FILE")
	setString(&cfg.API.KeySecret, "API_KEY_SECRET")
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.ETL.ProgressFile == "" {
		cfg.ETL.ProgressFile = "progress.json"
	}
	if cfg.ETL.ErrorLog == "" {
		cfg.ETL.ErrorLog = "data_import_errors.log"
	}
	if cfg.ETL.ReportEvery == 0 {
		cfg.ETL.ReportEvery = 100
	}
	if cfg.API.Port == 0 {
		cfg.API.Port = 8000
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
