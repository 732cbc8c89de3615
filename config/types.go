package config

import "fmt"

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"gt=0"`
	Name     string `yaml:"name" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the connection string in URL form.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// ETLConfig contains snapshot import settings
type ETLConfig struct {
	DataFolder   string `yaml:"dataFolder"`
	ProgressFile string `yaml:"progressFile"`
	ErrorLog     string `yaml:"errorLog"`
	ReportEvery  int    `yaml:"reportEvery" validate:"gte=0"`
}

// APIConfig contains read-API server configuration
type APIConfig struct {
	Port      int    `yaml:"port" validate:"gt=0"`
	KeySecret string `yaml:"keySecret"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Database DatabaseConfig `yaml:"database" validate:"required"`
	ETL      ETLConfig      `yaml:"etl"`
	API      APIConfig      `yaml:"api"`
}
