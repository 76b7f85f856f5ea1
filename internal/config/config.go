package config

import (
	"errors"
	"fmt"
	"os"

	"dodscars/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Booking    BookingConfig    `yaml:"booking"`
	Fleet      []models.Car     `yaml:"fleet"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
	CacheTTL int    `yaml:"cache_ttl_seconds"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Port      int                `yaml:"port"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type BookingConfig struct {
	// MaxHorizonDays bounds how far in the future a booking may start.
	MaxHorizonDays int `yaml:"max_horizon_days"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; environment wins when both are present.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Expand ${VAR} references before parsing so secrets stay out of yaml.
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.API.Auth.Enabled && len(c.API.Auth.APIKeys) == 0 {
		return errors.New("api auth is enabled but no api keys are configured")
	}

	return ValidateFleet(c.Fleet)
}

// ValidateFleet rejects seed fleets with duplicate ids or broken rental-day
// policies before they ever reach the store.
func ValidateFleet(cars []models.Car) error {
	ids := make(map[int64]bool)
	for _, car := range cars {
		if car.ID != 0 && ids[car.ID] {
			return fmt.Errorf("duplicate car ID found: %d", car.ID)
		}
		ids[car.ID] = true
		if car.Make == "" || car.Model == "" {
			return fmt.Errorf("car %d is missing make or model", car.ID)
		}
		if car.DailyRate < 0 {
			return fmt.Errorf("car %d has negative daily rate", car.ID)
		}
		if car.MinRentDays > car.MaxRentDays && car.MaxRentDays != 0 {
			return fmt.Errorf("car %d has min_rent_days greater than max_rent_days", car.ID)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.RateLimit.RPS == 0 {
		c.API.RateLimit.RPS = models.RateLimitRPS
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = models.RateLimitBurst
	}
	if c.Booking.MaxHorizonDays == 0 {
		c.Booking.MaxHorizonDays = models.MaxBookingHorizonDays
	}
	if c.Redis.CacheTTL == 0 {
		c.Redis.CacheTTL = models.AvailabilityCacheTTL
	}

	for i := range c.Fleet {
		if c.Fleet[i].MinRentDays == 0 {
			c.Fleet[i].MinRentDays = models.DefaultMinRentDays
		}
		if c.Fleet[i].MaxRentDays == 0 {
			c.Fleet[i].MaxRentDays = models.DefaultMaxRentDays
		}
	}
}
