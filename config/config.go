package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Port     string `yaml:"PORT"`
	GinMode  string `yaml:"GIN_MODE"`
	LogLevel string `yaml:"LOG_LEVEL"`

	CORSOrigin     string  `yaml:"CORS_ORIGIN"`
	RateLimitRPS   float64 `yaml:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `yaml:"RATE_LIMIT_BURST"`

	// Document store
	StoreDriver      string `yaml:"STORE_DRIVER"`
	StoreDSN         string `yaml:"STORE_DSN"`
	StoreFallbackDir string `yaml:"STORE_FALLBACK_DIR"`
	StoreNamespace   string `yaml:"STORE_NAMESPACE"`
	SeedMenu         bool   `yaml:"SEED_MENU"`

	// QR ordering
	OrderingBaseURL string `yaml:"ORDERING_BASE_URL"`
	QRRenderSurface string `yaml:"QR_RENDER_SURFACE"`

	// Auth
	JWTSecret           string `yaml:"JWT_SECRET"`
	DemoAdminUsername   string `yaml:"DEMO_ADMIN_USERNAME"`
	DemoAdminPIN        string `yaml:"DEMO_ADMIN_PIN"`
	DemoStaffUsername   string `yaml:"DEMO_STAFF_USERNAME"`
	DemoStaffPIN        string `yaml:"DEMO_STAFF_PIN"`
	DemoKitchenUsername string `yaml:"DEMO_KITCHEN_USERNAME"`
	DemoKitchenPIN      string `yaml:"DEMO_KITCHEN_PIN"`

	// Change fan-out
	ChangeMonitorInterval time.Duration `yaml:"CHANGE_MONITOR_INTERVAL"`
	AMQPURL               string        `yaml:"AMQP_URL"`
	AMQPExchange          string        `yaml:"AMQP_EXCHANGE"`

	// AWS S3
	S3Bucket     string `yaml:"S3_BUCKET"`
	S3Region     string `yaml:"S3_REGION"`
	S3Endpoint   string `yaml:"S3_ENDPOINT"`
	S3PublicURL  string `yaml:"S3_PUBLIC_URL"`
	AWSAccessKey string `yaml:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey string `yaml:"AWS_SECRET_ACCESS_KEY"`
}

func Default() *Config {
	return &Config{
		Port:                  "8080",
		LogLevel:              "info",
		CORSOrigin:            "*",
		RateLimitRPS:          50,
		RateLimitBurst:        100,
		StoreDriver:           "sqlite",
		StoreDSN:              "orderin.db",
		StoreFallbackDir:      "data",
		StoreNamespace:        "orderin",
		OrderingBaseURL:       "http://localhost:8080",
		QRRenderSurface:       "none",
		DemoAdminUsername:     "admin",
		DemoAdminPIN:          "1234",
		DemoStaffUsername:     "staff",
		DemoStaffPIN:          "1234",
		DemoKitchenUsername:   "kitchen",
		DemoKitchenPIN:        "1234",
		ChangeMonitorInterval: 500 * time.Millisecond,
		AMQPExchange:          "orderin.changes",
		S3Region:              "ap-southeast-1",
	}
}

// Load reads .env, then the YAML file named by CONFIG_FILE (default
// config.yaml) if present, then lets environment variables override.
func Load() (*Config, error) {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	return LoadFrom(path, os.LookupEnv)
}

func LoadFrom(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"PORT":                  &c.Port,
		"GIN_MODE":              &c.GinMode,
		"LOG_LEVEL":             &c.LogLevel,
		"CORS_ORIGIN":           &c.CORSOrigin,
		"STORE_DRIVER":          &c.StoreDriver,
		"STORE_DSN":             &c.StoreDSN,
		"STORE_FALLBACK_DIR":    &c.StoreFallbackDir,
		"STORE_NAMESPACE":       &c.StoreNamespace,
		"ORDERING_BASE_URL":     &c.OrderingBaseURL,
		"QR_RENDER_SURFACE":     &c.QRRenderSurface,
		"JWT_SECRET":            &c.JWTSecret,
		"DEMO_ADMIN_USERNAME":   &c.DemoAdminUsername,
		"DEMO_ADMIN_PIN":        &c.DemoAdminPIN,
		"DEMO_STAFF_USERNAME":   &c.DemoStaffUsername,
		"DEMO_STAFF_PIN":        &c.DemoStaffPIN,
		"DEMO_KITCHEN_USERNAME": &c.DemoKitchenUsername,
		"DEMO_KITCHEN_PIN":      &c.DemoKitchenPIN,
		"AMQP_URL":              &c.AMQPURL,
		"AMQP_EXCHANGE":         &c.AMQPExchange,
		"S3_BUCKET":             &c.S3Bucket,
		"S3_REGION":             &c.S3Region,
		"S3_ENDPOINT":           &c.S3Endpoint,
		"S3_PUBLIC_URL":         &c.S3PublicURL,
		"AWS_ACCESS_KEY_ID":     &c.AWSAccessKey,
		"AWS_SECRET_ACCESS_KEY": &c.AWSSecretKey,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("SEED_MENU"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SEED_MENU: %w", err)
		}
		c.SeedMenu = b
	}
	if v, ok := lookup("RATE_LIMIT_RPS"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		c.RateLimitRPS = f
	}
	if v, ok := lookup("RATE_LIMIT_BURST"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		c.RateLimitBurst = n
	}
	if v, ok := lookup("CHANGE_MONITOR_INTERVAL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CHANGE_MONITOR_INTERVAL: %w", err)
		}
		c.ChangeMonitorInterval = d
	}
	return nil
}

// S3Enabled reports whether QR publishing has somewhere to upload to.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}
