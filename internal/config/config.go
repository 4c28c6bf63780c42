package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Tikko    TikkoConfig
	Checkout CheckoutConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	User          string
	Password      string
	Name          string
	Host          string
	Port          int
	SSLMode       string
	Migrate       bool
	MigrationsDir string
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// TikkoConfig points at the upstream ticketing API.
type TikkoConfig struct {
	BaseURL      string
	RefreshToken string
	Timeout      time.Duration
}

type CheckoutConfig struct {
	SessionTTL        time.Duration
	ServiceFeePercent int
	CallbackURL       string
	PixSweepInterval  time.Duration
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverHost := os.Getenv("SERVER_HOST")
	if serverHost == "" {
		serverHost = "localhost"
	}

	serverPortStr := os.Getenv("SERVER_PORT")
	if serverPortStr == "" {
		serverPortStr = "8080"
	}

	serverPort, err := strconv.Atoi(serverPortStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid SERVER_PORT: %w", op, err)
	}

	serverCfg := ServerConfig{
		Host: serverHost,
		Port: serverPort,
	}

	postgresHost := os.Getenv("POSTGRES_HOST")
	if postgresHost == "" {
		postgresHost = "localhost"
	}

	postgresPortStr := os.Getenv("POSTGRES_PORT")
	if postgresPortStr == "" {
		postgresPortStr = "5432"
	}

	postgresPort, err := strconv.Atoi(postgresPortStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid POSTGRES_PORT: %w", op, err)
	}

	postgresUser := os.Getenv("POSTGRES_USER")
	if postgresUser == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_USER", op)
	}

	postgresPassword := os.Getenv("POSTGRES_PASSWORD")
	if postgresPassword == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_PASSWORD", op)
	}

	postgresDB := os.Getenv("POSTGRES_DB")
	if postgresDB == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_DB", op)
	}

	postgresSSLMode := os.Getenv("POSTGRES_SSLMODE")
	if postgresSSLMode == "" {
		postgresSSLMode = "disable"
	}

	postgresMigrate := os.Getenv("POSTGRES_MIGRATE") == "true"

	migrationsDir := os.Getenv("POSTGRES_MIGRATIONS_DIR")
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}

	postgresCfg := PostgresConfig{
		User:          postgresUser,
		Password:      postgresPassword,
		Name:          postgresDB,
		Host:          postgresHost,
		Port:          postgresPort,
		SSLMode:       postgresSSLMode,
		Migrate:       postgresMigrate,
		MigrationsDir: migrationsDir,
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	redisCfg := RedisConfig{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	}

	tikkoBaseURL := os.Getenv("TIKKO_BASE_URL")
	if tikkoBaseURL == "" {
		return nil, fmt.Errorf("%s: missing TIKKO_BASE_URL", op)
	}

	tikkoTimeout, err := durationEnv("TIKKO_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	tikkoCfg := TikkoConfig{
		BaseURL:      tikkoBaseURL,
		RefreshToken: os.Getenv("TIKKO_REFRESH_TOKEN"),
		Timeout:      tikkoTimeout,
	}

	sessionTTL, err := durationEnv("CHECKOUT_SESSION_TTL", 30*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	pixSweep, err := durationEnv("CHECKOUT_PIX_SWEEP_INTERVAL", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	feePercent := 10
	if v := os.Getenv("CHECKOUT_FEE_PERCENT"); v != "" {
		feePercent, err = strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid CHECKOUT_FEE_PERCENT: %w", op, err)
		}
	}

	checkoutCfg := CheckoutConfig{
		SessionTTL:        sessionTTL,
		ServiceFeePercent: feePercent,
		CallbackURL:       os.Getenv("CHECKOUT_CALLBACK_URL"),
		PixSweepInterval:  pixSweep,
	}

	return &Config{
		Server:   serverCfg,
		Postgres: postgresCfg,
		Redis:    redisCfg,
		Tikko:    tikkoCfg,
		Checkout: checkoutCfg,
	}, nil
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return d, nil
}
