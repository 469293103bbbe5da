package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port          int
	StoragePath   string
	PublicBaseURL string

	// Backend de execução de código. Vazio desativa a geração de imagens.
	RunnerURL     string
	RunnerTimeout time.Duration

	// Teto de bytes do JPEG comprimido.
	MaxImageBytes int

	// Janela de retenção e intervalo de varredura do sweeper.
	Retention     time.Duration
	SweepInterval time.Duration

	AllowOrigins []string
	RateLimit    RateLimitConfig
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.StoragePath = strings.TrimSpace(getEnv("STORAGE_PATH", "data/images"))
	if cfg.StoragePath == "" {
		return nil, errors.New("STORAGE_PATH obrigatório")
	}

	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(getEnv("PUBLIC_BASE_URL", "http://localhost:8080")), "/")
	if cfg.PublicBaseURL == "" {
		return nil, errors.New("PUBLIC_BASE_URL obrigatório")
	}

	cfg.RunnerURL = strings.TrimSpace(getEnv("RUNNER_URL", ""))

	runnerTimeout, err := parseDurationEnv("RUNNER_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.RunnerTimeout = runnerTimeout

	maxBytes, err := parsePositiveIntEnv("MAX_IMAGE_BYTES", 100*1024)
	if err != nil {
		return nil, err
	}
	cfg.MaxImageBytes = maxBytes

	retention, err := parseDurationEnv("RETENTION", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	if retention <= 0 {
		return nil, errors.New("RETENTION deve ser positiva")
	}
	cfg.Retention = retention

	sweepInterval, err := parseDurationEnv("SWEEP_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}
	if sweepInterval <= 0 {
		return nil, errors.New("SWEEP_INTERVAL deve ser positivo")
	}
	cfg.SweepInterval = sweepInterval

	allowOrigins := strings.Split(getEnv("ALLOW_ORIGINS", ""), ",")
	cfg.AllowOrigins = nil
	for _, origin := range allowOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.RateLimit = RateLimitConfig{RequestsPerSecond: 5, Burst: 10}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}

func parsePositiveIntEnv(key string, def int) (int, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return 0, errors.New(key + " inválido")
	}
	return n, nil
}
