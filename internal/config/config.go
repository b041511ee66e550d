package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/code-challenge/internal/platform/logging"
	"github.com/riskibarqy/code-challenge/internal/platform/resilience"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                  string
	ServiceName             string
	ServiceVersion          string
	HTTPAddr                string
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	LogLevel                logging.Level
	StorageDriver           string
	DBURL                   string
	DBDisablePreparedBinary bool
	CacheEnabled            bool
	CacheTTL                time.Duration
	CORSAllowedOrigins      []string

	AnubisBaseURL       string
	AnubisIntrospectURL string
	AnubisAdminKey      string
	AnubisTimeout       time.Duration
	AnubisCircuit       resilience.CircuitBreakerConfig

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration

	InternalJobToken            string
	CompletionSweepEnabled      bool
	CompletionSweepInterval     time.Duration
	CompletionWorkers           int
	LeaderboardFetchConcurrency int
}

// Load reads the configuration from the environment. Unset or blank variables
// take their defaults; malformed values are reported with the variable name.
func Load() (Config, error) {
	var (
		cfg Config
		err error
	)
	p := &parser{}

	cfg.AppEnv, err = parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}
	cfg.ServiceName = strings.TrimSpace(getEnv("APP_SERVICE_NAME", "code-challenge-api"))
	cfg.ServiceVersion = strings.TrimSpace(getEnv("APP_SERVICE_VERSION", "dev"))
	cfg.HTTPAddr = strings.TrimSpace(getEnv("APP_HTTP_ADDR", ":8080"))
	cfg.ReadTimeout = p.positiveDuration("APP_READ_TIMEOUT", "10s")
	cfg.WriteTimeout = p.positiveDuration("APP_WRITE_TIMEOUT", "15s")
	cfg.LogLevel, err = logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_LOG_LEVEL: %w", err)
	}

	cfg.StorageDriver, err = parseStorageDriver(getEnv("STORAGE_DRIVER", StorageMemory))
	if err != nil {
		return Config{}, err
	}
	cfg.DBURL = strings.TrimSpace(getEnv("DB_URL", ""))
	cfg.DBDisablePreparedBinary = p.flag("DB_DISABLE_PREPARED_BINARY_RESULT", true)
	cfg.CacheEnabled = p.flag("CACHE_ENABLED", true)
	cfg.CacheTTL = p.positiveDuration("CACHE_TTL", "60s")
	cfg.CORSAllowedOrigins = splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*"))

	cfg.AnubisBaseURL = strings.TrimSpace(getEnv("ANUBIS_BASE_URL", "http://localhost:8081"))
	cfg.AnubisIntrospectURL = strings.TrimSpace(getEnv("ANUBIS_INTROSPECT_PATH", "/v1/auth/introspect"))
	cfg.AnubisAdminKey = strings.TrimSpace(getEnv("ANUBIS_ADMIN_KEY", ""))
	cfg.AnubisTimeout = p.positiveDuration("ANUBIS_TIMEOUT", "3s")
	cfg.AnubisCircuit = resilience.CircuitBreakerConfig{
		Enabled:          p.flag("ANUBIS_CIRCUIT_ENABLED", true),
		FailureThreshold: p.minInt("ANUBIS_CIRCUIT_FAILURE_COUNT", 5, 1),
		OpenTimeout:      p.positiveDuration("ANUBIS_CIRCUIT_OPEN_TIMEOUT", "15s"),
		HalfOpenMaxReq:   p.minInt("ANUBIS_CIRCUIT_HALF_OPEN_MAX_REQ", 2, 1),
	}

	cfg.UptraceEnabled = p.flag("UPTRACE_ENABLED", false)
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}

	cfg.PyroscopeEnabled = p.flag("PYROSCOPE_ENABLED", false)
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	cfg.PyroscopeBasicAuthUser = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", ""))
	cfg.PyroscopeBasicAuthPassword = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""))
	cfg.PyroscopeUploadRate = p.positiveDuration("PYROSCOPE_UPLOAD_RATE", "15s")

	cfg.InternalJobToken = strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", ""))
	cfg.CompletionSweepEnabled = p.flag("COMPLETION_SWEEP_ENABLED", true)
	cfg.CompletionSweepInterval = p.positiveDuration("COMPLETION_SWEEP_INTERVAL", "5m")
	cfg.CompletionWorkers = p.minInt("COMPLETION_WORKERS", 4, 1)
	cfg.LeaderboardFetchConcurrency = p.minInt("LEADERBOARD_FETCH_CONCURRENCY", 8, 1)

	if p.err != nil {
		return Config{}, p.err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.StorageDriver == StoragePostgres && c.DBURL == "" {
		return fmt.Errorf("DB_URL is required when STORAGE_DRIVER=%s", StoragePostgres)
	}
	if len(c.CORSAllowedOrigins) == 0 {
		return fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if c.UptraceEnabled && c.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	if c.PyroscopeEnabled {
		if c.PyroscopeServerAddress == "" {
			return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
		}
		if c.PyroscopeAppName == "" {
			return fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
		}
	}
	if c.AppEnv == EnvProd && c.InternalJobToken == "" {
		return fmt.Errorf("INTERNAL_JOB_TOKEN is required when APP_ENV=%s", EnvProd)
	}
	return nil
}

// parser keeps the first parse error so Load can read every variable in
// sequence and check once at the end.
type parser struct {
	err error
}

func (p *parser) flag(key string, fallback bool) bool {
	if p.err != nil {
		return fallback
	}
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		p.err = fmt.Errorf("parse %s: %w", key, err)
		return fallback
	}
	return v
}

func (p *parser) positiveDuration(key, fallback string) time.Duration {
	if p.err != nil {
		return 0
	}
	v, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		p.err = fmt.Errorf("parse %s: %w", key, err)
		return 0
	}
	if v <= 0 {
		p.err = fmt.Errorf("%s must be > 0", key)
		return 0
	}
	return v
}

func (p *parser) minInt(key string, fallback, lowest int) int {
	if p.err != nil {
		return fallback
	}
	v, err := getEnvAsInt(key, fallback)
	if err != nil {
		p.err = fmt.Errorf("parse %s: %w", key, err)
		return fallback
	}
	if v < lowest {
		p.err = fmt.Errorf("%s must be >= %d", key, lowest)
		return fallback
	}
	return v
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	return strconv.Atoi(value)
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	for _, item := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(item), "=")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(key), "uptrace-dsn") {
			return strings.Trim(strings.TrimSpace(value), "\"'")
		}
	}

	return ""
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseStorageDriver(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case StorageMemory, StoragePostgres:
		return value, nil
	default:
		return "", fmt.Errorf("invalid STORAGE_DRIVER %q: valid values are %s, %s", v, StorageMemory, StoragePostgres)
	}
}
