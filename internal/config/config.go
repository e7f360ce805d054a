package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider names accepted in AI_PROVIDER.
const (
	ProviderArk    = "ark"
	ProviderVertex = "vertex"
)

// Anonymous context store backends accepted in ANON_STORE.
const (
	AnonStoreMemory = "memory"
	AnonStoreRedis  = "redis"
)

// Config aggregates all service configuration.
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Storage StorageConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	storage, err := loadStorageConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Storage: storage}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the completion provider.
type AIConfig struct {
	Provider string

	// Ark credentials.
	APIKey    string
	AccessKey string
	SecretKey string
	BaseURL   string
	Region    string

	// Vertex AI credentials.
	GCPProject  string
	GCPLocation string

	Model   string
	Timeout time.Duration
}

// Enabled reports whether the selected provider has the credentials it needs.
// A disabled provider means every completion call reports unavailable.
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case ProviderVertex:
		return c.GCPProject != "" && c.GCPLocation != ""
	default:
		return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
	}
}

func loadAIConfig() (AIConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("AI_PROVIDER", ProviderArk))
	switch provider {
	case ProviderArk, ProviderVertex:
	default:
		return AIConfig{}, fmt.Errorf("unsupported AI_PROVIDER value: %q", provider)
	}

	timeout := 20 * time.Second
	if override, err := parseOptionalIntEnv("AI_TIMEOUT_SECONDS"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return AIConfig{}, fmt.Errorf("AI_TIMEOUT_SECONDS must be positive, got %d", *override)
		}
		timeout = time.Duration(*override) * time.Second
	}

	model := strings.TrimSpace(os.Getenv("AI_MODEL"))
	if model == "" && provider == ProviderVertex {
		model = "gemini-2.0-flash-lite-001"
	}

	return AIConfig{
		Provider:    provider,
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		GCPProject:  strings.TrimSpace(os.Getenv("GCP_PROJECT_ID")),
		GCPLocation: getEnvOrDefault("GCP_LOCATION", "us-central1"),
		Model:       model,
		Timeout:     timeout,
	}, nil
}

// StorageConfig describes relational persistence and the anonymous context
// store.
type StorageConfig struct {
	SQLitePath  string
	AnonBackend string
	AnonTTL     time.Duration
	RedisAddr   string
}

func loadStorageConfig() (StorageConfig, error) {
	backend := strings.ToLower(getEnvOrDefault("ANON_STORE", AnonStoreMemory))
	switch backend {
	case AnonStoreMemory, AnonStoreRedis:
	default:
		return StorageConfig{}, fmt.Errorf("unsupported ANON_STORE value: %q", backend)
	}

	redisAddr := getEnvOrDefault("REDIS_ADDR", "localhost:6379")
	if backend == AnonStoreRedis && redisAddr == "" {
		return StorageConfig{}, fmt.Errorf("REDIS_ADDR is required when ANON_STORE=redis")
	}

	ttl := 30 * time.Minute
	if override, err := parseOptionalIntEnv("ANON_TTL_MINUTES"); err != nil {
		return StorageConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return StorageConfig{}, fmt.Errorf("ANON_TTL_MINUTES must be positive, got %d", *override)
		}
		ttl = time.Duration(*override) * time.Minute
	}

	return StorageConfig{
		SQLitePath:  getEnvOrDefault("SQLITE_PATH", "object_chat.db"),
		AnonBackend: backend,
		AnonTTL:     ttl,
		RedisAddr:   redisAddr,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
