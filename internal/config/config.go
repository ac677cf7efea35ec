package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string

	LLM     LLMConfig
	Cache   CacheConfig
	Archive ArchiveConfig
}

// LLMConfig selects and configures the generation backend.
type LLMConfig struct {
	Backend string // "watsonx" | "gemini" | "fake"

	IBMAPIKey        string
	WatsonxURL       string
	WatsonxModelID   string
	WatsonxProjectID string

	GeminiModel string

	RetryAttempts int
}

type CacheConfig struct {
	ResultsDir  string
	ProfilePath string
}

// ArchiveConfig configures object storage for original uploads. Disabled
// when no endpoint is set.
type ArchiveConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":3000", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port: *port,
		Env:  env,
		LLM: LLMConfig{
			Backend:          firstNonEmpty(strings.TrimSpace(os.Getenv("LLM_BACKEND")), "watsonx"),
			IBMAPIKey:        strings.TrimSpace(os.Getenv("IBM_API_KEY")),
			WatsonxURL:       strings.TrimSpace(os.Getenv("WATSONX_URL")),
			WatsonxModelID:   strings.TrimSpace(os.Getenv("WATSONX_MODEL_ID")),
			WatsonxProjectID: strings.TrimSpace(os.Getenv("WATSONX_PROJECT_ID")),
			GeminiModel:      strings.TrimSpace(os.Getenv("GEMINI_MODEL")),
			RetryAttempts:    envInt("LLM_RETRY_ATTEMPTS", 1),
		},
		Cache: CacheConfig{
			ResultsDir:  firstNonEmpty(strings.TrimSpace(os.Getenv("RESULT_CACHE_DIR")), "cache"),
			ProfilePath: firstNonEmpty(strings.TrimSpace(os.Getenv("CAP_STORE_PATH")), "cache/profiles.json"),
		},
		Archive: loadArchiveConfig(),
	}, nil
}

func loadArchiveConfig() ArchiveConfig {
	endpoint := strings.TrimSpace(os.Getenv("ARCHIVE_S3_ENDPOINT"))
	return ArchiveConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_BUCKET")), "vantage-syllabi"),
		UseSSL:    envBool("ARCHIVE_S3_USE_SSL", true),
	}
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
