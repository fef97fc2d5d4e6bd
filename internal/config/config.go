package config

import (
	"os"
	"strconv"
	"time"
)

// Provider names accepted by DOCUMENT_PROVIDER and FIELD_PROVIDER.
const (
	ProviderOpenAI     = "openai"
	ProviderPerplexity = "perplexity"
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
	ProviderLorem      = "lorem"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string

	// LLM Configuration
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	PerplexityAPIKey  string
	PerplexityBaseURL string
	AnthropicAPIKey   string
	OpenRouterAPIKey  string
	DocumentProvider  string // whole-document generation
	DocumentModel     string
	FieldProvider     string // single-field regeneration
	FieldModel        string
	LLMTimeout        time.Duration

	// Uploads
	UploadDir       string
	UploadURLPrefix string

	// PDF export
	OrganizationName string
	IPManagerEmail   string

	// Logging
	LogDir      string // empty disables the log file
	LogMaxFiles int

	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	documentProvider := getEnv("DOCUMENT_PROVIDER", ProviderOpenAI)
	fieldProvider := getEnv("FIELD_PROVIDER", ProviderPerplexity)

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		// LLM Configuration
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		PerplexityAPIKey:  getEnv("PERPLEXITY_API_KEY", ""),
		PerplexityBaseURL: getEnv("PERPLEXITY_BASE_URL", "https://api.perplexity.ai"),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
		DocumentProvider:  documentProvider,
		DocumentModel:     getEnv("DOCUMENT_MODEL", DefaultModel(documentProvider, RoleDocument)),
		FieldProvider:     fieldProvider,
		FieldModel:        getEnv("FIELD_MODEL", DefaultModel(fieldProvider, RoleField)),
		LLMTimeout:        getDuration("LLM_TIMEOUT", DefaultLLMTimeout),
		// Uploads
		UploadDir:       getEnv("UPLOAD_DIR", "public/uploads"),
		UploadURLPrefix: getEnv("UPLOAD_URL_PREFIX", "/uploads"),
		// PDF export
		OrganizationName: getEnv("ORGANIZATION_NAME", `"Hospital Name" Medical Research, Infrastructure & Services Ltd.`),
		IPManagerEmail:   getEnv("IP_MANAGER_EMAIL", ""),
		// Logging
		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getInt("LOG_MAX_FILES", 10),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// Generation roles, used to pick default models.
const (
	RoleDocument = "document"
	RoleField    = "field"
)

// DefaultModel returns the model used when none is configured for a
// provider and role.
func DefaultModel(provider, role string) string {
	switch provider {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderPerplexity:
		return "sonar-pro"
	case ProviderOpenRouter:
		if role == RoleField {
			return "perplexity/sonar-pro"
		}
		return "openai/gpt-4o-mini"
	case ProviderAnthropic:
		return "claude-haiku-4-5-20251001"
	case ProviderLorem:
		return "lorem-fast"
	}
	return ""
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true" // Enable DEBUG in dev/test by default
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}

// HasCredentials reports whether provider can be called with this
// configuration. The lorem mock needs no key.
func (c *Config) HasCredentials(provider string) bool {
	switch provider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey != ""
	case ProviderPerplexity:
		return c.PerplexityAPIKey != ""
	case ProviderOpenRouter:
		return c.OpenRouterAPIKey != ""
	case ProviderAnthropic:
		return c.AnthropicAPIKey != ""
	case ProviderLorem:
		return true
	}
	return false
}
