package profile

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

// Profile is the process-level configuration loaded from environment
// variables, plus flag overrides applied by the CLI.
type Profile struct {
	// Mode is demo, dev or prod.
	Mode string

	// Data is the output directory for result files.
	Data string

	// LLM configuration (OpenAI-compatible protocol). The engine runs
	// fully offline when no API key is set.
	LLMProvider  string
	LLMAPIKey    string
	LLMBaseURL   string
	LLMModel     string
	LLMTimeoutMS int
	LLMRPS       float64

	// Workers bounds the enrichment stage concurrency.
	Workers int

	Version string
}

// Provider default configurations for LLM.
// Used when FIREROUTE_LLM_BASE_URL is not explicitly set.
var llmProviderDefaults = map[string]struct {
	BaseURL string
	Model   string
}{
	"openai": {
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini",
	},
	"deepseek": {
		BaseURL: "https://api.deepseek.com",
		Model:   "deepseek-chat",
	},
	"ollama": {
		BaseURL: "http://localhost:11434/v1",
		Model:   "llama3.1",
	},
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if an LLM API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.LLMAPIKey != ""
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvOrDefaultFloat returns environment variable value as float or default value.
func getEnvOrDefaultFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.Mode = getEnvOrDefault("FIREROUTE_MODE", "demo")
	p.Data = getEnvOrDefault("FIREROUTE_DATA", "out")

	p.LLMProvider = getEnvOrDefault("FIREROUTE_LLM_PROVIDER", "openai")
	p.LLMAPIKey = getEnvOrDefault("FIREROUTE_LLM_API_KEY", "")
	p.LLMBaseURL = getEnvOrDefault("FIREROUTE_LLM_BASE_URL", "")
	p.LLMModel = getEnvOrDefault("FIREROUTE_LLM_MODEL", "")
	p.LLMTimeoutMS = getEnvOrDefaultInt("FIREROUTE_LLM_TIMEOUT_MS", 15000)
	p.LLMRPS = getEnvOrDefaultFloat("FIREROUTE_LLM_RPS", 0)

	p.Workers = getEnvOrDefaultInt("FIREROUTE_WORKERS", 20)

	if _, ok := llmProviderDefaults[p.LLMProvider]; !ok {
		p.LLMProvider = "openai"
	}
	if p.LLMBaseURL == "" {
		p.LLMBaseURL = llmProviderDefaults[p.LLMProvider].BaseURL
	}
	if p.LLMModel == "" {
		p.LLMModel = llmProviderDefaults[p.LLMProvider].Model
	}
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Workers <= 0 {
		return errors.Errorf("workers must be positive, got %d", p.Workers)
	}
	if p.LLMTimeoutMS <= 0 {
		return errors.Errorf("llm timeout must be positive, got %d ms", p.LLMTimeoutMS)
	}

	dataDir, err := ensureDataDir(p.Data)
	if err != nil {
		return err
	}
	p.Data = dataDir
	return nil
}

// ensureDataDir resolves the output directory to an absolute path and
// creates it when missing.
func ensureDataDir(dataDir string) (string, error) {
	if dataDir == "" {
		dataDir = "out"
	}
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", errors.Wrapf(err, "unable to resolve data folder %s", dataDir)
		}
		dataDir = absDir
	}
	if err := os.MkdirAll(dataDir, 0o770); err != nil {
		return "", errors.Wrapf(err, "unable to create data folder %s", dataDir)
	}
	return dataDir, nil
}
