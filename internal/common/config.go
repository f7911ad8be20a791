package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Report  ReportConfig
	LLM     LLMConfig
	Imaging ImagingConfig
	Server  ServerConfig
	Queue   QueueConfig
}

// ReportConfig locates the workbook template and its cell layout
type ReportConfig struct {
	TemplateFile string
	LayoutFile   string
}

// LLMConfig holds vision model configuration
type LLMConfig struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// ImagingConfig holds photo normalization configuration
type ImagingConfig struct {
	HeicConverter string
	ScratchDir    string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	HTTPAddr    string
	MaxUploadMB int
}

// QueueConfig holds async job queue configuration
type QueueConfig struct {
	Workers    int
	Size       int
	JobTimeout time.Duration
	Retention  time.Duration
}

// Supported vision providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("template_file", "template.xlsx")
	v.SetDefault("layout_file", "")
	v.SetDefault("llm_provider", ProviderGemini)
	v.SetDefault("llm_model", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("llm_base_url", "")
	v.SetDefault("llm_temperature", 0.0)
	v.SetDefault("llm_timeout", time.Duration(0))
	v.SetDefault("heic_converter", "")
	v.SetDefault("scratch_dir", "")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("max_upload_mb", 64)
	v.SetDefault("queue_workers", 2)
	v.SetDefault("queue_size", 16)
	v.SetDefault("job_timeout", time.Duration(0))
	v.SetDefault("job_retention", 15*time.Minute)
}

// LoadConfig builds the configuration from defaults, an optional YAML/JSON/TOML
// file at path, and environment variables (TEMPLATE_FILE, LLM_PROVIDER, ...).
// Environment variables win over the file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	provider := strings.ToLower(strings.TrimSpace(v.GetString("llm_provider")))
	apiKey := v.GetString("gemini_api_key")
	if provider == ProviderOpenAI {
		apiKey = v.GetString("openai_api_key")
	}

	return &Config{
		Report: ReportConfig{
			TemplateFile: v.GetString("template_file"),
			LayoutFile:   v.GetString("layout_file"),
		},
		LLM: LLMConfig{
			Provider:    provider,
			Model:       v.GetString("llm_model"),
			APIKey:      apiKey,
			BaseURL:     v.GetString("llm_base_url"),
			Temperature: float32(v.GetFloat64("llm_temperature")),
			Timeout:     v.GetDuration("llm_timeout"),
		},
		Imaging: ImagingConfig{
			HeicConverter: v.GetString("heic_converter"),
			ScratchDir:    v.GetString("scratch_dir"),
		},
		Server: ServerConfig{
			HTTPAddr:    v.GetString("http_addr"),
			MaxUploadMB: v.GetInt("max_upload_mb"),
		},
		Queue: QueueConfig{
			Workers:    v.GetInt("queue_workers"),
			Size:       v.GetInt("queue_size"),
			JobTimeout: v.GetDuration("job_timeout"),
			Retention:  v.GetDuration("job_retention"),
		},
	}, nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("TEMPLATE_FILE", c.Report.TemplateFile, Required).
		Field("LLM_PROVIDER", c.LLM.Provider, OneOf(ProviderGemini, ProviderOpenAI)).
		Field("QUEUE_WORKERS", c.Queue.Workers, Positive).
		Field("QUEUE_SIZE", c.Queue.Size, NonNegative).
		Field("MAX_UPLOAD_MB", c.Server.MaxUploadMB, Positive)
	if c.LLM.APIKey == "" {
		key := "GEMINI_API_KEY"
		if c.LLM.Provider == ProviderOpenAI {
			key = "OPENAI_API_KEY"
		}
		return NewAppError(CodeConfig, key+" is required", ErrInvalidInput)
	}
	if v.HasErrors() {
		return NewAppError(CodeConfig, v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
