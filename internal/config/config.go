// Package config loads and validates application configuration from
// environment variables (SPROUT_ prefix) and an optional config file.
package config

import "time"

// Config holds all application configuration, organized into logical
// groups.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
	Diary    DiaryConfig    `mapstructure:"diary"`
}

// StorageConfig locates generated image files on disk.
type StorageConfig struct {
	ImageDir string `mapstructure:"image_dir" validate:"required"`
}

// ServerConfig contains all server-related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related settings. An empty URL
// selects the in-memory store (development mode); job records are then
// lost on restart.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// LLMConfig contains all generation-provider settings.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	ModelName         string `mapstructure:"model_name"          validate:"required"`
	ImageModelName    string `mapstructure:"image_model_name"    validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries"         validate:"gte=0,lte=10"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0,lte=60"`
}

// JobsConfig bounds background job execution.
type JobsConfig struct {
	WorkerCount int           `mapstructure:"worker_count" validate:"required,gt=0,lte=64"`
	QueueSize   int           `mapstructure:"queue_size"   validate:"required,gt=0"`
	Timeout     time.Duration `mapstructure:"timeout"      validate:"required"`
}

// DiaryConfig configures diary generation and the scheduled trigger.
type DiaryConfig struct {
	// Timeout caps one diary generation end to end, streaming included.
	Timeout time.Duration `mapstructure:"timeout" validate:"required"`

	// TriggerKey is the shared secret for the auto-generate endpoint.
	TriggerKey string `mapstructure:"trigger_key" validate:"required,min=16"`

	// DefaultSubject is used when no completed analysis provides one.
	DefaultSubject string `mapstructure:"default_subject" validate:"required"`
}
