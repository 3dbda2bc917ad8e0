package types

import "time"

// DetectionOptions is the caller-facing form of the duplicate detection
// settings. A nil field means "use the default"; dedup.NewConfig resolves
// the options into an immutable dedup.Config.
type DetectionOptions struct {
	// UseUID decides equality solely by UID when both records carry one.
	UseUID *bool `json:"use_uid,omitempty" yaml:"use_uid,omitempty" mapstructure:"use_uid"`

	// UseName lets the normalized display name participate in matching.
	UseName *bool `json:"use_name,omitempty" yaml:"use_name,omitempty" mapstructure:"use_name"`

	// UseEmail lets email-set intersection participate in matching.
	UseEmail *bool `json:"use_email,omitempty" yaml:"use_email,omitempty" mapstructure:"use_email"`

	// UsePhone lets digit-normalized phone-set intersection participate.
	UsePhone *bool `json:"use_phone,omitempty" yaml:"use_phone,omitempty" mapstructure:"use_phone"`
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

// StoreConfig holds settings for the SQLite store.
type StoreConfig struct {
	// DataDir contains merge-engine.db and the export/ directory.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
}

// ImportConfig holds limits applied by import and merge operations.
type ImportConfig struct {
	// MaxRecords caps the number of records accepted in one import (default 5000).
	MaxRecords int `json:"max_records" yaml:"max_records" mapstructure:"max_records"`
}

// FeedConfig holds settings for fetching URL-sourced collections.
type FeedConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with feed requests
	// (e.g. "merge-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries is the number of retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// Concurrency bounds how many feeds are fetched at once (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`

	// SecretsDir holds feed credentials, one file per host.
	SecretsDir string `json:"secrets_dir" yaml:"secrets_dir" mapstructure:"secrets_dir"`
}

// LogConfig selects the logger flavour.
type LogConfig struct {
	// Mode is "dev" (console encoder) or "prod" (JSON encoder).
	Mode string `json:"mode" yaml:"mode" mapstructure:"mode"`

	// Level is the minimum level: debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`
}

// AppConfig groups all settings read from the config file and environment.
type AppConfig struct {
	Store  StoreConfig      `json:"store" yaml:"store" mapstructure:",squash"`
	Dedup  DetectionOptions `json:"dedup" yaml:"dedup" mapstructure:"dedup"`
	Import ImportConfig     `json:"import" yaml:"import" mapstructure:"import"`
	Feed   FeedConfig       `json:"feed" yaml:"feed" mapstructure:"feed"`
	Log    LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
}
