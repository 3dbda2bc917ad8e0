// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"fmt"

	"github.com/pdiddy/merge-engine/pkg/types"
)

// Config selects which signals take part in duplicate detection. It is a
// plain value with every field resolved; build it with NewConfig or
// DefaultConfig. All sixteen flag combinations are valid.
type Config struct {
	UseUID   bool
	UseName  bool
	UseEmail bool
	UsePhone bool
}

// DefaultConfig returns the contact defaults: UID, name and email on,
// phone off.
func DefaultConfig() Config {
	return Config{
		UseUID:   true,
		UseName:  true,
		UseEmail: true,
		UsePhone: false,
	}
}

// TaskDefaults returns the defaults used for task collections. Tasks carry
// no contact channels, so the name alone decides when no UID is present.
func TaskDefaults() Config {
	return Config{
		UseUID:  true,
		UseName: true,
	}
}

// NewConfig resolves opts against DefaultConfig.
func NewConfig(opts types.DetectionOptions) Config {
	return NewConfigFrom(DefaultConfig(), opts)
}

// NewConfigFrom resolves opts against base. Fields left nil in opts keep
// the value from base.
func NewConfigFrom(base Config, opts types.DetectionOptions) Config {
	cfg := base
	if opts.UseUID != nil {
		cfg.UseUID = *opts.UseUID
	}
	if opts.UseName != nil {
		cfg.UseName = *opts.UseName
	}
	if opts.UseEmail != nil {
		cfg.UseEmail = *opts.UseEmail
	}
	if opts.UsePhone != nil {
		cfg.UsePhone = *opts.UsePhone
	}
	return cfg
}

// Options converts the config back to its fully populated options form,
// for reports and logs.
func (c Config) Options() types.DetectionOptions {
	return types.DetectionOptions{
		UseUID:   types.BoolPtr(c.UseUID),
		UseName:  types.BoolPtr(c.UseName),
		UseEmail: types.BoolPtr(c.UseEmail),
		UsePhone: types.BoolPtr(c.UsePhone),
	}
}

// String returns a human-readable representation of the config.
func (c Config) String() string {
	return fmt.Sprintf("Config{UID: %t, Name: %t, Email: %t, Phone: %t}",
		c.UseUID, c.UseName, c.UseEmail, c.UsePhone)
}
