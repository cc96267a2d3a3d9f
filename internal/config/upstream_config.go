package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type UpstreamConfig struct {
	BaseURL              string        `mapstructure:"base_url"`
	BatchSize            int           `mapstructure:"batch_size"`
	MaxRecords           int           `mapstructure:"max_records"`
	FilteredRowCap       int           `mapstructure:"filtered_row_cap"`
	MaxAttempts          int           `mapstructure:"max_attempts"`
	BackoffBase          time.Duration `mapstructure:"backoff_base"`
	BatchTimeout         time.Duration `mapstructure:"batch_timeout"`
	RecordTimeout        time.Duration `mapstructure:"record_timeout"`
	MaxRequestsPerSecond float32       `mapstructure:"max_requests_per_second"`
}

func (config UpstreamConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("upstream.batch_size", 1000)
	v.SetDefault("upstream.max_records", 50000)
	v.SetDefault("upstream.filtered_row_cap", 1000)
	v.SetDefault("upstream.max_attempts", 3)
	v.SetDefault("upstream.backoff_base", time.Second)
	v.SetDefault("upstream.batch_timeout", 30*time.Second)
	v.SetDefault("upstream.record_timeout", 10*time.Second)
	v.SetDefault("upstream.max_requests_per_second", 5)
}

func (config UpstreamConfig) validate() error {
	var errs []error

	if config.BaseURL == "" {
		errs = append(errs, fmt.Errorf("missing variable: base_url"))
	}
	if config.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("batch_size must be positive"))
	}
	if config.MaxRecords < config.BatchSize {
		errs = append(errs, fmt.Errorf("max_records must not be less than batch_size"))
	}
	if config.FilteredRowCap <= 0 {
		errs = append(errs, fmt.Errorf("filtered_row_cap must be positive"))
	}
	if config.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("max_attempts must be positive"))
	}
	if config.BatchTimeout <= 0 || config.RecordTimeout <= 0 {
		errs = append(errs, fmt.Errorf("timeouts must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config UpstreamConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return bindAll(v, map[string]string{
		"upstream.base_url":                "NYC_JOBS_API_URL",
		"upstream.max_requests_per_second": "UPSTREAM_MAX_REQUESTS_PER_SECOND",
	})
}
