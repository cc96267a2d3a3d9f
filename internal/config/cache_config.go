package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type CacheConfig struct {
	DatasetTTL           time.Duration `mapstructure:"dataset_ttl"`
	QueryTTL             time.Duration `mapstructure:"query_ttl"`
	QueryCleanupInterval time.Duration `mapstructure:"query_cleanup_interval"`
	WarmSchedule         string        `mapstructure:"warm_schedule"`
}

func (config CacheConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("cache.dataset_ttl", 60*time.Minute)
	v.SetDefault("cache.query_ttl", 5*time.Minute)
	v.SetDefault("cache.query_cleanup_interval", 10*time.Minute)
	v.SetDefault("cache.warm_schedule", "@every 55m")
}

func (config CacheConfig) validate() error {
	var errs []error

	if config.DatasetTTL <= 0 {
		errs = append(errs, fmt.Errorf("dataset_ttl must be positive"))
	}
	if config.QueryTTL <= 0 {
		errs = append(errs, fmt.Errorf("query_ttl must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config CacheConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return bindAll(v, map[string]string{
		"cache.dataset_ttl":   "DATASET_CACHE_TTL",
		"cache.query_ttl":     "QUERY_CACHE_TTL",
		"cache.warm_schedule": "CACHE_WARM_SCHEDULE",
	})
}
