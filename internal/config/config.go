package config

import (
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Cache    CacheConfig    `mapstructure:"cache"`
	DB       DBConfig       `mapstructure:"db"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

type section interface {
	setDefaults(v *viper.Viper)
	bindEnvironmentVariables(v *viper.Viper) error
	validate() error
}

type namedSection struct {
	name string
	section
}

const defaultConfigFile = "./configs/config.yaml"

func Get() *Config {

	configFile := defaultConfigFile
	if value, ok := os.LookupEnv("CONFIG_PATH"); ok && value != "" {
		configFile = value
	}

	config, err := loadConfig(configFile)
	if err != nil {
		log.Fatal(err)
	}

	return config
}

func loadConfig(file string) (*Config, error) {

	v := viper.New()
	v.SetConfigFile(file)
	v.AutomaticEnv()

	empty := Config{}
	for _, s := range empty.sections() {
		s.setDefaults(v)
	}

	if err := bindEnvironmentVariables(v, empty.sections()); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", file, err)
	}

	config := Config{}
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (config Config) sections() []namedSection {
	return []namedSection{
		{"ServerConfig", config.Server},
		{"UpstreamConfig", config.Upstream},
		{"CacheConfig", config.Cache},
		{"DBConfig", config.DB},
		{"LoggerConfig", config.Logger},
	}
}

func bindEnvironmentVariables(v *viper.Viper, sections []namedSection) error {
	var errs []error

	for _, s := range sections {
		if err := s.bindEnvironmentVariables(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config Config) validate() error {
	var errs []error

	for _, s := range config.sections() {
		if err := s.validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func bindAll(v *viper.Viper, bindings map[string]string) error {
	var errs []error
	for key, variable := range bindings {
		if err := v.BindEnv(key, variable); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
