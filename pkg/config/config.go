package config

// Package config provides the loader for coordinator configuration files
// and environment variables. Values resolve in the usual order: defaults,
// then the YAML config file, then an environment-specific overlay, then
// QUERYAPI_* environment variables.

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"queryapi/pkg/utils"
)

// envKeyReplacer maps config paths like redis.connection_string onto
// QUERYAPI_REDIS_CONNECTION_STRING.
var envKeyReplacer = strings.NewReplacer(".", "_")

// Config is the coordinator's unified configuration.
type Config struct {
	Redis struct {
		ConnectionString string `mapstructure:"connection_string" yaml:"connection_string"`
	} `mapstructure:"redis" yaml:"redis"`

	Lake struct {
		AwsAccessKey       string `mapstructure:"aws_access_key" yaml:"aws_access_key"`
		AwsSecretAccessKey string `mapstructure:"aws_secret_access_key" yaml:"aws_secret_access_key"`
		Region             string `mapstructure:"region" yaml:"region"`
	} `mapstructure:"lake" yaml:"lake"`

	Registry struct {
		ContractID string `mapstructure:"contract_id" yaml:"contract_id"`
	} `mapstructure:"registry" yaml:"registry"`

	Metrics struct {
		Port uint16 `mapstructure:"port" yaml:"port"`
	} `mapstructure:"metrics" yaml:"metrics"`

	Logging struct {
		Level string `mapstructure:"level" yaml:"level"`
	} `mapstructure:"logging" yaml:"logging"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("redis.connection_string", "redis://127.0.0.1")
	// Empty defaults keep these keys visible to AutomaticEnv.
	v.SetDefault("lake.aws_access_key", "")
	v.SetDefault("lake.aws_secret_access_key", "")
	v.SetDefault("lake.region", "eu-central-1")
	v.SetDefault("registry.contract_id", "")
	v.SetDefault("metrics.port", 4000)
	v.SetDefault("logging.level", "info")
}

// Load reads configuration files and merges any environment specific
// overrides. The resulting configuration is stored in AppConfig and
// returned. A missing config file is fine; defaults and environment
// variables still apply.
func Load(env string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("default")
	v.AddConfigPath("config")
	v.AddConfigPath("cmd/config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, utils.Wrap(err, "load config")
		}
	}

	if env != "" {
		v.SetConfigName(env)
		if err := v.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	v.SetEnvPrefix("QUERYAPI")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv() // picks up from .env

	if err := v.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the QUERYAPI_ENV environment
// variable to pick the overlay.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("QUERYAPI_ENV", ""))
}

// WriteDefault writes a config file populated with the built-in defaults,
// as a starting point for a deployment.
func WriteDefault(path string) error {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return utils.Wrap(err, "build default config")
	}
	out, err := yaml.Marshal(&cfg)
	if err != nil {
		return utils.Wrap(err, "encode default config")
	}
	return os.WriteFile(path, out, 0o644)
}
