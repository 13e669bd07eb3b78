package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hoermto/unifi-energy/api"
	"github.com/hoermto/unifi-energy/core"
	"github.com/hoermto/unifi-energy/server"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config is the service configuration
type Config struct {
	Log       string               `mapstructure:"log" validate:"oneof=fatal error warn info debug trace FATAL ERROR WARN INFO DEBUG TRACE"`
	Levels    map[string]string    `mapstructure:"levels" validate:"dive,oneof=fatal error warn info debug trace FATAL ERROR WARN INFO DEBUG TRACE"`
	Database  string               `mapstructure:"database" validate:"required"`
	Registry  string               `mapstructure:"registry" validate:"required"`
	Network   NetworkConfig        `mapstructure:"network"`
	Discovery core.DiscoveryConfig `mapstructure:"discovery"`
	MQTT      *server.MqttConfig   `mapstructure:"mqtt" validate:"omitempty"`
}

// NetworkConfig is the HTTP listener configuration
type NetworkConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log", "info")
	v.SetDefault("database", "~/.unifi-energy/unifi-energy.db")
	v.SetDefault("network.addr", ":7071")
	v.SetDefault("discovery.platform", api.Upstream)
	v.SetDefault("discovery.strategy", api.StrategyEvent.String())
	v.SetDefault("discovery.interval", core.DefaultInterval)
}

// readConfig reads the config file if there is one
func readConfig(v *viper.Viper) error {
	err := v.ReadInConfig()

	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		log.INFO.Printf("using config file: %s", v.ConfigFileUsed())
	case errors.As(err, &notFound):
		log.INFO.Println("missing config file, using defaults")
	default:
		return fmt.Errorf("failed reading config file: %w", err)
	}

	return nil
}

// decodeConfig unmarshals and validates the configuration
func decodeConfig(v *viper.Viper) (Config, error) {
	var conf Config

	if err := v.UnmarshalExact(&conf, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	))); err != nil {
		return conf, fmt.Errorf("failed decoding config: %w", err)
	}

	if err := validator.New().Struct(conf); err != nil {
		return conf, fmt.Errorf("invalid config: %w", err)
	}

	if conf.Discovery.Interval < time.Second {
		return conf, fmt.Errorf("invalid config: discovery interval %v below 1s", conf.Discovery.Interval)
	}

	return conf, nil
}

func loadConfig(v *viper.Viper) (Config, error) {
	if err := readConfig(v); err != nil {
		return Config{}, err
	}
	return decodeConfig(v)
}
