package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"trainlog/internal/structures"
)

const AppName = "TrainLog"

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.SetDefault("store.driver", "memory")
	v.SetDefault("analytics.defaultPeriod", "30d")
	v.SetDefault("cache.ttl", "60s")

	v.BindEnv("logger.level", "TRAINLOG_LOG_LEVEL")
	v.BindEnv("store.driver", "TRAINLOG_STORE_DRIVER")
	v.BindEnv("store.dsn", "TRAINLOG_STORE_DSN")
	v.BindEnv("cache.enabled", "TRAINLOG_CACHE_ENABLED")
	v.BindEnv("cache.size", "TRAINLOG_CACHE_SIZE")
	v.BindEnv("analytics.defaultPeriod", "TRAINLOG_DEFAULT_PERIOD")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
