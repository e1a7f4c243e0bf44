package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"gamatrix/internal/structures"

	"github.com/spf13/viper"
)

const AppName = "gamatrix"

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.SetDefault("webServer.host", "0.0.0.0")
	v.SetDefault("webServer.port", 8080)
	v.SetDefault("store.maxBackups", 3)
	v.SetDefault("ingestion.uploadMaxSize", 64<<20)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("cache.size", 16)
	v.SetDefault("cache.ttl", 300)

	v.BindEnv("logger.level", "GAMATRIX_LOG_LEVEL")
	v.BindEnv("store.filePath", "GAMATRIX_STORE_PATH")
	v.BindEnv("store.maxBackups", "GAMATRIX_MAX_BACKUPS")
	v.BindEnv("cache.enabled", "GAMATRIX_CACHE_ENABLED")

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
