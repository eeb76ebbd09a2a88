// Package configs 管理应用程序配置，包括数据库、本地存储、调度器和队列的配置信息.
// configs 包支持多种配置格式（YAML、JSON、TOML、dotenv）并启用热重载.
//
// Example:
//
//	import "path/to/configs"
//
//	err := configs.InitConfig("./")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	config := configs.GetConfig()
//	fmt.Println(config.Server.Port)
//
// Example accessing DB config:
//
//	config := configs.GetConfig()
//	dbConfig := config.DB
//	dsn := dbConfig.GetDSN()
//	fmt.Println("DSN:", dsn)
//
// Example accessing Storage config:
//
//	config := configs.GetConfig()
//	storageConfig := config.Storage
//	fmt.Println("Active tree:", storageConfig.ActivePath())
package configs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type (
	// AppConfig 全局应用程序配置.
	AppConfig struct {
		DB        DBConfig             `mapstructure:"db"`        // DBConfig 数据库配置
		Storage   StorageConfig        `mapstructure:"storage"`   // StorageConfig 本地文件存储配置
		MQ        MQConfig             `mapstructure:"mq"`        // MQConfig 消息队列配置
		KV        KVConfig             `mapstructure:"kv"`        // KVConfig 键值缓存配置
		Server    ServerConfig         `mapstructure:"server"`    // ServerConfig 其它服务器配置，日志级别、服务器端口等
		Scheduler SchedulerConfig      `mapstructure:"scheduler"` // SchedulerConfig 维护任务调度配置
		Log       LogConfig            `mapstructure:"log"`       // LogConfig 日志相关配置
		Auth      AuthConfig           `mapstructure:"auth"`      // AuthConfig 认证配置
		Metrics   MetricsConfig        `mapstructure:"metrics"`   // MetricsConfig 监控配置
		RateLimit RateLimitConfig      `mapstructure:"rate_limit"`
		Breaker   CircuitBreakerConfig `mapstructure:"circuit_breaker"`
		Events    EventsConfig         `mapstructure:"events"`
	}
)

var (
	// globalConfig 全局配置实例.
	globalConfig AppConfig
	// appViper 全局 Viper 实例.
	appViper *viper.Viper
)

// InitConfig 加载应用程序配置，支持多种格式(yaml、json、toml、dotenv)并启用热重载.
func InitConfig(path string) error {
	appViper = viper.New()
	// 设置默认值
	setAllDefaults(appViper)

	// 检查path是否是文件
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		// 是文件，使用SetConfigFile，Viper会自动检测类型
		appViper.SetConfigFile(path)
	} else {
		// 是目录，设置配置名和路径
		appViper.SetConfigName("config")
		appViper.AddConfigPath(path)
		appViper.AddConfigPath(path + "/configs")

		exts := []string{"yaml", "yml", "json", "toml", "env", "dotenv"}

		for _, ext := range exts {
			cfg := filepath.Join(path, "config."+ext)
			if _, err := os.Stat(cfg); err == nil {
				appViper.SetConfigFile(cfg)

				break
			}
		}
	}

	appViper.AutomaticEnv()
	appViper.SetEnvPrefix("FILEVAULT")

	// 读取配置；没有配置文件时回退到默认值+环境变量
	if err := appViper.ReadInConfig(); err != nil {
		if appViper.ConfigFileUsed() != "" {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	// 解析到全局配置
	if err := appViper.Unmarshal(&globalConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	reloadConfigs(appViper, globalConfig.Server.ReloadConfig)

	return nil
}

// setAllDefaults 设置所有配置的默认值.
func setAllDefaults(v *viper.Viper) {
	var serverConfig ServerConfig

	var dbConfig DBConfig

	var storageConfig StorageConfig

	var schedulerConfig SchedulerConfig

	var mqConfig MQConfig

	var kvConfig KVConfig

	var logConfig LogConfig

	var authConfig AuthConfig

	var metricsConfig MetricsConfig

	var rateLimitConfig RateLimitConfig

	var breakerConfig CircuitBreakerConfig

	var eventsConfig EventsConfig

	serverConfig.setDefaults(v)
	dbConfig.setDefaults(v)
	storageConfig.setDefaults(v)
	schedulerConfig.setDefaults(v)
	mqConfig.setDefaults(v)
	kvConfig.setDefaults(v)
	logConfig.setDefaults(v)
	authConfig.setDefaults(v)
	metricsConfig.setDefaults(v)
	rateLimitConfig.setDefaults(v)
	breakerConfig.setDefaults(v)
	eventsConfig.setDefaults(v)
}

// reloadConfigs 启用配置热重载，解析失败时保留旧配置.
func reloadConfigs(v *viper.Viper, isHotReload bool) {
	if !isHotReload {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		var next AppConfig
		if err := v.Unmarshal(&next); err == nil {
			globalConfig = next
		}
	})
	v.WatchConfig()
}

// GetConfig 返回全局配置.
func GetConfig() *AppConfig {
	return &globalConfig
}

// GetViper 返回全局 Viper 实例.
func GetViper() *viper.Viper {
	return appViper
}
