package configs

import "github.com/spf13/viper"

// EventsConfig 控制审计事件发布的开关（全局与分主题）。
type EventsConfig struct {
	Enabled bool             `mapstructure:"enabled"` // 总开关
	File    FileEventsConfig `mapstructure:"file"`
}

// FileEventsConfig 针对文件生命周期的事件开关。
type FileEventsConfig struct {
	Stored       bool `mapstructure:"stored"`
	Deleted      bool `mapstructure:"deleted"`
	Restored     bool `mapstructure:"restored"`
	Purged       bool `mapstructure:"purged"`
	Renamed      bool `mapstructure:"renamed"`
	StorageAlert bool `mapstructure:"storage_alert"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	// 总开关：默认启用事件系统
	v.SetDefault("events.enabled", true)

	// 默认仅开启最小必要集，避免噪声过大
	v.SetDefault("events.file.stored", true)
	v.SetDefault("events.file.deleted", true)
	v.SetDefault("events.file.storage_alert", true)

	// 可选事件：默认关闭，按需开启
	v.SetDefault("events.file.restored", false)
	v.SetDefault("events.file.purged", false)
	v.SetDefault("events.file.renamed", false)
}
