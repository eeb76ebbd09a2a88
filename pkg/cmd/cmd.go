// Package cmd contains the command line applications for the project.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yeisme/filevault/pkg/configs"
)

var (
	// configPath 通过 --config 指定配置文件或目录，默认当前目录.
	configPath string
	// debug 附加调试输出（如 config debug 打印 viper 内部状态）.
	debug bool

	rootCmd = &cobra.Command{
		Use:   "filevault",
		Short: "FileVault: chunked upload file storage service",
		Long: `FileVault 是一个分片上传文件存储服务:
支持断点续传、软删除回收站与周期维护任务调度.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configs.InitConfig(configPath)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "config file or directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")

	registerServeCommands()
	registerConfigsCommands()
	registerDBCommands()
	registerKVCommands()
	registerMQCommands()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
