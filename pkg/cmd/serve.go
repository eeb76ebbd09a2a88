package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yeisme/filevault/pkg/app"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "start the filevault http server",
	Aliases: []string{"server", "run"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.NewApp(configPath).Run()
	},
}

// registerServeCommands 注册服务启动命令.
func registerServeCommands() {
	rootCmd.AddCommand(serveCmd)
}
