package cmd

import (
	"tunestream/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动 tunestream 服务器",
	Long:  `启动音乐流媒体的 HTTP 服务器，提供曲库 API 和支持 Range 的音频流`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.ServerAddr = addr
		}
		return server.Start(cfg)
	},
}

func init() {
	serverCmd.Flags().String("addr", "", "监听地址，覆盖 SERVER_ADDR")
	rootCmd.AddCommand(serverCmd)
}
