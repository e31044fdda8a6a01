package cmd

import (
	"context"
	"fmt"
	"time"

	"tunestream/cache"

	"github.com/spf13/cobra"
)

var redisFlush bool

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Redis连接测试",
	Long:  `测试Redis连接是否成功，并进行基本读写操作；--flush 清空媒体元数据缓存。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Redis配置: %s, DB: %d\n", cfg.RedisAddr(), cfg.RedisDB)

		client, err := cache.ConnectRedis(cfg)
		if err != nil {
			return err
		}
		defer cache.CloseRedis()
		fmt.Println("Redis连接成功！")

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := cache.TestRedis(ctx, client); err != nil {
			return fmt.Errorf("Redis操作测试失败: %w", err)
		}
		fmt.Println("Redis基本操作测试成功！")

		if redisFlush {
			n, err := cache.NewMediaStatCache(client, cfg.StatCacheTTL).Flush(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("已清除 %d 条媒体元数据缓存\n", n)
		}
		return nil
	},
}

func init() {
	redisCmd.Flags().BoolVar(&redisFlush, "flush", false, "清空媒体元数据缓存")
	rootCmd.AddCommand(redisCmd)
}
