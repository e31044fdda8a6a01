package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"tunestream/core/stream"
	"tunestream/storage"

	"github.com/spf13/cobra"
)

var (
	mediaPrefix string
	mediaStats  bool
)

var mediaCmd = &cobra.Command{
	Use:   "media",
	Short: "查看媒体存储",
	Long:  `查看当前媒体后端（本地目录或 MinIO 存储桶）中的文件，支持按前缀过滤和统计信息。`,
}

var mediaLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "列出媒体文件",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		lister, err := openLister(ctx)
		if err != nil {
			return err
		}
		objects, err := lister.List(ctx, mediaPrefix)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if mediaStats {
			printStats(out, storage.Summarize(objects))
			return nil
		}
		printObjects(out, objects)
		return nil
	},
}

var mediaStatCmd = &cobra.Command{
	Use:   "stat <key>",
	Short: "查看单个媒体文件的元数据",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		store, err := storage.Open(ctx, cfg)
		if err != nil {
			return err
		}
		obj, err := store.Stat(ctx, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Key:           %s\n", obj.Key)
		fmt.Fprintf(out, "Size:          %s (%d bytes)\n", storage.FormatSize(obj.Size), obj.Size)
		fmt.Fprintf(out, "Content-Type:  %s\n", stream.ResolveContentType("", obj.Key, obj.ContentType))
		if obj.ETag != "" {
			fmt.Fprintf(out, "ETag:          %s\n", obj.ETag)
		}
		fmt.Fprintf(out, "Last modified: %s\n", obj.LastModified.Format("2006-01-02 15:04:05"))
		return nil
	},
}

func openLister(ctx context.Context) (storage.Lister, error) {
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	lister, ok := store.(storage.Lister)
	if !ok {
		return nil, fmt.Errorf("media backend %q does not support listing", cfg.MediaBackend)
	}
	return lister, nil
}

func printObjects(out io.Writer, objects []storage.MediaObject) {
	if len(objects) == 0 {
		fmt.Fprintln(out, "没有找到文件")
		return
	}
	fmt.Fprintf(out, "%-60s %12s %20s\n", "文件名", "大小", "最后修改时间")
	for _, obj := range objects {
		fmt.Fprintf(out, "%-60s %12s %20s\n",
			obj.Key,
			storage.FormatSize(obj.Size),
			obj.LastModified.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(out, "\n共 %d 个文件\n", len(objects))
}

func printStats(out io.Writer, stats *storage.BucketStats) {
	fmt.Fprintf(out, "总文件数: %d\n", stats.TotalObjects)
	fmt.Fprintf(out, "总大小:   %s\n", storage.FormatSize(stats.TotalSize))
	if !stats.LastModified.IsZero() {
		fmt.Fprintf(out, "最后修改: %s\n", stats.LastModified.Format("2006-01-02 15:04:05"))
	}

	exts := make([]string, 0, len(stats.TypeStats))
	for ext := range stats.TypeStats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	fmt.Fprintln(out, "\n文件类型分布:")
	for _, ext := range exts {
		fmt.Fprintf(out, "  %-10s %d\n", ext, stats.TypeStats[ext])
	}
}

func init() {
	mediaLsCmd.Flags().StringVarP(&mediaPrefix, "prefix", "p", "", "按前缀过滤文件")
	mediaLsCmd.Flags().BoolVarP(&mediaStats, "stats", "s", false, "显示统计信息")
	mediaCmd.AddCommand(mediaLsCmd, mediaStatCmd)
	rootCmd.AddCommand(mediaCmd)

	mediaCmd.Example = `  # 列出所有文件
  tunestream media ls

  # 按前缀过滤
  tunestream media ls -p "music/"

  # 统计信息
  tunestream media ls -s

  # 查看单个文件
  tunestream media stat music/song.mp3`
}
