package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pixelsort/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the sorted image cache",
		Long: `Manage the local cache of sorted images and score summaries.

Only runs with a fixed --seed are cached. When PIXELSORT_REDIS_URL is set the
shared Redis cache is used instead and entries expire on their own; clear
then also deletes the pixelsort keys from Redis.`,
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached results",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newPrinter(cmd.OutOrStdout())
			if url := os.Getenv(redisURLEnv); url != "" {
				if err := clearRedis(cmd.Context(), out, url); err != nil {
					return err
				}
			}

			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				out.info("Cache is empty")
				return nil
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			count, err := fc.Clear()
			if err != nil {
				return err
			}

			loggerFromContext(cmd.Context()).Debug("cache cleared", "dir", dir, "entries", count)
			out.success("Cleared %d cached entries", count)
			out.detail("Directory: %s", dir)
			return nil
		},
	}
}

// clearRedis deletes this tool's keys from the shared Redis cache.
func clearRedis(ctx context.Context, out printer, url string) error {
	rc, err := cache.NewRedisCache(ctx, url)
	if err != nil {
		return err
	}
	defer rc.Close()

	count, err := rc.Clear(ctx, redisKeyPrefix)
	if err != nil {
		return err
	}
	out.success("Cleared %d Redis entries", count)
	out.detail("Prefix: %s", redisKeyPrefix)
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
