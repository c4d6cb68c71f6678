package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/panbanda/relic/internal/cache"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the on-disk result cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache size and age",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		stats, err := c.GetStats()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Directory: %s\n", appConfig.Cache.Dir)
		fmt.Fprintf(out, "Entries:   %d\n", stats.Entries)
		fmt.Fprintf(out, "Size:      %d bytes\n", stats.TotalSize)
		if stats.Entries > 0 {
			fmt.Fprintf(out, "Oldest:    %s\n", stats.OldestAge.Round(time.Second))
			fmt.Fprintf(out, "Newest:    %s\n", stats.NewestAge.Round(time.Second))
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		if err := c.Clear(); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		color.Green("Cleared %s", appConfig.Cache.Dir)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func openCache() (*cache.Cache, error) {
	cc := appConfig.Cache
	return cache.New(cc.Dir, time.Duration(cc.TTL)*time.Hour, true)
}
