package cli

import (
	"fmt"

	"github.com/paultcochrane/BackPAN-Index/internal/logger"
	"github.com/paultcochrane/BackPAN-Index/pkg/cache"
	"github.com/spf13/cobra"
)

// NewCacheCmd creates the cache command with subcommands
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the index cache",
		Long:  "Clean, show information about, and locate the cached index and database",
	}

	cmd.AddCommand(
		newCacheCleanCmd(),
		newCacheInfoCmd(),
		newCacheDirCmd(),
	)

	return cmd
}

func newCacheCleanCmd() *cobra.Command {
	var (
		all      bool
		index    bool
		database bool
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean the cache",
		Long: `Remove cached files. Without flags everything is removed; the next
command fetches and rebuilds the index.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runCacheClean(all, index, database)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Clean all cached files")
	cmd.Flags().BoolVar(&index, "index", false, "Clean only the downloaded and extracted index")
	cmd.Flags().BoolVar(&database, "database", false, "Clean only the database")

	return cmd
}

func newCacheInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show cache information",
		Long:  "Display the size and age of the cached files",
		RunE:  runCacheInfo,
	}

	return cmd
}

func newCacheDirCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dir",
		Short: "Show cache directory path",
		Long:  "Display the path to the cache directory",
		RunE:  runCacheDir,
	}

	return cmd
}

func cacheOperation() (*cache.CacheOperation, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return cache.NewCacheOperation(cache.NewManager(cfg.GetCacheDir())), nil
}

func runCacheClean(all, index, database bool) error {
	op, err := cacheOperation()
	if err != nil {
		return err
	}

	msg, err := op.Clean(all, index, database)
	if err != nil {
		return err
	}

	fmt.Println(msg)
	logger.Debug("Cache cleaning completed", logger.Fields{"directory": op.GetDirectory()})
	return nil
}

func runCacheInfo(*cobra.Command, []string) error {
	op, err := cacheOperation()
	if err != nil {
		return err
	}

	info, err := op.GetInfo()
	if err != nil {
		return err
	}

	fmt.Println(info)
	return nil
}

func runCacheDir(*cobra.Command, []string) error {
	op, err := cacheOperation()
	if err != nil {
		return err
	}

	fmt.Println(op.GetDirectory())
	return nil
}
