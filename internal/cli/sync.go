package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/paultcochrane/BackPAN-Index/internal/logger"
	"github.com/paultcochrane/BackPAN-Index/pkg/index"
	"github.com/spf13/cobra"
)

// NewSyncCmd creates the sync command.
func NewSyncCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize the local BackPAN index",
		Long: `Download the BackPAN index when the cached copy is stale and
rebuild the local database from it. Use --force to ignore the cache.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Fetch and rebuild even when the cache is fresh")

	return cmd
}

func runSync(cmd *cobra.Command, force bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if force {
		cfg.Settings.NoCache = true
	}

	logger.Debug("Synchronizing BackPAN index", logger.Fields{"url": cfg.Settings.IndexURL, "cache_dir": cfg.Settings.CacheDir})

	stats, err := index.NewLoader(cfg.Settings).Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to sync index: %w", err)
	}

	if !stats.Rebuilt {
		logger.Success("Index is up to date", logger.Fields{"cache_dir": cfg.Settings.CacheDir})
		return nil
	}
	logger.Success("Index synchronized", logger.Fields{
		"fetched":  stats.Fetched,
		"files":    humanize.Comma(stats.Files),
		"releases": humanize.Comma(stats.Releases),
		"skipped":  humanize.Comma(stats.Skipped),
	})
	return nil
}
