package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/paultcochrane/BackPAN-Index/internal/logger"
	"github.com/paultcochrane/BackPAN-Index/pkg/download"
	"github.com/paultcochrane/BackPAN-Index/pkg/index"
	"github.com/paultcochrane/BackPAN-Index/pkg/model"
	"github.com/spf13/cobra"
)

type fetchOptions struct {
	dir  string
	all  bool
	jobs int
}

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	var opts fetchOptions

	cmd := &cobra.Command{
		Use:   "fetch DIST [VERSION]",
		Short: "Download release tarballs from the mirror",
		Long: `Download the tarball of a release of DIST. Without VERSION the latest
release is fetched; with --all every release of DIST is fetched.`,
		Args: cobra.RangeArgs(1, releaseCommandArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			version := ""
			if len(args) == releaseCommandArgs {
				version = args[1]
			}
			return runFetch(cmd, args[0], version, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "Directory to download into (default: current directory)")
	cmd.Flags().BoolVar(&opts.all, "all", false, "Fetch every release of DIST")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 0, "Number of parallel downloads")

	return cmd
}

func runFetch(cmd *cobra.Command, dist, version string, opts fetchOptions) error {
	if dist == "" {
		return fmt.Errorf("distribution name required")
	}
	if opts.all && version != "" {
		return fmt.Errorf("--all cannot be combined with a VERSION")
	}

	dir, err := fetchDir(opts.dir)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	idx, err := index.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = idx.Close() }()

	var releases []model.Release
	switch {
	case opts.all:
		releases, err = idx.Releases(ctx, dist)
		if err == nil && len(releases) == 0 {
			_, err = idx.Dist(ctx, dist)
		}
	case version != "":
		var r *model.Release
		if r, err = idx.Release(ctx, dist, version); err == nil {
			releases = []model.Release{*r}
		}
	default:
		var r *model.Release
		if r, err = idx.LatestRelease(ctx, dist); err == nil {
			releases = []model.Release{*r}
		}
	}
	if err != nil {
		return fmt.Errorf("failed to find release: %w", err)
	}

	items := make([]download.Item, 0, len(releases))
	var total int64
	for _, r := range releases {
		items = append(items, download.ItemFor(r, idx.MirrorURL()))
		total += r.Size
	}

	logger.Info("Fetching releases", logger.Fields{"dist": dist, "count": len(items), "dir": dir})
	manager := download.NewManager(cfg.Settings.HTTPTimeout, "")
	paths, err := manager.FetchAll(ctx, items, download.Options{Dir: dir, Concurrency: opts.jobs})
	if err != nil {
		return fmt.Errorf("failed to fetch releases: %w", err)
	}

	for _, item := range items {
		fmt.Println(paths[item.ID])
	}
	logger.Success(fmt.Sprintf("Fetched %d file(s), %s", len(items), humanize.IBytes(uint64(max(total, 0)))))
	return nil
}

func fetchDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	return abs, nil
}
