package cli

import (
	"fmt"

	"github.com/paultcochrane/BackPAN-Index/pkg/model"
	"github.com/spf13/cobra"
)

// Number of arguments expected by the release command.
const releaseCommandArgs = 2

// NewReleasesCmd creates the releases command.
func NewReleasesCmd() *cobra.Command {
	var (
		author    string
		byVersion bool
		devOnly   bool
	)

	cmd := &cobra.Command{
		Use:   "releases [DIST]",
		Short: "List releases",
		Long: `List releases ordered by upload date. Without DIST every release in
the index is listed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dist := ""
			if len(args) == 1 {
				dist = args[0]
			}
			return runReleases(cmd, dist, author, byVersion, devOnly)
		},
	}

	cmd.Flags().StringVarP(&author, "author", "a", "", "Only list releases uploaded by this CPAN id")
	cmd.Flags().BoolVar(&byVersion, "by-version", false, "Order by version instead of upload date")
	cmd.Flags().BoolVar(&devOnly, "dev", false, "Only list developer releases")

	return cmd
}

// NewReleaseCmd creates the release command.
func NewReleaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release DIST VERSION",
		Short: "Show a single release",
		Long:  "Show the release of DIST whose version is exactly VERSION",
		Args:  cobra.ExactArgs(releaseCommandArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelease(cmd, args[0], args[1])
		},
	}

	return cmd
}

func runReleases(cmd *cobra.Command, dist, author string, byVersion, devOnly bool) error {
	ctx := cmd.Context()
	idx, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = idx.Close() }()

	var releases []model.Release
	if author != "" {
		releases, err = idx.ReleasesByAuthor(ctx, author)
	} else {
		releases, err = idx.Releases(ctx, dist)
	}
	if err != nil {
		return fmt.Errorf("failed to list releases: %w", err)
	}

	filtered := releases[:0]
	for _, r := range releases {
		if dist != "" && r.Dist != dist {
			continue
		}
		if devOnly && !r.IsDeveloper() {
			continue
		}
		filtered = append(filtered, r)
	}
	if byVersion {
		model.SortByVersion(filtered)
	}

	if len(filtered) == 0 {
		fmt.Println("No releases found")
		return nil
	}

	tabWriter := newTabWriter()
	writeReleases(tabWriter, filtered)
	return tabWriter.Flush()
}

func runRelease(cmd *cobra.Command, dist, version string) error {
	ctx := cmd.Context()
	idx, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = idx.Close() }()

	r, err := idx.Release(ctx, dist, version)
	if err != nil {
		return fmt.Errorf("failed to find release: %w", err)
	}

	tabWriter := newTabWriter()
	_, _ = fmt.Fprintf(tabWriter, "Dist:\t%s\n", r.Dist)
	_, _ = fmt.Fprintf(tabWriter, "Version:\t%s\n", r.Version)
	_, _ = fmt.Fprintf(tabWriter, "Maturity:\t%s\n", r.Maturity)
	_, _ = fmt.Fprintf(tabWriter, "Author:\t%s\n", r.CPANID)
	_, _ = fmt.Fprintf(tabWriter, "Distvname:\t%s\n", r.DistVName)
	_, _ = fmt.Fprintf(tabWriter, "Path:\t%s\n", r.Path())
	_, _ = fmt.Fprintf(tabWriter, "Date:\t%s\n", formatDate(r.Date))
	_, _ = fmt.Fprintf(tabWriter, "Size:\t%s\n", formatSize(r.Size))
	_, _ = fmt.Fprintf(tabWriter, "URL:\t%s\n", r.URL(idx.MirrorURL()))
	return tabWriter.Flush()
}
