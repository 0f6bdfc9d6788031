package cli

import (
	"fmt"

	"github.com/disiqueira/gotree/v3"
	"github.com/dustin/go-humanize"
	"github.com/paultcochrane/BackPAN-Index/pkg/model"
	"github.com/spf13/cobra"
)

// NewDistsCmd creates the dists command.
func NewDistsCmd() *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:   "dists",
		Short: "List distributions",
		Long:  "List the names of all distributions with at least one release",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDists(cmd, long)
		},
	}

	cmd.Flags().BoolVarP(&long, "long", "l", false, "Show release counts and dates")

	return cmd
}

// NewDistCmd creates the dist command.
func NewDistCmd() *cobra.Command {
	var tree bool

	cmd := &cobra.Command{
		Use:   "dist NAME",
		Short: "Show a distribution",
		Long: `Show the release history of a distribution. With --tree the
releases are rendered grouped by author.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDist(cmd, args[0], tree)
		},
	}

	cmd.Flags().BoolVarP(&tree, "tree", "t", false, "Render releases as a tree grouped by author")

	return cmd
}

func runDists(cmd *cobra.Command, long bool) error {
	idx, err := openIndex(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = idx.Close() }()

	if !long {
		names, err := idx.Dists(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list distributions: %w", err)
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	}

	dists, err := idx.DistSummaries(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list distributions: %w", err)
	}

	tabWriter := newTabWriter()
	_, _ = fmt.Fprintln(tabWriter, "DIST\tRELEASES\tFIRST\tLATEST")
	for _, d := range dists {
		_, _ = fmt.Fprintf(tabWriter, "%s\t%d\t%s\t%s\n", d.Name, d.NumReleases, formatDate(d.FirstDate), formatDate(d.LatestDate))
	}
	return tabWriter.Flush()
}

func runDist(cmd *cobra.Command, name string, tree bool) error {
	ctx := cmd.Context()
	idx, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = idx.Close() }()

	dist, err := idx.Dist(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to find distribution: %w", err)
	}
	releases, err := idx.Releases(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to list releases: %w", err)
	}

	if tree {
		fmt.Print(releaseTree(dist, releases).Print())
		return nil
	}

	latest, err := idx.LatestRelease(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to find latest release: %w", err)
	}
	authors, err := idx.DistAuthors(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to list authors: %w", err)
	}

	fmt.Printf("Distribution: %s\n", dist.Name)
	fmt.Printf("Releases: %d\n", dist.NumReleases)
	fmt.Printf("First release: %s (%s)\n", formatDate(dist.FirstDate), humanize.Time(dist.FirstTime()))
	fmt.Printf("Latest release: %s %s (%s)\n", latest.Version, formatDate(dist.LatestDate), humanize.Time(dist.LatestTime()))
	fmt.Printf("Authors: %d\n\n", len(authors))

	tabWriter := newTabWriter()
	writeReleases(tabWriter, releases)
	return tabWriter.Flush()
}

// releaseTree renders the releases of dist grouped by uploading author.
func releaseTree(dist *model.Dist, releases []model.Release) gotree.Tree {
	root := gotree.New(fmt.Sprintf("%s (%d releases)", dist.Name, dist.NumReleases))
	authors := make(map[string]gotree.Tree)
	for _, r := range releases {
		author := r.CPANID
		if author == "" {
			author = "(unknown)"
		}
		node := authors[author]
		if node == nil {
			node = root.Add(author)
			authors[author] = node
		}
		label := fmt.Sprintf("%s  %s", r.Version, formatDate(r.Date))
		if r.IsDeveloper() {
			label += "  [dev]"
		}
		node.Add(label).Add(r.Filename())
	}
	return root
}
