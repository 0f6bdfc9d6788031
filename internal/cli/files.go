package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewFilesCmd creates the files command.
func NewFilesCmd() *cobra.Command {
	var (
		prefix string
		urls   bool
	)

	cmd := &cobra.Command{
		Use:   "files",
		Short: "List files in the BackPAN index",
		Long: `List every file recorded in the BackPAN index with its upload
date and size. Use --prefix to restrict the listing to one directory.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFiles(cmd, prefix, urls)
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "Only list paths starting with this prefix")
	cmd.Flags().BoolVar(&urls, "urls", false, "Print download URLs instead of a table")

	return cmd
}

func runFiles(cmd *cobra.Command, prefix string, urls bool) error {
	idx, err := openIndex(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = idx.Close() }()

	files, err := idx.Files(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	if urls {
		for _, f := range files {
			if strings.HasPrefix(f.Prefix, prefix) {
				fmt.Println(f.URL(idx.MirrorURL()))
			}
		}
		return nil
	}

	tabWriter := newTabWriter()
	_, _ = fmt.Fprintln(tabWriter, "PATH\tDATE\tSIZE")
	for _, f := range files {
		if !strings.HasPrefix(f.Prefix, prefix) {
			continue
		}
		_, _ = fmt.Fprintf(tabWriter, "%s\t%s\t%s\n", f.Path(), formatDate(f.Date), formatSize(f.Size))
	}
	return tabWriter.Flush()
}
