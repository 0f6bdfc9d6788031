package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewAuthorsCmd creates the authors command.
func NewAuthorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authors",
		Short: "List authors",
		Long:  "List the CPAN ids of every author with at least one release",
		RunE:  runAuthors,
	}

	return cmd
}

func runAuthors(cmd *cobra.Command, _ []string) error {
	idx, err := openIndex(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = idx.Close() }()

	authors, err := idx.Authors(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list authors: %w", err)
	}
	for _, author := range authors {
		fmt.Println(author)
	}
	return nil
}
