package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/paultcochrane/BackPAN-Index/internal/cli"
	"github.com/paultcochrane/BackPAN-Index/internal/logger"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	noCache    bool
	cacheDir   string
	indexURL   string
	allPaths   bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if err := godotenv.Load(); err != nil {
		logger.Debug(".env file not loaded", logger.Fields{"error": err})
	}

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backpan",
		Short: "Query a local copy of the BackPAN index",
		Long: `backpan downloads the index of every file ever uploaded to CPAN,
keeps it in a local SQLite database and answers queries about files,
distributions, releases and authors.`,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "fetch and rebuild the index regardless of its age")
	cmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "directory holding the index and database")
	cmd.PersistentFlags().StringVar(&indexURL, "index-url", "", "URL of the gzipped BackPAN index")
	cmd.PersistentFlags().BoolVar(&allPaths, "all-paths", false, "keep paths outside authors/")

	// Set up CLI pkg variables
	cli.ConfigPath = &configPath
	cli.Verbose = &verbose
	cli.NoCache = &noCache
	cli.CacheDir = &cacheDir
	cli.IndexURL = &indexURL
	cli.AllPaths = &allPaths

	// Add subcommands
	cmd.AddCommand(
		cli.NewSyncCmd(),
		cli.NewFilesCmd(),
		cli.NewDistsCmd(),
		cli.NewDistCmd(),
		cli.NewReleasesCmd(),
		cli.NewReleaseCmd(),
		cli.NewAuthorsCmd(),
		cli.NewFetchCmd(),
		cli.NewCacheCmd(),
		cli.NewConfigCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
