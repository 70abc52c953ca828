package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/TheBoringRats/ratcrowler/internal/build"
	"github.com/TheBoringRats/ratcrowler/internal/config"
)

var (
	cfgFile             string
	databasePath        string
	seedFilePath        string
	maxDepth            int
	maxPages            int
	maxConcurrent       int
	delayMs             int64
	timeout             time.Duration
	maxRedirects        int
	userAgents          []string
	respectRobotsTxt    bool
	searchEngineSeeding bool
	dashboardPort       int
	runDaemon           bool
	dashboardOnly       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ratcrowler",
	Short: "An autonomous web crawler and backlink discovery daemon.",
	Long: `ratcrowler continuously crawls the web from a set of seed URLs,
extracts structured page metadata into a local catalog, and on a recurring
schedule runs backlink discovery sessions that map who links to whom.

A clock-driven scheduler alternates the process between crawling and
backlink-discovery windows so both workloads share one database and one
politeness budget.`,
	Version: build.Version,
	Run: func(cmd *cobra.Command, args []string) {
		switch {
		case dashboardOnly:
			runDashboardOnly()
		case runDaemon:
			runSupervisor()
		default:
			cmd.Help()
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (JSON)")
	rootCmd.PersistentFlags().StringVar(&databasePath, "database-path", "", "catalog file location")
	rootCmd.PersistentFlags().StringVar(&seedFilePath, "seed-file", "", "JSON seed bootstrap file")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", 0, "maximum link depth from a seed URL")
	rootCmd.PersistentFlags().IntVar(&maxPages, "max-pages", 0, "maximum pages fetched per session")
	rootCmd.PersistentFlags().IntVar(&maxConcurrent, "max-concurrent-requests", 0, "requests in flight at once")
	rootCmd.PersistentFlags().Int64Var(&delayMs, "delay-ms", 0, "fixed delay between requests in milliseconds")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for HTTP requests")
	rootCmd.PersistentFlags().IntVar(&maxRedirects, "max-redirects", 0, "redirect hops before a fetch is abandoned")
	rootCmd.PersistentFlags().StringArrayVar(&userAgents, "user-agent", []string{}, "user agent pool entry (can be repeated)")
	rootCmd.PersistentFlags().BoolVar(&respectRobotsTxt, "respect-robots-txt", true, "consult robots.txt before fetching")
	rootCmd.PersistentFlags().BoolVar(&searchEngineSeeding, "search-engine-seeding", false, "seed backlink discovery from search engines")
	rootCmd.PersistentFlags().IntVar(&dashboardPort, "dashboard-port", 0, "port for the read-only stats server")

	rootCmd.Flags().BoolVar(&runDaemon, "daemon", false, "start the supervisor loop")
	rootCmd.Flags().BoolVar(&dashboardOnly, "dashboard-only", false, "serve stats endpoints without running engines")
}

// initConfig materializes the effective config from the config file (when
// given) overridden by any explicit flags.
func initConfig() config.Config {
	cfg, err := initConfigWithError()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

func initConfigWithError() (config.Config, error) {
	var builder *config.Config
	if cfgFile != "" {
		fileCfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return config.Config{}, fmt.Errorf("error initializing config from file: %w", err)
		}
		builder = &fileCfg
	} else {
		builder = config.WithDefault()
	}

	if databasePath != "" {
		builder = builder.WithDatabasePath(databasePath)
	}
	if seedFilePath != "" {
		builder = builder.WithSeedFilePath(seedFilePath)
	}
	if maxDepth > 0 {
		builder = builder.WithMaxDepth(maxDepth)
	}
	if maxPages > 0 {
		builder = builder.WithMaxPages(maxPages)
	}
	if maxConcurrent > 0 {
		builder = builder.WithMaxConcurrentRequests(maxConcurrent)
	}
	if delayMs > 0 {
		builder = builder.WithDelayBetweenRequests(time.Duration(delayMs) * time.Millisecond)
	}
	if timeout > 0 {
		builder = builder.WithTimeout(timeout)
	}
	if maxRedirects > 0 {
		builder = builder.WithMaxRedirects(maxRedirects)
	}
	if len(userAgents) > 0 {
		builder = builder.WithUserAgents(userAgents)
	}
	builder = builder.WithRespectRobotsTxt(respectRobotsTxt)
	if searchEngineSeeding {
		builder = builder.WithSearchEngineSeeding(true)
	}
	if dashboardPort > 0 {
		builder = builder.WithDashboardPort(dashboardPort)
	}

	return builder.Build()
}

// signalContext returns a context cancelled by SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
