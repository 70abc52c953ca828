package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

// integratedBacklinkCap bounds how many crawled pages get a follow-up
// discovery pass in one integrated run.
const integratedBacklinkCap = 10

var integratedCmd = &cobra.Command{
	Use:   "integrated <url>...",
	Short: "Crawl, then discover backlinks for the crawled pages",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		seeds, err := parseURLs(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}

		cfg := initConfig()
		a := newApp(cfg)
		defer a.close()

		ctx, cancel := signalContext()
		defer cancel()

		runIntegrated(a, ctx, seeds)
	},
}

func init() {
	rootCmd.AddCommand(integratedCmd)
}

// runIntegrated crawls the seeds, then runs a capped discovery pass over
// the freshest crawled pages.
func runIntegrated(a *app, ctx context.Context, seeds []url.URL) {
	result, cerr := a.crawlEngine.Crawl(ctx, seeds)
	if cerr != nil {
		fmt.Fprintf(os.Stderr, "Error: crawl failed: %s\n", cerr)
		os.Exit(1)
	}
	fmt.Printf("Session:       %s\n", result.SessionID)
	fmt.Printf("Pages crawled: %d\n", result.PagesCrawled)
	fmt.Printf("Errors:        %d\n", result.Errors)

	pages, perr := a.cat.RecentPages(integratedBacklinkCap)
	if perr != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot load crawled pages: %s\n", perr)
		os.Exit(1)
	}

	for _, page := range pages {
		target, uerr := url.Parse(page.URL)
		if uerr != nil {
			continue
		}
		analysis, aerr := a.backlinkEngine.Analyze(ctx, *target)
		if aerr != nil {
			fmt.Fprintf(os.Stderr, "Error: discovery for %s failed: %s\n", page.URL, aerr)
			continue
		}
		fmt.Printf("%-60s %3d backlinks, %2d domains\n",
			page.URL, analysis.TotalBacklinks, analysis.UniqueDomains)
	}
}
