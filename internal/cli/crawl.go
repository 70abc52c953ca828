package cli

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

var crawlURLs []string

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run a single crawl session over the given URLs",
	Run: func(cmd *cobra.Command, args []string) {
		if len(crawlURLs) == 0 {
			fmt.Fprintln(os.Stderr, "Error: --url is required at least once.")
			cmd.Usage()
			os.Exit(1)
		}

		seeds, err := parseURLs(crawlURLs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}

		cfg := initConfig()
		a := newApp(cfg)
		defer a.close()

		ctx, cancel := signalContext()
		defer cancel()

		result, cerr := a.crawlEngine.Crawl(ctx, seeds)
		if cerr != nil {
			fmt.Fprintf(os.Stderr, "Error: crawl failed: %s\n", cerr)
			os.Exit(1)
		}

		fmt.Printf("Session:       %s\n", result.SessionID)
		fmt.Printf("Pages crawled: %d\n", result.PagesCrawled)
		fmt.Printf("Errors:        %d\n", result.Errors)
		fmt.Printf("Skipped:       %d\n", result.Skipped)
		fmt.Printf("Duration:      %s\n", result.Duration.Round(timeRounding))
	},
}

func init() {
	crawlCmd.Flags().StringArrayVar(&crawlURLs, "url", []string{}, "seed URL (can be repeated)")
	rootCmd.AddCommand(crawlCmd)
}

func parseURLs(raw []string) ([]url.URL, error) {
	var urls []url.URL
	for _, r := range raw {
		u, err := url.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("error parsing URL %s: %w", r, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("URL %s must be absolute (http/https)", r)
		}
		urls = append(urls, *u)
	}
	return urls, nil
}
