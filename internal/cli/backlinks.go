package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const timeRounding = time.Millisecond

var backlinksCmd = &cobra.Command{
	Use:   "backlinks <url>...",
	Short: "Run backlink discovery for each target URL",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		targets, err := parseURLs(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}

		cfg := initConfig()
		a := newApp(cfg)
		defer a.close()

		ctx, cancel := signalContext()
		defer cancel()

		for _, target := range targets {
			analysis, aerr := a.backlinkEngine.Analyze(ctx, target)
			if aerr != nil {
				fmt.Fprintf(os.Stderr, "Error: discovery for %s failed: %s\n", target.String(), aerr)
				continue
			}

			fmt.Printf("Target:           %s\n", target.String())
			fmt.Printf("Backlinks:        %d\n", analysis.TotalBacklinks)
			fmt.Printf("Unique domains:   %d\n", analysis.UniqueDomains)
			fmt.Printf("Spam backlinks:   %d\n", analysis.SpamBacklinks)
			fmt.Printf("Domain authority: %.1f\n", analysis.DomainAuthority)
			fmt.Printf("PageRank:         %.1f\n", analysis.PageRankScore)

			printTopDomains(a)
			fmt.Println()
		}
	},
}

func printTopDomains(a *app) {
	scores, err := a.cat.TopDomainScores(5)
	if err != nil || len(scores) == 0 {
		return
	}
	fmt.Println("Top referring domains:")
	for _, s := range scores {
		fmt.Printf("  %-40s %6.1f (%d backlinks)\n", s.Domain, s.AuthorityScore, s.TotalBacklinks)
	}
}

func init() {
	rootCmd.AddCommand(backlinksCmd)
}
