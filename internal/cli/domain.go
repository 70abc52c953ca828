package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var domainCmd = &cobra.Command{
	Use:   "domain <domain>",
	Short: "Integrated run over every scheme/slash variant of a domain",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		d := args[0]
		variants := []string{
			"https://" + d,
			"https://" + d + "/",
			"http://" + d,
			"http://" + d + "/",
		}

		seeds, err := parseURLs(variants)
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
	rootCmd.AddCommand(domainCmd)
}
