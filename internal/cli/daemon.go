package cli

import (
	"fmt"
	"os"
)

// runSupervisor starts the full daemon: supervisor loop plus dashboard.
// Engine errors never terminate the process; only a startup failure does:
// an invalid configuration (inside initConfig) or a catalog-open failure
// (inside newApp).
func runSupervisor() {
	cfg := initConfig()
	a := newApp(cfg)
	defer a.close()

	ctx, cancel := signalContext()
	defer cancel()

	go func() {
		if err := a.dashboard.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "dashboard server error: %s\n", err)
		}
	}()

	fmt.Printf("Dashboard available at http://localhost:%d\n", cfg.DashboardPort())
	a.supervisor.Run(ctx)
}

// runDashboardOnly serves the read-only stats endpoints without running
// any engine.
func runDashboardOnly() {
	cfg := initConfig()
	a := newApp(cfg)
	defer a.close()

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("Dashboard available at http://localhost:%d\n", cfg.DashboardPort())
	if err := a.dashboard.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "dashboard server error: %s\n", err)
		os.Exit(1)
	}
}
