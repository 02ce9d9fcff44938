// Command processor runs one triage batch from the command line: it
// fetches reviews from the configured source, triages them, creates
// tickets and prints the run summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonesrussell/review-triage/internal/bootstrap"
	"github.com/jonesrussell/review-triage/internal/logger"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup executes before
// the process exits.
func run() int {
	count := flag.Int("count", 0, "number of reviews to fetch (0 uses the configured batch size)")
	flag.Parse()

	cfg := bootstrap.LoadConfig()

	logg, err := bootstrap.CreateLogger(cfg)
	if err != nil {
		log.Printf("create logger: %v", err)
		return 1
	}
	defer func() { _ = logg.Sync() }()

	components, err := bootstrap.NewComponents(cfg, logg)
	if err != nil {
		logg.Error("failed to build service", logger.Error(err))
		return 1
	}
	defer components.Close()

	n := *count
	if n <= 0 {
		n = cfg.Service.BatchSize
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, _, err := components.Runner.RunFromSource(ctx, n)
	if err != nil {
		logg.Error("run failed", logger.Error(err))
		return 1
	}

	fmt.Printf("run %s: fetched=%d classified=%d spam=%d skipped=%d\n",
		summary.RunID, summary.Fetched, summary.Classified, summary.Spam, summary.Skipped)
	return 0
}
