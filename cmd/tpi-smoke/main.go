// Command tpi-smoke scores generated players against a running server and
// verifies every TPI locally.
package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/tpi/internal/smoketest"
	"github.com/okian/tpi/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumPlayers = 10000
	defaultBatchSize  = 250
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numPlayers = flag.Int("players", defaultNumPlayers, "Number of players to generate")
		batchSize  = flag.Int("batch", defaultBatchSize, "Players per request")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent requests")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Optional JSON file for the generated players")
		verbose    = flag.Bool("verbose", false, "Log every batch")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		smoketest.ShowHelp(os.Stdout)
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &smoketest.Config{
		BaseURL:    *baseURL,
		NumPlayers: *numPlayers,
		BatchSize:  *batchSize,
		Workers:    *workers,
		Timeout:    *timeout,
		OutputFile: *outputFile,
		Verbose:    *verbose,
	}
	if _, err := smoketest.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("smoke run failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
