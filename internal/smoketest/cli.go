package smoketest

import "io"

// ShowHelp prints usage information for the smoke tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `TPI Smoke Tool
==============

Generates random players, scores them through a running TPI server and
checks every returned TPI against the local scorer.

Usage:
  go run ./cmd/tpi-smoke [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -players int
        Number of players to generate (default 10000)
  -batch int
        Players per request (default 250)
  -workers int
        Concurrent requests (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Optional JSON file for the generated players
  -verbose
        Log every batch
  -help
        Show this help message

Examples:
  go run ./cmd/tpi-smoke -players 50000 -workers 16 -url http://localhost:8080
`)
}
