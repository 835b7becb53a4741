// Package smoketest drives a running TPI server with generated players and
// checks every returned score against the local scorer.
package smoketest

import (
	"time"

	"github.com/okian/tpi/internal/domain/model"
)

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumPlayers int           // Number of players to generate
	BatchSize  int           // Players per POST /v1/score request
	Workers    int           // Concurrent requests in flight
	Timeout    time.Duration // HTTP request timeout
	Tolerance  float64       // Allowed absolute TPI difference
	OutputFile string        // Optional JSON dump of generated players
	Verbose    bool          // Log every batch
}

// scoreRequest mirrors the POST /v1/score body.
type scoreRequest struct {
	Players []model.PlayerRecord `json:"players"`
}

// scoreResponse mirrors the POST /v1/score reply.
type scoreResponse struct {
	Columns []string              `json:"columns"`
	Players []model.DerivedRecord `json:"players"`
}

// apiError mirrors the error envelope returned by the service.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Stats holds run statistics.
type Stats struct {
	PlayersGenerated int
	BatchesSubmitted int
	BatchesFailed    int
	PlayersScored    int
	Mismatches       int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
