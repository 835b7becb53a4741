package smoketest

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/okian/tpi/internal/domain/model"
)

const randomFloatDivisor = 1000000

// Performer tiers.
const (
	tierLow = iota
	tierAverage
	tierHigh
	tierElite
	tierCount
)

// statRange bounds one generated input. Ranges for the top tier may exceed
// the benchmark denominators, which the scorer accepts.
type statRange struct{ min, max float64 }

type tierProfile struct {
	goals, conversion, rating, sprint statRange
}

var tierProfiles = [tierCount]tierProfile{ //nolint:gochecknoglobals // fixed generator table
	tierLow:     {goals: statRange{0, 0.2}, conversion: statRange{2, 10}, rating: statRange{30, 55}, sprint: statRange{25, 29}},
	tierAverage: {goals: statRange{0.1, 0.5}, conversion: statRange{8, 18}, rating: statRange{50, 75}, sprint: statRange{28, 32}},
	tierHigh:    {goals: statRange{0.4, 0.8}, conversion: statRange{15, 26}, rating: statRange{70, 88}, sprint: statRange{31, 34}},
	tierElite:   {goals: statRange{0.7, 1.3}, conversion: statRange{22, 36}, rating: statRange{85, 99}, sprint: statRange{33, 37}},
}

// getRandomFloat returns a random float64 in [0, 1) using crypto/rand.
func getRandomFloat() float64 {
	n, err := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	if err != nil {
		return 0
	}
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func randomTier() int {
	n, err := rand.Int(rand.Reader, big.NewInt(tierCount))
	if err != nil {
		return tierAverage
	}
	return int(n.Int64())
}

func (r statRange) draw() float64 {
	return r.min + getRandomFloat()*(r.max-r.min)
}

// GeneratePlayers creates n players with unique uuid identifiers.
func GeneratePlayers(ctx context.Context, n int) ([]model.PlayerRecord, error) {
	players := make([]model.PlayerRecord, n)
	for i := range players {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during player generation: %w", err)
		}
		players[i] = generatePlayer(uuid.NewString())
	}
	return players, nil
}

func generatePlayer(id string) model.PlayerRecord {
	p := tierProfiles[randomTier()]
	return model.PlayerRecord{
		Player:             id,
		GoalsPer90:         p.goals.draw(),
		ShotConvRate:       p.conversion.draw(),
		PressingEfficiency: p.rating.draw(),
		PositioningRating:  p.rating.draw(),
		SprintSpeed:        p.sprint.draw(),
		Composure:          p.rating.draw(),
		BigGameImpact:      p.rating.draw(),
	}
}

// batches splits players into consecutive chunks of at most size.
func batches(players []model.PlayerRecord, size int) [][]model.PlayerRecord {
	out := make([][]model.PlayerRecord, 0, (len(players)+size-1)/size)
	for start := 0; start < len(players); start += size {
		end := min(start+size, len(players))
		out = append(out, players[start:end])
	}
	return out
}
