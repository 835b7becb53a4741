// Package model contains domain models passed between layers.
package model

// Column names used in player tables. Input columns are read by the scorer,
// derived columns are written by it.
const (
	ColPlayer             = "player"
	ColGoalsPer90         = "goals_per_90"
	ColShotConvRate       = "shot_conv_rate"
	ColPressingEfficiency = "pressing_efficiency"
	ColPositioningRating  = "positioning_rating"
	ColSprintSpeed        = "sprint_speed"
	ColComposure          = "composure"
	ColBigGameImpact      = "big_game_impact"

	ColTechScore = "tech_score"
	ColTactScore = "tact_score"
	ColPhysScore = "phys_score"
	ColMentScore = "ment_score"
	ColTPI       = "TPI"
)

// InputColumns lists the numeric columns the scorer reads, in schema order.
func InputColumns() []string {
	return []string{
		ColGoalsPer90,
		ColShotConvRate,
		ColPressingEfficiency,
		ColPositioningRating,
		ColSprintSpeed,
		ColComposure,
		ColBigGameImpact,
	}
}

// DerivedColumns lists the columns appended by the scorer, in output order.
func DerivedColumns() []string {
	return []string{ColTechScore, ColTactScore, ColPhysScore, ColMentScore, ColTPI}
}

// PlayerRecord is one row of raw player statistics.
type PlayerRecord struct {
	Player             string  `json:"player"`
	GoalsPer90         float64 `json:"goals_per_90"`
	ShotConvRate       float64 `json:"shot_conv_rate"`
	PressingEfficiency float64 `json:"pressing_efficiency"`
	PositioningRating  float64 `json:"positioning_rating"`
	SprintSpeed        float64 `json:"sprint_speed"`
	Composure          float64 `json:"composure"`
	BigGameImpact      float64 `json:"big_game_impact"`
}

// Values returns the record as a column map.
func (p PlayerRecord) Values() map[string]any {
	return map[string]any{
		ColPlayer:             p.Player,
		ColGoalsPer90:         p.GoalsPer90,
		ColShotConvRate:       p.ShotConvRate,
		ColPressingEfficiency: p.PressingEfficiency,
		ColPositioningRating:  p.PositioningRating,
		ColSprintSpeed:        p.SprintSpeed,
		ColComposure:          p.Composure,
		ColBigGameImpact:      p.BigGameImpact,
	}
}

// DerivedRecord is a PlayerRecord plus the computed pillar scores and TPI.
type DerivedRecord struct {
	PlayerRecord

	TechScore float64 `json:"tech_score"`
	TactScore float64 `json:"tact_score"`
	PhysScore float64 `json:"phys_score"`
	MentScore float64 `json:"ment_score"`
	TPI       float64 `json:"TPI"`
}

// DerivedValues returns only the five computed columns.
func (d DerivedRecord) DerivedValues() map[string]any {
	return map[string]any{
		ColTechScore: d.TechScore,
		ColTactScore: d.TactScore,
		ColPhysScore: d.PhysScore,
		ColMentScore: d.MentScore,
		ColTPI:       d.TPI,
	}
}
