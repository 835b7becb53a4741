package service

import (
	"github.com/okian/tpi/internal/domain/model"
	"github.com/okian/tpi/internal/domain/table"
)

// SamplePlayer returns the illustrative player used by the driver and
// the /v1/sample endpoint.
func SamplePlayer() model.PlayerRecord {
	return model.PlayerRecord{
		Player:             "Player_A",
		GoalsPer90:         0.65,
		ShotConvRate:       22,
		PressingEfficiency: 75,
		PositioningRating:  80,
		SprintSpeed:        32.5,
		Composure:          85,
		BigGameImpact:      70,
	}
}

// SampleTable returns a one-row table holding SamplePlayer, with the
// player column first and inputs in schema order.
func SampleTable() *table.Table {
	cols := append([]string{model.ColPlayer}, model.InputColumns()...)
	return table.New(cols, table.Row(SamplePlayer().Values()))
}
