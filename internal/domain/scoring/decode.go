package scoring

import (
	"encoding/json"
	"fmt"

	"github.com/okian/tpi/internal/domain/model"
	"github.com/okian/tpi/internal/domain/table"
)

// Decode reads a PlayerRecord out of row. index is only used for error
// reporting. Inputs are checked in schema order, so the first malformed
// field by schema position is the one reported.
//
// A nil cell counts as missing. Any Go numeric type or json.Number is
// accepted; everything else, numeric-looking strings included, is a type
// mismatch. The player cell is optional and stringified when not a string.
func Decode(row table.Row, index int) (model.PlayerRecord, error) {
	var rec model.PlayerRecord

	if v, ok := row[model.ColPlayer]; ok && v != nil {
		if s, isString := v.(string); isString {
			rec.Player = s
		} else {
			rec.Player = fmt.Sprint(v)
		}
	}

	targets := []struct {
		col string
		dst *float64
	}{
		{model.ColGoalsPer90, &rec.GoalsPer90},
		{model.ColShotConvRate, &rec.ShotConvRate},
		{model.ColPressingEfficiency, &rec.PressingEfficiency},
		{model.ColPositioningRating, &rec.PositioningRating},
		{model.ColSprintSpeed, &rec.SprintSpeed},
		{model.ColComposure, &rec.Composure},
		{model.ColBigGameImpact, &rec.BigGameImpact},
	}
	for _, tg := range targets {
		v, ok := row[tg.col]
		if !ok || v == nil {
			return model.PlayerRecord{}, &FieldError{Row: index, Field: tg.col, Kind: ErrMissingField}
		}
		f, ok := toFloat(v)
		if !ok {
			return model.PlayerRecord{}, &FieldError{Row: index, Field: tg.col, Value: v, Kind: ErrTypeMismatch}
		}
		*tg.dst = f
	}
	return rec, nil
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
