package analytics

import "github.com/PratikDhanave/campaign-analytics-service/internal/models"

// SimulateAIUplift returns a copy of k with OpenRate, CTR and CTOR multiplied by
// 1+uplift and rounded to 4 decimals. Sends and UnsubRate pass through, as do nil fields.
// Results are not clamped and may exceed 1.
func SimulateAIUplift(k models.KPISnapshot, uplift float64) models.KPISnapshot {
	lift := func(v *float64) *float64 {
		if v == nil {
			return nil
		}
		return ptr(round4(*v * (1.0 + uplift)))
	}
	copyOf := func(v *float64) *float64 {
		if v == nil {
			return nil
		}
		return ptr(*v)
	}

	out := models.KPISnapshot{
		OpenRate:  lift(k.OpenRate),
		CTR:       lift(k.CTR),
		CTOR:      lift(k.CTOR),
		UnsubRate: copyOf(k.UnsubRate),
	}
	if k.Sends != nil {
		out.Sends = ptr(*k.Sends)
	}
	return out
}
