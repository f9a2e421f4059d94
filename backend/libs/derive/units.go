package derive

import "strings"

// UnitSystem selects how speed is presented.
type UnitSystem string

const (
	Metric   UnitSystem = "metric"
	Imperial UnitSystem = "imperial"
)

// KmhToMph converts km/h to mph.
const KmhToMph = 0.621371

var unitAliases = map[string]UnitSystem{
	"metric":         Metric,
	"metric (km/h)":  Metric,
	"km/h":           Metric,
	"kmh":            Metric,
	"imperial":       Imperial,
	"imperial (mph)": Imperial,
	"mph":            Imperial,
}

// ParseUnitSystem maps a user-facing selection onto a UnitSystem.
func ParseUnitSystem(s string) (UnitSystem, error) {
	if units, ok := unitAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return units, nil
	}
	return "", &ConfigError{Field: "unit system", Value: s}
}

// SpeedLabel returns the display unit for speed.
func (u UnitSystem) SpeedLabel() (string, error) {
	switch u {
	case Metric:
		return "km/h", nil
	case Imperial:
		return "mph", nil
	default:
		return "", &ConfigError{Field: "unit system", Value: string(u)}
	}
}

// ConvertSpeed maps a raw km/h speed channel into the display channel for units.
// Missing samples stay missing; raw is not modified.
func ConvertSpeed(raw []float64, units UnitSystem) ([]float64, string, error) {
	label, err := units.SpeedLabel()
	if err != nil {
		return nil, "", err
	}

	factor := 1.0
	if units == Imperial {
		factor = KmhToMph
	}
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = v * factor
	}
	return out, label, nil
}
