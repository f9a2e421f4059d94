package derive

import (
	"encoding/json"
	"math"
)

// Measurement is a scalar that may be unavailable, as distinct from a computed zero.
type Measurement struct {
	Value     float64
	Available bool
}

// Available wraps a computed value.
func Available(v float64) Measurement {
	return Measurement{Value: v, Available: true}
}

// Unavailable marks a metric that does not apply to the session.
func Unavailable() Measurement {
	return Measurement{}
}

// MarshalJSON encodes an unavailable measurement as null.
func (m Measurement) MarshalJSON() ([]byte, error) {
	if !m.Available {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON accepts a number or null.
func (m *Measurement) UnmarshalJSON(data []byte) error {
	var v *float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*m = Unavailable()
		return nil
	}
	*m = Available(*v)
	return nil
}

// Summary holds the scalar metrics of one derived session.
type Summary struct {
	MaxSpeed       float64     `json:"max_speed"`
	SpeedUnit      string      `json:"speed_unit"`
	MaxPowerKW     float64     `json:"max_power_kw"`
	Energy         Energy      `json:"energy"`
	MeanVoltage    Measurement `json:"mean_voltage"`
	PowerAvailable bool        `json:"power_available"`
}

// Session is a raw table augmented with derived channels, plus its summary.
type Session struct {
	Table    *Table
	Summary  Summary
	Bindings Bindings
	Units    UnitSystem
}

// Build derives the augmented table and summary metrics for a raw session table.
// The raw table is not modified, so concurrent builds over the same table are safe.
func Build(raw *Table, units UnitSystem) (*Session, error) {
	if _, err := units.SpeedLabel(); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, &InsufficientDataError{Channel: ChannelTime, Reason: "no table"}
	}

	bindings := Resolve(raw.names)

	timeCol, ok := raw.Column(ChannelTime)
	if !ok {
		return nil, &InsufficientDataError{Channel: ChannelTime, Reason: "channel not found"}
	}

	speedName, ok := bindings.Channel(RoleSpeed)
	if !ok {
		return nil, &InsufficientDataError{Channel: ChannelDisplaySpeed, Reason: "speed channel not found"}
	}
	speed, _ := raw.Column(speedName)
	display, label, err := ConvertSpeed(speed, units)
	if err != nil {
		return nil, err
	}

	voltage := boundColumn(raw, bindings, RoleVoltage)
	current := boundColumn(raw, bindings, RoleCurrent)
	integ := Integrate(timeCol, voltage, current)

	table, err := raw.Extend(
		[]string{ChannelDisplaySpeed, ChannelPower, ChannelDt, ChannelEnergy},
		[][]float64{display, integ.PowerKW, integ.Dt, integ.EnergyWs},
	)
	if err != nil {
		return nil, err
	}

	maxSpeed, ok := maxOf(display)
	if !ok {
		return nil, &InsufficientDataError{Channel: ChannelDisplaySpeed, Reason: "every sample is missing"}
	}
	maxPower, _ := maxOf(integ.PowerKW)

	summary := Summary{
		MaxSpeed:       maxSpeed,
		SpeedUnit:      label,
		MaxPowerKW:     maxPower,
		Energy:         integ.Energy,
		MeanVoltage:    Unavailable(),
		PowerAvailable: integ.PowerAvailable,
	}
	if voltage != nil {
		if mean, ok := meanAbs(voltage); ok {
			summary.MeanVoltage = Available(mean)
		}
	}

	return &Session{
		Table:    table,
		Summary:  summary,
		Bindings: bindings,
		Units:    units,
	}, nil
}

func boundColumn(t *Table, b Bindings, role Role) []float64 {
	name, ok := b.Channel(role)
	if !ok {
		return nil
	}
	col, _ := t.Column(name)
	return col
}

func maxOf(series []float64) (float64, bool) {
	best := math.Inf(-1)
	found := false
	for _, v := range series {
		if IsMissing(v) {
			continue
		}
		if v > best {
			best = v
		}
		found = true
	}
	if !found {
		return 0, false
	}
	return best, true
}

func meanAbs(series []float64) (float64, bool) {
	var sum float64
	var count int
	for _, v := range series {
		if IsMissing(v) {
			continue
		}
		sum += math.Abs(v)
		count++
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}
