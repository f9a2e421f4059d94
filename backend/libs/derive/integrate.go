package derive

import "math"

const (
	wattsPerKilowatt = 1000.0
	secondsPerHour   = 3600.0
)

// Energy summarises integrated energy over a session, in watt-hours.
type Energy struct {
	TotalWh            float64 `json:"total_wh"`
	SpentWh            float64 `json:"spent_wh"`
	RecoveredWh        float64 `json:"recovered_wh"`
	NetWh              float64 `json:"net_wh"`
	RegenEfficiencyPct float64 `json:"regen_efficiency_pct"`
}

// Integration is the output of Integrate. All series have one entry per sample.
type Integration struct {
	PowerKW        []float64
	Dt             []float64
	EnergyWs       []float64
	Energy         Energy
	PowerAvailable bool
}

// Integrate derives power, time deltas and energy from a time channel and the resolved
// voltage/current channels. A nil voltage or current means the role is unbound: every
// series and total is then zero and PowerAvailable is false.
//
// Energy uses left-rectangle integration: the interval ending at sample i is charged
// entirely with sample i's power. Historical totals depend on this rule.
func Integrate(time, voltage, current []float64) Integration {
	n := len(time)
	out := Integration{
		PowerKW:  make([]float64, n),
		Dt:       make([]float64, n),
		EnergyWs: make([]float64, n),
	}
	if voltage == nil || current == nil {
		return out
	}

	out.PowerAvailable = true
	out.Dt = TimeDeltas(time)

	var totalWs, spentKWs, recoveredKWs float64
	for i := 0; i < n; i++ {
		watts := math.Abs(sample(voltage, i)) * sample(current, i)
		if IsMissing(watts) {
			out.PowerKW[i], out.EnergyWs[i] = Missing, Missing
			continue
		}
		out.PowerKW[i] = watts / wattsPerKilowatt
		out.EnergyWs[i] = watts * out.Dt[i]
		totalWs += out.EnergyWs[i]

		p := out.PowerKW[i]
		switch {
		case p > 0:
			spentKWs += p * out.Dt[i]
		case p < 0:
			recoveredKWs += -p * out.Dt[i]
		}
	}

	out.Energy = splitEnergy(
		totalWs/secondsPerHour,
		spentKWs*wattsPerKilowatt/secondsPerHour,
		recoveredKWs*wattsPerKilowatt/secondsPerHour,
	)
	return out
}

// TimeDeltas returns t[i]-t[i-1], with dt[0] = 0. A delta touching a missing timestamp is 0.
func TimeDeltas(time []float64) []float64 {
	dt := make([]float64, len(time))
	for i := 1; i < len(time); i++ {
		d := time[i] - time[i-1]
		if IsMissing(d) {
			continue
		}
		dt[i] = d
	}
	return dt
}

func splitEnergy(totalWh, spentWh, recoveredWh float64) Energy {
	e := Energy{
		TotalWh:     totalWh,
		SpentWh:     spentWh,
		RecoveredWh: recoveredWh,
		NetWh:       spentWh - recoveredWh,
	}
	if spentWh > 0 {
		e.RegenEfficiencyPct = recoveredWh / spentWh * 100
	}
	return e
}

func sample(series []float64, i int) float64 {
	if i >= len(series) {
		return Missing
	}
	return series[i]
}
