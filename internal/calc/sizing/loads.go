package sizing

import "github.com/shopspring/decimal"

type StartMethod string

const (
	StartDOL       StartMethod = "DOL"
	StartStarDelta StartMethod = "STAR"
	StartSoft      StartMethod = "SOFT"
	StartVFD       StartMethod = "VFD"
)

// Factor is the starting surge multiplier of the method. Unknown methods are
// treated as direct-on-line.
func (m StartMethod) Factor() float64 {
	switch m {
	case StartStarDelta:
		return 3.0
	case StartSoft:
		return 2.0
	case StartVFD:
		return 1.3
	default:
		return 6.0
	}
}

type IndustrialInput struct {
	BaseKW      float64     `json:"base_kw"`
	MotorKW     float64     `json:"motor_kw"`
	StartMethod StartMethod `json:"start_method"`
}

type LoadResult struct {
	RunningLoad   float64 `json:"running_load_kw"`
	PeakLoad      float64 `json:"peak_load_kw"`
	MaxSurgeDelta float64 `json:"max_surge_delta_kw"`
}

// AggregateResidential sums running draw over active appliances and adds the
// single largest starting surge, assuming devices start one at a time.
func AggregateResidential(devices []ApplianceSpec) LoadResult {
	var running, maxDelta float64
	for _, d := range devices {
		if d.Count <= 0 {
			continue
		}
		running += d.RunningKW * float64(d.Count)
		if delta := d.SurgeKW() - d.RunningKW; delta > maxDelta {
			maxDelta = delta
		}
	}
	return LoadResult{
		RunningLoad:   round(running, 2),
		PeakLoad:      round(running+maxDelta, 2),
		MaxSurgeDelta: round(maxDelta, 2),
	}
}

// AggregateIndustrial sizes a base load plus one dominant motor. With no base
// load the motor starts cold and the running load is reported as zero.
func AggregateIndustrial(in IndustrialInput) LoadResult {
	surge := in.MotorKW * in.StartMethod.Factor()

	var running, peak float64
	if in.BaseKW == 0 {
		peak = surge
	} else {
		running = in.BaseKW + in.MotorKW
		peak = in.BaseKW + surge
	}
	return LoadResult{
		RunningLoad:   round(running, 2),
		PeakLoad:      round(peak, 2),
		MaxSurgeDelta: round(surge-in.MotorKW, 2),
	}
}

// round rounds half away from zero at the given number of decimals.
func round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
