package sizing

import "math"

const (
	chartFloorKW  = 10
	chartHeadroom = 5
	chartTicks    = 6
)

// MarginPercentage is the share of generator capacity left over at running
// load, never negative.
func MarginPercentage(recommended int, runningLoad float64) int {
	if recommended == 0 {
		return 0
	}
	margin := (float64(recommended) - runningLoad) / float64(recommended) * 100
	return int(math.Max(0, math.Round(margin)))
}

type Chart struct {
	Max       float64   `json:"max_kw"`
	Ticks     []float64 `json:"ticks"`
	Running   float64   `json:"running_kw"`
	Available float64   `json:"available_kw"`
	Excess    float64   `json:"excess_kw"`
}

// ScaleChart computes the load chart axis, top tick first, and the three
// stacked segments drawn against it.
func ScaleChart(peakLoad float64, recommended int, runningLoad float64) Chart {
	rec := float64(recommended)
	top := math.Max(math.Max(peakLoad, rec), chartFloorKW) + chartHeadroom

	step := top / (chartTicks - 1)
	ticks := make([]float64, 0, chartTicks)
	for i := 0; i < chartTicks; i++ {
		ticks = append(ticks, round(top-float64(i)*step, 1))
	}

	c := Chart{Max: top, Ticks: ticks, Running: runningLoad}
	if rec >= runningLoad {
		c.Available = round(rec-runningLoad, 2)
	}
	if peakLoad > rec {
		c.Excess = round(peakLoad-rec, 2)
	}
	return c
}
