package sizing

import (
	"fmt"
	"math"
)

// sqrt3 as used on the published proposal sheets.
const sqrt3 = 1.732

const industrialThreePhaseKW = 12

// ElectricalService is the assumed supply configuration and the transfer
// switch it calls for. Informational only, not a certified design.
type ElectricalService struct {
	Voltage      int    `json:"voltage_v"`
	ThreePhase   bool   `json:"three_phase"`
	VoltageLabel string `json:"voltage_label"`
	PhaseLabel   string `json:"phase_label"`
	Wires        int    `json:"wires"`
	Amps         int    `json:"amps"`
	Switch       string `json:"switch"`
}

// SelectService picks voltage and phase, then derives the current draw of the
// recommended generator. It returns nil when there is no running load.
func SelectService(recommended int, runningLoad float64, kind InstallationType, phase Phase) *ElectricalService {
	if runningLoad == 0 {
		return nil
	}

	voltage, threePhase := 240, false
	if kind == Industrial {
		if recommended >= industrialThreePhaseKW {
			voltage, threePhase = 480, true
		}
	} else if phase == ThreePhase {
		voltage, threePhase = 208, true
	}

	watts := float64(recommended) * 1000
	amps := watts / float64(voltage)
	if threePhase {
		amps = watts / (float64(voltage) * sqrt3)
	}
	rounded := int(math.Round(amps))

	svc := &ElectricalService{
		Voltage:      voltage,
		ThreePhase:   threePhase,
		VoltageLabel: VoltageLabel(voltage),
		PhaseLabel:   "1 Ph",
		Wires:        3,
		Amps:         rounded,
		Switch:       SwitchLabel(rounded),
	}
	if threePhase {
		svc.PhaseLabel = "3 Ph"
		svc.Wires = 4
	}
	return svc
}

func VoltageLabel(voltage int) string {
	switch voltage {
	case 480:
		return "480/277 V"
	case 208:
		return "208/120 V"
	default:
		return "120/240 V"
	}
}

// SwitchLabel maps a rounded current draw to a transfer switch rating.
func SwitchLabel(amps int) string {
	switch {
	case amps <= 100:
		return "100 A"
	case amps <= 200:
		return "200 A"
	case amps <= 400:
		return "400 A"
	default:
		return fmt.Sprintf("Industrial ATS (%d A)", amps)
	}
}
