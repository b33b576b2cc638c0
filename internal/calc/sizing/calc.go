package sizing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type InstallationType string

const (
	Residential InstallationType = "residential"
	Industrial  InstallationType = "industrial"
)

type Phase string

const (
	SinglePhase Phase = "1ph"
	ThreePhase  Phase = "3ph"
)

const (
	DutyStandby = "standby"
	DutyPrime   = "prime"
)

// Input ceilings. Sanitize saturates anything larger.
const (
	MaxKW    = 100_000.0
	MaxAlpha = 100.0
	MaxCount = 10_000
)

var ErrInstallationType = errors.New("unknown installation type")

// DeviceInput selects a catalog device or describes a custom one. A nil
// RunningKW keeps the catalog value.
type DeviceInput struct {
	ID        string   `json:"id"`
	Name      string   `json:"name,omitempty"`
	RunningKW *float64 `json:"running_kw,omitempty"`
	Alpha     *float64 `json:"alpha,omitempty"`
	Count     int      `json:"count"`
}

type Input struct {
	Method           string           `json:"method,omitempty"`
	InstallationType InstallationType `json:"installation_type"`
	Phase            Phase            `json:"phase"`
	ATS              *bool            `json:"ats,omitempty"`
	Devices          []DeviceInput    `json:"devices,omitempty"`
	Industrial       IndustrialInput  `json:"industrial"`
}

type Result struct {
	InstallationType InstallationType   `json:"installation_type"`
	Phase            Phase              `json:"phase"`
	ATS              bool               `json:"ats"`
	Duty             string             `json:"duty"`
	Devices          []ApplianceSpec    `json:"devices,omitempty"`
	Industrial       *IndustrialInput   `json:"industrial,omitempty"`
	Loads            LoadResult         `json:"loads"`
	RecommendedKW    int                `json:"recommended_kw"`
	MarginPercent    int                `json:"margin_percent"`
	Service          *ElectricalService `json:"service,omitempty"`
	Chart            Chart              `json:"chart"`
}

type Calculator struct {
	catalog []ApplianceSpec
}

// NewCalculator uses the given catalog, or the stock one when it is empty.
func NewCalculator(catalog []ApplianceSpec) *Calculator {
	if len(catalog) == 0 {
		catalog = DefaultCatalog()
	}
	return &Calculator{catalog: catalog}
}

// Catalog returns a copy of the appliance catalog with its default counts.
func (c *Calculator) Catalog() []ApplianceSpec {
	return append([]ApplianceSpec(nil), c.catalog...)
}

// Calculate sizes a generator for the stock catalog.
func Calculate(in Input) (Result, error) {
	return NewCalculator(nil).Calculate(in)
}

func (c *Calculator) Calculate(in Input) (Result, error) {
	in = Sanitize(in)

	res := Result{
		InstallationType: in.InstallationType,
		Phase:            in.Phase,
		ATS:              in.ATS == nil || *in.ATS,
	}
	res.Duty = DutyPrime
	if res.ATS {
		res.Duty = DutyStandby
	}

	var baseLoad float64
	switch in.InstallationType {
	case Residential:
		res.Devices = c.resolveDevices(in.Devices)
		res.Loads = AggregateResidential(res.Devices)
	case Industrial:
		ind := in.Industrial
		res.Industrial = &ind
		res.Loads = AggregateIndustrial(ind)
		baseLoad = ind.BaseKW
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrInstallationType, in.InstallationType)
	}

	industrial := in.InstallationType == Industrial
	res.RecommendedKW = RecommendedSize(res.Loads.RunningLoad, res.Loads.PeakLoad, industrial, baseLoad)
	res.MarginPercent = MarginPercentage(res.RecommendedKW, res.Loads.RunningLoad)
	res.Service = SelectService(res.RecommendedKW, res.Loads.RunningLoad, in.InstallationType, in.Phase)
	res.Chart = ScaleChart(res.Loads.PeakLoad, res.RecommendedKW, res.Loads.RunningLoad)
	return res, nil
}

// resolveDevices overlays the request on the catalog. Without any device
// selections the catalog default counts apply; otherwise unlisted devices
// are off. A selection matches a catalog id, or failing that a catalog name
// case-insensitively. Anything else becomes a custom appliance appended
// after the catalog.
func (c *Calculator) resolveDevices(sel []DeviceInput) []ApplianceSpec {
	devices := c.Catalog()
	if len(sel) == 0 {
		return devices
	}

	index := make(map[string]int, len(devices))
	names := make(map[string]int, len(devices))
	for i := range devices {
		index[devices[i].ID] = i
		names[strings.ToLower(strings.TrimSpace(devices[i].Name))] = i
		devices[i].Count = 0
	}
	for _, s := range sel {
		i, ok := index[s.ID]
		if !ok {
			i, ok = names[strings.ToLower(strings.TrimSpace(s.ID))]
		}
		if !ok {
			devices = append(devices, ApplianceSpec{ID: s.ID, Name: s.Name, Alpha: 1})
			i = len(devices) - 1
			index[s.ID] = i
		}
		d := &devices[i]
		d.Count += s.Count
		if s.RunningKW != nil {
			d.RunningKW = *s.RunningKW
		}
		if s.Alpha != nil {
			d.Alpha = *s.Alpha
		}
		if d.Name == "" {
			d.Name = d.ID
		}
	}
	return devices
}

// Sanitize applies the input boundary policy: negative or non-finite numbers
// become zero, values above the Max ceilings saturate, and an empty
// installation type or phase gets its default.
func Sanitize(in Input) Input {
	if in.InstallationType == "" {
		in.InstallationType = Residential
	}
	if in.Phase != ThreePhase {
		in.Phase = SinglePhase
	}
	in.Industrial.BaseKW = clamp(in.Industrial.BaseKW)
	in.Industrial.MotorKW = clamp(in.Industrial.MotorKW)
	switch in.Industrial.StartMethod {
	case StartDOL, StartStarDelta, StartSoft, StartVFD:
	default:
		in.Industrial.StartMethod = StartDOL
	}

	devices := make([]DeviceInput, 0, len(in.Devices))
	for _, d := range in.Devices {
		if d.ID == "" {
			continue
		}
		d.Count = min(max(d.Count, 0), MaxCount)
		if d.RunningKW != nil {
			v := clamp(*d.RunningKW)
			d.RunningKW = &v
		}
		if d.Alpha != nil {
			v := min(clamp(*d.Alpha), MaxAlpha)
			d.Alpha = &v
		}
		devices = append(devices, d)
	}
	in.Devices = devices
	return in
}

// ParseKW reads a user-typed power figure. Anything unparsable or negative
// reads as zero and anything above MaxKW reads as MaxKW.
func ParseKW(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return clamp(v)
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return min(v, MaxKW)
}
