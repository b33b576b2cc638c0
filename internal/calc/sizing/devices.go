package sizing

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// ApplianceSpec is one household device class. RunningKW is editable by the
// user, Alpha is the ratio of starting draw to running draw.
type ApplianceSpec struct {
	ID        string  `json:"id" yaml:"id"`
	Name      string  `json:"name" yaml:"name"`
	RunningKW float64 `json:"running_kw" yaml:"running_kw"`
	Alpha     float64 `json:"alpha" yaml:"alpha"`
	Count     int     `json:"count" yaml:"default_count"`
}

// SurgeKW is the starting draw of a single unit.
func (a ApplianceSpec) SurgeKW() float64 {
	return a.RunningKW * a.Alpha
}

func DefaultCatalog() []ApplianceSpec {
	return []ApplianceSpec{
		{ID: "ac", Name: "Air Conditioner", RunningKW: 2.5, Alpha: 3, Count: 1},
		{ID: "refrigerator", Name: "Refrigerator", RunningKW: 1.2, Alpha: 2, Count: 1},
		{ID: "lighting", Name: "Lighting", RunningKW: 0.3, Alpha: 1, Count: 1},
		{ID: "waterPump", Name: "Water Pump", RunningKW: 4.0, Alpha: 2.5, Count: 0},
	}
}

type catalogFile struct {
	Devices []ApplianceSpec `yaml:"devices"`
}

// LoadCatalog reads an appliance catalog from a YAML file of the form
//
//	devices:
//	  - id: ac
//	    name: Air Conditioner
//	    running_kw: 2.5
//	    alpha: 3
//	    default_count: 1
func LoadCatalog(path string) ([]ApplianceSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) ([]ApplianceSpec, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(f.Devices) == 0 {
		return nil, fmt.Errorf("catalog has no devices")
	}
	seen := make(map[string]bool, len(f.Devices))
	for i, d := range f.Devices {
		switch {
		case d.ID == "":
			return nil, fmt.Errorf("catalog device %d: empty id", i)
		case seen[d.ID]:
			return nil, fmt.Errorf("catalog device %q: duplicate id", d.ID)
		case !finite(d.RunningKW) || !finite(d.Alpha):
			return nil, fmt.Errorf("catalog device %q: non-finite value", d.ID)
		case d.RunningKW < 0 || d.Alpha < 0 || d.Count < 0:
			return nil, fmt.Errorf("catalog device %q: negative value", d.ID)
		case d.RunningKW > MaxKW || d.Alpha > MaxAlpha || d.Count > MaxCount:
			return nil, fmt.Errorf("catalog device %q: value above limit", d.ID)
		}
		seen[d.ID] = true
		if f.Devices[i].Name == "" {
			f.Devices[i].Name = d.ID
		}
	}
	return f.Devices, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
