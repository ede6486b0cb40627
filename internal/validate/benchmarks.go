package validate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Range is an inclusive plausible range for a metric, in the metric's
// natural unit (percent for margins and growth rates).
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Contains reports whether v falls inside the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Benchmarks maps sector id to metric name to plausible range.
// The "default" sector is mandatory and used for unknown sectors.
type Benchmarks map[string]map[string]Range

// DefaultBenchmarks returns the built-in sector benchmark table.
func DefaultBenchmarks() Benchmarks {
	return Benchmarks{
		"e_ticaret": {
			"gross_margin": {Min: 20, Max: 60},
			"net_margin":   {Min: 2, Max: 20},
			"growth_rate":  {Min: -20, Max: 150},
		},
		"saas": {
			"gross_margin": {Min: 60, Max: 90},
			"net_margin":   {Min: 5, Max: 30},
			"growth_rate":  {Min: -10, Max: 200},
			"churn_rate":   {Min: 2, Max: 15},
		},
		"perakende": {
			"gross_margin": {Min: 15, Max: 45},
			"net_margin":   {Min: 1, Max: 10},
			"growth_rate":  {Min: -15, Max: 50},
		},
		"uretim": {
			"gross_margin": {Min: 20, Max: 50},
			"net_margin":   {Min: 3, Max: 15},
			"growth_rate":  {Min: -10, Max: 40},
		},
		"hizmet": {
			"gross_margin": {Min: 40, Max: 80},
			"net_margin":   {Min: 5, Max: 25},
			"growth_rate":  {Min: -10, Max: 100},
		},
		"default": {
			"gross_margin": {Min: 10, Max: 70},
			"net_margin":   {Min: 1, Max: 25},
			"growth_rate":  {Min: -30, Max: 150},
		},
	}
}

// benchmarkFile is the on-disk YAML shape for benchmark overrides.
type benchmarkFile struct {
	Sectors map[string]map[string]Range `yaml:"sectors"`
}

// LoadBenchmarks reads a benchmark table from a YAML file. The file must
// contain a "default" sector.
func LoadBenchmarks(path string) (Benchmarks, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read benchmarks: %w", err)
	}

	var file benchmarkFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse benchmarks: %w", err)
	}
	if len(file.Sectors) == 0 {
		return nil, fmt.Errorf("benchmarks file %s defines no sectors", path)
	}
	if _, ok := file.Sectors["default"]; !ok {
		return nil, fmt.Errorf("benchmarks file %s is missing the default sector", path)
	}

	return Benchmarks(file.Sectors), nil
}

// Sector returns the metric ranges for the given sector, falling back to
// the default sector when the requested one is absent.
func (b Benchmarks) Sector(id string) map[string]Range {
	if ranges, ok := b[id]; ok {
		return ranges
	}
	return b["default"]
}
