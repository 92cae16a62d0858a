package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"flex-valuation/internal/model"

	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Inputs  InputsConfig  `yaml:"inputs"`
	Weather WeatherConfig `yaml:"weather"`
	Seasons SeasonsConfig `yaml:"seasons"`
	Pricing PricingConfig `yaml:"pricing"`
	Engine  EngineConfig  `yaml:"engine"`
	Output  OutputConfig  `yaml:"output"`
}

type InputsConfig struct {
	DAMPrices string `yaml:"dam_prices"`
	Weather   string `yaml:"weather"`
	// Profiles maps a bucket name (bel3, b36, b69, ab9) to its potential table.
	Profiles map[string]string `yaml:"profiles"`
}

type WeatherConfig struct {
	StationCode    int   `yaml:"station_code"`
	WindSpeedUnits []int `yaml:"wind_speed_units"`
}

type SeasonsConfig struct {
	// PaddingDays extends every window on both sides.
	PaddingDays int            `yaml:"padding_days"`
	Windows     []SeasonWindow `yaml:"windows"`
}

// SeasonWindow is a heating season given by its first and last intervention dates (YYYY-MM-DD).
type SeasonWindow struct {
	Name              string `yaml:"name"`
	FirstIntervention string `yaml:"first_intervention"`
	LastIntervention  string `yaml:"last_intervention"`
}

const (
	AverageOverSeasons = "seasons"
	AverageOverAll     = "all"
)

type PricingConfig struct {
	// AverageOver selects the price records behind the global average:
	// "seasons" (only in-window prices) or "all" (the whole price file).
	AverageOver string `yaml:"average_over"`
}

type EngineConfig struct {
	Workers int `yaml:"workers"`
}

type OutputConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
}

// Default returns the settings of the field experiment: the Melle SYNOP station,
// wind-speed unit codes 0 and 1, and the two heating seasons padded by a week.
func Default() Config {
	return Config{
		Weather: WeatherConfig{
			StationCode:    6434,
			WindSpeedUnits: []int{0, 1},
		},
		Seasons: SeasonsConfig{
			PaddingDays: 7,
			Windows: []SeasonWindow{
				{Name: "HS1", FirstIntervention: "2022-11-21", LastIntervention: "2023-04-15"},
				{Name: "HS2", FirstIntervention: "2023-10-30", LastIntervention: "2024-03-24"},
			},
		},
		Pricing: PricingConfig{AverageOver: AverageOverSeasons},
		Engine:  EngineConfig{Workers: 1},
		Output: OutputConfig{
			Path:   "results/money_shifted_heterogeneous.csv",
			Format: "csv",
		},
	}
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	merged := Merge(Default(), *c)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// LoadUnchecked reads the YAML file and resolves input paths, without defaults or validation.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	c.Inputs = c.Inputs.resolve(filepath.Dir(path))
	return &c, nil
}

// resolve interprets relative input paths as relative to dir when the file exists there,
// and falls back to the given path (relative to cwd) otherwise.
func (in InputsConfig) resolve(dir string) InputsConfig {
	out := in
	out.DAMPrices = resolvePath(dir, in.DAMPrices)
	out.Weather = resolvePath(dir, in.Weather)
	if in.Profiles != nil {
		out.Profiles = make(map[string]string, len(in.Profiles))
		for k, v := range in.Profiles {
			out.Profiles[k] = resolvePath(dir, v)
		}
	}
	return out
}

func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	cand := filepath.Join(dir, p)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return p
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Inputs.DAMPrices == "" {
		return errors.New("inputs.dam_prices is required")
	}
	if c.Inputs.Weather == "" {
		return errors.New("inputs.weather is required")
	}
	for _, b := range model.Buckets {
		if c.Inputs.Profiles[string(b)] == "" {
			return fmt.Errorf("inputs.profiles.%s is required", b)
		}
	}
	for name := range c.Inputs.Profiles {
		if !model.Bucket(name).Valid() {
			return fmt.Errorf("inputs.profiles: unknown bucket %q", name)
		}
	}
	if len(c.Weather.WindSpeedUnits) == 0 {
		return errors.New("weather.wind_speed_units must not be empty")
	}
	if c.Seasons.PaddingDays < 0 {
		return errors.New("seasons.padding_days must be >= 0")
	}
	if _, err := c.Seasons.Resolve(); err != nil {
		return err
	}
	switch c.Pricing.AverageOver {
	case AverageOverSeasons, AverageOverAll:
	default:
		return fmt.Errorf("pricing.average_over must be %q or %q", AverageOverSeasons, AverageOverAll)
	}
	if c.Engine.Workers < 0 {
		return errors.New("engine.workers must be >= 0")
	}
	switch strings.ToLower(c.Output.Format) {
	case "csv", "xlsx":
	default:
		return fmt.Errorf("output.format %q unsupported (csv, xlsx)", c.Output.Format)
	}
	if c.Output.Path == "" {
		return errors.New("output.path is required")
	}
	return nil
}

// Resolve turns the configured windows into padded, inclusive seasons.
func (s SeasonsConfig) Resolve() (model.Seasons, error) {
	if len(s.Windows) == 0 {
		return nil, errors.New("seasons.windows must not be empty")
	}
	pad := time.Duration(s.PaddingDays) * 24 * time.Hour
	out := make(model.Seasons, 0, len(s.Windows))
	for i, w := range s.Windows {
		first, err := time.Parse(dateLayout, strings.TrimSpace(w.FirstIntervention))
		if err != nil {
			return nil, fmt.Errorf("seasons.windows[%d].first_intervention: expected YYYY-MM-DD: %w", i, err)
		}
		last, err := time.Parse(dateLayout, strings.TrimSpace(w.LastIntervention))
		if err != nil {
			return nil, fmt.Errorf("seasons.windows[%d].last_intervention: expected YYYY-MM-DD: %w", i, err)
		}
		if last.Before(first) {
			return nil, fmt.Errorf("seasons.windows[%d]: last_intervention before first_intervention", i)
		}
		name := w.Name
		if name == "" {
			name = fmt.Sprintf("season%d", i+1)
		}
		out = append(out, model.Season{Name: name, Start: first.Add(-pad), End: last.Add(pad)})
	}
	return out, nil
}

// Merge overlays non-zero fields from override onto base.
// Used to apply defaults under a loaded file and request overrides over a loaded file.
func Merge(base, override Config) Config {
	out := base
	if override.Inputs.DAMPrices != "" {
		out.Inputs.DAMPrices = override.Inputs.DAMPrices
	}
	if override.Inputs.Weather != "" {
		out.Inputs.Weather = override.Inputs.Weather
	}
	if len(override.Inputs.Profiles) > 0 {
		profiles := make(map[string]string, len(base.Inputs.Profiles)+len(override.Inputs.Profiles))
		for k, v := range base.Inputs.Profiles {
			profiles[k] = v
		}
		for k, v := range override.Inputs.Profiles {
			if v != "" {
				profiles[k] = v
			}
		}
		out.Inputs.Profiles = profiles
	}
	if override.Weather.StationCode != 0 {
		out.Weather.StationCode = override.Weather.StationCode
	}
	if len(override.Weather.WindSpeedUnits) > 0 {
		out.Weather.WindSpeedUnits = override.Weather.WindSpeedUnits
	}
	// Note: 0 is a valid padding in theory, but it cannot override a non-zero base.
	if override.Seasons.PaddingDays != 0 {
		out.Seasons.PaddingDays = override.Seasons.PaddingDays
	}
	if len(override.Seasons.Windows) > 0 {
		out.Seasons.Windows = override.Seasons.Windows
	}
	if override.Pricing.AverageOver != "" {
		out.Pricing.AverageOver = override.Pricing.AverageOver
	}
	if override.Engine.Workers != 0 {
		out.Engine.Workers = override.Engine.Workers
	}
	if override.Output.Path != "" {
		out.Output.Path = override.Output.Path
	}
	if override.Output.Format != "" {
		out.Output.Format = override.Output.Format
	}
	return out
}
