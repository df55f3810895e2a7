package eventmodels

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type OptionChainConfigYAML struct {
	Symbols      []string      `yaml:"symbols"`
	PollInterval time.Duration `yaml:"poll_interval"`
	RangeWidth   float64       `yaml:"range_width"`
	MaxSpread    float64       `yaml:"max_spread"`
	TopN         int           `yaml:"top_n"`
}

type LiquidationConfigYAML struct {
	OIThreshold        float64 `yaml:"oi_threshold"`
	UnwindingThreshold float64 `yaml:"unwinding_threshold"`
	BuildupThreshold   float64 `yaml:"buildup_threshold"`
	MajorLevels        int     `yaml:"major_levels"`
}

type RScoreWeightsYAML struct {
	Volume   float64 `yaml:"volume"`
	Turnover float64 `yaml:"turnover"`
	Return   float64 `yaml:"return"`
}

// RScoreConfigYAML selects a named weight preset ("end_of_day" or
// "intraday"). Explicit weights override the preset.
type RScoreConfigYAML struct {
	MinDays int                `yaml:"min_days"`
	Preset  string             `yaml:"preset"`
	Weights *RScoreWeightsYAML `yaml:"weights,omitempty"`
	Epsilon float64            `yaml:"epsilon"`
}

type AcquisitionConfigYAML struct {
	RequestsPerSecond    float64       `yaml:"requests_per_second"`
	Burst                int           `yaml:"burst"`
	CacheTTL             time.Duration `yaml:"cache_ttl"`
	RetryInitialInterval time.Duration `yaml:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `yaml:"retry_max_interval"`
	RetryMaxAttempts     uint64        `yaml:"retry_max_attempts"`
	RequestTimeout       time.Duration `yaml:"request_timeout"`
}

type DataConfigYAML struct {
	HistoryFile     string `yaml:"history_file"`
	SectorMapFile   string `yaml:"sector_map_file"`
	SectorIndexFile string `yaml:"sector_index_file"`
}

type ServerConfigYAML struct {
	Port string `yaml:"port"`
}

type LogConfigYAML struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type AnalystConfigYAML struct {
	OptionChain OptionChainConfigYAML `yaml:"option_chain"`
	Liquidation LiquidationConfigYAML `yaml:"liquidation"`
	RScore      RScoreConfigYAML      `yaml:"rscore"`
	Acquisition AcquisitionConfigYAML `yaml:"acquisition"`
	Data        DataConfigYAML        `yaml:"data"`
	Server      ServerConfigYAML      `yaml:"server"`
	Log         LogConfigYAML         `yaml:"log"`
}

func NewDefaultAnalystConfigYAML() AnalystConfigYAML {
	return AnalystConfigYAML{
		OptionChain: OptionChainConfigYAML{
			Symbols:      []string{"NIFTY"},
			PollInterval: time.Minute,
			RangeWidth:   500,
			MaxSpread:    2,
			TopN:         3,
		},
		Liquidation: LiquidationConfigYAML{
			OIThreshold:        20000,
			UnwindingThreshold: -2000,
			BuildupThreshold:   2000,
			MajorLevels:        4,
		},
		RScore: RScoreConfigYAML{
			MinDays: 18,
			Preset:  "end_of_day",
			Epsilon: 1e-6,
		},
		Acquisition: AcquisitionConfigYAML{
			RequestsPerSecond:    3,
			Burst:                1,
			CacheTTL:             5 * time.Minute,
			RetryInitialInterval: 4 * time.Second,
			RetryMaxInterval:     10 * time.Second,
			RetryMaxAttempts:     3,
			RequestTimeout:       15 * time.Second,
		},
		Data: DataConfigYAML{
			HistoryFile:     "data/history.csv",
			SectorMapFile:   "data/sectors.json",
			SectorIndexFile: "data/sector_indices.csv",
		},
		Server: ServerConfigYAML{
			Port: "8080",
		},
		Log: LogConfigYAML{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// ParseAnalystConfigYAML decodes data on top of the defaults, so keys that
// are absent keep their documented default.
func ParseAnalystConfigYAML(data []byte) (AnalystConfigYAML, error) {
	cfg := NewDefaultAnalystConfigYAML()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AnalystConfigYAML{}, fmt.Errorf("ParseAnalystConfigYAML: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return AnalystConfigYAML{}, fmt.Errorf("ParseAnalystConfigYAML: %w", err)
	}

	return cfg, nil
}

func LoadAnalystConfigYAML(path string) (AnalystConfigYAML, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AnalystConfigYAML{}, fmt.Errorf("LoadAnalystConfigYAML: failed to read %s: %w", path, err)
	}

	return ParseAnalystConfigYAML(data)
}

func (c *AnalystConfigYAML) Validate() error {
	if c.OptionChain.RangeWidth < 0 {
		return fmt.Errorf("option_chain.range_width must not be negative")
	}

	if c.OptionChain.TopN <= 0 {
		return fmt.Errorf("option_chain.top_n must be positive")
	}

	if c.OptionChain.PollInterval <= 0 {
		return fmt.Errorf("option_chain.poll_interval must be positive")
	}

	if c.RScore.MinDays < 2 {
		return fmt.Errorf("rscore.min_days must be at least 2")
	}

	if c.RScore.Weights == nil && c.RScore.Preset != "end_of_day" && c.RScore.Preset != "intraday" {
		return fmt.Errorf("rscore.preset %q is unknown", c.RScore.Preset)
	}

	if c.Acquisition.RequestsPerSecond <= 0 {
		return fmt.Errorf("acquisition.requests_per_second must be positive")
	}

	if c.Acquisition.Burst <= 0 {
		return fmt.Errorf("acquisition.burst must be positive")
	}

	return nil
}
