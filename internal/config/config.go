// Package config handles run configuration for the tilecut pipeline.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the effective run configuration.
type Config struct {
	// InFile is the transcript table path, given as the positional CLI
	// argument rather than in the config file.
	InFile string

	// MinQV is recorded in the manifest for downstream tooling but is not
	// applied as a row filter, matching the behavior of the instrument's
	// own tiling tool.
	MinQV float64

	NucleusOnly bool

	Tile    TileConfig
	Output  OutputConfig
	Decoder DecoderConfig
}

// TileConfig contains tile geometry settings.
type TileConfig struct {
	Width          float64
	Height         float64
	Overlap        float64
	MinTranscripts int
}

// OutputConfig contains output settings.
type OutputConfig struct {
	Dir     string
	Preview bool
}

// DecoderConfig contains cell-id decoder settings.
type DecoderConfig struct {
	CacheSize int
}

// fileConfig mirrors Config with pointer fields so absent keys can be
// told apart from explicit zeros; only present keys override defaults.
type fileConfig struct {
	MinQV       *float64 `yaml:"min_qv"`
	NucleusOnly *bool    `yaml:"nucleus_only"`
	Tile        struct {
		Width          *float64 `yaml:"width"`
		Height         *float64 `yaml:"height"`
		Overlap        *float64 `yaml:"overlap"`
		MinTranscripts *int     `yaml:"minimal_transcripts"`
	} `yaml:"tile"`
	Output struct {
		Dir     *string `yaml:"dir"`
		Preview *bool   `yaml:"preview"`
	} `yaml:"output"`
	Decoder struct {
		CacheSize *int `yaml:"cache_size"`
	} `yaml:"decoder"`
}

// Load reads configuration from a YAML file and fills missing values with
// defaults. Explicitly configured values are kept as given, even invalid
// ones, so Validate can report them instead of a default masking them.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg := DefaultConfig()
	if file.MinQV != nil {
		cfg.MinQV = *file.MinQV
	}
	if file.NucleusOnly != nil {
		cfg.NucleusOnly = *file.NucleusOnly
	}
	if file.Tile.Width != nil {
		cfg.Tile.Width = *file.Tile.Width
	}
	if file.Tile.Height != nil {
		cfg.Tile.Height = *file.Tile.Height
	}
	if file.Tile.Overlap != nil {
		cfg.Tile.Overlap = *file.Tile.Overlap
	}
	if file.Tile.MinTranscripts != nil {
		cfg.Tile.MinTranscripts = *file.Tile.MinTranscripts
	}
	if file.Output.Dir != nil {
		cfg.Output.Dir = *file.Output.Dir
	}
	if file.Output.Preview != nil {
		cfg.Output.Preview = *file.Output.Preview
	}
	if file.Decoder.CacheSize != nil {
		cfg.Decoder.CacheSize = *file.Decoder.CacheSize
	}
	return cfg, nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		MinQV: 20.0,
		Tile: TileConfig{
			Width:          4000,
			Height:         4000,
			Overlap:        500,
			MinTranscripts: 100000,
		},
		Output: OutputConfig{
			Dir: ".",
		},
		Decoder: DecoderConfig{
			CacheSize: 1 << 17,
		},
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.InFile == "" {
		return fmt.Errorf("no input file given")
	}
	if c.MinQV < 0 {
		return fmt.Errorf("min_qv must not be negative, got %g", c.MinQV)
	}
	if c.Tile.Overlap <= 0 {
		return fmt.Errorf("the overlap must be positive, got %g", c.Tile.Overlap)
	}
	if c.Tile.Width <= c.Tile.Overlap {
		return fmt.Errorf("the width of a tile cannot be smaller than the overlap")
	}
	if c.Tile.Height <= c.Tile.Overlap {
		return fmt.Errorf("the height of a tile cannot be smaller than the overlap")
	}
	if c.Tile.MinTranscripts < 1 {
		return fmt.Errorf("minimal_transcripts must be at least 1, got %d", c.Tile.MinTranscripts)
	}
	return nil
}

// WriteManifest renders the effective configuration as the params.txt
// manifest.
func (c *Config) WriteManifest(w io.Writer) error {
	ftoa := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	for _, line := range []string{
		"in_file: " + c.InFile,
		"min_qv: " + ftoa(c.MinQV),
		"width: " + ftoa(c.Tile.Width),
		"height: " + ftoa(c.Tile.Height),
		"overlap: " + ftoa(c.Tile.Overlap),
		"minimal_transcripts: " + strconv.Itoa(c.Tile.MinTranscripts),
		"nucleus_only: " + strconv.FormatBool(c.NucleusOnly),
		"out_dir: " + c.Output.Dir,
	} {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
