// Package main is the entry point for the tilecut CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xenium-tiles/tilecut/internal/config"
	"github.com/xenium-tiles/tilecut/internal/pipeline"
)

var (
	configPath     string
	minQV          float64
	width          float64
	height         float64
	overlap        float64
	minTranscripts int
	nucleusOnly    bool
	outDir         string
	preview        bool
)

var rootCmd = &cobra.Command{
	Use:   "tilecut <transcripts.csv|.csv.gz|.parquet>",
	Short: "Partition a Xenium transcript table into overlapping tiles",
	Long: `tilecut filters control probes out of a Xenium transcript table,
decodes the packed cell identifiers to integers, and cuts the table into
overlapping rectangular tiles, each written as a CSV file holding at least
the configured minimum number of transcripts.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(cmd, args[0])
		if err != nil {
			return err
		}
		return pipeline.Run(cfg)
	},
}

// buildConfig seeds the configuration from the optional YAML file, then
// applies every flag the user set on the command line.
func buildConfig(cmd *cobra.Command, inFile string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.InFile = inFile

	flags := cmd.Flags()
	if flags.Changed("min-qv") {
		cfg.MinQV = minQV
	}
	if flags.Changed("width") {
		cfg.Tile.Width = width
	}
	if flags.Changed("height") {
		cfg.Tile.Height = height
	}
	if flags.Changed("overlap") {
		cfg.Tile.Overlap = overlap
	}
	if flags.Changed("minimal-transcripts") {
		cfg.Tile.MinTranscripts = minTranscripts
	}
	if flags.Changed("nucleus-only") {
		cfg.NucleusOnly = nucleusOnly
	}
	if flags.Changed("out-dir") {
		cfg.Output.Dir = outDir
	}
	if flags.Changed("preview") {
		cfg.Output.Preview = preview
	}
	return cfg, nil
}

func init() {
	defaults := config.DefaultConfig()
	flags := rootCmd.Flags()
	flags.StringVar(&configPath, "config", "", "Path to an optional YAML configuration file")
	flags.Float64Var(&minQV, "min-qv", defaults.MinQV, "Minimum Q-Score, recorded in params.txt (not applied as a row filter)")
	flags.Float64Var(&width, "width", defaults.Tile.Width, "Width of the tiles")
	flags.Float64Var(&height, "height", defaults.Tile.Height, "Height of the tiles")
	flags.Float64Var(&overlap, "overlap", defaults.Tile.Overlap, "Overlap between the tiles")
	flags.IntVar(&minTranscripts, "minimal-transcripts", defaults.Tile.MinTranscripts, "Minimal number of transcripts per tile; smaller tiles grow by the overlap in all directions")
	flags.BoolVar(&nucleusOnly, "nucleus-only", false, "Drop the cell assignment of transcripts outside the nucleus")
	flags.StringVar(&outDir, "out-dir", defaults.Output.Dir, "Directory for the tile files and params.txt")
	flags.BoolVar(&preview, "preview", false, "Also write a tiles_overview.png of the tile layout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
