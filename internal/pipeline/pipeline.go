// Package pipeline drives the tilecut run end to end.
package pipeline

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/xenium-tiles/tilecut/internal/cellid"
	"github.com/xenium-tiles/tilecut/internal/config"
	"github.com/xenium-tiles/tilecut/internal/render"
	"github.com/xenium-tiles/tilecut/internal/tiling"
	"github.com/xenium-tiles/tilecut/internal/transcripts"
)

// Run executes the full pipeline: load, filter, decode, partition, write.
// Validation and data-sufficiency failures abort before any tile is
// written.
func Run(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	log.Printf("Reading %s", cfg.InFile)
	table, err := transcripts.Read(cfg.InFile)
	if err != nil {
		return err
	}

	log.Printf("Removing non-gene features")
	table = table.FilterControls()
	if len(table) < cfg.Tile.MinTranscripts {
		return fmt.Errorf("the number of transcripts that remain after excluding the non-gene features (%d) is lower than the required minimal transcript number per tile (%d); consider adjusting that value",
			len(table), cfg.Tile.MinTranscripts)
	}

	log.Printf("Decoding cell ids")
	table.NormalizeUnassigned()
	if cfg.NucleusOnly {
		table.DropNonNuclearAssignments()
	}
	dec, err := cellid.NewDecoder(cellid.Config{CacheSize: cfg.Decoder.CacheSize})
	if err != nil {
		return err
	}
	if err := table.DecodeCells(dec); err != nil {
		return fmt.Errorf("failed to decode cell ids: %w", err)
	}

	bounds := tiling.BoundsOf(table)
	log.Printf("Limits")
	log.Printf("... x: %g - %g", bounds.MinX, bounds.MaxX)
	log.Printf("... y: %g - %g", bounds.MinY, bounds.MaxY)

	part, err := tiling.NewPartitioner(tiling.Config{
		Width:          cfg.Tile.Width,
		Height:         cfg.Tile.Height,
		Overlap:        cfg.Tile.Overlap,
		MinTranscripts: cfg.Tile.MinTranscripts,
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	log.Printf("Creating tiles")
	var rects []tiling.Rect
	err = part.Partition(table, bounds, func(tile tiling.Tile) error {
		path := filepath.Join(cfg.Output.Dir, tile.Rect.Name())
		if err := transcripts.WriteCSVFile(path, tile.Rows); err != nil {
			return err
		}
		log.Printf("... ... tile created: %s (%d transcripts)", path, len(tile.Rows))
		rects = append(rects, tile.Rect)
		return nil
	})
	if err != nil {
		return err
	}

	if err := writeManifest(cfg); err != nil {
		return err
	}

	if cfg.Output.Preview {
		if err := writePreview(cfg, bounds, rects, table); err != nil {
			return err
		}
	}
	return nil
}

func writeManifest(cfg *config.Config) error {
	path := filepath.Join(cfg.Output.Dir, "params.txt")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := cfg.WriteManifest(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func writePreview(cfg *config.Config, b tiling.Bounds, rects []tiling.Rect, t transcripts.Table) error {
	renderer := render.NewPreviewRenderer(render.Config{})
	img, err := renderer.RenderOverview(b, rects, t)
	if err != nil {
		return fmt.Errorf("failed to render preview: %w", err)
	}
	path := filepath.Join(cfg.Output.Dir, "tiles_overview.png")
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Printf("Preview written to %s", path)
	return nil
}
