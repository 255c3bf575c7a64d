package transcripts

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// WriteCSV serializes the table with the canonical column order. The
// cell_id column carries the decoded integer form.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}

	row := make([]string, len(Columns))
	for _, r := range t {
		row[0] = r.TranscriptID
		row[1] = strconv.FormatUint(uint64(r.Cell), 10)
		if r.OverlapsNucleus {
			row[2] = "1"
		} else {
			row[2] = "0"
		}
		row[3] = r.FeatureName
		row[4] = strconv.FormatFloat(r.X, 'f', -1, 64)
		row[5] = strconv.FormatFloat(r.Y, 'f', -1, 64)
		row[6] = strconv.FormatFloat(r.Z, 'f', -1, 64)
		row[7] = strconv.FormatFloat(r.QV, 'f', -1, 64)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the table to path, overwriting any previous file.
func WriteCSVFile(path string, t Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCSV(f, t); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
