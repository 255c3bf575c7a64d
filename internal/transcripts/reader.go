package transcripts

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/parquet-go/parquet-go"
)

// Read loads a transcript table, selecting the decoder by file extension.
// Supported inputs are .csv, .csv.gz and .parquet.
func Read(path string) (Table, error) {
	switch {
	case strings.HasSuffix(path, ".parquet"):
		return readParquet(path)
	case strings.HasSuffix(path, ".csv.gz"):
		return readCSV(path, true)
	case strings.HasSuffix(path, ".csv"):
		return readCSV(path, false)
	default:
		return nil, fmt.Errorf("input file %q should be either CSV or Parquet", path)
	}
}

func readCSV(path string, gzipped bool) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	var src io.Reader = f
	if gzipped {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		src = gz
	}

	cr := csv.NewReader(src)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	cols := make([]int, len(Columns))
	for i, name := range Columns {
		pos, ok := idx[name]
		if !ok {
			return nil, fmt.Errorf("input is missing required column %q", name)
		}
		cols[i] = pos
	}

	var table Table
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		rec, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		table = append(table, rec)
	}
	return table, nil
}

func parseRow(row []string, cols []int) (Record, error) {
	var rec Record
	rec.TranscriptID = row[cols[0]]
	rec.CellID = row[cols[1]]
	rec.FeatureName = row[cols[3]]

	switch row[cols[2]] {
	case "0", "false":
		rec.OverlapsNucleus = false
	case "1", "true":
		rec.OverlapsNucleus = true
	default:
		return rec, fmt.Errorf("invalid overlaps_nucleus value %q", row[cols[2]])
	}

	for _, f := range []struct {
		name string
		pos  int
		dst  *float64
	}{
		{"x_location", cols[4], &rec.X},
		{"y_location", cols[5], &rec.Y},
		{"z_location", cols[6], &rec.Z},
		{"qv", cols[7], &rec.QV},
	} {
		v, err := strconv.ParseFloat(row[f.pos], 64)
		if err != nil {
			return rec, fmt.Errorf("invalid %s value %q", f.name, row[f.pos])
		}
		*f.dst = v
	}
	return rec, nil
}

// parquetRecord mirrors the Xenium transcripts.parquet schema for the
// columns this pipeline projects.
type parquetRecord struct {
	TranscriptID    int64   `parquet:"transcript_id"`
	CellID          string  `parquet:"cell_id"`
	OverlapsNucleus int32   `parquet:"overlaps_nucleus"`
	FeatureName     string  `parquet:"feature_name"`
	XLocation       float64 `parquet:"x_location"`
	YLocation       float64 `parquet:"y_location"`
	ZLocation       float64 `parquet:"z_location"`
	QV              float64 `parquet:"qv"`
}

func readParquet(path string) (Table, error) {
	rows, err := parquet.ReadFile[parquetRecord](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet input: %w", err)
	}

	table := make(Table, len(rows))
	for i, r := range rows {
		table[i] = Record{
			TranscriptID:    strconv.FormatUint(uint64(r.TranscriptID), 10),
			CellID:          r.CellID,
			OverlapsNucleus: r.OverlapsNucleus != 0,
			FeatureName:     r.FeatureName,
			X:               r.XLocation,
			Y:               r.YLocation,
			Z:               r.ZLocation,
			QV:              r.QV,
		}
	}
	return table, nil
}
