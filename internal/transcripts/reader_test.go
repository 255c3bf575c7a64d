package transcripts

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/parquet-go/parquet-go"
)

const sampleCSV = `transcript_id,cell_id,overlaps_nucleus,feature_name,x_location,y_location,z_location,qv
281474976710656,ffkpbaba-1,1,GAPDH,12.5,800.25,10,32.1
281474976710657,UNASSIGNED,0,EPCAM,200,401.5,11.25,18
281474976710658,ffkpbaba-1,0,NegControlProbe_00042,50,60,12,40
`

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func checkSample(t *testing.T, table Table) {
	t.Helper()
	if len(table) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(table))
	}
	r := table[0]
	if r.TranscriptID != "281474976710656" || r.CellID != "ffkpbaba-1" || !r.OverlapsNucleus {
		t.Errorf("unexpected first row: %+v", r)
	}
	if r.FeatureName != "GAPDH" || r.X != 12.5 || r.Y != 800.25 || r.Z != 10 || r.QV != 32.1 {
		t.Errorf("unexpected first row values: %+v", r)
	}
	if table[1].OverlapsNucleus {
		t.Error("second row should not overlap the nucleus")
	}
}

func TestReadCSV(t *testing.T) {
	path := writeFile(t, "transcripts.csv", []byte(sampleCSV))
	table, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	checkSample(t, table)
}

func TestReadGzippedCSV(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(sampleCSV)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	path := writeFile(t, "transcripts.csv.gz", buf.Bytes())
	table, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	checkSample(t, table)
}

func TestReadParquet(t *testing.T) {
	rows := []parquetRecord{
		{TranscriptID: 281474976710656, CellID: "ffkpbaba-1", OverlapsNucleus: 1, FeatureName: "GAPDH", XLocation: 12.5, YLocation: 800.25, ZLocation: 10, QV: 32.1},
		{TranscriptID: 281474976710657, CellID: "UNASSIGNED", OverlapsNucleus: 0, FeatureName: "EPCAM", XLocation: 200, YLocation: 401.5, ZLocation: 11.25, QV: 18},
		{TranscriptID: 281474976710658, CellID: "ffkpbaba-1", OverlapsNucleus: 0, FeatureName: "NegControlProbe_00042", XLocation: 50, YLocation: 60, ZLocation: 12, QV: 40},
	}
	path := filepath.Join(t.TempDir(), "transcripts.parquet")
	if err := parquet.WriteFile(path, rows); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	table, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	checkSample(t, table)
}

func TestReadRejectsUnknownExtension(t *testing.T) {
	path := writeFile(t, "transcripts.tsv", []byte(sampleCSV))
	if _, err := Read(path); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestReadMissingColumn(t *testing.T) {
	broken := strings.Replace(sampleCSV, "qv", "quality", 1)
	path := writeFile(t, "transcripts.csv", []byte(broken))
	_, err := Read(path)
	if err == nil {
		t.Fatal("expected error for missing column")
	}
	if !strings.Contains(err.Error(), "qv") {
		t.Errorf("error should name the missing column: %v", err)
	}
}

func TestReadInvalidValues(t *testing.T) {
	t.Run("overlapsNucleus", func(t *testing.T) {
		broken := strings.Replace(sampleCSV, ",1,GAPDH", ",yes,GAPDH", 1)
		path := writeFile(t, "transcripts.csv", []byte(broken))
		if _, err := Read(path); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("coordinate", func(t *testing.T) {
		broken := strings.Replace(sampleCSV, "12.5", "twelve", 1)
		path := writeFile(t, "transcripts.csv", []byte(broken))
		if _, err := Read(path); err == nil {
			t.Fatal("expected error")
		}
	})
}
