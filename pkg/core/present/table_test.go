package present

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quarterly_financials/pkg/core/catalog"
	"quarterly_financials/pkg/core/compute"
	"quarterly_financials/pkg/core/period"
)

func mustKey(t *testing.T, s string) period.Key {
	t.Helper()
	k, err := period.ParseKey(s)
	if err != nil {
		t.Fatal(err)
	}
	return k
}

func samplePoints(t *testing.T) compute.Points {
	return compute.Points{
		mustKey(t, "23Q4"): {"revenue": 90.5, "cogs": 30},
		mustKey(t, "24Q2"): {"revenue": 110},
		mustKey(t, "24Q1"): {"revenue": 100, "eps_diluted": 1.25},
	}
}

func TestPivot_OrderAndBlanks(t *testing.T) {
	cat := catalog.Default()
	table := Pivot(samplePoints(t), cat)

	header := table.Header()
	wantHeader := []string{"", "24Q2", "24Q1", "23Q4"}
	if strings.Join(header, ",") != strings.Join(wantHeader, ",") {
		t.Errorf("header = %v, want %v", header, wantHeader)
	}

	if len(table.Rows) != len(cat.Rows) {
		t.Fatalf("expected %d rows, got %d", len(cat.Rows), len(table.Rows))
	}
	for i, r := range table.Rows {
		if r.Metric != cat.Rows[i].Metric {
			t.Errorf("row %d = %s, want %s", i, r.Metric, cat.Rows[i].Metric)
		}
	}

	if v, ok := table.Cell("revenue", mustKey(t, "24Q2")); !ok || v != 110 {
		t.Errorf("revenue 24Q2 = %v (present=%v)", v, ok)
	}
	if _, ok := table.Cell("cogs", mustKey(t, "24Q1")); ok {
		t.Error("cogs 24Q1 should be blank")
	}
}

func TestWriteCSV(t *testing.T) {
	table := Pivot(samplePoints(t), catalog.Default())

	var buf bytes.Buffer
	if err := table.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("csv not readable: %v", err)
	}
	if records[0][1] != "24Q2" {
		t.Errorf("first period column = %q", records[0][1])
	}

	byLabel := map[string][]string{}
	for _, rec := range records[1:] {
		byLabel[rec[0]] = rec[1:]
	}
	if got := byLabel["Revenue"]; strings.Join(got, ",") != "110,100,90.5" {
		t.Errorf("Revenue row = %v", got)
	}
	if got := byLabel["Cost of Goods Sold"]; strings.Join(got, ",") != ",,30" {
		t.Errorf("blank cells must be empty, not zero: %v", got)
	}
	if got := byLabel["Earning per FDS"]; got[1] != "1.25" {
		t.Errorf("EPS 24Q1 = %q", got[1])
	}
}

func TestWriteCSVFile(t *testing.T) {
	table := Pivot(samplePoints(t), catalog.Default())
	path := filepath.Join(t.TempDir(), "out.csv")

	if err := table.WriteCSVFile(path); err != nil {
		t.Fatalf("WriteCSVFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), ",24Q2,24Q1,23Q4\n") {
		t.Errorf("unexpected header line: %q", strings.SplitN(string(data), "\n", 2)[0])
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   *float64
		want string
	}{
		{nil, ""},
		{ptr(130), "130"},
		{ptr(-4.5), "-4.5"},
		{ptr(391035000000), "391035000000"},
		{ptr(0), "0"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue = %q, want %q", got, tt.want)
		}
	}
}

func TestRenderMarkdown(t *testing.T) {
	table := Pivot(samplePoints(t), catalog.Default())

	md, err := table.RenderMarkdown()
	if err != nil {
		t.Fatalf("RenderMarkdown failed: %v", err)
	}
	if !strings.Contains(md, "| Revenue | 110 | 100 | 90.5 |") {
		t.Errorf("missing revenue row:\n%s", md)
	}
	if !strings.Contains(md, "| R&D |  |  |  |") {
		t.Errorf("blank row should render empty cells:\n%s", md)
	}
}

func TestTableJSONUsesNullForBlanks(t *testing.T) {
	table := Pivot(samplePoints(t), catalog.Default())

	b, err := json.Marshal(table)
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	if !strings.Contains(s, `"periods":["24Q2","24Q1","23Q4"]`) {
		t.Errorf("periods not encoded as keys: %s", s)
	}
	if !strings.Contains(s, `"metric":"cogs","label":"Cost of Goods Sold","values":[null,null,30]`) {
		t.Errorf("blank cells should be null: %s", s)
	}
}

func ptr(v float64) *float64 { return &v }
