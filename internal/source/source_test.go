package source

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	data := []byte("Name,Budget,Stage\nAcme,\"$1,200.50\",Open\n\n,,\nGlobex,300,Closed\n")

	table, err := ParseCSV(data)
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}

	wantCols := []string{"Name", "Budget", "Stage"}
	if len(table.Columns) != len(wantCols) {
		t.Fatalf("columns = %v, want %v", table.Columns, wantCols)
	}
	for i, c := range wantCols {
		if table.Columns[i] != c {
			t.Errorf("columns[%d] = %q, want %q", i, table.Columns[i], c)
		}
	}

	// Blank and all-empty lines are skipped.
	if len(table.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(table.Records))
	}
	if got := table.Records[0]["Budget"]; got != "$1,200.50" {
		t.Errorf("Budget = %q, want $1,200.50", got)
	}
	if got := table.Records[1]["Name"]; got != "Globex" {
		t.Errorf("Name = %q, want Globex", got)
	}
}

func TestParseCSVRaggedRows(t *testing.T) {
	table, err := ParseCSV([]byte("A,B,C\n1,2\n"))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	rec := table.Records[0]
	if rec["A"] != "1" || rec["B"] != "2" {
		t.Errorf("unexpected record: %v", rec)
	}
	if _, ok := rec["C"]; ok {
		t.Error("missing trailing cell should be absent from record")
	}
}

func TestParseCSVStripsBOM(t *testing.T) {
	table, err := ParseCSV([]byte("\uFEFFName\nAcme\n"))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if table.Columns[0] != "Name" {
		t.Errorf("columns[0] = %q, want BOM stripped", table.Columns[0])
	}
}

func TestParseCSVEmpty(t *testing.T) {
	if _, err := ParseCSV(nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  padded  ", "padded"},
		{`="00123"`, "00123"},
		{"=SUM", "SUM"},
		{`"quoted"`, "quoted"},
		{"\uFEFFName", "Name"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := CleanCell(tt.in); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Name", "Budget"},
		{"Acme", "1200.50"},
		{"", ""},
		{"Globex", "300"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	table, err := ParseXLSX(buf.Bytes(), "")
	if err != nil {
		t.Fatalf("ParseXLSX: %v", err)
	}
	if len(table.Records) != 2 {
		t.Fatalf("records = %d, want 2 (empty row skipped)", len(table.Records))
	}
	if got := table.Records[1]["Name"]; got != "Globex" {
		t.Errorf("Name = %q, want Globex", got)
	}
}

func TestParseFileUnsupported(t *testing.T) {
	if _, err := ParseFile("data.pdf", nil, ""); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}
