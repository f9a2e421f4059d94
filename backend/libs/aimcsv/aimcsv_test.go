package aimcsv

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nmsportal/backend/libs/derive"
)

func metadata() string {
	lines := []string{
		`"Format","AiM CSV File"`,
		`"Session","Endurance"`,
		`"Vehicle","BillieJean"`,
		`"Racer",""`,
		`"Championship",""`,
		`"Comment",""`,
		`"Date","Saturday, June 14, 2025"`,
		`"Time","10:42 AM"`,
		`"Sample Rate","20"`,
		`"Duration","3.000"`,
		`"Segment","Session"`,
		`"Beacon Markers",""`,
		`"Segment Times",""`,
		``,
	}
	return strings.Join(lines, "\n") + "\n"
}

func sample() string {
	return metadata() +
		`"Time","GPS Speed","Pack Voltage","Pack Current","RPM"` + "\n" +
		`"s","km/h","V","A","rpm"` + "\n" +
		"0.000,10.5,-300.1,50,1000\n" +
		"0.050,11.0,,-20,n/a\n" +
		"0.100,11.5,-299.8\n"
}

func TestReadSkipsMetadataAndUnits(t *testing.T) {
	table, err := Read(strings.NewReader(sample()))
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	names := table.Names()
	want := []string{"Time", "GPS Speed", "Pack Voltage", "Pack Current", "RPM"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
	if table.Len() != 3 {
		t.Fatalf("expected 3 samples, got %d", table.Len())
	}

	timeCol, _ := table.Column("Time")
	if timeCol[0] != 0 || timeCol[2] != 0.1 {
		t.Fatalf("unexpected time channel %v", timeCol)
	}
	voltage, _ := table.Column("Pack Voltage")
	if voltage[0] != -300.1 || !derive.IsMissing(voltage[1]) {
		t.Fatalf("unexpected voltage channel %v", voltage)
	}
	rpm, _ := table.Column("RPM")
	if !derive.IsMissing(rpm[1]) || !derive.IsMissing(rpm[2]) {
		t.Fatalf("expected coercion failures and short rows to be missing, got %v", rpm)
	}
}

func TestReadCountsBlankMetadataLines(t *testing.T) {
	lines := strings.Split(strings.TrimSuffix(metadata(), "\n"), "\n")
	lines[5] = ""
	data := strings.Join(lines, "\r\n") + "\r\n" +
		"\"Time\",\"GPS Speed\",\"Pack Voltage\",\"Pack Current\"\r\n" +
		"\"s\",\"km/h\",\"V\",\"A\"\r\n" +
		"0,10,300,5\r\n" +
		"1,20,300,6\r\n"

	table, err := Read(strings.NewReader(data))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !table.Has("Time") || !table.Has("Pack Current") || table.Len() != 2 {
		t.Fatalf("expected header after metadata block, got %v with %d rows", table.Names(), table.Len())
	}
	if _, err := derive.Build(table, derive.Metric); err != nil {
		t.Fatalf("build: %v", err)
	}
}

func TestReadInfiniteCellsAreMissing(t *testing.T) {
	data := metadata() +
		"Time,GPS Speed,Pack Voltage,Pack Current\n" +
		"s,km/h,V,A\n" +
		"0,10,300,1\n" +
		"1,inf,300,+Inf\n" +
		"2,12,-Infinity,1e400\n"

	table, err := Read(strings.NewReader(data))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	current, _ := table.Column("Pack Current")
	speed, _ := table.Column("GPS Speed")
	voltage, _ := table.Column("Pack Voltage")
	if !derive.IsMissing(current[1]) || !derive.IsMissing(current[2]) || !derive.IsMissing(speed[1]) || !derive.IsMissing(voltage[2]) {
		t.Fatalf("expected infinite cells to load as missing, got %v %v %v", speed, voltage, current)
	}
	for _, col := range [][]float64{current, speed, voltage} {
		for _, v := range col {
			if math.IsInf(v, 0) {
				t.Fatalf("unexpected infinity in %v", col)
			}
		}
	}
}

func TestReadRenamesDuplicateChannels(t *testing.T) {
	data := metadata() +
		"Time,Current,Current,,Current\n" +
		"s,A,A,,A\n" +
		"0,1,2,3,4\n"

	table, err := Read(strings.NewReader(data))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	names := table.Names()
	want := []string{"Time", "Current", "Current.1", "Unnamed: 3", "Current.2"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}

func TestReadTruncatedFile(t *testing.T) {
	for _, data := range []string{"", metadata(), metadata() + "Time,GPS Speed\n"} {
		if _, err := Read(strings.NewReader(data)); !errors.Is(err, ErrNoHeader) {
			t.Fatalf("expected ErrNoHeader, got %v", err)
		}
	}
}

func TestReadHeaderOnly(t *testing.T) {
	table, err := Read(strings.NewReader(metadata() + "Time,GPS Speed\ns,km/h\n"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if table.Len() != 0 || !table.Has("GPS Speed") {
		t.Fatalf("expected empty table with channels, got %d rows %v", table.Len(), table.Names())
	}
}

func TestReadFileFeedsBuild(t *testing.T) {
	path := filepath.Join(t.TempDir(), "3.csv")
	if err := os.WriteFile(path, []byte(sample()), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	table, err := ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	s, err := derive.Build(table, derive.Metric)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if s.Summary.MaxSpeed != 11.5 {
		t.Fatalf("expected max speed 11.5, got %v", s.Summary.MaxSpeed)
	}
	if !s.Summary.PowerAvailable {
		t.Fatalf("expected power channels to resolve")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	table, err := derive.NewTable(
		[]string{"Time", "DisplaySpeed"},
		[][]float64{{0, 0.5}, {12.25, derive.Missing}},
	)
	if err != nil {
		t.Fatalf("new table: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, table); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "Time,DisplaySpeed\n0,12.25\n0.5,\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}
