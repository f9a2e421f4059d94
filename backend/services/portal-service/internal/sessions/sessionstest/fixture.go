// Package sessionstest writes logger exports for tests.
package sessionstest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const metadata = `"Format","AiM CSV File"
"Session","Endurance"
"Vehicle","BillieJean"
"Racer",""
"Championship",""
"Comment",""
"Date","Saturday, June 14, 2025"
"Time","10:42 AM"
"Sample Rate","1"
"Duration","3.000"
"Segment","Session"
"Beacon Markers",""
"Segment Times",""

`

// Full has speed, pack power and GPS position: 4 samples, 1 s apart, discharging then regenerating.
var Full = Session{
	Header: []string{"Time", "GPS Speed", "GPS Latitude", "GPS Longitude", "Pack Voltage", "Pack Current", "RPM"},
	Units:  []string{"s", "km/h", "deg", "deg", "V", "A", "rpm"},
	Rows: [][]string{
		{"0", "0", "52.0700", "-1.0150", "300", "0", "0"},
		{"1", "50", "52.0710", "-1.0160", "300", "50", "5000"},
		{"2", "100", "52.0720", "-1.0170", "300", "-20", "9000"},
		{"3", "80", "52.0730", "-1.0180", "300", "0", "8000"},
	},
}

// SpeedOnly has no electrical or position channels.
var SpeedOnly = Session{
	Header: []string{"Time", "GPS Speed"},
	Units:  []string{"s", "km/h"},
	Rows: [][]string{
		{"0", "10"},
		{"0.5", "20"},
	},
}

// NoSpeed lacks the speed channel entirely.
var NoSpeed = Session{
	Header: []string{"Time", "RPM"},
	Units:  []string{"s", "rpm"},
	Rows: [][]string{
		{"0", "1000"},
	},
}

// Session is the body of an export below the metadata block.
type Session struct {
	Header []string
	Units  []string
	Rows   [][]string
}

// Render returns the file contents.
func (s Session) Render() string {
	var b strings.Builder
	b.WriteString(metadata)
	b.WriteString(strings.Join(s.Header, ",") + "\n")
	b.WriteString(strings.Join(s.Units, ",") + "\n")
	for _, row := range s.Rows {
		b.WriteString(strings.Join(row, ",") + "\n")
	}
	return b.String()
}

// Write stores the session as dir/name and returns the path.
func Write(t testing.TB, dir, name string, s Session) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(s.Render()), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}
