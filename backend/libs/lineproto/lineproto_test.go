package lineproto

import (
	"errors"
	"testing"
)

func TestEncode(t *testing.T) {
	line, err := Encode(Point{
		Measurement: "fsae_telemetry",
		Tags:        []Tag{{Key: "vehicle", Value: "BillieJean"}, {Key: "driver", Value: "A B"}},
		Fields: []Field{
			{Key: "gps_speed", Value: 42.5},
			{Key: "rpm", Value: 6000},
			{Key: "voltage", Value: 12.6},
		},
		TimestampNs: 1700000000500000000,
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `fsae_telemetry,driver=A\ B,vehicle=BillieJean gps_speed=42.5,rpm=6000,voltage=12.6 1700000000500000000`
	if line != want {
		t.Fatalf("expected %q, got %q", want, line)
	}
}

func TestEncodeRejectsEmptyPoints(t *testing.T) {
	if _, err := Encode(Point{Measurement: "m"}); !errors.Is(err, ErrNoFields) {
		t.Fatalf("expected ErrNoFields, got %v", err)
	}
	if _, err := Encode(Point{Fields: []Field{{Key: "a", Value: 1}}}); err == nil {
		t.Fatalf("expected error for empty measurement")
	}
}

func TestTimestampNs(t *testing.T) {
	if got := TimestampNs(1700000000, 0.25); got != 1700000000250000000 {
		t.Fatalf("unexpected timestamp %d", got)
	}
	if got := TimestampNs(100, 0); got != 100000000000 {
		t.Fatalf("unexpected timestamp %d", got)
	}
}

func TestBatch(t *testing.T) {
	if got := string(Batch([]string{"a 1", "b 2"})); got != "a 1\nb 2" {
		t.Fatalf("unexpected batch %q", got)
	}
}
