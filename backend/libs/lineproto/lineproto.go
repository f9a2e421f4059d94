// Package lineproto encodes samples in the line protocol accepted by the time-series database:
//
//	measurement,tag=value field=value,field=value timestamp_ns
package lineproto

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Tag is a key/value pair attached to every point of a batch.
type Tag struct {
	Key   string
	Value string
}

// Field is a numeric value of a point.
type Field struct {
	Key   string
	Value float64
}

// Point is one line of the batch.
type Point struct {
	Measurement string
	Tags        []Tag
	Fields      []Field
	TimestampNs int64
}

var (
	measurementEscaper = strings.NewReplacer(",", `\,`, " ", `\ `)
	keyEscaper         = strings.NewReplacer(",", `\,`, "=", `\=`, " ", `\ `)
)

// ErrNoFields is returned for a point without fields.
var ErrNoFields = errors.New("lineproto: point has no fields")

// Encode renders a point as a single line without trailing newline.
// Tags are sorted by key; fields keep their order.
func Encode(p Point) (string, error) {
	if strings.TrimSpace(p.Measurement) == "" {
		return "", errors.New("lineproto: empty measurement")
	}
	if len(p.Fields) == 0 {
		return "", ErrNoFields
	}

	var b strings.Builder
	b.WriteString(measurementEscaper.Replace(p.Measurement))

	tags := make([]Tag, len(p.Tags))
	copy(tags, p.Tags)
	sort.Slice(tags, func(i, j int) bool { return tags[i].Key < tags[j].Key })
	for _, tag := range tags {
		b.WriteByte(',')
		b.WriteString(keyEscaper.Replace(tag.Key))
		b.WriteByte('=')
		b.WriteString(keyEscaper.Replace(tag.Value))
	}

	b.WriteByte(' ')
	for i, field := range p.Fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(keyEscaper.Replace(field.Key))
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(field.Value, 'f', -1, 64))
	}

	b.WriteByte(' ')
	b.WriteString(strconv.FormatInt(p.TimestampNs, 10))
	return b.String(), nil
}

// Batch joins encoded lines with newlines.
func Batch(lines []string) []byte {
	return []byte(strings.Join(lines, "\n"))
}

// TimestampNs anchors a session-relative time (seconds) to a wall-clock base (unix seconds).
// The offset is rounded to the nearest nanosecond before adding, so large bases keep precision.
func TimestampNs(baseUnix int64, offsetSeconds float64) int64 {
	return baseUnix*int64(time.Second) + int64(math.Round(offsetSeconds*float64(time.Second)))
}
