package derive

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Channel names the engine requires or appends.
const (
	ChannelTime         = "Time"
	ChannelDisplaySpeed = "DisplaySpeed"
	ChannelPower        = "Power_kW"
	ChannelDt           = "dt"
	ChannelEnergy       = "Energy_Ws"
)

// Missing marks an absent or unparseable sample.
var Missing = math.NaN()

// IsMissing reports whether v carries no usable sample. Infinities count as missing.
func IsMissing(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// Table is an immutable column-major session table. Channel order follows the source schema.
// Column slices handed out by a Table are shared and must be treated as read-only.
type Table struct {
	names   []string
	index   map[string]int
	columns [][]float64
	rows    int
}

// NewTable builds a table from channel names and columns of equal length.
// The table takes ownership of the column slices.
func NewTable(names []string, columns [][]float64) (*Table, error) {
	if len(names) != len(columns) {
		return nil, fmt.Errorf("derive: %d channel names for %d columns", len(names), len(columns))
	}
	t := &Table{
		names:   make([]string, 0, len(names)),
		index:   make(map[string]int, len(names)),
		columns: make([][]float64, 0, len(columns)),
	}
	if len(columns) > 0 {
		t.rows = len(columns[0])
	}
	for i, name := range names {
		if err := t.add(name, columns[i]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Table) add(name string, values []float64) error {
	if name == "" {
		return errors.New("derive: empty channel name")
	}
	if _, exists := t.index[name]; exists {
		return fmt.Errorf("derive: duplicate channel %q", name)
	}
	if len(values) != t.rows {
		return fmt.Errorf("derive: channel %q has %d samples, table has %d", name, len(values), t.rows)
	}
	t.index[name] = len(t.names)
	t.names = append(t.names, name)
	t.columns = append(t.columns, values)
	return nil
}

// Len returns the number of samples.
func (t *Table) Len() int {
	return t.rows
}

// Names returns channel names in schema order.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Has reports whether the channel exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the samples of a channel.
func (t *Table) Column(name string) ([]float64, bool) {
	idx, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[idx], true
}

// Row returns sample i as a channel → value map.
func (t *Table) Row(i int) map[string]float64 {
	row := make(map[string]float64, len(t.names))
	for c, name := range t.names {
		row[name] = t.columns[c][i]
	}
	return row
}

// Extend returns a new table with the given channels appended, or replaced when a channel
// with the same name already exists. The receiver is left untouched.
func (t *Table) Extend(names []string, columns [][]float64) (*Table, error) {
	if len(names) != len(columns) {
		return nil, fmt.Errorf("derive: %d channel names for %d columns", len(names), len(columns))
	}
	out := &Table{
		names:   make([]string, len(t.names), len(t.names)+len(names)),
		index:   make(map[string]int, len(t.names)+len(names)),
		columns: make([][]float64, len(t.columns), len(t.columns)+len(columns)),
		rows:    t.rows,
	}
	copy(out.names, t.names)
	copy(out.columns, t.columns)
	for k, v := range t.index {
		out.index[k] = v
	}
	if len(t.names) == 0 && len(columns) > 0 {
		out.rows = len(columns[0])
	}

	for i, name := range names {
		if idx, exists := out.index[name]; exists {
			if len(columns[i]) != out.rows {
				return nil, fmt.Errorf("derive: channel %q has %d samples, table has %d", name, len(columns[i]), out.rows)
			}
			out.columns[idx] = columns[i]
			continue
		}
		if err := out.add(name, columns[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// WithColumn is Extend for a single channel.
func (t *Table) WithColumn(name string, values []float64) (*Table, error) {
	return t.Extend([]string{name}, [][]float64{values})
}

// Select returns a table restricted to the named channels, in the requested order.
func (t *Table) Select(names ...string) (*Table, error) {
	columns := make([][]float64, 0, len(names))
	for _, name := range names {
		col, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("derive: unknown channel %q", name)
		}
		columns = append(columns, col)
	}
	out, err := NewTable(names, columns)
	if err != nil {
		return nil, err
	}
	out.rows = t.rows
	return out, nil
}

// NullableRow returns sample i with missing values as nil, ready for JSON encoding.
func (t *Table) NullableRow(i int) map[string]*float64 {
	row := make(map[string]*float64, len(t.names))
	for c, name := range t.names {
		row[name] = nullable(t.columns[c][i])
	}
	return row
}

type tableJSON struct {
	Channels []string              `json:"channels"`
	Rows     int                   `json:"rows"`
	Columns  map[string][]*float64 `json:"columns"`
}

// MarshalJSON encodes the table column-major; missing samples become null.
func (t *Table) MarshalJSON() ([]byte, error) {
	out := tableJSON{
		Channels: t.Names(),
		Rows:     t.rows,
		Columns:  make(map[string][]*float64, len(t.names)),
	}
	for c, name := range t.names {
		values := make([]*float64, len(t.columns[c]))
		for i, v := range t.columns[c] {
			values[i] = nullable(v)
		}
		out.Columns[name] = values
	}
	return json.Marshal(out)
}

func nullable(v float64) *float64 {
	if IsMissing(v) {
		return nil
	}
	return &v
}
