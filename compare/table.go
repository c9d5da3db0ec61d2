package compare

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/rmera/commpare/engine"
	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"
)

// Table contains the energies obtained by each engine in a comparison, one
// row per engine that ran, in the order they were run.
type Table struct {
	RunID   string           `yaml:"run_id"`
	Reports []*engine.Report `yaml:"engines"`
}

// Columns returns the union of the energy keys of all the rows. Canonical
// keys come first, in canonical order, other keys follow in the order they
// were first seen.
func (T *Table) Columns() []string {
	seen := make(map[string]bool)
	for _, r := range T.Reports {
		for _, k := range r.Keys {
			seen[k] = true
		}
	}
	cols := make([]string, 0, len(seen))
	for _, k := range engine.CanonicalKeys() {
		if seen[k] {
			cols = append(cols, k)
			delete(seen, k)
		}
	}
	for _, r := range T.Reports {
		for _, k := range r.Keys {
			if seen[k] {
				cols = append(cols, k)
				delete(seen, k)
			}
		}
	}
	return cols
}

// Engines returns the engines with a row in the table.
func (T *Table) Engines() []engine.Name {
	ret := make([]engine.Name, 0, len(T.Reports))
	for _, r := range T.Reports {
		ret = append(ret, r.Engine)
	}
	return ret
}

// Row returns the report of the given engine, or nil if the engine
// has no row.
func (T *Table) Row(name engine.Name) *engine.Report {
	for _, r := range T.Reports {
		if r.Engine == name {
			return r
		}
	}
	return nil
}

// Value returns the energy for the given engine and key. The second value
// is false if the engine has no row or didn't declare that key.
func (T *Table) Value(name engine.Name, key string) (engine.Value, bool) {
	r := T.Row(name)
	if r == nil || !r.Has(key) {
		return engine.NotApplicable, false
	}
	return r.Get(key), true
}

// Deviations returns, for each column, the difference between the largest
// and the smallest value among the engines. Only columns with at least two
// applicable values get a number, the rest are not applicable.
func (T *Table) Deviations() *engine.Report {
	cols := T.Columns()
	ret := engine.NewReport("max-min", cols)
	for _, c := range cols {
		vals := make([]float64, 0, len(T.Reports))
		for _, r := range T.Reports {
			if v, ok := r.Get(c).Float(); ok {
				vals = append(vals, v)
			}
		}
		if len(vals) < 2 {
			continue
		}
		ret.Values[c] = engine.Energy(floats.Max(vals) - floats.Min(vals))
	}
	return ret
}

// cell gives the text for the engine's value of key. Keys the engine
// never declared print as "-" so they can be told apart from N/A.
func cell(r *engine.Report, key string) string {
	if !r.Has(key) {
		return "-"
	}
	v, ok := r.Get(key).Float()
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%.6f", v)
}

// WriteText writes the table in aligned columns, one row per engine. If
// spread is true, a final row with the deviations is added.
func (T *Table) WriteText(w io.Writer, spread bool) error {
	cols := T.Columns()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "engine\t%s\t\n", strings.Join(cols, "\t"))
	rows := slices.Clone(T.Reports)
	if spread && len(rows) > 1 {
		rows = append(rows, T.Deviations())
	}
	for _, r := range rows {
		fields := make([]string, 0, len(cols))
		for _, c := range cols {
			fields = append(fields, cell(r, c))
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", r.Engine, strings.Join(fields, "\t"))
	}
	return tw.Flush()
}

// WriteCSV writes the table as comma-separated values with a header row.
// Values that are not applicable are left empty.
func (T *Table) WriteCSV(w io.Writer) error {
	cols := T.Columns()
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"engine"}, cols...)); err != nil {
		return err
	}
	for _, r := range T.Reports {
		rec := []string{string(r.Engine)}
		for _, c := range cols {
			v, ok := r.Get(c).Float()
			if !ok {
				rec = append(rec, "")
				continue
			}
			rec = append(rec, fmt.Sprintf("%g", v))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteYAML writes the table as a YAML document.
func (T *Table) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(T); err != nil {
		return err
	}
	return enc.Close()
}

// ReadYAML reads a table written by WriteYAML.
func ReadYAML(r io.Reader) (*Table, error) {
	t := new(Table)
	if err := yaml.NewDecoder(r).Decode(t); err != nil {
		return nil, fmt.Errorf("ReadYAML: %w", err)
	}
	return t, nil
}
