package engine

import (
	"encoding/json"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Value is an energy in kJ/mol, or the "not applicable" sentinel, used when
// the engine reports none of the native terms that make up a component.
type Value struct {
	v  float64
	ok bool
}

// NotApplicable is the Value of components that an engine can't report
// for the current system.
var NotApplicable = Value{}

const naString = "not applicable"

// Energy returns a Value containing the energy e.
func Energy(e float64) Value {
	return Value{v: e, ok: true}
}

// Float returns the energy and whether it is applicable.
func (V Value) Float() (float64, bool) {
	return V.v, V.ok
}

// Applicable returns true if V contains an energy.
func (V Value) Applicable() bool { return V.ok }

func (V Value) String() string {
	if !V.ok {
		return naString
	}
	return strconv.FormatFloat(V.v, 'f', -1, 64)
}

// MarshalYAML writes non-applicable values as the "not applicable" string.
func (V Value) MarshalYAML() (interface{}, error) {
	if !V.ok {
		return naString, nil
	}
	return V.v, nil
}

// UnmarshalYAML reads what MarshalYAML writes.
func (V *Value) UnmarshalYAML(n *yaml.Node) error {
	if n.Value == naString {
		*V = NotApplicable
		return nil
	}
	var f float64
	if err := n.Decode(&f); err != nil {
		return err
	}
	*V = Energy(f)
	return nil
}

// MarshalJSON writes non-applicable values as null.
func (V Value) MarshalJSON() ([]byte, error) {
	if !V.ok {
		return []byte("null"), nil
	}
	return json.Marshal(V.v)
}

// Report contains the canonical energy components reported by one engine.
// Every key in Keys has an entry in Values.
type Report struct {
	Engine Name             `yaml:"engine"`
	Keys   []string         `yaml:"keys"`
	Values map[string]Value `yaml:"values"`
}

// NewReport returns a Report for the engine, with all the keys set to NotApplicable.
func NewReport(engine Name, keys []string) *Report {
	r := &Report{Engine: engine, Keys: slices.Clone(keys), Values: make(map[string]Value, len(keys))}
	for _, k := range keys {
		r.Values[k] = NotApplicable
	}
	return r
}

// Get returns the value for the key. Keys not declared by the report
// are not applicable.
func (R *Report) Get(key string) Value {
	if R == nil {
		return NotApplicable
	}
	v, ok := R.Values[key]
	if !ok {
		return NotApplicable
	}
	return v
}

// Has returns true if the key is declared in the report.
func (R *Report) Has(key string) bool {
	return slices.Contains(R.Keys, key)
}

// TermMap maps each canonical key to the native terms of one engine that
// are summed to obtain it. The order of the entries is the order of the
// keys in the resulting Report.
type TermMap []Component

// Component is one canonical key and the native terms that make it up.
type Component struct {
	Key    string
	Native []string
}

// Keys returns the canonical keys of the map, in order.
func (T TermMap) Keys() []string {
	r := make([]string, 0, len(T))
	for _, v := range T {
		r = append(r, v.Key)
	}
	return r
}

// Canonicalize builds a Report from the native energy terms of an engine.
// Each canonical key is the sum of the present native terms that map to it,
// times factor. If none of the native terms is present, the key is not
// applicable.
func Canonicalize(engine Name, native map[string]float64, tm TermMap, factor float64) *Report {
	r := NewReport(engine, tm.Keys())
	for _, entry := range tm {
		var sum float64
		found := false
		for _, n := range entry.Native {
			if e, ok := native[n]; ok {
				sum += e * factor
				found = true
			}
		}
		if found {
			r.Values[entry.Key] = Energy(sum)
		}
	}
	return r
}
