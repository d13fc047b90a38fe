package intent

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindNone Kind = iota
	KindNumber
	KindString
	KindMap
)

// Value is a parameter value: a number, a string, or a nested parameter map.
// The zero Value is KindNone and reads back as the caller's default.
type Value struct {
	kind Kind
	num  float64
	str  string
	m    Params
}

// Num returns a numeric Value.
func Num(f float64) Value { return Value{kind: KindNumber, num: f} }

// Str returns a string Value.
func Str(s string) Value { return Value{kind: KindString, str: s} }

// Nested returns a map Value holding a copy of p.
func Nested(p Params) Value { return Value{kind: KindMap, m: p.Clone()} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// Float coerces v to a number. Strings are parsed; maps never coerce.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// String coerces v to a string. Numbers are formatted in the shortest form
// that round-trips.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindString:
		return v.str
	case KindMap:
		return fmt.Sprintf("%v", map[string]Value(v.m))
	}
	return ""
}

// Map returns the nested map, or nil when v is not a map.
func (v Value) Map() Params {
	if v.kind != KindMap {
		return nil
	}
	return v.m
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindString:
		return json.Marshal(v.str)
	case KindMap:
		return json.Marshal(map[string]Value(v.m))
	}
	return []byte("null"), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("intent: decode value: %w", err)
	}
	*v = fromAny(raw)
	return nil
}

func fromAny(raw any) Value {
	switch x := raw.(type) {
	case float64:
		return Num(x)
	case string:
		return Str(x)
	case bool:
		return Str(strconv.FormatBool(x))
	case map[string]any:
		p := make(Params, len(x))
		for k, e := range x {
			p[k] = fromAny(e)
		}
		return Value{kind: KindMap, m: p}
	}
	return Value{}
}

// Params is the flat engineering parameter bag of a design. Accessors coerce
// and fall back to a default instead of failing.
type Params map[string]Value

// Number returns the numeric value of key, or def when the key is missing or
// not numeric.
func (p Params) Number(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		if f, ok := v.Float(); ok {
			return f
		}
	}
	return def
}

// String returns the string form of key, or def when the key is missing.
func (p Params) String(key, def string) string {
	if v, ok := p[key]; ok && v.kind != KindNone {
		return v.String()
	}
	return def
}

// Nested returns the map stored under key, or nil.
func (p Params) Nested(key string) Params {
	return p[key].Map()
}

// Has reports whether key holds a value.
func (p Params) Has(key string) bool {
	v, ok := p[key]
	return ok && v.kind != KindNone
}

// HasNumber reports whether key holds a value that coerces to a number.
func (p Params) HasNumber(key string) bool {
	_, ok := p[key].Float()
	return ok
}

// SetNumber stores a numeric value.
func (p Params) SetNumber(key string, f float64) { p[key] = Num(f) }

// SetString stores a string value.
func (p Params) SetString(key, s string) { p[key] = Str(s) }

// Clone returns a deep copy.
func (p Params) Clone() Params {
	if p == nil {
		return Params{}
	}
	out := make(Params, len(p))
	for k, v := range p {
		if v.kind == KindMap {
			v = Value{kind: KindMap, m: v.m.Clone()}
		}
		out[k] = v
	}
	return out
}

// Merge returns a copy of p with patch applied on top. Nested maps merge
// recursively; every other value in patch replaces the one in p.
func (p Params) Merge(patch Params) Params {
	out := p.Clone()
	for k, v := range patch {
		if v.kind == KindMap {
			if cur := out[k]; cur.kind == KindMap {
				out[k] = Value{kind: KindMap, m: cur.m.Merge(v.m)}
				continue
			}
		}
		if v.kind == KindMap {
			v = Nested(v.m)
		}
		out[k] = v
	}
	return out
}

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Numbers returns every numeric (or numeric-string) entry.
func (p Params) Numbers() map[string]float64 {
	out := make(map[string]float64, len(p))
	for k, v := range p {
		if f, ok := v.Float(); ok {
			out[k] = f
		}
	}
	return out
}

// Canonical returns a copy with every key passed through CanonicalKey. When
// two raw keys collapse onto the same canonical key, the one that was already
// canonical wins.
func (p Params) Canonical() Params {
	out := make(Params, len(p))
	for _, k := range p.Keys() {
		ck := CanonicalKey(k)
		if _, taken := out[ck]; taken && k != ck {
			continue
		}
		out[ck] = p[k]
	}
	return out
}

// CanonicalKey maps heterogeneous parameter spellings onto the camelCase
// names the synthesis and rule stages use: "wall_thickness_mm" and
// "Wall Thickness" both become "wallThickness".
func CanonicalKey(k string) string {
	k = strings.TrimSpace(k)
	if alias, ok := keyAliases[strings.ToLower(k)]; ok {
		return alias
	}
	lower := strings.ToLower(k)
	for _, suffix := range []string{"_mm", "_n", "_g", "-mm"} {
		if strings.HasSuffix(lower, suffix) && len(k) > len(suffix) {
			k = k[:len(k)-len(suffix)]
			break
		}
	}
	parts := strings.FieldsFunc(k, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	if len(parts) == 0 {
		return ""
	}
	var b strings.Builder
	for i, part := range parts {
		if i == 0 {
			b.WriteString(strings.ToLower(part[:1]) + part[1:])
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]) + strings.ToLower(part[1:]))
	}
	if alias, ok := keyAliases[strings.ToLower(b.String())]; ok {
		return alias
	}
	return b.String()
}

var keyAliases = map[string]string{
	"wall":             KeyWallThickness,
	"wallthickness":    KeyWallThickness,
	"thick":            KeyThickness,
	"dia":              KeyDiameter,
	"od":               KeyDiameter,
	"r":                KeyRadius,
	"fillet":           KeyFilletRadius,
	"filletradius":     KeyFilletRadius,
	"chamfer":          KeyChamferSize,
	"chamfersize":      KeyChamferSize,
	"holes":            KeyHoleCount,
	"holecount":        KeyHoleCount,
	"holediameter":     KeyHoleDiameter,
	"holedepth":        KeyHoleDepth,
	"holeedgedistance": KeyHoleEdgeDistance,
	"force":            KeyLoad,
	"forcen":           KeyLoad,
	"loadn":            KeyLoad,
	"weight":           KeyMassG,
	"weightg":          KeyMassG,
	"massg":            KeyMassG,
	"ringsize":         KeyRingSize,
	"lega":             KeyLegA,
	"legb":             KeyLegB,
	"unitsystem":       KeyUnitSystem,
}
