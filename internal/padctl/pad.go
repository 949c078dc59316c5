package padctl

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// PadCount is the number of addressable pad slots.
const PadCount = 8

// AllPads selects every slot.
const AllPads = "all"

var ErrInvalidPadIndex = errors.New("padctl: invalid pad index")

// PadIndex is the canonical form of a pad slot number.
type PadIndex int

func (p PadIndex) Valid() bool {
	return p >= 0 && p < PadCount
}

func (p PadIndex) String() string {
	return strconv.Itoa(int(p))
}

// AllPadIndices returns slots 0 through 7 in order.
func AllPadIndices() []PadIndex {
	out := make([]PadIndex, PadCount)
	for i := range out {
		out[i] = PadIndex(i)
	}
	return out
}

// ParsePadIndex converts an integer, integral float, json.Number or decimal
// string into a PadIndex. Values outside 0..7 are rejected.
func ParsePadIndex(v any) (PadIndex, error) {
	n, ok := padInt(v)
	if !ok || n < 0 || n >= PadCount {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPadIndex, v)
	}
	return PadIndex(n), nil
}

// IsAll reports whether v is the literal all-pads selector.
func IsAll(v any) bool {
	s, ok := v.(string)
	return ok && s == AllPads
}

// NormalizePads resolves a pad selector into an ordered list of distinct
// slots. "all" expands to every slot; invalid entries are dropped.
// Only nil and "" select nothing: a bare 0 selects pad 0.
func NormalizePads(selector any) []PadIndex {
	if selector == nil {
		return nil
	}
	if IsAll(selector) {
		return AllPadIndices()
	}

	var entries []any
	switch sel := selector.(type) {
	case []any:
		entries = sel
	case string, json.Number:
		entries = []any{sel}
	default:
		rv := reflect.ValueOf(selector)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			entries = make([]any, rv.Len())
			for i := range entries {
				entries[i] = rv.Index(i).Interface()
			}
		} else {
			entries = []any{selector}
		}
	}

	var seen [PadCount]bool
	out := make([]PadIndex, 0, len(entries))
	for _, entry := range entries {
		idx, err := ParsePadIndex(entry)
		if err != nil || seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, idx)
	}
	return out
}

func padInt(v any) (int64, bool) {
	switch x := v.(type) {
	case PadIndex:
		return int64(x), true
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return uintToInt(uint64(x))
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return uintToInt(x)
	case float32:
		return floatToInt(float64(x))
	case float64:
		return floatToInt(x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, true
		}
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	case string:
		x = strings.TrimSpace(x)
		n, err := strconv.ParseInt(x, 10, 64)
		if err != nil || strconv.FormatInt(n, 10) != x {
			// canonical decimal only: no sign, no leading zeros
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func uintToInt(x uint64) (int64, bool) {
	if x > math.MaxInt64 {
		return 0, false
	}
	return int64(x), true
}

func floatToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int64(f), true
}
