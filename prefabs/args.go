package prefabs

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Args is a spawn-argument bag: the raw key/value properties an entity is
// placed with. All values are kept as strings and interpreted on read.
type Args map[string]string

// ArgsFromMap converts decoded YAML/JSON properties to Args.
func ArgsFromMap(m map[string]any) Args {
	out := make(Args, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = val
		case bool:
			if val {
				out[k] = "1"
			} else {
				out[k] = "0"
			}
		case float64:
			out[k] = strconv.FormatFloat(val, 'g', -1, 64)
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}

// GetString returns the value for key. A missing or blank value reports
// false.
func (a Args) GetString(key string) (string, bool) {
	v, ok := a[key]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	return v, true
}

// GetBool parses key as a boolean. Numbers are true when non-zero; the usual
// true/false/yes/no spellings are accepted. Anything else yields def.
func (a Args) GetBool(key string, def bool) bool {
	v, ok := a.GetString(key)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n != 0
	}
	return def
}

// GetFloat parses key as a number, falling back to def.
func (a Args) GetFloat(key string, def float64) float64 {
	v, ok := a.GetString(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return n
}

// Merge returns a copy of a with over's entries layered on top.
func (a Args) Merge(over Args) Args {
	out := make(Args, len(a)+len(over))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

// Keys returns the keys in sorted order.
func (a Args) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
