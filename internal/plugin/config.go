package plugin

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cast"
)

// EnabledKey is the reserved config key that toggles a provider.
const EnabledKey = "_enabled"

// Config is a provider's working configuration.
type Config map[string]any

// Enabled reports the _enabled flag, defaulting to true.
func (c Config) Enabled() bool {
	v, ok := c[EnabledKey]
	if !ok || v == nil {
		return true
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return true
	}
	return b
}

// String returns key as a string, or "" if absent.
func (c Config) String(key string) string {
	return cast.ToString(c[key])
}

// Int returns key as an int, or 0 if absent or not numeric.
func (c Config) Int(key string) int {
	return cast.ToInt(c[key])
}

// Bool returns key as a bool, or false if absent.
func (c Config) Bool(key string) bool {
	return cast.ToBool(c[key])
}

// List returns key as a list of nested configs. Items that are not objects are skipped.
func (c Config) List(key string) []Config {
	items, err := cast.ToSliceE(c[key])
	if err != nil || len(items) == 0 {
		return nil
	}
	out := make([]Config, 0, len(items))
	for _, item := range items {
		m, err := cast.ToStringMapE(item)
		if err != nil {
			continue
		}
		out = append(out, Config(m))
	}
	return out
}

// Clone returns a shallow copy.
func (c Config) Clone() Config {
	if c == nil {
		return Config{}
	}
	return maps.Clone(c)
}

// Normalize coerces raw against schema. Missing or invalid values fall back
// to the field default and log a warning; keys outside the schema pass through.
func Normalize(schema []ConfigField, raw Config, log *slog.Logger) Config {
	if log == nil {
		log = slog.Default()
	}
	out := raw.Clone()
	for _, f := range schema {
		v, ok := raw[f.Key]
		if !ok || v == nil {
			if f.Default != nil {
				out[f.Key] = f.Default
			}
			continue
		}
		coerced, err := coerce(f, v, log)
		if err != nil {
			log.Warn("invalid config value, using default", "field", f.Key, "kind", f.Kind, "error", err)
			if f.Default != nil {
				out[f.Key] = f.Default
			} else {
				delete(out, f.Key)
			}
			continue
		}
		out[f.Key] = coerced
	}
	if v, ok := raw[EnabledKey]; ok {
		b, err := cast.ToBoolE(v)
		if err != nil {
			log.Warn("invalid config value, using default", "field", EnabledKey, "error", err)
			b = true
		}
		out[EnabledKey] = b
	}
	return out
}

func coerce(f ConfigField, v any, log *slog.Logger) (any, error) {
	switch f.Kind {
	case KindNumber:
		if _, isInt := f.Default.(int); isInt {
			return cast.ToIntE(v)
		}
		n, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, err
		}
		if n == float64(int64(n)) {
			return int(n), nil
		}
		return n, nil
	case KindBoolean:
		return cast.ToBoolE(v)
	case KindSelect:
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, err
		}
		if len(f.Options) > 0 && !slices.Contains(f.Options, s) {
			return nil, &optionError{value: s, options: f.Options}
		}
		return s, nil
	case KindList:
		items, err := cast.ToSliceE(v)
		if err != nil {
			return nil, err
		}
		out := make([]any, 0, len(items))
		for i, item := range items {
			m, err := cast.ToStringMapE(item)
			if err != nil {
				log.Warn("dropping invalid list item", "field", f.Key, "index", i, "error", err)
				continue
			}
			out = append(out, map[string]any(Normalize(f.Fields, Config(m), log)))
		}
		return out, nil
	default:
		return cast.ToStringE(v)
	}
}

type optionError struct {
	value   string
	options []string
}

func (e *optionError) Error() string {
	return fmt.Sprintf("value %q not in options [%s]", e.value, strings.Join(e.options, ", "))
}
