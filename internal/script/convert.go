package script

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/spf13/cast"
	lua "github.com/yuin/gopher-lua"

	"github.com/vmunix/mediahub/internal/plugin"
)

// toLua converts a Go value built from maps, slices and scalars to a Lua value.
func toLua(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return x
	case bool:
		return lua.LBool(x)
	case string:
		return lua.LString(x)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return lua.LNumber(cast.ToFloat64(x))
	case []string:
		tbl := L.CreateTable(len(x), 0)
		for _, s := range x {
			tbl.Append(lua.LString(s))
		}
		return tbl
	case []any:
		tbl := L.CreateTable(len(x), 0)
		for _, e := range x {
			tbl.Append(toLua(L, e))
		}
		return tbl
	case plugin.Config:
		return toLua(L, map[string]any(x))
	case map[string]any:
		tbl := L.CreateTable(0, len(x))
		for k, e := range x {
			tbl.RawSetString(k, toLua(L, e))
		}
		return tbl
	default:
		if m, err := cast.ToStringMapE(x); err == nil {
			return toLua(L, m)
		}
		if s, err := cast.ToSliceE(x); err == nil {
			return toLua(L, s)
		}
		return lua.LString(cast.ToString(x))
	}
}

// fromLua converts a Lua value to plain Go values. Tables with a sequence part
// become []any, other tables map[string]any. Empty tables become nil so they
// decode into either shape. Whole numbers become int.
func fromLua(v lua.LValue) any {
	switch v.Type() {
	case lua.LTNil:
		return nil
	case lua.LTBool:
		return bool(v.(lua.LBool))
	case lua.LTNumber:
		n := float64(v.(lua.LNumber))
		if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
			return int(n)
		}
		return n
	case lua.LTString:
		return v.String()
	case lua.LTTable:
		tbl := v.(*lua.LTable)
		if n := tbl.MaxN(); n > 0 {
			out := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				out = append(out, fromLua(tbl.RawGetInt(i)))
			}
			return out
		}
		out := make(map[string]any)
		tbl.ForEach(func(k, e lua.LValue) {
			if k.Type() == lua.LTString {
				out[k.String()] = fromLua(e)
			}
		})
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		return nil
	}
}

// decode converts a Lua value into out through its JSON shape.
func decode(v lua.LValue, out any) error {
	raw, err := json.Marshal(fromLua(v))
	if err != nil {
		return fmt.Errorf("encode %s: %w", v.Type(), err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", v.Type(), err)
	}
	return nil
}

// stringList reads a list of strings from a table field.
func stringList(tbl *lua.LTable, key string) []string {
	val := tbl.RawGetString(key)
	list, ok := val.(*lua.LTable)
	if !ok {
		return nil
	}
	var out []string
	list.ForEach(func(_, v lua.LValue) {
		if v.Type() == lua.LTString {
			out = append(out, v.String())
		}
	})
	return out
}

func stringField(tbl *lua.LTable, key string) string {
	val := tbl.RawGetString(key)
	if val.Type() == lua.LTString {
		return val.String()
	}
	return ""
}
