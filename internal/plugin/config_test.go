package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var sampleSchema = []ConfigField{
	{Key: "host", Kind: KindText, Default: "http://localhost:8080"},
	{Key: "password", Kind: KindPassword},
	{Key: "timeout", Kind: KindNumber, Default: 30},
	{Key: "ratio", Kind: KindNumber, Default: 1.5},
	{Key: "use_proxy", Kind: KindBoolean, Default: false},
	{Key: "quality", Kind: KindSelect, Default: "best", Options: []string{"best", "1080p", "720p"}},
	{Key: "sites", Kind: KindList, Default: []any{}, Fields: []ConfigField{
		{Key: "name", Kind: KindText},
		{Key: "enabled", Kind: KindBoolean, Default: true},
	}},
}

func TestNormalize_AppliesDefaults(t *testing.T) {
	cfg := Normalize(sampleSchema, Config{}, testLogger())

	assert.Equal(t, "http://localhost:8080", cfg["host"])
	assert.Equal(t, 30, cfg["timeout"])
	assert.Equal(t, false, cfg["use_proxy"])
	assert.Equal(t, "best", cfg["quality"])
	assert.NotContains(t, cfg, "password", "no default means no key")
}

func TestNormalize_CoercesValues(t *testing.T) {
	cfg := Normalize(sampleSchema, Config{
		"host":      "http://qb:8080",
		"timeout":   "45",
		"ratio":     "2.25",
		"use_proxy": "1",
		"quality":   "720p",
	}, testLogger())

	assert.Equal(t, "http://qb:8080", cfg["host"])
	assert.Equal(t, 45, cfg["timeout"])
	assert.Equal(t, 2.25, cfg["ratio"])
	assert.Equal(t, true, cfg["use_proxy"])
	assert.Equal(t, "720p", cfg["quality"])
}

func TestNormalize_InvalidFallsBackToDefault(t *testing.T) {
	cfg := Normalize(sampleSchema, Config{
		"timeout":   "soon",
		"use_proxy": "maybe",
		"quality":   "4k",
		"sites":     "not a list",
	}, testLogger())

	assert.Equal(t, 30, cfg["timeout"])
	assert.Equal(t, false, cfg["use_proxy"])
	assert.Equal(t, "best", cfg["quality"])
	assert.Equal(t, []any{}, cfg["sites"])
}

func TestNormalize_ListItems(t *testing.T) {
	cfg := Normalize(sampleSchema, Config{
		"sites": []any{
			map[string]any{"name": "a"},
			map[string]any{"name": "b", "enabled": "false"},
			"garbage",
		},
	}, testLogger())

	sites := cfg.List("sites")
	assert.Len(t, sites, 2)
	assert.Equal(t, "a", sites[0].String("name"))
	assert.True(t, sites[0].Bool("enabled"))
	assert.False(t, sites[1].Bool("enabled"))
}

func TestNormalize_PassesThroughUnknownKeys(t *testing.T) {
	cfg := Normalize(sampleSchema, Config{"extra": 7, EnabledKey: "false"}, testLogger())

	assert.Equal(t, 7, cfg["extra"])
	assert.Equal(t, false, cfg[EnabledKey])
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	raw := Config{"timeout": "45"}
	_ = Normalize(sampleSchema, raw, testLogger())

	assert.Equal(t, "45", raw["timeout"])
}

func TestConfig_Enabled(t *testing.T) {
	assert.True(t, Config{}.Enabled())
	assert.True(t, Config{EnabledKey: true}.Enabled())
	assert.False(t, Config{EnabledKey: false}.Enabled())
	assert.True(t, Config{EnabledKey: nil}.Enabled())
}

func TestConfig_Accessors(t *testing.T) {
	cfg := Config{"n": 12.0, "s": "x", "b": true}

	assert.Equal(t, 12, cfg.Int("n"))
	assert.Equal(t, "x", cfg.String("s"))
	assert.True(t, cfg.Bool("b"))
	assert.Equal(t, "", cfg.String("missing"))
	assert.Nil(t, cfg.List("missing"))
}
