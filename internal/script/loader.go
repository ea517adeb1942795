// Package script loads providers written in Lua. A script lives at
// <dir>/<type>/<name>_plugin.lua and declares itself with one call to
// plugin.register{...}. Every load reads and compiles the current file into a
// fresh Lua state, so loading again picks up edits.
package script

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	libs "github.com/metafates/mangal-lua-libs"
	"github.com/spf13/afero"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/vmunix/mediahub/internal/plugin"
)

// Suffix is the file name suffix of a plugin script.
const Suffix = "_plugin.lua"

// Loader implements plugin.Loader and plugin.Discoverer over a directory of scripts.
type Loader struct {
	fs  afero.Afero
	dir string
	log *slog.Logger

	// compiled prototypes keyed by source hash
	protos sync.Map
}

// NewLoader creates a loader rooted at dir on fs. A nil fs means the OS filesystem.
func NewLoader(fs afero.Fs, dir string, log *slog.Logger) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Loader{
		fs:  afero.Afero{Fs: fs},
		dir: dir,
		log: log.With("component", "script"),
	}
}

// Path returns the script location for (t, name).
func (l *Loader) Path(t plugin.Type, name string) string {
	return filepath.Join(l.dir, string(t), name+Suffix)
}

// Candidates lists the script names present for t, sorted.
func (l *Loader) Candidates(_ context.Context, t plugin.Type) ([]string, error) {
	entries, err := l.fs.ReadDir(filepath.Join(l.dir, string(t)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s scripts: %w", t, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Suffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), Suffix))
	}
	slices.Sort(names)
	return names, nil
}

// Load compiles and runs the script for (t, name) and returns the provider it
// registered. The returned provider owns a Lua state and must be closed.
func (l *Loader) Load(ctx context.Context, t plugin.Type, name string) (plugin.Provider, error) {
	path := l.Path(t, name)
	src, err := l.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("script %s: %w", path, plugin.ErrNotFound)
		}
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}
	proto, err := l.compile(path, src)
	if err != nil {
		return nil, err
	}

	state := lua.NewState()
	libs.Preload(state)
	var defs []*lua.LTable
	state.SetGlobal("plugin", l.hostModule(state, name, &defs))

	state.SetContext(ctx)
	state.Push(state.NewFunctionFromProto(proto))
	err = state.PCall(0, lua.MultRet, nil)
	state.RemoveContext()
	if err != nil {
		state.Close()
		return nil, fmt.Errorf("run script %s: %w", path, err)
	}

	p, err := l.build(t, name, path, state, defs)
	if err != nil {
		state.Close()
		return nil, err
	}
	l.log.Debug("script loaded", "type", t, "plugin", name, "path", path)
	return p, nil
}

func (l *Loader) compile(path string, src []byte) (*lua.FunctionProto, error) {
	key := sha256.Sum256(src)
	if cached, ok := l.protos.Load(key); ok {
		return cached.(*lua.FunctionProto), nil
	}
	chunk, err := parse.Parse(bytes.NewReader(src), path)
	if err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	proto, err := lua.Compile(chunk, path)
	if err != nil {
		return nil, fmt.Errorf("compile script %s: %w", path, err)
	}
	l.protos.Store(key, proto)
	return proto, nil
}

// hostModule builds the global plugin table scripts talk to.
func (l *Loader) hostModule(L *lua.LState, name string, defs *[]*lua.LTable) *lua.LTable {
	log := l.log.With("plugin", name)
	mod := L.NewTable()
	L.SetField(mod, "register", L.NewFunction(func(L *lua.LState) int {
		*defs = append(*defs, L.CheckTable(1))
		return 0
	}))
	L.SetField(mod, "log", L.NewFunction(func(L *lua.LState) int {
		level, msg := L.CheckString(1), L.CheckString(2)
		switch level {
		case "debug":
			log.Debug(msg)
		case "warn":
			log.Warn(msg)
		case "error":
			log.Error(msg)
		default:
			log.Info(msg)
		}
		return 0
	}))
	return mod
}

// build validates the registered definition and wraps it in the provider
// type matching t.
func (l *Loader) build(t plugin.Type, name, path string, state *lua.LState, defs []*lua.LTable) (plugin.Provider, error) {
	switch len(defs) {
	case 0:
		return nil, fmt.Errorf("script %s: %w", path, plugin.ErrNoProvider)
	case 1:
	default:
		return nil, fmt.Errorf("script %s registers %d providers: %w", path, len(defs), plugin.ErrAmbiguousProvider)
	}
	def := defs[0]

	declared := stringField(def, "type")
	if declared != string(t) {
		return nil, fmt.Errorf("script %s declares type %q, want %q: %w", path, declared, t, plugin.ErrTypeMismatch)
	}
	if n := stringField(def, "name"); n != "" && n != name {
		return nil, fmt.Errorf("script %s declares name %q: %w", path, n, ErrInvalidDefinition)
	}
	for _, fn := range requiredFuncs[t] {
		if def.RawGetString(fn).Type() != lua.LTFunction {
			return nil, fmt.Errorf("script %s: function %s is required: %w", path, fn, ErrInvalidDefinition)
		}
	}

	var schema []plugin.ConfigField
	if raw := def.RawGetString("config_schema"); raw != lua.LNil {
		if err := decode(raw, &schema); err != nil {
			return nil, fmt.Errorf("script %s config_schema: %w: %w", path, ErrInvalidDefinition, err)
		}
	}

	rt := &runtime{
		name:        name,
		version:     stringField(def, "version"),
		description: stringField(def, "description"),
		schema:      schema,
		path:        path,
		log:         l.log.With("plugin", name),
		state:       state,
		def:         def,
		config:      plugin.Config{},
	}
	if rt.version == "" {
		rt.version = "0.0.0"
	}

	switch t {
	case plugin.TypeSearch:
		return &Searcher{runtime: rt}, nil
	case plugin.TypeDownload:
		protocols := stringList(def, "protocols")
		if len(protocols) == 0 {
			return nil, fmt.Errorf("script %s: protocols is required: %w", path, ErrInvalidDefinition)
		}
		return &Downloader{runtime: rt, protocols: protocols, webUI: stringField(def, "web_ui_url")}, nil
	case plugin.TypeParser:
		return &Parser{runtime: rt}, nil
	}
	return nil, fmt.Errorf("script %s: %w: %q", path, plugin.ErrUnknownType, t)
}
