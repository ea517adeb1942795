package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/vmunix/mediahub/internal/plugin"
)

// Script function names looked up on the registered definition table.
const (
	fnSearch    = "search"
	fnVideoInfo = "video_info"
	fnDownload  = "download"
	fnProgress  = "progress"
	fnCancel    = "cancel"
	fnDownloads = "downloads"
	fnParseURL  = "parse_url"
)

// requiredFuncs lists the functions a definition must provide per type.
var requiredFuncs = map[plugin.Type][]string{
	plugin.TypeSearch:   {fnSearch},
	plugin.TypeDownload: {fnDownload, fnProgress},
	plugin.TypeParser:   {fnParseURL},
}

// runtime owns one Lua state and the definition table registered in it.
// Lua states are not safe for concurrent use so every call holds mu.
type runtime struct {
	name        string
	version     string
	description string
	schema      []plugin.ConfigField
	path        string
	log         *slog.Logger

	mu     sync.Mutex
	state  *lua.LState
	def    *lua.LTable
	config plugin.Config
}

func (r *runtime) Name() string                       { return r.name }
func (r *runtime) Version() string                    { return r.version }
func (r *runtime) Description() string                { return r.description }
func (r *runtime) ConfigSchema() []plugin.ConfigField { return r.schema }

// SetConfig replaces the config passed as the last argument to every script call.
func (r *runtime) SetConfig(cfg plugin.Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config = cfg.Clone()
}

// Close releases the Lua state. Later calls return ErrClosed.
func (r *runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != nil {
		r.state.Close()
		r.state = nil
	}
	return nil
}

// call invokes fn(args..., config) and returns its first result. A script
// reports failure by returning nil plus a message, or by raising an error.
func (r *runtime) call(ctx context.Context, fn string, args ...any) (lua.LValue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == nil {
		return nil, ErrClosed
	}
	L := r.state
	f := r.def.RawGetString(fn)
	if f.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%s.%s: %w", r.name, fn, ErrUnsupported)
	}
	L.SetContext(ctx)
	defer L.RemoveContext()

	largs := make([]lua.LValue, 0, len(args)+1)
	for _, a := range args {
		largs = append(largs, toLua(L, a))
	}
	largs = append(largs, toLua(L, map[string]any(r.config)))

	top := L.GetTop()
	if err := L.CallByParam(lua.P{Fn: f, NRet: 2, Protect: true}, largs...); err != nil {
		L.SetTop(top)
		return nil, fmt.Errorf("%s.%s: %w", r.name, fn, err)
	}
	ret, msg := L.Get(-2), L.Get(-1)
	L.Pop(2)
	if ret == lua.LNil && msg != lua.LNil {
		return nil, fmt.Errorf("%s.%s: %s", r.name, fn, msg.String())
	}
	return ret, nil
}

// Searcher is a Lua search provider.
type Searcher struct{ *runtime }

// Search calls search(keyword, config) and expects a list of result tables.
func (s *Searcher) Search(ctx context.Context, keyword string) ([]plugin.SearchResult, error) {
	ret, err := s.call(ctx, fnSearch, keyword)
	if err != nil {
		return nil, err
	}
	var results []plugin.SearchResult
	if err := decode(ret, &results); err != nil {
		return nil, fmt.Errorf("%s.%s: %w", s.name, fnSearch, err)
	}
	for i := range results {
		if results[i].Platform == "" {
			results[i].Platform = s.name
		}
	}
	return results, nil
}

// VideoInfo calls video_info(url, config) and expects a single result table.
func (s *Searcher) VideoInfo(ctx context.Context, url string) (*plugin.SearchResult, error) {
	ret, err := s.call(ctx, fnVideoInfo, url)
	if err != nil {
		return nil, err
	}
	var res plugin.SearchResult
	if err := decode(ret, &res); err != nil {
		return nil, fmt.Errorf("%s.%s: %w", s.name, fnVideoInfo, err)
	}
	if res.Platform == "" {
		res.Platform = s.name
	}
	return &res, nil
}

// Downloader is a Lua download provider.
type Downloader struct {
	*runtime
	protocols []string
	webUI     string
}

func (d *Downloader) SupportedProtocols() []string { return d.protocols }

// WebUIURL returns the config's web_ui_url, falling back to the definition.
func (d *Downloader) WebUIURL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if u := d.config.String("web_ui_url"); u != "" {
		return u
	}
	return d.webUI
}

// Download calls download(task, config). The script returns the client id,
// either as a string or as a table with a client_id field.
func (d *Downloader) Download(ctx context.Context, task *plugin.DownloadTask) error {
	ret, err := d.call(ctx, fnDownload, map[string]any{
		"id":        task.ID,
		"url":       task.URL,
		"title":     task.Title,
		"save_path": task.SavePath,
		"metadata":  task.Metadata,
	})
	if err != nil {
		task.Status = plugin.DownloadFailed
		return err
	}
	var clientID string
	switch v := ret.(type) {
	case lua.LString:
		clientID = string(v)
	case *lua.LTable:
		clientID = stringField(v, plugin.MetaClientID)
	}
	if clientID == "" {
		task.Status = plugin.DownloadFailed
		return fmt.Errorf("%s.%s: no client id returned", d.name, fnDownload)
	}
	task.Status = plugin.DownloadDownloading
	task.SetClientID(clientID)
	return nil
}

// Progress calls progress(client_id, config).
func (d *Downloader) Progress(ctx context.Context, clientID string) (*plugin.Progress, error) {
	ret, err := d.call(ctx, fnProgress, clientID)
	if err != nil {
		return nil, err
	}
	var p plugin.Progress
	if err := decode(ret, &p); err != nil {
		return nil, fmt.Errorf("%s.%s: %w", d.name, fnProgress, err)
	}
	return &p, nil
}

// Cancel calls cancel(client_id, config).
func (d *Downloader) Cancel(ctx context.Context, clientID string) error {
	_, err := d.call(ctx, fnCancel, clientID)
	return err
}

// Downloads calls downloads(config). Scripts without the function report none.
func (d *Downloader) Downloads(ctx context.Context) ([]plugin.DownloadRecord, error) {
	ret, err := d.call(ctx, fnDownloads)
	if errors.Is(err, ErrUnsupported) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var records []plugin.DownloadRecord
	if err := decode(ret, &records); err != nil {
		return nil, fmt.Errorf("%s.%s: %w", d.name, fnDownloads, err)
	}
	for i := range records {
		if records[i].Platform == "" {
			records[i].Platform = d.name
		}
	}
	return records, nil
}

// Parser is a Lua link parser.
type Parser struct{ *runtime }

// ParseURL calls parse_url(url, config). Errors yield no links.
func (p *Parser) ParseURL(url string) []plugin.ParsedLink {
	ret, err := p.call(context.Background(), fnParseURL, url)
	if err != nil {
		p.log.Warn("parse_url failed", "url", url, "error", err)
		return nil
	}
	var links []plugin.ParsedLink
	if err := decode(ret, &links); err != nil {
		p.log.Warn("parse_url returned malformed links", "url", url, "error", err)
		return nil
	}
	return links
}
