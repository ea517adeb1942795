package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/mediahub/internal/plugin"
)

// Source supplies the searchers a Pool fans out to.
type Source interface {
	EnabledSearchers(ctx context.Context) ([]plugin.Searcher, error)
	Searcher(name string) (plugin.Searcher, error)
}

// Options tunes a Pool. Zero values mean no limit, no timeout and no ranking.
type Options struct {
	Concurrency int
	Timeout     time.Duration
	Rank        bool
}

// Result is the merged outcome of a fan-out search. Results follow provider
// order unless ranked. Errors holds one entry per failed provider.
type Result struct {
	Keyword string
	Results []plugin.SearchResult
	Errors  map[string]error
}

// ErrorMessages flattens Errors for serialization.
func (r *Result) ErrorMessages() map[string]string {
	if len(r.Errors) == 0 {
		return nil
	}
	out := make(map[string]string, len(r.Errors))
	for name, err := range r.Errors {
		out[name] = err.Error()
	}
	return out
}

// Pool searches several providers in parallel.
type Pool struct {
	src  Source
	opts Options
	log  *slog.Logger
}

// NewPool creates a pool over src.
func NewPool(src Source, opts Options, log *slog.Logger) *Pool {
	if log == nil {
		log = slog.Default()
	}
	return &Pool{src: src, opts: opts, log: log.With("component", "search")}
}

// Search queries every enabled searcher, or only the named ones, in parallel.
// A failing provider is logged and recorded in Result.Errors and never
// cancels the others.
func (p *Pool) Search(ctx context.Context, keyword string, names ...string) (*Result, error) {
	q := NormalizeKeyword(keyword)
	if q == "" {
		return nil, ErrEmptyKeyword
	}
	res := &Result{Keyword: q}

	searchers, err := p.resolve(ctx, names, res)
	if err != nil {
		return nil, err
	}
	if len(searchers) == 0 {
		if len(res.Errors) > 0 {
			return res, nil
		}
		return nil, ErrNoSearchers
	}

	p.log.Debug("search started", "query", q, "original", keyword, "providers", len(searchers))
	start := time.Now()

	type outcome struct {
		results []plugin.SearchResult
		err     error
	}
	outcomes := make([]outcome, len(searchers))

	var g errgroup.Group
	if p.opts.Concurrency > 0 {
		g.SetLimit(p.opts.Concurrency)
	}
	for i, s := range searchers {
		g.Go(func() error {
			providerStart := time.Now()
			results, err := p.searchOne(ctx, s, q)
			if err != nil {
				p.log.Warn("provider failed", "plugin", s.Name(), "error", err,
					"duration_ms", time.Since(providerStart).Milliseconds())
			} else {
				p.log.Debug("provider returned", "plugin", s.Name(), "results", len(results),
					"duration_ms", time.Since(providerStart).Milliseconds())
			}
			outcomes[i] = outcome{results: results, err: err}
			return nil
		})
	}
	_ = g.Wait()

	for i, o := range outcomes {
		if o.err != nil {
			res.addError(searchers[i].Name(), o.err)
			continue
		}
		res.Results = append(res.Results, o.results...)
	}
	if p.opts.Rank {
		res.Results = Rank(q, res.Results)
	}

	p.log.Info("search complete", "query", q, "results", len(res.Results), "errors", len(res.Errors),
		"duration_ms", time.Since(start).Milliseconds())
	return res, nil
}

func (p *Pool) resolve(ctx context.Context, names []string, res *Result) ([]plugin.Searcher, error) {
	if len(names) == 0 {
		searchers, err := p.src.EnabledSearchers(ctx)
		if err != nil {
			return nil, fmt.Errorf("list searchers: %w", err)
		}
		return searchers, nil
	}
	var out []plugin.Searcher
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		s, err := p.src.Searcher(name)
		if err != nil {
			res.addError(name, err)
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (p *Pool) searchOne(ctx context.Context, s plugin.Searcher, q string) (results []plugin.SearchResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			results, err = nil, fmt.Errorf("%w: %v", ErrProviderPanic, rec)
		}
	}()
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}
	return s.Search(ctx, q)
}

func (r *Result) addError(name string, err error) {
	if r.Errors == nil {
		r.Errors = make(map[string]error)
	}
	r.Errors[name] = err
}
