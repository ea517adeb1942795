package plugin

import (
	"context"
	"slices"
)

// LinkResolution is the outcome of resolving episode links. ParsersActive is
// zero when no parser was enabled, in which case Episodes is the input unchanged.
type LinkResolution struct {
	Episodes      []Episode
	ParsersActive int
}

// ResolveLinks runs every enabled parser over each episode's play URL and
// stores the concatenated links, in parser order, as the episode's ParsedURLs.
// The input slice is not modified.
func (r *Registry) ResolveLinks(ctx context.Context, episodes []Episode) (LinkResolution, error) {
	parsers, err := r.EnabledParsers(ctx)
	if err != nil {
		return LinkResolution{}, err
	}
	if len(parsers) == 0 {
		r.log.Warn("no parsers enabled, links left unresolved", "episodes", len(episodes))
		return LinkResolution{Episodes: episodes}, nil
	}

	return LinkResolution{Episodes: r.resolveWith(parsers, episodes), ParsersActive: len(parsers)}, nil
}

// ResolveResults resolves the episodes of every search result. The returned
// count is the number of enabled parsers, whether or not any result carried
// episodes.
func (r *Registry) ResolveResults(ctx context.Context, results []SearchResult) ([]SearchResult, int, error) {
	parsers, err := r.EnabledParsers(ctx)
	if err != nil {
		return nil, 0, err
	}
	out := slices.Clone(results)
	if len(parsers) == 0 {
		r.log.Warn("no parsers enabled, links left unresolved", "results", len(results))
		return out, 0, nil
	}
	for i := range out {
		if len(out[i].Episodes) > 0 {
			out[i].Episodes = r.resolveWith(parsers, out[i].Episodes)
		}
	}
	return out, len(parsers), nil
}

func (r *Registry) resolveWith(parsers []Parser, episodes []Episode) []Episode {
	out := make([]Episode, len(episodes))
	for i, ep := range episodes {
		ep.ParsedURLs = nil
		for _, p := range parsers {
			ep.ParsedURLs = append(ep.ParsedURLs, r.parseSafe(p, ep.PlayURL)...)
		}
		out[i] = ep
	}
	return out
}

func (r *Registry) parseSafe(p Parser, url string) (links []ParsedLink) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("parser panicked", "plugin", p.Name(), "url", url, "panic", rec)
			links = nil
		}
	}()
	return p.ParseURL(url)
}
