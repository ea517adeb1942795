package plugin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cast"
)

// Legacy location of the m3u8 parser list, once stored on the seacms search provider.
const (
	legacyParserSource = "seacms"
	legacyParserKey    = "m3u8_parsers_list"
	parserTarget       = "m3u8"
	parserListKey      = "parsers_list"
)

// MigrateLegacyConfig moves the m3u8 parser list from the seacms search
// config to the m3u8 parser config. The target keeps its own list when it
// already has one. The legacy key is removed either way.
func MigrateLegacyConfig(ctx context.Context, store ConfigStore, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	src, err := store.Get(ctx, TypeSearch, legacyParserSource)
	if err != nil {
		return fmt.Errorf("load %s: %w", Key(TypeSearch, legacyParserSource), err)
	}
	legacy, ok := src[legacyParserKey]
	if !ok {
		return nil
	}

	dst, err := store.Get(ctx, TypeParser, parserTarget)
	if err != nil {
		return fmt.Errorf("load %s: %w", Key(TypeParser, parserTarget), err)
	}
	existing, _ := cast.ToSliceE(dst[parserListKey])
	moved := false
	if len(existing) == 0 {
		dst = dst.Clone()
		dst[parserListKey] = legacy
		if err := store.Set(ctx, TypeParser, parserTarget, dst); err != nil {
			return fmt.Errorf("save %s: %w", Key(TypeParser, parserTarget), err)
		}
		moved = true
	}

	src = src.Clone()
	delete(src, legacyParserKey)
	if err := store.Set(ctx, TypeSearch, legacyParserSource, src); err != nil {
		return fmt.Errorf("save %s: %w", Key(TypeSearch, legacyParserSource), err)
	}
	log.Info("legacy parser config migrated", "moved", moved)
	return nil
}
