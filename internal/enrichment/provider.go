package enrichment

import (
	"gamatrix/internal/providers"
	"gamatrix/internal/structures"
)

// NewSource builds the configured metadata source. Without a cache file, or
// when it can't be read, records keep only what ingestion and config overrides
// give them.
func NewSource(conf *structures.Config, logger providers.Logger) Source {
	if conf.Enrichment.CacheFile == "" {
		return NoopSource{}
	}
	fs, err := NewFileSource(conf.Enrichment.CacheFile)
	if err != nil {
		logger.Warnf(providers.TypeApp, "Metadata enrichment disabled: %s", err)
		return NoopSource{}
	}
	logger.Infof(providers.TypeApp, "Loaded metadata for %d games from %s", fs.Len(), conf.Enrichment.CacheFile)
	return fs
}
