package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"mediacopier/internal/logging"
)

// sourcesHash fingerprints the scan inputs so a cache built for a different
// source set or subfolder setting is never reused.
func sourcesHash(sources []string, includeSubfolders bool) string {
	sorted := append([]string(nil), sources...)
	sort.Strings(sorted)

	hasher := sha256.New()
	for _, source := range sorted {
		hasher.Write([]byte(source))
		hasher.Write([]byte{0})
	}
	hasher.Write([]byte(strconv.FormatBool(includeSubfolders)))
	return hex.EncodeToString(hasher.Sum(nil))
}

// loadCache returns a cached catalog when it is still valid: the sources
// hash matches and no existing source root was modified after the cache was
// written. Corrupt or stale caches are ignored.
func loadCache(path string, sources []string, includeSubfolders bool, logger *slog.Logger) (*Catalog, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var cached Catalog
	if err := json.Unmarshal(data, &cached); err != nil {
		logger.Debug("ignoring corrupt catalog cache", logging.String("path", path), logging.Error(err))
		return nil, false
	}

	if cached.SourcesHash != sourcesHash(sources, includeSubfolders) {
		return nil, false
	}

	for _, source := range sources {
		info, err := os.Stat(source)
		if err != nil {
			continue
		}
		if info.ModTime().After(cached.Timestamp) {
			return nil, false
		}
	}

	return &cached, true
}

// saveCache writes the catalog to the cache path, creating parent
// directories as needed.
func saveCache(path string, catalog *Catalog) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write catalog cache: %w", err)
	}
	return nil
}
