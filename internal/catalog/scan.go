package catalog

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mediacopier/internal/logging"
	"mediacopier/internal/media"
	"mediacopier/internal/services"
)

// ignoredNames are system artifacts excluded regardless of extension.
var ignoredNames = map[string]struct{}{
	".DS_Store":   {},
	"Thumbs.db":   {},
	"desktop.ini": {},
	".gitignore":  {},
	".gitkeep":    {},
}

// ignoredExtensions are temp/partial file extensions excluded regardless of
// the allow-list.
var ignoredExtensions = map[string]struct{}{
	".tmp": {}, ".temp": {}, ".bak": {}, ".swp": {}, ".swo": {},
	".part": {}, ".crdownload": {}, ".partial": {}, ".download": {},
}

// Options controls a catalog scan.
type Options struct {
	Sources           []string
	IncludeSubfolders bool
	AllowedExtensions []string
	CachePath         string
	ExtractMetadata   bool
	Extractor         media.Extractor
	Logger            *slog.Logger
}

// Scan walks the source roots and builds a catalog of candidate media
// files. When CachePath is set, a still-valid cached catalog is returned
// instead and a fresh scan overwrites the cache afterwards.
func Scan(ctx context.Context, opts Options) (*Catalog, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "catalog")

	if opts.CachePath != "" {
		if cached, ok := loadCache(opts.CachePath, opts.Sources, opts.IncludeSubfolders, logger); ok {
			logger.Info("using cached catalog", logging.Int("entries", len(cached.Entries)))
			return cached, nil
		}
	}

	allowed := allowedSet(opts.AllowedExtensions)

	catalog := &Catalog{
		Sources:     append([]string(nil), opts.Sources...),
		Timestamp:   time.Now().UTC(),
		SourcesHash: sourcesHash(opts.Sources, opts.IncludeSubfolders),
	}

	scannedRoots := 0
	for _, root := range opts.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			logger.Warn("skipping unreadable source root", logging.String("source", root))
			continue
		}
		scannedRoots++
		if err := scanRoot(ctx, root, opts, allowed, catalog, logger); err != nil {
			return nil, err
		}
	}

	if scannedRoots == 0 {
		return nil, services.Wrap(services.ErrIO, "scanning", "open sources", "no source directory could be read", nil)
	}

	logger.Info("scan complete",
		logging.Int("entries", len(catalog.Entries)),
		logging.Int("sources", scannedRoots))

	if opts.CachePath != "" {
		if err := saveCache(opts.CachePath, catalog); err != nil {
			logger.Warn("failed to write catalog cache", logging.Error(err))
		}
	}

	return catalog, nil
}

func scanRoot(ctx context.Context, root string, opts Options, allowed map[string]struct{}, catalog *Catalog, logger *slog.Logger) error {
	if !opts.IncludeSubfolders {
		entries, err := os.ReadDir(root)
		if err != nil {
			logger.Warn("skipping unreadable source root", logging.String("source", root), logging.Error(err))
			return nil
		}
		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			if entry.IsDir() {
				continue
			}
			addFile(ctx, filepath.Join(root, entry.Name()), opts, allowed, catalog, logger)
		}
		return nil
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Debug("skipping unreadable path", logging.String("path", path), logging.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		addFile(ctx, path, opts, allowed, catalog, logger)
		return nil
	})
}

func addFile(ctx context.Context, path string, opts Options, allowed map[string]struct{}, catalog *Catalog, logger *slog.Logger) {
	name := filepath.Base(path)
	if shouldIgnore(name) {
		return
	}

	ext := strings.ToLower(filepath.Ext(name))
	if len(allowed) > 0 {
		if _, ok := allowed[ext]; !ok {
			return
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		logger.Debug("skipping unreadable file", logging.String("path", path), logging.Error(err))
		return
	}

	entry := MediaEntry{
		Path:      path,
		BaseName:  strings.TrimSuffix(name, filepath.Ext(name)),
		Extension: ext,
		SizeBytes: info.Size(),
		MediaType: media.Classify(ext),
	}

	if opts.ExtractMetadata && opts.Extractor != nil {
		enrich(ctx, &entry, opts.Extractor, logger)
	}

	catalog.Entries = append(catalog.Entries, entry)
}

func enrich(ctx context.Context, entry *MediaEntry, extractor media.Extractor, logger *slog.Logger) {
	switch entry.MediaType {
	case media.TypeAudio:
		meta, err := extractor.ExtractAudio(ctx, entry.Path)
		if err != nil {
			logger.Debug("audio metadata extraction failed", logging.String("path", entry.Path), logging.Error(err))
			return
		}
		entry.AudioMeta = meta
	case media.TypeVideo:
		meta, err := extractor.ExtractVideo(ctx, entry.Path)
		if err != nil {
			logger.Debug("video metadata extraction failed", logging.String("path", entry.Path), logging.Error(err))
			return
		}
		entry.VideoMeta = meta
	}
}

func shouldIgnore(name string) bool {
	if _, ok := ignoredNames[name]; ok {
		return true
	}
	if strings.HasPrefix(name, ".") {
		return true
	}
	_, ok := ignoredExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

func allowedSet(extensions []string) map[string]struct{} {
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		set[normalized] = struct{}{}
	}
	return set
}
