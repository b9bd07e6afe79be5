package planner

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mediacopier/internal/catalog"
	"mediacopier/internal/fileutil"
	"mediacopier/internal/logging"
	"mediacopier/internal/matcher"
	"mediacopier/internal/request"
	"mediacopier/internal/services"
	"mediacopier/internal/textutil"
)

const (
	unknownArtist = "Unknown Artist"
	unknownGenre  = "Unknown Genre"
	moviesFolder  = "Movies"
)

// Options controls destination layout and collision handling.
type Options struct {
	DestRoot    string
	Mode        Mode
	Strategy    Strategy
	SourceRoots []string
	Logger      *slog.Logger
}

// BuildPlan resolves the best match of every request into a copy or skip
// decision. Destinations claimed earlier in the same plan are treated like
// existing files and renamed away from, so a plan never writes the same
// path twice. The filesystem is only read, never written.
func BuildPlan(matches []matcher.MatchResult, opts Options) (*Plan, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "planner")

	if opts.DestRoot == "" {
		return nil, services.Wrap(services.ErrValidation, "planner", "build_plan",
			"destination root is required", nil)
	}

	plan := &Plan{Items: []PlanItem{}}
	claimed := make(map[string]struct{})

	for _, match := range matches {
		best := match.BestMatch()
		if best == nil {
			logger.Debug("request has no match, nothing planned",
				logging.String("request", match.Request.Text))
			continue
		}
		entry := best.Entry

		dest := computeDestination(match.Request, entry, opts)

		var action Action
		var reason string
		if _, taken := claimed[dest]; taken {
			dest = GenerateUniquePath(dest, claimed)
			action = ActionRenameCopy
			reason = "renamed to avoid duplicate destination in plan"
		} else if pathExists(dest) {
			dest, action, reason = resolveCollision(entry, dest, opts.Strategy, claimed)
		} else {
			action = ActionCopy
		}
		claimed[dest] = struct{}{}

		item := PlanItem{
			Source:      entry.Path,
			Destination: dest,
			Action:      action,
			SizeBytes:   entry.SizeBytes,
			Reason:      reason,
		}
		plan.Items = append(plan.Items, item)

		if action.IsCopy() {
			plan.FilesToCopy++
			plan.TotalBytes += entry.SizeBytes
		} else {
			plan.FilesToSkip++
		}
	}

	if free, err := fileutil.FreeSpace(opts.DestRoot); err == nil && plan.TotalBytes > int64(free) {
		logger.Warn("planned bytes exceed free space at destination",
			logging.String("destination", opts.DestRoot),
			logging.Int64("planned_bytes", plan.TotalBytes),
			logging.Uint64("free_bytes", free))
	}

	logger.Info("plan built",
		logging.Int("items", len(plan.Items)),
		logging.Int("to_copy", plan.FilesToCopy),
		logging.Int("to_skip", plan.FilesToSkip),
		logging.Int64("total_bytes", plan.TotalBytes))
	return plan, nil
}

// computeDestination places the matched file under DestRoot according to
// the organization mode. Folder components derived from metadata or request
// text are sanitized; empty results fall back to an "Unknown" bucket.
func computeDestination(req request.Request, entry catalog.MediaEntry, opts Options) string {
	fileName := filepath.Base(entry.Path)

	switch opts.Mode {
	case ModeScatterByArtist:
		return filepath.Join(opts.DestRoot, artistFolder(entry), fileName)

	case ModeScatterByGenre:
		return filepath.Join(opts.DestRoot, genreFolder(entry), artistFolder(entry), fileName)

	case ModeFolderPerRequest:
		if req.Kind == request.KindMovie {
			return filepath.Join(opts.DestRoot, moviesFolder, movieFolder(req.Text), fileName)
		}
		folder := textutil.SanitizeFolderName(req.Text)
		if folder == "" {
			folder = "request"
		}
		return filepath.Join(opts.DestRoot, folder, fileName)

	case ModeKeepRelative:
		if rel, ok := relativeToRoot(entry.Path, opts.SourceRoots); ok {
			return filepath.Join(opts.DestRoot, rel)
		}
		return filepath.Join(opts.DestRoot, fileName)

	default: // ModeSingleFolder
		return filepath.Join(opts.DestRoot, fileName)
	}
}

func artistFolder(entry catalog.MediaEntry) string {
	name := ""
	if entry.AudioMeta != nil {
		name = textutil.SanitizeFolderName(entry.AudioMeta.Artist)
	}
	if name == "" {
		return unknownArtist
	}
	return name
}

func genreFolder(entry catalog.MediaEntry) string {
	name := ""
	if entry.AudioMeta != nil {
		name = textutil.SanitizeFolderName(entry.AudioMeta.Genre)
	}
	if name == "" {
		return unknownGenre
	}
	return name
}

// movieFolder builds "Title (YYYY)" from the request text. A trailing
// "(YYYY)" or "[YYYY]" is recognized in either bracket style and
// re-rendered with parentheses.
func movieFolder(text string) string {
	title, year, hasYear := textutil.ExtractYearSuffix(text)
	folder := textutil.SanitizeFolderName(title)
	if folder == "" {
		folder = "movie"
	}
	if hasYear {
		folder = fmt.Sprintf("%s (%s)", folder, year)
	}
	return folder
}

// relativeToRoot returns the path of file relative to the first source root
// containing it. Paths outside every root report false and the caller falls
// back to a flat destination.
func relativeToRoot(file string, roots []string) (string, bool) {
	for _, root := range roots {
		rel, err := filepath.Rel(root, file)
		if err != nil || rel == "." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
			continue
		}
		return rel, true
	}
	return "", false
}

// GenerateUniquePath appends "_N" before the extension, choosing the
// smallest N >= 1 whose path neither exists on disk nor is claimed by the
// plan under construction. The input is returned unchanged when already
// free, so the function is idempotent for a fixed filesystem state.
func GenerateUniquePath(path string, claimed map[string]struct{}) string {
	if !pathTaken(path, claimed) {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, n, ext)
		if !pathTaken(candidate, claimed) {
			return candidate
		}
	}
}

func pathTaken(path string, claimed map[string]struct{}) bool {
	if _, ok := claimed[path]; ok {
		return true
	}
	return pathExists(path)
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// resolveCollision decides what to do when the computed destination already
// exists. No branch ever plans an overwrite; when in doubt (unreadable
// existing file, hash failure) the item is renamed instead of skipped.
func resolveCollision(entry catalog.MediaEntry, dest string, strategy Strategy, claimed map[string]struct{}) (string, Action, string) {
	switch strategy {
	case StrategySkip:
		return dest, ActionSkipExists, "destination already exists"

	case StrategyCompareSize:
		info, err := os.Stat(dest)
		if err == nil && info.Size() == entry.SizeBytes {
			return dest, ActionSkipSameSize, "destination exists with identical size"
		}
		renamed := GenerateUniquePath(dest, claimed)
		return renamed, ActionRenameCopy, "destination exists with different size"

	case StrategyCompareHash:
		srcHash, srcErr := fileutil.HashFile(entry.Path)
		dstHash, dstErr := fileutil.HashFile(dest)
		if srcErr == nil && dstErr == nil && srcHash == dstHash {
			return dest, ActionSkipSameHash, "destination exists with identical content"
		}
		renamed := GenerateUniquePath(dest, claimed)
		return renamed, ActionRenameCopy, "destination exists with different content"

	default: // StrategyRename
		renamed := GenerateUniquePath(dest, claimed)
		return renamed, ActionRenameCopy, "renamed to avoid existing file"
	}
}
