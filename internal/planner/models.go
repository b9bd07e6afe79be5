package planner

import (
	"fmt"
	"strings"
)

// Action is the resolved decision for one plan item.
type Action string

const (
	ActionCopy         Action = "copy"
	ActionSkipExists   Action = "skip_exists"
	ActionSkipSameSize Action = "skip_same_size"
	ActionSkipSameHash Action = "skip_same_hash"
	ActionRenameCopy   Action = "rename_copy"
)

// IsCopy reports whether the action writes a new destination file.
func (a Action) IsCopy() bool {
	return a == ActionCopy || a == ActionRenameCopy
}

// Strategy selects how an existing destination file is handled. No
// strategy ever overwrites an existing file.
type Strategy string

const (
	StrategySkip        Strategy = "skip"
	StrategyRename      Strategy = "rename"
	StrategyCompareSize Strategy = "compare_size"
	StrategyCompareHash Strategy = "compare_hash"
)

// ParseStrategy maps a config string onto a Strategy.
func ParseStrategy(value string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(value))) {
	case StrategySkip:
		return StrategySkip, nil
	case StrategyRename:
		return StrategyRename, nil
	case StrategyCompareSize:
		return StrategyCompareSize, nil
	case StrategyCompareHash:
		return StrategyCompareHash, nil
	default:
		return "", fmt.Errorf("unknown collision strategy %q", value)
	}
}

// Mode selects the destination layout.
type Mode string

const (
	ModeSingleFolder     Mode = "single_folder"
	ModeScatterByArtist  Mode = "scatter_by_artist"
	ModeScatterByGenre   Mode = "scatter_by_genre"
	ModeFolderPerRequest Mode = "folder_per_request"
	ModeKeepRelative     Mode = "keep_relative"
)

// ParseMode maps a config string onto a Mode.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeSingleFolder:
		return ModeSingleFolder, nil
	case ModeScatterByArtist:
		return ModeScatterByArtist, nil
	case ModeScatterByGenre:
		return ModeScatterByGenre, nil
	case ModeFolderPerRequest:
		return ModeFolderPerRequest, nil
	case ModeKeepRelative:
		return ModeKeepRelative, nil
	default:
		return "", fmt.Errorf("unknown organization mode %q", value)
	}
}

// PlanItem is one resolved copy or skip decision.
type PlanItem struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Action      Action `json:"action"`
	SizeBytes   int64  `json:"size_bytes"`
	Reason      string `json:"reason,omitempty"`
}

// Plan is an ordered list of resolved items plus aggregate counters.
// Building a plan never mutates the filesystem; only read-only probes
// (existence, size, hash) are performed for collision detection.
type Plan struct {
	Items       []PlanItem `json:"items"`
	TotalBytes  int64      `json:"total_bytes"`
	FilesToCopy int        `json:"files_to_copy"`
	FilesToSkip int        `json:"files_to_skip"`
}

// ExecError records one failed item during execution.
type ExecError struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// Report summarizes one execution pass over a plan.
type Report struct {
	Copied      int         `json:"copied"`
	Skipped     int         `json:"skipped"`
	Failed      int         `json:"failed"`
	BytesCopied int64       `json:"bytes_copied"`
	Errors      []ExecError `json:"errors"`
}
