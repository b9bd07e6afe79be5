package config

const (
	defaultCacheDir       = "~/.cache/mediacopier"
	defaultLogDir         = "~/.local/share/mediacopier/logs"
	defaultReportDir      = "~/.local/share/mediacopier/reports"
	defaultJobDB          = "~/.local/share/mediacopier/jobs.db"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultFuzzyThreshold = 60
	defaultMaxCandidates  = 10
	defaultMode           = "single_folder"
	defaultStrategy       = "rename"
	defaultProgressMS     = 500
)

func defaultAudioExtensions() []string {
	return []string{".mp3", ".flac", ".wav", ".aac", ".ogg", ".wma", ".m4a", ".opus", ".aiff", ".alac"}
}

func defaultVideoExtensions() []string {
	return []string{".mp4", ".mkv", ".avi", ".mov", ".wmv", ".flv", ".webm", ".m4v", ".mpeg", ".mpg", ".3gp"}
}

func defaultPreferredCodecs() []string {
	return []string{"av1", "hevc", "h265", "h264", "vp9"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir:  defaultCacheDir,
			LogDir:    defaultLogDir,
			ReportDir: defaultReportDir,
			JobDB:     defaultJobDB,
		},
		Rules: Rules{
			AllowedAudioExtensions: defaultAudioExtensions(),
			AllowedVideoExtensions: defaultVideoExtensions(),
			FuzzyThreshold:         defaultFuzzyThreshold,
			MaxCandidates:          defaultMaxCandidates,
			OrganizationMode:       defaultMode,
			CollisionStrategy:      defaultStrategy,
			IncludeSubfolders:      true,
		},
		Matching: Matching{
			SongPenalties:   true,
			BonusWords:      true,
			ResolutionBonus: true,
			PreferredCodecs: defaultPreferredCodecs(),
		},
		Workflow: Workflow{
			ProgressIntervalMS: defaultProgressMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
