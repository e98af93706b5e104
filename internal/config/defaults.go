package config

const (
	defaultConfigPath        = "~/.config/lyricsync/config.toml"
	projectConfigName        = "lyricsync.toml"
	defaultLogDir            = "~/.local/share/lyricsync/logs"
	defaultHistoryDB         = "~/.local/share/lyricsync/history.db"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogFileName       = "lyricsync.log"
	defaultHistoryListLimit  = 20
	defaultAlignmentCoverage = 0.5
	outputDirEnv             = "LYRICSYNC_OUTPUT_DIR"
)

// FormatLRC and FormatSRT are the supported output format names.
const (
	FormatLRC = "lrc"
	FormatSRT = "srt"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
		},
		Output: Output{
			Formats: []string{FormatLRC, FormatSRT},
		},
		Alignment: Alignment{
			MinCoverage: defaultAlignmentCoverage,
		},
		History: History{
			Enabled:   true,
			ListLimit: defaultHistoryListLimit,
		},
		Logging: Logging{
			Format:   defaultLogFormat,
			Level:    defaultLogLevel,
			FileName: defaultLogFileName,
		},
	}
}
