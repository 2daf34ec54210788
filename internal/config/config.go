package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Draft store backends.
const (
	DraftStoreSQLite   = "sqlite"
	DraftStoreMemory   = "memory"
	DraftStorePostgres = "postgres"
)

// Environment variables that override file configuration.
const (
	EnvDraftStore       = "SLATE_DRAFT_STORE"
	EnvPostgresDSN      = "SLATE_POSTGRES_DSN"
	EnvAutosaveInterval = "SLATE_AUTOSAVE_INTERVAL_SECONDS"
)

// Config holds application configuration.
type Config struct {
	// MaxHistory bounds the undo and redo stacks (oldest entries evicted first).
	MaxHistory int `json:"max_history"`

	// HistoryDebounceMs coalesces bursts of canvas edits into one history entry.
	// A negative value records every edit immediately. 0 in a config file
	// keeps the inherited value, like every other numeric field.
	HistoryDebounceMs int `json:"history_debounce_ms"`

	// AutosaveIntervalSeconds is the period of the auto-save timer.
	AutosaveIntervalSeconds int `json:"autosave_interval_seconds"`

	// MaxIndexedRecords bounds the indices recognised in element IDs such as
	// pillar_<i> or cell_<r>_<c>. Higher indices are treated as custom elements.
	MaxIndexedRecords int `json:"max_indexed_records"`

	// MinSlideCount is the slide count below which the compliance check warns.
	MinSlideCount int `json:"min_slide_count"`

	// DraftStore selects the draft backend: "sqlite" (default), "memory" or "postgres".
	DraftStore string `json:"draft_store,omitempty"`

	// PostgresDSN is the connection string used when DraftStore is "postgres".
	PostgresDSN string `json:"postgres_dsn,omitempty"`

	// AllowedPaths is an allowlist of directories for draft backup and outline export.
	// Paths outside ~/.slate/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for backup and export.
	// Symlink and extension checks still apply.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is locked" errors).
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of tool type names to disable entirely.
	// Known types: "outline", "slide", "draft", "geometry".
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxHistory:              50,
		HistoryDebounceMs:       300,
		AutosaveIntervalSeconds: 30,
		MaxIndexedRecords:       10,
		MinSlideCount:           10,
		DraftStore:              DraftStoreSQLite,
	}
}

// AutosaveInterval returns the auto-save period as a duration.
func (c *Config) AutosaveInterval() time.Duration {
	return time.Duration(c.AutosaveIntervalSeconds) * time.Second
}

// HistoryDebounce returns the history coalescing window as a duration;
// 0 when debouncing is off.
func (c *Config) HistoryDebounce() time.Duration {
	if c.HistoryDebounceMs <= 0 {
		return 0
	}
	return time.Duration(c.HistoryDebounceMs) * time.Millisecond
}

// Load loads configuration from baseDir/config.json, then applies
// environment overrides (baseDir/.env is read first if present).
// Returns default config if neither exists.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.slate.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	if err := loadDotEnv(baseDir); err != nil {
		return nil, err
	}
	return ApplyEnv(cfg), nil
}

// LoadWithRepo loads configuration from both global (~/.slate) and repo (.slate) directories.
// Repo config is found by walking upward from startDir to find the nearest .slate/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Environment overrides apply last.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	if err := loadDotEnv(globalDir); err != nil {
		return nil, err
	}

	return ApplyEnv(Merge(Merge(DefaultConfig(), global), repo)), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .slate/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".slate", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ApplyEnv overlays SLATE_* environment variables onto cfg.
// Invalid numeric values are ignored.
func ApplyEnv(cfg *Config) *Config {
	if v := strings.TrimSpace(os.Getenv(EnvDraftStore)); v != "" {
		cfg.DraftStore = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvPostgresDSN)); v != "" {
		cfg.PostgresDSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAutosaveInterval)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AutosaveIntervalSeconds = n
		}
	}
	return cfg
}

// loadDotEnv loads baseDir/.env into the process environment.
// Variables already set in the environment are not overwritten.
func loadDotEnv(baseDir string) error {
	path := filepath.Join(baseDir, ".env")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		MaxHistory:              pickInt(overlay.MaxHistory, base.MaxHistory),
		HistoryDebounceMs:       pickInt(overlay.HistoryDebounceMs, base.HistoryDebounceMs),
		AutosaveIntervalSeconds: pickInt(overlay.AutosaveIntervalSeconds, base.AutosaveIntervalSeconds),
		MaxIndexedRecords:       pickInt(overlay.MaxIndexedRecords, base.MaxIndexedRecords),
		MinSlideCount:           pickInt(overlay.MinSlideCount, base.MinSlideCount),
		DraftStore:              pickString(overlay.DraftStore, base.DraftStore),
		PostgresDSN:             pickString(overlay.PostgresDSN, base.PostgresDSN),
		DBMaxOpenConns:          pickInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns:          pickInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
	}

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

// pickInt returns overlay if non-zero, else base.
func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

func pickString(overlay, base string) string {
	if s := strings.TrimSpace(overlay); s != "" {
		return s
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
