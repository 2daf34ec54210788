package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := DefaultConfig()
	if cfg.MaxHistory != def.MaxHistory {
		t.Fatalf("MaxHistory = %d, want %d", cfg.MaxHistory, def.MaxHistory)
	}
	if cfg.MaxIndexedRecords != 10 {
		t.Fatalf("MaxIndexedRecords = %d, want 10", cfg.MaxIndexedRecords)
	}
	if cfg.DraftStore != DraftStoreSQLite {
		t.Fatalf("DraftStore = %q, want %q", cfg.DraftStore, DraftStoreSQLite)
	}
	if cfg.AutosaveInterval() != 30*time.Second {
		t.Fatalf("AutosaveInterval() = %v, want 30s", cfg.AutosaveInterval())
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"max_history": 5, "min_slide_count": 3}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxHistory != 5 {
		t.Fatalf("MaxHistory = %d, want 5", cfg.MaxHistory)
	}
	if cfg.MinSlideCount != 3 {
		t.Fatalf("MinSlideCount = %d, want 3", cfg.MinSlideCount)
	}
	// Untouched values keep defaults
	if cfg.HistoryDebounceMs != 300 {
		t.Fatalf("HistoryDebounceMs = %d, want 300", cfg.HistoryDebounceMs)
	}
}

func TestLoad_NegativeDebounceDisablesCoalescing(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"history_debounce_ms": -1}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HistoryDebounce() != 0 {
		t.Fatalf("HistoryDebounce() = %v, want 0", cfg.HistoryDebounce())
	}

	if err := os.WriteFile(configPath, []byte(`{"history_debounce_ms": 0}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if cfg, err = Load(tmpDir); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HistoryDebounce() != 300*time.Millisecond {
		t.Fatalf("HistoryDebounce() = %v, want default 300ms", cfg.HistoryDebounce())
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{not json}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"disabled_tools": ["draft_clear", "draft_purge"]}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.DisabledTools) != 2 {
		t.Fatalf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
	if cfg.DisabledTools[0] != "draft_clear" {
		t.Errorf("DisabledTools[0] = %q, want %q", cfg.DisabledTools[0], "draft_clear")
	}
}

func TestLoad_DotEnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	env := "SLATE_DRAFT_STORE=memory\nSLATE_AUTOSAVE_INTERVAL_SECONDS=5\n"
	if err := os.WriteFile(filepath.Join(tmpDir, ".env"), []byte(env), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv(EnvDraftStore)
		os.Unsetenv(EnvAutosaveInterval)
	})

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DraftStore != DraftStoreMemory {
		t.Errorf("DraftStore = %q, want %q", cfg.DraftStore, DraftStoreMemory)
	}
	if cfg.AutosaveIntervalSeconds != 5 {
		t.Errorf("AutosaveIntervalSeconds = %d, want 5", cfg.AutosaveIntervalSeconds)
	}
}

func TestApplyEnv_IgnoresInvalidInterval(t *testing.T) {
	t.Setenv(EnvAutosaveInterval, "soon")
	t.Setenv(EnvPostgresDSN, "postgres://localhost/slate")

	cfg := ApplyEnv(DefaultConfig())
	if cfg.AutosaveIntervalSeconds != 30 {
		t.Errorf("AutosaveIntervalSeconds = %d, want 30", cfg.AutosaveIntervalSeconds)
	}
	if cfg.PostgresDSN != "postgres://localhost/slate" {
		t.Errorf("PostgresDSN = %q", cfg.PostgresDSN)
	}
}

func TestLoadWithRepo_BothPresent(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()

	globalConfig := `{"max_history": 80, "disabled_tools": ["draft_clear"]}`
	if err := os.WriteFile(filepath.Join(globalDir, "config.json"), []byte(globalConfig), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	slateDir := filepath.Join(repoRoot, ".slate")
	if err := os.MkdirAll(slateDir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	repoConfig := `{"max_history": 20, "disabled_tools": ["draft_purge"]}`
	if err := os.WriteFile(filepath.Join(slateDir, "config.json"), []byte(repoConfig), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadWithRepo(globalDir, repoRoot)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}

	if cfg.MaxHistory != 20 {
		t.Errorf("MaxHistory = %d, want 20 (repo override)", cfg.MaxHistory)
	}
	if len(cfg.DisabledTools) != 2 {
		t.Errorf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
}

func TestLoadWithRepo_NeitherPresent(t *testing.T) {
	cfg, err := LoadWithRepo(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}

	if cfg.MaxHistory != 50 {
		t.Errorf("MaxHistory = %d, want 50", cfg.MaxHistory)
	}
	if len(cfg.DisabledTools) != 0 {
		t.Errorf("DisabledTools = %v, want empty", cfg.DisabledTools)
	}
}

func TestMerge_ScalarOverride(t *testing.T) {
	base := &Config{MaxHistory: 50, DBMaxOpenConns: 5, DraftStore: DraftStoreSQLite}
	overlay := &Config{MaxHistory: 10, DraftStore: " "}

	result := Merge(base, overlay)

	if result.MaxHistory != 10 {
		t.Errorf("MaxHistory = %d, want 10 (overlay)", result.MaxHistory)
	}
	if result.DBMaxOpenConns != 5 {
		t.Errorf("DBMaxOpenConns = %d, want 5 (base, overlay is zero)", result.DBMaxOpenConns)
	}
	if result.DraftStore != DraftStoreSQLite {
		t.Errorf("DraftStore = %q, want %q (blank overlay ignored)", result.DraftStore, DraftStoreSQLite)
	}
}

func TestMerge_ArrayMergeDedup(t *testing.T) {
	base := &Config{DisabledTools: []string{"draft_clear", "draft_purge"}}
	overlay := &Config{DisabledTools: []string{"draft_purge", " draft_delete "}}

	result := Merge(base, overlay)

	want := []string{"draft_clear", "draft_purge", "draft_delete"}
	if len(result.DisabledTools) != len(want) {
		t.Fatalf("DisabledTools = %v, want %v", result.DisabledTools, want)
	}
	for i := range want {
		if result.DisabledTools[i] != want[i] {
			t.Errorf("DisabledTools[%d] = %q, want %q", i, result.DisabledTools[i], want[i])
		}
	}
}

func TestMerge_AllowedPaths(t *testing.T) {
	base := &Config{AllowedPaths: []string{"/srv/decks"}}
	overlay := &Config{AllowedPaths: []string{"/srv/decks", "/tmp/out"}, AllowUnsafePaths: true}

	result := Merge(base, overlay)

	if len(result.AllowedPaths) != 2 {
		t.Errorf("AllowedPaths = %v, want 2 entries", result.AllowedPaths)
	}
	if !result.AllowUnsafePaths {
		t.Error("AllowUnsafePaths = false, want true when overlay enables it")
	}
	if Merge(overlay, &Config{}).AllowUnsafePaths != true {
		t.Error("AllowUnsafePaths should survive an overlay that leaves it unset")
	}
}

func TestFindRepoConfig_InParentDir(t *testing.T) {
	tmpDir := t.TempDir()
	slateDir := filepath.Join(tmpDir, ".slate")
	if err := os.MkdirAll(slateDir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	configPath := filepath.Join(slateDir, "config.json")
	if err := os.WriteFile(configPath, []byte(`{}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	subdir := filepath.Join(tmpDir, "subdir", "deeper")
	if err := os.MkdirAll(subdir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	if found := FindRepoConfig(subdir); found != configPath {
		t.Errorf("FindRepoConfig() = %q, want %q", found, configPath)
	}
}

func TestFindRepoConfig_NotFound(t *testing.T) {
	if found := FindRepoConfig(t.TempDir()); found != "" {
		t.Errorf("FindRepoConfig() = %q, want empty string", found)
	}
}
