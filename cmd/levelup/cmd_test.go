// ABOUTME: Tests for CLI helper functions and command execution.
// ABOUTME: Tests parseTime, truncate, padRight, and commands against a temp data dir.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/harperreed/levelup/internal/config"
	"github.com/harperreed/levelup/internal/coordinator"
	"github.com/harperreed/levelup/internal/models"
	"github.com/harperreed/levelup/internal/storage"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "date and time with space", input: "2025-01-31 08:30"},
		{name: "date and time with T", input: "2025-01-31T08:30"},
		{name: "date only", input: "2025-01-31"},
		{name: "RFC3339", input: "2025-01-31T08:30:00Z"},
		{name: "RFC3339 with offset", input: "2025-01-31T08:30:00+05:00"},
		{name: "invalid format", input: "31-01-2025", wantErr: true},
		{name: "invalid random string", input: "not a date", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseTime(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Errorf("parseTime(%q) expected error, got nil", tt.input)
				}
				return
			}

			if err != nil {
				t.Errorf("parseTime(%q) unexpected error: %v", tt.input, err)
				return
			}

			if result.IsZero() {
				t.Errorf("parseTime(%q) returned zero time", tt.input)
			}
		})
	}
}

func TestParseTimeValues(t *testing.T) {
	result, err := parseTime("2025-06-15")
	if err != nil {
		t.Fatalf("parseTime failed: %v", err)
	}

	if result.Year() != 2025 || result.Month() != time.June || result.Day() != 15 {
		t.Errorf("parseTime returned wrong date: got %v", result)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short string no truncation", "hello", 10, "hello"},
		{"exact length", "hello", 5, "hello"},
		{"needs truncation", "hello world this is a long string", 10, "hello w..."},
		{"truncate at boundary", "abcdefghij", 6, "abc..."},
		{"empty string", "", 10, ""},
		{"very short maxLen", "hello", 3, "..."},
		{"multibyte kept whole", "héllo wörld", 8, "héllo..."},
		{"multibyte fits", "ñandú", 5, "ñandú"},
		{"emoji", "💪💪💪💪💪💪", 5, "💪💪..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.input, tt.maxLen)
			}
		})
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		input  string
		length int
		want   string
	}{
		{"abc", 6, "abc   "},
		{"abcdef", 6, "abcdef"},
		{"abcdefgh", 6, "abcdefgh"},
		{"", 3, "   "},
		{"été", 5, "été  "},
	}

	for _, tt := range tests {
		got := padRight(tt.input, tt.length)
		if got != tt.want {
			t.Errorf("padRight(%q, %d) = %q, want %q", tt.input, tt.length, got, tt.want)
		}
	}
}

func TestFormatWait(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{-time.Minute, "0m"},
		{0, "0m"},
		{45 * time.Minute, "45m"},
		{14 * time.Hour, "14h 0m"},
		{3*time.Hour + 12*time.Minute + 20*time.Second, "3h 12m"},
	}
	for _, tt := range tests {
		if got := formatWait(tt.in); got != tt.want {
			t.Errorf("formatWait(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRootCmdSubcommands(t *testing.T) {
	want := []string{
		"signup", "profile", "status", "bio", "workout", "quest", "lootbox",
		"reward", "water", "macros", "habit", "vitamin", "vault", "friend",
		"chat", "leaderboard", "weather", "export", "import", "wipe", "mcp",
		"serve", "sync", "install-skill",
	}
	have := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("Expected %q command to be registered", name)
		}
	}
}

func TestNeedsRuntime(t *testing.T) {
	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"signup"}, false},
		{[]string{"install-skill"}, false},
		{[]string{"sync", "link"}, false},
		{[]string{"sync", "reset"}, false},
		{[]string{"sync", "status"}, true},
		{[]string{"workout", "add"}, true},
		{[]string{"wipe"}, true},
	}
	for _, tt := range tests {
		cmd, _, err := rootCmd.Find(tt.args)
		if err != nil {
			t.Fatalf("Find(%v): %v", tt.args, err)
		}
		if got := needsRuntime(cmd); got != tt.want {
			t.Errorf("needsRuntime(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

func TestExportCmdValidArgs(t *testing.T) {
	want := map[string]bool{"json": true, "yaml": true}
	if len(exportCmd.ValidArgs) != len(want) {
		t.Fatalf("Expected %d valid args, got %v", len(want), exportCmd.ValidArgs)
	}
	for _, a := range exportCmd.ValidArgs {
		if !want[a] {
			t.Errorf("Unexpected valid arg %q", a)
		}
	}
}

// setupTestCLI points config and data at a temp dir, selects the local
// badger cache and signs in as "ada".
func setupTestCLI(t *testing.T) string {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "levelup-cli-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	t.Setenv("XDG_DATA_HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	t.Setenv("LEVELUP_CACHE_BACKEND", "badger")
	t.Setenv("LEVELUP_USER_ID", "ada")
	t.Setenv("LEVELUP_DISPLAY_NAME", "Ada")

	t.Cleanup(func() {
		_ = closeRuntime()
		os.RemoveAll(tmpDir)
	})
	return tmpDir
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return Execute()
}

// storedProfile reads the profile straight from the database.
func storedProfile(t *testing.T, dir string) *models.Profile {
	t.Helper()
	db, err := storage.Open(filepath.Join(dir, "levelup", "levelup.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	p, err := db.GetProfile(context.Background(), "ada")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	return p
}

func TestSignupCmd(t *testing.T) {
	setupTestCLI(t)

	if err := run(t, "signup", "grace", "Grace Hopper"); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	data, err := os.ReadFile(config.GetConfigPath())
	if err != nil {
		t.Fatalf("Expected config file: %v", err)
	}
	var saved config.Config
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("Invalid config JSON: %v", err)
	}
	if saved.UserID != "grace" || saved.DisplayName != "Grace Hopper" {
		t.Errorf("Unexpected saved identity: %+v", saved)
	}
}

func TestProfileCmdCreatesProfile(t *testing.T) {
	dir := setupTestCLI(t)

	if err := run(t, "profile"); err != nil {
		t.Fatalf("profile failed: %v", err)
	}

	p := storedProfile(t, dir)
	if p.Level != 1 || p.XP != 0 {
		t.Errorf("Expected fresh level 1 profile, got level %d xp %d", p.Level, p.XP)
	}
	if p.DisplayName != "Ada" {
		t.Errorf("Expected display name Ada, got %q", p.DisplayName)
	}
}

func TestCommandsRequireSignIn(t *testing.T) {
	setupTestCLI(t)
	t.Setenv("LEVELUP_USER_ID", "")

	err := run(t, "workout", "add", "10")
	if !errors.Is(err, coordinator.ErrNotAuthenticated) {
		t.Errorf("Expected ErrNotAuthenticated, got %v", err)
	}
}

func TestWorkoutAddCmdWithDB(t *testing.T) {
	dir := setupTestCLI(t)

	if err := run(t, "workout", "add", "50"); err != nil {
		t.Fatalf("workout add failed: %v", err)
	}

	p := storedProfile(t, dir)
	if p.XP != 100 {
		t.Errorf("Expected 100 XP, got %d", p.XP)
	}
	if p.Level != 2 {
		t.Errorf("Expected level 2, got %d", p.Level)
	}
	if p.TotalMinutes != 50 {
		t.Errorf("Expected 50 total minutes, got %d", p.TotalMinutes)
	}

	if err := run(t, "workout", "log"); err != nil {
		t.Errorf("workout log failed: %v", err)
	}
}

func TestWorkoutAddCmdInvalidMinutes(t *testing.T) {
	setupTestCLI(t)

	if err := run(t, "workout", "add", "lots"); err == nil {
		t.Error("Expected error for non-numeric minutes")
	}
	if err := run(t, "workout", "add", "0"); err == nil {
		t.Error("Expected error for zero minutes")
	}
}

func TestQuestClaimCmdOncePerDay(t *testing.T) {
	dir := setupTestCLI(t)

	if err := run(t, "quest", "claim", "pushups"); err != nil {
		t.Fatalf("quest claim failed: %v", err)
	}
	// A second claim on the same day is reported, not an error.
	if err := run(t, "quest", "claim", "plank"); err != nil {
		t.Fatalf("second claim returned error: %v", err)
	}

	p := storedProfile(t, dir)
	if p.XP != 20 {
		t.Errorf("Expected 20 XP from one quest, got %d", p.XP)
	}
	if p.Strength != 1 || p.Defense != 0 {
		t.Errorf("Expected only strength to grow, got str %d def %d", p.Strength, p.Defense)
	}

	if err := run(t, "quest", "list"); err != nil {
		t.Errorf("quest list failed: %v", err)
	}
}

func TestQuestClaimCmdUnknown(t *testing.T) {
	setupTestCLI(t)

	err := run(t, "quest", "claim", "juggling")
	if !errors.Is(err, coordinator.ErrUnknownQuest) {
		t.Errorf("Expected ErrUnknownQuest, got %v", err)
	}
}

func TestLootboxOpenCmd(t *testing.T) {
	setupTestCLI(t)

	// No boxes yet: a message, not an error.
	if err := run(t, "lootbox", "open"); err != nil {
		t.Fatalf("lootbox open with no boxes failed: %v", err)
	}

	if err := run(t, "workout", "add", "50"); err != nil {
		t.Fatalf("workout add failed: %v", err)
	}
	if err := run(t, "lootbox", "open"); err != nil {
		t.Fatalf("lootbox open failed: %v", err)
	}
	if err := run(t, "lootbox"); err != nil {
		t.Errorf("lootbox failed: %v", err)
	}
}

func TestRewardCmds(t *testing.T) {
	setupTestCLI(t)

	if err := run(t, "reward", "add", "3", "New shoes"); err != nil {
		t.Fatalf("reward add failed: %v", err)
	}
	if err := run(t, "reward", "add", "zero", "Bad"); err == nil {
		t.Error("Expected error for invalid level")
	}
	if err := run(t, "reward", "list"); err != nil {
		t.Errorf("reward list failed: %v", err)
	}
	if err := run(t, "reward", "rm", "does-not-exist"); err == nil {
		t.Error("Expected error removing unknown reward")
	}
}

func TestWaterAndTrackingCmds(t *testing.T) {
	setupTestCLI(t)

	for _, args := range [][]string{
		{"water", "add", "250"},
		{"water"},
		{"macros", "set", "--calories", "2000", "--protein", "150"},
		{"macros"},
		{"habit", "log", "stretch"},
		{"habit", "list"},
		{"vitamin", "log", "D3"},
		{"vitamin", "list"},
	} {
		if err := run(t, args...); err != nil {
			t.Errorf("%v failed: %v", args, err)
		}
	}

	if err := run(t, "water", "add", "-5"); err == nil {
		t.Error("Expected error for negative water")
	}
}

func TestExportToFile(t *testing.T) {
	dir := setupTestCLI(t)
	exportOutput = ""
	defer func() { exportOutput = "" }()

	if err := run(t, "workout", "add", "30"); err != nil {
		t.Fatalf("workout add failed: %v", err)
	}

	out := filepath.Join(dir, "backup.json")
	if err := run(t, "export", "json", "-o", out); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("Expected export file: %v", err)
	}
	var exported coordinator.ExportData
	if err := json.Unmarshal(data, &exported); err != nil {
		t.Fatalf("Invalid export JSON: %v", err)
	}
	if exported.Profile == nil || exported.Profile.XP != 60 {
		t.Errorf("Expected exported XP 60, got %+v", exported.Profile)
	}
	if len(exported.WorkoutLog) != 1 || exported.WorkoutLog[0].Minutes != 30 {
		t.Errorf("Expected one 30 minute log entry, got %+v", exported.WorkoutLog)
	}
}

func TestExportInvalidFormat(t *testing.T) {
	setupTestCLI(t)
	exportOutput = ""

	if err := run(t, "export", "markdown"); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestImportCmd(t *testing.T) {
	dir := setupTestCLI(t)

	backup := coordinator.ExportData{
		Version: "1.0",
		Profile: &models.Profile{ID: "ada", DisplayName: "Ada", XP: 250, Level: 9},
	}
	data, _ := json.Marshal(backup)
	path := filepath.Join(dir, "backup.json")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("Failed to write backup: %v", err)
	}

	if err := run(t, "import", path); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	p := storedProfile(t, dir)
	if p.XP != 250 || p.Level != 3 {
		t.Errorf("Expected xp 250 level 3 after import, got xp %d level %d", p.XP, p.Level)
	}
}

func TestImportCmdFileNotFound(t *testing.T) {
	setupTestCLI(t)

	if err := run(t, "import", "/nonexistent/backup.json"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestWipeCmd(t *testing.T) {
	dir := setupTestCLI(t)
	defer func() { wipeYes = false }()

	if err := run(t, "workout", "add", "60"); err != nil {
		t.Fatalf("workout add failed: %v", err)
	}
	if err := run(t, "wipe", "--yes"); err != nil {
		t.Fatalf("wipe failed: %v", err)
	}

	p := storedProfile(t, dir)
	if p.XP != 0 || p.Level != 1 || p.TotalMinutes != 0 {
		t.Errorf("Expected reset profile, got xp %d level %d minutes %d", p.XP, p.Level, p.TotalMinutes)
	}
}

func TestChatCmds(t *testing.T) {
	setupTestCLI(t)
	defer func() { chatTo = "" }()

	if err := run(t, "chat", "send", "hello"); err != nil {
		t.Fatalf("chat send failed: %v", err)
	}
	if err := run(t, "chat", "send", "   "); err == nil {
		t.Error("Expected error for blank message")
	}
	if err := run(t, "chat", "send", "hi bob", "--to", "bob"); err != nil {
		t.Fatalf("direct send failed: %v", err)
	}
	if err := run(t, "chat", "list", "--to", "bob"); err != nil {
		t.Errorf("chat list failed: %v", err)
	}
	chatTo = ""
	if err := run(t, "leaderboard"); err != nil {
		t.Errorf("leaderboard failed: %v", err)
	}
}

func TestInstallSkillFunction(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	skillSkipConfirm = true
	defer func() { skillSkipConfirm = false }()

	if err := installSkill(); err != nil {
		t.Errorf("installSkill failed: %v", err)
	}

	skillPath := filepath.Join(tmpDir, ".claude", "skills", "levelup", "SKILL.md")
	if _, err := os.Stat(skillPath); os.IsNotExist(err) {
		t.Error("Expected skill file to be created")
	}
}

func TestInstallSkillOverwrite(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	skillDir := filepath.Join(tmpDir, ".claude", "skills", "levelup")
	os.MkdirAll(skillDir, 0755)
	skillPath := filepath.Join(skillDir, "SKILL.md")
	os.WriteFile(skillPath, []byte("old content"), 0644)

	skillSkipConfirm = true
	defer func() { skillSkipConfirm = false }()

	if err := installSkill(); err != nil {
		t.Errorf("installSkill overwrite failed: %v", err)
	}

	content, _ := os.ReadFile(skillPath)
	if string(content) == "old content" {
		t.Error("Expected skill file to be overwritten")
	}
}
