package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rshetty/sharedexec/internal/config"
	"github.com/rshetty/sharedexec/internal/util"
)

func executeCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestProfileCommand(t *testing.T) {
	cmd := NewProfileCmd()

	if cmd.Use != "profile" {
		t.Errorf("expected use 'profile', got %q", cmd.Use)
	}

	expectedCommands := []string{
		"list",
		"show",
		"add",
		"remove",
	}

	for _, cmdName := range expectedCommands {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == cmdName {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected subcommand %q to be registered", cmdName)
		}
	}
}

func TestProfileLifecycle(t *testing.T) {
	viper.Reset()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(config.EnvConfigFile, configPath)

	// Add a profile, creating the config file.
	out, err := executeCommand(t, newAddCmd(), "batch", "-w", "16", "--timeout", "10m", "--description", "nightly batch")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if !strings.Contains(out, `Profile "batch" saved`) {
		t.Errorf("expected save confirmation, got %q", out)
	}

	// Add a second profile.
	if _, err := executeCommand(t, newAddCmd(), "ci", "--output-format", "json", "--no-color"); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	// List shows both with their pinned settings.
	out, err = executeCommand(t, newListCmd())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, want := range []string{"batch", "16", "10m0s", "nightly batch", "ci", "json", "Total profiles: 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected list to contain %q\noutput:\n%s", want, out)
		}
	}

	// Show renders one profile's settings.
	out, err = executeCommand(t, newShowCmd(), "batch")
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	for _, want := range []string{"SETTING", "Workers", "16", "Timeout", "10m0s"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected show to contain %q\noutput:\n%s", want, out)
		}
	}

	// Show an unknown profile.
	if _, err := executeCommand(t, newShowCmd(), "nope"); !errors.Is(err, util.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}

	// Remove one profile.
	out, err = executeCommand(t, newRemoveCmd(), "ci")
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if !strings.Contains(out, `Profile "ci" removed`) {
		t.Errorf("expected remove confirmation, got %q", out)
	}

	// List reflects the removal.
	out, err = executeCommand(t, newListCmd())
	if err != nil {
		t.Fatalf("list after remove failed: %v", err)
	}
	if !strings.Contains(out, "Total profiles: 1") {
		t.Errorf("expected one remaining profile\noutput:\n%s", out)
	}
	if strings.Contains(out, "ci") {
		t.Errorf("expected removed profile to be absent\noutput:\n%s", out)
	}

	// Removing it again fails.
	if _, err := executeCommand(t, newRemoveCmd(), "ci"); !errors.Is(err, util.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestProfileList_Empty(t *testing.T) {
	viper.Reset()
	t.Setenv(config.EnvConfigFile, filepath.Join(t.TempDir(), "config.yaml"))

	out, err := executeCommand(t, newListCmd())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if !strings.Contains(out, "No profiles configured") {
		t.Errorf("expected empty notice, got %q", out)
	}
}

func TestProfileList_JSON(t *testing.T) {
	viper.Reset()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(config.EnvConfigFile, configPath)

	mgr := config.NewManager(configPath)
	if _, err := mgr.Load(); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	mgr.SetProfile("batch", config.Profile{Workers: 16, Description: "nightly batch"})
	if err := mgr.Save(); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	out, err := executeCommand(t, newListCmd(), "-o", "json")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	var entries []map[string]interface{}
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("failed to parse JSON output: %v\noutput:\n%s", err, out)
	}

	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0]["name"] != "batch" {
		t.Errorf("name = %v, want batch", entries[0]["name"])
	}
	if entries[0]["workers"] != float64(16) {
		t.Errorf("workers = %v, want 16", entries[0]["workers"])
	}
	if entries[0]["description"] != "nightly batch" {
		t.Errorf("description = %v, want 'nightly batch'", entries[0]["description"])
	}
}

func TestProfileAdd_Validation(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		errContains string
	}{
		{
			name:        "unknown output format",
			args:        []string{"bad", "--output-format", "xml"},
			errContains: "unsupported output format",
		},
		{
			name:        "blank name",
			args:        []string{"   "},
			errContains: "profile name must not be empty",
		},
		{
			name:        "negative workers",
			args:        []string{"bad", "--workers", "-2"},
			errContains: "must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Setenv(config.EnvConfigFile, filepath.Join(t.TempDir(), "config.yaml"))

			_, err := executeCommand(t, newAddCmd(), tt.args...)
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.errContains)
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("expected error containing %q, got %q", tt.errContains, err.Error())
			}
		})
	}
}

func TestProfileAdd_WideFormatAccepted(t *testing.T) {
	viper.Reset()
	t.Setenv(config.EnvConfigFile, filepath.Join(t.TempDir(), "config.yaml"))

	if _, err := executeCommand(t, newAddCmd(), "verbose", "--output-format", "wide"); err != nil {
		t.Fatalf("expected wide to be accepted, got %v", err)
	}
}
