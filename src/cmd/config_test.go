package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/facetrace/cli/src/paths"
)

func TestConfigInit(t *testing.T) {
	home := setupTest(t)

	stdout, _, err := execute(t, "", "config", "init")
	if err != nil {
		t.Fatalf("config init error = %v", err)
	}

	path := filepath.Join(home, ".config", "facetrace", "cli.yml")
	if !strings.Contains(stdout, path) {
		t.Errorf("output = %q, want path %s", stdout, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if !strings.Contains(string(data), "min_score: 70") {
		t.Errorf("config content:\n%s", data)
	}

	if _, _, err := execute(t, "", "config", "init"); err == nil || !strings.Contains(err.Error(), "config already exists") {
		t.Errorf("second init error = %v", err)
	}
}

func TestConfigSetAndGet(t *testing.T) {
	setupTest(t)

	stdout, _, err := execute(t, "", "config", "set", "output.format", "table")
	if err != nil {
		t.Fatalf("config set error = %v", err)
	}
	if !strings.Contains(stdout, "Set output.format = table") {
		t.Errorf("set output = %q", stdout)
	}

	resetFlags()
	stdout, _, err = execute(t, "", "config", "get", "output.format")
	if err != nil {
		t.Fatalf("config get error = %v", err)
	}
	if strings.TrimSpace(stdout) != "table" {
		t.Errorf("get output = %q, want table", stdout)
	}
}

func TestConfigGetUnknownKey(t *testing.T) {
	setupTest(t)
	if _, _, err := execute(t, "", "config", "get", "no.such.key"); err == nil {
		t.Error("expected an error for an unknown key")
	}
}

func TestConfigShow(t *testing.T) {
	setupTest(t)
	stdout, _, err := execute(t, "", "config", "show")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	for _, want := range []string{"server:", "search:", "min_score: 70", "format: sherlock"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestConfigFlagRelativeName(t *testing.T) {
	setupTest(t)

	if _, _, err := execute(t, "", "--config", "work", "config", "init"); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(paths.ConfigDir(), "work.yml")); err != nil {
		t.Errorf("work.yml not created: %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	setupTest(t)
	saveSession(t, "key_test", "me@example.com")

	stdout, _, err := execute(t, "", "version", "--server", "https://api.example.com")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	for _, want := range []string{
		"v" + Version,
		"API: https://api.example.com",
		"Account: me@example.com",
		"Go: " + runtime.Version(),
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestDetectShell(t *testing.T) {
	tests := []struct {
		shell string
		want  string
	}{
		{"", "bash"},
		{"/bin/zsh", "zsh"},
		{"/usr/local/bin/fish", "fish"},
		{`C:\Program Files\PowerShell\7\pwsh.exe`, "pwsh"},
	}
	for _, tt := range tests {
		t.Setenv("SHELL", tt.shell)
		if got := detectShell(); got != tt.want {
			t.Errorf("detectShell() with SHELL=%q = %q, want %q", tt.shell, got, tt.want)
		}
	}
}

func TestPrintInit(t *testing.T) {
	bin := getBinaryName()
	tests := []struct {
		shell string
		want  string
	}{
		{"bash", "source <(" + bin + " shell completions bash)"},
		{"zsh", "source <(" + bin + " shell completions zsh)"},
		{"fish", bin + " shell completions fish | source"},
		{"pwsh", "Invoke-Expression (& " + bin + " shell completions powershell)"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := printInit(&buf, tt.shell); err != nil {
			t.Errorf("printInit(%s) error = %v", tt.shell, err)
			continue
		}
		if !strings.Contains(buf.String(), tt.want) {
			t.Errorf("printInit(%s) = %q", tt.shell, buf.String())
		}
	}
}

func TestPrintCompletions(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		var buf bytes.Buffer
		if err := printCompletions(&buf, shell); err != nil {
			t.Errorf("printCompletions(%s) error = %v", shell, err)
		}
		if buf.Len() == 0 {
			t.Errorf("printCompletions(%s) wrote nothing", shell)
		}
	}
}

func TestUnsupportedShell(t *testing.T) {
	var buf bytes.Buffer
	if err := printCompletions(&buf, "tcsh"); err == nil || !strings.Contains(err.Error(), "unsupported shell: tcsh") {
		t.Errorf("printCompletions error = %v", err)
	}
	if err := printInit(&buf, "tcsh"); err == nil {
		t.Error("printInit should reject tcsh")
	}
}

func TestCompleteFormatValues(t *testing.T) {
	setupTest(t)

	stdout, _, err := execute(t, "", "__complete", "--format", "")
	if err != nil {
		t.Fatalf("completion error = %v", err)
	}
	for _, want := range []string{"sherlock", "table", "json"} {
		if !strings.Contains(stdout, want+"\n") {
			t.Errorf("completions missing %q:\n%s", want, stdout)
		}
	}
}

func TestCompleteImageArgument(t *testing.T) {
	setupTest(t)

	stdout, _, err := execute(t, "", "__complete", "")
	if err != nil {
		t.Fatalf("completion error = %v", err)
	}
	for _, want := range []string{"jpg", "png", "webp"} {
		if !strings.Contains(stdout, want+"\n") {
			t.Errorf("completions missing %q:\n%s", want, stdout)
		}
	}

	resetFlags()
	stdout, _, err = execute(t, "", "__complete", "lo")
	if err != nil {
		t.Fatalf("completion error = %v", err)
	}
	if !strings.Contains(stdout, "login") || !strings.Contains(stdout, "logout") {
		t.Errorf("subcommands not completed:\n%s", stdout)
	}
	if strings.Contains(stdout, "jpg") {
		t.Errorf("image extensions offered for a subcommand prefix:\n%s", stdout)
	}
}
