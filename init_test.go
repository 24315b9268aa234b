package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestApplySection(t *testing.T) {
	t.Parallel()
	section := sentinelStart + "\nnew\n" + sentinelEnd
	block := func(body string) string { return sentinelStart + "\n" + body + "\n" + sentinelEnd }

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"empty file", "", section + "\n"},
		{"append after text", "# Shop\n\nNotes.\n", "# Shop\n\nNotes.\n\n" + section + "\n"},
		{"append without trailing newline", "# Shop", "# Shop\n\n" + section + "\n"},
		{"append trims blank tail", "# Shop\n\n\n\n", "# Shop\n\n" + section + "\n"},
		{
			"replace block in place",
			"# Shop\n\n" + block("old") + "\n\n## Billing\n",
			"# Shop\n\n" + section + "\n\n## Billing\n",
		},
		{
			"unterminated block runs to end",
			"# Shop\n\n" + sentinelStart + "\nhalf written",
			"# Shop\n\n" + section + "\n",
		},
		{
			"duplicate blocks collapse",
			"# Shop\n\n" + block("one") + "\n\n## Billing\n\n" + block("two") + "\n",
			"# Shop\n\n" + section + "\n\n## Billing\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := applySection(tt.content, section)
			if got != tt.want {
				t.Errorf("applySection:\ngot  %q\nwant %q", got, tt.want)
			}
			if again := applySection(got, section); again != got {
				t.Errorf("second apply changed content:\n%q", again)
			}
		})
	}
}

// TestUsageExamplesAreValidCommands runs every example line of the section
// through the real command tree, so a renamed flag or command breaks here.
func TestUsageExamplesAreValidCommands(t *testing.T) {
	t.Parallel()
	root := (&cli{stdout: io.Discard, stderr: io.Discard}).rootCmd()

	for _, ex := range usageExamples {
		args := strings.Fields(ex.args)
		cmd, rest, err := root.Find(args)
		if err != nil {
			t.Errorf("%q: %v", ex.args, err)
			continue
		}
		if cmd == root {
			t.Errorf("%q: no subcommand matched", ex.args)
			continue
		}
		if err := cmd.ParseFlags(rest); err != nil {
			t.Errorf("%q: %v", ex.args, err)
			continue
		}
		if err := cmd.ValidateArgs(cmd.Flags().Args()); err != nil {
			t.Errorf("%q: %v", ex.args, err)
		}
	}
}

func TestGenerateSection(t *testing.T) {
	t.Parallel()
	section := generateSection()

	if !strings.HasPrefix(section, sentinelStart+"\n") || !strings.HasSuffix(section, "\n"+sentinelEnd) {
		t.Fatalf("section not wrapped in sentinels:\n%s", section)
	}
	for _, ex := range usageExamples {
		line := "hintgraph " + ex.args
		if !strings.Contains(section, line) {
			t.Errorf("section missing %q", line)
		}
	}
	for _, want := range []string{
		"# leaves first",
		"# functions nothing calls",
		"# diff of annotation removal",
		"`hintgraph version`",
		"`hintgraph --help`",
		"`.hintgraph-cache`",
		"candidates, not verdicts",
		"before `--write`",
	} {
		if !strings.Contains(section, want) {
			t.Errorf("section missing %q", want)
		}
	}
	if strings.Count(section, sentinelStart) != 1 || strings.Count(section, sentinelEnd) != 1 {
		t.Error("sentinels must appear exactly once")
	}
}

func TestInitWritesSection(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "CLAUDE.md")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"init", path}, &stdout, &stderr); err != nil {
		t.Fatalf("run init: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("file not created: %v", err)
	}
	if got, want := string(data), generateSection()+"\n"; got != want {
		t.Errorf("created file:\ngot  %q\nwant %q", got, want)
	}
	if !strings.Contains(stderr.String(), "wrote hintgraph section to "+path) {
		t.Errorf("stderr = %q", stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should be empty, got %q", stdout.String())
	}
}

func TestInitReplacesStaleSection(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "CLAUDE.md")
	existing := "# Shop\n\n" + sentinelStart + "\nold usage notes\n" + sentinelEnd + "\n\n## Billing\n"
	if err := os.WriteFile(path, []byte(existing), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := run([]string{"init", path}, &buf, &buf); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first, _ := os.ReadFile(path)
	want := "# Shop\n\n" + generateSection() + "\n\n## Billing\n"
	if string(first) != want {
		t.Errorf("updated file:\ngot  %q\nwant %q", first, want)
	}

	if err := run([]string{"init", path}, &buf, &buf); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second, _ := os.ReadFile(path)
	if string(second) != string(first) {
		t.Errorf("init is not idempotent:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestInitDryRun(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "CLAUDE.md")
	existing := "# Shop\n"
	if err := os.WriteFile(path, []byte(existing), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if err := run([]string{"init", "--dry-run", path}, &stdout, &stderr); err != nil {
		t.Fatalf("run init: %v", err)
	}
	if got, want := stdout.String(), "# Shop\n\n"+generateSection()+"\n"; got != want {
		t.Errorf("dry-run output:\ngot  %q\nwant %q", got, want)
	}
	data, _ := os.ReadFile(path)
	if string(data) != existing {
		t.Error("--dry-run must not modify the file")
	}

	stdout.Reset()
	if err := run([]string{"init", "--dry-run"}, &stdout, &stderr); err != nil {
		t.Fatalf("run init without path: %v", err)
	}
	if got, want := stdout.String(), generateSection()+"\n"; got != want {
		t.Errorf("dry-run without path:\ngot  %q\nwant %q", got, want)
	}
}

func TestInitUnreadableTarget(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	var buf bytes.Buffer
	err := run([]string{"init", dir}, &buf, &buf)
	if err == nil {
		t.Fatal("expected an error when the target is a directory")
	}
	if !strings.Contains(err.Error(), "reading "+dir) {
		t.Errorf("error = %v", err)
	}
}
