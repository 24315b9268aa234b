package discover

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDiscoverPythonFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	// Create Python files
	writeFile(t, dir, "main.py", "print('hello')")
	writeFile(t, dir, "lib/util.py", "def helper(): pass")
	// Non-Python file should be ignored
	writeFile(t, dir, "readme.txt", "hello")
	// Hidden file should be ignored
	writeFile(t, dir, ".hidden.py", "secret")

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %v", len(entries), paths)
	}

	// Should be sorted
	if entries[0].Path != filepath.Join("lib", "util.py") {
		t.Errorf("entry 0: got %q", entries[0].Path)
	}
	if entries[1].Path != "main.py" {
		t.Errorf("entry 1: got %q", entries[1].Path)
	}

	for _, e := range entries {
		if e.Language != "python" {
			t.Errorf("entry %q: language = %q, want python", e.Path, e.Language)
		}
	}
}

func TestDiscoverSkipDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "main.py", "pass")
	writeFile(t, dir, "node_modules/pkg.py", "pass")
	writeFile(t, dir, "__pycache__/cached.py", "pass")
	writeFile(t, dir, ".hidden/secret.py", "pass")

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Path != "main.py" {
		t.Errorf("expected main.py, got %q", entries[0].Path)
	}
}

func TestDiscoverSkipsTestFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "shop/cart.py", "pass")
	writeFile(t, dir, "shop/test_cart.py", "pass")
	writeFile(t, dir, "shop/cart_test.py", "pass")
	writeFile(t, dir, "tests/conftest.py", "pass")

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry without tests, got %d", len(entries))
	}

	entries, err = Files(dir, Options{IncludeTests: true})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries with tests, got %d", len(entries))
	}
}

func TestDiscoverMaxFileSize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "small.py", "pass")
	writeFile(t, dir, "big.py", strings.Repeat("x = 1\n", 100))

	entries, err := Files(dir, Options{MaxFileSize: 64})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "small.py" {
		t.Fatalf("expected only small.py, got %v", entries)
	}
	if entries[0].Size != 4 {
		t.Errorf("size = %d, want 4", entries[0].Size)
	}
}

func TestDiscoverExclude(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "app.py", "pass")
	writeFile(t, dir, "migrations/0001_initial.py", "pass")
	writeFile(t, dir, "pkg/migrations/0002.py", "pass")
	writeFile(t, dir, "pkg/models.py", "pass")

	entries, err := Files(dir, Options{Exclude: []string{"**/migrations/**", "migrations/**"}})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, e.Path)
	}
	want := []string{"app.py", filepath.Join("pkg", "models.py")}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := Files(dir, Options{Exclude: []string{"[unclosed"}}); err == nil {
		t.Error("expected error for a malformed pattern")
	}
}

func TestRead(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.py", "def a(): pass\n")

	files, err := Read(dir, []FileEntry{{Path: "a.py"}})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(files) != 1 || string(files[0].Source) != "def a(): pass\n" {
		t.Fatalf("unexpected files: %+v", files)
	}

	if _, err := Read(dir, []FileEntry{{Path: "missing.py"}}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDiscoverSymlinksSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "real.py", "pass")

	// Create symlink
	err := os.Symlink(filepath.Join(dir, "real.py"), filepath.Join(dir, "link.py"))
	if err != nil {
		t.Skip("symlinks not supported")
	}

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry (no symlink), got %d", len(entries))
	}
	if entries[0].Path != "real.py" {
		t.Errorf("expected real.py, got %q", entries[0].Path)
	}
}

func TestIsTestFile(t *testing.T) {
	t.Parallel()
	cases := []struct {
		path string
		want bool
	}{
		// Test directory components
		{"tests/test_scenes.py", true},
		{"tests/conftest.py", true},
		{"tests/__init__.py", true},
		{"Test/helpers.py", true},
		{"pkg/test/fixtures.py", true},
		// Filename patterns
		{"test_helpers.py", true},
		{"shop/cart_test.py", true},
		// Production files
		{"loom/models.py", false},
		{"loom/routers/scenes.py", false},
		{"conftest.py", false},
		{"testing_utils.py", false},
		{"contest.py", false},
		{"latest/cart.py", false},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			t.Parallel()
			got := IsTestFile(tc.path)
			if got != tc.want {
				t.Errorf("IsTestFile(%q) = %v, want %v", tc.path, got, tc.want)
			}
		})
	}
}

func TestIsTestFunction(t *testing.T) {
	t.Parallel()
	cases := map[string]bool{
		"test_add":    true,
		"add_test":    true,
		"test":        false,
		"testing":     false,
		"attest":      false,
		"calculate":   false,
		"_test_setup": false,
	}
	for name, want := range cases {
		if got := IsTestFunction(name); got != want {
			t.Errorf("IsTestFunction(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestIsTestClass(t *testing.T) {
	t.Parallel()
	cases := map[string]bool{
		"TestCart":  true,
		"TestX":     true,
		"Test":      false,
		"Testament": false,
		"Cart":      false,
		"MyTest":    false,
	}
	for name, want := range cases {
		if got := IsTestClass(name); got != want {
			t.Errorf("IsTestClass(%q) = %v, want %v", name, got, want)
		}
	}
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
