package discover

import (
	"path/filepath"
	"strings"
	"unicode"
)

// IsTestFile reports whether path follows pytest's discovery conventions:
// test_*.py, *_test.py, or any path component named test or tests.
func IsTestFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "test_") || strings.HasSuffix(base, "_test.py") {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		switch strings.ToLower(part) {
		case "test", "tests":
			return true
		}
	}
	return false
}

// IsTestFunction reports whether a function name marks a test.
func IsTestFunction(name string) bool {
	return strings.HasPrefix(name, "test_") || strings.HasSuffix(name, "_test")
}

// IsTestClass reports whether a class name marks a test case: "Test"
// followed by an uppercase letter.
func IsTestClass(name string) bool {
	rest, ok := strings.CutPrefix(name, "Test")
	if !ok || rest == "" {
		return false
	}
	return unicode.IsUpper([]rune(rest)[0])
}
