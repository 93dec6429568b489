package envutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTypedLookups(t *testing.T) {
	t.Setenv("TB_TEST_INT", "42")
	t.Setenv("TB_TEST_BAD_INT", "x")
	t.Setenv("TB_TEST_FLOAT", "0.25")
	t.Setenv("TB_TEST_BOOL", "yes")
	t.Setenv("TB_TEST_STR", "  padded  ")

	if got := Int("TB_TEST_INT", 1, nil); got != 42 {
		t.Fatalf("Int: want=42 got=%d", got)
	}
	if got := Int("TB_TEST_BAD_INT", 7, nil); got != 7 {
		t.Fatalf("Int fallback: want=7 got=%d", got)
	}
	if got := Float("TB_TEST_FLOAT", 1, nil); got != 0.25 {
		t.Fatalf("Float: want=0.25 got=%v", got)
	}
	if got := Bool("TB_TEST_BOOL", false); !got {
		t.Fatalf("Bool: want=true got=false")
	}
	if got := Bool("TB_TEST_UNSET_BOOL", true); !got {
		t.Fatalf("Bool default: want=true got=false")
	}
	if got := String("TB_TEST_STR", "def", nil); got != "padded" {
		t.Fatalf("String: want=padded got=%q", got)
	}
	if got := String("TB_TEST_UNSET_STR", "def", nil); got != "def" {
		t.Fatalf("String default: want=def got=%q", got)
	}
}

func TestLoadDoesNotOverrideExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("TB_TEST_FROM_FILE=file\nTB_TEST_PRESET=file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("TB_TEST_PRESET", "process")
	t.Cleanup(func() { _ = os.Unsetenv("TB_TEST_FROM_FILE") })

	Load(nil, path, filepath.Join(dir, "missing.env"))

	if got := os.Getenv("TB_TEST_FROM_FILE"); got != "file" {
		t.Fatalf("from file: want=file got=%q", got)
	}
	if got := os.Getenv("TB_TEST_PRESET"); got != "process" {
		t.Fatalf("preset: want=process got=%q", got)
	}
}
