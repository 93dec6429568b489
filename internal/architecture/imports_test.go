package architecture_test

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"
)

// layerRules lists, per layer under internal/, the sibling trees it must not import.
var layerRules = []struct {
	layer    string
	prefix   string
	disallow []string
}{
	{layer: "platform", prefix: "internal/platform/", disallow: []string{"data", "modules", "services", "http", "app"}},
	{layer: "normalization", prefix: "internal/normalization/", disallow: []string{"domain", "data", "modules", "services", "http", "app"}},
	{layer: "domain", prefix: "internal/domain/", disallow: []string{"data", "modules", "services", "http", "app"}},
	{layer: "modules", prefix: "internal/modules/", disallow: []string{"data", "services", "http", "app"}},
	{layer: "data", prefix: "internal/data/", disallow: []string{"modules", "services", "http", "app"}},
	{layer: "services", prefix: "internal/services/", disallow: []string{"http", "app"}},
	{layer: "http", prefix: "internal/http/", disallow: []string{"app", "data/aggregates"}},
}

func TestImportBoundaries(t *testing.T) {
	root, modulePath := moduleRoot(t)
	internalDir := filepath.Join(root, "internal")
	fset := token.NewFileSet()

	var violations []string
	walkErr := filepath.WalkDir(internalDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		disallowed := disallowedFor(modulePath, rel)
		if len(disallowed) == 0 {
			return nil
		}
		// Test fixtures may reach across layers to build real stacks.
		if strings.HasSuffix(rel, "_test.go") {
			return nil
		}

		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, spec := range f.Imports {
			imp, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				continue
			}
			for _, bad := range disallowed {
				if imp == strings.TrimSuffix(bad, "/") || strings.HasPrefix(imp, bad) {
					violations = append(violations, fmt.Sprintf("- %s imports %q", rel, imp))
					break
				}
			}
		}
		return nil
	})
	if walkErr != nil {
		t.Fatalf("walk internal/: %v", walkErr)
	}
	if len(violations) > 0 {
		sort.Strings(violations)
		t.Fatalf("import boundary violations:\n%s", strings.Join(violations, "\n"))
	}
}

func TestEveryInternalPackageHasALayer(t *testing.T) {
	root, _ := moduleRoot(t)
	entries, err := os.ReadDir(filepath.Join(root, "internal"))
	if err != nil {
		t.Fatalf("read internal/: %v", err)
	}
	known := map[string]bool{"app": true, "architecture": true, "observability": true}
	for _, r := range layerRules {
		known[r.layer] = true
	}
	for _, e := range entries {
		if e.IsDir() && !known[e.Name()] {
			t.Errorf("internal/%s has no import rule; add it to layerRules", e.Name())
		}
	}
}

func disallowedFor(modulePath, rel string) []string {
	for _, r := range layerRules {
		if !strings.HasPrefix(rel, r.prefix) {
			continue
		}
		out := make([]string, 0, len(r.disallow))
		for _, d := range r.disallow {
			out = append(out, modulePath+"/internal/"+d+"/")
		}
		return out
	}
	return nil
}

func moduleRoot(t *testing.T) (string, string) {
	t.Helper()
	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root, err := findModuleRoot(start)
	if err != nil {
		t.Fatalf("find module root: %v", err)
	}
	modulePath, err := readModulePath(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("read module path: %v", err)
	}
	return root, modulePath
}

func findModuleRoot(start string) (string, error) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found from %s", start)
		}
		dir = parent
	}
}

func readModulePath(goModPath string) (string, error) {
	f, err := os.Open(goModPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if mp, ok := strings.CutPrefix(line, "module "); ok {
			if mp = strings.TrimSpace(mp); mp == "" {
				return "", fmt.Errorf("empty module path in %s", goModPath)
			}
			return mp, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module path not found in %s", goModPath)
}
