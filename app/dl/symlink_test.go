package dl

import (
	"os"
	"path/filepath"
	"testing"
)

func TestProjectLinksCanonicalDir(t *testing.T) {
	root := t.TempDir()
	rawDir := filepath.Join(root, "raw")
	destDir := filepath.Join(root, "bookmarks", "public")

	canonical := filepath.Join(rawDir, "500")
	if err := os.MkdirAll(canonical, 0o755); err != nil {
		t.Fatal(err)
	}

	if err := Project(rawDir, destDir, 500); err != nil {
		t.Fatalf("Project returned error: %v", err)
	}

	link := filepath.Join(destDir, "500")
	target, err := os.Readlink(link)
	if err != nil {
		t.Fatalf("Expected symlink at %s: %v", link, err)
	}

	resolved, err := filepath.EvalSymlinks(link)
	if err != nil {
		t.Fatalf("Failed to resolve %s -> %s: %v", link, target, err)
	}
	expected, _ := filepath.EvalSymlinks(canonical)
	if resolved != expected {
		t.Errorf("Expected link to resolve to %s, got %s", expected, resolved)
	}
}

func TestProjectNoopWhenCanonicalMissing(t *testing.T) {
	root := t.TempDir()
	rawDir := filepath.Join(root, "raw")
	destDir := filepath.Join(root, "following")

	if err := Project(rawDir, destDir, 501); err != nil {
		t.Fatalf("Project returned error: %v", err)
	}

	if _, err := os.Lstat(filepath.Join(destDir, "501")); err == nil {
		t.Error("No link should be created for a missing canonical dir")
	}
}

func TestProjectIdempotent(t *testing.T) {
	root := t.TempDir()
	rawDir := filepath.Join(root, "raw")
	destDir := filepath.Join(root, "users", "42")

	if err := os.MkdirAll(filepath.Join(rawDir, "502"), 0o755); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err := Project(rawDir, destDir, 502); err != nil {
			t.Fatalf("Project run %d returned error: %v", i+1, err)
		}
	}

	if _, err := os.Readlink(filepath.Join(destDir, "502")); err != nil {
		t.Errorf("Expected symlink after repeated projection: %v", err)
	}
}

func TestProjectReplacesDanglingLink(t *testing.T) {
	root := t.TempDir()
	rawDir := filepath.Join(root, "raw")
	destDir := filepath.Join(root, "tags", "cat")

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		t.Fatal(err)
	}
	// A link left behind by a deleted mirror entry.
	link := filepath.Join(destDir, "503")
	if err := os.Symlink(filepath.Join(rawDir, "gone"), link); err != nil {
		t.Fatal(err)
	}

	if err := os.MkdirAll(filepath.Join(rawDir, "503"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := Project(rawDir, destDir, 503); err != nil {
		t.Fatalf("Project returned error: %v", err)
	}

	resolved, err := filepath.EvalSymlinks(link)
	if err != nil {
		t.Fatalf("Expected valid link after replacement: %v", err)
	}
	expected, _ := filepath.EvalSymlinks(filepath.Join(rawDir, "503"))
	if resolved != expected {
		t.Errorf("Expected link to resolve to %s, got %s", expected, resolved)
	}
}
