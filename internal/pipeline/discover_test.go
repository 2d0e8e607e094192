package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func basenames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func sliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// --- Discover tests ---

func TestDiscover_CollectsAllFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "photo.jpg")
	touch(t, dir, "notes.txt")
	touch(t, dir, "scan.tiff")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	want := []string{"notes.txt", "photo.jpg", "scan.tiff"}
	if got := basenames(files); !sliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDiscover_RecursiveAndSorted(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, "trip", "day2"), 0o755)
	os.MkdirAll(filepath.Join(dir, "trip", "day1"), 0o755)
	touch(t, filepath.Join(dir, "trip", "day2"), "b.jpg")
	touch(t, filepath.Join(dir, "trip", "day1"), "a.jpg")
	touch(t, dir, "cover.png")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{"cover.png", "a.jpg", "b.jpg"}
	if got := basenames(files); !sliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Error("Discover of missing root succeeded")
	}
}

// --- FilterImages tests ---

func TestFilterImages_CaseInsensitive(t *testing.T) {
	files := []string{"a.jpg", "b.JPG", "c.JpEg", "d.txt", "e.png", "f.mkv"}

	got := FilterImages(files, DefaultImageExtensions)
	want := []string{"a.jpg", "b.JPG", "c.JpEg", "e.png"}
	if !sliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFilterImages_OrderPreservingSubsequence(t *testing.T) {
	files := []string{"z.webp", "m.doc", "a.heic", "q.gif"}

	got := FilterImages(files, DefaultImageExtensions)
	want := []string{"z.webp", "a.heic", "q.gif"}
	if !sliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFilterImages_NoDuplicates(t *testing.T) {
	// Equivalent-case allow-list entries must not duplicate a match.
	got := FilterImages([]string{"photo.jpg"}, []string{"jpg", "JPG", "Jpg"})
	want := []string{"photo.jpg"}
	if !sliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFilterImages_NoExtension(t *testing.T) {
	got := FilterImages([]string{"README", "dotfile."}, DefaultImageExtensions)
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}
