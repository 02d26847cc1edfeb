package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestClassify(t *testing.T) {
	for _, ext := range []string{"mkv", "avi", "mp4", "divx", "flv", "m4v", "mov", "ogv", "ts", "webm", "wmv"} {
		path := "/videos/movie." + ext
		if got := Classify(path); got != CategoryVideo {
			t.Errorf("Classify(%q) = %v, want video", path, got)
		}
	}

	others := []string{
		"/videos/movie.MP4",
		"/videos/movie.Mkv",
		"/videos/movie.srt",
		"/videos/movie.mpg",
		"/videos/movie",
		"/videos/movie.",
		"/videos/mkv",
		"/videos.mkv/readme",
		"",
	}
	for _, path := range others {
		if got := Classify(path); got != CategoryOther {
			t.Errorf("Classify(%q) = %v, want other", path, got)
		}
	}
}

func TestCategoryString(t *testing.T) {
	if CategoryVideo.String() != "video" || CategoryOther.String() != "other" {
		t.Errorf("Category.String() = %q/%q", CategoryVideo, CategoryOther)
	}
}

func TestPathHelpers(t *testing.T) {
	path := filepath.Join("dir", "movie.libx265.95.mkv")
	if got := GetFileStem(path); got != "movie.libx265.95" {
		t.Errorf("GetFileStem() = %q", got)
	}
	if got := GetExtension(path); got != "mkv" {
		t.Errorf("GetExtension() = %q", got)
	}
	if got := GetFilename(path); got != "movie.libx265.95.mkv" {
		t.Errorf("GetFilename() = %q", got)
	}
	if got := GetExtension("noext"); got != "" {
		t.Errorf("GetExtension(noext) = %q, want empty", got)
	}
}

func TestFileHelpers(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "a.mkv")
	if err := os.WriteFile(video, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}

	if size, err := GetFileSize(video); err != nil || size != 4 {
		t.Errorf("GetFileSize() = %d, %v, want 4", size, err)
	}
	if !DirectoryExists(dir) || DirectoryExists(video) {
		t.Error("DirectoryExists() mismatch")
	}

	nested := filepath.Join(dir, "x", "y")
	if err := EnsureDirectory(nested); err != nil {
		t.Fatalf("EnsureDirectory() error = %v", err)
	}
	if !DirectoryExists(nested) {
		t.Error("EnsureDirectory() did not create the directory")
	}
}
