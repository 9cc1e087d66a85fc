package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	tmp := t.TempDir()

	tests := []struct {
		name     string
		override string
		xdg      string
		want     string
	}{
		{"home default", "", "", filepath.Join(home, ".cache", appName)},
		{"xdg", "", tmp, filepath.Join(tmp, appName)},
		{"override wins", tmp + "/mine/", tmp, filepath.Join(tmp, "mine")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(cacheDirEnv, tt.override)
			t.Setenv("XDG_CACHE_HOME", tt.xdg)

			got, err := cacheDir()
			if err != nil {
				t.Fatalf("cacheDir() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("cacheDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct {
		input, format, want string
	}{
		{"photo.png", "png", "photo.sorted.png"},
		{"dir/photo.jpeg", "jpeg", "dir/photo.sorted.jpg"},
		{"photo.webp", "png", "photo.sorted.png"},
		{"noext", "gif", "noext.sorted.gif"},
	}
	for _, tt := range tests {
		if got := defaultOutputPath(tt.input, tt.format); got != tt.want {
			t.Errorf("defaultOutputPath(%q, %q) = %q, want %q", tt.input, tt.format, got, tt.want)
		}
	}
}
