package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/pixelsort/pkg/core/pixel"
	"github.com/matzehuels/pixelsort/pkg/errors"
	"github.com/matzehuels/pixelsort/pkg/imageio"
)

// writeTestImage writes a 4x2 PNG whose rows are in descending brightness.
func writeTestImage(t *testing.T, dir string) string {
	t.Helper()
	g := pixel.NewGrid(4, 2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			v := uint8(200 - 50*x)
			g.Set(x, y, pixel.Pixel{R: v, G: v, B: v})
		}
	}
	path := filepath.Join(dir, "input.png")
	if err := imageio.Export(g, path, imageio.Options{}); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := New(io.Discard, LogInfo).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	for _, name := range []string{"sort", "stats", "serve", "cache", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestSortCommandWritesDefaultOutput(t *testing.T) {
	t.Setenv(redisURLEnv, "")
	dir := t.TempDir()
	input := writeTestImage(t, dir)

	if _, err := execute(t, "sort", input, "--no-cache", "--no-progress", "--seed", "1", "--interval", "4", "--step", "fixed"); err != nil {
		t.Fatalf("sort failed: %v", err)
	}

	g, format, err := imageio.Import(filepath.Join(dir, "input.sorted.png"))
	if err != nil {
		t.Fatalf("sorted output not readable: %v", err)
	}
	if format != imageio.FormatPNG {
		t.Errorf("format = %q, want png", format)
	}
	row := g.Row(0)
	for x := 1; x < len(row); x++ {
		if row[x-1].R > row[x].R {
			t.Errorf("row not ascending: %v", row)
			break
		}
	}
}

func TestSortCommandExplicitOutputFormat(t *testing.T) {
	t.Setenv(redisURLEnv, "")
	dir := t.TempDir()
	input := writeTestImage(t, dir)
	out := filepath.Join(dir, "result.bmp")

	stdout, err := execute(t, "sort", input, "-o", out, "--no-cache", "--no-progress")
	if err != nil {
		t.Fatalf("sort failed: %v", err)
	}
	if !strings.Contains(stdout, "Sorted input.png") || !strings.Contains(stdout, out) {
		t.Errorf("sort output = %q", stdout)
	}
	if _, format, err := imageio.Import(out); err != nil || format != imageio.FormatBMP {
		t.Errorf("Import(%s) = %q, %v; want bmp", out, format, err)
	}
}

func TestSortCommandErrors(t *testing.T) {
	dir := t.TempDir()
	input := writeTestImage(t, dir)

	if _, err := execute(t, "sort", filepath.Join(dir, "missing.png"), "--no-cache"); err == nil {
		t.Error("expected error for missing input")
	}
	if _, err := execute(t, "sort", input, "--no-cache", "--direction", "concentric", "--no-progress"); err == nil {
		t.Error("expected error for concentric traversal")
	}
	if _, err := execute(t, "sort"); err == nil {
		t.Error("expected error without an image argument")
	}
}

func TestCachePathCommand(t *testing.T) {
	cacheHome := t.TempDir()
	t.Setenv(cacheDirEnv, "")
	t.Setenv("XDG_CACHE_HOME", cacheHome)

	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path failed: %v", err)
	}
	if got := strings.TrimSpace(out); got != filepath.Join(cacheHome, appName) {
		t.Errorf("cache path = %q", got)
	}
}

func TestCacheClearCommand(t *testing.T) {
	t.Setenv(redisURLEnv, "")
	cacheHome := t.TempDir()
	t.Setenv(cacheDirEnv, "")
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	input := writeTestImage(t, t.TempDir())

	if _, err := execute(t, "sort", input, "--seed", "3", "--no-progress"); err != nil {
		t.Fatalf("sort failed: %v", err)
	}
	entries, _ := filepath.Glob(filepath.Join(cacheHome, appName, "*", "*.entry"))
	if len(entries) == 0 {
		t.Fatal("seeded sort should populate the cache")
	}

	if _, err := execute(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear failed: %v", err)
	}
	entries, _ = filepath.Glob(filepath.Join(cacheHome, appName, "*", "*.entry"))
	if len(entries) != 0 {
		t.Errorf("%d entries left after clear", len(entries))
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion failed: %v", err)
	}
	if !strings.Contains(out, appName) {
		t.Error("bash completion should mention the program name")
	}
	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}

func TestFlagValueCompletion(t *testing.T) {
	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"sort", "photo.png", "--by", ""}, algorithmNames()},
		{[]string{"sort", "photo.png", "--direction", ""}, []string{"horizontal", "vertical"}},
		{[]string{"sort", ""}, []string{"png", "jpeg", "webp"}},
	}
	for _, tt := range tests {
		out, err := execute(t, append([]string{"__complete"}, tt.args...)...)
		if err != nil {
			t.Fatalf("__complete %v: %v", tt.args, err)
		}
		for _, w := range tt.want {
			if !strings.Contains(out, w) {
				t.Errorf("__complete %v = %q, missing %q", tt.args, out, w)
			}
		}
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, os.ErrNotExist)
	if !strings.Contains(buf.String(), iconError) || !strings.Contains(buf.String(), "not exist") {
		t.Errorf("PrintError() = %q", buf.String())
	}
	if strings.Contains(buf.String(), "--help") {
		t.Error("plain errors should not get a usage hint")
	}

	buf.Reset()
	PrintError(&buf, errors.New(errors.ErrCodeInvalidConfig, "interval must be >= 1, got 0"))
	out := buf.String()
	if strings.Contains(out, string(errors.ErrCodeInvalidConfig)) {
		t.Errorf("PrintError() should drop the code prefix: %q", out)
	}
	if !strings.Contains(out, "--help") {
		t.Errorf("validation errors should get a usage hint: %q", out)
	}
}

func TestVerboseFlag(t *testing.T) {
	t.Setenv(cacheDirEnv, "")
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"--verbose", "cache", "path"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := c.Logger.GetLevel(); got != LogDebug {
		t.Errorf("log level = %v, want debug", got)
	}
}
