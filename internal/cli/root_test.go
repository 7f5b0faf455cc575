package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayusman/heroswap/internal/detector"
	"github.com/ayusman/heroswap/internal/testutil"
)

// testEnv is a working directory with scene assets and a config pointing at
// them and at a temporary database.
type testEnv struct {
	dir    string
	config string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	assetsDir := filepath.Join(dir, "assets")
	if err := os.MkdirAll(assetsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, f := range testutil.SceneFS() {
		if err := os.WriteFile(filepath.Join(assetsDir, name), f.Data, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := fmt.Sprintf(`
[assets]
dir = %q

[store]
path = %q

[animation]
fps = 10
`, assetsDir, filepath.Join(dir, "data", "heroswap.db"))
	path := filepath.Join(dir, "heroswap.toml")
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return &testEnv{dir: dir, config: path}
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	opts := &options{
		openDetector: func(ctx context.Context) (detector.Detector, error) {
			return testutil.FaceDetector(), nil
		},
	}
	root := newRootCmd(opts)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", e.config}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) writePhoto(t *testing.T, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, testutil.Photo(w, h), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTemplatesCommands(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "templates", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "hero1") || !strings.Contains(out, "2.3") {
		t.Errorf("expected builtin hero1 profile in output, got:\n%s", out)
	}

	if _, err := env.run(t, "templates", "set", "hero1", "--scale", "1.75", "--remove=false"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	out, _ = env.run(t, "templates", "list")
	if !strings.Contains(out, "1.75*") || !strings.Contains(out, "false*") {
		t.Errorf("expected stored values marked, got:\n%s", out)
	}

	if _, err := env.run(t, "templates", "set", "hero1"); err == nil {
		t.Error("expected error when no settings are given")
	}
	if _, err := env.run(t, "templates", "set", "hero1", "--clip", "-2"); err == nil {
		t.Error("expected error for a negative scale")
	}
	if _, err := env.run(t, "templates", "set", "villain", "--clip", "2"); err == nil {
		t.Error("expected error for an unknown template")
	}

	out, err = env.run(t, "templates", "reset", "hero1")
	if err != nil || !strings.Contains(out, "Reset hero1") {
		t.Errorf("expected reset, got %q %v", out, err)
	}
	out, err = env.run(t, "templates", "reset", "hero1")
	if err != nil || !strings.Contains(out, "no stored settings") {
		t.Errorf("expected warning on second reset, got %q %v", out, err)
	}
}

func TestComposeCommand(t *testing.T) {
	env := newTestEnv(t)
	photo := env.writePhoto(t, "me.png", 200, 200)
	output := filepath.Join(env.dir, "out.png")
	frames := filepath.Join(env.dir, "frames")

	out, err := env.run(t, "compose", "--photo", photo, "-o", output, "--frames", frames)
	if err != nil {
		t.Fatalf("compose failed: %v\n%s", err, out)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("expected output file: %v", err)
	}
	entries, err := os.ReadDir(frames)
	if err != nil {
		t.Fatal(err)
	}
	// 3.5s at 10 fps plus the pinned final frame.
	if len(entries) != 36 {
		t.Errorf("expected 36 frames, got %d", len(entries))
	}
	if !strings.Contains(out, "Wrote 36 frames") {
		t.Errorf("expected frame count in output, got:\n%s", out)
	}
}

func TestComposeCommand_NoFace(t *testing.T) {
	env := newTestEnv(t)
	photo := env.writePhoto(t, "tiny.png", 20, 20)

	_, err := env.run(t, "compose", "--photo", photo, "-o", filepath.Join(env.dir, "out.png"))
	if err == nil || !strings.Contains(err.Error(), "No face detected") {
		t.Errorf("expected no-face error, got %v", err)
	}
}

func TestPasteCommand(t *testing.T) {
	env := newTestEnv(t)
	source := env.writePhoto(t, "source.png", 200, 200)
	target := env.writePhoto(t, "target.png", 160, 120)
	output := filepath.Join(env.dir, "pasted.png")

	out, err := env.run(t, "paste", "--source", source, "--target", target, "-o", output)
	if err != nil {
		t.Fatalf("paste failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "160x120") {
		t.Errorf("expected target size in output, got:\n%s", out)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("expected output file: %v", err)
	}
}

func TestRootCommand_BadConfig(t *testing.T) {
	env := newTestEnv(t)
	if err := os.WriteFile(env.config, []byte("[server]\nport = 80\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := env.run(t, "templates", "list"); err == nil {
		t.Error("expected unknown config key to fail")
	}
}

func TestBrowserURL(t *testing.T) {
	tests := map[string]string{
		":8080":          "http://localhost:8080",
		"0.0.0.0:9000":   "http://localhost:9000",
		"127.0.0.1:8080": "http://127.0.0.1:8080",
		"example":        "http://example",
	}
	for addr, want := range tests {
		if got := browserURL(addr); got != want {
			t.Errorf("browserURL(%q): expected %s, got %s", addr, want, got)
		}
	}
}
