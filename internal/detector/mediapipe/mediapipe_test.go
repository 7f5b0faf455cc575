package mediapipe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/heroswap/internal/detector"
)

func TestJSONFace(t *testing.T) {
	t.Run("mesh points normalize", func(t *testing.T) {
		f := jsonFace{Mesh: [][]float64{{1, 2, 0.1}, {3, 4, 0.2}}, Score: 0.8}
		face := f.toFace()
		p, ok := face.Point(1)
		if !ok {
			t.Fatal("expected landmark 1")
		}
		if p.X != 3 || p.Y != 4 {
			t.Errorf("expected (3,4), got %v", p)
		}
		if face.Score != 0.8 {
			t.Errorf("expected score 0.8, got %f", face.Score)
		}
	})
}

func TestNew(t *testing.T) {
	t.Run("explicit script is used", func(t *testing.T) {
		dir := t.TempDir()
		script := filepath.Join(dir, scriptName)
		if err := os.WriteFile(script, []byte("print('hi')\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		d, err := New(Options{Script: script, Python: "python3", Detector: detector.DefaultConfig()})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.script != script {
			t.Errorf("expected script %s, got %s", script, d.script)
		}
		if d.opts.IdleTimeout <= 0 {
			t.Error("expected default idle timeout")
		}
		if err := d.Close(); err != nil {
			t.Errorf("closing an unstarted detector should not fail: %v", err)
		}
	})

	t.Run("first existing candidate wins", func(t *testing.T) {
		dir := t.TempDir()
		b := filepath.Join(dir, "b")
		if err := os.WriteFile(b, nil, 0o644); err != nil {
			t.Fatal(err)
		}
		if got := firstExisting(filepath.Join(dir, "a"), b); got != b {
			t.Errorf("expected %s, got %s", b, got)
		}
		if got := firstExisting(filepath.Join(dir, "missing")); got != "" {
			t.Errorf("expected no match, got %s", got)
		}
	})
}
