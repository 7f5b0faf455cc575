// Package mediapipe implements detector.Detector with a Python FaceMesh
// subprocess speaking a length-prefixed JPEG / JSON-line protocol.
package mediapipe

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"gocv.io/x/gocv"

	"github.com/ayusman/heroswap/internal/detector"
)

const scriptName = "facemesh_service.py"

// Options configures the subprocess.
type Options struct {
	Detector    detector.Config
	Python      string        // interpreter; empty searches for a venv, then python3
	Script      string        // service script; empty searches well-known paths
	IdleTimeout time.Duration // shut the process down after this long unused
	Logger      *log.Logger
}

// Detector implements detector.Detector using a Python MediaPipe subprocess.
type Detector struct {
	opts      Options
	script    string
	python    string
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	idleTimer *time.Timer
}

// New creates a detector. The Python process is started lazily on first
// detection or by Warmup.
func New(opts Options) (*Detector, error) {
	script := opts.Script
	if script == "" {
		script = findScript()
	}
	if script == "" {
		return nil, fmt.Errorf("%s not found", scriptName)
	}
	python := opts.Python
	if python == "" {
		python = findVenvPython()
	}
	if python == "" {
		python = "python3"
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Detector{opts: opts, script: script, python: python}, nil
}

// Open creates a detector and waits for the model to load. It has the shape of
// detector.OpenFunc.
func Open(opts Options) detector.OpenFunc {
	return func(ctx context.Context) (detector.Detector, error) {
		d, err := New(opts)
		if err != nil {
			return nil, err
		}
		if err := d.Warmup(ctx); err != nil {
			return nil, err
		}
		return d, nil
	}
}

// Warmup starts the subprocess and blocks until the model reports ready.
func (d *Detector) Warmup(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ensureStarted(ctx); err != nil {
		return err
	}
	d.resetIdleTimer()
	return nil
}

// Detect encodes img as JPEG, sends it to the service and decodes the mesh.
func (d *Detector) Detect(ctx context.Context, img image.Image) (*detector.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(ctx); err != nil {
		return nil, err
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer mat.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	defer buf.Close()

	var line string
	err = d.withDeadline(ctx, func() error {
		data := buf.GetBytes()
		length := make([]byte, 4)
		binary.BigEndian.PutUint32(length, uint32(len(data)))

		if _, err := d.stdin.Write(length); err != nil {
			return fmt.Errorf("write length: %w", err)
		}
		if _, err := d.stdin.Write(data); err != nil {
			return fmt.Errorf("write data: %w", err)
		}
		var err error
		line, err = d.stdout.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		return nil
	})
	if err != nil {
		d.shutdown()
		return nil, err
	}

	var response struct {
		Faces []jsonFace `json:"faces"`
		Error string     `json:"error"`
	}
	if err := json.Unmarshal([]byte(line), &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("facemesh service: %s", response.Error)
	}

	result := &detector.Result{Faces: make([]detector.Face, 0, len(response.Faces))}
	for _, f := range response.Faces {
		if f.Score < d.opts.Detector.MinConfidence {
			continue
		}
		result.Faces = append(result.Faces, f.toFace())
		if limit := d.opts.Detector.MaxFaces; limit > 0 && len(result.Faces) >= limit {
			break
		}
	}

	d.resetIdleTimer()
	return result, nil
}

// Close shuts down the Python process.
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

// withDeadline runs fn and kills the subprocess if ctx ends first, which
// unblocks any pending pipe I/O.
func (d *Detector) withDeadline(ctx context.Context, fn func() error) error {
	proc := d.cmd.Process
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			proc.Kill()
		case <-done:
		}
	}()
	err := fn()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

func (d *Detector) ensureStarted(ctx context.Context) error {
	if d.started {
		return nil
	}

	cmd := exec.Command(d.python, d.script,
		"--max-faces", fmt.Sprint(d.opts.Detector.MaxFaces),
		"--min-confidence", fmt.Sprint(d.opts.Detector.MinConfidence),
	)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start facemesh service: %w", err)
	}

	d.cmd = cmd
	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true

	// The service prints one line once the model has loaded.
	err = d.withDeadline(ctx, func() error {
		line, err := d.stdout.ReadString('\n')
		if err != nil {
			return fmt.Errorf("await ready: %w", err)
		}
		var ready struct {
			Ready bool `json:"ready"`
		}
		if err := json.Unmarshal([]byte(line), &ready); err != nil || !ready.Ready {
			return fmt.Errorf("unexpected ready line %q", line)
		}
		return nil
	})
	if err != nil {
		d.shutdown()
		return err
	}

	d.opts.Logger.Debug("facemesh service started", "python", d.python, "script", d.script)
	return nil
}

func (d *Detector) shutdown() error {
	if !d.started {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}
	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil

	d.opts.Logger.Debug("facemesh service stopped")
	return err
}

func (d *Detector) resetIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(d.opts.IdleTimeout, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.shutdown()
	})
}

func findScript() string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	return firstExisting(
		filepath.Join("scripts", scriptName),
		filepath.Join("..", "scripts", scriptName),
		filepath.Join(execDir, "scripts", scriptName),
		filepath.Join(os.Getenv("HOME"), ".heroswap", "scripts", scriptName),
	)
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	return firstExisting(
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".heroswap/venv/bin/python"),
	)
}

func firstExisting(candidates ...string) string {
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return ""
}

// jsonFace is the JSON structure from the Python service. Mesh points are in
// pixel coordinates of the submitted image.
type jsonFace struct {
	Mesh  [][]float64 `json:"mesh"`
	Score float64     `json:"score"`
}

func (f jsonFace) toFace() detector.Face {
	mesh := make([]any, len(f.Mesh))
	for i, p := range f.Mesh {
		mesh[i] = p
	}
	return detector.Face{Mesh: mesh, Score: f.Score}
}
