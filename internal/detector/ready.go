package detector

import (
	"context"
	"sync"
	"time"

	"github.com/ayusman/heroswap/internal/errors"
)

// DefaultReadyTimeout bounds how long callers wait for a detector to load.
const DefaultReadyTimeout = 8 * time.Second

// OpenFunc opens a detector. It may block while a model loads.
type OpenFunc func(ctx context.Context) (Detector, error)

// Loader resolves a detector exactly once in the background. Waiters block
// until it is ready, it fails, or the load deadline passes.
type Loader struct {
	done chan struct{}
	once sync.Once
	det  Detector
	err  error
}

// Load starts opening a detector and returns immediately. If open has not
// returned within timeout the loader settles with DetectorUnavailable; a
// detector that arrives later is closed.
func Load(ctx context.Context, timeout time.Duration, open OpenFunc) *Loader {
	if timeout <= 0 {
		timeout = DefaultReadyTimeout
	}
	l := &Loader{done: make(chan struct{})}

	loadCtx, cancel := context.WithTimeout(ctx, timeout)
	type opened struct {
		det Detector
		err error
	}
	ch := make(chan opened, 1)
	go func() {
		det, err := open(loadCtx)
		ch <- opened{det, err}
	}()

	go func() {
		defer cancel()
		select {
		case r := <-ch:
			if r.err != nil {
				l.settle(nil, errors.Wrap(errors.ErrCodeDetectorUnavailable, r.err, "Face detector failed to load."))
				return
			}
			l.settle(r.det, nil)
		case <-loadCtx.Done():
			l.settle(nil, errors.Wrap(errors.ErrCodeDetectorUnavailable, loadCtx.Err(), "Face detector failed to load."))
			go func() {
				if r := <-ch; r.det != nil {
					r.det.Close()
				}
			}()
		}
	}()
	return l
}

// Ready wraps an already-open detector.
func Ready(det Detector) *Loader {
	l := &Loader{done: make(chan struct{})}
	l.settle(det, nil)
	return l
}

func (l *Loader) settle(det Detector, err error) {
	l.once.Do(func() {
		l.det, l.err = det, err
		close(l.done)
	})
}

// Wait blocks until the detector is resolved or ctx ends.
func (l *Loader) Wait(ctx context.Context) (Detector, error) {
	select {
	case <-l.done:
		return l.det, l.err
	case <-ctx.Done():
		return nil, errors.Wrap(errors.ErrCodeDetectorUnavailable, ctx.Err(), "Face detector failed to load.")
	}
}

// Settled reports whether loading has finished, successfully or not.
func (l *Loader) Settled() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}
