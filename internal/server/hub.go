package server

import (
	"bytes"
	"image"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ayusman/heroswap/internal/app"
	"github.com/ayusman/heroswap/internal/raster"
)

// JPEGQuality is the quality streamed frames are encoded at.
const JPEGQuality = 85

// FrameHub encodes the player's frames once and fans them out to streaming
// clients. Slow clients skip frames; they always get the newest one.
type FrameHub struct {
	logger   *log.Logger
	interval time.Duration

	latest chan *image.RGBA
	done   chan struct{}
	stop   func()
	once   sync.Once

	mu      sync.Mutex
	clients map[chan []byte]struct{}
	last    []byte
}

// NewFrameHub subscribes to a's frames. Frames are encoded at most fps times a
// second.
func NewFrameHub(a *app.App, fps int, logger *log.Logger) *FrameHub {
	if fps <= 0 {
		fps = 30
	}
	h := &FrameHub{
		logger:   logger,
		interval: time.Second / time.Duration(fps),
		latest:   make(chan *image.RGBA, 1),
		done:     make(chan struct{}),
		clients:  make(map[chan []byte]struct{}),
	}
	h.stop = a.Subscribe(func(frame *image.RGBA, _ time.Duration) {
		offer(h.latest, frame)
	})
	go h.run()
	return h
}

// offer puts v in a one-slot channel, replacing anything not yet taken.
func offer[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (h *FrameHub) run() {
	var lastSent time.Time
	for {
		select {
		case <-h.done:
			return
		case frame := <-h.latest:
			if wait := h.interval - time.Since(lastSent); wait > 0 {
				select {
				case <-h.done:
					return
				case <-time.After(wait):
				}
				// A newer frame may have arrived while waiting.
				select {
				case frame = <-h.latest:
				default:
				}
			}
			lastSent = time.Now()
			h.publish(frame)
		}
	}
}

func (h *FrameHub) publish(frame *image.RGBA) {
	var buf bytes.Buffer
	if err := raster.EncodeJPEG(&buf, frame, JPEGQuality); err != nil {
		h.logger.Warn("frame encode failed", "err", err)
		return
	}
	data := buf.Bytes()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = data
	for c := range h.clients {
		offer(c, data)
	}
}

// Subscribe returns a channel of JPEG frames, primed with the newest frame if
// any, and a func that unsubscribes. The channel is closed when the hub stops.
func (h *FrameHub) Subscribe() (<-chan []byte, func()) {
	c := make(chan []byte, 1)
	h.mu.Lock()
	select {
	case <-h.done:
		close(c)
		h.mu.Unlock()
		return c, func() {}
	default:
	}
	h.clients[c] = struct{}{}
	if h.last != nil {
		c <- h.last
	}
	h.mu.Unlock()

	return c, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.clients[c]; ok {
			delete(h.clients, c)
			close(c)
		}
	}
}

// Clients returns the number of connected clients.
func (h *FrameHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close unsubscribes from the player and disconnects every client.
func (h *FrameHub) Close() {
	h.once.Do(func() {
		h.stop()
		h.mu.Lock()
		close(h.done)
		for c := range h.clients {
			delete(h.clients, c)
			close(c)
		}
		h.mu.Unlock()
	})
}
