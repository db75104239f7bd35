package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

const (
	DefaultSampleRate = 16000
	DefaultChunkMS    = 20

	streamWatchInterval = 100 * time.Millisecond
)

var errStreamClosed = errors.New("record stream closed unexpectedly")

// CaptureOptions sizes the PCM stream.
type CaptureOptions struct {
	SampleRate int
	ChunkMS    int
}

func (o CaptureOptions) chunkBytes() int {
	rate := o.SampleRate
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	ms := o.ChunkMS
	if ms <= 0 {
		ms = DefaultChunkMS
	}
	// mono s16: two bytes per sample
	return rate * ms / 1000 * 2
}

// Capture streams fixed-size mono PCM16LE chunks from one Pulse source.
type Capture struct {
	device     Device
	chunkBytes int

	client *pulse.Client
	stream *pulse.RecordStream

	chunks chan []byte
	stopCh chan struct{}

	mu      sync.Mutex
	pending []byte
	stopped bool
	fault   error

	inflight sync.WaitGroup
	bytes    atomic.Int64
}

// StartCapture creates and starts a record stream on the selected device.
// The capture stops itself when ctx is cancelled or the stream dies.
func StartCapture(ctx context.Context, selected Device, opts CaptureOptions) (*Capture, error) {
	if opts.SampleRate <= 0 {
		opts.SampleRate = DefaultSampleRate
	}

	client, err := newClient("audio-input-microphone")
	if err != nil {
		return nil, err
	}

	source, err := client.SourceByID(selected.ID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("resolve source %q: %w", selected.ID, err)
	}

	capture := &Capture{
		device:     selected,
		chunkBytes: opts.chunkBytes(),
		client:     client,
		chunks:     make(chan []byte, 128),
		stopCh:     make(chan struct{}),
	}

	writer := pulse.NewWriter(writerFunc(capture.onPCM), pulseproto.FormatInt16LE)
	stream, err := client.NewRecord(
		writer,
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(opts.SampleRate),
		pulse.RecordBufferFragmentSize(uint32(capture.chunkBytes)),
		pulse.RecordMediaName("vocahire interview answer"),
	)
	if err != nil {
		capture.Close()
		return nil, fmt.Errorf("create pulse record stream: %w", err)
	}

	capture.stream = stream
	stream.Start()

	go capture.watch(ctx)

	return capture, nil
}

// watch stops the capture on ctx cancellation and records a fault when the
// stream dies underneath us.
func (c *Capture) watch(ctx context.Context) {
	ticker := time.NewTicker(streamWatchInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-ctx.Done():
			_ = c.Stop()
			return
		case <-ticker.C:
			if !c.stream.Closed() {
				continue
			}
			err := c.stream.Error()
			if err == nil {
				err = errStreamClosed
			}
			c.mu.Lock()
			if c.stopped {
				c.mu.Unlock()
				return
			}
			c.fault = err
			c.mu.Unlock()
			_ = c.Stop()
			return
		}
	}
}

// Device returns capture metadata for logging and diagnostics.
func (c *Capture) Device() Device {
	return c.device
}

// Chunks returns the PCM stream. It is closed exactly once by Stop. The
// consumer must drain it until close; Stop blocks delivering the final partial
// chunk.
func (c *Capture) Chunks() <-chan []byte {
	return c.chunks
}

// Err reports a device fault that ended the capture without Stop being called.
func (c *Capture) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fault
}

// BytesCaptured reports total bytes accepted from Pulse.
func (c *Capture) BytesCaptured() int64 {
	return c.bytes.Load()
}

// Stop halts the stream, flushes residual PCM, and closes Chunks exactly once.
func (c *Capture) Stop() error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil
	}
	c.stopped = true
	close(c.stopCh)
	c.mu.Unlock()

	if c.stream != nil {
		c.stream.Stop()
		c.stream.Close()
	}
	if c.client != nil {
		c.client.Close()
	}

	c.inflight.Wait()

	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	if len(pending) > 0 {
		c.chunks <- pending
	}

	close(c.chunks)
	return nil
}

// Close is a convenience alias for Stop.
func (c *Capture) Close() {
	_ = c.Stop()
}

// onPCM receives raw Pulse frames and emits chunkBytes slices to c.chunks.
func (c *Capture) onPCM(buffer []byte) (int, error) {
	if len(buffer) == 0 {
		return 0, nil
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return 0, io.EOF
	}
	// Add under the same mutex as c.stopped so Stop's Wait cannot race it.
	c.inflight.Add(1)

	c.pending = append(c.pending, buffer...)
	chunks := make([][]byte, 0, len(c.pending)/c.chunkBytes)
	for len(c.pending) >= c.chunkBytes {
		chunk := make([]byte, c.chunkBytes)
		copy(chunk, c.pending[:c.chunkBytes])
		c.pending = c.pending[c.chunkBytes:]
		chunks = append(chunks, chunk)
	}
	c.mu.Unlock()
	defer c.inflight.Done()

	c.bytes.Add(int64(len(buffer)))

	for _, chunk := range chunks {
		select {
		case <-c.stopCh:
			return 0, io.EOF
		case c.chunks <- chunk:
		}
	}

	return len(buffer), nil
}

// writerFunc adapts a function to io.Writer for pulse.NewWriter.
type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(b []byte) (int, error) {
	return f(b)
}
