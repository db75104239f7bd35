package audio

import (
	"context"
	"errors"
	"fmt"

	"github.com/jfreymuth/pulse"
)

// PulsePlayer plays clips through a PulseAudio playback stream.
type PulsePlayer struct {
	MediaName string
	Latency   float64
}

// Play blocks until the clip drains or ctx is cancelled. Cancellation stops
// the stream immediately and returns ctx.Err().
func (p PulsePlayer) Play(ctx context.Context, clip Clip) error {
	if len(clip.Samples) == 0 {
		return nil
	}
	if clip.SampleRate <= 0 {
		return errors.New("clip sample rate must be > 0")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	client, err := newClient("audio-speakers")
	if err != nil {
		return err
	}
	defer client.Close()

	layout := pulse.PlaybackMono
	if clip.Channels == 2 {
		layout = pulse.PlaybackStereo
	}
	latency := p.Latency
	if latency <= 0 {
		latency = 0.05
	}
	name := p.MediaName
	if name == "" {
		name = "vocahire interviewer"
	}

	samples := clip.Samples
	cursor := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if cursor >= len(samples) {
			return 0, pulse.EndOfData
		}
		n := copy(buf, samples[cursor:])
		cursor += n
		if cursor >= len(samples) {
			return n, pulse.EndOfData
		}
		return n, nil
	})

	stream, err := client.NewPlayback(
		reader,
		layout,
		pulse.PlaybackSampleRate(clip.SampleRate),
		pulse.PlaybackLatency(latency),
		pulse.PlaybackMediaName(name),
	)
	if err != nil {
		return fmt.Errorf("create pulse playback stream: %w", err)
	}
	defer stream.Close()

	drained := make(chan struct{})
	stream.Start()
	go func() {
		stream.Drain()
		close(drained)
	}()

	select {
	case <-drained:
	case <-ctx.Done():
		stream.Stop()
		return ctx.Err()
	}

	if err := stream.Error(); err != nil {
		return fmt.Errorf("play clip: %w", err)
	}
	return nil
}
