package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// Clip is decoded PCM16 audio ready for playback. Samples are interleaved
// when Channels is 2.
type Clip struct {
	SampleRate int
	Channels   int
	Samples    []int16
}

// Duration reports the playback length of the clip.
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 || c.Channels <= 0 {
		return 0
	}
	frames := len(c.Samples) / c.Channels
	return time.Duration(frames) * time.Second / time.Duration(c.SampleRate)
}

// DecodeClip parses a RIFF/WAVE PCM16 buffer, or treats data as raw mono
// PCM16LE at fallbackRate when it carries no RIFF header.
func DecodeClip(data []byte, fallbackRate int) (Clip, error) {
	if len(data) == 0 {
		return Clip{}, errors.New("empty audio buffer")
	}
	if fallbackRate <= 0 {
		fallbackRate = DefaultSampleRate
	}
	if bytes.HasPrefix(data, []byte("RIFF")) {
		return decodeWAV(data)
	}
	if len(data)%2 != 0 {
		return Clip{}, fmt.Errorf("raw pcm16 buffer has odd length %d", len(data))
	}
	return Clip{SampleRate: fallbackRate, Channels: 1, Samples: pcm16Samples(data)}, nil
}

func decodeWAV(data []byte) (Clip, error) {
	if len(data) < 12 || string(data[8:12]) != "WAVE" {
		return Clip{}, errors.New("unsupported wav header")
	}

	var (
		haveFmt     bool
		audioFormat uint16
		channels    uint16
		sampleRate  uint32
		bitsPerSamp uint16
		pcm         []byte
		haveData    bool
	)
	for off := 12; off+8 <= len(data); {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		off += 8
		if size < 0 || off+size > len(data) {
			return Clip{}, errors.New("invalid wav chunk size")
		}
		chunk := data[off : off+size]
		switch id {
		case "fmt ":
			if len(chunk) < 16 {
				return Clip{}, errors.New("invalid wav fmt chunk")
			}
			audioFormat = binary.LittleEndian.Uint16(chunk[0:2])
			channels = binary.LittleEndian.Uint16(chunk[2:4])
			sampleRate = binary.LittleEndian.Uint32(chunk[4:8])
			bitsPerSamp = binary.LittleEndian.Uint16(chunk[14:16])
			haveFmt = true
		case "data":
			pcm = chunk
			haveData = true
		}
		off += size
		if size%2 == 1 {
			off++
		}
	}

	switch {
	case !haveFmt:
		return Clip{}, errors.New("wav fmt chunk missing")
	case !haveData:
		return Clip{}, errors.New("wav data chunk missing")
	case audioFormat != 1:
		return Clip{}, fmt.Errorf("unsupported wav audio format %d", audioFormat)
	case bitsPerSamp != 16:
		return Clip{}, fmt.Errorf("unsupported wav bits_per_sample %d", bitsPerSamp)
	case channels != 1 && channels != 2:
		return Clip{}, fmt.Errorf("unsupported wav channel count %d", channels)
	case sampleRate == 0:
		return Clip{}, errors.New("wav sample rate is zero")
	}

	frameBytes := int(channels) * 2
	pcm = pcm[:len(pcm)/frameBytes*frameBytes]
	return Clip{SampleRate: int(sampleRate), Channels: int(channels), Samples: pcm16Samples(pcm)}, nil
}

func pcm16Samples(data []byte) []int16 {
	out := make([]int16, len(data)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return out
}

// EncodeWAV wraps mono PCM16LE bytes in a canonical 44-byte RIFF header.
func EncodeWAV(pcm []byte, sampleRate int) []byte {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	const (
		channels      = 1
		bitsPerSample = 16
	)
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	buf := bytes.NewBuffer(make([]byte, 0, 44+len(pcm)))
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}
