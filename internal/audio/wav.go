package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// Clip holds decoded mono PCM audio.
type Clip struct {
	Samples []float64
	Rate    int
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c == nil || c.Rate <= 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.Rate)
}

var errNotWAV = errors.New("not a RIFF/WAVE file")

// DecodeWAVFile reads a PCM WAV file at its native sample rate, downmixing
// multi-channel audio to mono by averaging. Supports 16-bit integer and
// 32-bit float PCM.
func DecodeWAVFile(path string) (*Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	clip, err := decodeWAV(data)
	if err != nil {
		return nil, fmt.Errorf("decode wav %s: %w", path, err)
	}
	return clip, nil
}

func decodeWAV(data []byte) (*Clip, error) {
	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, errNotWAV
	}

	var (
		format     uint16
		channels   int
		rate       int
		bits       int
		sampleData []byte
	)

	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkLen := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkLen > len(data) {
			chunkLen = len(data) - body
		}
		switch chunkID {
		case "fmt ":
			if chunkLen < 16 {
				return nil, errors.New("fmt chunk too short")
			}
			format = binary.LittleEndian.Uint16(data[body : body+2])
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			rate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			sampleData = data[body : body+chunkLen]
		}
		// Chunks are word aligned.
		offset = body + chunkLen + chunkLen%2
	}

	if channels <= 0 || rate <= 0 {
		return nil, errors.New("missing fmt chunk")
	}
	if sampleData == nil {
		return nil, errors.New("missing data chunk")
	}

	switch {
	case format == 1 && bits == 16:
		return decodePCM16(sampleData, channels, rate), nil
	case format == 3 && bits == 32:
		return decodeFloat32(sampleData, channels, rate), nil
	default:
		return nil, fmt.Errorf("unsupported wav encoding (format %d, %d-bit)", format, bits)
	}
}

func decodePCM16(data []byte, channels, rate int) *Clip {
	frames := len(data) / (2 * channels)
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			raw := int16(binary.LittleEndian.Uint16(data[(i*channels+ch)*2:]))
			sum += float64(raw) / 32768.0
		}
		samples[i] = sum / float64(channels)
	}
	return &Clip{Samples: samples, Rate: rate}
}

func decodeFloat32(data []byte, channels, rate int) *Clip {
	frames := len(data) / (4 * channels)
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			bits := binary.LittleEndian.Uint32(data[(i*channels+ch)*4:])
			sum += float64(math.Float32frombits(bits))
		}
		samples[i] = sum / float64(channels)
	}
	return &Clip{Samples: samples, Rate: rate}
}

// EncodeWAVFile writes a clip as 16-bit mono PCM WAV.
func EncodeWAVFile(path string, clip *Clip) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	if err := EncodeWAV(f, clip); err != nil {
		f.Close()
		return fmt.Errorf("write wav %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close wav %s: %w", path, err)
	}
	return nil
}

// EncodeWAV writes a clip to w as 16-bit mono PCM with a minimal 44-byte
// header.
func EncodeWAV(w io.Writer, clip *Clip) error {
	dataSize := len(clip.Samples) * 2
	byteRate := clip.Rate * 2

	header := make([]byte, 0, 44)
	header = append(header, "RIFF"...)
	header = binary.LittleEndian.AppendUint32(header, uint32(36+dataSize))
	header = append(header, "WAVE"...)
	header = append(header, "fmt "...)
	header = binary.LittleEndian.AppendUint32(header, 16)
	header = binary.LittleEndian.AppendUint16(header, 1) // PCM
	header = binary.LittleEndian.AppendUint16(header, 1) // mono
	header = binary.LittleEndian.AppendUint32(header, uint32(clip.Rate))
	header = binary.LittleEndian.AppendUint32(header, uint32(byteRate))
	header = binary.LittleEndian.AppendUint16(header, 2)  // block align
	header = binary.LittleEndian.AppendUint16(header, 16) // bits per sample
	header = append(header, "data"...)
	header = binary.LittleEndian.AppendUint32(header, uint32(dataSize))
	if _, err := w.Write(header); err != nil {
		return err
	}

	buf := make([]byte, dataSize)
	for i, sample := range clip.Samples {
		scaled := sample
		if scaled > 1 {
			scaled = 1
		} else if scaled < -1 {
			scaled = -1
		}
		value := int16(math.Round(scaled * 32767))
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(value))
	}
	_, err := w.Write(buf)
	return err
}
