// Package audio implements the PCM audio plumbing between the TTS backend
// and the transcoder: MIME parameter parsing, RIFF/WAVE header synthesis,
// and ordered chunk assembly.
//
// The TTS backend emits raw PCM in arbitrary-sized chunks tagged with a MIME
// type such as "audio/L16;rate=24000". Generic players cannot decode bare
// PCM, so the assembler wraps the concatenated payload in a canonical 44-byte
// WAV header whose declared sizes must match the payload exactly.
package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Defaults applied when the backend's MIME type omits a parameter.
const (
	DefaultSampleRate    = 24000
	DefaultBitsPerSample = 16
	DefaultChannels      = 1
)

// HeaderSize is the length of a canonical PCM WAV header with no
// extension fields.
const HeaderSize = 44

// Params describes uncompressed PCM audio.
type Params struct {
	// SampleRate is the sampling frequency in Hz (e.g., 24000).
	SampleRate int

	// BitsPerSample is the sample depth (8, 16, 24, or 32).
	BitsPerSample int

	// Channels is the channel count (1 = mono).
	Channels int
}

// DefaultParams returns the documented fallback parameters: 24 kHz,
// 16-bit, mono.
func DefaultParams() Params {
	return Params{
		SampleRate:    DefaultSampleRate,
		BitsPerSample: DefaultBitsPerSample,
		Channels:      DefaultChannels,
	}
}

// BlockAlign returns the size in bytes of one sample frame across all channels.
func (p Params) BlockAlign() int {
	return p.Channels * p.BitsPerSample / 8
}

// ByteRate returns the number of payload bytes per second of audio.
func (p Params) ByteRate() int {
	return p.SampleRate * p.BlockAlign()
}

// Header synthesizes the canonical 44-byte RIFF/WAVE header for a PCM
// payload of dataLen bytes. The declared data-length field equals dataLen
// exactly; the RIFF chunk size is dataLen plus the 36 header bytes that
// follow the chunk-size field.
func Header(p Params, dataLen int) []byte {
	buf := &bytes.Buffer{}
	buf.Grow(HeaderSize)

	// RIFF header
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	// fmt subchunk
	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16)) // subchunk1 size
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))  // audio format (PCM)
	_ = binary.Write(buf, binary.LittleEndian, uint16(p.Channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(p.SampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(p.ByteRate()))
	_ = binary.Write(buf, binary.LittleEndian, uint16(p.BlockAlign()))
	_ = binary.Write(buf, binary.LittleEndian, uint16(p.BitsPerSample))

	// data subchunk
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(dataLen))

	return buf.Bytes()
}

// HasWAVHeader reports whether data begins with a self-describing
// RIFF/WAVE container header, meaning no header synthesis is needed.
func HasWAVHeader(data []byte) bool {
	return len(data) >= 12 &&
		bytes.Equal(data[0:4], []byte("RIFF")) &&
		bytes.Equal(data[8:12], []byte("WAVE"))
}

// ParseHeader reads back the audio parameters and declared payload length
// from a canonical WAV header. It is the inverse of Header for containers
// without extension fields.
func ParseHeader(data []byte) (Params, int, error) {
	if len(data) < HeaderSize {
		return Params{}, 0, fmt.Errorf("wav header too short: %d bytes", len(data))
	}
	if !HasWAVHeader(data) {
		return Params{}, 0, fmt.Errorf("missing RIFF/WAVE markers")
	}
	if !bytes.Equal(data[12:16], []byte("fmt ")) {
		return Params{}, 0, fmt.Errorf("missing fmt subchunk")
	}
	if !bytes.Equal(data[36:40], []byte("data")) {
		return Params{}, 0, fmt.Errorf("missing data subchunk")
	}

	le := binary.LittleEndian
	p := Params{
		Channels:      int(le.Uint16(data[22:24])),
		SampleRate:    int(le.Uint32(data[24:28])),
		BitsPerSample: int(le.Uint16(data[34:36])),
	}
	dataLen := int(le.Uint32(data[40:44]))
	return p, dataLen, nil
}
