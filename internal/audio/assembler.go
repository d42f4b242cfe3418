package audio

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrNoAudio is returned by Finalize when the backend stream produced zero
// chunks. Callers must surface this explicitly rather than emitting an
// empty container.
var ErrNoAudio = errors.New("no audio chunks received")

// Chunk is one unit of audio emitted by the streaming TTS backend: raw
// bytes plus the MIME type describing them. Chunks are never mutated after
// creation; ownership transfers to the Assembler on Add.
type Chunk struct {
	MIME string
	Data []byte
}

// Assembled is the finalized audio artifact: a synthesized container header
// (empty when the backend self-describes) followed by the payload, plus the
// resolved PCM parameters.
type Assembled struct {
	Header  []byte
	Payload []byte
	Params  Params
}

// Bytes returns the complete container: header followed by payload.
func (a Assembled) Bytes() []byte {
	out := make([]byte, 0, len(a.Header)+len(a.Payload))
	out = append(out, a.Header...)
	return append(out, a.Payload...)
}

type assemblerState int

const (
	awaitingFirstChunk assemblerState = iota
	streaming
	finalized
)

// Assembler consumes the ordered chunk sequence of one generation request
// and produces a well-formed audio container.
//
// The audio parameters are resolved from the first chunk's MIME type. Each
// chunk is checked individually: a chunk that already begins with a
// RIFF/WAVE header passes through unmodified, while bare PCM is accumulated
// so that Finalize can prepend a single header sized to the total payload.
// Chunks are appended strictly in arrival order — ordering is load-bearing
// for the correctness of the byte stream.
//
// An Assembler is request-scoped and not safe for concurrent use.
type Assembler struct {
	state         assemblerState
	params        Params
	selfDescribed bool
	payload       bytes.Buffer
	chunks        int
}

// NewAssembler returns an empty Assembler in the awaiting-first-chunk state.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Add appends one chunk to the assembly. The first chunk resolves the
// stream's audio parameters and determines whether the backend
// self-describes its container.
func (a *Assembler) Add(c Chunk) error {
	if a.state == finalized {
		return fmt.Errorf("assembler already finalized")
	}
	// Every chunk is sniffed, but the backend never switches container
	// mid-stream: the first chunk decides for the whole assembly.
	selfDescribed := HasWAVHeader(c.Data)
	if a.state == awaitingFirstChunk {
		a.params = ParseMIME(c.MIME)
		a.selfDescribed = selfDescribed
		a.state = streaming
	}
	a.payload.Write(c.Data)
	a.chunks++
	return nil
}

// ChunkCount returns the number of chunks added so far.
func (a *Assembler) ChunkCount() int { return a.chunks }

// Params returns the audio parameters resolved from the first chunk.
// Before the first chunk arrives it returns the defaults.
func (a *Assembler) Params() Params {
	if a.state == awaitingFirstChunk {
		return DefaultParams()
	}
	return a.params
}

// Finalize closes the assembly and returns the complete artifact. A stream
// that yielded zero chunks returns ErrNoAudio — never a silent zero-length
// container. Finalize is terminal; subsequent Add calls fail.
func (a *Assembler) Finalize() (Assembled, error) {
	if a.chunks == 0 {
		return Assembled{}, ErrNoAudio
	}
	a.state = finalized

	out := Assembled{
		Payload: a.payload.Bytes(),
		Params:  a.params,
	}
	if !a.selfDescribed {
		out.Header = Header(a.params, a.payload.Len())
	}
	return out, nil
}
