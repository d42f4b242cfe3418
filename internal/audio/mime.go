package audio

import (
	"strconv"
	"strings"
)

// ParseMIME extracts PCM parameters from a backend-supplied audio MIME type
// such as "audio/L16;rate=24000". Parameter order and presence are not
// guaranteed. Unrecognized or malformed input degrades to the documented
// defaults; the parser never fails.
//
// The bit depth is taken from an "L<bits>" subtype token (linear PCM
// convention, e.g. audio/L16, audio/L24). The sample rate comes from a
// "rate=<N>" parameter.
func ParseMIME(mimeType string) Params {
	p := DefaultParams()

	parts := strings.Split(mimeType, ";")
	for _, param := range parts[1:] {
		param = strings.TrimSpace(param)
		if !strings.HasPrefix(strings.ToLower(param), "rate=") {
			continue
		}
		value := param[len("rate="):]
		if rate, err := strconv.Atoi(value); err == nil && rate > 0 {
			p.SampleRate = rate
		}
	}

	mainType := strings.TrimSpace(parts[0])
	if idx := strings.Index(mainType, "L"); idx >= 0 {
		if bits, err := strconv.Atoi(mainType[idx+1:]); err == nil && validBitDepth(bits) {
			p.BitsPerSample = bits
		}
	}

	return p
}

func validBitDepth(bits int) bool {
	switch bits {
	case 8, 16, 24, 32:
		return true
	}
	return false
}
