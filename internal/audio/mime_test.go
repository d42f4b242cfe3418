package audio

import "testing"

func TestParseMIME(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Params
	}{
		{"rate and depth", "audio/L16;rate=48000", Params{48000, 16, 1}},
		{"no rate", "audio/L16", Params{24000, 16, 1}},
		{"24-bit", "audio/L24;rate=44100", Params{44100, 24, 1}},
		{"unknown subtype", "audio/wav", Params{24000, 16, 1}},
		{"malformed rate", "audio/L16;rate=invalid", Params{24000, 16, 1}},
		{"empty rate", "audio/L16;rate=", Params{24000, 16, 1}},
		{"negative rate", "audio/L16;rate=-1", Params{24000, 16, 1}},
		{"spaced params", "audio/L16 ; rate=16000", Params{16000, 16, 1}},
		{"uppercase param", "audio/L16;RATE=32000", Params{32000, 16, 1}},
		{"unsupported depth", "audio/L12;rate=24000", Params{24000, 16, 1}},
		{"empty string", "", Params{24000, 16, 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseMIME(tc.in)
			if got != tc.want {
				t.Fatalf("ParseMIME(%q) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}
