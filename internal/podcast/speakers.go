package podcast

import (
	"regexp"
	"strings"
)

// speakerPattern matches the transcript's speaker-delimiter convention,
// e.g. "Speaker 1: Hello there."
var speakerPattern = regexp.MustCompile(`\bSpeaker (\d+):`)

// SpeakerTurn is one utterance attributed to a speaker label. Ordering is
// significant and preserved end-to-end.
type SpeakerTurn struct {
	Speaker string
	Text    string
}

// ParseSpeakerTurns splits a transcript into ordered speaker turns. Text
// before the first label (or a transcript with no labels at all) yields no
// turns — the transcript is still submitted verbatim to the backend, which
// applies its own voice allocation.
func ParseSpeakerTurns(transcript string) []SpeakerTurn {
	matches := speakerPattern.FindAllStringSubmatchIndex(transcript, -1)
	if len(matches) == 0 {
		return nil
	}

	turns := make([]SpeakerTurn, 0, len(matches))
	for i, m := range matches {
		label := transcript[m[0] : m[1]-1] // drop the trailing colon
		end := len(transcript)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		turns = append(turns, SpeakerTurn{
			Speaker: label,
			Text:    strings.TrimSpace(transcript[m[1]:end]),
		})
	}
	return turns
}

// distinctSpeakers returns the unique speaker labels in order of first
// appearance.
func distinctSpeakers(turns []SpeakerTurn) []string {
	seen := make(map[string]struct{}, 2)
	var labels []string
	for _, turn := range turns {
		if _, ok := seen[turn.Speaker]; ok {
			continue
		}
		seen[turn.Speaker] = struct{}{}
		labels = append(labels, turn.Speaker)
	}
	return labels
}
