package learning

import (
	"encoding"
	"fmt"
	"strings"
)

// Quality is the learner's rating of how easily a word was recalled.
type Quality int

const (
	Again Quality = iota + 1 // Complete failure to recall.
	Hard                     // Recalled with significant difficulty.
	Good                     // Recalled after some hesitation.
	Easy                     // Recalled effortlessly.
)

// passingScore is the lowest score that counts as a successful recall.
const passingScore = 3.0

var (
	qualityNames  = [...]string{Again: "Again", Hard: "Hard", Good: "Good", Easy: "Easy"}
	qualityScores = [...]float64{Again: 0, Hard: 3, Good: 4, Easy: 5}
)

var (
	_ fmt.Stringer             = Quality(0)
	_ encoding.TextMarshaler   = Quality(0)
	_ encoding.TextUnmarshaler = (*Quality)(nil)
)

// IsValid reports whether q is one of Again, Hard, Good or Easy.
func (q Quality) IsValid() bool {
	return q >= Again && q <= Easy
}

// String returns the name of the quality. Invalid values render as "Quality(n)".
func (q Quality) String() string {
	if q.IsValid() {
		return qualityNames[q]
	}
	return fmt.Sprintf("Quality(%d)", int(q))
}

// score maps q onto the 0-5 SM-2 scale.
func (q Quality) score() (float64, error) {
	if !q.IsValid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidQuality, int(q))
	}
	return qualityScores[q], nil
}

// ParseQuality parses a quality name, ignoring case.
func ParseQuality(s string) (Quality, error) {
	for q := Again; q <= Easy; q++ {
		if strings.EqualFold(qualityNames[q], strings.TrimSpace(s)) {
			return q, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidQuality, s)
}

// MarshalText implements encoding.TextMarshaler.
func (q Quality) MarshalText() ([]byte, error) {
	if !q.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuality, int(q))
	}
	return []byte(qualityNames[q]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (q *Quality) UnmarshalText(text []byte) error {
	v, err := ParseQuality(string(text))
	if err != nil {
		return err
	}
	*q = v
	return nil
}
