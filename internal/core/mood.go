package core

import "strconv"

// HappyClass is the visual bucket a transaction's happy amount falls into.
// The server owns the amount-to-happy computation; the client only
// classifies the supplied value for display.
type HappyClass string

const (
	HappyNeutral  HappyClass = "neutral"
	HappyPositive HappyClass = "positive"
	HappyNegative HappyClass = "negative"
)

// MoodOption is one selectable point on the 5-point mood scale.
type MoodOption struct {
	Value int
	Label string
}

var moodLabels = map[int]struct {
	label string
	short string
}{
	-2: {"very negative (-2)", "worst"},
	-1: {"slightly negative (-1)", "bad"},
	0:  {"neutral (0)", "okay"},
	1:  {"slightly positive (+1)", "good"},
	2:  {"very positive (+2)", "best"},
}

const unknownMoodLabel = "unknown"

// MoodOptions returns the selectable mood scores in ascending order.
func MoodOptions() []MoodOption {
	opts := make([]MoodOption, 0, len(moodLabels))
	for v := MoodMin; v <= MoodMax; v++ {
		opts = append(opts, MoodOption{Value: v, Label: moodLabels[v].label})
	}
	return opts
}

// MoodLabel returns the display label for a mood score, or a fallback for
// values outside the scale.
func MoodLabel(score int) string {
	if m, ok := moodLabels[score]; ok {
		return m.label
	}
	return unknownMoodLabel
}

// MoodShortLabel returns the compact label used in tight layouts.
func MoodShortLabel(score int) string {
	if m, ok := moodLabels[score]; ok {
		return m.short
	}
	return unknownMoodLabel
}

// ClassifyHappy maps a (mood score, happy amount) pair to its visual bucket.
// Neutral mood is always neutral regardless of the amount; otherwise the
// sign of the server-supplied happy amount decides. A zero happy amount with
// a non-zero mood renders neutral. Total over all inputs.
func ClassifyHappy(moodScore int, happyAmount int64) HappyClass {
	if moodScore == 0 {
		return HappyNeutral
	}
	switch {
	case happyAmount > 0:
		return HappyPositive
	case happyAmount < 0:
		return HappyNegative
	default:
		return HappyNeutral
	}
}

// FormatSigned renders an amount with an explicit sign: "+500", "-200", "+0".
func FormatSigned(amount int64) string {
	if amount >= 0 {
		return "+" + strconv.FormatInt(amount, 10)
	}
	return strconv.FormatInt(amount, 10)
}
