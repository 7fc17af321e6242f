// Package reward computes learning-coin amounts for writing tasks. Rewards
// scale with absolute difficulty (stroke counts) and with difficulty relative
// to what the learner's grade tier expects, so in-range challenge earns more
// than trivial or wildly mismatched content.
package reward

import "github.com/hanzi-quest/backend/internal/models"

// StrokeRange is the stroke band a grade tier is expected to handle.
type StrokeRange struct {
	Min int
	Max int
}

// GradeStrokeRanges maps learning grade (1-7) to its expected stroke band,
// per the Taiwan MOE curriculum progression.
var GradeStrokeRanges = map[int]StrokeRange{
	1: {5, 10},
	2: {8, 13},
	3: {10, 16},
	4: {13, 20},
	5: {16, 25},
	6: {16, 25},
	7: {18, 30},
}

// GradeDifficulty maps learning grade to its curriculum-level description,
// used in generation prompts.
var GradeDifficulty = map[int]string{
	1: "二年級程度",
	2: "三年級程度",
	3: "四年級程度",
	4: "五年級程度",
	5: "六年級程度",
	6: "六年級程度",
	7: "六年級進階（含冷僻字）",
}

// RangeForGrade returns the stroke band for a grade, defaulting to the
// mid-curriculum band for out-of-range grades.
func RangeForGrade(grade int) StrokeRange {
	if r, ok := GradeStrokeRanges[grade]; ok {
		return r
	}
	return GradeStrokeRanges[3]
}

const (
	characterCap = 10
	wordCap      = 9
	phraseCap    = 10
)

// Character computes the coin reward for a single-character writing task.
// Base 3, adjusted by how the stroke count sits against the grade band,
// legacy absolute-stroke bonuses (stacked additively with the band bonus),
// a repetition bonus, and the advanced-tier bonus. Capped at 10.
func Character(strokes, repetitions, grade int) int {
	r := RangeForGrade(grade)
	reward := 3

	switch {
	case strokes < r.Min:
		reward--
	case strokes > r.Max:
		reward += 2
	default:
		reward++
	}

	switch {
	case strokes >= 20:
		reward += 3
	case strokes >= 17:
		reward += 2
	case strokes >= 13:
		reward++
	}

	switch {
	case repetitions >= 9:
		reward += 3
	case repetitions >= 8:
		reward += 2
	case repetitions >= 5:
		reward++
	}

	if grade == models.AdvancedGrade {
		reward++
	}

	if reward > characterCap {
		return characterCap
	}
	return reward
}

// Word computes the coin reward for a word-writing task from the word's
// total stroke count and character length. Base 5, capped at 9.
func Word(totalStrokes, length, grade int) int {
	r := RangeForGrade(grade)
	reward := 5

	if length > 0 {
		average := float64(totalStrokes) / float64(length)
		if average < float64(r.Min) {
			reward--
		} else if average > float64(r.Max) {
			reward++
		}
	}

	switch {
	case totalStrokes >= 30:
		reward += 2
	case totalStrokes >= 25:
		reward++
	}

	if grade == models.AdvancedGrade {
		reward++
	}

	if reward > wordCap {
		return wordCap
	}
	return reward
}

// Phrase computes the coin reward for a sentence-writing task. Base 6 (the
// highest cognitive load), with a complexity bonus keyed on total strokes OR
// character count — the conditions alternate, they do not stack. Capped at 10.
func Phrase(totalStrokes, length, grade int) int {
	r := RangeForGrade(grade)
	reward := 6

	if length > 0 {
		average := float64(totalStrokes) / float64(length)
		if average < float64(r.Min) {
			reward--
		} else if average > float64(r.Max) {
			reward++
		}
	}

	switch {
	case totalStrokes >= 25 || length >= 3:
		reward += 2
	case totalStrokes >= 18 || length >= 2:
		reward++
	}

	if grade == models.AdvancedGrade {
		reward++
	}

	if reward > phraseCap {
		return phraseCap
	}
	return reward
}
