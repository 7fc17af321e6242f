package reward

import "testing"

func TestCharacter_Bounds(t *testing.T) {
	for grade := 1; grade <= 7; grade++ {
		for strokes := 1; strokes <= 35; strokes++ {
			for _, reps := range []int{1, 5, 8, 9, 10} {
				got := Character(strokes, reps, grade)
				if got < 2 || got > 10 {
					t.Fatalf("Character(%d, %d, %d) = %d, want within [2, 10]",
						strokes, reps, grade, got)
				}
			}
		}
	}
}

func TestCharacter_MonotonicWithinTiers(t *testing.T) {
	// Within a grade, more strokes never means fewer coins.
	for grade := 1; grade <= 7; grade++ {
		prev := 0
		for strokes := 1; strokes <= 35; strokes++ {
			got := Character(strokes, 5, grade)
			if got < prev {
				t.Fatalf("grade %d: reward dropped from %d to %d at %d strokes",
					grade, prev, got, strokes)
			}
			prev = got
		}
	}
}

func TestCharacter_Values(t *testing.T) {
	tests := []struct {
		name               string
		strokes, reps, grade int
		want               int
	}{
		// Grade 3 band is [10, 16].
		{"below band", 8, 1, 3, 2},              // 3 - 1
		{"in band", 12, 1, 3, 4},                // 3 + 1
		{"in band with legacy bonus", 13, 1, 3, 5}, // 3 + 1 + 1
		{"above band", 17, 1, 3, 7},             // 3 + 2 + 2
		{"heavy strokes capped", 30, 10, 3, 10}, // 3+2+3+3 = 11 → 10
		{"repetition tiers", 12, 5, 3, 5},       // 3 + 1 + 1
		{"repetition eight", 12, 8, 3, 6},       // 3 + 1 + 2
		{"advanced tier bonus", 19, 5, 7, 8},    // 3 + 1 + 2 + 1 + 1
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Character(tt.strokes, tt.reps, tt.grade); got != tt.want {
				t.Errorf("Character(%d, %d, %d) = %d, want %d",
					tt.strokes, tt.reps, tt.grade, got, tt.want)
			}
		})
	}
}

func TestWord_Values(t *testing.T) {
	tests := []struct {
		name                 string
		total, length, grade int
		want                 int
	}{
		// Grade 3 band [10, 16]; average = total / length.
		{"average below band", 12, 2, 3, 4},   // 5 - 1
		{"average in band", 24, 2, 3, 5},      // 5
		{"total bonus 25", 26, 2, 3, 6},       // 5 + 1 (avg 13 in band)
		{"total bonus 30", 32, 2, 3, 7},       // 5 + 2 (avg 16 in band)
		{"challenging average", 36, 2, 3, 8},  // 5 + 1 + 2
		{"cap at nine", 70, 2, 7, 9},          // 5 + 1 + 2 + 1 = 9
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Word(tt.total, tt.length, tt.grade); got != tt.want {
				t.Errorf("Word(%d, %d, %d) = %d, want %d",
					tt.total, tt.length, tt.grade, got, tt.want)
			}
		})
	}
}

func TestPhrase_ComplexityBonusIsAlternative(t *testing.T) {
	// Grade 3 band [10, 16]. 2 characters and 24 total strokes: the +1 tier
	// matches via length>=2, the +2 tier does not (needs 25 strokes or 3
	// characters) — the two tiers never stack.
	if got := Phrase(24, 2, 3); got != 7 { // 6 + 1
		t.Errorf("Phrase(24, 2, 3) = %d, want 7", got)
	}
	// 25 strokes at 2 characters crosses into the +2 tier only.
	if got := Phrase(25, 2, 3); got != 8 { // 6 + 2
		t.Errorf("Phrase(25, 2, 3) = %d, want 8", got)
	}
	// 3 characters triggers +2 regardless of strokes; avg 11 is in band.
	if got := Phrase(33, 3, 3); got != 8 {
		t.Errorf("Phrase(33, 3, 3) = %d, want 8", got)
	}
}

func TestPhrase_Cap(t *testing.T) {
	// 6 + 1 (avg above band) + 2 (complexity) + 1 (advanced) = 10.
	if got := Phrase(95, 3, 7); got != 10 {
		t.Errorf("Phrase(95, 3, 7) = %d, want 10", got)
	}
}

func TestRangeForGrade_Default(t *testing.T) {
	if got := RangeForGrade(0); got != GradeStrokeRanges[3] {
		t.Errorf("RangeForGrade(0) = %+v, want the grade-3 band", got)
	}
	if got := RangeForGrade(7); (got != StrokeRange{18, 30}) {
		t.Errorf("RangeForGrade(7) = %+v, want {18 30}", got)
	}
}
