package models

import "testing"

func TestGrades(t *testing.T) {
	tests := []struct {
		age           int
		displayGrade  int
		learningGrade int
	}{
		{5, 1, 2},  // below school age clamps to grade 1
		{6, 1, 2},
		{7, 1, 2},
		{8, 2, 3},
		{9, 3, 4},
		{10, 4, 5},
		{11, 5, 6},
		{12, 6, 7},
		{13, 6, 7}, // display clamps at 6, learning at the advanced tier
		{18, 6, 7},
	}

	for _, tt := range tests {
		if got := DisplayGrade(tt.age); got != tt.displayGrade {
			t.Errorf("DisplayGrade(%d) = %d, want %d", tt.age, got, tt.displayGrade)
		}
		if got := LearningGrade(tt.age); got != tt.learningGrade {
			t.Errorf("LearningGrade(%d) = %d, want %d", tt.age, got, tt.learningGrade)
		}
	}
}

func TestLearningGradeIsAlwaysAhead(t *testing.T) {
	for age := 3; age <= 18; age++ {
		display := DisplayGrade(age)
		learning := LearningGrade(age)
		if learning <= display && learning != AdvancedGrade {
			t.Errorf("age %d: learning grade %d not ahead of display grade %d", age, learning, display)
		}
		if learning > AdvancedGrade {
			t.Errorf("age %d: learning grade %d above the advanced tier", age, learning)
		}
	}
}
