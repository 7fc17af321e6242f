package generator

import (
	"strings"
	"testing"
)

func TestBuildPrompt_EmbedsAgeAndBand(t *testing.T) {
	prompt := BuildPrompt(Request{UserAge: 8, Grade: 3})

	for _, want := range []string{"8歲", "四年級程度", "10-16筆畫"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPrompt_ExclusionList(t *testing.T) {
	prompt := BuildPrompt(Request{
		UserAge:          9,
		Grade:            4,
		PreviousContents: []string{"環境", "保護", "民"},
	})
	if !strings.Contains(prompt, "環境、保護、民") {
		t.Error("prompt missing the joined exclusion list")
	}

	empty := BuildPrompt(Request{UserAge: 9, Grade: 4})
	if !strings.Contains(empty, "絕對不可使用已學字詞：** 無") {
		t.Error("prompt without history should declare 無")
	}
}

func TestBuildPrompt_GradeFocusTiers(t *testing.T) {
	tests := []struct {
		grade int
		want  string
	}{
		{1, "形聲字"},
		{2, "形聲字"},
		{3, "環境保護"},
		{4, "環境保護"},
		{5, "科學概念"},
		{6, "科學概念"},
		{7, "冷僻字"},
	}

	for _, tt := range tests {
		prompt := BuildPrompt(Request{UserAge: 10, Grade: tt.grade})
		if !strings.Contains(prompt, tt.want) {
			t.Errorf("grade %d prompt missing focus marker %q", tt.grade, tt.want)
		}
	}
}

func TestBuildPrompt_AdvancedBonusOnlyAtGradeSeven(t *testing.T) {
	if !strings.Contains(BuildPrompt(Request{UserAge: 12, Grade: 7}), "六年級進階額外獎勵") {
		t.Error("grade-7 prompt missing the advanced bonus rule")
	}
	if strings.Contains(BuildPrompt(Request{UserAge: 9, Grade: 4}), "六年級進階額外獎勵") {
		t.Error("grade-4 prompt should not mention the advanced bonus rule")
	}
}

func TestBuildPrompt_WorkedExample(t *testing.T) {
	prompt := BuildPrompt(Request{UserAge: 8, Grade: 2})
	if !strings.Contains(prompt, `"tasks"`) || !strings.Contains(prompt, `"type": "phrase"`) {
		t.Error("prompt missing the worked output example")
	}
}
