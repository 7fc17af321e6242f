// Package fallback supplies curated daily-task content when AI generation
// cannot deliver enough unique tasks. Content follows the Taiwan MOE
// ahead-of-grade curriculum: the table is indexed by learning grade, so each
// entry already holds material one year ahead of the learner's nominal grade.
package fallback

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/hanzi-quest/backend/internal/models"
	"github.com/hanzi-quest/backend/internal/reward"
	"github.com/hanzi-quest/backend/internal/strokes"
)

// GradeContent is the curated material for one learning-grade tier.
type GradeContent struct {
	Characters  []string
	Words       []string
	Phrases     []string
	StrokeRange reward.StrokeRange
	Difficulty  string
}

// DefaultContent maps learning grade (1-7) to its curated lists.
var DefaultContent = map[int]GradeContent{
	1: {
		Characters:  []string{"明", "朋", "友", "故", "事", "新", "舊", "左", "右", "方"},
		Words:       []string{"朋友", "故事", "新年", "左右", "方向", "時候"},
		Phrases:     []string{"朋友", "故事", "新年", "時候"},
		StrokeRange: reward.StrokeRange{Min: 5, Max: 10},
		Difficulty:  "二年級程度",
	},
	2: {
		Characters:  []string{"班", "級", "同", "學", "老", "師", "教", "室", "功", "課"},
		Words:       []string{"班級", "同學", "老師", "教室", "功課", "學習"},
		Phrases:     []string{"同學", "老師", "學習", "功課"},
		StrokeRange: reward.StrokeRange{Min: 8, Max: 13},
		Difficulty:  "三年級程度",
	},
	3: {
		Characters:  []string{"環", "境", "保", "護", "污", "染", "清", "潔", "資", "源"},
		Words:       []string{"環境", "保護", "污染", "清潔", "資源", "回收"},
		Phrases:     []string{"環境", "保護", "污染", "資源"},
		StrokeRange: reward.StrokeRange{Min: 10, Max: 16},
		Difficulty:  "四年級程度",
	},
	4: {
		Characters:  []string{"民", "主", "自", "由", "平", "等", "正", "義", "法", "律"},
		Words:       []string{"民主", "自由", "平等", "正義", "法律", "權利"},
		Phrases:     []string{"民主", "自由", "正義", "權利"},
		StrokeRange: reward.StrokeRange{Min: 13, Max: 20},
		Difficulty:  "五年級程度",
	},
	5: {
		Characters:  []string{"科", "學", "技", "術", "發", "明", "創", "新", "實", "驗"},
		Words:       []string{"科學", "技術", "發明", "創新", "實驗", "研究"},
		Phrases:     []string{"科學", "技術", "創新", "研究"},
		StrokeRange: reward.StrokeRange{Min: 16, Max: 25},
		Difficulty:  "六年級程度",
	},
	6: {
		Characters:  []string{"哲", "學", "思", "想", "邏", "輯", "推", "理", "分", "析"},
		Words:       []string{"哲學", "思想", "邏輯", "推理", "分析", "判斷"},
		Phrases:     []string{"哲學", "邏輯", "分析", "判斷"},
		StrokeRange: reward.StrokeRange{Min: 16, Max: 25},
		Difficulty:  "六年級程度",
	},
	7: {
		Characters:  []string{"璀", "璨", "磅", "礴", "澎", "湃", "蒼", "穹", "翱", "翔"},
		Words:       []string{"璀璨", "磅礴", "澎湃", "蒼穹", "翱翔", "浩瀚"},
		Phrases:     []string{"璀璨", "磅礴", "蒼穹", "翱翔"},
		StrokeRange: reward.StrokeRange{Min: 18, Max: 30},
		Difficulty:  "六年級進階（含冷僻字）",
	},
}

// Provider synthesizes fallback tasks from injected content tables.
type Provider struct {
	content map[int]GradeContent
	strokes *strokes.Lookup
}

func NewProvider(content map[int]GradeContent, lookup *strokes.Lookup) *Provider {
	if content == nil {
		content = DefaultContent
	}
	return &Provider{content: content, strokes: lookup}
}

// Tasks builds exactly one character, one word, and one phrase task for the
// given date and learning grade. Each list contributes its first entry not in
// the used set; if every entry has been used the first entry is reused —
// exhaustion is not fatal.
func (p *Provider) Tasks(ctx context.Context, date time.Time, grade int, used map[string]bool) []models.DailyTask {
	content, ok := p.content[grade]
	if !ok {
		content = p.content[3]
	}

	tasks := make([]models.DailyTask, 0, 3)

	char := firstUnused(content.Characters, used)
	charStrokes := p.strokes.StrokeCount(ctx, []rune(char)[0])
	repetitions := clamp(int(math.Ceil(float64(charStrokes)/2)), 5, 10)
	tasks = append(tasks, models.DailyTask{
		ID:      uuid.New().String(),
		Date:    date,
		Content: char,
		Type:    models.TaskTypeCharacter,
		Details: models.TaskDetails{Strokes: charStrokes, Repetitions: repetitions},
		Status:  models.TaskPending,
		Reward:  reward.Character(charStrokes, repetitions, grade),
	})

	word := firstUnused(content.Words, used)
	wordLen := len([]rune(word))
	wordStrokes := p.strokes.WordTotal(ctx, word)
	wordRepetitions := clamp(wordLen*3, 5, 8)
	tasks = append(tasks, models.DailyTask{
		ID:      uuid.New().String(),
		Date:    date,
		Content: word,
		Type:    models.TaskTypeWord,
		Details: models.TaskDetails{Strokes: wordStrokes, Repetitions: wordRepetitions},
		Status:  models.TaskPending,
		Reward:  reward.Word(wordStrokes, wordLen, grade),
	})

	phrase := firstUnused(content.Phrases, used)
	phraseLen := len([]rune(phrase))
	phraseStrokes := p.strokes.WordTotal(ctx, phrase)
	tasks = append(tasks, models.DailyTask{
		ID:      uuid.New().String(),
		Date:    date,
		Content: phrase,
		Type:    models.TaskTypePhrase,
		Details: models.TaskDetails{
			Sentence: fmt.Sprintf("請用「%s」造一個完整的句子，要能表達出詞語的意思。", phrase),
		},
		Status: models.TaskPending,
		Reward: reward.Phrase(phraseStrokes, phraseLen, grade),
	})

	return tasks
}

func firstUnused(list []string, used map[string]bool) string {
	for _, entry := range list {
		if !used[entry] {
			return entry
		}
	}
	return list[0]
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
