package generator

import (
	"fmt"
	"strings"

	"github.com/hanzi-quest/backend/internal/reward"
)

// Request carries everything the prompt needs: the learner's age, the
// ahead-of-grade learning tier, and content already assigned so the model
// can avoid repeats.
type Request struct {
	UserAge          int
	Grade            int
	PreviousContents []string
}

// gradeFocus returns the curriculum emphasis block for a learning tier.
func gradeFocus(grade int) string {
	switch {
	case grade <= 2:
		return `- 學習重點：形聲字、會意字、生活常用詞
- 詞彙特色：校園生活、人際關係、基礎情感表達
- 注音考量：注意多音字（如：重、長、好）
- 範例詞彙：朋友、故事、老師、同學、班級`
	case grade <= 4:
		return `- 學習重點：抽象概念詞、社會議題、環境認知
- 詞彙特色：品格教育、環境保護、公民意識
- 注音考量：破音字、語音變化
- 範例詞彙：環境、保護、民主、自由、正義`
	case grade == 7:
		return `- 學習重點：文學詞彙、古典用語、高階抽象概念
- 詞彙特色：30%冷僻字比例、成語典故、詩詞用語
- 注音考量：古音讀法、文白異讀
- 範例詞彙：璀璨、磅礴、蒼穹、翱翔、浩瀚`
	default:
		return `- 學習重點：科學概念、邏輯思維、學術詞彙
- 詞彙特色：抽象思考、科技發展、哲學概念
- 注音考量：專業術語、外來語音譯
- 範例詞彙：科學、技術、邏輯、分析、創新`
	}
}

// BuildPrompt renders the generation prompt for a request. The exclusion
// list arrives already capped by the caller.
func BuildPrompt(req Request) string {
	exclusions := "無"
	if len(req.PreviousContents) > 0 {
		exclusions = strings.Join(req.PreviousContents, "、")
	}

	band := reward.RangeForGrade(req.Grade)
	difficulty := reward.GradeDifficulty[req.Grade]
	if difficulty == "" {
		difficulty = reward.GradeDifficulty[3]
	}

	advancedBonus := ""
	if req.Grade == 7 {
		advancedBonus = "\n- 六年級進階額外獎勵：+1學習幣"
	}

	return fmt.Sprintf(`你是台灣國小國語文教學專家，熟悉教育部課程綱要。請為%d歲學生生成3個超前學習任務。

**超前學習概念：**
- 學生年齡：%d歲
- 學習內容：%s
- 目標筆畫：%d-%d筆畫
- 台灣教材：參考教育部常用字頻表、部編國語課本

**嚴格避重規則：**
🚫 **絕對不可使用已學字詞：** %s

**生成3個任務：**
1. 單字書寫任務（含筆劃數、練習次數）
2. 詞語書寫任務（雙字詞，重複練習）
3. 詞語造句應用（提供造句指導）

**台灣教育部標準要求：**
%s

**獎勵計算（符合台灣教學標準）：**
- 單字任務：基礎3 + 筆畫符合度加成 + 傳統難度加成 + 次數加成，上限10
  - 符合年級筆畫範圍：+1
  - 超出年級範圍（挑戰性）：+2
  - 低於年級範圍：-1
- 詞語書寫：基礎5 + 複雜度加成(25-29筆畫+1, 30+筆畫+2)，範圍6-9學習幣
- 詞語造句：基礎6 + 複雜度加成(18-24筆畫或2字+1, 25+筆畫或3字+2)，範圍7-10學習幣%s

**品質檢核：**
1. 所有詞彙符合台灣用語習慣
2. 避開簡體字、異體字
3. 符合該年級認知發展程度
4. 具備教育意義和文化內涵

**範例格式：**
{
  "tasks": [
    {
      "content": "朋",
      "type": "character",
      "details": {"strokes": 8, "repetitions": 5},
      "reward": 6
    },
    {
      "content": "朋友",
      "type": "word",
      "details": {"repetitions": 6},
      "reward": 6
    },
    {
      "content": "故事",
      "type": "phrase",
      "details": {"sentence": "請用『故事』造一個完整的句子，描述你聽過的故事"},
      "reward": 7
    }
  ]
}`,
		req.UserAge, req.UserAge, difficulty, band.Min, band.Max,
		exclusions, gradeFocus(req.Grade), advancedBonus)
}
