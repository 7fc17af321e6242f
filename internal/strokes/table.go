package strokes

// DefaultTable holds curated stroke counts for characters that appear in the
// built-in curriculum content, plus common primary-school characters. It is
// consulted when the stroke-data service cannot answer.
var DefaultTable = map[rune]int{
	// Grade 1-2 curriculum
	'明': 8, '朋': 8, '友': 4, '故': 9, '事': 8,
	'新': 13, '舊': 18, '左': 5, '右': 5, '方': 4,
	'年': 6, '時': 10, '候': 10, '向': 6,
	// Grade 3 curriculum
	'班': 10, '級': 10, '同': 6, '學': 16, '老': 6,
	'師': 10, '教': 11, '室': 9, '功': 5, '課': 15, '習': 11,
	// Grade 4 curriculum
	'環': 17, '境': 14, '保': 9, '護': 20, '污': 6,
	'染': 9, '清': 11, '潔': 15, '資': 13, '源': 13, '回': 6, '收': 6,
	// Grade 5 curriculum
	'民': 5, '主': 5, '自': 6, '由': 5, '平': 5,
	'等': 12, '正': 5, '義': 13, '法': 8, '律': 9, '權': 21, '利': 7,
	// Grade 6 curriculum
	'科': 9, '技': 7, '術': 11, '發': 12, '創': 12,
	'實': 14, '驗': 23, '研': 9, '究': 7,
	'哲': 10, '思': 9, '想': 13, '邏': 23, '輯': 16,
	'推': 11, '理': 11, '分': 4, '析': 8, '判': 7, '斷': 18,
	// Advanced tier (rare characters)
	'璀': 15, '璨': 17, '磅': 15, '礴': 21, '澎': 15,
	'湃': 12, '蒼': 13, '穹': 8, '翱': 16, '翔': 12, '浩': 10, '瀚': 19,
	// Common characters
	'人': 2, '大': 3, '小': 3, '山': 3, '水': 4, '火': 4,
	'天': 4, '日': 4, '月': 4, '中': 4, '心': 4, '文': 4,
	'好': 6, '字': 6, '美': 9, '書': 10, '寫': 15, '讀': 22, '語': 14,
}
