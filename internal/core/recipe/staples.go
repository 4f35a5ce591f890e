package recipe

import "strings"

// DefaultStaples 不計入缺少食材的基本調味與液體
var DefaultStaples = []string{
	"so", "salt", "biber", "pepper", "ulje", "oil", "maslinovo ulje", "olive oil",
	"voda", "water", "belo sirće", "vinegar", "limunov sok", "lemon juice",
}

// StapleClassifier 判斷食材是否為基本食材
type StapleClassifier struct {
	staples []string
}

// NewStapleClassifier 清單為空時使用 DefaultStaples
func NewStapleClassifier(staples []string) *StapleClassifier {
	if len(staples) == 0 {
		staples = DefaultStaples
	}
	normalized := make([]string, 0, len(staples))
	for _, s := range staples {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			normalized = append(normalized, s)
		}
	}
	return &StapleClassifier{staples: normalized}
}

// IsStaple 名稱包含任一基本食材（不分大小寫）即視為基本食材
func (c *StapleClassifier) IsStaple(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return false
	}
	for _, s := range c.staples {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
