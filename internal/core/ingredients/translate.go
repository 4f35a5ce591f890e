package ingredients

import (
	"regexp"
	"strings"
)

// translation 英文名稱片段與塞爾維亞文對照
type translation struct {
	english string
	lower   string
	serbian string
	pattern *regexp.Regexp
}

// Translator 英文食材名稱轉塞爾維亞文
type Translator struct {
	exact   map[string]string
	ordered []translation
}

// NewTranslator 依對照表順序建立；部分比對時以表中先出現者為準
func NewTranslator(pairs [][2]string) *Translator {
	t := &Translator{
		exact:   make(map[string]string, len(pairs)),
		ordered: make([]translation, 0, len(pairs)),
	}
	for _, p := range pairs {
		english, serbian := strings.TrimSpace(p[0]), strings.TrimSpace(p[1])
		if english == "" || serbian == "" {
			continue
		}
		if _, dup := t.exact[english]; !dup {
			t.ordered = append(t.ordered, translation{
				english: english,
				lower:   strings.ToLower(english),
				serbian: serbian,
				pattern: regexp.MustCompile("(?i)" + regexp.QuoteMeta(english)),
			})
		}
		t.exact[english] = serbian
	}
	// 重複的英文名稱以最後一次的譯名為準
	for i := range t.ordered {
		t.ordered[i].serbian = t.exact[t.ordered[i].english]
	}
	return t
}

// Translate 完全相符優先；否則把名稱中第一個包含的片段換成譯名；都沒有則原樣回傳
func (t *Translator) Translate(name string) string {
	if sr, ok := t.exact[name]; ok {
		return sr
	}
	lower := strings.ToLower(name)
	for _, tr := range t.ordered {
		if strings.Contains(lower, tr.lower) {
			return tr.pattern.ReplaceAllLiteralString(name, tr.serbian)
		}
	}
	return name
}

// Len 對照表條目數
func (t *Translator) Len() int {
	return len(t.ordered)
}
