package recipe

import (
	"regexp"
	"strings"
)

var (
	ruleLine       = regexp.MustCompile(`^[-=#*]+$`)
	headingPrefix  = regexp.MustCompile(`^#+\s*`)
	bulletPrefix   = regexp.MustCompile(`^[-•]\s*`)
	numberedPrefix = regexp.MustCompile(`^\d+\.?\s`)
	timeHeader     = regexp.MustCompile(`(?i)^vreme pripreme:\s*`)
	tipHeader      = regexp.MustCompile(`(?i)^.*?receptomat savet\s*:?\s*`)
)

// detailState 完整食譜解析的區段狀態
type detailState int

const (
	stateNone detailState = iota
	stateIngredients
	stateSteps
	stateTip
)

func (s detailState) String() string {
	switch s {
	case stateIngredients:
		return "ingredients"
	case stateSteps:
		return "steps"
	case stateTip:
		return "tip"
	default:
		return "none"
	}
}

// detailLineKind 單行的分類
type detailLineKind int

const (
	detailContent detailLineKind = iota
	detailIngredientsHeader
	detailStepsHeader
	detailTimeHeader
	detailTipHeader
)

// classifyDetailLine 不分大小寫的子字串比對；savet 優先，避免建議內文被當成區段標題
func classifyDetailLine(line string) detailLineKind {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "receptomat savet"):
		return detailTipHeader
	case strings.Contains(lower, "vreme pripreme"):
		return detailTimeHeader
	case strings.Contains(lower, "sastojci"):
		return detailIngredientsHeader
	case strings.Contains(lower, "priprema"):
		return detailStepsHeader
	default:
		return detailContent
	}
}

// detailMachine 逐行推進的狀態機
type detailMachine struct {
	state  detailState
	detail Detail
	tip    []string
}

// step 處理一行並回傳下一個狀態
func (m *detailMachine) step(line string) detailState {
	kind := classifyDetailLine(line)

	if m.state == stateTip {
		// 進入 tip 後不再切換區段
		if kind != detailTipHeader {
			m.tip = append(m.tip, line)
		}
		return stateTip
	}

	switch kind {
	case detailTipHeader:
		if rest := strings.TrimSpace(tipHeader.ReplaceAllString(line, "")); rest != "" {
			m.tip = append(m.tip, rest)
		}
		return stateTip
	case detailTimeHeader:
		m.detail.Time = strings.TrimSpace(timeHeader.ReplaceAllString(line, ""))
		return m.state
	case detailIngredientsHeader:
		return stateIngredients
	case detailStepsHeader:
		return stateSteps
	}

	switch m.state {
	case stateIngredients:
		switch {
		case bulletPrefix.MatchString(line):
			line = bulletPrefix.ReplaceAllString(line, "")
		case numberedPrefix.MatchString(line):
			line = numberedPrefix.ReplaceAllString(line, "")
		}
		if line != "" {
			m.detail.Ingredients = append(m.detail.Ingredients, line)
		}
	case stateSteps:
		line = numberedPrefix.ReplaceAllString(line, "")
		if line != "" {
			m.detail.Steps = append(m.detail.Steps, line)
		}
	default:
		if m.detail.Title == "" {
			m.detail.Title = strings.TrimSpace(headingPrefix.ReplaceAllString(line, ""))
		}
	}
	return m.state
}

// DetailParser 解析單一食譜的完整內容
type DetailParser struct{}

// Parse 每次都從頭解析累積的全文
func (DetailParser) Parse(text string) Detail {
	m := &detailMachine{
		detail: Detail{Ingredients: []string{}, Steps: []string{}},
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(strings.ReplaceAll(raw, "**", ""))
		if line == "" || ruleLine.MatchString(line) {
			continue
		}
		m.state = m.step(line)
	}

	d := m.detail
	d.Tip = strings.TrimSpace(strings.Join(m.tip, " "))
	if d.Title == "" {
		d.Title = DetailTitleLoading
	}
	if d.Time == "" {
		d.Time = DetailTimeLoading
	}
	return d
}
