package recipe

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"receptomat/internal/core/image"
	"receptomat/internal/pkg/common"

	"go.uber.org/zap"
)

const (
	blockMarker    = "###"
	maxTitleLength = 100
	slugMaxLength  = 50
)

var (
	blockDelimiter = regexp.MustCompile(`###\d+`)

	// 模型的開場白，不是食譜名稱
	metaTitlePhrases = []string{"evo", "predlažem", "mogu da", "recepti"}

	nothingMissing = map[string]bool{"ništa": true, "nista": true}
)

// lineKind 清單區塊內的行類型
type lineKind int

const (
	lineOther lineKind = iota
	lineDescription
	lineMethod
	lineTime
	lineDifficulty
	lineServings
	lineMissing
)

var lineMarkers = []struct {
	kind   lineKind
	prefix string
}{
	{lineDescription, "Opis:"},
	{lineMethod, "Način pripreme:"},
	{lineTime, "Vreme pripreme:"},
	{lineDifficulty, "Težina:"},
	{lineServings, "Porcije:"},
	{lineMissing, "Nedostaju:"},
}

// classifyLine 依行首標記判斷類型並回傳標記後的內容
func classifyLine(line string) (lineKind, string) {
	for _, m := range lineMarkers {
		if len(line) >= len(m.prefix) && strings.EqualFold(line[:len(m.prefix)], m.prefix) {
			return m.kind, strings.TrimSpace(line[len(m.prefix):])
		}
	}
	return lineOther, ""
}

// ListParser 把累積的模型輸出切成區塊並轉為食譜摘要
type ListParser struct {
	staples *StapleClassifier
	images  *image.Service
	round   string
}

// NewListParser 創建清單解析器
func NewListParser(staples *StapleClassifier, images *image.Service) ListParser {
	if staples == nil {
		staples = NewStapleClassifier(nil)
	}
	if images == nil {
		images = image.NewService(nil)
	}
	return ListParser{staples: staples, images: images}
}

// ForRound 回傳綁定輪次識別碼的解析器，同一輪內 ID 保持一致
func (p ListParser) ForRound(token string) ListParser {
	p.round = token
	return p
}

// Parse 解析全文，回傳序號 >= alreadyEmitted 且已完整的食譜（依區塊順序）
func (p ListParser) Parse(text string, servings, alreadyEmitted int) []Summary {
	blocks := splitBlocks(text)
	if alreadyEmitted < 0 {
		alreadyEmitted = 0
	}

	var out []Summary
	for i := alreadyEmitted; i < len(blocks); i++ {
		if s, ok := p.parseBlock(blocks[i], i, servings); ok {
			out = append(out, s)
		}
	}
	return out
}

// ParsePartial 串流進行中使用：最後一行尚未收到換行前不納入解析，
// 避免欄位只收到一半就被視為存在
func (p ListParser) ParsePartial(text string, servings, alreadyEmitted int) []Summary {
	return p.Parse(completeLines(text), servings, alreadyEmitted)
}

// completeLines 截到最後一個換行為止
func completeLines(text string) string {
	return text[:strings.LastIndexByte(text, '\n')+1]
}

// splitBlocks 丟棄第一個 ### 之前的內容，再以 ###<n> 分段
func splitBlocks(text string) []string {
	start := strings.Index(text, blockMarker)
	if start < 0 {
		return nil
	}

	parts := blockDelimiter.Split(text[start:], -1)
	blocks := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		blocks = append(blocks, part)
	}
	return blocks
}

// blockLines 去除粗體標記並拆成非空行
func blockLines(block string) []string {
	raw := strings.Split(strings.TrimSpace(block), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(strings.ReplaceAll(l, "**", ""))
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func (p ListParser) parseBlock(block string, index, servings int) (Summary, bool) {
	lines := blockLines(block)
	if len(lines) == 0 {
		return Summary{}, false
	}

	title := lines[0]
	if isMetaTitle(title) {
		common.LogDebug("略過非食譜區塊", zap.Int("block", index), zap.String("title", title))
		return Summary{}, false
	}

	fields := make(map[lineKind]string, len(lineMarkers))
	for _, line := range lines[1:] {
		kind, value := classifyLine(line)
		if kind == lineOther {
			continue
		}
		// 同一欄位以第一次出現為準
		if _, seen := fields[kind]; !seen {
			fields[kind] = value
		}
	}

	_, hasDescription := fields[lineDescription]
	_, hasMethod := fields[lineMethod]
	if !hasDescription || !hasMethod {
		return Summary{}, false
	}

	return Summary{
		ID:                 p.summaryID(title, index),
		Title:              title,
		Description:        orDefault(fields[lineDescription], DefaultDescription),
		Method:             orDefault(fields[lineMethod], DefaultMethod),
		Time:               orDefault(fields[lineTime], DefaultTime),
		Difficulty:         orDefault(fields[lineDifficulty], DefaultDifficulty),
		Servings:           parseServings(fields[lineServings], servings),
		UsedCount:          0,
		MissingIngredients: p.parseMissing(fields[lineMissing]),
		ImageURL:           p.images.ForIndex(index),
		IsRecipe:           true,
		BlockIndex:         index,
	}, true
}

func isMetaTitle(title string) bool {
	if utf8.RuneCountInString(title) > maxTitleLength {
		return true
	}
	lower := strings.ToLower(title)
	for _, phrase := range metaTitlePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// parseMissing 逗號分隔，去除基本食材與重複項
func (p ListParser) parseMissing(value string) []string {
	missing := []string{}
	normalized := strings.ToLower(strings.TrimRight(strings.TrimSpace(value), "."))
	if normalized == "" || nothingMissing[normalized] {
		return missing
	}

	seen := make(map[string]bool)
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		key := strings.ToLower(item)
		if item == "" || seen[key] || p.staples.IsStaple(item) {
			continue
		}
		seen[key] = true
		missing = append(missing, item)
	}
	return missing
}

// parseServings 取行首的數字，取不到或為 0 時使用請求的份數
func parseServings(value string, fallback int) int {
	end := strings.IndexFunc(value, func(r rune) bool { return !unicode.IsDigit(r) })
	if end < 0 {
		end = len(value)
	}
	n, err := strconv.Atoi(value[:end])
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func (p ListParser) summaryID(title string, index int) string {
	slug := common.Slugify(title, slugMaxLength)
	if slug == "" {
		slug = "recept"
	}
	if p.round == "" {
		return slug + "-" + strconv.Itoa(index)
	}
	return slug + "-" + p.round + "-" + strconv.Itoa(index)
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
