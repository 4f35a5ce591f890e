package common

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9\s]`)
	slugSpaces   = regexp.MustCompile(`\s+`)
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// ShortToken 生成 12 字元的唯一識別碼
func ShortToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

// Slugify 將標題轉為網址安全的 slug，最長 maxLen 字元
func Slugify(title string, maxLen int) string {
	s := nonSlugChars.ReplaceAllString(strings.ToLower(title), "")
	s = slugSpaces.ReplaceAllString(strings.TrimSpace(s), "-")
	if maxLen > 0 && len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}
