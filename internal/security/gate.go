package security

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/cost-copilot/backend/pkg/logger"
)

const (
	maxInputLength = 2000
	maxLineBreaks  = 10
)

// blockedPatterns are matched case-insensitively against raw input.
var blockedPatterns = []string{
	"ignore all previous instructions",
	"disregard system prompt",
	"act as if you are",
	"pretend you are",
	"roleplay as",
	"system:",
	"assistant:",
	"user:",
	"### instruction",
	"### system",
	"override security",
	"bypass security",
	"jailbreak",
	"<script>",
	"javascript:",
	"data:",
	"drop table",
	"delete from",
	"insert into",
	"update set",
}

var scriptIndicators = []string{
	"function(",
	"eval(",
	"exec(",
	"import ",
	"require(",
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Gate validates and sanitizes raw question text before anything else
// touches it. It is stateless; both methods are pure apart from logging.
type Gate struct{}

func NewGate() *Gate {
	return &Gate{}
}

// PatternCount reports how many blocked patterns are monitored. Surfaced in
// the security report answer.
func (g *Gate) PatternCount() int {
	return len(blockedPatterns)
}

// Check reports whether the input must be rejected, and why.
func (g *Gate) Check(input string) (bool, string) {
	lowered := strings.ToLower(strings.TrimSpace(input))

	for _, pattern := range blockedPatterns {
		if strings.Contains(lowered, pattern) {
			logger.Warn("Blocked input matched security pattern", zap.String("pattern", pattern))
			return true, fmt.Sprintf("detected potential security risk: %s", pattern)
		}
	}

	if strings.Count(input, "\n") > maxLineBreaks {
		return true, "input contains excessive line breaks"
	}

	if utf8.RuneCountInString(input) > maxInputLength {
		return true, "input exceeds maximum length"
	}

	for _, indicator := range scriptIndicators {
		if strings.Contains(lowered, indicator) {
			return true, fmt.Sprintf("input contains script-like content: %s", indicator)
		}
	}

	return false, ""
}

// Sanitize strips control characters and markup from input while keeping the
// question readable. Idempotent: Sanitize(Sanitize(x)) == Sanitize(x).
func (g *Gate) Sanitize(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if r >= 32 || r == '\n' || r == '\t' {
			b.WriteRune(r)
		}
	}
	sanitized := b.String()

	// Truncate by characters, never mid-rune.
	if utf8.RuneCountInString(sanitized) > maxInputLength {
		runes := []rune(sanitized)
		sanitized = string(runes[:maxInputLength])
	}

	sanitized = tagPattern.ReplaceAllString(sanitized, "")
	sanitized = whitespacePattern.ReplaceAllString(sanitized, " ")

	return strings.TrimSpace(sanitized)
}
