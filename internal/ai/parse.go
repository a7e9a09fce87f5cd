package ai

import (
	"regexp"
	"strings"
)

var (
	// "-", "*", "•", "1.", "1)"
	listMarker = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s+`)
	// метка поля, в том числе жирная: "**Title:**", "Summary -", "Tóm tắt:"
	fieldLabel = regexp.MustCompile(`(?i)^\**\s*(?:title|headline|summary|source|tiêu đề|tóm tắt|nguồn)\s*\**\s*[:：-]\s*\**\s*`)
)

// ParseSummary разбирает ответ модели из трех строк: заголовок, пересказ, источник.
// Возвращает false, если строк меньше трех или одно из полей пустое.
func ParseSummary(text string) (Summary, bool) {
	lines := make([]string, 0, 3)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		lines = append(lines, line)
		if len(lines) == 3 {
			break
		}
	}

	if len(lines) < 3 {
		return Summary{}, false
	}

	fields := make([]string, 3)
	for i, line := range lines {
		fields[i] = stripLine(line)
		if fields[i] == "" {
			return Summary{}, false
		}
	}

	return Summary{
		Title:   fields[0],
		Summary: fields[1],
		Source:  fields[2],
	}, true
}

func stripLine(line string) string {
	line = listMarker.ReplaceAllString(line, "")
	line = fieldLabel.ReplaceAllString(line, "")
	return strings.TrimSpace(strings.Trim(line, "*"))
}
