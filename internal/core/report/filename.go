package report

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yomijipsa-art/concrete-ai/constants"
)

const maxNameRunes = 80

// Filename names the report after the pour location when the model read one,
// and falls back to 현장보고서_완성본.xlsx otherwise.
func Filename(pourLocation string) string {
	loc := sanitize(pourLocation)
	if loc == "" || pourLocation == constants.NoDataPlaceholder {
		return constants.ReportFallbackName
	}
	return constants.ReportFilePrefix + "_" + loc + ".xlsx"
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case strings.ContainsRune(`\/:*?"<>|`, r), unicode.IsControl(r):
			b.WriteRune('_')
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), " .")
	if utf8.RuneCountInString(out) > maxNameRunes {
		out = strings.TrimRight(string([]rune(out)[:maxNameRunes]), " .")
	}
	if strings.Trim(out, "_") == "" {
		return ""
	}
	return out
}
