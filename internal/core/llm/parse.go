package llm

import (
	"strings"

	"github.com/yomijipsa-art/concrete-ai/constants"
)

// FieldMap is label → value as read from a model reply. Labels are whatever
// the model wrote; only declared FieldKeys are ever consumed.
type FieldMap map[string]string

const emphasisChars = "*_`~"

var bullets = []string{"- ", "• ", "· "}

// ParseFields reads "label: value" lines. Lines without ':' or '：' are
// dropped, the first separator splits, and a repeated label keeps its last
// value.
func ParseFields(text string) FieldMap {
	out := FieldMap{}
	for _, line := range strings.Split(text, "\n") {
		idx, width := separatorIndex(line)
		if idx < 0 {
			continue
		}
		label := cleanLabel(line[:idx])
		if label == "" {
			continue
		}
		out[label] = cleanToken(line[idx+width:])
	}
	return out
}

func separatorIndex(line string) (int, int) {
	ascii := strings.IndexByte(line, ':')
	wide := strings.IndexRune(line, '：')
	switch {
	case ascii < 0 && wide < 0:
		return -1, 0
	case wide < 0 || (ascii >= 0 && ascii < wide):
		return ascii, 1
	default:
		return wide, len("：")
	}
}

func cleanToken(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, emphasisChars)
	return strings.TrimSpace(s)
}

func cleanLabel(s string) string {
	s = cleanToken(s)
	for _, b := range bullets {
		if strings.HasPrefix(s, b) {
			s = cleanToken(strings.TrimPrefix(s, b))
			break
		}
	}
	return s
}

// Lookup returns the value for f when the model produced a non-empty one.
func (m FieldMap) Lookup(f constants.FieldKey) (string, bool) {
	v, ok := m[string(f)]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// UnmatchedLabels lists labels that match none of fields, in no particular
// order.
func UnmatchedLabels(m FieldMap, fields []constants.FieldKey) []string {
	known := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		known[string(f)] = struct{}{}
	}
	var out []string
	for label := range m {
		if _, ok := known[label]; !ok {
			out = append(out, label)
		}
	}
	return out
}
