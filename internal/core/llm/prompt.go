package llm

import (
	"strings"

	"github.com/yomijipsa-art/concrete-ai/constants"
)

// BuildFieldPrompt asks for every field by its exact label, one
// "항목: 값" line each.
func BuildFieldPrompt(fields []constants.FieldKey) string {
	labels := make([]string, 0, len(fields))
	for _, f := range fields {
		labels = append(labels, string(f))
	}
	list := strings.Join(labels, ", ")

	var b strings.Builder
	b.WriteString("이 사진에서 ")
	b.WriteString(list)
	if len(labels) > 0 {
		b.WriteString(objectParticle(labels[len(labels)-1]))
	}
	b.WriteString(" 찾아줘. 결과는 반드시 '항목: 값' 형식으로 한 줄씩 써줘.")
	return b.String()
}

// objectParticle picks 을/를 from the final syllable's coda.
func objectParticle(word string) string {
	r := []rune(word)
	if len(r) == 0 {
		return "를"
	}
	last := r[len(r)-1]
	if last < 0xAC00 || last > 0xD7A3 {
		return "를"
	}
	if (last-0xAC00)%28 != 0 {
		return "을"
	}
	return "를"
}
