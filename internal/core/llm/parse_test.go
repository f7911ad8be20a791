package llm

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yomijipsa-art/concrete-ai/constants"
)

func TestParseFields(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want FieldMap
	}{
		{
			name: "drops lines without separator",
			in:   "noise\nX: y",
			want: FieldMap{"X": "y"},
		},
		{
			name: "splits on first colon only",
			in:   "타설일자: 2024-05-01 10:30",
			want: FieldMap{"타설일자": "2024-05-01 10:30"},
		},
		{
			name: "last duplicate wins",
			in:   "온도: 20℃\n온도: 22℃",
			want: FieldMap{"온도": "22℃"},
		},
		{
			name: "strips emphasis and bullets",
			in:   "- **공사명**: **OO아파트 신축공사**\n* 슬럼프 : `150mm`\n• _업체명_: ~삼표~",
			want: FieldMap{"공사명": "OO아파트 신축공사", "슬럼프": "150mm", "업체명": "삼표"},
		},
		{
			name: "full-width colon",
			in:   "공기량：4.5%",
			want: FieldMap{"공기량": "4.5%"},
		},
		{
			name: "earlier separator wins across kinds",
			in:   "염화물：0.02 kg/m3 (기준: 0.3)",
			want: FieldMap{"염화물": "0.02 kg/m3 (기준: 0.3)"},
		},
		{
			name: "crlf and empty label",
			in:   "단위수량: 175\r\n: orphan\r\n\r\n",
			want: FieldMap{"단위수량": "175"},
		},
		{
			name: "empty input",
			in:   "",
			want: FieldMap{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFields(tt.in))
		})
	}
}

func TestFieldMap_Lookup(t *testing.T) {
	m := FieldMap{"공사명": "A", "온도": ""}

	v, ok := m.Lookup(constants.ProjectName)
	assert.True(t, ok)
	assert.Equal(t, "A", v)

	_, ok = m.Lookup(constants.Temperature)
	assert.False(t, ok, "empty value counts as missing")

	_, ok = m.Lookup(constants.Slump)
	assert.False(t, ok)
}

func TestUnmatchedLabels(t *testing.T) {
	m := ParseFields("공사명: A\n비고: 없음\nProject: B")
	got := UnmatchedLabels(m, constants.AllFields())
	sort.Strings(got)
	assert.Equal(t, []string{"Project", "비고"}, got)
}
