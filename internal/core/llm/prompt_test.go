package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yomijipsa-art/concrete-ai/constants"
)

func TestBuildFieldPrompt_AllFields(t *testing.T) {
	want := "이 사진에서 공사명, 타설위치, 타설규격, 슬럼프, 공기량, 염화물, 온도, 단위수량, 타설일자, 업체명을 찾아줘. " +
		"결과는 반드시 '항목: 값' 형식으로 한 줄씩 써줘."
	assert.Equal(t, want, BuildFieldPrompt(constants.AllFields()))
}

func TestObjectParticle(t *testing.T) {
	assert.Equal(t, "을", objectParticle("업체명"))
	assert.Equal(t, "를", objectParticle("온도"))
	assert.Equal(t, "를", objectParticle("slump"))
	assert.Equal(t, "를", objectParticle(""))
}
