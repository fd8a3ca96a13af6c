package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUTF16Len(t *testing.T) {
	assert.Equal(t, 5, UTF16Len("hello"))
	assert.Equal(t, 7, UTF16Len("Plantão"))
	assert.Equal(t, 2, UTF16Len("🎂"), "emoji outside the BMP takes a surrogate pair")
}

func TestParseMarkdownBold(t *testing.T) {
	res := ParseMarkdown("**Escala ALFA** em vigor")
	assert.Equal(t, "Escala ALFA em vigor", res.Text)
	require.Len(t, res.Entities, 1)
	assert.Equal(t, "bold", res.Entities[0].Type)
	assert.Equal(t, 0, res.Entities[0].Offset)
	assert.Equal(t, 11, res.Entities[0].Length)
}

func TestParseMarkdownCode(t *testing.T) {
	res := ParseMarkdown("id `abc123` encontrado")
	assert.Equal(t, "id abc123 encontrado", res.Text)
	require.Len(t, res.Entities, 1)
	assert.Equal(t, "code", res.Entities[0].Type)
	assert.Equal(t, 3, res.Entities[0].Offset)
	assert.Equal(t, 6, res.Entities[0].Length)
}

func TestParseMarkdownPre(t *testing.T) {
	res := ParseMarkdown("Junho:\n```\nS T Q Q S S D\nF T F T T F F\n```")
	assert.Equal(t, "Junho:\nS T Q Q S S D\nF T F T T F F", res.Text)
	require.Len(t, res.Entities, 1)
	assert.Equal(t, "pre", res.Entities[0].Type)
}

func TestParseMarkdownMixedAndOrdered(t *testing.T) {
	res := ParseMarkdown("**Hoje**: folga, evento `Dentista`")
	assert.Equal(t, "Hoje: folga, evento Dentista", res.Text)
	require.Len(t, res.Entities, 2)
	assert.LessOrEqual(t, res.Entities[0].Offset, res.Entities[1].Offset)
}

func TestParseMarkdownOffsetsAfterMultibyte(t *testing.T) {
	res := ParseMarkdown("Situação: **FOLGA**")
	require.Len(t, res.Entities, 1)
	assert.Equal(t, 10, res.Entities[0].Offset)
	assert.Equal(t, 5, res.Entities[0].Length)
}

func TestParseMarkdownPlain(t *testing.T) {
	res := ParseMarkdown("sem formatação")
	assert.Equal(t, "sem formatação", res.Text)
	assert.Empty(t, res.Entities)
}
