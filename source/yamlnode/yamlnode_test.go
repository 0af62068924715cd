package yamlnode_test

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eng "github.com/reoring/constraint/internal/engine"
	"github.com/reoring/constraint/source/yamlnode"
)

func drain(t *testing.T, src eng.TokenSource) []eng.Token {
	t.Helper()
	var out []eng.Token
	for {
		tok, err := src.NextToken()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, tok)
	}
}

func TestScalars(t *testing.T) {
	src, err := yamlnode.NewBytes([]byte(`
i: 0x10
f: 1.50
inf: .inf
b: yes
t: true
n: ~
s: "12"
`))
	require.NoError(t, err)
	toks := drain(t, src)
	require.Len(t, toks, 16)
	assert.Equal(t, eng.Token{Kind: eng.KindNumber, Number: "16", Offset: 2}, toks[2])
	assert.Equal(t, "1.50", toks[4].Number)
	assert.Equal(t, "+Inf", toks[6].Number)
	assert.Equal(t, eng.KindString, toks[8].Kind, "yaml 1.2 keeps yes as a string")
	assert.Equal(t, eng.KindBool, toks[10].Kind)
	assert.Equal(t, eng.KindNull, toks[12].Kind)
	assert.Equal(t, eng.KindString, toks[14].Kind)
}

func TestAliasesExpand(t *testing.T) {
	src, err := yamlnode.NewBytes([]byte(`
base: &b {x: 1}
copy: *b
`))
	require.NoError(t, err)
	var kinds []eng.Kind
	for _, tok := range drain(t, src) {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []eng.Kind{
		eng.KindBeginObject,
		eng.KindKey, eng.KindBeginObject, eng.KindKey, eng.KindNumber, eng.KindEndObject,
		eng.KindKey, eng.KindBeginObject, eng.KindKey, eng.KindNumber, eng.KindEndObject,
		eng.KindEndObject,
	}, kinds)
}

func TestNonScalarKey(t *testing.T) {
	_, err := yamlnode.NewBytes([]byte("? [a]\n: 1\n"))
	assert.Error(t, err)
}

func TestEmptyDocument(t *testing.T) {
	src, err := yamlnode.NewBytes(nil)
	require.NoError(t, err)
	_, err = src.NextToken()
	assert.ErrorIs(t, err, io.EOF)
}
