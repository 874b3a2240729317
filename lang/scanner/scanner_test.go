package scanner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spyre-lang/spyre/lang/token"
)

func TestTokenizeBasic(t *testing.T) {
	src := `main : ( n : int ) -> int {
		x : int;
		x = n + 2.5;
		return x;
	}`

	toks, err := Tokenize([]byte(src))
	require.NoError(t, err)
	require.NotEmpty(t, toks)
	require.Equal(t, token.EOF, toks[len(toks)-1].Kind)

	require.Equal(t, token.IDENT, toks[0].Kind)
	require.Equal(t, "main", toks[0].Spelling)
	require.Equal(t, uint(1), toks[0].Line)
}

func TestTokenizeOperators(t *testing.T) {
	cases := []struct {
		src  string
		kind token.Kind
	}{
		{"&&", token.LAND},
		{"||", token.LOR},
		{"->", token.ARROW},
		{"...", token.ELLIPSIS},
		{"<<=", token.LTLT_EQ},
		{">>=", token.GTGT_EQ},
		{"==", token.EQ},
		{"!=", token.NEQ},
		{">=", token.GE},
		{"<=", token.LE},
		{"+=", token.PLUS_EQ},
		{"^", token.CARET},
	}
	for _, c := range cases {
		toks, err := Tokenize([]byte(c.src))
		require.NoError(t, err)
		require.Equal(t, c.kind, toks[0].Kind, c.src)
	}
}

func TestTokenizeStringLiteral(t *testing.T) {
	toks, err := Tokenize([]byte(`"hello world"`))
	require.NoError(t, err)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, "hello world", toks[0].Spelling)
}

func TestTokenizeUnterminatedString(t *testing.T) {
	_, err := Tokenize([]byte(`"hello`))
	require.Error(t, err)
}

func TestTokenizeIllegalPunct(t *testing.T) {
	_, err := Tokenize([]byte(`@`))
	require.Error(t, err)
}

func TestTokenizeLineTracking(t *testing.T) {
	src := "a;\nb;\nc;"
	toks, err := Tokenize([]byte(src))
	require.NoError(t, err)
	require.Equal(t, uint(1), toks[0].Line) // a
	require.Equal(t, uint(2), toks[2].Line) // b
	require.Equal(t, uint(3), toks[4].Line) // c
}
