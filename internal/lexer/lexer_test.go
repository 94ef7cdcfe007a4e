package lexer

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KimNorgaard/go-gunnyscript/errors"
	"github.com/KimNorgaard/go-gunnyscript/number"
	"github.com/KimNorgaard/go-gunnyscript/token"
)

func lexAll(l *Lexer) ([]token.Token, error) {
	var toks []token.Token
	for {
		tok, err := l.Next()
		if err == io.EOF {
			return toks, nil
		}
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
	}
}

// lexChunked feeds src size bytes at a time, draining events between feeds.
func lexChunked(src []byte, size int) ([]token.Token, error) {
	l := New()
	var toks []token.Token
	for len(src) > 0 {
		n := min(size, len(src))
		l.Feed(src[:n])
		src = src[n:]
		for {
			tok, err := l.Next()
			if err == errors.ErrIncomplete {
				break
			}
			if err != nil {
				return toks, err
			}
			toks = append(toks, tok)
		}
	}
	l.CloseInput()
	rest, err := lexAll(l)
	return append(toks, rest...), err
}

func describeAll(toks []token.Token) []string {
	out := make([]string, len(toks))
	for i, tok := range toks {
		out[i] = tok.String()
	}
	return out
}

func TestNextToken(t *testing.T) {
	input := `/// The root.
{
  name "gunny"
  version 0x10

  /// Tags.
  tags [1, -2, 3.5]
  when 2020-01-02
}
`
	expected := []string{
		`1:1 DOC_COMMENT " The root.\n"`,
		`2:1 START OBJECT`,
		`3:3 PROPERTY "name"`,
		`3:8 VALUE STRING "gunny"`,
		`4:3 PROPERTY "version"`,
		`4:11 VALUE NUMBER 16`,
		`5:1 LINESPACE`,
		`6:3 DOC_COMMENT " Tags.\n"`,
		`7:3 PROPERTY "tags"`,
		`7:8 START ARRAY`,
		`7:9 VALUE NUMBER 1`,
		`7:12 VALUE NUMBER -2`,
		`7:16 VALUE NUMBER 3.5`,
		`7:19 END ARRAY`,
		`8:3 PROPERTY "when"`,
		`8:8 VALUE DATE 2020-01-02`,
		`9:1 END OBJECT`,
	}

	toks, err := lexAll(NewBytes([]byte(input)))
	require.NoError(t, err)
	require.Equal(t, expected, describeAll(toks))
}

func TestMinimalObject(t *testing.T) {
	toks, err := lexAll(NewBytes([]byte("{ a 1, b true }")))
	require.NoError(t, err)
	expected := []token.Token{
		{Type: token.START, Complex: token.OBJECT},
		{Type: token.PROPERTY, Text: "a"},
		{Type: token.VALUE, Value: token.Value{Kind: token.NUMBER, Number: number.Uint(1)}},
		{Type: token.PROPERTY, Text: "b"},
		{Type: token.VALUE, Value: token.Value{Kind: token.BOOLEAN, Bool: true}},
		{Type: token.END, Complex: token.OBJECT},
	}
	require.Len(t, toks, len(expected))
	for i := range expected {
		require.Equal(t, expected[i], toks[i].Strip())
	}
}

func TestWhitespaceInvariance(t *testing.T) {
	values := map[string]token.Value{
		"null":  {Kind: token.NULL},
		"true":  {Kind: token.BOOLEAN, Bool: true},
		"false": {Kind: token.BOOLEAN},
	}
	pads := []string{"", " ", "\t", "\n", "  \t ", " \t\n", "\r\n"}

	for text, want := range values {
		for _, pre := range pads {
			for _, post := range pads {
				input := pre + text + post
				t.Run(fmt.Sprintf("%q", input), func(t *testing.T) {
					toks, err := lexAll(NewBytes([]byte(input)))
					require.NoError(t, err)
					require.Len(t, toks, 1)
					require.Equal(t, token.VALUE, toks[0].Type)
					require.Equal(t, want, toks[0].Value)
				})
			}
		}
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		input string
		str   string
		style token.StringStyle
	}{
		{`"hello"`, "hello", token.Regular},
		{`"esc \" \' \n \r \t \\ \0"`, "esc \" ' \n \r \t \\ \x00", token.Regular},
		{"\"two\nlines\"", "two\nlines", token.Regular},
		{`"ünïcödé ✓"`, "ünïcödé ✓", token.Regular},
		{`#"abc"#`, "abc", token.Literal},
		{`#"no \n escapes"#`, `no \n escapes`, token.Literal},
		{`##"a#"b"#c"##`, `a#"b"#c`, token.Literal},
		{`##"x"#y"##`, `x"#y`, token.Literal},
		{`#"""#`, `"`, token.Literal},
		{strings.Repeat("#", 20) + `"max"` + strings.Repeat("#", 20), "max", token.Literal},
		{"d\"\n  a\n  b\"", "\n  a\n  b", token.Dedent},
		{`d#"raw "quoted""#`, `raw "quoted"`, token.DedentLiteral},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks, err := lexAll(NewBytes([]byte(tt.input)))
			require.NoError(t, err)
			require.Len(t, toks, 1)
			require.Equal(t, token.Value{Kind: token.STRING, Str: tt.str, Style: tt.style}, toks[0].Value)
		})
	}
}

func TestScalars(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"0xDEADBEEF", "1:1 VALUE NUMBER 3735928559"},
		{"0755", "1:1 VALUE NUMBER 493"},
		{"-1", "1:1 VALUE NUMBER -1"},
		{"+7", "1:1 VALUE NUMBER 7"},
		{"3.14159", "1:1 VALUE NUMBER 3.14159"},
		{"2020-01-02", "1:1 VALUE DATE 2020-01-02"},
		{"-44-03-15", "1:1 VALUE DATE -0044-03-15"},
		{"2020-01-02T12:54:00Z", "1:1 VALUE DATETIME 2020-01-02T12:54:00Z"},
		{"2020-01-02T12:54:00-05:00", "1:1 VALUE DATETIME 2020-01-02T12:54:00-05:00"},
		{"true", "1:1 VALUE BOOLEAN true"},
		{"false", "1:1 VALUE BOOLEAN false"},
		{"null", "1:1 VALUE NULL null"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks, err := lexAll(NewBytes([]byte(tt.input)))
			require.NoError(t, err)
			require.Equal(t, []string{tt.expected}, describeAll(toks))
		})
	}
}

func TestScalarTerminators(t *testing.T) {
	toks, err := lexAll(NewBytes([]byte("[1,2]")))
	require.NoError(t, err)
	require.Equal(t, []string{
		"1:1 START ARRAY",
		"1:2 VALUE NUMBER 1",
		"1:4 VALUE NUMBER 2",
		"1:5 END ARRAY",
	}, describeAll(toks))

	toks, err = lexAll(NewBytes([]byte("{a true}")))
	require.NoError(t, err)
	require.Len(t, toks, 4)

	toks, err = lexAll(NewBytes([]byte("[null// trailing\n]")))
	require.NoError(t, err)
	require.Len(t, toks, 3)
}

func TestComments(t *testing.T) {
	input := `// leading
/* block
   comment */ {
  a 1 // after a
  /* between */ b 2
}
// trailing`
	toks, err := lexAll(NewBytes([]byte(input)))
	require.NoError(t, err)
	require.Equal(t, []string{
		`3:15 START OBJECT`,
		`4:3 PROPERTY "a"`,
		`4:5 VALUE NUMBER 1`,
		`5:17 PROPERTY "b"`,
		`5:19 VALUE NUMBER 2`,
		`6:1 END OBJECT`,
	}, describeAll(toks))
}

func TestDocComments(t *testing.T) {
	toks, err := lexAll(NewBytes([]byte("{\n/// line one\n/// line two\nfoo 1\n}")))
	require.NoError(t, err)
	require.Equal(t, []string{
		`1:1 START OBJECT`,
		`2:1 DOC_COMMENT " line one\n"`,
		`3:1 DOC_COMMENT " line two\n"`,
		`4:1 PROPERTY "foo"`,
		`4:5 VALUE NUMBER 1`,
		`5:1 END OBJECT`,
	}, describeAll(toks))

	// A doc comment followed by a blank line yields a LINESPACE right away.
	toks, err = lexAll(NewBytes([]byte("/// orphan\n\n1")))
	require.NoError(t, err)
	require.Equal(t, []string{
		`1:1 DOC_COMMENT " orphan\n"`,
		`2:1 LINESPACE`,
		`3:1 VALUE NUMBER 1`,
	}, describeAll(toks))
}

func TestLinespace(t *testing.T) {
	toks, err := lexAll(NewBytes([]byte("[\n1\n\n\n2\n]")))
	require.NoError(t, err)
	require.Equal(t, []string{
		`1:1 START ARRAY`,
		`2:1 VALUE NUMBER 1`,
		`3:1 LINESPACE`,
		`4:1 LINESPACE`,
		`5:1 VALUE NUMBER 2`,
		`6:1 END ARRAY`,
	}, describeAll(toks))

	// A comment on its own line is not blank.
	toks, err = lexAll(NewBytes([]byte("[\n1\n// note\n2\n]")))
	require.NoError(t, err)
	require.Len(t, toks, 4)
}

func TestEmptyDocument(t *testing.T) {
	for _, input := range []string{"", "  \n\t", "// nothing\n", "/* nothing */"} {
		toks, err := lexAll(NewBytes([]byte(input)))
		require.NoError(t, err)
		for _, tok := range toks {
			require.Equal(t, token.LINESPACE, tok.Type)
		}
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		input  string
		code   errors.Code
		line   int
		column int
	}{
		{"\xff", errors.InvalidUTF8, 1, 1},
		{"{\n a 1\n \xff", errors.InvalidUTF8, 3, 2},
		{"\"abc\xe2\x82", errors.InvalidUTF8, 1, 5},
		{"tru", errors.InvalidIdentifier, 1, 1},
		{"nul]", errors.InvalidIdentifier, 1, 1},
		{"dx", errors.InvalidIdentifier, 1, 1},
		{"{ 1 }", errors.InvalidPropertyNameChar, 1, 3},
		{"{ a\n1 }", errors.InvalidPropertyNameChar, 1, 4},
		{"{ a:1 }", errors.InvalidPropertyNameChar, 1, 4},
		{`"\q"`, errors.InvalidEscapeSequence, 1, 2},
		{"##x", errors.InvalidLiteralStringChar, 1, 3},
		{strings.Repeat("#", 21) + `"x"`, errors.LiteralStringDelimiterTooLong, 1, 1},
		{"0xZZ", errors.InvalidHexNumber, 1, 1},
		{"[1, -x]", errors.InvalidSignedNumber, 1, 5},
		{"99999999999999999999", errors.InvalidUnsignedNumber, 1, 1},
		{"1.2.3", errors.InvalidFixedPointNumber, 1, 1},
		{"0789", errors.InvalidOctalNumber, 1, 1},
		{"/x", errors.InvalidCommentDelimiter, 1, 2},
		{"[/// x\n1]", errors.UnexpectedDocComment, 1, 2},
		{"{a /// x\n1}", errors.UnexpectedDocComment, 1, 4},
		{"1\n/// x\n", errors.DanglingDocComment, 2, 1},
		{"2020-01-02T25:00:00Z", errors.InvalidDateTime, 1, 1},
		{"2020--02", errors.MissingMonthInDate, 1, 1},
		{"2020-1", errors.MissingDayInDate, 1, 1},
		{"2020-13-02", errors.InvalidDate, 1, 1},
		{"2020-x-02", errors.InvalidDateMonth, 1, 1},
		{"{ a", errors.UnexpectedEOF, 1, 4},
		{"[1", errors.UnexpectedEOF, 1, 3},
		{"{a [1, {b 2}]", errors.UnexpectedEOF, 1, 14},
		{"\"abc", errors.MissingTerminator, 1, 1},
		{"#\"abc\"", errors.MissingTerminator, 1, 1},
		{"/* abc", errors.MissingTerminator, 1, 1},
		{"[1}", errors.UnexpectedChar, 1, 3},
		{"]", errors.UnexpectedChar, 1, 1},
		{"1 2", errors.UnexpectedChar, 1, 3},
		{"1;", errors.UnexpectedChar, 1, 2},
		{",", errors.UnexpectedChar, 1, 1},
		{"{a ,}", errors.UnexpectedChar, 1, 4},
		{"{a }", errors.UnexpectedChar, 1, 4},
		{"@", errors.UnexpectedChar, 1, 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.input), func(t *testing.T) {
			_, err := lexAll(NewBytes([]byte(tt.input)))
			require.Error(t, err)
			var pe *errors.ParseError
			require.ErrorAs(t, err, &pe)
			require.Equal(t, tt.code, pe.Code, err.Error())
			require.Equal(t, tt.line, pe.Line, "line")
			require.Equal(t, tt.column, pe.Column, "column")
		})
	}
}

func TestErrorsAreSticky(t *testing.T) {
	l := NewBytes([]byte("[1 @ 2]"))
	var err error
	for err == nil {
		_, err = l.Next()
	}
	_, again := l.Next()
	require.Equal(t, err, again)
}

func TestMaxDepth(t *testing.T) {
	_, err := lexAll(NewBytes([]byte("[[[]]]"), MaxDepth(3)))
	require.NoError(t, err)

	_, err = lexAll(NewBytes([]byte("[[[[]]]]"), MaxDepth(3)))
	require.Equal(t, errors.NestingTooDeep, errors.CodeOf(err))

	deep := strings.Repeat("[", DefaultMaxDepth+1)
	_, err = lexAll(NewBytes([]byte(deep)))
	require.Equal(t, errors.NestingTooDeep, errors.CodeOf(err))
}

func TestIncompleteInput(t *testing.T) {
	l := New()
	l.Feed([]byte(`"hel`))
	_, err := l.Next()
	require.ErrorIs(t, err, errors.ErrIncomplete)
	_, err = l.Next()
	require.ErrorIs(t, err, errors.ErrIncomplete, "retrying without new input")

	l.Feed([]byte(`lo"`))
	tok, err := l.Next()
	require.NoError(t, err)
	require.Equal(t, token.Value{Kind: token.STRING, Str: "hello"}, tok.Value)
	require.Equal(t, 1, tok.Column)

	_, err = l.Next()
	require.ErrorIs(t, err, errors.ErrIncomplete)
	l.CloseInput()
	_, err = l.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestIncompleteVersusTruncated(t *testing.T) {
	l := New()
	l.Feed([]byte("{ a 1"))
	toks := 0
	for {
		_, err := l.Next()
		if err == errors.ErrIncomplete {
			break
		}
		require.NoError(t, err)
		toks++
	}
	require.Equal(t, 2, toks)
	require.Equal(t, 1, l.Depth())

	l.CloseInput()
	_, err := l.Next()
	require.NoError(t, err)
	_, err = l.Next()
	require.Equal(t, errors.UnexpectedEOF, errors.CodeOf(err))
}

func TestSplitUTF8(t *testing.T) {
	src := []byte(`"€"`)
	l := New()
	l.Feed(src[:2])
	_, err := l.Next()
	require.ErrorIs(t, err, errors.ErrIncomplete)
	l.Feed(src[2:])
	tok, err := l.Next()
	require.NoError(t, err)
	require.Equal(t, "€", tok.Value.Str)
}

var streamingInputs = []string{
	"null",
	"  true\n",
	"{ a 1, b true }",
	"/// doc\n{\n  /// prop\n  name \"value\"\n\n  list [1, -2, 3.25, 0x1F, 017]\n}\n",
	`{ s #"a"#, t ##"x"#y"##, d d"  in\n  dent", dl d#"z"# }`,
	"[2020-01-02, 2020-01-02T12:54:00.25+01:00, \"€✓\"]",
	"[\n1\n\n\n2 /* c */ , 3 // c\n]",
	"{ a 1, a 2 }",
	"{ a [1, 2",
	"[1, @]",
	"\"unterminated",
	"[\"\xff\"]",
	"1\n/// dangling",
}

func TestChunkedMatchesWhole(t *testing.T) {
	for _, input := range streamingInputs {
		wantToks, wantErr := lexAll(NewBytes([]byte(input)))
		for size := 1; size <= len(input); size++ {
			t.Run(fmt.Sprintf("%q/%d", input, size), func(t *testing.T) {
				toks, err := lexChunked([]byte(input), size)
				require.Equal(t, wantToks, toks)
				if wantErr == nil {
					require.NoError(t, err)
					return
				}
				require.EqualError(t, err, wantErr.Error())
			})
		}
	}
}

func TestIsIdentifier(t *testing.T) {
	for _, s := range []string{"a", "_x", "my-key", "A_1-b"} {
		require.True(t, IsIdentifier(s), s)
	}
	for _, s := range []string{"", "1a", "-a", "a b", "é", "a.b"} {
		require.False(t, IsIdentifier(s), s)
	}
}
