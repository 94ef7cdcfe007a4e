package gunnyscript_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KimNorgaard/go-gunnyscript"
	gserrors "github.com/KimNorgaard/go-gunnyscript/errors"
)

func TestFormat(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		opts     []gunnyscript.Option
		expected string
	}{
		{
			name:     "Compact Mode",
			input:    "{a 1,b [true,null]}",
			opts:     []gunnyscript.Option{gunnyscript.Indent(0)},
			expected: "{ a 1, b [true, null] }",
		},
		{
			name:     "Default Indent (2 spaces)",
			input:    "{a 1,b [true,null]}",
			expected: "{\n  a 1\n  b [\n    true,\n    null\n  ]\n}",
		},
		{
			name:     "Custom Indent (4 spaces)",
			input:    "{a 1,b {c null}}",
			opts:     []gunnyscript.Option{gunnyscript.Indent(4)},
			expected: "{\n    a 1\n    b {\n        c null\n    }\n}",
		},
		{
			name:     "Empty collections",
			input:    "[ {}, [ ] ]",
			expected: "[\n  {},\n  []\n]",
		},
		{
			name:     "Comments and blank lines are dropped",
			input:    "// leading\n{\n\n  a /* inline */ 1\n\n}",
			expected: "{\n  a 1\n}",
		},
		{
			name:     "Doc comments are kept",
			input:    "///top\n{\n  /// first\n  ///second\n  a 1\n}",
			expected: "///top\n{\n  /// first\n  ///second\n  a 1\n}",
		},
		{
			name:     "Doc comments are dropped in compact mode",
			input:    "/// top\n{\n  /// a\n  a 1\n}",
			opts:     []gunnyscript.Option{gunnyscript.Indent(0)},
			expected: "{ a 1 }",
		},
		{
			name:     "Numbers are canonical",
			input:    "[0x10, 1.50, 017, 2.0]",
			opts:     []gunnyscript.Option{gunnyscript.Indent(0)},
			expected: "[16, 1.5, 15, 2.0]",
		},
		{
			name:     "Literal strings stay literal",
			input:    `{ s #"a\b"# }`,
			opts:     []gunnyscript.Option{gunnyscript.Indent(0)},
			expected: `{ s #"a\b"# }`,
		},
		{
			name:     "Multi-line strings become literal",
			input:    `"x\ny"`,
			expected: "#\"x\ny\"#",
		},
		{
			name:     "Multi-line strings are escaped in compact mode",
			input:    `"x\ny"`,
			opts:     []gunnyscript.Option{gunnyscript.Indent(0)},
			expected: `"x\ny"`,
		},
		{
			name:     "Empty document",
			input:    "// nothing\n",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := gunnyscript.Format([]byte(tc.input), tc.opts...)
			require.NoError(t, err)
			require.Equal(t, tc.expected, string(out))
		})
	}
}

func TestFormat_Errors(t *testing.T) {
	_, err := gunnyscript.Format([]byte("{ a 1"))
	require.Equal(t, gserrors.UnexpectedEOF, gserrors.CodeOf(err))

	_, err = gunnyscript.Format([]byte("1"), gunnyscript.Indent(-2))
	require.EqualError(t, err, "gunnyscript: indent must be non-negative")
}

func TestFormat_Idempotent(t *testing.T) {
	files, err := filepath.Glob("testdata/*.gunny")
	require.NoError(t, err)

	for _, file := range files {
		data, err := os.ReadFile(file)
		require.NoError(t, err)
		once, err := gunnyscript.Format(data)
		if err != nil {
			// Invalid inputs are covered by the golden tests.
			continue
		}
		for _, indent := range []int{0, 2, 3} {
			formatted, err := gunnyscript.Format(data, gunnyscript.Indent(indent))
			require.NoError(t, err)
			again, err := gunnyscript.Format(formatted, gunnyscript.Indent(indent))
			require.NoError(t, err, file)
			require.Equal(t, string(formatted), string(again), file)
		}
		require.NotEmpty(t, once)
	}
}
