package convert_test

import (
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/KimNorgaard/go-gunnyscript"
	"github.com/KimNorgaard/go-gunnyscript/ast"
	"github.com/KimNorgaard/go-gunnyscript/convert"
	"github.com/KimNorgaard/go-gunnyscript/number"
)

const sample = `/// Service settings.
{
  name "gunny"
  /// Listening port.
  port 8080
  ratio 0.25
  offset -3
  enabled true
  since 2020-01-02
  updated 2020-01-02T12:54:00-05:00
  tags ["a", "b"]
  owner {
    /// Contact address.
    email "ops@example.com"
  }
  motd d"
    line one
    line two
  "
}`

func parse(t *testing.T, s string) *ast.Document {
	t.Helper()
	doc, err := gunnyscript.Parse([]byte(s))
	require.NoError(t, err)
	return doc
}

func TestToJSON(t *testing.T) {
	doc := parse(t, sample)

	out, err := convert.ToJSON(doc, 0)
	require.NoError(t, err)
	require.Equal(t, `{"name":"gunny","port":8080,"ratio":0.25,"offset":-3,"enabled":true,"since":"2020-01-02",`+
		`"updated":"2020-01-02T12:54:00-05:00","tags":["a","b"],"owner":{"email":"ops@example.com"},"motd":"line one\nline two\n"}`, string(out))

	out, err = convert.ToJSON(parse(t, `{ a [1, { x null }], b "<&>" }`), 2)
	require.NoError(t, err)
	require.Equal(t, "{\n  \"a\": [\n    1,\n    {\n      \"x\": null\n    }\n  ],\n  \"b\": \"<&>\"\n}", string(out))

	out, err = convert.ToJSON(parse(t, `{ o { h "<b>&</b>", e [], m {} }, l [["<"]] }`), 0)
	require.NoError(t, err)
	require.Equal(t, `{"o":{"h":"<b>&</b>","e":[],"m":{}},"l":[["<"]]}`, string(out))

	out, err = convert.ToJSON(&ast.Document{}, 0)
	require.NoError(t, err)
	require.Equal(t, "null", string(out))
}

func TestFromJSON(t *testing.T) {
	doc, err := convert.FromJSON([]byte(`{"z": [1, -2, 2.5, 1e2, null], "a": {"s": "x", "t": true}}`))
	require.NoError(t, err)
	require.Equal(t, `{a {s "x", t true}, z [1, -2, 2.5, 100.0, null]}`, doc.String())

	obj := doc.Root.Value.(*ast.Object)
	z, _ := obj.Get("z")
	elems := z.Value.(*ast.Array).Elements
	require.Equal(t, number.Uint(1), elems[0].(*ast.Number).Value)
	require.Equal(t, number.Int(-2), elems[1].(*ast.Number).Value)
	require.Equal(t, number.KindFixed, elems[2].(*ast.Number).Value.Kind())

	doc, err = convert.FromJSON([]byte("  "))
	require.NoError(t, err)
	require.Nil(t, doc.Root)

	_, err = convert.FromJSON([]byte(`{"a": }`))
	require.ErrorContains(t, err, "convert: parsing JSON")

	_, err = convert.FromJSON([]byte(`1 2`))
	require.ErrorContains(t, err, "unexpected data after the top-level value")
}

func TestJSONRoundTrip(t *testing.T) {
	in := `{"a":{"b":[true,false,null]},"c":"d","n":18446744073709551615}`
	doc, err := convert.FromJSON([]byte(in))
	require.NoError(t, err)
	out, err := convert.ToJSON(doc, 0)
	require.NoError(t, err)
	require.Equal(t, in, string(out))
}

func TestToYAML(t *testing.T) {
	doc := parse(t, sample)
	out, err := convert.ToYAML(doc)
	require.NoError(t, err)

	s := string(out)
	require.Contains(t, s, "# Service settings.")
	require.Contains(t, s, "# Listening port.\nport: 8080\n")
	require.Contains(t, s, "owner:\n  # Contact address.\n  email: ops@example.com\n")
	require.Contains(t, s, "motd: |\n")

	var plain map[string]any
	require.NoError(t, yaml.Unmarshal(out, &plain))
	require.Equal(t, "gunny", plain["name"])
	require.Equal(t, 8080, plain["port"])
	require.Equal(t, 0.25, plain["ratio"])
	require.Equal(t, -3, plain["offset"])
	require.Equal(t, []any{"a", "b"}, plain["tags"])
	require.Equal(t, "line one\nline two\n", plain["motd"])

	out, err = convert.ToYAML(&ast.Document{})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestFromYAML(t *testing.T) {
	src := `# Top of the document.

# The base settings.
base: &base
  host: localhost
  port: 0x1F90
copy: *base
list:
  - 1.5
  - -7
  - 2021-03-04
  - 2021-03-04T05:06:07Z
  - ~
  - "2021-03-04"
  - yes
`
	doc, err := convert.FromYAML([]byte(src))
	require.NoError(t, err)
	require.Equal(t, " Top of the document.\n", doc.Root.Doc)
	require.Equal(t, `{base {host "localhost", port 8080}, copy {host "localhost", port 8080}, `+
		`list [1.5, -7, 2021-03-04, 2021-03-04T05:06:07Z, null, "2021-03-04", "yes"]}`, doc.String())

	base, ok := doc.Root.Value.(*ast.Object).Get("base")
	require.True(t, ok)
	require.Equal(t, " The base settings.\n", base.Doc)

	_, err = convert.FromYAML([]byte("a: 1\na: 2\n"))
	require.Error(t, err)

	_, err = convert.FromYAML([]byte("base: &b {x: 1}\nm:\n  <<: *b\n"))
	require.ErrorContains(t, err, "merge keys are not supported")

	_, err = convert.FromYAML([]byte("[1, .inf]"))
	require.ErrorContains(t, err, "no fixed-point representation")

	doc, err = convert.FromYAML(nil)
	require.NoError(t, err)
	require.Nil(t, doc.Root)
}

func TestYAMLRoundTrip(t *testing.T) {
	doc := parse(t, sample)
	out, err := convert.ToYAML(doc)
	require.NoError(t, err)

	back, err := convert.FromYAML(out)
	require.NoError(t, err)
	require.Equal(t, doc.String(), back.String())
	require.Equal(t, doc.Root.Doc, back.Root.Doc)

	port, _ := back.Root.Value.(*ast.Object).Get("port")
	require.Equal(t, " Listening port.\n", port.Doc)
}

func TestToTOML(t *testing.T) {
	out, err := convert.ToTOML(parse(t, sample))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, toml.Unmarshal(out, &got))
	require.Equal(t, "gunny", got["name"])
	require.Equal(t, int64(8080), got["port"])
	require.Equal(t, 0.25, got["ratio"])
	require.Equal(t, int64(-3), got["offset"])
	require.Equal(t, toml.LocalDate{Year: 2020, Month: 1, Day: 2}, got["since"])
	updated, ok := got["updated"].(time.Time)
	require.True(t, ok)
	require.True(t, updated.Equal(time.Date(2020, 1, 2, 17, 54, 0, 0, time.UTC)))
	require.Equal(t, map[string]any{"email": "ops@example.com"}, got["owner"])

	testCases := []struct {
		name        string
		input       string
		expectedErr string
	}{
		{"Root is not an object", `[1]`, "convert: TOML documents must be objects, not an array"},
		{"Null value", `{ a { b null } }`, "convert: a.b: TOML has no null value"},
		{"Null element", `{ a [1, null] }`, "convert: a[1]: TOML has no null value"},
		{"Unsigned overflow", `{ big 18446744073709551615 }`, "convert: big: 18446744073709551615 does not fit a TOML integer"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := convert.ToTOML(parse(t, tc.input))
			require.EqualError(t, err, tc.expectedErr)
		})
	}
}

func TestLoad(t *testing.T) {
	for _, tc := range []struct {
		ext  string
		data string
	}{
		{"gunny", `{ a 1 }`},
		{".GUNNY", `{ a 1 }`},
		{"", `{ a 1 }`},
		{".json", `{"a": 1}`},
		{"yaml", "a: 1\n"},
		{".yml", "a: 1\n"},
	} {
		doc, err := convert.Load(tc.ext, []byte(tc.data))
		require.NoError(t, err, tc.ext)
		require.Equal(t, "{a 1}", doc.String(), tc.ext)
	}

	_, err := convert.Load(".ini", nil)
	require.EqualError(t, err, `convert: unsupported input format ".ini"`)
}
