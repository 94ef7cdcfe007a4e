// Package convert translates GunnyScript documents to and from JSON, YAML
// and TOML.
//
// Conversions go through the ast package, so a document converted from YAML
// keeps its key order and comments, and one converted to JSON keeps its
// property order. Formats without a notion of dates get them as strings.
package convert

import (
	"fmt"
	"strings"

	"github.com/KimNorgaard/go-gunnyscript"
	"github.com/KimNorgaard/go-gunnyscript/ast"
)

// maxDepth bounds the nesting of converted values, including values reached
// through YAML aliases.
const maxDepth = 1000

// Load parses data in the format named by ext, a file extension with or
// without the leading dot. GunnyScript is used for "gunny" and for an empty
// extension.
func Load(ext string, data []byte) (*ast.Document, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "", "gunny":
		return gunnyscript.Parse(data)
	case "json":
		return FromJSON(data)
	case "yml", "yaml":
		return FromYAML(data)
	}
	return nil, fmt.Errorf("convert: unsupported input format %q", ext)
}

// docText joins comment lines into doc comment text, one line per "\n".
func docText(lines []string) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func depthError() error {
	return fmt.Errorf("convert: exceeded max depth of %d", maxDepth)
}
