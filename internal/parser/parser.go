// Package parser assembles GunnyScript events into a document tree.
package parser

import (
	"io"
	"strings"

	"github.com/KimNorgaard/go-gunnyscript/ast"
	"github.com/KimNorgaard/go-gunnyscript/errors"
	"github.com/KimNorgaard/go-gunnyscript/token"
)

// Source produces events. Next returns io.EOF after the last one.
type Source interface {
	Next() (token.Token, error)
}

// Parser pulls every event from a Source into a Builder.
type Parser struct {
	src Source
	b   *Builder
}

// New creates a new parser.
func New(src Source) *Parser {
	return &Parser{src: src, b: NewBuilder()}
}

// Parse consumes the source and returns the document. Errors from the
// source, including errors.ErrIncomplete, are returned unchanged.
func (p *Parser) Parse() (*ast.Document, error) {
	for {
		tok, err := p.src.Next()
		if err == io.EOF {
			return p.b.Document()
		}
		if err != nil {
			return nil, err
		}
		if err := p.b.Add(tok); err != nil {
			return nil, err
		}
	}
}

// Build assembles a complete event sequence into a document.
func Build(toks []token.Token) (*ast.Document, error) {
	b := NewBuilder()
	for _, tok := range toks {
		if err := b.Add(tok); err != nil {
			return nil, err
		}
	}
	return b.Document()
}

// frame is a collection under construction.
type frame struct {
	tok  token.Token
	arr  *ast.Array
	obj  *ast.Object
	prop *ast.Property // named but still waiting for its value
	doc  string        // doc comment of the root collection
}

// Builder assembles events pushed one at a time. The first error is sticky.
type Builder struct {
	stack  []*frame
	doc    strings.Builder
	docTok token.Token
	hasDoc bool
	root   *ast.DocValue
	err    error
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Depth returns the number of collections still open.
func (b *Builder) Depth() int { return len(b.stack) }

// Add consumes one event.
func (b *Builder) Add(tok token.Token) error {
	if b.err != nil {
		return b.err
	}
	if err := b.add(tok); err != nil {
		b.err = errors.At(err, tok.Line, tok.Column)
		return b.err
	}
	return nil
}

// Document returns the finished document. It fails if collections are still
// open or a doc comment was never attached.
func (b *Builder) Document() (*ast.Document, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.stack) > 0 {
		top := b.stack[len(b.stack)-1]
		b.err = errors.At(errors.Newf(errors.UnexpectedEOF, "unclosed %s", top.tok.Complex), top.tok.Line, top.tok.Column)
		return nil, b.err
	}
	if b.hasDoc {
		b.err = b.dangling()
		return nil, b.err
	}
	return &ast.Document{Root: b.root}, nil
}

func (b *Builder) add(tok token.Token) error {
	switch tok.Type {
	case token.LINESPACE:
		if b.hasDoc {
			return b.dangling()
		}
		return nil
	case token.DOC_COMMENT:
		return b.addDoc(tok)
	case token.PROPERTY:
		return b.addProperty(tok)
	case token.VALUE:
		if err := b.checkPlacement(); err != nil {
			return err
		}
		v := ast.FromSimpleValue(tok)
		if s, ok := v.(*ast.String); ok && s.Style.IsDedent() {
			s.Value = Dedent(s.Value)
			s.Style = undedented(s.Style)
		}
		return b.emit(v)
	case token.START:
		return b.start(tok)
	case token.END:
		return b.end(tok)
	}
	return errors.Newf(errors.UnexpectedItem, "unknown event %q", tok.Type)
}

func (b *Builder) dangling() error {
	return errors.At(errors.New(errors.DanglingDocComment, "doc comment is not followed by a value"), b.docTok.Line, b.docTok.Column)
}

func (b *Builder) top() *frame {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

func (b *Builder) addDoc(tok token.Token) error {
	top := b.top()
	switch {
	case top == nil && b.root != nil:
		return errors.New(errors.DanglingDocComment, "doc comment after the root value")
	case top != nil && (top.arr != nil || top.prop != nil):
		return errors.New(errors.UnexpectedDocComment, "doc comments may only precede the root value or an object property")
	}
	if !b.hasDoc {
		b.docTok = tok
		b.hasDoc = true
	}
	b.doc.WriteString(tok.Text)
	return nil
}

func (b *Builder) takeDoc() string {
	if !b.hasDoc {
		return ""
	}
	doc := b.doc.String()
	b.doc.Reset()
	b.hasDoc = false
	return doc
}

func (b *Builder) addProperty(tok token.Token) error {
	top := b.top()
	if top == nil || top.obj == nil {
		return errors.Newf(errors.UnexpectedItem, "property %q outside an object", tok.Text)
	}
	if top.prop != nil {
		return errors.Newf(errors.UnexpectedItem, "property %q while %q has no value", tok.Text, top.prop.Name)
	}
	if top.obj.Has(tok.Text) {
		return errors.Newf(errors.DuplicatePropertyName, "%q", tok.Text)
	}
	top.prop = &ast.Property{Token: tok, Name: tok.Text, DocValue: ast.DocValue{Doc: b.takeDoc()}}
	return nil
}

// checkPlacement reports whether a value may appear next.
func (b *Builder) checkPlacement() error {
	top := b.top()
	switch {
	case top == nil && b.root != nil:
		return errors.New(errors.UnexpectedItem, "more than one root value")
	case top != nil && top.obj != nil && top.prop == nil:
		return errors.New(errors.UnexpectedItem, "object value without a property name")
	}
	return nil
}

func (b *Builder) start(tok token.Token) error {
	if err := b.checkPlacement(); err != nil {
		return err
	}
	f := &frame{tok: tok}
	if len(b.stack) == 0 {
		f.doc = b.takeDoc()
	}
	switch tok.Complex {
	case token.ARRAY:
		f.arr = &ast.Array{Token: tok}
	case token.OBJECT:
		f.obj = ast.NewObject()
		f.obj.Token = tok
	default:
		return errors.Newf(errors.UnexpectedItem, "unknown collection %q", tok.Complex)
	}
	b.stack = append(b.stack, f)
	return nil
}

func (b *Builder) end(tok token.Token) error {
	top := b.top()
	if top == nil || top.tok.Complex != tok.Complex {
		return errors.Newf(errors.UnexpectedItem, "END %s without matching START", tok.Complex)
	}
	if top.prop != nil {
		return errors.Newf(errors.UnexpectedItem, "property %q has no value", top.prop.Name)
	}
	if b.hasDoc {
		return b.dangling()
	}
	b.stack = b.stack[:len(b.stack)-1]

	var v ast.Value = top.arr
	if top.obj != nil {
		v = top.obj
	}
	if len(b.stack) == 0 {
		b.root = &ast.DocValue{Doc: top.doc, Value: v}
		return nil
	}
	return b.emit(v)
}

// emit places a finished value. Placement has already been checked.
func (b *Builder) emit(v ast.Value) error {
	top := b.top()
	switch {
	case top == nil:
		b.root = &ast.DocValue{Doc: b.takeDoc(), Value: v}
	case top.arr != nil:
		top.arr.Elements = append(top.arr.Elements, v)
	default:
		p := top.prop
		top.prop = nil
		p.Value = v
		if err := top.obj.Set(p); err != nil {
			return errors.Wrap(errors.DuplicatePropertyName, "", err)
		}
	}
	return nil
}

func undedented(s token.StringStyle) token.StringStyle {
	if s == token.DedentLiteral {
		return token.Literal
	}
	return token.Regular
}
