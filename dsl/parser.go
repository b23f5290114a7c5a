package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `(?:\d+\.\d+|\d+)(?:pt|mm|cm|in|px)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][(),.=+\-*/%<>!?;:|]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Document is the root of a description file: pages, styles and clamped text views.
type Document struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Name    string         `parser:"Newline* 'doc' @Ident"`
	Version string         `parser:"@Ident"`
	Entries []*Entry       `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Entry is one top-level declaration.
type Entry struct {
	Meta  *MetaSection  `parser:"  @@"`
	Page  *PageSection  `parser:"| @@"`
	Style *StyleSection `parser:"| @@"`
	View  *ViewSection  `parser:"| @@"`
}

// Kind returns the human-readable declaration type.
func (e *Entry) Kind() string {
	switch {
	case e == nil:
		return "unknown"
	case e.Meta != nil:
		return "meta"
	case e.Page != nil:
		return "page"
	case e.Style != nil:
		return "style"
	case e.View != nil:
		return "view"
	default:
		return "unknown"
	}
}

// MetaSection captures document metadata assignments.
type MetaSection struct {
	Block *Block `parser:"'meta' @@"`
}

// PageSection configures page size, margins and the gap between views.
type PageSection struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Size  string         `parser:"'page' @Ident?"`
	Block *Block         `parser:"@@"`
}

// StyleSection declares a reusable set of view properties.
type StyleSection struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Name  string         `parser:"'style' @Ident"`
	Block *Block         `parser:"@@"`
}

// ViewSection declares one clamped text view.
type ViewSection struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Name  string         `parser:"'view' @Ident"`
	Block *Block         `parser:"@@"`
}

// Block is a delimited list of statements.
type Block struct {
	Statements []*Statement `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Statement is either a property or a text literal.
type Statement struct {
	Property *Property     `parser:"  @@"`
	Text     *StringLiteral `parser:"| @String"`
}

// Property uses colon syntax (key: value).
type Property struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident ':'"`
	Value *Value         `parser:"Newline* @@"`
}

// Value represents a property value.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Array  *ArrayValue    `parser:"| @@"`
	Ident  *string        `parser:"| @Ident"`
}

// ArrayValue captures `[ ... ]` lists.
type ArrayValue struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( (',' | ';' | Newline+) Newline* @@ )* )? Newline* ']'"`
}

// Scalar returns the textual form of the value; arrays are joined with ", ".
func (v *Value) Scalar() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Ident != nil:
		return *v.Ident
	case v.Array != nil:
		return strings.Join(v.List(), ", ")
	default:
		return ""
	}
}

// List returns the scalar forms of an array value, or a single element for scalars.
func (v *Value) List() []string {
	if v == nil {
		return nil
	}
	if v.Array == nil {
		return []string{v.Scalar()}
	}
	out := make([]string, 0, len(v.Array.Values))
	for _, item := range v.Array.Values {
		out = append(out, item.Scalar())
	}
	return out
}

// Properties returns the block's properties in declaration order.
func (b *Block) Properties() []*Property {
	if b == nil {
		return nil
	}
	var out []*Property
	for _, st := range b.Statements {
		if st.Property != nil {
			out = append(out, st.Property)
		}
	}
	return out
}

// Text joins the block's string literals with newlines.
func (b *Block) Text() string {
	if b == nil {
		return ""
	}
	var parts []string
	for _, st := range b.Statements {
		if st.Text != nil {
			parts = append(parts, string(*st.Text))
		}
	}
	return strings.Join(parts, "\n")
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses a description from an io.Reader; filename is used in error positions.
func Parse(filename string, r io.Reader) (*Document, error) {
	return documentParser.Parse(filename, r)
}

// ParseString parses a description from a string.
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}
