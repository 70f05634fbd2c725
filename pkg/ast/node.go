package ast

import "fmt"

// Position is a point in the source. Line is 1-based, Column is 0-based and
// counts runes from the start of the line.
type Position struct {
	Offset int `json:"-"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// SourceLocation is the span a node covers.
type SourceLocation struct {
	Start    Position `json:"start"`
	End      Position `json:"end"`
	Filename string   `json:"filename,omitempty"`
}

// Comment is a block or line comment collected by the tokenizer.
type Comment struct {
	Type  string         `json:"type"` // CommentBlock or CommentLine
	Value string         `json:"value"`
	Start int            `json:"start"`
	End   int            `json:"end"`
	Loc   SourceLocation `json:"loc"`
}

// RegExp is the pattern/flags pair of a regular expression literal.
type RegExp struct {
	Pattern string `json:"pattern"`
	Flags   string `json:"flags"`
}

// TemplateValue holds both readings of a template chunk. Cooked is nil when
// the chunk contains an invalid escape (allowed in tagged templates).
type TemplateValue struct {
	Raw    string  `json:"raw"`
	Cooked *string `json:"cooked"`
}

type nullValue struct{}

func (nullValue) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// Null is stored in LitValue for literals whose value is JavaScript null, so
// that the encoder still writes the key.
var Null any = nullValue{}

// Node is every syntax tree node. Type names the kind; the remaining fields
// are used according to the kind and left zero otherwise. The ast tag is the
// ESTree/babel key each field is encoded under; fields sharing a key
// (Body/BodyList, Name/NameNode, ...) are never both set.
//
// A node is opened with only a start position and finished later with its
// kind and end position, so Type is empty only while a production is still
// building the node.
type Node struct {
	Type  string         `ast:"type"`
	Start int            `ast:"start"`
	End   int            `ast:"end"`
	Loc   SourceLocation `ast:"loc"`

	// Comment attachment. Clone drops these.
	LeadingComments  []*Comment `ast:"leadingComments"`
	TrailingComments []*Comment `ast:"trailingComments"`
	InnerComments    []*Comment `ast:"innerComments"`

	// File / Program
	Program     *Node      `ast:"program"`
	Comments    []*Comment `ast:"comments"`
	SourceType  string     `ast:"sourceType"`
	Interpreter *Node      `ast:"interpreter"`

	// Names and literals
	Name          string         `ast:"name"`
	NameNode      *Node          `ast:"name"`
	LitValue      any            `ast:"value"`
	Raw           string         `ast:"raw"`
	Regex         *RegExp        `ast:"regex"`
	Pattern       string         `ast:"pattern"`
	Flags         string         `ast:"flags"`
	Bigint        string         `ast:"bigint"`
	TemplateValue *TemplateValue `ast:"value"`
	Tail          bool           `ast:"tail"`
	Directive     string         `ast:"directive"`

	// Declarations and functions
	Id             *Node   `ast:"id"`
	Kind           string  `ast:"kind"`
	Declarations   []*Node `ast:"declarations"`
	Init           *Node   `ast:"init"`
	Params         []*Node `ast:"params"`
	Rest           *Node   `ast:"rest"`
	Body           *Node   `ast:"body"`
	BodyList       []*Node `ast:"body"`
	Directives     []*Node `ast:"directives"`
	Generator      bool    `ast:"generator"`
	Async          bool    `ast:"async"`
	IsExpression   bool    `ast:"expression"`
	Predicate      *Node   `ast:"predicate"`
	ReturnType     *Node   `ast:"returnType"`
	TypeParameters *Node   `ast:"typeParameters"`
	TypeArguments  *Node   `ast:"typeArguments"`
	Declare        bool    `ast:"declare"`

	// Statements
	Expression     *Node   `ast:"expression"`
	Test           *Node   `ast:"test"`
	Consequent     *Node   `ast:"consequent"`
	ConsequentList []*Node `ast:"consequent"`
	Alternate      *Node   `ast:"alternate"`
	Label          *Node   `ast:"label"`
	Update         *Node   `ast:"update"`
	Left           *Node   `ast:"left"`
	Right          *Node   `ast:"right"`
	Await          bool    `ast:"await"`
	Discriminant   *Node   `ast:"discriminant"`
	Cases          []*Node `ast:"cases"`
	Block          *Node   `ast:"block"`
	Handler        *Node   `ast:"handler"`
	Finalizer      *Node   `ast:"finalizer"`
	Param          *Node   `ast:"param"`

	// Expressions
	Operator    string  `ast:"operator"`
	Prefix      bool    `ast:"prefix"`
	Argument    *Node   `ast:"argument"`
	Arguments   []*Node `ast:"arguments"`
	Callee      *Node   `ast:"callee"`
	Object      *Node   `ast:"object"`
	Property    *Node   `ast:"property"`
	Computed    bool    `ast:"computed"`
	Optional    bool    `ast:"optional"`
	OptionalMod string  `ast:"optional"`
	Expressions []*Node `ast:"expressions"`
	Quasis      []*Node `ast:"quasis"`
	Quasi       *Node   `ast:"quasi"`
	Tag         *Node   `ast:"tag"`
	Meta        *Node   `ast:"meta"`
	Elements    []*Node `ast:"elements"`
	Properties  []*Node `ast:"properties"`
	Key         *Node   `ast:"key"`
	Value       *Node   `ast:"value"`
	Method      bool    `ast:"method"`
	Shorthand   bool    `ast:"shorthand"`
	Delegate    bool    `ast:"delegate"`

	// Classes
	SuperClass          *Node   `ast:"superClass"`
	SuperTypeParameters *Node   `ast:"superTypeParameters"`
	Implements          []*Node `ast:"implements"`
	Mixins              []*Node `ast:"mixins"`
	Decorators          []*Node `ast:"decorators"`
	Static              bool    `ast:"static"`
	Abstract            bool    `ast:"abstract"`
	Accessibility       string  `ast:"accessibility"`
	Readonly            bool    `ast:"readonly"`
	ReadonlyMod         string  `ast:"readonly"`
	Definite            bool    `ast:"definite"`
	Variance            *Node   `ast:"variance"`
	Proto               bool    `ast:"proto"`

	// Modules
	Specifiers  []*Node `ast:"specifiers"`
	Source      *Node   `ast:"source"`
	Declaration *Node   `ast:"declaration"`
	Local       *Node   `ast:"local"`
	Imported    *Node   `ast:"imported"`
	Exported    *Node   `ast:"exported"`
	ImportKind  string  `ast:"importKind"`
	ExportKind  string  `ast:"exportKind"`
	IsDefault   bool    `ast:"default"`

	// Type annotations
	TypeAnnotation  *Node   `ast:"typeAnnotation"`
	Types           []*Node `ast:"types"`
	ElementType     *Node   `ast:"elementType"`
	ElementTypes    []*Node `ast:"elementTypes"`
	ObjectType      *Node   `ast:"objectType"`
	IndexType       *Node   `ast:"indexType"`
	Indexers        []*Node `ast:"indexers"`
	CallProperties  []*Node `ast:"callProperties"`
	InternalSlots   []*Node `ast:"internalSlots"`
	Exact           bool    `ast:"exact"`
	Qualification   *Node   `ast:"qualification"`
	Supertype       *Node   `ast:"supertype"`
	Impltype        *Node   `ast:"impltype"`
	Extends         []*Node `ast:"extends"`
	Bound           *Node   `ast:"bound"`
	Default         *Node   `ast:"default"`
	TypeName        *Node   `ast:"typeName"`
	ExprName        *Node   `ast:"exprName"`
	Constraint      *Node   `ast:"constraint"`
	Members         []*Node `ast:"members"`
	Initializer     *Node   `ast:"initializer"`
	ModuleReference *Node   `ast:"moduleReference"`
	Parameter       *Node   `ast:"parameter"`
	Parameters      []*Node `ast:"parameters"`
	ParameterName   *Node   `ast:"parameterName"`
	CheckType       *Node   `ast:"checkType"`
	ExtendsType     *Node   `ast:"extendsType"`
	TrueType        *Node   `ast:"trueType"`
	FalseType       *Node   `ast:"falseType"`
	TypeParameter   *Node   `ast:"typeParameter"`
	Literal         *Node   `ast:"literal"`
	IsExport        bool    `ast:"isExport"`
	Global          bool    `ast:"global"`
	Const           bool    `ast:"const"`

	// Markup
	OpeningElement  *Node   `ast:"openingElement"`
	ClosingElement  *Node   `ast:"closingElement"`
	OpeningFragment *Node   `ast:"openingFragment"`
	ClosingFragment *Node   `ast:"closingFragment"`
	Children        []*Node `ast:"children"`
	Attributes      []*Node `ast:"attributes"`
	SelfClosing     bool    `ast:"selfClosing"`
	Namespace       *Node   `ast:"namespace"`

	// Extra carries parse details outside the node shape: raw, rawValue,
	// parenthesized, parenStart, trailingComma.
	Extra map[string]any `ast:"extra"`
}

// NewNode opens a node at the given start.
func NewNode(start int, loc Position, filename string) *Node {
	return &Node{
		Start: start,
		Loc:   SourceLocation{Start: loc, Filename: filename},
	}
}

// Finish records the kind and end of n.
func (n *Node) Finish(kind string, end int, endLoc Position) *Node {
	n.Type = kind
	n.End = end
	n.Loc.End = endLoc
	return n
}

// ResetStart moves the start of n.
func (n *Node) ResetStart(start int, loc Position) {
	n.Start = start
	n.Loc.Start = loc
}

// Clone returns a copy of n without comment attachments. Slices and the Extra
// map are copied; child nodes are shared.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.LeadingComments = nil
	c.TrailingComments = nil
	c.InnerComments = nil
	forEachSliceField(&c, func(s *[]*Node) {
		if *s != nil {
			cp := make([]*Node, len(*s))
			copy(cp, *s)
			*s = cp
		}
	})
	if n.Comments != nil {
		c.Comments = make([]*Comment, len(n.Comments))
		copy(c.Comments, n.Comments)
	}
	if n.Extra != nil {
		c.Extra = make(map[string]any, len(n.Extra))
		for k, v := range n.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}

// SetExtra stores a parse detail on n.
func (n *Node) SetExtra(key string, value any) {
	if n.Extra == nil {
		n.Extra = make(map[string]any)
	}
	n.Extra[key] = value
}

// ExtraBool reports whether the detail key is set to true.
func (n *Node) ExtraBool(key string) bool {
	if n == nil || n.Extra == nil {
		return false
	}
	b, _ := n.Extra[key].(bool)
	return b
}

// Parenthesized reports whether n was written inside parentheses.
func (n *Node) Parenthesized() bool {
	return n.ExtraBool("parenthesized")
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.Name != "" {
		return fmt.Sprintf("%s(%s)@%d-%d", n.Type, n.Name, n.Start, n.End)
	}
	return fmt.Sprintf("%s@%d-%d", n.Type, n.Start, n.End)
}
