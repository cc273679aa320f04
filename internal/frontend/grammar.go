package frontend

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var netlistLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `#[^\n]*`, nil},
		{"String", `"(\\.|[^"\\])*"`, nil},
		// Const must come before Int so 0b prefixes are not split.
		{"Const", `0b[01]+`, nil},
		{"Int", `-?[0-9]+`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Punct", `[@&:+=\[\](){}]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})

// File is the root of a netlist source file.
type File struct {
	IOPorts []*IOPortDecl `@@*`
	Modules []*ModuleDecl `@@*`
	Cells   []*CellDecl   `@@*`
	Names   []*NameDecl   `@@*`
}

type IOPortDecl struct {
	Pos   lexer.Position
	Name  string `"io" @String`
	Width int    `@Int`
}

type ModuleDecl struct {
	Pos    lexer.Position
	Path   []string `"module" @String+`
	Parent *int     `( "parent" @Int )?`
	Src    *SrcDecl `@@?`
}

type SrcDecl struct {
	File string `"src" @String`
	Line int    `":" @Int`
}

type NameDecl struct {
	Pos    lexer.Position
	Module int       `"name" @Int`
	Name   string    `@String`
	Value  *ValueLit `"=" @@`
}

type CellDecl struct {
	Pos       lexer.Position
	Index     int            `"cell" @Int`
	Top       *TopDecl       `( @@`
	Op        *OpDecl        `| @@`
	Part      *PartDecl      `| @@`
	Match     *MatchDecl     `| @@`
	Assign    *AssignDecl    `| @@`
	DFF       *DFFDecl       `| @@`
	Memory    *MemoryDecl    `| @@`
	Write     *WriteDecl     `| @@`
	SyncRead  *SyncReadDecl  `| @@`
	AsyncRead *AsyncReadDecl `| @@`
	Instance  *InstanceDecl  `| @@`
	IOBuf     *IOBufDecl     `| @@ )`
	Module    int            `( "in" @Int )?`
	Src       *SrcDecl       `@@?`
}

type TopDecl struct {
	Ports []*TopPortDecl `"top" "{" @@* "}"`
}

type TopPortDecl struct {
	Input  *TopInputDecl  `  @@`
	Output *TopOutputDecl `| @@`
}

type TopInputDecl struct {
	Name  string `"input" @String`
	Start int    `@Int`
	Width int    `@Int`
}

type TopOutputDecl struct {
	Name  string    `"output" @String`
	Value *ValueLit `@@`
}

type OpDecl struct {
	Symbol string      `"op" @String`
	Width  int         `@Int`
	Inputs []*ValueLit `@@+`
}

type PartDecl struct {
	Signed bool      `"part" @"signed"?`
	Value  *ValueLit `@@`
	Offset *ValueLit `"offset" @@`
	Stride int       `"stride" @Int`
	Width  int       `"width" @Int`
}

type MatchDecl struct {
	Value    *ValueLit       `"match" @@`
	En       *NetLit         `"en" @@`
	Patterns []*PatternGroup `"{" @@* "}"`
}

// PatternGroup is the set of alternative patterns for one output bit.
type PatternGroup struct {
	Alternatives []string `  "(" @String+ ")" | @String`
}

type AssignDecl struct {
	Default     *ValueLit         `"assignlist" @@`
	Assignments []*AssignmentDecl `"{" @@* "}"`
}

type AssignmentDecl struct {
	Cond  *NetLit   `"when" @@`
	Start int       `"at" @Int`
	Value *ValueLit `"=" @@`
}

type DFFDecl struct {
	Data  *ValueLit   `"dff" @@`
	Edge  string      `"clk" @( "pos" | "neg" )?`
	Clk   *NetLit     `@@`
	Arst  *NetLit     `( "arst" @@ )?`
	Init  string      `( "init" @Int )?`
	Attrs []*AttrDecl `@@*`
}

type MemoryDecl struct {
	Depth int         `"memory" "depth" @Int`
	Width int         `"width" @Int`
	Init  []string    `( "init" "{" @Int* "}" )?`
	Attrs []*AttrDecl `@@*`
}

type WriteDecl struct {
	Memory int       `"write" "mem" @Int`
	Addr   *ValueLit `"addr" @@`
	Data   *ValueLit `"data" @@`
	Mask   *ValueLit `"mask" @@`
	Edge   string    `"clk" @( "pos" | "neg" )?`
	Clk    *NetLit   `@@`
}

type SyncReadDecl struct {
	Memory      int       `"syncread" "mem" @Int`
	Addr        *ValueLit `"addr" @@`
	Width       int       `"width" @Int`
	Edge        string    `"clk" @( "pos" | "neg" )?`
	Clk         *NetLit   `@@`
	En          *NetLit   `"en" @@`
	Transparent []int     `( "transparent" "(" @Int* ")" )?`
}

type AsyncReadDecl struct {
	Memory int       `"asyncread" "mem" @Int`
	Addr   *ValueLit `"addr" @@`
	Width  int       `"width" @Int`
}

type InstanceDecl struct {
	Type  string          `"instance" @String`
	Items []*InstanceItem `"{" @@* "}"`
}

type InstanceItem struct {
	Param  *ParamDecl      `  @@`
	Attr   *AttrDecl       `| @@`
	Input  *InstInputDecl  `| @@`
	Output *InstOutputDecl `| @@`
	IO     *InstIODecl     `| @@`
}

type ParamDecl struct {
	Name  string       `"param" @String`
	Value *LiteralDecl `"=" @@`
}

type AttrDecl struct {
	Name  string       `"attr" @String`
	Value *LiteralDecl `"=" @@`
}

type InstInputDecl struct {
	Name  string    `"input" @String`
	Value *ValueLit `"=" @@`
}

type InstOutputDecl struct {
	Name  string `"output" @String`
	Start int    `@Int`
	Width int    `@Int`
}

type InstIODecl struct {
	Dir   string      `"io" @( "i" | "o" | "io" )`
	Name  string      `@String`
	Value *IOValueLit `"=" @@`
}

type IOBufDecl struct {
	Port *IOValueLit `"iobuf" @@`
	O    *ValueLit   `"o" @@`
	OE   *NetLit     `"oe" @@`
}

// LiteralDecl is a parameter or attribute value.
type LiteralDecl struct {
	Int   *string `  @Int`
	Const *string `| @Const`
	Str   *string `| @String`
}

// ValueLit lists value items most significant first.
type ValueLit struct {
	Pos   lexer.Position
	Items []*NetItem `"[" @@* "]"`
}

type NetItem struct {
	Ref  *CellRef `  @@`
	Bits string   `| @Int`
}

// CellRef is @cell:width (bits 0..width-1) or @cell+bit.
type CellRef struct {
	Cell  int  `"@" @Int`
	Width *int `( ":" @Int`
	Bit   *int `| "+" @Int )`
}

// NetLit is a single constant bit or @cell+bit.
type NetLit struct {
	Pos   lexer.Position
	Ref   *CellBit `  @@`
	Const *int     `| @Int`
}

type CellBit struct {
	Cell int `"@" @Int`
	Bit  int `"+" @Int`
}

type IOValueLit struct {
	Pos   lexer.Position
	Items []*IOItem `"[" @@* "]"`
}

// IOItem is &"port" (all bits), &"port":width or &"port"+bit.
type IOItem struct {
	Port  string `"&" @String`
	Width *int   `( ":" @Int`
	Bit   *int   `| "+" @Int )?`
}
