package token

import "fmt"

type Type int

const (
	EOF Type = iota
	Ident
	Number
	FloatNumber
	String
	CharLit
	True
	False
	DecimalKw
	OmniKw
	CharKw
	CharArrKw
	BoolKw
	ByteKw
	UByteKw
	IntKw
	UIntKw
	LongKw
	ULongKw
	NullKw
	SpanKw
	Semi
	Plus
	Minus
	Star
	Slash
	Rem
	Inc
	Dec
)

var KeywordMap = map[string]Type{
	"true":    True,
	"false":   False,
	"decimal": DecimalKw,
	"omni":    OmniKw,
	"char":    CharKw,
	"char[]":  CharArrKw,
	"bool":    BoolKw,
	"byte":    ByteKw,
	"ubyte":   UByteKw,
	"int":     IntKw,
	"uint":    UIntKw,
	"long":    LongKw,
	"ulong":   ULongKw,
	"null":    NullKw,
	"span":    SpanKw,
}

var punctStrings = map[Type]string{
	EOF:         "EOF",
	Ident:       "identifier",
	Number:      "number",
	FloatNumber: "float number",
	String:      "string",
	CharLit:     "char literal",
	Semi:        ";",
	Plus:        "+",
	Minus:       "-",
	Star:        "*",
	Slash:       "/",
	Rem:         "%",
	Inc:         "++",
	Dec:         "--",
}

// Reverse mapping from Type to the keyword string
var TypeStrings = make(map[Type]string)

func init() {
	for str, typ := range KeywordMap {
		TypeStrings[typ] = str
	}
	for typ, str := range punctStrings {
		TypeStrings[typ] = str
	}
}

func (t Type) String() string {
	if s, ok := TypeStrings[t]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// IsTypeKeyword reports whether the token names a value type.
func (t Type) IsTypeKeyword() bool { return t >= DecimalKw && t <= NullKw }

type Token struct {
	Type      Type
	Value     string
	FileIndex int
	Line      int
	Column    int
	Len       int
}

// IsZero reports whether the token carries no source position.
func (t Token) IsZero() bool { return t.Line == 0 && t.Column == 0 }
