package netlist

// Op enumerates the generic operators of Operator cells.
type Op int

const (
	OpNot        Op = iota // ~
	OpSub                  // - (negate with one input, subtract with two)
	OpBool                 // b
	OpReduceOr             // r|
	OpReduceAnd            // r&
	OpReduceXor            // r^
	OpAdd                  // +
	OpMul                  // *
	OpAnd                  // &
	OpOr                   // |
	OpXor                  // ^
	OpShl                  // <<
	OpUShr                 // u>>
	OpSShr                 // s>>
	OpEq                   // ==
	OpNe                   // !=
	OpULt                  // u<
	OpULe                  // u<=
	OpUGt                  // u>
	OpUGe                  // u>=
	OpSLt                  // s<
	OpSLe                  // s<=
	OpSGt                  // s>
	OpSGe                  // s>=
	OpUDiv                 // u//
	OpSDiv                 // s//
	OpUMod                 // u%
	OpSMod                 // s%
	OpMux                  // m: inputs are (sel, if true, if false)
)

var opSymbols = [...]string{
	OpNot:       "~",
	OpSub:       "-",
	OpBool:      "b",
	OpReduceOr:  "r|",
	OpReduceAnd: "r&",
	OpReduceXor: "r^",
	OpAdd:       "+",
	OpMul:       "*",
	OpAnd:       "&",
	OpOr:        "|",
	OpXor:       "^",
	OpShl:       "<<",
	OpUShr:      "u>>",
	OpSShr:      "s>>",
	OpEq:        "==",
	OpNe:        "!=",
	OpULt:       "u<",
	OpULe:       "u<=",
	OpUGt:       "u>",
	OpUGe:       "u>=",
	OpSLt:       "s<",
	OpSLe:       "s<=",
	OpSGt:       "s>",
	OpSGe:       "s>=",
	OpUDiv:      "u//",
	OpSDiv:      "s//",
	OpUMod:      "u%",
	OpSMod:      "s%",
	OpMux:       "m",
}

func (op Op) String() string {
	if op >= 0 && int(op) < len(opSymbols) {
		return opSymbols[op]
	}
	return "?"
}

// ParseOp maps an operator symbol back to its Op.
func ParseOp(symbol string) (Op, bool) {
	for op, s := range opSymbols {
		if s == symbol {
			return Op(op), true
		}
	}
	return 0, false
}

// Arities returns the input counts op accepts.
func (op Op) Arities() []int {
	switch op {
	case OpSub:
		return []int{1, 2}
	case OpNot, OpBool, OpReduceOr, OpReduceAnd, OpReduceXor:
		return []int{1}
	case OpMux:
		return []int{3}
	default:
		return []int{2}
	}
}

// IsComparison reports whether op produces a single truth bit from two
// equal-width operands.
func (op Op) IsComparison() bool {
	switch op {
	case OpEq, OpNe, OpULt, OpULe, OpUGt, OpUGe, OpSLt, OpSLe, OpSGt, OpSGe:
		return true
	}
	return false
}
