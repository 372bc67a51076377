package ir

import (
	"fmt"
	"math"

	"github.com/raymyers/ralph-decomp/pkg/reg"
)

// ConditionKind is the predicate tested by a branch or comparison
type ConditionKind int

const (
	InvalidCondition ConditionKind = iota
	NotEqual
	Equal
	LessThanSigned
	GreaterThanSigned
	LeqSigned
	GeqSigned
	GreaterThanZeroSigned
	LeqZeroSigned
	LessThanZero
	GeqZeroSigned
	LessThanUnsigned
	GreaterThanUnsigned
	LeqUnsigned
	GeqUnsigned
	Zero
	Nonzero
	False
	Truthy
	Always
	Never
	FloatEqual
	FloatNotEqual
	FloatLessThan
	FloatGeq
	FloatLeq
	FloatGreaterThan
)

// AllConditionKinds lists every constructible kind
func AllConditionKinds() []ConditionKind {
	kinds := make([]ConditionKind, 0, FloatGreaterThan)
	for k := NotEqual; k <= FloatGreaterThan; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

type conditionInfo struct {
	name    string
	arity   int
	inverse ConditionKind
}

var conditionTable = map[ConditionKind]conditionInfo{
	NotEqual:              {"!=", 2, Equal},
	Equal:                 {"=", 2, NotEqual},
	LessThanSigned:        {"<.si", 2, GeqSigned},
	GreaterThanSigned:     {">.si", 2, LeqSigned},
	LeqSigned:             {"<=.si", 2, GreaterThanSigned},
	GeqSigned:             {">=.si", 2, LessThanSigned},
	GreaterThanZeroSigned: {">0.si", 1, LeqZeroSigned},
	LeqZeroSigned:         {"<=0.si", 1, GreaterThanZeroSigned},
	LessThanZero:          {"<0.si", 1, GeqZeroSigned},
	GeqZeroSigned:         {">=0.si", 1, LessThanZero},
	LessThanUnsigned:      {"<.ui", 2, GeqUnsigned},
	GreaterThanUnsigned:   {">.ui", 2, LeqUnsigned},
	LeqUnsigned:           {"<=.ui", 2, GreaterThanUnsigned},
	GeqUnsigned:           {">=.ui", 2, LessThanUnsigned},
	Zero:                  {"zero?", 1, Nonzero},
	Nonzero:               {"nonzero?", 1, Zero},
	False:                 {"not", 1, Truthy},
	Truthy:                {"truthy", 1, False},
	Always:                {"#t", 0, Never},
	Never:                 {"#f", 0, Always},
	FloatEqual:            {"=.s", 2, FloatNotEqual},
	FloatNotEqual:         {"!=.s", 2, FloatEqual},
	FloatLessThan:         {"<.s", 2, FloatGeq},
	FloatGeq:              {">=.s", 2, FloatLessThan},
	FloatLeq:              {"<=.s", 2, FloatGreaterThan},
	FloatGreaterThan:      {">.s", 2, FloatLeq},
}

func (k ConditionKind) info() conditionInfo {
	info, ok := conditionTable[k]
	if !ok {
		panic(fmt.Sprintf("ir: invalid condition kind %d", int(k)))
	}
	return info
}

func (k ConditionKind) String() string {
	if info, ok := conditionTable[k]; ok {
		return info.name
	}
	return "invalid-condition"
}

// ConditionKindByName returns the kind spelled name, such as "<.si"
func ConditionKindByName(name string) (ConditionKind, bool) {
	for k, info := range conditionTable {
		if info.name == name {
			return k, true
		}
	}
	return InvalidCondition, false
}

// Arity returns the number of operands the predicate takes
func (k ConditionKind) Arity() int {
	return k.info().arity
}

// Invert returns the logical negation of the predicate
func (k ConditionKind) Invert() ConditionKind {
	return k.info().inverse
}

// IsFloat reports whether the predicate compares float registers
func (k ConditionKind) IsFloat() bool {
	return k >= FloatEqual && k <= FloatGreaterThan
}

// FalseBits is the register value of the #f symbol in evaluation. Truthiness
// tests compare against it by identity.
const FalseBits uint64 = 0xffff_ffff_ffff_fff0

// Eval evaluates the predicate on raw 64-bit register values. Unused
// operands are ignored. Float predicates read single precision bit patterns
// from the low 32 bits and follow the c.cond.s/bc1t/bc1f pairing, so each
// kind and its inverse always disagree.
func (k ConditionKind) Eval(a, b uint64) bool {
	fa := math.Float32frombits(uint32(a))
	fb := math.Float32frombits(uint32(b))

	switch k {
	case NotEqual:
		return a != b
	case Equal:
		return a == b
	case LessThanSigned:
		return int64(a) < int64(b)
	case GreaterThanSigned:
		return int64(a) > int64(b)
	case LeqSigned:
		return int64(a) <= int64(b)
	case GeqSigned:
		return int64(a) >= int64(b)
	case GreaterThanZeroSigned:
		return int64(a) > 0
	case LeqZeroSigned:
		return int64(a) <= 0
	case LessThanZero:
		return int64(a) < 0
	case GeqZeroSigned:
		return int64(a) >= 0
	case LessThanUnsigned:
		return a < b
	case GreaterThanUnsigned:
		return a > b
	case LeqUnsigned:
		return a <= b
	case GeqUnsigned:
		return a >= b
	case Zero:
		return a == 0
	case Nonzero:
		return a != 0
	case False:
		return a == FalseBits
	case Truthy:
		return a != FalseBits
	case Always:
		return true
	case Never:
		return false
	case FloatEqual:
		return fa == fb
	case FloatNotEqual:
		return !(fa == fb)
	case FloatLessThan:
		return fa < fb
	case FloatGeq:
		return !(fa < fb)
	case FloatLeq:
		return fa <= fb
	case FloatGreaterThan:
		return !(fa <= fb)
	}
	panic(fmt.Sprintf("ir: invalid condition kind %d", int(k)))
}

// Condition is a predicate with its operands. The number of non-nil
// operands always equals Kind.Arity().
type Condition struct {
	Kind    ConditionKind
	Src0    Node
	Src1    Node
	Clobber reg.Register
}

// NewCondition builds a condition, panicking if the operand count does not
// match the kind
func NewCondition(kind ConditionKind, src0, src1 Node, clobber reg.Register) *Condition {
	c := &Condition{Kind: kind, Src0: src0, Src1: src1, Clobber: clobber}
	c.check()
	return c
}

// Cond0, Cond1 and Cond2 build conditions of each arity with no clobber
func Cond0(kind ConditionKind) *Condition { return NewCondition(kind, nil, nil, reg.Register{}) }

func Cond1(kind ConditionKind, a Node) *Condition {
	return NewCondition(kind, a, nil, reg.Register{})
}

func Cond2(kind ConditionKind, a, b Node) *Condition {
	return NewCondition(kind, a, b, reg.Register{})
}

func (c *Condition) check() {
	n := c.Kind.Arity()
	ok := false
	switch n {
	case 2:
		ok = c.Src0 != nil && c.Src1 != nil
	case 1:
		ok = c.Src0 != nil && c.Src1 == nil
	case 0:
		ok = c.Src0 == nil && c.Src1 == nil
	}
	if !ok {
		panic(fmt.Sprintf("ir: condition %s expects %d operands", c.Kind, n))
	}
}

// Invert replaces the predicate with its negation. Operands are untouched.
func (c *Condition) Invert() {
	c.Kind = c.Kind.Invert()
}

// Operands returns the live operands in order
func (c *Condition) Operands() []Node {
	switch c.Kind.Arity() {
	case 2:
		return []Node{c.Src0, c.Src1}
	case 1:
		return []Node{c.Src0}
	}
	return nil
}
