// Package ir defines the decompiler's intermediate representation: a closed
// set of expression and statement nodes built by the structuring pass,
// typed by package typeprop and rendered to nested-list forms.
//
// Nodes are pointers. A child may be referenced from more than one parent
// when the same sub-expression is rendered in two places (a delay-slot copy
// that is also a condition operand). Clobbers are plain register values and
// are never children.
package ir

import "github.com/raymyers/ralph-decomp/pkg/reg"

// Node is the interface for all IR nodes
type Node interface {
	implNode()
}

// --- Leaves ---

// Failed marks a subtree that could not be decompiled
type Failed struct{}

// Register is a read or write of a physical register
type Register struct {
	Reg      reg.Register
	InstrIdx int // index of the instruction that referenced it, -1 if unknown
}

// Symbol is a reference to a symbol object, rendered 'name
type Symbol struct {
	Name string
}

// SymbolValue is the value stored in a global symbol
type SymbolValue struct {
	Name string
}

// StaticAddress is the address of a label in the object's static data
type StaticAddress struct {
	LabelID int
}

// IntegerConstant is a literal integer
type IntegerConstant struct {
	Value int64
}

// AsmRegKind selects a vector unit special register
type AsmRegKind int

const (
	VUQ   AsmRegKind = iota // division result
	VUAcc                   // accumulator
)

// AsmReg is a vector unit register that has no general register name
type AsmReg struct {
	Kind AsmRegKind
}

// --- Memory ---

// LoadKind is the interpretation of a loaded value
type LoadKind int

const (
	LoadUnsigned LoadKind = iota
	LoadSigned
	LoadFloat
)

// Load reads Size bytes from Location
type Load struct {
	Kind     LoadKind
	Size     int
	Location Node
}

// --- Arithmetic ---

// IntMath2Kind is a two-operand integer operation
type IntMath2Kind int

const (
	Add IntMath2Kind = iota
	Sub
	MulSigned
	DivSigned
	ModSigned
	DivUnsigned
	ModUnsigned
	Or
	And
	Nor
	Xor
	LeftShift
	RightShiftArith
	RightShiftLogic
	MulUnsigned
	MinSigned
	MaxSigned
)

// IntMath2 is a two-operand integer operation
type IntMath2 struct {
	Kind IntMath2Kind
	Arg0 Node
	Arg1 Node
}

// IntMath1Kind is a one-operand integer operation
type IntMath1Kind int

const (
	Not IntMath1Kind = iota
	Abs
	Neg
)

// IntMath1 is a one-operand integer operation
type IntMath1 struct {
	Kind IntMath1Kind
	Arg  Node
}

// FloatMath2Kind is a two-operand float operation
type FloatMath2Kind int

const (
	FDiv FloatMath2Kind = iota
	FMul
	FAdd
	FSub
	FMin
	FMax
)

// FloatMath2 is a two-operand single precision operation
type FloatMath2 struct {
	Kind FloatMath2Kind
	Arg0 Node
	Arg1 Node
}

// FloatMath1Kind is a one-operand float operation
type FloatMath1Kind int

const (
	FloatToInt FloatMath1Kind = iota
	IntToFloat
	FAbs
	FNeg
	FSqrt
)

// FloatMath1 is a one-operand single precision operation
type FloatMath1 struct {
	Kind FloatMath1Kind
	Arg  Node
}

// --- Assignment ---

// SetKind distinguishes the register files and memory involved in a Set
type SetKind int

const (
	SetReg64      SetKind = iota // gpr <- gpr
	SetLoad                      // gpr <- memory
	SetStore                     // memory <- gpr
	SetSymLoad                   // gpr <- symbol value
	SetSymStore                  // symbol value <- gpr
	SetFPRToGPR64                // gpr <- fpr bits
	SetGPRToFPR                  // fpr <- gpr bits
	SetRegFlt                    // fpr <- fpr
	SetRegI128                   // 128-bit gpr <- gpr
)

// Set assigns Src to Dst. Clobber, when valid, is a register destroyed as a
// side effect of the operation.
type Set struct {
	Kind    SetKind
	Dst     Node
	Src     Node
	Clobber reg.Register
}

// StoreKind is the register file a stored value comes from
type StoreKind int

const (
	StoreInteger StoreKind = iota
	StoreFloat
)

// Store writes Size bytes of Src to the address Dst
type Store struct {
	Kind    StoreKind
	Size    int
	Dst     Node
	Src     Node
	Clobber reg.Register
}

// --- Control ---

// Call is a function call through t9
type Call struct{}

// Branch is a raw conditional branch that the structuring pass did not
// absorb into a structured form
type Branch struct {
	Condition *Condition
	DestLabel int
	Delay     *BranchDelay // nil is an empty slot, same as DelayNop
	Likely    bool
}

// Compare produces the truth value of a condition
type Compare struct {
	Condition *Condition
}

// Nop does nothing
type Nop struct{}

// Suspend yields the current process
type Suspend struct{}

// Begin is a sequence of forms, evaluating to the last
type Begin struct {
	Forms []Node
}

// WhileLoop runs Body while Condition holds, testing first
type WhileLoop struct {
	Condition Node
	Body      Node
	Cleaned   bool
}

// UntilLoop runs Body until Condition holds, testing after each iteration
type UntilLoop struct {
	Condition Node
	Body      Node
}

// CondEntry is one case of a CondWithElse
type CondEntry struct {
	Condition Node
	Body      Node
	Cleaned   bool
}

// CondWithElse tries each entry in order and falls back to Else
type CondWithElse struct {
	Entries []CondEntry
	Else    Node
}

// CondNoElseEntry is one case of a Cond. FalseDestination is where the
// false value is written when no case matches, nil if it is not observed.
type CondNoElseEntry struct {
	Condition        Node
	Body             Node
	FalseDestination Node
	Cleaned          bool
}

// Cond tries each entry in order and evaluates to #f if none match
type Cond struct {
	Entries []CondNoElseEntry
}

// ShortCircuitKind is the boolean operator of a ShortCircuit
type ShortCircuitKind int

const (
	ShortCircuitUnknown ShortCircuitKind = iota
	ShortCircuitAnd
	ShortCircuitOr
)

// ShortCircuitEntry is one operand of an and/or. Output is the register the
// branch delay slot writes when evaluation stops here.
type ShortCircuitEntry struct {
	Condition Node
	Output    Node
	Cleaned   bool
}

// ShortCircuit is an and/or chain. FinalResult is the register holding the
// overall value.
type ShortCircuit struct {
	Kind        ShortCircuitKind
	Entries     []ShortCircuitEntry
	FinalResult Node
}

// Return leaves the function with ReturnCode. DeadCode is unreachable code
// emitted after the return by the compiler.
type Return struct {
	ReturnCode Node
	DeadCode   Node
}

// Break leaves the enclosing block
type Break struct {
	ReturnCode Node
	DeadCode   Node
}

// --- Architecture escapes ---

// GetRuntimeType reads the runtime type of a pair, binteger or basic
type GetRuntimeType struct {
	Object  Node
	Clobber reg.Register
}

// Ash is the variable arithmetic shift idiom (shift left for positive
// amounts, right for negative ones)
type Ash struct {
	ShiftAmount Node
	Value       Node
	Clobber     reg.Register
	IsSigned    bool
}

// AsmOp is an instruction with no higher level equivalent
type AsmOp struct {
	Name string
	Dst  Node
	Src0 Node
	Src1 Node
	Src2 Node
}

// CMoveF moves Src when the float condition flag is zero (OnZero) or set
type CMoveF struct {
	Src    Node
	OnZero bool
}

// Marker methods for Node interface
func (*Failed) implNode()          {}
func (*Register) implNode()        {}
func (*Symbol) implNode()          {}
func (*SymbolValue) implNode()     {}
func (*StaticAddress) implNode()   {}
func (*IntegerConstant) implNode() {}
func (*AsmReg) implNode()          {}
func (*Load) implNode()            {}
func (*IntMath2) implNode()        {}
func (*IntMath1) implNode()        {}
func (*FloatMath2) implNode()      {}
func (*FloatMath1) implNode()      {}
func (*Set) implNode()             {}
func (*Store) implNode()           {}
func (*Call) implNode()            {}
func (*Branch) implNode()          {}
func (*Compare) implNode()         {}
func (*Nop) implNode()             {}
func (*Suspend) implNode()         {}
func (*Begin) implNode()           {}
func (*WhileLoop) implNode()       {}
func (*UntilLoop) implNode()       {}
func (*CondWithElse) implNode()    {}
func (*Cond) implNode()            {}
func (*ShortCircuit) implNode()    {}
func (*Return) implNode()          {}
func (*Break) implNode()           {}
func (*GetRuntimeType) implNode()  {}
func (*Ash) implNode()             {}
func (*AsmOp) implNode()           {}
func (*CMoveF) implNode()          {}

// Common constructors

// Reg returns a register reference with no instruction index
func Reg(r reg.Register) *Register {
	return &Register{Reg: r, InstrIdx: -1}
}

// Gpr returns a reference to the named general purpose register
func Gpr(name string) *Register {
	return Reg(reg.MustParse(name))
}

// Const returns an integer constant
func Const(v int64) *IntegerConstant {
	return &IntegerConstant{Value: v}
}

// Math2 returns a two-operand integer node
func Math2(kind IntMath2Kind, a, b Node) *IntMath2 {
	return &IntMath2{Kind: kind, Arg0: a, Arg1: b}
}

// Assign returns a register to register Set
func Assign(dst, src Node) *Set {
	return &Set{Kind: SetReg64, Dst: dst, Src: src}
}
