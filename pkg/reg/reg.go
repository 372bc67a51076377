// Package reg defines the Emotion Engine register file as seen by the decompiler.
// Registers are small comparable values so they can be used as map keys and as
// non-owning clobber references.
package reg

import (
	"strconv"
	"strings"

	"tlog.app/go/errors"
)

// Kind identifies a register file
type Kind int

const (
	NoKind Kind = iota // zero value, "no register"
	GPR                // 64/128-bit general purpose
	FPR                // cop1 floating point
	VF                 // vu0 float vector
	VI                 // vu0 integer
	COP0               // system control
	PCR                // performance counter
)

func (k Kind) String() string {
	names := []string{"none", "gpr", "fpr", "vf", "vi", "cop0", "pcr"}
	if int(k) < len(names) {
		return names[k]
	}
	return "?"
}

// Register is a physical register
type Register struct {
	Kind  Kind
	Index int
}

// General purpose register indices
const (
	R0 = iota
	AT
	V0
	V1
	A0
	A1
	A2
	A3
	T0
	T1
	T2
	T3
	T4
	T5
	T6
	T7
	S0
	S1
	S2
	S3
	S4
	S5
	S6
	S7
	T8
	T9
	K0
	K1
	GP
	SP
	FP
	RA
)

var gprNames = []string{
	"r0", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

// register file sizes
var fileSize = map[Kind]int{
	GPR:  32,
	FPR:  32,
	VF:   32,
	VI:   16,
	COP0: 32,
	PCR:  2,
}

var filePrefix = map[Kind]string{
	FPR:  "f",
	VF:   "vf",
	VI:   "vi",
	COP0: "c",
	PCR:  "pcr",
}

// Gpr returns the general purpose register with the given index
func Gpr(idx int) Register { return Register{Kind: GPR, Index: idx} }

// Fpr returns the floating point register with the given index
func Fpr(idx int) Register { return Register{Kind: FPR, Index: idx} }

// Valid reports whether r names a register. The zero Register is not valid.
func (r Register) Valid() bool {
	n, ok := fileSize[r.Kind]
	return ok && r.Index >= 0 && r.Index < n
}

func (r Register) String() string {
	if !r.Valid() {
		return "<no-reg>"
	}
	if r.Kind == GPR {
		return gprNames[r.Index]
	}
	return filePrefix[r.Kind] + strconv.Itoa(r.Index)
}

// Less orders registers by file, then index
func (r Register) Less(o Register) bool {
	if r.Kind != o.Kind {
		return r.Kind < o.Kind
	}
	return r.Index < o.Index
}

// Parse converts a register name ("a0", "f12", "vf3") to a Register
func Parse(name string) (Register, error) {
	for i, n := range gprNames {
		if n == name {
			return Gpr(i), nil
		}
	}
	// longest prefixes first so "vf" wins over "f"
	for _, k := range []Kind{PCR, VF, VI, FPR, COP0} {
		prefix := filePrefix[k]
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		idx, err := strconv.Atoi(name[len(prefix):])
		if err != nil {
			continue
		}
		r := Register{Kind: k, Index: idx}
		if !r.Valid() {
			return Register{}, errors.New("register index out of range: %s", name)
		}
		return r, nil
	}
	return Register{}, errors.New("unknown register: %q", name)
}

// MustParse is like Parse but panics on error. Used for tables and tests.
func MustParse(name string) Register {
	r, err := Parse(name)
	if err != nil {
		panic(err)
	}
	return r
}

// CallerSaved returns the registers whose values do not survive a call
// under the GOAL calling convention.
func CallerSaved() []Register {
	regs := []Register{Gpr(AT), Gpr(V0), Gpr(V1)}
	for i := A0; i <= T7; i++ {
		regs = append(regs, Gpr(i))
	}
	regs = append(regs, Gpr(T8), Gpr(T9), Gpr(RA))
	for i := 0; i < 20; i++ {
		regs = append(regs, Fpr(i))
	}
	return regs
}

// ArgRegs returns the registers holding the first eight function arguments
func ArgRegs() []Register {
	return []Register{Gpr(A0), Gpr(A1), Gpr(A2), Gpr(A3), Gpr(T0), Gpr(T1), Gpr(T2), Gpr(T3)}
}
