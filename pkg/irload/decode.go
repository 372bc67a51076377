package irload

import (
	"fmt"
	"strings"

	"github.com/raymyers/ralph-decomp/pkg/ir"
	"github.com/raymyers/ralph-decomp/pkg/reg"
	"gopkg.in/yaml.v3"
	"tlog.app/go/errors"
)

// ErrBadNode is wrapped by every error caused by a malformed node
var ErrBadNode = errors.New("bad node")

func bad(n *yaml.Node, format string, args ...interface{}) error {
	return errors.Wrap(ErrBadNode, "line %d: %s", n.Line, fmt.Sprintf(format, args...))
}

// Lookup tables from the rendered spellings back to node kinds
var (
	intMath2ByName   = make(map[string]ir.IntMath2Kind)
	intMath1ByName   = make(map[string]ir.IntMath1Kind)
	floatMath2ByName = make(map[string]ir.FloatMath2Kind)
	floatMath1ByName = make(map[string]ir.FloatMath1Kind)
	delayByName      = make(map[string]ir.BranchDelayKind)
	loadByName       = make(map[string]loadShape)
	storeByName      = make(map[string]storeShape)
)

type loadShape struct {
	kind ir.LoadKind
	size int
}

type storeShape struct {
	kind ir.StoreKind
	size int
}

var setKindByName = map[string]ir.SetKind{
	"reg64":      ir.SetReg64,
	"load":       ir.SetLoad,
	"store":      ir.SetStore,
	"sym-load":   ir.SetSymLoad,
	"sym-store":  ir.SetSymStore,
	"fpr->gpr64": ir.SetFPRToGPR64,
	"gpr->fpr":   ir.SetGPRToFPR,
	"reg-flt":    ir.SetRegFlt,
	"reg-i128":   ir.SetRegI128,
}

func init() {
	for k := ir.Add; k <= ir.MaxSigned; k++ {
		intMath2ByName[k.String()] = k
	}
	for k := ir.Not; k <= ir.Neg; k++ {
		intMath1ByName[k.String()] = k
	}
	for k := ir.FDiv; k <= ir.FMax; k++ {
		floatMath2ByName[k.String()] = k
	}
	for k := ir.FloatToInt; k <= ir.FSqrt; k++ {
		floatMath1ByName[k.String()] = k
	}
	for k := ir.DelayNop; k <= ir.DelayUnknown; k++ {
		delayByName[k.String()] = k
	}
	for _, size := range []int{1, 2, 4, 8, 16} {
		for _, k := range []ir.LoadKind{ir.LoadUnsigned, ir.LoadSigned} {
			loadByName[ir.LoadOp(k, size)] = loadShape{k, size}
		}
		storeByName[ir.StoreOp(ir.StoreInteger, size)] = storeShape{ir.StoreInteger, size}
	}
	loadByName[ir.LoadOp(ir.LoadFloat, 4)] = loadShape{ir.LoadFloat, 4}
	storeByName[ir.StoreOp(ir.StoreFloat, 4)] = storeShape{ir.StoreFloat, 4}
}

// DecodeNode converts one YAML node to an IR node. Scalars are registers,
// integers, quoted symbols ('foo), #f/#t, the keywords nop!, call!,
// suspend, break! and failed-to-decompile!, or else symbol values. A
// sequence is a begin. A mapping has a single key naming the operator.
func DecodeNode(n *yaml.Node) (ir.Node, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return decodeScalar(n)
	case yaml.SequenceNode:
		forms, err := decodeList(n)
		if err != nil {
			return nil, err
		}
		return &ir.Begin{Forms: forms}, nil
	case yaml.MappingNode:
		if len(n.Content) != 2 {
			return nil, bad(n, "node mapping must have exactly one key, got %d", len(n.Content)/2)
		}
		return decodeOp(n.Content[0], n.Content[1])
	case yaml.DocumentNode:
		if len(n.Content) == 1 {
			return DecodeNode(n.Content[0])
		}
	case yaml.AliasNode:
		return DecodeNode(n.Alias)
	}
	return nil, bad(n, "unexpected yaml node kind %d", n.Kind)
}

func decodeScalar(n *yaml.Node) (ir.Node, error) {
	if n.Tag == "!!int" {
		var v int64
		if err := n.Decode(&v); err != nil {
			return nil, bad(n, "integer %q: %v", n.Value, err)
		}
		return ir.Const(v), nil
	}
	if n.Tag == "!!null" || n.Value == "" {
		return nil, bad(n, "empty node")
	}

	v := n.Value
	switch v {
	case ir.FalseName, ir.TrueName:
		return &ir.Symbol{Name: v}, nil
	case "nop!":
		return &ir.Nop{}, nil
	case "call!":
		return &ir.Call{}, nil
	case "suspend":
		return &ir.Suspend{}, nil
	case "break!":
		return &ir.Break{}, nil
	case "failed-to-decompile!":
		return &ir.Failed{}, nil
	case "Q":
		return &ir.AsmReg{Kind: ir.VUQ}, nil
	case "ACC":
		return &ir.AsmReg{Kind: ir.VUAcc}, nil
	}
	if strings.HasPrefix(v, "'") {
		if len(v) == 1 {
			return nil, bad(n, "empty quoted symbol")
		}
		return &ir.Symbol{Name: v[1:]}, nil
	}
	if r, err := reg.Parse(v); err == nil {
		return ir.Reg(r), nil
	}
	return &ir.SymbolValue{Name: v}, nil
}

func decodeList(n *yaml.Node) ([]ir.Node, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, bad(n, "expected a list")
	}
	out := make([]ir.Node, 0, len(n.Content))
	for _, c := range n.Content {
		x, err := DecodeNode(c)
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, nil
}

// operands decodes a list of exactly want nodes
func operands(op string, n *yaml.Node, want int) ([]ir.Node, error) {
	if n.Kind != yaml.SequenceNode {
		if want == 1 {
			x, err := DecodeNode(n)
			if err != nil {
				return nil, err
			}
			return []ir.Node{x}, nil
		}
		return nil, bad(n, "%s takes a list of %d operands", op, want)
	}
	if len(n.Content) != want {
		return nil, bad(n, "%s takes %d operands, got %d", op, want, len(n.Content))
	}
	return decodeList(n)
}

func decodeOp(key, v *yaml.Node) (ir.Node, error) {
	op := key.Value

	if k, ok := intMath2ByName[op]; ok {
		// "-" is both subtraction and negation
		if k == ir.Sub && (v.Kind != yaml.SequenceNode || len(v.Content) == 1) {
			return decodeMath1(op, v, ir.Neg)
		}
		args, err := operands(op, v, 2)
		if err != nil {
			return nil, err
		}
		return ir.Math2(k, args[0], args[1]), nil
	}
	if k, ok := intMath1ByName[op]; ok {
		return decodeMath1(op, v, k)
	}
	if k, ok := floatMath2ByName[op]; ok {
		args, err := operands(op, v, 2)
		if err != nil {
			return nil, err
		}
		return &ir.FloatMath2{Kind: k, Arg0: args[0], Arg1: args[1]}, nil
	}
	if k, ok := floatMath1ByName[op]; ok {
		args, err := operands(op, v, 1)
		if err != nil {
			return nil, err
		}
		return &ir.FloatMath1{Kind: k, Arg: args[0]}, nil
	}
	if shape, ok := loadByName[op]; ok {
		args, err := operands(op, v, 1)
		if err != nil {
			return nil, err
		}
		return &ir.Load{Kind: shape.kind, Size: shape.size, Location: args[0]}, nil
	}
	if shape, ok := storeByName[op]; ok {
		args, err := operands(op, v, 2)
		if err != nil {
			return nil, err
		}
		return &ir.Store{Kind: shape.kind, Size: shape.size, Dst: args[0], Src: args[1]}, nil
	}

	switch op {
	case "sym":
		return &ir.Symbol{Name: v.Value}, nil
	case "sym-val":
		return &ir.SymbolValue{Name: v.Value}, nil
	case "label":
		id, err := intValue(v)
		if err != nil {
			return nil, err
		}
		return &ir.StaticAddress{LabelID: id}, nil
	case "const":
		x, err := decodeScalar(v)
		if err != nil {
			return nil, err
		}
		if _, ok := x.(*ir.IntegerConstant); !ok {
			return nil, bad(v, "const takes an integer")
		}
		return x, nil
	case "failed-to-decompile!":
		return &ir.Failed{}, nil
	case "set!":
		args, err := operands(op, v, 2)
		if err != nil {
			return nil, err
		}
		return ir.Assign(args[0], args[1]), nil
	case "set":
		return decodeSet(v)
	case "store":
		return decodeStore(v)
	case "compare":
		c, err := DecodeCondition(v)
		if err != nil {
			return nil, err
		}
		return &ir.Compare{Condition: c}, nil
	case "b!", "bl!":
		return decodeBranch(v, op == "bl!")
	case "begin":
		forms, err := decodeList(v)
		if err != nil {
			return nil, err
		}
		return &ir.Begin{Forms: forms}, nil
	case "while", "until":
		return decodeLoop(op, v)
	case "cond":
		return decodeCond(v)
	case "cond-else":
		return decodeCondWithElse(v)
	case "and", "or", "unknown-sc":
		return decodeShortCircuit(op, v)
	case "return", "break!":
		return decodeExit(op, v)
	case "type-of":
		return decodeTypeOf(v)
	case "ash", "ash.ui":
		return decodeAsh(v, op == "ash")
	case "asm":
		return decodeAsm(v)
	case "cmove-#f-zero", "cmove-#f-nonzero":
		args, err := operands(op, v, 1)
		if err != nil {
			return nil, err
		}
		return &ir.CMoveF{Src: args[0], OnZero: op == "cmove-#f-zero"}, nil
	}
	return nil, bad(key, "unknown operator %q", op)
}

func decodeMath1(op string, v *yaml.Node, k ir.IntMath1Kind) (ir.Node, error) {
	args, err := operands(op, v, 1)
	if err != nil {
		return nil, err
	}
	return &ir.IntMath1{Kind: k, Arg: args[0]}, nil
}

func intValue(n *yaml.Node) (int, error) {
	var id int
	if n.Kind != yaml.ScalarNode || n.Decode(&id) != nil {
		return 0, bad(n, "expected an integer, got %q", n.Value)
	}
	return id, nil
}

// fields returns the values of a mapping by key, rejecting keys that are
// not allowed
func fields(n *yaml.Node, allowed ...string) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, bad(n, "expected a mapping with keys %s", strings.Join(allowed, ", "))
	}
	out := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i].Value
		ok := false
		for _, a := range allowed {
			ok = ok || a == k
		}
		if !ok {
			return nil, bad(n.Content[i], "unexpected key %q", k)
		}
		out[k] = n.Content[i+1]
	}
	return out, nil
}

// required decodes a mandatory node field
func required(f map[string]*yaml.Node, parent *yaml.Node, key string) (ir.Node, error) {
	v, ok := f[key]
	if !ok {
		return nil, bad(parent, "missing %s", key)
	}
	return DecodeNode(v)
}

// optional decodes a node field that may be absent
func optional(f map[string]*yaml.Node, key string) (ir.Node, error) {
	v, ok := f[key]
	if !ok || v.Tag == "!!null" {
		return nil, nil
	}
	return DecodeNode(v)
}

func clobber(f map[string]*yaml.Node) (reg.Register, error) {
	v, ok := f["clobber"]
	if !ok {
		return reg.Register{}, nil
	}
	r, err := reg.Parse(v.Value)
	if err != nil {
		return reg.Register{}, bad(v, "clobber: %v", err)
	}
	return r, nil
}

func flag(f map[string]*yaml.Node, key string) (bool, error) {
	v, ok := f[key]
	if !ok {
		return false, nil
	}
	var b bool
	if err := v.Decode(&b); err != nil {
		return false, bad(v, "%s: expected true or false", key)
	}
	return b, nil
}

func decodeSet(v *yaml.Node) (ir.Node, error) {
	f, err := fields(v, "kind", "dst", "src", "clobber")
	if err != nil {
		return nil, err
	}
	s := &ir.Set{Kind: ir.SetReg64}
	if k, ok := f["kind"]; ok {
		if s.Kind, ok = setKindByName[k.Value]; !ok {
			return nil, bad(k, "unknown set kind %q", k.Value)
		}
	}
	if s.Dst, err = required(f, v, "dst"); err != nil {
		return nil, err
	}
	if s.Src, err = required(f, v, "src"); err != nil {
		return nil, err
	}
	if s.Clobber, err = clobber(f); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeStore(v *yaml.Node) (ir.Node, error) {
	f, err := fields(v, "kind", "size", "dst", "src", "clobber")
	if err != nil {
		return nil, err
	}
	s := &ir.Store{Kind: ir.StoreInteger, Size: 4}
	if k, ok := f["kind"]; ok {
		switch k.Value {
		case "integer":
		case "float":
			s.Kind = ir.StoreFloat
		default:
			return nil, bad(k, "unknown store kind %q", k.Value)
		}
	}
	if size, ok := f["size"]; ok {
		if s.Size, err = intValue(size); err != nil {
			return nil, err
		}
	}
	if s.Dst, err = required(f, v, "dst"); err != nil {
		return nil, err
	}
	if s.Src, err = required(f, v, "src"); err != nil {
		return nil, err
	}
	if s.Clobber, err = clobber(f); err != nil {
		return nil, err
	}
	return s, nil
}

// DecodeCondition reads a predicate: either the bare symbols #t and #f, or
// a mapping from the predicate spelling to its operand list, with an
// optional clobber key. The operand count is checked against the kind
// before the condition is built.
func DecodeCondition(v *yaml.Node) (*ir.Condition, error) {
	if v.Kind == yaml.ScalarNode {
		k, ok := ir.ConditionKindByName(v.Value)
		if !ok || k.Arity() != 0 {
			return nil, bad(v, "condition %q needs operands", v.Value)
		}
		return ir.Cond0(k), nil
	}
	if v.Kind != yaml.MappingNode {
		return nil, bad(v, "expected a condition")
	}

	var (
		kind    ir.ConditionKind
		args    []ir.Node
		clob    reg.Register
		haveOp  bool
		opNode  *yaml.Node
		argNode *yaml.Node
	)
	for i := 0; i+1 < len(v.Content); i += 2 {
		k, val := v.Content[i], v.Content[i+1]
		if k.Value == "clobber" {
			r, err := reg.Parse(val.Value)
			if err != nil {
				return nil, bad(val, "clobber: %v", err)
			}
			clob = r
			continue
		}
		if haveOp {
			return nil, bad(k, "condition has two predicates")
		}
		ck, ok := ir.ConditionKindByName(k.Value)
		if !ok {
			return nil, bad(k, "unknown condition %q", k.Value)
		}
		kind, haveOp, opNode, argNode = ck, true, k, val
	}
	if !haveOp {
		return nil, bad(v, "condition without a predicate")
	}

	want := kind.Arity()
	switch {
	case argNode.Kind == yaml.SequenceNode:
		if len(argNode.Content) != want {
			return nil, bad(opNode, "%s takes %d operands, got %d", kind, want, len(argNode.Content))
		}
		var err error
		if args, err = decodeList(argNode); err != nil {
			return nil, err
		}
	case argNode.Tag == "!!null":
		if want != 0 {
			return nil, bad(opNode, "%s takes %d operands, got 0", kind, want)
		}
	default:
		if want != 1 {
			return nil, bad(opNode, "%s takes %d operands, got 1", kind, want)
		}
		x, err := DecodeNode(argNode)
		if err != nil {
			return nil, err
		}
		args = []ir.Node{x}
	}

	var src0, src1 ir.Node
	if len(args) > 0 {
		src0 = args[0]
	}
	if len(args) > 1 {
		src1 = args[1]
	}
	return ir.NewCondition(kind, src0, src1, clob), nil
}

// delayOperands lists the operands each delay kind needs: dst, src, src2
var delayOperands = map[ir.BranchDelayKind][3]bool{
	ir.DelaySetRegFalse: {true, false, false},
	ir.DelaySetRegTrue:  {true, false, false},
	ir.DelaySetRegReg:   {true, true, false},
	ir.DelaySetBinteger: {true, false, false},
	ir.DelaySetPair:     {true, false, false},
	ir.DelayDsllv:       {true, true, true},
	ir.DelayNegate:      {true, true, false},
}

func checkDelay(v *yaml.Node, d *ir.BranchDelay) error {
	need := delayOperands[d.Kind]
	have := [3]bool{d.Destination != nil, d.Source != nil, d.Source2 != nil}
	for i, name := range []string{"dst", "src", "src2"} {
		if need[i] && !have[i] {
			return bad(v, "branch delay %s needs %s", d.Kind, name)
		}
	}
	return nil
}

func decodeDelay(v *yaml.Node) (*ir.BranchDelay, error) {
	if v.Kind == yaml.ScalarNode {
		k, ok := delayByName[v.Value]
		if !ok {
			return nil, bad(v, "unknown branch delay %q", v.Value)
		}
		d := ir.NewDelay(k)
		if err := checkDelay(v, d); err != nil {
			return nil, err
		}
		return d, nil
	}
	f, err := fields(v, "kind", "dst", "src", "src2")
	if err != nil {
		return nil, err
	}
	kn, ok := f["kind"]
	if !ok {
		return nil, bad(v, "branch delay without a kind")
	}
	k, ok := delayByName[kn.Value]
	if !ok {
		return nil, bad(kn, "unknown branch delay %q", kn.Value)
	}
	d := ir.NewDelay(k)
	if d.Destination, err = optional(f, "dst"); err != nil {
		return nil, err
	}
	if d.Source, err = optional(f, "src"); err != nil {
		return nil, err
	}
	if d.Source2, err = optional(f, "src2"); err != nil {
		return nil, err
	}
	if err := checkDelay(v, d); err != nil {
		return nil, err
	}
	return d, nil
}

func decodeBranch(v *yaml.Node, likely bool) (ir.Node, error) {
	f, err := fields(v, "cond", "label", "delay")
	if err != nil {
		return nil, err
	}
	cn, ok := f["cond"]
	if !ok {
		return nil, bad(v, "branch without a condition")
	}
	b := &ir.Branch{Likely: likely}
	if b.Condition, err = DecodeCondition(cn); err != nil {
		return nil, err
	}
	if ln, ok := f["label"]; ok {
		if b.DestLabel, err = intValue(ln); err != nil {
			return nil, err
		}
	}
	b.Delay = ir.NewDelay(ir.DelayNop)
	if dn, ok := f["delay"]; ok {
		if b.Delay, err = decodeDelay(dn); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func decodeLoop(op string, v *yaml.Node) (ir.Node, error) {
	f, err := fields(v, "cond", "body", "cleaned")
	if err != nil {
		return nil, err
	}
	cond, err := required(f, v, "cond")
	if err != nil {
		return nil, err
	}
	body, err := required(f, v, "body")
	if err != nil {
		return nil, err
	}
	if op == "until" {
		return &ir.UntilLoop{Condition: cond, Body: body}, nil
	}
	cleaned, err := flag(f, "cleaned")
	if err != nil {
		return nil, err
	}
	return &ir.WhileLoop{Condition: cond, Body: body, Cleaned: cleaned}, nil
}

func entries(v *yaml.Node) ([]*yaml.Node, error) {
	if v.Kind != yaml.SequenceNode || len(v.Content) == 0 {
		return nil, bad(v, "expected a non-empty list of entries")
	}
	return v.Content, nil
}

func decodeCond(v *yaml.Node) (ir.Node, error) {
	list, err := entries(v)
	if err != nil {
		return nil, err
	}
	c := &ir.Cond{}
	for _, en := range list {
		f, err := fields(en, "test", "body", "false-dst", "cleaned")
		if err != nil {
			return nil, err
		}
		var e ir.CondNoElseEntry
		if e.Condition, err = required(f, en, "test"); err != nil {
			return nil, err
		}
		if e.Body, err = required(f, en, "body"); err != nil {
			return nil, err
		}
		if e.FalseDestination, err = optional(f, "false-dst"); err != nil {
			return nil, err
		}
		if e.Cleaned, err = flag(f, "cleaned"); err != nil {
			return nil, err
		}
		c.Entries = append(c.Entries, e)
	}
	return c, nil
}

func decodeCondWithElse(v *yaml.Node) (ir.Node, error) {
	f, err := fields(v, "entries", "else")
	if err != nil {
		return nil, err
	}
	en, ok := f["entries"]
	if !ok {
		return nil, bad(v, "cond-else without entries")
	}
	list, err := entries(en)
	if err != nil {
		return nil, err
	}
	c := &ir.CondWithElse{}
	for _, n := range list {
		ef, err := fields(n, "test", "body", "cleaned")
		if err != nil {
			return nil, err
		}
		var e ir.CondEntry
		if e.Condition, err = required(ef, n, "test"); err != nil {
			return nil, err
		}
		if e.Body, err = required(ef, n, "body"); err != nil {
			return nil, err
		}
		if e.Cleaned, err = flag(ef, "cleaned"); err != nil {
			return nil, err
		}
		c.Entries = append(c.Entries, e)
	}
	if c.Else, err = required(f, v, "else"); err != nil {
		return nil, err
	}
	return c, nil
}

func decodeShortCircuit(op string, v *yaml.Node) (ir.Node, error) {
	f, err := fields(v, "entries", "result")
	if err != nil {
		return nil, err
	}
	s := &ir.ShortCircuit{}
	switch op {
	case "and":
		s.Kind = ir.ShortCircuitAnd
	case "or":
		s.Kind = ir.ShortCircuitOr
	}
	en, ok := f["entries"]
	if !ok {
		return nil, bad(v, "%s without entries", op)
	}
	list, err := entries(en)
	if err != nil {
		return nil, err
	}
	for _, n := range list {
		ef, err := fields(n, "test", "out", "cleaned")
		if err != nil {
			return nil, err
		}
		var e ir.ShortCircuitEntry
		if e.Condition, err = required(ef, n, "test"); err != nil {
			return nil, err
		}
		if e.Output, err = optional(ef, "out"); err != nil {
			return nil, err
		}
		if e.Cleaned, err = flag(ef, "cleaned"); err != nil {
			return nil, err
		}
		s.Entries = append(s.Entries, e)
	}
	if s.FinalResult, err = optional(f, "result"); err != nil {
		return nil, err
	}
	return s, nil
}

// decodeExit reads return and break!, which take zero to two operands:
// the value and the dead code after it
func decodeExit(op string, v *yaml.Node) (ir.Node, error) {
	var args []ir.Node
	switch {
	case v.Tag == "!!null":
	case v.Kind == yaml.SequenceNode:
		if len(v.Content) > 2 {
			return nil, bad(v, "%s takes at most 2 operands, got %d", op, len(v.Content))
		}
		var err error
		if args, err = decodeList(v); err != nil {
			return nil, err
		}
	default:
		x, err := DecodeNode(v)
		if err != nil {
			return nil, err
		}
		args = []ir.Node{x}
	}

	var code, dead ir.Node
	if len(args) > 0 {
		code = args[0]
	}
	if len(args) > 1 {
		dead = args[1]
	}
	if op == "return" {
		return &ir.Return{ReturnCode: code, DeadCode: dead}, nil
	}
	return &ir.Break{ReturnCode: code, DeadCode: dead}, nil
}

func decodeTypeOf(v *yaml.Node) (ir.Node, error) {
	if v.Kind != yaml.MappingNode || len(v.Content) == 0 || v.Content[0].Value != "obj" {
		obj, err := DecodeNode(v)
		if err != nil {
			return nil, err
		}
		return &ir.GetRuntimeType{Object: obj}, nil
	}
	f, err := fields(v, "obj", "clobber")
	if err != nil {
		return nil, err
	}
	g := &ir.GetRuntimeType{}
	if g.Object, err = required(f, v, "obj"); err != nil {
		return nil, err
	}
	if g.Clobber, err = clobber(f); err != nil {
		return nil, err
	}
	return g, nil
}

func decodeAsh(v *yaml.Node, signed bool) (ir.Node, error) {
	f, err := fields(v, "value", "shift", "clobber")
	if err != nil {
		return nil, err
	}
	a := &ir.Ash{IsSigned: signed}
	if a.Value, err = required(f, v, "value"); err != nil {
		return nil, err
	}
	if a.ShiftAmount, err = required(f, v, "shift"); err != nil {
		return nil, err
	}
	if a.Clobber, err = clobber(f); err != nil {
		return nil, err
	}
	return a, nil
}

func decodeAsm(v *yaml.Node) (ir.Node, error) {
	f, err := fields(v, "op", "dst", "src0", "src1", "src2")
	if err != nil {
		return nil, err
	}
	name, ok := f["op"]
	if !ok || name.Value == "" {
		return nil, bad(v, "asm without an op")
	}
	a := &ir.AsmOp{Name: name.Value}
	if a.Dst, err = optional(f, "dst"); err != nil {
		return nil, err
	}
	if a.Src0, err = optional(f, "src0"); err != nil {
		return nil, err
	}
	if a.Src1, err = optional(f, "src1"); err != nil {
		return nil, err
	}
	if a.Src2, err = optional(f, "src2"); err != nil {
		return nil, err
	}
	return a, nil
}
