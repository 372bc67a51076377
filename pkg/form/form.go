// Package form defines the nested-list surface syntax produced by the decompiler.
// Objects are plain values; a List is an ordered slice of objects whose first
// element is usually a Symbol naming the operator.
package form

import (
	"strconv"
	"strings"
)

// Object is the interface for all surface syntax objects
type Object interface {
	implObject()
}

// Symbol is a bare identifier such as set! or a0
type Symbol string

// Integer is a signed integer literal
type Integer int64

// Float is a floating point literal
type Float float64

// String is a quoted string literal
type String string

// List is a parenthesized sequence. The empty list prints as ().
type List []Object

func (Symbol) implObject()  {}
func (Integer) implObject() {}
func (Float) implObject()   {}
func (String) implObject()  {}
func (List) implObject()    {}

// Build returns (head args...)
func Build(head string, args ...Object) List {
	l := make(List, 0, len(args)+1)
	l = append(l, Symbol(head))
	return append(l, args...)
}

// Quote returns 'o, spelled (quote o) internally
func Quote(o Object) List {
	return List{Symbol("quote"), o}
}

// Head returns the operator symbol of a list, or "" if there is none
func Head(o Object) string {
	l, ok := o.(List)
	if !ok || len(l) == 0 {
		return ""
	}
	s, ok := l[0].(Symbol)
	if !ok {
		return ""
	}
	return string(s)
}

// Equal reports whether two objects are structurally identical
func Equal(a, b Object) bool {
	switch x := a.(type) {
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case nil:
		return b == nil
	default:
		return a == b
	}
}

// Print returns the single-line text of an object
func Print(o Object) string {
	var sb strings.Builder
	write(&sb, o)
	return sb.String()
}

func write(sb *strings.Builder, o Object) {
	switch x := o.(type) {
	case Symbol:
		sb.WriteString(string(x))
	case Integer:
		sb.WriteString(strconv.FormatInt(int64(x), 10))
	case Float:
		sb.WriteString(formatFloat(float64(x)))
	case String:
		sb.WriteString(strconv.Quote(string(x)))
	case List:
		if isQuote(x) {
			sb.WriteByte('\'')
			write(sb, x[1])
			return
		}
		sb.WriteByte('(')
		for i, e := range x {
			if i > 0 {
				sb.WriteByte(' ')
			}
			write(sb, e)
		}
		sb.WriteByte(')')
	case nil:
		sb.WriteString("<nil>")
	default:
		panic("form: unknown object type")
	}
}

func isQuote(l List) bool {
	return len(l) == 2 && l[0] == Symbol("quote")
}

// formatFloat always includes a decimal point so the value reads back as a float
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}
