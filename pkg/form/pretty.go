package form

import "strings"

// DefaultWidth is the line width used by Pretty when none is given
const DefaultWidth = 100

// Pretty returns a multi-line rendering of o. Lists that fit in the
// remaining width are printed on one line. Otherwise the operator and any
// leading atoms (empty lists included) stay on the first line and each
// remaining element goes on its own line, indented two spaces past the
// opening paren.
func Pretty(o Object, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	p := &prettyPrinter{width: width}
	p.print(o, 0)
	return p.sb.String()
}

type prettyPrinter struct {
	sb    strings.Builder
	width int
}

func (p *prettyPrinter) print(o Object, indent int) {
	flat := Print(o)
	l, ok := o.(List)
	if !ok || len(l) == 0 || isQuote(l) || indent+len(flat) <= p.width {
		p.sb.WriteString(flat)
		return
	}

	p.sb.WriteByte('(')
	i := 0
	// operator and leading atoms share the first line; () counts as an atom
	for i < len(l) {
		if sub, isList := l[i].(List); isList && len(sub) > 0 && i > 0 {
			break
		}
		if i > 0 {
			p.sb.WriteByte(' ')
		}
		p.sb.WriteString(Print(l[i]))
		i++
	}

	for ; i < len(l); i++ {
		p.sb.WriteByte('\n')
		p.sb.WriteString(strings.Repeat(" ", indent+2))
		p.print(l[i], indent+2)
	}
	p.sb.WriteByte(')')
}
