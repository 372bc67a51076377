package form

import (
	"strconv"
	"strings"
	"unicode"

	"tlog.app/go/errors"
)

// Read parses exactly one object from text
func Read(text string) (Object, error) {
	objs, err := ReadAll(text)
	if err != nil {
		return nil, err
	}
	if len(objs) != 1 {
		return nil, errors.New("expected one form, got %d", len(objs))
	}
	return objs[0], nil
}

// ReadAll parses every top-level object in text
func ReadAll(text string) ([]Object, error) {
	r := &reader{src: text}
	var out []Object
	for {
		r.skipSpace()
		if r.pos >= len(r.src) {
			return out, nil
		}
		o, err := r.read()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
}

type reader struct {
	src string
	pos int
}

func (r *reader) skipSpace() {
	for r.pos < len(r.src) {
		c := r.src[r.pos]
		switch {
		case c == ';':
			for r.pos < len(r.src) && r.src[r.pos] != '\n' {
				r.pos++
			}
		case unicode.IsSpace(rune(c)):
			r.pos++
		default:
			return
		}
	}
}

func (r *reader) read() (Object, error) {
	r.skipSpace()
	if r.pos >= len(r.src) {
		return nil, errors.New("unexpected end of input")
	}
	switch c := r.src[r.pos]; c {
	case '(':
		r.pos++
		list := List{}
		for {
			r.skipSpace()
			if r.pos >= len(r.src) {
				return nil, errors.New("unterminated list")
			}
			if r.src[r.pos] == ')' {
				r.pos++
				return list, nil
			}
			o, err := r.read()
			if err != nil {
				return nil, err
			}
			list = append(list, o)
		}
	case ')':
		return nil, errors.New("unexpected ) at offset %d", r.pos)
	case '\'':
		r.pos++
		o, err := r.read()
		if err != nil {
			return nil, err
		}
		return Quote(o), nil
	case '"':
		return r.readString()
	default:
		return r.readAtom(), nil
	}
}

func (r *reader) readString() (Object, error) {
	start := r.pos
	r.pos++
	for r.pos < len(r.src) {
		switch r.src[r.pos] {
		case '\\':
			r.pos += 2
			continue
		case '"':
			r.pos++
			s, err := strconv.Unquote(r.src[start:r.pos])
			if err != nil {
				return nil, errors.New("bad string literal at offset %d: %v", start, err)
			}
			return String(s), nil
		}
		r.pos++
	}
	return nil, errors.New("unterminated string at offset %d", start)
}

func (r *reader) readAtom() Object {
	start := r.pos
	for r.pos < len(r.src) {
		c := r.src[r.pos]
		if c == '(' || c == ')' || c == ';' || c == '"' || unicode.IsSpace(rune(c)) {
			break
		}
		r.pos++
	}
	return parseAtom(r.src[start:r.pos])
}

func parseAtom(tok string) Object {
	if strings.HasPrefix(tok, "#x") {
		if v, err := strconv.ParseUint(tok[2:], 16, 64); err == nil {
			return Integer(int64(v))
		}
	}
	if v, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return Integer(v)
	}
	if strings.ContainsAny(tok, ".eE") && tok != "." {
		if v, err := strconv.ParseFloat(tok, 64); err == nil {
			return Float(v)
		}
	}
	return Symbol(tok)
}
