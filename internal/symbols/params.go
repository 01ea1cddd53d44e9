package symbols

import (
	"strings"

	"hql/internal/parser"
)

// Parameter is one entry of a function's parameter list.
type Parameter struct {
	Name    string
	Type    string
	Default parser.Node
	Named   bool
	Rest    bool // "& name" collects the remaining arguments

	// Node is the name token as written, including a trailing ':'.
	Node *parser.Symbol
}

// ParseParams reads a parameter list. Each symbol starts a parameter; a
// trailing ':' marks it named and the following symbol, when there is
// one, is its type. Otherwise ": Type" may follow the name, and then
// "= default".
func ParseParams(l *parser.List) []Parameter {
	if l == nil {
		return nil
	}
	els := l.Elements
	var params []Parameter
	rest := false
	for i := 0; i < len(els); i++ {
		sym, ok := els[i].(*parser.Symbol)
		if !ok {
			continue
		}
		if isMarker(sym.Name) {
			rest = rest || sym.Name == "&"
			continue
		}
		p := Parameter{Name: sym.Name, Node: sym, Rest: rest}
		rest = false
		if name, named := strings.CutSuffix(sym.Name, ":"); named {
			p.Name, p.Named = name, true
			if i+1 < len(els) {
				if t, ok := els[i+1].(*parser.Symbol); ok && isTypeName(t.Name) {
					p.Type = t.Name
					i++
				}
			}
		} else if i+2 < len(els) && isSymbol(els[i+1], ":") {
			if t, ok := els[i+2].(*parser.Symbol); ok {
				p.Type = t.Name
				i += 2
			}
		}
		if i+2 < len(els) && isSymbol(els[i+1], "=") {
			p.Default = els[i+2]
			i += 2
		}
		params = append(params, p)
	}
	return params
}

// NameRange is the range of the parameter's name without the named
// marker.
func (p Parameter) NameRange() (parser.Range, bool) {
	r, ok := p.Node.Range()
	if ok && p.Named {
		r.End.Character = r.Start.Character + uint32(parser.UTF16Len(p.Name))
	}
	return r, ok
}

func (p Parameter) String() string {
	var b strings.Builder
	if p.Rest {
		b.WriteString("& ")
	}
	b.WriteString(p.Name)
	if p.Named {
		b.WriteByte(':')
	}
	if p.Type != "" {
		if !p.Named {
			b.WriteString(" :")
		}
		b.WriteString(" " + p.Type)
	}
	if p.Default != nil {
		b.WriteString(" = " + parser.String(p.Default))
	}
	return b.String()
}

func isMarker(name string) bool {
	return name == ":" || name == "=" || name == "&"
}

func isTypeName(name string) bool {
	return !isMarker(name) && !strings.HasSuffix(name, ":")
}

func isSymbol(n parser.Node, name string) bool {
	s, ok := n.(*parser.Symbol)
	return ok && s.Name == name
}
