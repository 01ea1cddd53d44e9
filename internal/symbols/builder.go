package symbols

import (
	"fmt"

	"hql/internal/parser"
)

type builder struct {
	t     *Table
	stack []*Scope
	seq   int

	// forms registered by the definition pass, with the scope each defn
	// opened there
	defined map[*parser.List]*Scope
	// name and type tokens that are never references
	skip map[*parser.Symbol]bool
}

// Build runs both passes over the top-level forms: definitions first,
// then references and scopes.
func Build(forms []parser.Node) *Table {
	b := &builder{
		t:       newTable(),
		defined: make(map[*parser.List]*Scope),
		skip:    make(map[*parser.Symbol]bool),
	}
	for _, f := range forms {
		if l, ok := f.(*parser.List); ok {
			b.define(l)
		}
	}
	for _, f := range forms {
		b.walk(f)
	}
	return b.t
}

func (b *builder) current() *Scope {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

func (b *builder) scopeID() string {
	if s := b.current(); s != nil {
		return s.ID
	}
	return ""
}

func (b *builder) chain() []string {
	chain := make([]string, 0, len(b.stack))
	for i := len(b.stack) - 1; i >= 0; i-- {
		chain = append(chain, b.stack[i].ID)
	}
	return chain
}

func (b *builder) open(id string, kind ScopeKind, form parser.Node) *Scope {
	s := &Scope{ID: id, Kind: kind, Parent: b.current()}
	s.Range, s.ranged = form.Range()
	b.t.scopes = append(b.t.scopes, s)
	b.stack = append(b.stack, s)
	return s
}

func (b *builder) enter(s *Scope) { b.stack = append(b.stack, s) }

func (b *builder) exit() { b.stack = b.stack[:len(b.stack)-1] }

func (b *builder) fresh(prefix string) string {
	b.seq++
	return fmt.Sprintf("%s#%d", prefix, b.seq)
}

// define registers a def, defn or defenum form under the active scope.
// It reports false for any other form or a malformed one. Malformed
// definitions are not walked for references.
func (b *builder) define(l *parser.List) bool {
	switch l.Head() {
	case "def":
		return b.defineVar(l)
	case "defn":
		return b.defineFunc(l)
	case "defenum":
		return b.defineEnum(l)
	}
	return false
}

func (b *builder) defineVar(l *parser.List) bool {
	if len(l.Elements) < 3 {
		return false
	}
	name, ok := l.Elements[1].(*parser.Symbol)
	if !ok {
		return false
	}
	b.skip[name] = true
	b.t.add(&SymbolInfo{Name: name.Name, Kind: Variable, Node: l, NameNode: name, Scope: b.scopeID()})
	b.defined[l] = nil
	return true
}

func (b *builder) defineFunc(l *parser.List) bool {
	if len(l.Elements) < 4 {
		return false
	}
	name, ok := l.Elements[1].(*parser.Symbol)
	if !ok {
		return false
	}
	info := &SymbolInfo{Name: name.Name, Kind: Function, Node: l, NameNode: name, Scope: b.scopeID()}
	if ps, ok := l.Elements[2].(*parser.List); ok {
		info.Parameters = ParseParams(ps)
	}
	if isSymbol(l.Elements[3], "->") && len(l.Elements) > 4 {
		if rt, ok := l.Elements[4].(*parser.Symbol); ok {
			info.Type = rt.Name
			b.skip[rt] = true
		}
	}
	b.skip[name] = true
	b.t.add(info)

	scope := b.open(name.Name, FunctionScope, l)
	b.defineParams(info.Parameters)
	b.exit()
	b.defined[l] = scope
	return true
}

func (b *builder) defineParams(params []Parameter) {
	for i := range params {
		p := &params[i]
		b.skip[p.Node] = true
		b.t.add(&SymbolInfo{
			Name:      p.Name,
			Kind:      ParameterKind,
			Node:      p.Node,
			NameNode:  p.Node,
			Scope:     b.scopeID(),
			Type:      p.Type,
			Parameter: p,
		})
	}
}

func (b *builder) defineEnum(l *parser.List) bool {
	if len(l.Elements) < 3 {
		return false
	}
	name, ok := l.Elements[1].(*parser.Symbol)
	if !ok {
		return false
	}
	info := &SymbolInfo{Name: name.Name, Kind: Enum, Node: l, NameNode: name, Scope: b.scopeID()}
	var values []*parser.Symbol
	for _, e := range l.Elements[2:] {
		switch e := e.(type) {
		case *parser.Symbol:
			values = append(values, e)
		case *parser.List:
			// (case value)
			if e.Head() == "case" && len(e.Elements) > 1 {
				if v, ok := e.Elements[1].(*parser.Symbol); ok {
					values = append(values, v)
				}
			}
		}
	}
	for _, v := range values {
		info.EnumValues = append(info.EnumValues, v.Name)
	}
	b.skip[name] = true
	b.t.add(info)
	for _, v := range values {
		b.skip[v] = true
		b.t.add(&SymbolInfo{Name: v.Name, Kind: EnumValue, Node: v, NameNode: v, Scope: name.Name})
	}
	b.defined[l] = nil
	return true
}

func (b *builder) walk(n parser.Node) {
	switch n := n.(type) {
	case *parser.Symbol:
		b.reference(n)
	case *parser.List:
		b.walkList(n)
	}
}

func (b *builder) reference(sym *parser.Symbol) {
	if b.skip[sym] || IsBuiltin(sym.Name) {
		return
	}
	info, ok := b.t.Lookup(sym.Name, b.chain())
	if !ok {
		b.t.unresolved = append(b.t.unresolved, sym)
		return
	}
	info.References = append(info.References, sym)
	b.t.refs[sym] = info
}

func (b *builder) walkList(l *parser.List) {
	if l.Array {
		b.walkAll(l.Elements)
		return
	}
	switch l.Head() {
	case "defn":
		b.walkFunc(l)
	case "def", "defenum":
		if _, ok := b.defined[l]; !ok && !b.define(l) {
			return
		}
		if l.Head() == "def" {
			b.walkAll(l.Elements[2:])
		}
	case "fn":
		b.walkLambda(l)
	case "let":
		b.walkLet(l)
	case "import":
		b.walkImport(l)
	default:
		b.walkAll(l.Elements)
	}
}

func (b *builder) walkAll(nodes []parser.Node) {
	for _, n := range nodes {
		b.walk(n)
	}
}

func (b *builder) walkFunc(l *parser.List) {
	scope, ok := b.defined[l]
	if !ok {
		if !b.define(l) {
			return
		}
		scope = b.defined[l]
	}
	info, ok := b.t.Resolve(l.Elements[1].(*parser.Symbol))
	if !ok || info.Node != l {
		// superseded by a later defn of the same name
		return
	}

	b.enter(scope)
	defer b.exit()
	for _, p := range info.Parameters {
		if p.Default != nil {
			b.walk(p.Default)
		}
	}
	body := 3
	if isSymbol(l.Elements[3], "->") {
		body = 5
	}
	if body < len(l.Elements) {
		b.walkAll(l.Elements[body:])
	}
}

// walkLambda handles (fn (params) body...) and (fn name (params) body...).
func (b *builder) walkLambda(l *parser.List) {
	i := 1
	if i < len(l.Elements) {
		if name, ok := l.Elements[i].(*parser.Symbol); ok {
			b.skip[name] = true
			i++
		}
	}
	var params []Parameter
	if i < len(l.Elements) {
		if ps, ok := l.Elements[i].(*parser.List); ok {
			params = ParseParams(ps)
			i++
		}
	}
	if i+1 < len(l.Elements) && isSymbol(l.Elements[i], "->") {
		if rt, ok := l.Elements[i+1].(*parser.Symbol); ok {
			b.skip[rt] = true
		}
		i += 2
	}

	b.open(b.fresh("fn"), LambdaScope, l)
	defer b.exit()
	b.defineParams(params)
	for _, p := range params {
		if p.Default != nil {
			b.walk(p.Default)
		}
	}
	if i < len(l.Elements) {
		b.walkAll(l.Elements[i:])
	}
}

// walkLet handles (let (name value ...) body...). Bindings are registered
// in the enclosing scope and their values walked there; only the body
// runs inside the new scope. The single binding form (let name value)
// behaves like def.
func (b *builder) walkLet(l *parser.List) {
	if len(l.Elements) < 2 {
		return
	}
	bindings, ok := l.Elements[1].(*parser.List)
	if !ok {
		if name, ok := l.Elements[1].(*parser.Symbol); ok && len(l.Elements) >= 3 {
			b.walkAll(l.Elements[2:])
			b.bind(name, l)
			return
		}
		b.walkAll(l.Elements[1:])
		return
	}

	els := bindings.Elements
	for i := 0; i < len(els); i += 2 {
		name, ok := els[i].(*parser.Symbol)
		if !ok {
			b.walk(els[i])
			continue
		}
		if i+1 < len(els) {
			b.walk(els[i+1])
		}
		b.bind(name, name)
	}

	b.open(b.fresh("let"), LetScope, l)
	defer b.exit()
	b.walkAll(l.Elements[2:])
}

func (b *builder) bind(name *parser.Symbol, node parser.Node) {
	b.skip[name] = true
	b.t.add(&SymbolInfo{Name: name.Name, Kind: Variable, Node: node, NameNode: name, Scope: b.scopeID()})
}

// walkImport binds the names of (import name from "path") and
// (import [a b as c] from "path") in the active scope.
func (b *builder) walkImport(l *parser.List) {
	if len(l.Elements) < 2 {
		return
	}
	switch spec := l.Elements[1].(type) {
	case *parser.Symbol:
		b.bind(spec, l)
	case *parser.List:
		els := spec.Elements
		for i := 0; i < len(els); i++ {
			name, ok := els[i].(*parser.Symbol)
			if !ok {
				continue
			}
			if i+2 < len(els) && isSymbol(els[i+1], "as") {
				if alias, ok := els[i+2].(*parser.Symbol); ok {
					name = alias
				}
				i += 2
			}
			b.bind(name, l)
		}
	}
	for _, e := range l.Elements[2:] {
		if !isSymbol(e, "from") {
			b.walk(e)
		}
	}
}
