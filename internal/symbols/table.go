// Package symbols builds the scoped symbol table of a parsed document.
package symbols

import (
	"fmt"
	"strings"

	"hql/internal/index"
	"hql/internal/parser"
)

type Kind int

const (
	Variable Kind = iota
	Function
	Enum
	EnumValue
	ParameterKind
)

func (k Kind) String() string {
	switch k {
	case Variable:
		return "variable"
	case Function:
		return "function"
	case Enum:
		return "enum"
	case EnumValue:
		return "enum-value"
	case ParameterKind:
		return "parameter"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for k := Variable; k <= ParameterKind; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return Variable, false
}

// SymbolInfo describes one definition and every reference to it.
type SymbolInfo struct {
	Name string
	Kind Kind

	// Node is the defining form: the def/defn/defenum list, or the name
	// token for parameters, enum values and let bindings.
	Node parser.Node

	// NameNode is the token that spells the name at the definition.
	NameNode *parser.Symbol

	// Scope is the id of the scope the symbol was defined in, empty for
	// globals.
	Scope string

	// Type is the declared type; for functions, the return type.
	Type       string
	Parameters []Parameter
	EnumValues []string

	// Parameter holds the parsed parameter for parameter symbols.
	Parameter *Parameter

	References []*parser.Symbol
}

// Key returns the table key of the symbol.
func (s *SymbolInfo) Key() string { return key(s.Scope, s.Name) }

// NameRange is the range to edit when the symbol is renamed at its
// definition.
func (s *SymbolInfo) NameRange() (parser.Range, bool) {
	if s.Parameter != nil {
		return s.Parameter.NameRange()
	}
	if s.NameNode == nil {
		return parser.Range{}, false
	}
	return s.NameNode.Range()
}

// Signature renders a one-line summary of the definition.
func (s *SymbolInfo) Signature() string {
	switch s.Kind {
	case Function:
		var b strings.Builder
		b.WriteString("(" + s.Name)
		for _, p := range s.Parameters {
			b.WriteString(" " + p.String())
		}
		b.WriteByte(')')
		if s.Type != "" {
			b.WriteString(" -> " + s.Type)
		}
		return b.String()
	case Enum:
		return fmt.Sprintf("%s { %s }", s.Name, strings.Join(s.EnumValues, " "))
	case EnumValue:
		return s.Scope + "." + s.Name
	case ParameterKind:
		if s.Parameter != nil {
			return s.Parameter.String()
		}
	}
	if s.Type != "" {
		return s.Name + ": " + s.Type
	}
	return s.Name
}

type ScopeKind int

const (
	FunctionScope ScopeKind = iota
	LetScope
	LambdaScope
)

func (k ScopeKind) String() string {
	switch k {
	case FunctionScope:
		return "function"
	case LetScope:
		return "let"
	case LambdaScope:
		return "fn"
	default:
		return "unknown"
	}
}

// Scope is a lexical region symbols can be qualified by.
type Scope struct {
	ID     string
	Kind   ScopeKind
	Parent *Scope
	Range  parser.Range
	ranged bool
}

// Table maps bare names (globals) and "scope.name" keys to definitions.
// A nil *Table is empty.
type Table struct {
	symbols    map[string]*SymbolInfo
	order      []string
	members    map[string][]string
	scopes     []*Scope
	enums      []*SymbolInfo
	refs       map[*parser.Symbol]*SymbolInfo
	defs       map[*parser.Symbol]*SymbolInfo
	unresolved []*parser.Symbol
}

func newTable() *Table {
	return &Table{
		symbols: make(map[string]*SymbolInfo),
		members: make(map[string][]string),
		refs:    make(map[*parser.Symbol]*SymbolInfo),
		defs:    make(map[*parser.Symbol]*SymbolInfo),
	}
}

func key(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "." + name
}

func (t *Table) add(info *SymbolInfo) {
	k := info.Key()
	if old, ok := t.symbols[k]; ok {
		t.supersede(old)
	} else {
		t.order = append(t.order, k)
		t.members[info.Scope] = append(t.members[info.Scope], k)
	}
	t.symbols[k] = info
	if info.Kind == Enum {
		t.enums = append(t.enums, info)
	}
	if info.NameNode != nil {
		t.defs[info.NameNode] = info
	}
}

// supersede forgets what only the replaced definition owned: its name
// token, and the parameters or enum values scoped under it.
func (t *Table) supersede(old *SymbolInfo) {
	if old.NameNode != nil {
		delete(t.defs, old.NameNode)
	}
	switch old.Kind {
	case Enum:
		t.dropEnum(old)
	case Function:
	default:
		return
	}
	for _, k := range t.members[old.Name] {
		if m := t.symbols[k]; m != nil && m.NameNode != nil {
			delete(t.defs, m.NameNode)
		}
		delete(t.symbols, k)
		for i, o := range t.order {
			if o == k {
				t.order = append(t.order[:i], t.order[i+1:]...)
				break
			}
		}
	}
	delete(t.members, old.Name)
}

func (t *Table) dropEnum(info *SymbolInfo) {
	for i, e := range t.enums {
		if e == info {
			t.enums = append(t.enums[:i], t.enums[i+1:]...)
			return
		}
	}
}

// Get returns the entry stored under a bare or scope-qualified key.
func (t *Table) Get(key string) (*SymbolInfo, bool) {
	if t == nil {
		return nil, false
	}
	info, ok := t.symbols[key]
	return info, ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.symbols)
}

// All returns every entry in definition order. A redefined key keeps the
// position of its first definition.
func (t *Table) All() []*SymbolInfo {
	if t == nil {
		return nil
	}
	out := make([]*SymbolInfo, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, t.symbols[k])
	}
	return out
}

// Members returns the entries defined in scope; "" selects globals.
func (t *Table) Members(scope string) []*SymbolInfo {
	if t == nil {
		return nil
	}
	var out []*SymbolInfo
	for _, k := range t.members[scope] {
		out = append(out, t.symbols[k])
	}
	return out
}

// Lookup resolves name from inside the given scope chain, innermost
// first: the bare name, then each scope-qualified key, then any enum that
// declares name as a value.
func (t *Table) Lookup(name string, chain []string) (*SymbolInfo, bool) {
	if t == nil {
		return nil, false
	}
	if info, ok := t.symbols[name]; ok && info.Name == name {
		return info, true
	}
	for _, scope := range chain {
		if info, ok := t.symbols[key(scope, name)]; ok && info.Name == name {
			return info, true
		}
	}
	for _, enum := range t.enums {
		for _, v := range enum.EnumValues {
			if v == name {
				info, ok := t.symbols[key(enum.Name, name)]
				return info, ok
			}
		}
	}
	return nil, false
}

// LookupAt is Lookup using the scopes that enclose pos.
func (t *Table) LookupAt(name string, pos parser.Position) (*SymbolInfo, bool) {
	return t.Lookup(name, t.ScopesAt(pos))
}

// Resolve returns the definition a symbol token refers to, whether the
// token is a reference or the defining name itself.
func (t *Table) Resolve(sym *parser.Symbol) (*SymbolInfo, bool) {
	if t == nil || sym == nil {
		return nil, false
	}
	if info, ok := t.refs[sym]; ok {
		return info, true
	}
	info, ok := t.defs[sym]
	return info, ok
}

// IsDefinition reports whether sym is the name token of a definition.
func (t *Table) IsDefinition(sym *parser.Symbol) bool {
	if t == nil {
		return false
	}
	_, ok := t.defs[sym]
	return ok
}

// Unresolved returns the non-builtin symbols the reference pass could not
// resolve, in source order.
func (t *Table) Unresolved() []*parser.Symbol {
	if t == nil {
		return nil
	}
	return t.unresolved
}

// Scopes returns every scope opened while building the table.
func (t *Table) Scopes() []*Scope {
	if t == nil {
		return nil
	}
	return t.scopes
}

// ScopesAt returns the ids of the scopes enclosing pos, innermost first.
func (t *Table) ScopesAt(pos parser.Position) []string {
	if t == nil {
		return nil
	}
	var (
		inner *Scope
		size  int
	)
	for _, s := range t.scopes {
		if !s.ranged || !index.Contains(s.Range, pos) {
			continue
		}
		if sz := index.Size(s.Range); inner == nil || sz < size {
			inner, size = s, sz
		}
	}
	var chain []string
	for s := inner; s != nil; s = s.Parent {
		chain = append(chain, s.ID)
	}
	return chain
}

// Visible returns the entries that can be referenced at pos: globals and
// the members of every enclosing scope. Inner definitions hide outer ones
// with the same name.
func (t *Table) Visible(pos parser.Position) []*SymbolInfo {
	if t == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []*SymbolInfo
	for _, scope := range append(t.ScopesAt(pos), "") {
		for _, info := range t.Members(scope) {
			if info.Kind == EnumValue || seen[info.Name] {
				continue
			}
			seen[info.Name] = true
			out = append(out, info)
		}
	}
	return out
}
