// Package analysis turns a document snapshot into editor diagnostics.
package analysis

import (
	"fmt"
	"sort"
	"strings"

	"hql/internal/document"
	"hql/internal/parser"
	"hql/internal/symbols"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

const Source = "hql"

// Globals are names provided by the runtime rather than defined in the
// document. They are not reported as undefined.
var Globals = []string{
	"do", "when", "unless", "and", "or", "not", "loop", "recur", "while",
	"try", "catch", "finally", "throw", "enum", "case", "from", "as",
	"first", "rest", "nth", "count", "map", "filter", "reduce", "range",
	"console", "Math", "JSON", "Object", "Array", "String", "Number",
	"Promise", "await", "async", "this", "%", "==", "===", "!==",
}

var globalSet = func() map[string]bool {
	m := make(map[string]bool, len(Globals))
	for _, g := range Globals {
		m[g] = true
	}
	return m
}()

// Diagnose reports the problems in snap. A failed parse yields exactly
// one diagnostic. max bounds the result; zero means no bound.
func Diagnose(snap *document.Snapshot, max int) []protocol.Diagnostic {
	if snap == nil {
		return nil
	}
	if snap.Err != nil {
		return []protocol.Diagnostic{parseError(snap.Err)}
	}

	var diags []protocol.Diagnostic
	for _, l := range snap.Index.Lists() {
		if d, ok := malformed(l); ok {
			diags = append(diags, d)
		} else if d, ok := arity(snap.Symbols, l); ok {
			diags = append(diags, d)
		}
	}
	for _, sym := range snap.Symbols.Unresolved() {
		if ignored(sym.Name) {
			continue
		}
		r, _ := sym.Range()
		diags = append(diags, diagnostic(r, protocol.DiagnosticSeverityWarning,
			fmt.Sprintf("undefined symbol '%s'", sym.Name)))
	}

	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i].Range.Start, diags[j].Range.Start
		return a.Line < b.Line || (a.Line == b.Line && a.Character < b.Character)
	})
	if max > 0 && len(diags) > max {
		diags = diags[:max]
	}
	return diags
}

func parseError(err *parser.ParseError) protocol.Diagnostic {
	end := err.Position
	end.Character++
	return diagnostic(parser.Range{Start: err.Position, End: end},
		protocol.DiagnosticSeverityError, err.Message)
}

func diagnostic(r parser.Range, severity protocol.DiagnosticSeverity, msg string) protocol.Diagnostic {
	source := Source
	return protocol.Diagnostic{
		Range:    r,
		Severity: &severity,
		Source:   &source,
		Message:  msg,
	}
}

// ignored matches symbols that are not plain identifiers: keywords,
// named arguments, member access and module paths.
func ignored(name string) bool {
	if globalSet[name] {
		return true
	}
	if strings.HasPrefix(name, ":") || strings.HasPrefix(name, "&") || strings.HasPrefix(name, "#") {
		return true
	}
	if strings.HasSuffix(name, ":") {
		return true
	}
	return strings.ContainsAny(name, "./")
}

func malformed(l *parser.List) (protocol.Diagnostic, bool) {
	if l.Array {
		return protocol.Diagnostic{}, false
	}
	r, _ := l.Range()
	fail := func(msg string) (protocol.Diagnostic, bool) {
		return diagnostic(r, protocol.DiagnosticSeverityError, msg), true
	}
	els := l.Elements
	switch head := l.Head(); head {
	case "def", "defenum":
		want := "a name and a value"
		if head == "defenum" {
			want = "a name and at least one value"
		}
		if len(els) < 3 {
			return fail(fmt.Sprintf("%s expects %s", head, want))
		}
		if _, ok := els[1].(*parser.Symbol); !ok {
			return fail(fmt.Sprintf("%s name must be a symbol", head))
		}
	case "defn":
		if len(els) < 4 {
			return fail("defn expects a name, a parameter list and a body")
		}
		if _, ok := els[1].(*parser.Symbol); !ok {
			return fail("defn name must be a symbol")
		}
		if _, ok := els[2].(*parser.List); !ok {
			return fail("defn parameters must be a list")
		}
	case "let":
		if len(els) < 2 {
			return fail("let expects bindings")
		}
		switch b := els[1].(type) {
		case *parser.List:
			if len(b.Elements)%2 != 0 {
				return fail("let bindings must be name/value pairs")
			}
		case *parser.Symbol:
			if len(els) < 3 {
				return fail("let expects a value")
			}
		default:
			return fail("let bindings must be a list")
		}
	case "fn":
		if len(els) < 2 {
			return fail("fn expects a parameter list")
		}
	}
	return protocol.Diagnostic{}, false
}

// arity flags calls passing more positional arguments than the callee
// declares. Named arguments ("name: value") are not counted.
func arity(table *symbols.Table, l *parser.List) (protocol.Diagnostic, bool) {
	if l.Array || len(l.Elements) == 0 {
		return protocol.Diagnostic{}, false
	}
	head, ok := l.Elements[0].(*parser.Symbol)
	if !ok {
		return protocol.Diagnostic{}, false
	}
	info, ok := table.Resolve(head)
	if !ok || info.Kind != symbols.Function || table.IsDefinition(head) {
		return protocol.Diagnostic{}, false
	}
	for _, p := range info.Parameters {
		if p.Rest {
			return protocol.Diagnostic{}, false
		}
	}
	args := 0
	for i := 1; i < len(l.Elements); i++ {
		if s, ok := l.Elements[i].(*parser.Symbol); ok && len(s.Name) > 1 && strings.HasSuffix(s.Name, ":") {
			i++
			continue
		}
		args++
	}
	if args <= len(info.Parameters) {
		return protocol.Diagnostic{}, false
	}
	r, _ := l.Range()
	return diagnostic(r, protocol.DiagnosticSeverityWarning,
		fmt.Sprintf("%s expects at most %d arguments, got %d", info.Name, len(info.Parameters), args)), true
}
