package symbols_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"hql/internal/parser"
	"hql/internal/symbols"

	"github.com/cockroachdb/datadriven"
)

func TestDataDriven(t *testing.T) {
	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			if d.Cmd != "build" {
				t.Fatalf("unknown command: %s", d.Cmd)
			}
			forms, err := parser.Parse(d.Input)
			if err != nil {
				var perr *parser.ParseError
				if !errors.As(err, &perr) {
					t.Fatalf("unexpected error type %T", err)
				}
				return fmt.Sprintf("error %s: %s\n", at(perr.Position), perr.Message)
			}
			return dump(symbols.Build(forms))
		})
	})
}

func at(p parser.Position) string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

func dump(table *symbols.Table) string {
	var b strings.Builder
	for _, info := range table.All() {
		def := "-"
		if r, ok := info.NameNode.Range(); ok {
			def = at(r.Start)
		}
		refs := make([]string, len(info.References))
		for i, ref := range info.References {
			r, _ := ref.Range()
			refs[i] = at(r.Start)
		}
		joined := strings.Join(refs, " ")
		if joined == "" {
			joined = "-"
		}
		fmt.Fprintf(&b, "%s %s def=%s refs=%s\n", info.Kind, info.Key(), def, joined)
		if info.Kind == symbols.Function {
			fmt.Fprintf(&b, "  %s\n", info.Signature())
		}
	}
	for _, s := range table.Scopes() {
		fmt.Fprintf(&b, "scope %s %s %s-%s", s.ID, s.Kind, at(s.Range.Start), at(s.Range.End))
		if s.Parent != nil {
			fmt.Fprintf(&b, " in %s", s.Parent.ID)
		}
		b.WriteByte('\n')
	}
	for _, sym := range table.Unresolved() {
		r, _ := sym.Range()
		fmt.Fprintf(&b, "unresolved %s %s\n", sym.Name, at(r.Start))
	}
	return b.String()
}
