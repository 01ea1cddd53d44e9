package analysis_test

import (
	"testing"

	"hql/internal/analysis"
	"hql/internal/document"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func messages(diags []protocol.Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Message
	}
	return out
}

func TestParseErrorIsTheOnlyDiagnostic(t *testing.T) {
	diags := analysis.Diagnose(document.Analyse("(print undefinedThing)\n)"), 0)
	require.Len(t, diags, 1)
	d := diags[0]
	assert.Equal(t, "unexpected ')'", d.Message)
	assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)
	assert.Equal(t, "hql", *d.Source)
	assert.Equal(t, protocol.Position{Line: 1, Character: 0}, d.Range.Start)
	assert.Equal(t, protocol.Position{Line: 1, Character: 1}, d.Range.End)
}

func TestUndefinedSymbols(t *testing.T) {
	src := `(def x 1)
(print x y :key obj.field js/Math (f a: 1) (when true x))`
	diags := analysis.Diagnose(document.Analyse(src), 0)
	assert.Equal(t, []string{"undefined symbol 'y'", "undefined symbol 'f'"}, messages(diags))
	for _, d := range diags {
		assert.Equal(t, protocol.DiagnosticSeverityWarning, *d.Severity)
	}
	assert.Equal(t, protocol.Position{Line: 1, Character: 9}, diags[0].Range.Start)
}

func TestMalformedSpecialForms(t *testing.T) {
	src := `(def x)
(defn f (a))
(defn "g" (a) a)
(let (a 1 b) a)
(defenum)`
	diags := analysis.Diagnose(document.Analyse(src), 0)
	assert.Equal(t, []string{
		"def expects a name and a value",
		"defn expects a name, a parameter list and a body",
		"defn name must be a symbol",
		"let bindings must be name/value pairs",
		"defenum expects a name and at least one value",
	}, messages(diags))
}

func TestArity(t *testing.T) {
	src := `(defn add (a b) (+ a b))
(add 1 2 3)
(add 1 b: 2)
(defn all (& xs) xs)
(all 1 2 3 4)`
	diags := analysis.Diagnose(document.Analyse(src), 0)
	require.Len(t, diags, 1)
	assert.Equal(t, "add expects at most 2 arguments, got 3", diags[0].Message)
	assert.Equal(t, uint32(1), diags[0].Range.Start.Line)
}

func TestMaxDiagnostics(t *testing.T) {
	src := "(print a b c d e)"
	assert.Len(t, analysis.Diagnose(document.Analyse(src), 0), 5)
	assert.Len(t, analysis.Diagnose(document.Analyse(src), 2), 2)
	assert.Nil(t, analysis.Diagnose(nil, 0))
}
