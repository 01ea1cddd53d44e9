package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"hql/internal/config"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCollectAndCheck(t *testing.T) {
	root := t.TempDir()
	good := filepath.Join(root, "good.hql")
	bad := filepath.Join(root, "src", "bad.hql")
	notes := filepath.Join(root, "notes.txt")
	writeFile(t, good, "(def a 1)\n(print a)")
	writeFile(t, bad, "(print b)\n)")
	writeFile(t, notes, "(print c)")
	writeFile(t, filepath.Join(root, ".cache", "x.hql"), "(")

	cfg := config.Default()
	files, err := collectFiles(context.Background(), []string{root, notes, good}, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{good, notes, bad}, files)

	var calls atomic.Int32
	reports, err := checkFiles(context.Background(), files, cfg, 2, func() { calls.Add(1) })
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	require.Len(t, reports, 3)
	assert.Empty(t, reports[0].Diagnostics)
	require.Len(t, reports[2].Diagnostics, 1)
	assert.Equal(t, "unexpected ')'", reports[2].Diagnostics[0].Message)

	color.NoColor = true
	var out bytes.Buffer
	errs, warns := writeReport(&out, reports[1])
	assert.Equal(t, 0, errs)
	assert.Equal(t, 1, warns)
	assert.Equal(t, "warning: undefined symbol 'c'\n --> "+notes+":1:8\n", out.String())

	out.Reset()
	errs, _ = writeReport(&out, reports[2])
	assert.Equal(t, 1, errs)
	assert.True(t, strings.HasPrefix(out.String(), "error: unexpected ')'\n --> "+bad+":2:1"))
}

func TestCollectMissingPath(t *testing.T) {
	_, err := collectFiles(context.Background(), []string{filepath.Join(t.TempDir(), "missing")}, config.Default())
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	src := `(defn add (a b = 1) (+ a b))
(defenum Color red green)
(def total (let (x 1) (add x)))`
	out, err := describe("main.hql", src, true)
	require.NoError(t, err)

	var names []string
	for _, e := range out.Symbols {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"add", "Color", "total", "x"}, names, "let bindings at top level are global")

	add := out.Symbols[0]
	assert.Equal(t, symbolEntry{
		Name:       "add",
		Kind:       "function",
		Signature:  "(add a b = 1)",
		Line:       1,
		References: 1,
		Children: []symbolEntry{
			{Name: "a", Kind: "parameter", Line: 1, References: 1},
			{Name: "b", Kind: "parameter", Signature: "b = 1", Line: 1, References: 1},
		},
	}, add)
	require.Len(t, out.Symbols[1].Children, 2)
	assert.Equal(t, "Color.green", out.Symbols[1].Children[1].Signature)
	assert.Equal(t, 1, out.Symbols[3].References)

	assert.Equal(t, []scopeEntry{
		{ID: "add", Kind: "function", Lines: "1-1"},
		{ID: "let#1", Kind: "let", Lines: "3-3"},
	}, out.Scopes)

	data, err := yaml.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "signature: (add a b = 1)")
	assert.Contains(t, string(data), "kind: enum-value")

	noScopes, err := describe("main.hql", src, false)
	require.NoError(t, err)
	assert.Empty(t, noScopes.Scopes)

	_, err = describe("main.hql", "(def a", false)
	assert.EqualError(t, err, "main.hql:1:1: unterminated '(', expected ')'")
}
