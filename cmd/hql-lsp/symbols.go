package main

import (
	"context"
	"fmt"
	"os"

	"hql/internal/document"
	"hql/internal/symbols"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func symbolsCommand() *cli.Command {
	return &cli.Command{
		Name:      "symbols",
		Usage:     "print the definitions of a file as YAML",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "scopes",
				Usage: "include the scopes opened by functions, let and fn",
			},
		},
		Action: runSymbols,
	}
}

type symbolEntry struct {
	Name       string        `yaml:"name"`
	Kind       string        `yaml:"kind"`
	Signature  string        `yaml:"signature,omitempty"`
	Line       uint32        `yaml:"line"`
	References int           `yaml:"references"`
	Children   []symbolEntry `yaml:"children,omitempty"`
}

type scopeEntry struct {
	ID     string `yaml:"id"`
	Kind   string `yaml:"kind"`
	Parent string `yaml:"parent,omitempty"`
	Lines  string `yaml:"lines"`
}

type symbolsOutput struct {
	File    string        `yaml:"file"`
	Symbols []symbolEntry `yaml:"symbols"`
	Scopes  []scopeEntry  `yaml:"scopes,omitempty"`
}

func runSymbols(_ context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("symbols expects exactly one file")
	}
	path := cmd.Args().First()
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, err := describe(path, string(data), cmd.Bool("scopes"))
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(out)
}

// describe lists the global definitions of text, nesting members under
// the function or enum that owns them. Lines are 1-based.
func describe(path, text string, withScopes bool) (symbolsOutput, error) {
	snap := document.Analyse(text)
	if snap.Err != nil {
		return symbolsOutput{}, fmt.Errorf("%s:%d:%d: %s", path,
			snap.Err.Position.Line+1, snap.Err.Position.Character+1, snap.Err.Message)
	}

	out := symbolsOutput{File: path}
	for _, info := range snap.Symbols.Members("") {
		entry := entryOf(info)
		if info.Kind == symbols.Function || info.Kind == symbols.Enum {
			for _, member := range snap.Symbols.Members(info.Name) {
				entry.Children = append(entry.Children, entryOf(member))
			}
		}
		out.Symbols = append(out.Symbols, entry)
	}
	if withScopes {
		for _, scope := range snap.Symbols.Scopes() {
			s := scopeEntry{
				ID:    scope.ID,
				Kind:  scope.Kind.String(),
				Lines: fmt.Sprintf("%d-%d", scope.Range.Start.Line+1, scope.Range.End.Line+1),
			}
			if scope.Parent != nil {
				s.Parent = scope.Parent.ID
			}
			out.Scopes = append(out.Scopes, s)
		}
	}
	return out, nil
}

func entryOf(info *symbols.SymbolInfo) symbolEntry {
	e := symbolEntry{
		Name:       info.Name,
		Kind:       info.Kind.String(),
		References: len(info.References),
	}
	if sig := info.Signature(); sig != info.Name {
		e.Signature = sig
	}
	if r, ok := info.NameRange(); ok {
		e.Line = r.Start.Line + 1
	}
	return e
}
