package server

import (
	"fmt"
	"os"
	"path/filepath"

	"hql/internal/document"
	"hql/internal/features"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

func getXDGStateHome(appName string) (string, error) {
	xdgStateHome := os.Getenv("XDG_STATE_HOME")
	if xdgStateHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		xdgStateHome = filepath.Join(homeDir, ".local", "state")
	}

	appStateDir := filepath.Join(xdgStateHome, appName)
	if err := ensureDir(appStateDir); err != nil {
		return "", err
	}
	return appStateDir, nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	return nil
}

// toChanges converts the content changes of a didChange notification.
func toChanges(events []any) ([]document.Change, error) {
	changes := make([]document.Change, 0, len(events))
	for _, raw := range events {
		switch change := raw.(type) {
		case protocol.TextDocumentContentChangeEvent:
			changes = append(changes, document.Change{Range: change.Range, Text: change.Text})
		case protocol.TextDocumentContentChangeEventWhole:
			changes = append(changes, document.Change{Text: change.Text})
		default:
			return nil, fmt.Errorf("unexpected change event type %T", raw)
		}
	}
	return changes, nil
}

// formatOptions takes the editor's tab size and indentation style over the
// configured ones.
func (s *Server) formatOptions(opts protocol.FormattingOptions) features.FormatOptions {
	out := features.FormatOptions{
		IndentSize:   s.config.IndentSize,
		InsertSpaces: s.config.InsertSpaces,
	}
	if size, ok := toInt(opts["tabSize"]); ok && size > 0 {
		out.IndentSize = size
	}
	if spaces, ok := opts["insertSpaces"].(bool); ok {
		out.InsertSpaces = spaces
	}
	return out
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case uint32:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
