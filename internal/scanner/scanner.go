// scanner is used to scan a workspace for source files.
package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"
)

var log = commonlog.GetLogger("hql.scanner")

// Workers is the number of files read and handled concurrently.
var Workers = runtime.NumCPU()

// IgnoreDir reports whether the walk should not descend into path. Hidden
// directories are skipped, except the root itself.
func IgnoreDir(root, path string) bool {
	if path == root {
		return false
	}
	return strings.HasPrefix(filepath.Base(path), ".")
}

// Scan walks the entire subtree under root. Hidden files and directories
// are skipped, as is every file for which skip returns true. The remaining
// files are read and handed to callback by a pool of workers; callback may
// run concurrently with itself. Read errors are logged and the file is
// skipped. Scan returns once all callbacks have completed, with the first
// error returned by a callback or the context.
func Scan(
	ctx context.Context,
	root string,
	skip func(path string, d fs.DirEntry) bool,
	callback func(path string, document []byte) error,
) error {
	g, ctx := errgroup.WithContext(ctx)
	fileCh := make(chan string, 100)

	for range max(Workers, 1) {
		g.Go(func() error {
			for path := range fileCh {
				data, err := os.ReadFile(path)
				if err != nil {
					log.Warningf("read error: %s: %s", path, err)
					continue
				}
				if err := callback(path, data); err != nil {
					return err
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(fileCh)
		log.Debugf("starting walk at %q", root)
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				log.Warningf("walk error: %s", err)
				return nil
			}
			if d.IsDir() {
				if IgnoreDir(root, path) {
					return fs.SkipDir
				}
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") || (skip != nil && skip(path, d)) {
				return nil
			}

			select {
			case fileCh <- path:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	})

	return g.Wait()
}
