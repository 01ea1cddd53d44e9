package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime"
	"sort"
	"sync"

	"hql/internal/analysis"
	"hql/internal/config"
	"hql/internal/document"
	"hql/internal/scanner"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	warningStyle = color.New(color.FgHiYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgBlue, color.Bold)
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "report diagnostics for files and directories",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Value:   runtime.NumCPU(),
				Usage:   "number of parallel workers",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "show a progress bar",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "disable colored output",
			},
		},
		Action: runCheck,
	}
}

// fileReport is the outcome of checking one file.
type fileReport struct {
	Path        string
	Diagnostics []protocol.Diagnostic
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Bool("no-color") {
		color.NoColor = true
	}

	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		paths = []string{"."}
	}
	files, err := collectFiles(ctx, paths, cfg)
	if err != nil {
		return err
	}

	done := func() {}
	if cmd.Bool("progress") && len(files) > 0 {
		bar := progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("checking"),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
		defer bar.Finish()
		done = func() { bar.Add(1) }
	}

	reports, err := checkFiles(ctx, files, cfg, cmd.Int("jobs"), done)
	if err != nil {
		return err
	}

	errors, warnings := 0, 0
	for _, r := range reports {
		e, w := writeReport(os.Stdout, r)
		errors += e
		warnings += w
	}
	fmt.Printf("%d files checked, %d errors, %d warnings\n", len(reports), errors, warnings)
	if errors > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

// collectFiles expands directories into the files with a configured
// extension beneath them. Files named explicitly are kept regardless of
// extension. The result is sorted and free of duplicates.
func collectFiles(ctx context.Context, paths []string, cfg config.Config) ([]string, error) {
	var mu sync.Mutex
	seen := map[string]struct{}{}
	add := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		seen[path] = struct{}{}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		skip := func(path string, d fs.DirEntry) bool { return !cfg.HasExtension(path) }
		err = scanner.Scan(ctx, path, skip, func(path string, _ []byte) error {
			add(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	files := make([]string, 0, len(seen))
	for path := range seen {
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

// checkFiles analyses files with at most jobs running at once. done is
// called after each file.
func checkFiles(ctx context.Context, files []string, cfg config.Config, jobs int, done func()) ([]fileReport, error) {
	reports := make([]fileReport, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			reports[i] = fileReport{
				Path:        path,
				Diagnostics: analysis.Diagnose(document.Analyse(string(data)), cfg.MaxDiagnostics),
			}
			done()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// writeReport prints the diagnostics of r and returns how many were errors
// and how many warnings.
func writeReport(w io.Writer, r fileReport) (errors, warnings int) {
	for _, d := range r.Diagnostics {
		severity := protocol.DiagnosticSeverityError
		if d.Severity != nil {
			severity = *d.Severity
		}
		if severity == protocol.DiagnosticSeverityError {
			errors++
			fmt.Fprint(w, errorStyle.Sprint("error: "))
		} else {
			warnings++
			fmt.Fprint(w, warningStyle.Sprint("warning: "))
		}
		fmt.Fprintln(w, d.Message)
		fmt.Fprintf(w, "%s%s\n", lineStyle.Sprint(" --> "),
			fileStyle.Sprintf("%s:%d:%d", r.Path, d.Range.Start.Line+1, d.Range.Start.Character+1))
	}
	return errors, warnings
}
