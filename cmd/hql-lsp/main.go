package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"hql/internal/config"
	"hql/internal/server"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/urfave/cli/v3"
)

var log = commonlog.GetLogger("hql")

func main() {
	app := &cli.Command{
		Name:    "hql-lsp",
		Usage:   "language server and checker for HQL",
		Version: server.Version,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log verbosity (0 errors only, higher is chattier)",
			},
			&cli.StringFlag{
				Name:  "logfile",
				Usage: "path to log file (default stderr)",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML configuration file",
			},
		},
		Before: configureLogging,
		Commands: []*cli.Command{
			serveCommand(),
			checkCommand(),
			symbolsCommand(),
		},
		Action: runServe,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func configureLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var path *string
	if logfile := cmd.String("logfile"); logfile != "" {
		path = &logfile
	}
	commonlog.Configure(cmd.Int("verbose"), path)
	return ctx, nil
}

// loadConfig reads --config, or returns the defaults when it is unset.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	path := cmd.String("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFile(path)
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "run the language server over stdio (default)",
		Action: runServe,
	}
}

func runServe(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	runtime.GOMAXPROCS(4)
	log.Infof("starting hql language server %s", server.Version)

	return server.NewServer(cfg).RunStdio()
}
