package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"navtree/config"
	"navtree/nav"
	"navtree/render"
	"navtree/state"
)

// writeOutput writes data to the file named by the first argument or to
// STDOUT.
func writeOutput(ctx context.Context, cmd *cli.Command, what string, data []byte) error {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	fname := cmd.Args().Get(0)

	out := os.Stdout
	if len(fname) > 0 {
		f, err := os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer f.Close()
		out = f
	} else {
		fname = "STDOUT"
	}
	env.Log.Info("Outputing "+what, zap.String("file", fname))

	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("unable to write %s: %w", what, err)
	}
	return nil
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	var (
		err  error
		data []byte
		what string
	)
	if cmd.Bool("default") {
		what = "default configuration"
		data, err = config.Prepare()
	} else {
		what = "actual configuration"
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}
	return writeOutput(ctx, cmd, what, data)
}

func outputSample(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	format, err := config.ParseOutputFmt(cmd.String("to"))
	if err != nil {
		return err
	}
	table, err := nav.Load()
	if err != nil {
		return fmt.Errorf("unable to load sample table: %w", err)
	}

	var buf bytes.Buffer
	if err := render.Write(&buf, table, format, render.Options{Title: env.Cfg.Document.NavTitle}); err != nil {
		return fmt.Errorf("unable to render sample table: %w", err)
	}
	return writeOutput(ctx, cmd, "sample table", buf.Bytes())
}

func outputSchema(ctx context.Context, cmd *cli.Command) error {
	return writeOutput(ctx, cmd, "table schema", nav.Schema())
}
