package check

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"navtree/source"
	"navtree/state"
)

// Run is "check" command action.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("check")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many sources", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	opts := NewOptions(env.Cfg)
	if cmd.IsSet("max-depth") {
		opts.MaxDepth = int(cmd.Int("max-depth"))
	}
	if cmd.Bool("lenient") {
		opts.Lenient = true
	}

	log.Info("Checking", zap.String("source", src))
	defer func(start time.Time) {
		log.Info("Checking completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	lib, err := source.Load(ctx, src, source.NewOptions(env.Cfg, env.Rpt), env.Log)
	if err != nil {
		return fmt.Errorf("unable to load navigation tables: %w", err)
	}

	warnings, err := Library(lib, opts)
	for _, w := range warnings {
		log.Warn(w.Msg, problemFields(w)...)
	}
	problems := multierr.Errors(err)
	for _, e := range problems {
		var p *Problem
		if errors.As(e, &p) {
			log.Error(p.Msg, problemFields(p)...)
		}
	}
	log.Info("Tables checked", zap.Int("tables", lib.Len()), zap.Int("warnings", len(warnings)), zap.Int("errors", len(problems)))

	if len(problems) > 0 {
		return fmt.Errorf("%d problem(s) found in %s", len(problems), src)
	}
	return nil
}

func problemFields(p *Problem) []zap.Field {
	fields := []zap.Field{zap.String("table", p.Table)}
	if len(p.Path) > 0 {
		fields = append(fields, zap.Ints("entry", p.Path), zap.String("title", p.Title))
	}
	return fields
}
