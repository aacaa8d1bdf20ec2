package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"navtree/config"
	"navtree/state"
)

// Run is "export" command action.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("export")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	format, err := config.ParseOutputFmt(cmd.String("to"))
	if err != nil {
		log.Warn("Unknown output format requested, switching to js", zap.Error(err))
		format = config.OutputFmtJs
	}

	if cmd.IsSet("resolve") {
		env.Cfg.Document.ResolveReferences = cmd.Bool("resolve")
	}
	if cmd.IsSet("lenient") {
		env.Cfg.Document.LenientReferences = cmd.Bool("lenient")
	}
	// code page of legacy sources and of non UTF-8 file names in archives
	if cp := cmd.String("force-cp"); len(cp) > 0 {
		env.Cfg.Source.Charset = cp
	}
	env.Overwrite, env.Format = cmd.Bool("overwrite"), format

	if fi, err := os.Stat(src); err == nil && fi.IsDir() && within(dst, src) {
		log.Warn("Destination is inside source directory, previously exported files will be loaded as sources", zap.String("destination", dst))
	}

	job := NewJob(env.Cfg, env.Rpt, src, dst, format)
	job.Root = cmd.String("root")
	job.Overwrite = env.Overwrite

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("format", format))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	if cmd.Bool("watch") {
		return Watch(ctx, job, DefaultDebounce, log)
	}

	written, err := job.Run(ctx, log)
	if err != nil {
		return err
	}
	log.Debug("Files written", zap.Strings("files", written))
	return nil
}
