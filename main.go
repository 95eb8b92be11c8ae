package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jxsl13/attr-state/attr"
	"github.com/jxsl13/attr-state/config"
	"github.com/jxsl13/attr-state/logging"
	"github.com/jxsl13/attr-state/model"
	"github.com/jxsl13/attr-state/reconcile"
	"github.com/jxsl13/attr-state/snapshot"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
	ExitCodeUsage   = 2
)

func main() {
	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attr-state [key=value...]",
		Short: "get, set and unset attributes on a Linux file system",
		Long: `attr-state manages Linux file system attributes with lsattr, chattr and xargs.

  attr-state path=/etc/foo.conf attr=i
  attr-state name=/etc/foo.conf attr=i state=absent recursive=yes
  attr-state filelist=/path/to/dump.json
  attr-state path=/etc/foo.bar filelist=/path/to/dump.json

Parameters may be passed as key=value arguments, flags or ATTR_* environment variables.
Changing attributes usually requires root privileges.`,
		Args:          cobra.ArbitraryArgs,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		verr := &model.ValidationError{Msg: err.Error()}
		writeResult(stdout, "json", failed(verr))
		return verr
	})

	if err := config.RegisterFlags(cmd.Flags(), config.Default()); err != nil {
		panic(err)
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Flags(), args)
		if err != nil {
			writeResult(stdout, "json", failed(err))
			return err
		}
		logging.Init(cfg.Level, stderr)

		res, err := run(cmd.Context(), cfg)
		if err != nil {
			logging.Error("Main", err, "%s failed", cfg.Mode)
			res = failed(err)
		}
		writeResult(stdout, cfg.Output, res)
		return err
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "attr-state version %s\n", version)
		},
	})
	return cmd
}

func newReconciler(cfg *config.Config) *reconcile.Reconciler {
	reader := attr.NewReader(attr.NewTool(cfg.Lsattr, cfg.Timeout))
	writer := attr.NewWriter(
		attr.NewTool(cfg.Chattr, cfg.Timeout),
		attr.NewTool(cfg.Xargs, cfg.Timeout),
	)
	return reconcile.New(reader, writer, cfg.Check)
}

func run(ctx context.Context, cfg *config.Config) (model.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	r := newReconciler(cfg)

	switch cfg.Mode {
	case config.ModeEnsure:
		return r.Ensure(ctx, model.DesiredChange{
			Path:      cfg.Path,
			Attrs:     cfg.AttrSet,
			State:     cfg.DesiredState,
			Recursive: cfg.Recursive,
		})
	case config.ModeRestore:
		target, err := snapshot.Load(cfg.Filelist)
		if err != nil {
			return model.Result{}, err
		}
		return r.Restore(ctx, target)
	case config.ModeQuery:
		return r.Query(ctx, cfg.Path, cfg.Recursive)
	case config.ModeDump:
		return r.Dump(ctx, cfg.Path, cfg.Recursive, cfg.Filelist)
	}
	return model.Result{}, &model.ValidationError{Msg: "Unknown arguments combination"}
}

func failed(err error) model.Result {
	return model.Result{
		Failed: true,
		Msg:    err.Error(),
		Attr:   model.PathAttributes{},
	}
}
