package attr

import (
	"context"
	"strings"

	"github.com/jxsl13/attr-state/logging"
	"github.com/jxsl13/attr-state/model"
)

const writerSubsystem = "Writer"

// Writer changes attributes with chattr.
// Bulk changes are fanned out through xargs, which starts chattr processes in parallel.
type Writer struct {
	Chattr Tool
	Xargs  Tool
}

func NewWriter(chattr, xargs Tool) *Writer {
	return &Writer{
		Chattr: chattr,
		Xargs:  xargs,
	}
}

// Apply runs chattr for a single path and returns whatever it printed, parsed like lsattr output.
func (w *Writer) Apply(ctx context.Context, path string, attrs model.AttributeSet, recursive bool, op model.Operation) (model.PathAttributes, error) {
	if err := checkPath(path); err != nil {
		return nil, err
	}

	args := make([]string, 0, 3)
	if recursive {
		args = append(args, "-R")
	}
	args = append(args, op.Flag()+string(attrs), path)

	logging.Info(writerSubsystem, "%s attribute(s) %q on %s", op, attrs, path)
	out, _, err := w.Chattr.Run(ctx, args, nil)
	if err != nil {
		return nil, err
	}
	return ParseOutput(out), nil
}

// ApplyBulk assigns exactly attrs to all paths with as few chattr processes as xargs decides to start.
// The paths are passed null separated on standard input.
func (w *Writer) ApplyBulk(ctx context.Context, attrs model.AttributeSet, paths []string) (stdout, stderr string, err error) {
	if len(paths) == 0 {
		return "", "", nil
	}

	for _, p := range paths {
		if err := checkPath(p); err != nil {
			return "", "", err
		}
	}

	chattr, err := w.Chattr.Resolve()
	if err != nil {
		return "", "", err
	}

	args := []string{"-0", "-P", "0", chattr, model.OpSet.Flag() + string(attrs)}
	stdin := strings.NewReader(strings.Join(paths, "\x00"))

	logging.Info(writerSubsystem, "set attribute(s) %q on %d path(s)", attrs, len(paths))
	out, errOut, err := w.Xargs.Run(ctx, args, stdin)
	if err != nil {
		return string(out), string(errOut), err
	}
	return string(out), string(errOut), nil
}
