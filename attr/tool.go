package attr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/jxsl13/attr-state/logging"
	"github.com/jxsl13/attr-state/model"
)

const toolSubsystem = "Tool"

// Locator resolves a tool name to an executable path.
type Locator interface {
	LookPath(name string) (string, error)
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func(name string) (string, error)

func (f LocatorFunc) LookPath(name string) (string, error) {
	return f(name)
}

// PathLocator searches the directories of $PATH.
var PathLocator Locator = LocatorFunc(exec.LookPath)

// Runner executes a resolved binary with an explicit argument vector.
// No shell is involved.
type Runner interface {
	Run(ctx context.Context, bin string, args []string, stdin io.Reader) (stdout, stderr []byte, err error)
}

// ExecRunner runs processes with os/exec.
type ExecRunner struct {
	// Timeout limits every invocation, zero disables it.
	Timeout time.Duration
}

func (r ExecRunner) Run(ctx context.Context, bin string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

// checkPath rejects paths that lsattr or chattr would parse as an option or attribute mode.
func checkPath(p string) error {
	if strings.HasPrefix(p, "-") || strings.HasPrefix(p, "+") || strings.HasPrefix(p, "=") {
		return &model.ValidationError{Field: "path", Msg: fmt.Sprintf("invalid path %q: must not start with -, + or =, use ./%s", p, p)}
	}
	return nil
}

// Tool is an external command that is resolved lazily on every invocation.
type Tool struct {
	Name    string
	Locator Locator
	Runner  Runner
}

// NewTool uses the PathLocator and an ExecRunner with the given timeout.
func NewTool(name string, timeout time.Duration) Tool {
	return Tool{
		Name:    name,
		Locator: PathLocator,
		Runner:  ExecRunner{Timeout: timeout},
	}
}

// Resolve returns the executable path of the tool.
func (t Tool) Resolve() (string, error) {
	locator := t.Locator
	if locator == nil {
		locator = PathLocator
	}
	bin, err := locator.LookPath(t.Name)
	if err != nil {
		return "", &model.ToolInvocationError{Tool: t.Name, ExitCode: -1, Err: err}
	}
	return bin, nil
}

// Run resolves the tool and executes it.
// A missing executable or a non-zero exit status is returned as *model.ToolInvocationError.
func (t Tool) Run(ctx context.Context, args []string, stdin io.Reader) (stdout, stderr []byte, err error) {
	bin, err := t.Resolve()
	if err != nil {
		return nil, nil, err
	}

	logging.Debug(toolSubsystem, "running %s %s", bin, strings.Join(args, " "))
	stdout, stderr, err = t.Runner.Run(ctx, bin, args, stdin)
	if err != nil {
		exitCode := -1
		var coded interface{ ExitCode() int }
		if errors.As(err, &coded) {
			exitCode = coded.ExitCode()
		}
		return stdout, stderr, &model.ToolInvocationError{
			Tool:     bin,
			Args:     args,
			ExitCode: exitCode,
			Stderr:   string(stderr),
			Err:      err,
		}
	}
	return stdout, stderr, nil
}
