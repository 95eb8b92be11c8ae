package attr

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"time"
)

type call struct {
	Bin   string
	Args  []string
	Stdin string
}

type response struct {
	stdout string
	stderr string
	err    error
}

// fakeRunner records invocations and replies with canned output keyed by the joined argv.
type fakeRunner struct {
	calls     []call
	responses map[string]response
}

func (f *fakeRunner) Run(_ context.Context, bin string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	c := call{Bin: bin, Args: append([]string(nil), args...)}
	if stdin != nil {
		b, _ := io.ReadAll(stdin)
		c.Stdin = string(b)
	}
	f.calls = append(f.calls, c)

	r := f.responses[key(args)]
	return []byte(r.stdout), []byte(r.stderr), r.err
}

func key(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += " "
		}
		out += a
	}
	return out
}

func binLocator(dir string) Locator {
	return LocatorFunc(func(name string) (string, error) {
		return dir + "/" + name, nil
	})
}

var missingLocator = LocatorFunc(func(name string) (string, error) {
	return "", errors.New("executable file not found in $PATH")
})

type exitErr struct{ code int }

func (e exitErr) Error() string { return "exit status" }
func (e exitErr) ExitCode() int { return e.code }

type fileInfo struct {
	name string
	dir  bool
}

func (f fileInfo) Name() string       { return f.name }
func (f fileInfo) Size() int64        { return 0 }
func (f fileInfo) Mode() fs.FileMode  { return 0 }
func (f fileInfo) ModTime() time.Time { return time.Time{} }
func (f fileInfo) IsDir() bool        { return f.dir }
func (f fileInfo) Sys() any           { return nil }

func statDirs(dirs ...string) func(string) (fs.FileInfo, error) {
	return func(name string) (fs.FileInfo, error) {
		for _, d := range dirs {
			if d == name {
				return fileInfo{name: name, dir: true}, nil
			}
		}
		return fileInfo{name: name}, nil
	}
}
