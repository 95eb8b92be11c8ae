package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/jxsl13/attr-state/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTools struct {
	dir   string
	state string
	log   string
}

// newFakeTools writes shell stand-ins for lsattr and chattr.
// lsattr prints lines of the state file, chattr appends its arguments to a log file.
func newFakeTools(t *testing.T, state string) fakeTools {
	t.Helper()
	for _, bin := range []string{"sh", "awk", "xargs"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not available", bin)
		}
	}

	dir := t.TempDir()
	ft := fakeTools{
		dir:   dir,
		state: filepath.Join(dir, "state.txt"),
		log:   filepath.Join(dir, "chattr.log"),
	}
	require.NoError(t, os.WriteFile(ft.state, []byte(state), 0644))

	lsattr := `#!/bin/sh
awk -v m="$1" -v t="$2" '{
  p = substr($0, index($0, " ") + 1)
  if (m == "-d" && p == t) print
  if (m == "-R" && index(p, t "/") == 1) print
}' "` + ft.state + `"
`
	chattr := `#!/bin/sh
echo "$@" >> "` + ft.log + `"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lsattr"), []byte(lsattr), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chattr"), []byte(chattr), 0755))
	return ft
}

func (ft fakeTools) flags() []string {
	return []string{
		"--lsattr", filepath.Join(ft.dir, "lsattr"),
		"--chattr", filepath.Join(ft.dir, "chattr"),
	}
}

func (ft fakeTools) chattrCalls(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(ft.log)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

type jsonResult struct {
	Changed bool           `json:"changed"`
	Failed  bool           `json:"failed"`
	Msg     string         `json:"msg"`
	Attr    map[string]any `json:"attr"`
}

func execute(t *testing.T, args ...string) (jsonResult, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()

	var res jsonResult
	if stdout.Len() > 0 {
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &res), stdout.String())
	}
	return res, err
}

func TestRun_EnsureSetsAttribute(t *testing.T) {
	target := "/etc/foo.conf"
	ft := newFakeTools(t, "-------------- "+target+"\n")

	res, err := execute(t, append(ft.flags(), "path="+target, "attr=i")...)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "attribute(s) i set", res.Msg)
	assert.Equal(t, []string{"+i " + target}, ft.chattrCalls(t))
}

func TestRun_EnsureAlreadyPresent(t *testing.T) {
	target := "/etc/foo.conf"
	ft := newFakeTools(t, "----i--------- "+target+"\n")

	res, err := execute(t, append(ft.flags(), "name="+target, "attr=i")...)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, map[string]any{target: "i"}, res.Attr)
	assert.Empty(t, ft.chattrCalls(t))
}

func TestRun_CheckMode(t *testing.T) {
	target := "/etc/foo.conf"
	ft := newFakeTools(t, "----i--------- "+target+"\n")

	res, err := execute(t, append(ft.flags(), "--check", "path="+target, "attr=i", "state=absent")...)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "attribute(s) i removed", res.Msg)
	assert.Empty(t, ft.chattrCalls(t))
}

func TestRun_Restore(t *testing.T) {
	root := t.TempDir()
	x, y := filepath.Join(root, "x"), filepath.Join(root, "y")
	ft := newFakeTools(t, "----i--------- "+x+"\n-----a--i----- "+y+"\n")

	dump := filepath.Join(t.TempDir(), "dump.json")
	require.NoError(t, os.WriteFile(dump, []byte(`{"`+x+`": "ia", "`+y+`": "ai", "`+root+`/gone": "i"}`), 0644))

	res, err := execute(t, append(ft.flags(), "filelist="+dump)...)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, map[string]any{"ia": []any{x}}, res.Attr)
	assert.Equal(t, []string{"=ia " + x}, ft.chattrCalls(t))
}

func TestRun_DumpAndQuery(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	ft := newFakeTools(t, "----i--------- "+file+"\n")

	dump := filepath.Join(t.TempDir(), "dump.json")
	res, err := execute(t, append(ft.flags(), "--path", root, "--recursive", "--filelist", dump)...)
	require.NoError(t, err)
	assert.Equal(t, "attributes dumped", res.Msg)

	data, err := os.ReadFile(dump)
	require.NoError(t, err)
	assert.JSONEq(t, `{"`+file+`": "i"}`, string(data))

	res, err = execute(t, append(ft.flags(), "path="+file)...)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, map[string]any{file: "i"}, res.Attr)
}

func TestRun_Failures(t *testing.T) {
	ft := newFakeTools(t, "")

	res, err := execute(t, append(ft.flags(), "path=/etc/foo.conf", "attr=iX")...)
	require.Error(t, err)
	assert.True(t, res.Failed)
	assert.Equal(t, "Invalid attributes: iX", res.Msg)
	assert.Equal(t, ExitCodeUsage, exitCode(err))

	res, err = execute(t, append(ft.flags(), "path=/etc/foo.conf", "attr=i")...)
	require.Error(t, err)
	assert.Equal(t, "Cant get attributes for /etc/foo.conf", res.Msg)
	assert.Equal(t, ExitCodeError, exitCode(err))

	res, err = execute(t, "--lsattr", filepath.Join(ft.dir, "missing"), "path=/etc/foo.conf")
	require.Error(t, err)
	var toolErr *model.ToolInvocationError
	assert.True(t, errors.As(err, &toolErr))
	assert.True(t, res.Failed)

	res, err = execute(t, "--bogus")
	assert.Equal(t, ExitCodeUsage, exitCode(err))
	assert.True(t, res.Failed)
	assert.Contains(t, res.Msg, "bogus")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitCodeSuccess, exitCode(nil))
	assert.Equal(t, ExitCodeUsage, exitCode(&model.ValidationError{Msg: "x"}))
	assert.Equal(t, ExitCodeError, exitCode(&model.LookupError{Path: "/x"}))
	assert.Equal(t, ExitCodeError, exitCode(errors.New("x")))
}

func TestWriteText(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	writeText(&buf, model.Result{
		Changed: true,
		Msg:     "attribute(s) i set",
		Attr:    model.PathAttributes{"/b": "ia", "/a": "e"},
	})
	assert.Equal(t, "changed: attribute(s) i set\ne   /a\nia  /b\n", buf.String())

	buf.Reset()
	writeText(&buf, model.Result{Attr: model.ChangeBatch{"i": {"/x", "/y"}}})
	assert.Equal(t, "ok\n=i\n  /x\n  /y\n", buf.String())

	buf.Reset()
	writeText(&buf, model.Result{Failed: true, Msg: "boom"})
	assert.Equal(t, "failed: boom\n", buf.String())
}

func TestVersionCommand(t *testing.T) {
	var stdout bytes.Buffer
	cmd := newRootCmd(&stdout, &bytes.Buffer{})
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "attr-state version dev\n", stdout.String())
}
