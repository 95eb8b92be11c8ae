package attr

import (
	"context"
	"io/fs"
	"os"

	"github.com/jxsl13/attr-state/logging"
	"github.com/jxsl13/attr-state/model"
)

const readerSubsystem = "Reader"

// Reader queries live attributes with lsattr.
type Reader struct {
	Lsattr Tool
	// Stat is used to find out whether a recursively queried path is a directory.
	Stat func(name string) (fs.FileInfo, error)
}

func NewReader(lsattr Tool) *Reader {
	return &Reader{
		Lsattr: lsattr,
		Stat:   os.Stat,
	}
}

// Read returns the attributes of path, and of everything below it when recursive is set.
// For recursive reads of a directory the directory entry itself is queried
// separately, so its attributes are always part of the result.
func (r *Reader) Read(ctx context.Context, path string, recursive bool) (model.PathAttributes, error) {
	if err := checkPath(path); err != nil {
		return nil, err
	}

	flag := "-d"
	if recursive {
		flag = "-R"
	}

	out, _, err := r.Lsattr.Run(ctx, []string{flag, path}, nil)
	if err != nil {
		return nil, err
	}
	result := ParseOutput(out)

	if recursive && r.isDir(path) {
		out, _, err := r.Lsattr.Run(ctx, []string{"-d", path}, nil)
		if err != nil {
			return nil, err
		}
		result.Merge(ParseOutput(out))
	}

	logging.Debug(readerSubsystem, "read %d entries for %s (recursive=%t)", len(result), path, recursive)
	return result, nil
}

func (r *Reader) isDir(path string) bool {
	stat := r.Stat
	if stat == nil {
		stat = os.Stat
	}
	fi, err := stat(path)
	return err == nil && fi.IsDir()
}
