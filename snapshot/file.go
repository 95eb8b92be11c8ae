package snapshot

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jxsl13/attr-state/logging"
	"github.com/jxsl13/attr-state/model"
	"github.com/ulikunitz/xz"
)

const snapshotSubsystem = "Snapshot"

// Load reads a snapshot file. Files ending in .gz or .xz are decompressed transparently.
func Load(file string) (Snapshot, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	switch filepath.Ext(file) {
	case ".gz":
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmtErr(file, err)
		}
		defer gr.Close()
		r = gr
	case ".xz":
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmtErr(file, err)
		}
		r = xr
	}

	s, err := Decode(r, file)
	if err != nil {
		return nil, err
	}
	logging.Debug(snapshotSubsystem, "loaded %d entries from %s", len(s), file)
	return s, nil
}

// Save replaces file with the encoded snapshot.
// The data is written to a temporary file in the same directory which is renamed afterwards.
func Save(file string, s Snapshot) (err error) {
	dir, base := filepath.Split(file)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w, closeFn, err := compressor(file, tmp)
	if err != nil {
		return err
	}
	if err = Encode(w, s); err != nil {
		return err
	}
	if err = closeFn(); err != nil {
		return err
	}
	if err = tmp.Chmod(0644); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), file); err != nil {
		return err
	}

	logging.Debug(snapshotSubsystem, "dumped %d entries to %s", len(s), file)
	return nil
}

func compressor(file string, w io.Writer) (io.Writer, func() error, error) {
	switch filepath.Ext(file) {
	case ".gz":
		gw := gzip.NewWriter(w)
		return gw, gw.Close, nil
	case ".xz":
		xw, err := xz.NewWriter(w)
		if err != nil {
			return nil, nil, err
		}
		return xw, xw.Close, nil
	}
	return w, func() error { return nil }, nil
}

func fmtErr(file string, err error) error {
	return &model.FormatError{File: file, Err: fmt.Errorf("decompress: %w", err)}
}
