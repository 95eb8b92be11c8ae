// Package snapshot stores attribute observations as a flat JSON object.
//
// Directories are keyed with a trailing slash. On restore this marks entries
// that were part of a recursive query, so they are covered by a single
// recursive read of their common parent.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/jxsl13/attr-state/model"
)

// Snapshot is the on-disk form of a model.PathAttributes.
type Snapshot map[string]model.AttributeSet

// FromObservation converts a read result into a snapshot, suffixing directories with a slash.
func FromObservation(observed model.PathAttributes, isDir func(string) bool) Snapshot {
	s := make(Snapshot, len(observed))
	for p, a := range observed {
		if isDir(p) && !strings.HasSuffix(p, "/") {
			s[p+"/"] = a
			continue
		}
		s[p] = a
	}
	return s
}

// Normalize strips the trailing slash of directory keys.
func Normalize(key string) string {
	if key == "" {
		return key
	}
	return path.Clean(key)
}

// Normalized returns the entries keyed by their normalized path.
func (s Snapshot) Normalized() model.PathAttributes {
	result := make(model.PathAttributes, len(s))
	for k, v := range s {
		result[Normalize(k)] = v
	}
	return result
}

// Keys returns the raw snapshot keys.
func (s Snapshot) Keys() []string {
	return model.PathAttributes(s).Paths()
}

// TopDir returns the directory that contains every key of the snapshot.
// The common prefix is computed character wise and cut back to its parent directory.
func (s Snapshot) TopDir() string {
	keys := s.Keys()
	if len(keys) == 0 {
		return "."
	}

	prefix := keys[0]
	for _, k := range keys[1:] {
		prefix = commonPrefix(prefix, k)
	}
	return path.Clean(path.Dir(prefix))
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}

// Encode writes the snapshot as an indented JSON object with sorted keys.
func Encode(w io.Writer, s Snapshot) error {
	if s == nil {
		s = Snapshot{}
	}
	data, err := json.MarshalIndent(s, "", " ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// Decode parses a snapshot. name is only used for error messages.
func Decode(r io.Reader, name string) (Snapshot, error) {
	var raw map[string]string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, &model.FormatError{File: name, Err: err}
	}

	s := make(Snapshot, len(raw))
	for k, v := range raw {
		if k == "" {
			return nil, &model.FormatError{File: name, Err: fmt.Errorf("empty path")}
		}
		if !model.ValidAttributes(v) {
			return nil, &model.FormatError{File: name, Err: fmt.Errorf("invalid attributes %q for %s", v, k)}
		}
		s[k] = model.AttributeSet(v)
	}
	return s, nil
}
