package reconcile

import (
	"context"
	"sort"
	"strings"

	"github.com/jxsl13/attr-state/model"
)

type applyCall struct {
	Path      string
	Attrs     model.AttributeSet
	Recursive bool
	Op        model.Operation
}

type bulkCall struct {
	Attrs model.AttributeSet
	Paths []string
}

// fakeFS is an in-memory attribute store standing in for lsattr and chattr.
type fakeFS struct {
	attrs map[string]model.AttributeSet

	reads      []string
	applies    []applyCall
	bulks      []bulkCall
	bulkOutput map[model.AttributeSet][2]string
	readErr    error
	writeErr   error
}

func newFakeFS(attrs map[string]model.AttributeSet) *fakeFS {
	return &fakeFS{attrs: attrs}
}

func (f *fakeFS) below(p string, recursive bool) []string {
	var out []string
	for k := range f.attrs {
		if k == p || (recursive && strings.HasPrefix(k, strings.TrimSuffix(p, "/")+"/")) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func (f *fakeFS) Read(_ context.Context, p string, recursive bool) (model.PathAttributes, error) {
	f.reads = append(f.reads, p)
	if f.readErr != nil {
		return nil, f.readErr
	}
	result := make(model.PathAttributes)
	for _, k := range f.below(p, recursive) {
		result[k] = f.attrs[k]
	}
	return result, nil
}

func (f *fakeFS) Apply(_ context.Context, p string, attrs model.AttributeSet, recursive bool, op model.Operation) (model.PathAttributes, error) {
	f.applies = append(f.applies, applyCall{p, attrs, recursive, op})
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	for _, k := range f.below(p, recursive) {
		f.attrs[k] = combine(f.attrs[k], attrs, op)
	}
	return model.PathAttributes{}, nil
}

func (f *fakeFS) ApplyBulk(_ context.Context, attrs model.AttributeSet, paths []string) (string, string, error) {
	f.bulks = append(f.bulks, bulkCall{attrs, append([]string(nil), paths...)})
	if f.writeErr != nil {
		return "", "", f.writeErr
	}
	for _, p := range paths {
		f.attrs[p] = attrs
	}
	out := f.bulkOutput[attrs]
	return out[0], out[1], nil
}

func combine(current, attrs model.AttributeSet, op model.Operation) model.AttributeSet {
	switch op {
	case model.OpSet:
		return attrs
	case model.OpAdd:
		result := string(current)
		for _, c := range attrs {
			if !current.Has(c) {
				result += string(c)
			}
		}
		return model.AttributeSet(result)
	default:
		var sb strings.Builder
		for _, c := range current {
			if !attrs.Has(c) {
				sb.WriteRune(c)
			}
		}
		return model.AttributeSet(sb.String())
	}
}
