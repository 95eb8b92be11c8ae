// Package reconcile compares desired attributes with the live filesystem
// and drives the external tools to converge them.
package reconcile

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jxsl13/attr-state/logging"
	"github.com/jxsl13/attr-state/model"
	"github.com/jxsl13/attr-state/snapshot"
)

const reconcileSubsystem = "Reconciler"

// AttributeReader queries live attributes.
type AttributeReader interface {
	Read(ctx context.Context, path string, recursive bool) (model.PathAttributes, error)
}

// AttributeWriter changes live attributes.
type AttributeWriter interface {
	Apply(ctx context.Context, path string, attrs model.AttributeSet, recursive bool, op model.Operation) (model.PathAttributes, error)
	ApplyBulk(ctx context.Context, attrs model.AttributeSet, paths []string) (stdout, stderr string, err error)
}

// Reconciler computes the changes needed to reach a desired state.
// In check mode the writer is never invoked, but the result still reports
// whether a change would have been made.
type Reconciler struct {
	reader AttributeReader
	writer AttributeWriter
	check  bool
	isDir  func(string) bool
}

func New(reader AttributeReader, writer AttributeWriter, check bool) *Reconciler {
	return &Reconciler{
		reader: reader,
		writer: writer,
		check:  check,
		isDir:  isDir,
	}
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}

// Ensure makes sure the attributes of a single path are present or absent.
func (r *Reconciler) Ensure(ctx context.Context, desired model.DesiredChange) (model.Result, error) {
	attrs, err := model.ParseAttributeSet(string(desired.Attrs))
	if err != nil {
		return model.Result{}, err
	}
	desired.Attrs = attrs

	current, err := r.reader.Read(ctx, desired.Path, desired.Recursive)
	if err != nil {
		return model.Result{}, err
	}
	live, found := current.Lookup(desired.Path)
	if !found {
		return model.Result{}, &model.LookupError{Path: desired.Path}
	}

	result := model.Result{
		Changed: desired.NeedsChange(live),
		Msg:     ensureMsg(desired),
		Attr:    current,
	}

	if !result.Changed {
		logging.Debug(reconcileSubsystem, "%s already has attribute(s) %s %s", desired.Path, attrs, desired.State)
		return result, nil
	}
	if r.check {
		logging.Info(reconcileSubsystem, "check mode: would %s attribute(s) %s on %s", desired.Operation(), attrs, desired.Path)
		return result, nil
	}

	applied, err := r.writer.Apply(ctx, desired.Path, attrs, desired.Recursive, desired.Operation())
	if err != nil {
		return model.Result{}, err
	}
	result.Attr = applied
	return result, nil
}

func ensureMsg(d model.DesiredChange) string {
	if d.State == model.StateAbsent {
		return fmt.Sprintf("attribute(s) %s removed", d.Attrs)
	}
	return fmt.Sprintf("attribute(s) %s set", d.Attrs)
}

// Restore converges the live filesystem to a loaded snapshot.
// Paths of the snapshot that no longer exist are skipped. The result
// carries the ChangeBatch, mapping each target attribute string to its paths.
func (r *Reconciler) Restore(ctx context.Context, target snapshot.Snapshot) (model.Result, error) {
	batch, err := r.Plan(ctx, target)
	if err != nil {
		return model.Result{}, err
	}

	result := model.Result{
		Changed: len(batch) > 0,
		Msg:     "attributes loaded",
		Attr:    batch,
	}
	if !result.Changed || r.check {
		return result, nil
	}

	var output []string
	for _, attrs := range batch.Groups() {
		stdout, stderr, err := r.writer.ApplyBulk(ctx, attrs, batch[attrs])
		if err != nil {
			return model.Result{}, err
		}
		if stdout != "" || stderr != "" {
			output = append(output, strings.TrimSpace(stdout+"\n"+stderr))
		}
	}
	if len(output) > 0 {
		result.Msg = strings.Join(output, "\n")
	}
	return result, nil
}

// Plan reads the live state below the common directory of all snapshot entries
// with one recursive query and groups every differing path by its target attributes.
func (r *Reconciler) Plan(ctx context.Context, target snapshot.Snapshot) (model.ChangeBatch, error) {
	batch := make(model.ChangeBatch)
	if len(target) == 0 {
		return batch, nil
	}

	top := target.TopDir()
	read, err := r.reader.Read(ctx, top, true)
	if err != nil {
		return nil, err
	}
	// lsattr prints "./a" for relative queries, snapshot keys are cleaned to "a"
	current := snapshot.Snapshot(read).Normalized()

	for _, key := range target.Keys() {
		p := snapshot.Normalize(key)
		live, found := current[p]
		if !found {
			logging.Warn(reconcileSubsystem, "skipping %s: not found below %s", p, top)
			continue
		}

		want := target[key]
		if !want.Equal(live) {
			logging.Debug(reconcileSubsystem, "%s: %q -> %q", p, live, want)
			batch.Add(want, p)
		}
	}
	return batch, nil
}

// Query returns the current attributes of path.
func (r *Reconciler) Query(ctx context.Context, path string, recursive bool) (model.Result, error) {
	current, err := r.reader.Read(ctx, path, recursive)
	if err != nil {
		return model.Result{}, err
	}
	return model.Result{Attr: current}, nil
}

// Dump queries path and writes the observation to file.
// Directories are stored with a trailing slash.
func (r *Reconciler) Dump(ctx context.Context, path string, recursive bool, file string) (model.Result, error) {
	current, err := r.reader.Read(ctx, path, recursive)
	if err != nil {
		return model.Result{}, err
	}

	if err := snapshot.Save(file, snapshot.FromObservation(current, r.isDir)); err != nil {
		return model.Result{}, fmt.Errorf("failed to write snapshot %s: %w", file, err)
	}
	return model.Result{
		Msg:  "attributes dumped",
		Attr: current,
	}, nil
}
