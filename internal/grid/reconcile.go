package grid

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Updater is the collaborator that persists one field of one row. Success
// means the server's canonical state for that field now equals value. Any
// error, timeout included, is treated uniformly as a per-field failure.
type Updater interface {
	UpdateField(ctx context.Context, rowID int64, poNumber string, field Field, value string) error
}

// FieldFailure records one field-level save failure.
type FieldFailure struct {
	RowID   int64
	Field   Field
	Message string
}

// SaveReport aggregates the outcome of one SaveAll pass. NoPending marks the
// distinct no-op case of saving with nothing dirty; it is informational, not
// an error.
type SaveReport struct {
	Succeeded []int64
	Failed    []FieldFailure
	NoPending bool
}

// FailedRowCount returns how many distinct rows had at least one failure.
func (r SaveReport) FailedRowCount() int {
	seen := make(map[int64]bool, len(r.Failed))
	for _, f := range r.Failed {
		seen[f.RowID] = true
	}
	return len(seen)
}

// Reconciler persists dirty entries field by field. Per row it fails fast:
// the first failed field leaves the remaining pending fields dirty for a
// retry. Across rows it fails independently: one bad row never blocks the
// others.
type Reconciler struct {
	store   *Store
	tracker *Tracker
	updater Updater
	log     *zap.Logger
}

func NewReconciler(store *Store, tracker *Tracker, updater Updater, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{store: store, tracker: tracker, updater: updater, log: log}
}

// SaveAll walks every dirty entry, re-diffs it against the current canonical
// row, and issues one update per changed field in save order. Successful
// fields are applied to the store and cleared from the tracker immediately,
// so later diffs within the same pass see the updated canonical state.
func (r *Reconciler) SaveAll(ctx context.Context) SaveReport {
	ids := r.tracker.DirtyIDs()
	if len(ids) == 0 {
		return SaveReport{NoPending: true}
	}

	var report SaveReport
	for _, id := range ids {
		changes, err := r.tracker.Diff(id)
		if err != nil {
			var notFound *RowNotFoundError
			if errors.As(err, &notFound) {
				// Dirty entry for a row the store no longer knows. This
				// should not happen in correct operation.
				r.log.Error("dirty entry references unknown row",
					zap.Int64("row_id", id), zap.Error(err))
			} else {
				r.log.Error("diff failed", zap.Int64("row_id", id), zap.Error(err))
			}
			report.Failed = append(report.Failed, FieldFailure{RowID: id, Message: err.Error()})
			continue
		}
		if len(changes) == 0 {
			// Every pending value already matches canonical; nothing to send.
			r.tracker.Clear(id)
			report.Succeeded = append(report.Succeeded, id)
			continue
		}

		row, err := r.store.GetByID(id)
		if err != nil {
			r.log.Error("row vanished before save", zap.Int64("row_id", id), zap.Error(err))
			report.Failed = append(report.Failed, FieldFailure{RowID: id, Message: err.Error()})
			continue
		}

		rowFailed := false
		for _, change := range changes {
			if err := r.updater.UpdateField(ctx, id, row.PONumber, change.Field, change.Value); err != nil {
				r.log.Warn("field update failed",
					zap.Int64("row_id", id),
					zap.String("field", string(change.Field)),
					zap.Error(err))
				report.Failed = append(report.Failed, FieldFailure{
					RowID:   id,
					Field:   change.Field,
					Message: err.Error(),
				})
				rowFailed = true
				break // remaining fields of this row stay dirty for retry
			}
			if err := r.store.ApplyFieldUpdate(id, change.Field, change.Value); err != nil {
				r.log.Error("apply acknowledged update failed",
					zap.Int64("row_id", id),
					zap.String("field", string(change.Field)),
					zap.Error(err))
				report.Failed = append(report.Failed, FieldFailure{
					RowID:   id,
					Field:   change.Field,
					Message: err.Error(),
				})
				rowFailed = true
				break
			}
			r.tracker.ClearField(id, change.Field)
		}
		if !rowFailed {
			report.Succeeded = append(report.Succeeded, id)
		}
	}

	r.log.Info("save pass finished",
		zap.Int("rows_saved", len(report.Succeeded)),
		zap.Int("fields_failed", len(report.Failed)))
	return report
}
