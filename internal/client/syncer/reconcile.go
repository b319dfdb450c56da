package syncer

import (
	"slices"

	"github.com/dmitrijs2005/clientbook/internal/models"
)

// Reconcile applies one change to rows and returns the result. rows is
// not modified.
//
// An INSERT is prepended, or replaces the row with the same key if it is
// already present. An UPDATE replaces the matching row in place and a
// DELETE removes it; both ignore rows that are not present.
func Reconcile[T models.Record](rows []T, op models.Operation, row T) []T {
	i := slices.IndexFunc(rows, func(r T) bool { return r.Key() == row.Key() })

	switch op {
	case models.OpInsert:
		if i >= 0 {
			out := slices.Clone(rows)
			out[i] = row
			return out
		}
		out := make([]T, 0, len(rows)+1)
		out = append(out, row)
		return append(out, rows...)
	case models.OpUpdate:
		if i < 0 {
			return rows
		}
		out := slices.Clone(rows)
		out[i] = row
		return out
	case models.OpDelete:
		if i < 0 {
			return rows
		}
		return slices.Delete(slices.Clone(rows), i, i+1)
	default:
		return rows
	}
}
