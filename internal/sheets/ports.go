package sheets

import (
	"context"

	"thali/internal/core"
)

// RecordMirror is a one-way copy of the record store kept for people who
// read attendance in a spreadsheet. Every method is idempotent so that
// redelivered events are harmless.
type RecordMirror interface {
	// AppendRecord adds rec unless its date is already mirrored.
	AppendRecord(ctx context.Context, rec core.MealRecord) error
	// DeleteRecord removes the row for date, if any.
	DeleteRecord(ctx context.Context, date core.Date) error
	// Clear removes every mirrored record.
	Clear(ctx context.Context) error
}
