package google

import (
	"fmt"
	"strings"
	"time"

	"thali/internal/core"
)

func headerRow() []interface{} {
	return []interface{}{"Date", "Morning", "Evening", "Recorded At"}
}

func recordRow(rec core.MealRecord) []interface{} {
	return []interface{}{
		string(rec.Date),
		rec.Morning,
		rec.Evening,
		rec.RecordedAt.UTC().Format(time.RFC3339),
	}
}

// findRow returns the 1-based sheet row holding date in column A, or 0.
func findRow(values [][]interface{}, date core.Date) int {
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == string(date) {
			return i + 1
		}
	}
	return 0
}
