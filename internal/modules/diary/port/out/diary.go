package out

import (
	"context"

	"caltrack/internal/modules/diary/domain"
)

// RecordAPI is the backend holding daily records. Get returns an empty
// record for a day the backend knows nothing about.
type RecordAPI interface {
	Get(ctx context.Context, date domain.Date) (domain.DailyRecord, error)
	Add(ctx context.Context, date domain.Date, entry domain.FoodEntry) (domain.FoodEntry, error)
	Remove(ctx context.Context, id int64) error
}

// RecordCache holds fetched and locally mutated records per date.
type RecordCache interface {
	Get(date domain.Date) (domain.DailyRecord, bool)
	Put(date domain.Date, record domain.DailyRecord)
	Invalidate(date domain.Date)
	Clear()
}
