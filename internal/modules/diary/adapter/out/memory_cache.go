package out

import (
	"sync"

	"caltrack/internal/modules/diary/domain"
	diaryout "caltrack/internal/modules/diary/port/out"
)

// MemoryCache keeps records for the life of the process and never evicts.
type MemoryCache struct {
	mu      sync.RWMutex
	records map[domain.Date]domain.DailyRecord
}

func NewMemoryCache() diaryout.RecordCache {
	return &MemoryCache{records: map[domain.Date]domain.DailyRecord{}}
}

func (c *MemoryCache) Get(date domain.Date) (domain.DailyRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.records[date]
	if !ok {
		return domain.DailyRecord{}, false
	}
	return r.Clone(), true
}

func (c *MemoryCache) Put(date domain.Date, record domain.DailyRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[date] = record.Clone()
}

func (c *MemoryCache) Invalidate(date domain.Date) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.records, date)
}

func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.records)
}
