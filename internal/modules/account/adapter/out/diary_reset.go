package out

import (
	"context"

	accountout "caltrack/internal/modules/account/port/out"
	diarydto "caltrack/internal/modules/diary/dto"
)

type diaryState interface {
	Reset() diarydto.DayState
}

// DiaryReset empties the diary cache whenever the session changes hands,
// so one account never sees the days fetched for another.
type DiaryReset struct {
	diary diaryState
}

func NewDiaryReset(diary diaryState) accountout.SessionListener {
	return &DiaryReset{diary: diary}
}

func (d *DiaryReset) SessionChanged(context.Context) {
	d.diary.Reset()
}
