package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar counts the writes of one experiment run.
type ProgressBar struct {
	id    string
	name  string
	start time.Time
	total uint64

	lock       sync.Mutex
	inProgress uint64
	finished   uint64
}

func newProgressBar(id, name string, total uint64) *ProgressBar {
	return &ProgressBar{
		id:    id,
		name:  name,
		start: time.Now(),
		total: total,
	}
}

// ProgressBarStatus is a snapshot of a ProgressBar.
type ProgressBarStatus struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
	Percent    float64   `json:"percent"`
}

// Name returns the name the bar was created with.
func (b *ProgressBar) Name() string {
	return b.name
}

// Status returns a snapshot of the bar.
func (b *ProgressBar) Status() ProgressBarStatus {
	b.lock.Lock()
	defer b.lock.Unlock()

	s := ProgressBarStatus{
		ID:         b.id,
		Name:       b.name,
		StartTime:  b.start,
		Total:      b.total,
		Finished:   b.finished,
		InProgress: b.inProgress,
	}

	if b.total > 0 {
		s.Percent = 100 * float64(b.finished) / float64(b.total)
	}

	return s
}

// IncrementInProgress marks amount more items as started.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.lock.Lock()
	b.inProgress += amount
	b.lock.Unlock()
}

// IncrementFinished marks amount more items as finished without them being
// started first.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.lock.Lock()
	b.finished += amount
	b.lock.Unlock()
}

// MoveInProgressToFinished marks amount started items as finished.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if amount > b.inProgress {
		amount = b.inProgress
	}

	b.inProgress -= amount
	b.finished += amount
}
