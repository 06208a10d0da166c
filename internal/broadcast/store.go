package broadcast

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/chanxe/love-plain/internal/model"
)

// ErrConflict is returned by ReportStore.Create when a report for the same
// date already exists.
var ErrConflict = errors.New("report for this date already exists")

type ReportStore interface {
	// GetByDate returns nil, nil when no report exists for date.
	GetByDate(ctx context.Context, date time.Time) (*model.Report, error)
	// Create fills report.ID and report.CreatedAt, or fails with ErrConflict.
	Create(ctx context.Context, report *model.Report) error
}

// Producer generates the text and mode for a report that does not exist yet.
type Producer func(ctx context.Context) (string, Mode, error)

// GetOrCreate returns the report stored for date, producing and persisting one
// if there is none. created is false whenever an existing row was returned,
// including when a concurrent writer won the insert.
func GetOrCreate(ctx context.Context, store ReportStore, date time.Time, pushed bool, produce Producer) (report *model.Report, created bool, err error) {
	date = Day(date)

	existing, err := store.GetByDate(ctx, date)
	if err != nil {
		return nil, false, fmt.Errorf("reading report for %s: %w", date.Format(time.DateOnly), err)
	}
	if existing != nil {
		return existing, false, nil
	}

	text, mode, err := produce(ctx)
	if err != nil {
		return nil, false, err
	}

	report = &model.Report{
		ReportDate:    date,
		Content:       text,
		BroadcastType: string(mode),
		IsPushed:      pushed,
	}

	err = store.Create(ctx, report)
	if errors.Is(err, ErrConflict) {
		winner, err := store.GetByDate(ctx, date)
		if err != nil {
			return nil, false, fmt.Errorf("re-reading report for %s: %w", date.Format(time.DateOnly), err)
		}
		if winner == nil {
			return nil, false, fmt.Errorf("report for %s conflicted but is not readable", date.Format(time.DateOnly))
		}
		return winner, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("saving report for %s: %w", date.Format(time.DateOnly), err)
	}

	return report, true, nil
}

// MemoryReportStore keeps reports in process memory.
type MemoryReportStore struct {
	mu      sync.RWMutex
	nextID  int64
	byDate  map[time.Time]*model.Report
	byID    map[int64]*model.Report
	nowFunc func() time.Time
}

func NewMemoryReportStore() *MemoryReportStore {
	return &MemoryReportStore{
		byDate:  make(map[time.Time]*model.Report),
		byID:    make(map[int64]*model.Report),
		nowFunc: time.Now,
	}
}

func (s *MemoryReportStore) GetByDate(ctx context.Context, date time.Time) (*model.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyReport(s.byDate[Day(date)]), nil
}

func (s *MemoryReportStore) GetByID(ctx context.Context, id int64) (*model.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyReport(s.byID[id]), nil
}

func (s *MemoryReportStore) Create(ctx context.Context, report *model.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	date := Day(report.ReportDate)
	if _, ok := s.byDate[date]; ok {
		return ErrConflict
	}

	s.nextID++
	report.ID = s.nextID
	report.ReportDate = date
	report.CreatedAt = s.nowFunc()

	stored := copyReport(report)
	s.byDate[date] = stored
	s.byID[stored.ID] = stored
	return nil
}

func (s *MemoryReportStore) UpdateAudioURL(ctx context.Context, id int64, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("report %d not found", id)
	}
	r.AudioURL = &url
	return nil
}

func (s *MemoryReportStore) List(ctx context.Context, limit, offset int) ([]model.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports := make([]model.Report, 0, len(s.byID))
	for _, r := range s.byID {
		reports = append(reports, *copyReport(r))
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].ReportDate.After(reports[j].ReportDate)
	})

	if offset >= len(reports) {
		return []model.Report{}, nil
	}
	end := offset + limit
	if end > len(reports) {
		end = len(reports)
	}
	return reports[offset:end], nil
}

func (s *MemoryReportStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

func (s *MemoryReportStore) DeleteAll(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.byID))
	s.byDate = make(map[time.Time]*model.Report)
	s.byID = make(map[int64]*model.Report)
	return n, nil
}

func copyReport(r *model.Report) *model.Report {
	if r == nil {
		return nil
	}
	c := *r
	if r.AudioURL != nil {
		url := *r.AudioURL
		c.AudioURL = &url
	}
	return &c
}
