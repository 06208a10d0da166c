package broadcast

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/chanxe/love-plain/internal/model"
)

const (
	DefaultEpochYear = 2020

	qualifyingMoments = 3
	recentWindow      = 3 * 24 * time.Hour
	recentLimit       = 10
)

type Mode string

const (
	ModeAnniversary       Mode = model.BroadcastAnniversary
	ModeHistoricalMoments Mode = model.BroadcastHistoricalMoments
	ModeHistoricalEvents  Mode = model.BroadcastHistoricalEvents
)

// DataRepository is the read side of the anniversary and moment tables.
type DataRepository interface {
	// AnniversariesOn returns anniversaries of any year falling on month/day.
	AnniversariesOn(ctx context.Context, month time.Month, day int) ([]model.Anniversary, error)
	// MomentsOn returns moments of any year posted on month/day, oldest first.
	MomentsOn(ctx context.Context, month time.Month, day int) ([]model.Moment, error)
	// RecentMoments returns moments newer than since, newest first.
	RecentMoments(ctx context.Context, since time.Time, limit int) ([]model.Moment, error)
}

type AggregatedData struct {
	ReferenceDate       time.Time
	TodaysAnniversaries []model.Anniversary
	HistoricalMoments   []model.Moment
	RecentMoments       []model.Moment
}

// Aggregate collects everything mode selection and prompting need for date.
// now anchors the recent-moments window.
func Aggregate(ctx context.Context, repo DataRepository, date, now time.Time, epochYear int) (*AggregatedData, error) {
	anniversaries, err := repo.AnniversariesOn(ctx, date.Month(), date.Day())
	if err != nil {
		return nil, fmt.Errorf("loading anniversaries: %w", err)
	}

	candidates, err := repo.MomentsOn(ctx, date.Month(), date.Day())
	if err != nil {
		return nil, fmt.Errorf("loading historical moments: %w", err)
	}

	recent, err := repo.RecentMoments(ctx, now.Add(-recentWindow), recentLimit)
	if err != nil {
		return nil, fmt.Errorf("loading recent moments: %w", err)
	}
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	return &AggregatedData{
		ReferenceDate:       date,
		TodaysAnniversaries: anniversaries,
		HistoricalMoments:   QualifyingMoments(candidates, date, epochYear),
		RecentMoments:       recent,
	}, nil
}

// QualifyingMoments keeps the moments of every year in [epochYear, date.Year())
// that has at least three moments on date's month/day. Years below the
// threshold contribute nothing; years where the day does not exist are skipped.
func QualifyingMoments(candidates []model.Moment, date time.Time, epochYear int) []model.Moment {
	byYear := make(map[int][]model.Moment)
	for _, m := range candidates {
		ts := m.Timestamp
		if ts.Month() != date.Month() || ts.Day() != date.Day() {
			continue
		}
		byYear[ts.Year()] = append(byYear[ts.Year()], m)
	}

	var result []model.Moment
	for year := epochYear; year < date.Year(); year++ {
		if !validDay(year, date.Month(), date.Day()) {
			continue
		}
		moments := byYear[year]
		if len(moments) < qualifyingMoments {
			continue
		}
		sort.SliceStable(moments, func(i, j int) bool {
			return moments[i].Timestamp.Before(moments[j].Timestamp)
		})
		result = append(result, moments...)
	}
	return result
}

func validDay(year int, month time.Month, day int) bool {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return t.Month() == month && t.Day() == day
}

// SelectMode picks the broadcast mode by strict priority.
func SelectMode(data *AggregatedData) Mode {
	switch {
	case len(data.TodaysAnniversaries) > 0:
		return ModeAnniversary
	case len(data.HistoricalMoments) > 0:
		return ModeHistoricalMoments
	default:
		return ModeHistoricalEvents
	}
}
