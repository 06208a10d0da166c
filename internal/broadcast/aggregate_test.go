package broadcast

import (
	"context"
	"testing"
	"time"

	"github.com/chanxe/love-plain/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectMode_AnniversaryWins(t *testing.T) {
	today := date(2024, time.May, 20)
	repo := &fakeRepository{
		anniversaries: []model.Anniversary{{Title: "在一起", Date: time.Date(2021, time.May, 20, 0, 0, 0, 0, time.UTC)}},
		moments: []model.Moment{
			moment("Boy", "a", 2022, time.May, 20, 8),
			moment("Girl", "b", 2022, time.May, 20, 9),
			moment("Boy", "c", 2022, time.May, 20, 10),
		},
	}

	data, err := Aggregate(context.Background(), repo, today, today, DefaultEpochYear)
	require.NoError(t, err)

	assert.Len(t, data.HistoricalMoments, 3)
	assert.Equal(t, ModeAnniversary, SelectMode(data))
}

func TestQualifyingMoments_ThresholdPerYear(t *testing.T) {
	today := date(2024, time.March, 8)
	candidates := []model.Moment{
		moment("Boy", "y1-1", 2021, time.March, 8, 8),
		moment("Girl", "y1-2", 2021, time.March, 8, 9),
		moment("Boy", "y2-1", 2022, time.March, 8, 8),
		moment("Girl", "y2-2", 2022, time.March, 8, 12),
		moment("Boy", "y2-3", 2022, time.March, 8, 20),
	}

	got := QualifyingMoments(candidates, today, DefaultEpochYear)

	require.Len(t, got, 3)
	for _, m := range got {
		assert.Equal(t, 2022, m.Timestamp.Year())
	}
	assert.Equal(t, ModeHistoricalMoments, SelectMode(&AggregatedData{HistoricalMoments: got}))
}

func TestQualifyingMoments_IgnoresCurrentYearAndPreEpoch(t *testing.T) {
	today := date(2024, time.March, 8)
	var candidates []model.Moment
	for _, year := range []int{2019, 2024} {
		for h := 0; h < 3; h++ {
			candidates = append(candidates, moment("Boy", "x", year, time.March, 8, h))
		}
	}

	assert.Empty(t, QualifyingMoments(candidates, today, DefaultEpochYear))
}

func TestQualifyingMoments_LeapDaySkipsNonLeapYears(t *testing.T) {
	today := date(2024, time.February, 29)
	var candidates []model.Moment
	for h := 0; h < 4; h++ {
		candidates = append(candidates, moment("Girl", "leap", 2020, time.February, 29, h))
	}

	got := QualifyingMoments(candidates, today, DefaultEpochYear)

	assert.Len(t, got, 4)
}

func TestQualifyingMoments_OrderedByYear(t *testing.T) {
	today := date(2025, time.July, 7)
	var candidates []model.Moment
	for _, year := range []int{2023, 2021} {
		for h := 3; h > 0; h-- {
			candidates = append(candidates, moment("Boy", "x", year, time.July, 7, h))
		}
	}

	got := QualifyingMoments(candidates, today, DefaultEpochYear)

	require.Len(t, got, 6)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].Timestamp.Before(got[i-1].Timestamp))
	}
}

func TestSelectMode_FallsBackToHistoricalEvents(t *testing.T) {
	today := date(2024, time.October, 3)
	repo := &fakeRepository{
		moments: []model.Moment{
			moment("Boy", "only one", 2023, time.October, 3, 8),
		},
	}

	data, err := Aggregate(context.Background(), repo, today, today, DefaultEpochYear)
	require.NoError(t, err)

	assert.Empty(t, data.TodaysAnniversaries)
	assert.Empty(t, data.HistoricalMoments)
	assert.Equal(t, ModeHistoricalEvents, SelectMode(data))
}

func TestAggregate_RecentMomentsWindow(t *testing.T) {
	now := time.Date(2024, time.October, 3, 12, 0, 0, 0, time.UTC)
	repo := &fakeRepository{}
	for i := 0; i < 15; i++ {
		repo.moments = append(repo.moments, model.Moment{
			Content:   "recent",
			Timestamp: now.Add(-time.Duration(15-i) * time.Hour),
		})
	}
	repo.moments = append([]model.Moment{{Content: "old", Timestamp: now.Add(-96 * time.Hour)}}, repo.moments...)

	data, err := Aggregate(context.Background(), repo, now, now, DefaultEpochYear)
	require.NoError(t, err)

	require.Len(t, data.RecentMoments, 10)
	assert.True(t, data.RecentMoments[0].Timestamp.After(data.RecentMoments[9].Timestamp))
	for _, m := range data.RecentMoments {
		assert.Equal(t, "recent", m.Content)
	}
}
