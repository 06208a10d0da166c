package broadcast

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/chanxe/love-plain/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt_Anniversary(t *testing.T) {
	data := &AggregatedData{
		ReferenceDate: date(2024, time.February, 14),
		TodaysAnniversaries: []model.Anniversary{
			{Title: "First Date", Date: time.Date(2019, time.February, 14, 0, 0, 0, 0, time.UTC)},
			{Title: "情人节", Date: time.Date(2020, time.February, 14, 0, 0, 0, 0, time.UTC)},
		},
	}

	p := BuildPrompt(ModeAnniversary, data, fixedRand(0))

	assert.Contains(t, p.User, "2024年02月14日")
	assert.Contains(t, p.User, "First Date和情人节")
	assert.Contains(t, p.System, "200-300字")
}

func TestBuildPrompt_HistoricalMomentsTruncates(t *testing.T) {
	long := strings.Repeat("好", 150)
	data := &AggregatedData{ReferenceDate: date(2024, time.March, 8)}
	for i := 0; i < 7; i++ {
		data.HistoricalMoments = append(data.HistoricalMoments, model.Moment{Author: "Girl", Content: long})
	}

	p := BuildPrompt(ModeHistoricalMoments, data, fixedRand(0))

	assert.Equal(t, 5, strings.Count(p.User, "Girl曾说过："))
	assert.Contains(t, p.User, "Girl曾说过："+strings.Repeat("好", 100)+"\n")
	assert.NotContains(t, p.User, strings.Repeat("好", 101))
	assert.Contains(t, p.System, "200-300字")
}

func TestBuildPrompt_HistoricalEventsCurated(t *testing.T) {
	data := &AggregatedData{ReferenceDate: date(2024, time.January, 1)}

	p := BuildPrompt(ModeHistoricalEvents, data, fixedRand(0))

	assert.Contains(t, p.User, "Unix纪元")
	assert.Contains(t, p.System, "200-300字")
}

func TestHistoricalEvent_Fillers(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		event := HistoricalEvent(time.September, 9, fixedRand(i))
		assert.Contains(t, event, "9月9日")
		seen[event] = true
	}
	assert.Len(t, seen, 3)
}

func TestHistoricalEvent_SeededSourceIsDeterministic(t *testing.T) {
	a := HistoricalEvent(time.April, 2, NewRandomSource(42))
	b := HistoricalEvent(time.April, 2, NewRandomSource(42))
	assert.Equal(t, a, b)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 5))
	assert.Equal(t, "你好", truncateRunes("你好世界", 2))
	assert.Equal(t, 100, utf8.RuneCountInString(truncateRunes(strings.Repeat("爱", 120), 100)))
}

func TestCompose_ContainsDate(t *testing.T) {
	today := date(2024, time.November, 11)
	data := &AggregatedData{
		ReferenceDate:       today,
		TodaysAnniversaries: []model.Anniversary{{Title: "求婚纪念日"}},
	}

	for _, mode := range []Mode{ModeAnniversary, ModeHistoricalMoments, ModeHistoricalEvents} {
		text := Compose(mode, data, fixedRand(1))
		assert.NotEmpty(t, text)
		assert.Contains(t, text, "2024年11月11日", string(mode))
	}

	assert.Contains(t, Compose(ModeAnniversary, data, fixedRand(0)), "求婚纪念日")
	assert.Contains(t, Compose(ModeHistoricalEvents, data, fixedRand(0)), "11月11日")
}
