package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUTCTimestamp(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	since := time.Date(2024, time.February, 14, 7, 30, 0, 0, shanghai)

	assert.Equal(t, "2024-02-13 23:30:00", utcTimestamp(since))
	assert.Equal(t, "2024-02-13 23:30:00", utcTimestamp(since.UTC()))
}

func TestMemoryRepository_RecentMomentsIgnoresSessionZone(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	conn.SetMaxOpenConns(1)
	repo := NewMemoryRepository(conn)

	_, err := conn.Exec(`SET TIME ZONE 'Asia/Shanghai'`)
	require.NoError(t, err)

	_, err = conn.Exec(`INSERT INTO app_user (name) VALUES ('Ann')`)
	require.NoError(t, err)

	_, err = conn.Exec(`INSERT INTO moment (content, timestamp, user_id) VALUES ('old', '2024-02-13 23:00:00', 1), ('new', '2024-02-14 00:00:00', 1)`)
	require.NoError(t, err)

	since := time.Date(2024, time.February, 13, 23, 30, 0, 0, time.UTC)
	moments, err := repo.RecentMoments(ctx, since, 10)
	require.NoError(t, err)

	require.Len(t, moments, 1)
	assert.Equal(t, "new", moments[0].Content)
}
