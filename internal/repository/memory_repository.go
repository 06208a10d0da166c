package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/chanxe/love-plain/internal/model"
)

// MemoryRepository reads anniversaries and moments. Writes belong to the
// rest of the application.
type MemoryRepository struct {
	db *sql.DB
}

func NewMemoryRepository(db *sql.DB) *MemoryRepository {
	return &MemoryRepository{db: db}
}

func (r *MemoryRepository) AnniversariesOn(ctx context.Context, month time.Month, day int) ([]model.Anniversary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, date
		FROM anniversary
		WHERE EXTRACT(MONTH FROM date) = $1 AND EXTRACT(DAY FROM date) = $2
		ORDER BY id ASC
	`, int(month), day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var anniversaries []model.Anniversary
	for rows.Next() {
		var a model.Anniversary
		if err := rows.Scan(&a.ID, &a.Title, &a.Date); err != nil {
			return nil, err
		}
		anniversaries = append(anniversaries, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return anniversaries, nil
}

func (r *MemoryRepository) MomentsOn(ctx context.Context, month time.Month, day int) ([]model.Moment, error) {
	return r.queryMoments(ctx, `
		SELECT m.id, COALESCE(u.name, ''), m.content, m.timestamp
		FROM moment m
		LEFT JOIN app_user u ON u.id = m.user_id
		WHERE EXTRACT(MONTH FROM m.timestamp) = $1 AND EXTRACT(DAY FROM m.timestamp) = $2
		ORDER BY m.timestamp ASC
	`, int(month), day)
}

func (r *MemoryRepository) RecentMoments(ctx context.Context, since time.Time, limit int) ([]model.Moment, error) {
	return r.queryMoments(ctx, `
		SELECT m.id, COALESCE(u.name, ''), m.content, m.timestamp
		FROM moment m
		LEFT JOIN app_user u ON u.id = m.user_id
		WHERE m.timestamp >= $1::timestamp
		ORDER BY m.timestamp DESC
		LIMIT $2
	`, utcTimestamp(since), limit)
}

// utcTimestamp renders t as a UTC wall clock for comparison against
// TIMESTAMP columns, which hold UTC without a zone.
func utcTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

func (r *MemoryRepository) queryMoments(ctx context.Context, query string, args ...any) ([]model.Moment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var moments []model.Moment
	for rows.Next() {
		var m model.Moment
		if err := rows.Scan(&m.ID, &m.Author, &m.Content, &m.Timestamp); err != nil {
			return nil, err
		}
		moments = append(moments, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return moments, nil
}
