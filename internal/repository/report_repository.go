package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/chanxe/love-plain/internal/broadcast"
	"github.com/chanxe/love-plain/internal/model"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const reportColumns = `id, report_date, content, broadcast_type, audio_url, created_at, is_pushed`

type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*model.Report, error) {
	var r model.Report
	var audioURL sql.NullString
	err := row.Scan(&r.ID, &r.ReportDate, &r.Content, &r.BroadcastType, &audioURL, &r.CreatedAt, &r.IsPushed)
	if err != nil {
		return nil, err
	}
	if audioURL.Valid {
		r.AudioURL = &audioURL.String
	}
	return &r, nil
}

func (r *ReportRepository) GetByDate(ctx context.Context, date time.Time) (*model.Report, error) {
	report, err := scanReport(r.db.QueryRowContext(ctx, `
		SELECT `+reportColumns+`
		FROM love_one_day_report
		WHERE report_date = $1::date
	`, date.Format(time.DateOnly)))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	return report, err
}

func (r *ReportRepository) GetByID(ctx context.Context, id int64) (*model.Report, error) {
	report, err := scanReport(r.db.QueryRowContext(ctx, `
		SELECT `+reportColumns+`
		FROM love_one_day_report
		WHERE id = $1
	`, id))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	return report, err
}

// Create relies on the unique report_date constraint; a losing concurrent
// insert comes back as broadcast.ErrConflict.
func (r *ReportRepository) Create(ctx context.Context, report *model.Report) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO love_one_day_report(report_date, content, broadcast_type, is_pushed)
		VALUES($1::date, $2, $3, $4)
		ON CONFLICT (report_date) DO NOTHING
		RETURNING id, created_at
	`, report.ReportDate.Format(time.DateOnly), report.Content, report.BroadcastType, report.IsPushed).Scan(&report.ID, &report.CreatedAt)

	if err == sql.ErrNoRows {
		return broadcast.ErrConflict
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return broadcast.ErrConflict
	}

	return err
}

func (r *ReportRepository) UpdateAudioURL(ctx context.Context, id int64, url string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE love_one_day_report SET audio_url = $1 WHERE id = $2
	`, url, id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *ReportRepository) List(ctx context.Context, limit, offset int) ([]model.Report, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+reportColumns+`
		FROM love_one_day_report
		ORDER BY report_date DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []model.Report{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reports, nil
}

func (r *ReportRepository) Count(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM love_one_day_report`).Scan(&total)
	return total, err
}

func (r *ReportRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM love_one_day_report`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
