package persistence

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/repository/common"
)

const reportFields = 14

type SubmissionWriter struct {
	db *sqlx.DB
}

func NewSubmissionWriter(db *sqlx.DB) *SubmissionWriter {
	return &SubmissionWriter{db: db}
}

// SaveSubmission записывает объявление и уведомления о совпадениях
// одной транзакцией.
func (w *SubmissionWriter) SaveSubmission(ctx context.Context, report *entity.Report, notifications []*entity.Notification) error {
	err := common.WithTransaction(ctx, w.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			common.BuildBatchQuery(`INSERT INTO reports (`+reportColumns+`)`, "", 1, reportFields),
			reportArgs(report)...,
		); err != nil {
			return err
		}

		bi := common.NewBatchInserter(tx, `INSERT INTO notifications (`+notificationColumns+`)`, "ON CONFLICT DO NOTHING", notificationFields, 100)
		for _, n := range notifications {
			if err := bi.Add(ctx, notificationArgs(n)...); err != nil {
				return err
			}
		}
		return bi.Flush(ctx)
	})
	if err != nil {
		return apperror.Database(err, "не удалось сохранить объявление")
	}
	return nil
}
