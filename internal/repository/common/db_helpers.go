package common

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// Execer - то, на чём можно выполнить запрос: *sqlx.DB или *sqlx.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// GetOne выполняет запрос на одну строку, sql.ErrNoRows превращается в notFoundErr.
func GetOne[T any](ctx context.Context, db sqlx.QueryerContext, notFoundErr error, query string, args ...interface{}) (*T, error) {
	var row T
	if err := sqlx.GetContext(ctx, db, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundErr
		}
		return nil, err
	}
	return &row, nil
}

// IsUniqueViolation сообщает о нарушении уникального индекса (23505).
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}

// RequireAffected возвращает notFoundErr, если запрос не затронул ни одной строки.
func RequireAffected(result sql.Result, notFoundErr error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return notFoundErr
	}
	return nil
}

// BatchInserter копит строки и вставляет их одним запросом.
type BatchInserter struct {
	exec        Execer
	query       string
	suffix      string
	batchSize   int
	values      []interface{}
	rowCount    int
	fieldsCount int
}

// NewBatchInserter: baseQuery - "INSERT INTO t (a, b)", suffix дописывается
// после VALUES (например, "ON CONFLICT DO NOTHING").
func NewBatchInserter(exec Execer, baseQuery, suffix string, fieldsCount, batchSize int) *BatchInserter {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &BatchInserter{
		exec:        exec,
		query:       baseQuery,
		suffix:      suffix,
		batchSize:   batchSize,
		values:      make([]interface{}, 0, batchSize*fieldsCount),
		fieldsCount: fieldsCount,
	}
}

func (bi *BatchInserter) Add(ctx context.Context, rowValues ...interface{}) error {
	if len(rowValues) != bi.fieldsCount {
		return fmt.Errorf("expected %d fields, got %d", bi.fieldsCount, len(rowValues))
	}

	bi.values = append(bi.values, rowValues...)
	bi.rowCount++

	if bi.rowCount >= bi.batchSize {
		return bi.Flush(ctx)
	}
	return nil
}

func (bi *BatchInserter) Flush(ctx context.Context) error {
	if bi.rowCount == 0 {
		return nil
	}

	query := BuildBatchQuery(bi.query, bi.suffix, bi.rowCount, bi.fieldsCount)
	if _, err := bi.exec.ExecContext(ctx, query, bi.values...); err != nil {
		return fmt.Errorf("batch insert: %w", err)
	}

	bi.values = bi.values[:0]
	bi.rowCount = 0
	return nil
}

// BuildBatchQuery генерирует "... VALUES ($1, $2), ($3, $4) suffix".
func BuildBatchQuery(baseQuery, suffix string, rows, fields int) string {
	var b strings.Builder
	b.WriteString(baseQuery)
	b.WriteString(" VALUES ")
	for i := 0; i < rows; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j := 0; j < fields; j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", i*fields+j+1)
		}
		b.WriteByte(')')
	}
	if suffix != "" {
		b.WriteByte(' ')
		b.WriteString(suffix)
	}
	return b.String()
}

// WithTransaction выполняет fn в транзакции: ошибка или паника откатывают её.
func WithTransaction(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
