package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/spdhub/spdhub_backend/config"
	"github.com/spdhub/spdhub_backend/utils"
	"gorm.io/gorm"
)

const issueMaxAttempts = 5

// DocumentNumber reserves an issued identifier. The composite unique index
// is what makes issuance race-free: generation re-queries and retries, but
// only the row that inserts cleanly owns the number.
type DocumentNumber struct {
	ID         int          `gorm:"primary_key" json:"id"`
	Kind       DocumentKind `gorm:"type:enum('REQ','OBD');uniqueIndex:idx_document_numbers_kind_number;not null" json:"kind"`
	Number     string       `gorm:"size:30;uniqueIndex:idx_document_numbers_kind_number;not null" json:"number"`
	SeqNo      int          `gorm:"not null" json:"seq_no"`
	IssuedDate time.Time    `gorm:"not null;index" json:"issued_date"`
	CreatedAt  time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

func FormatDocumentNumber(kind DocumentKind, date time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", kind, date.Format("20060102"), seq)
}

// IssueDocumentNumber reserves and returns the next number of the given
// kind inside the caller's transaction; rolling back the transaction frees
// the number. After issueMaxAttempts collisions it gives up with
// ErrResourceExhausted rather than looping forever.
func IssueDocumentNumber(ctx context.Context, tx *gorm.DB, kind DocumentKind, date time.Time) (string, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	// Best-effort cross-instance serialization to keep collisions rare;
	// correctness comes from the unique index, not the lock.
	if locker := config.GetRedisLock(); locker != nil {
		if lock, err := locker.Obtain(ctx, "docnum:"+string(kind), 5*time.Second, nil); err == nil {
			defer lock.Release(ctx)
		}
	}

	for attempt := 0; attempt < issueMaxAttempts; attempt++ {
		seq, err := nextSequence(ctx, tx, kind, day)
		if err != nil {
			return "", err
		}
		number := FormatDocumentNumber(kind, day, seq)
		record := DocumentNumber{Kind: kind, Number: number, SeqNo: seq, IssuedDate: day}
		err = tx.Create(&record).Error
		if err == nil {
			return number, nil
		}
		if !isDuplicateKeyErr(err) {
			return "", utils.WrapStorage("document number reservation", err)
		}
		// Another issuer won the number; loop for the next sequence value.
	}
	return "", utils.ErrResourceExhausted
}

// nextSequence takes the per-kind-per-day counter from Redis, seeding it
// from the table when cold. With Redis down it degrades to the max() scan,
// which is slower but still safe under the unique index.
func nextSequence(ctx context.Context, tx *gorm.DB, kind DocumentKind, day time.Time) (int, error) {
	key := fmt.Sprintf("docseq:%s:%s", kind, day.Format("20060102"))
	counter, err := config.GetRedisCounter(ctx, key)
	if err != nil {
		counter = 0
	}
	if counter <= 1 {
		var maxSeq *int
		err := tx.Model(&DocumentNumber{}).
			Where("kind = ? AND issued_date = ?", kind, day).
			Select("max(seq_no)").
			Scan(&maxSeq).Error
		if err != nil {
			return 0, utils.WrapStorage("document number sequence scan", err)
		}
		if maxSeq != nil && int64(*maxSeq) >= counter {
			counter = int64(*maxSeq) + 1
			_ = config.SetRedisCounter(ctx, key, counter)
		}
		if counter < 1 {
			counter = 1
		}
	}
	return int(counter), nil
}
