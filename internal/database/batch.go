package database

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chdb/chessmetrics/internal/models"
)

// BatchImporter drains a record stream into the archive with batched
// transactions. Batches flush on size or on a half-second tick, so a
// slow producer cannot hold a transaction open indefinitely.
type BatchImporter struct {
	db          *DB
	batchSize   int
	numWorkers  int
	importStats atomic.Uint64
	failedStats atomic.Uint64
}

func NewBatchImporter(db *DB, batchSize, numWorkers int) *BatchImporter {
	if batchSize <= 0 {
		batchSize = 100
	}
	if numWorkers <= 0 {
		numWorkers = 4
	}

	return &BatchImporter{
		db:         db,
		batchSize:  batchSize,
		numWorkers: numWorkers,
	}
}

type ImportProgress struct {
	TotalProcessed uint64
	Imported       uint64
	Failed         uint64
	CurrentAccount string
	Timestamp      time.Time
}

func (bi *BatchImporter) ImportStream(ctx context.Context, recordStream <-chan models.GameRecord, progressChan chan<- ImportProgress) error {
	jobs := make(chan models.GameRecord, bi.batchSize)
	errors := make(chan error, bi.numWorkers)

	var wg sync.WaitGroup

	for i := 0; i < bi.numWorkers; i++ {
		wg.Add(1)
		go bi.importWorker(ctx, jobs, errors, &wg)
	}

	go func() {
		defer close(jobs)

		for record := range recordStream {
			select {
			case <-ctx.Done():
				return
			case jobs <- record:
			}

			if progressChan != nil {
				progressChan <- ImportProgress{
					TotalProcessed: bi.importStats.Load() + bi.failedStats.Load(),
					Imported:       bi.importStats.Load(),
					Failed:         bi.failedStats.Load(),
					CurrentAccount: record.Account,
					Timestamp:      time.Now(),
				}
			}
		}
	}()

	go func() {
		wg.Wait()
		close(errors)
	}()

	var lastErr error
	for err := range errors {
		if err != nil {
			lastErr = err
		}
	}

	if progressChan != nil {
		close(progressChan)
	}

	return lastErr
}

func (bi *BatchImporter) importWorker(ctx context.Context, jobs <-chan models.GameRecord, errors chan<- error, wg *sync.WaitGroup) {
	defer wg.Done()

	batch := make([]models.GameRecord, 0, bi.batchSize)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		tx, err := bi.db.conn.Begin()
		if err != nil {
			errors <- err
			bi.failedStats.Add(uint64(len(batch)))
			batch = batch[:0]
			return
		}

		for _, record := range batch {
			if _, err := bi.insertRecordInTx(tx, &record); err != nil {
				bi.failedStats.Add(1)
			} else {
				bi.importStats.Add(1)
			}
		}

		if err := tx.Commit(); err != nil {
			errors <- err
			bi.failedStats.Add(uint64(len(batch)))
		}

		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return

		case record, ok := <-jobs:
			if !ok {
				flush()
				return
			}

			batch = append(batch, record)
			if len(batch) >= bi.batchSize {
				flush()
			}

		case <-ticker.C:
			flush()
		}
	}
}

func (bi *BatchImporter) insertRecordInTx(tx *sql.Tx, rec *models.GameRecord) (int64, error) {
	query := `
		INSERT INTO games (
			account, timestamp, color, result,
			own_rating, opponent_rating, rating_change,
			eco, opening, variation,
			time_control, time_class, base_time, increment,
			move_count, termination, event, site
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.Exec(query,
		rec.Account, rec.Timestamp, rec.Color, rec.Result,
		rec.OwnRating, rec.OpponentRating, rec.RatingChange,
		rec.ECO, rec.Opening, rec.Variation,
		rec.TimeControl, rec.TimeClass, rec.BaseTime, rec.Increment,
		rec.MoveCount, rec.Termination, rec.Event, rec.Site,
	)

	if err != nil {
		return 0, err
	}

	return result.LastInsertId()
}

func (bi *BatchImporter) GetStats() (imported, failed uint64) {
	return bi.importStats.Load(), bi.failedStats.Load()
}

func (bi *BatchImporter) ResetStats() {
	bi.importStats.Store(0)
	bi.failedStats.Store(0)
}
