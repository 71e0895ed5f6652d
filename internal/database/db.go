package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/chdb/chessmetrics/internal/models"
)

type DB struct {
	conn *sql.DB
}

func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.createTables(); err != nil {
		return nil, err
	}

	return db, nil
}

func (db *DB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account TEXT NOT NULL,
		timestamp DATETIME,
		color TEXT NOT NULL,
		result TEXT NOT NULL,
		own_rating INTEGER,
		opponent_rating INTEGER,
		rating_change INTEGER,
		eco TEXT,
		opening TEXT,
		variation TEXT,
		time_control TEXT,
		time_class TEXT,
		base_time INTEGER,
		increment INTEGER,
		move_count INTEGER,
		termination TEXT,
		event TEXT,
		site TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_account ON games(account);
	CREATE INDEX IF NOT EXISTS idx_timestamp ON games(timestamp);
	CREATE INDEX IF NOT EXISTS idx_result ON games(result);
	CREATE INDEX IF NOT EXISTS idx_time_class ON games(time_class);
	CREATE INDEX IF NOT EXISTS idx_opening ON games(opening);
	CREATE INDEX IF NOT EXISTS idx_account_timestamp ON games(account, timestamp);
	`

	_, err := db.conn.Exec(schema)
	return err
}

func (db *DB) InsertRecord(rec *models.GameRecord) (int64, error) {
	query := `
		INSERT INTO games (
			account, timestamp, color, result,
			own_rating, opponent_rating, rating_change,
			eco, opening, variation,
			time_control, time_class, base_time, increment,
			move_count, termination, event, site
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.conn.Exec(query,
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

// ListRecords returns matching records sorted by timestamp ascending, the
// order the rolling-window and streak operations expect.
func (db *DB) ListRecords(filter *models.RecordFilter) ([]models.GameRecord, error) {
	var conditions []string
	var args []interface{}

	if filter.Account != "" {
		conditions = append(conditions, "account = ?")
		args = append(args, filter.Account)
	}

	if !filter.From.IsZero() {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, filter.From)
	}

	if !filter.To.IsZero() {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, filter.To)
	}

	if filter.TimeClass != "" {
		conditions = append(conditions, "time_class = ?")
		args = append(args, filter.TimeClass)
	}

	if filter.Result != "" {
		conditions = append(conditions, "result = ?")
		args = append(args, filter.Result)
	}

	if filter.Opening != "" {
		conditions = append(conditions, "opening LIKE ?")
		args = append(args, "%"+filter.Opening+"%")
	}

	query := `SELECT id, account, timestamp, color, result,
		own_rating, opponent_rating, rating_change,
		eco, opening, variation,
		time_control, time_class, base_time, increment,
		move_count, termination, event, site FROM games`

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY timestamp ASC, id ASC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.GameRecord
	for rows.Next() {
		var rec models.GameRecord
		var ts sql.NullTime
		err := rows.Scan(
			&rec.ID, &rec.Account, &ts, &rec.Color, &rec.Result,
			&rec.OwnRating, &rec.OpponentRating, &rec.RatingChange,
			&rec.ECO, &rec.Opening, &rec.Variation,
			&rec.TimeControl, &rec.TimeClass, &rec.BaseTime, &rec.Increment,
			&rec.MoveCount, &rec.Termination, &rec.Event, &rec.Site,
		)
		if err != nil {
			return nil, err
		}
		if ts.Valid {
			rec.Timestamp = ts.Time.UTC()
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (db *DB) CountByAccount() (map[string]int, error) {
	rows, err := db.conn.Query("SELECT account, COUNT(*) FROM games GROUP BY account")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var account string
		var count int
		if err := rows.Scan(&account, &count); err != nil {
			return nil, err
		}
		counts[account] = count
	}

	return counts, rows.Err()
}

func (db *DB) DeleteAccount(account string) (int64, error) {
	result, err := db.conn.Exec("DELETE FROM games WHERE account = ?", account)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (db *DB) GetStats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var totalGames int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM games").Scan(&totalGames)
	if err != nil {
		return nil, err
	}
	stats["total_games"] = totalGames

	byAccount, err := db.CountByAccount()
	if err != nil {
		return nil, err
	}
	stats["games_by_account"] = byAccount

	var earliest, latest sql.NullTime
	err = db.conn.QueryRow("SELECT MIN(timestamp), MAX(timestamp) FROM games").Scan(&earliest, &latest)
	if err != nil {
		return nil, err
	}
	if earliest.Valid {
		stats["earliest_game"] = earliest.Time.UTC()
	}
	if latest.Valid {
		stats["latest_game"] = latest.Time.UTC()
	}

	var dbSize int64
	err = db.conn.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()").Scan(&dbSize)
	if err != nil {
		return nil, err
	}
	stats["database_size_bytes"] = dbSize

	stats["last_updated"] = time.Now().UTC()

	return stats, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}
