package ledger

import (
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const progressSchema = `
CREATE TABLE IF NOT EXISTS progress (
	epoch      INTEGER PRIMARY KEY,
	lr         REAL NOT NULL,
	train_loss REAL NOT NULL,
	test_loss  REAL NOT NULL,
	train_acc  REAL NOT NULL,
	test_acc   REAL NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// sqliteLedger writes each row inside its own transaction, so an append
// is durable as soon as it returns and Flush has nothing left to do.
type sqliteLedger struct {
	mu   sync.Mutex
	db   *sqlx.DB
	rows []Row
}

func NewSQLiteLedger(path string) (Ledger, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite ledger: %w", err)
	}
	if _, err := db.Exec(progressSchema); err != nil {
		db.Close()

		return nil, fmt.Errorf("create progress table: %w", err)
	}

	l := &sqliteLedger{db: db}
	if err := db.Select(&l.rows, "SELECT epoch, lr, train_loss, test_loss, train_acc, test_acc FROM progress ORDER BY epoch"); err != nil {
		db.Close()

		return nil, fmt.Errorf("load progress rows: %w", err)
	}

	return l, nil
}

func (l *sqliteLedger) Append(row Row) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.db.NamedExec(
		`INSERT INTO progress (epoch, lr, train_loss, test_loss, train_acc, test_acc)
		 VALUES (:epoch, :lr, :train_loss, :test_loss, :train_acc, :test_acc)`, row)
	if err != nil {
		return fmt.Errorf("insert progress row: %w", err)
	}
	l.rows = append(l.rows, row)

	return nil
}

func (l *sqliteLedger) Flush() error {
	return nil
}

func (l *sqliteLedger) Rows() []Row {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows := make([]Row, len(l.rows))
	copy(rows, l.rows)

	return rows
}

func (l *sqliteLedger) Close() error {
	return l.db.Close()
}
