package generate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS generations (
	id         TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	topic      TEXT NOT NULL,
	model      TEXT NOT NULL,
	attempts   INTEGER NOT NULL,
	deck       TEXT NOT NULL
);
`

// History keeps every successful generation in a local sqlite database so a
// draft can be recovered after its file was edited or lost.
type History struct {
	conn *sqlite.Conn
}

// Record is one stored generation.
type Record struct {
	ID       string
	Topic    string
	Model    string
	Attempts int
	Deck     string
}

// OpenHistory opens (creating when necessary) the history database.
func OpenHistory(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("unable to create history directory: %w", err)
	}

	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate)
	if err != nil {
		return nil, fmt.Errorf("unable to open history database: %w", err)
	}
	if err := sqlitex.ExecuteScript(conn, historySchema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to prepare history schema: %w", err)
	}
	return &History{conn: conn}, nil
}

// Store saves one generation record.
func (h *History) Store(ctx context.Context, rec *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return sqlitex.Execute(h.conn,
		`INSERT INTO generations (id, created_at, topic, model, attempts, deck) VALUES (?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{rec.ID, time.Now().UTC().Format(time.RFC3339), rec.Topic, rec.Model, rec.Attempts, rec.Deck},
		})
}

// Last returns up to n most recent records, newest first.
func (h *History) Last(ctx context.Context, n int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []Record
	err := sqlitex.Execute(h.conn,
		`SELECT id, topic, model, attempts, deck FROM generations ORDER BY created_at DESC LIMIT ?`,
		&sqlitex.ExecOptions{
			Args: []any{n},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				out = append(out, Record{
					ID:       stmt.ColumnText(0),
					Topic:    stmt.ColumnText(1),
					Model:    stmt.ColumnText(2),
					Attempts: stmt.ColumnInt(3),
					Deck:     stmt.ColumnText(4),
				})
				return nil
			},
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (h *History) Close() error {
	return h.conn.Close()
}
