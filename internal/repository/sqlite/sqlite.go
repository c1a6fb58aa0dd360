package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/golang/glog"
	_ "modernc.org/sqlite"

	"modelsync/internal/notification"
	"modelsync/internal/repository"
)

// Journal implements repository.Journal using SQLite
type Journal struct {
	db *sql.DB
}

var _ repository.Journal = (*Journal)(nil)

// New opens the journal at dbPath, creating and migrating it as needed.
// ":memory:" gives a private in-memory journal.
func New(dbPath string, busyTimeout time.Duration) (*Journal, error) {
	db, err := sql.Open("sqlite", dsn(dbPath, busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a second connection to :memory: would see a different database
	db.SetMaxOpenConns(1)

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	glog.V(1).Infof("[journal] opened %s", dbPath)
	return j, nil
}

func dsn(dbPath string, busyTimeout time.Duration) string {
	pragmas := []string{
		fmt.Sprintf("_pragma=busy_timeout(%d)", busyTimeout.Milliseconds()),
		"_pragma=foreign_keys(1)",
	}
	if dbPath != ":memory:" {
		pragmas = append(pragmas, "_pragma=journal_mode(WAL)")
	}
	return "file:" + dbPath + "?" + strings.Join(pragmas, "&")
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS notifications (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		stream TEXT NOT NULL,
		producer TEXT NOT NULL,
		counter INTEGER NOT NULL,
		kind TEXT NOT NULL,
		summary TEXT NOT NULL,
		body JSON NOT NULL,
		recorded_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS notification_nodes (
		seq INTEGER NOT NULL,
		position INTEGER NOT NULL,
		node_id TEXT NOT NULL,
		PRIMARY KEY (seq, position),
		FOREIGN KEY (seq) REFERENCES notifications(seq) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_notifications_stream ON notifications(stream, seq);
	CREATE INDEX IF NOT EXISTS idx_notifications_kind ON notifications(kind);
	CREATE INDEX IF NOT EXISTS idx_notification_nodes_node ON notification_nodes(node_id);
	`

	_, err := j.db.Exec(schema)
	return err
}

// Append stores e and its node mentions in one transaction
func (j *Journal) Append(ctx context.Context, e *repository.Entry) error {
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin append: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO notifications (stream, producer, counter, kind, summary, body, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.Stream, e.ID.Producer, int64(e.ID.Seq), string(e.Kind), e.Summary, e.Body, timeToNanos(e.RecordedAt))
	if err != nil {
		return fmt.Errorf("failed to insert notification %s: %w", e.ID, err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read journal seq: %w", err)
	}

	for i, node := range e.Nodes {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO notification_nodes (seq, position, node_id) VALUES (?, ?, ?)
		`, seq, i, node); err != nil {
			return fmt.Errorf("failed to insert node %s of %s: %w", node, e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit append: %w", err)
	}
	e.Seq = seq
	return nil
}

// List returns the entries matching q ordered by seq
func (j *Journal) List(ctx context.Context, q repository.Query) ([]repository.Entry, error) {
	where, args := queryClauses(q)
	query := `
		SELECT seq, stream, producer, counter, kind, summary, body, recorded_at
		FROM notifications` + where + `
		ORDER BY seq`
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var entries []repository.Entry
	for rows.Next() {
		var (
			e        repository.Entry
			counter  int64
			kind     string
			recorded int64
		)
		if err := rows.Scan(&e.Seq, &e.Stream, &e.ID.Producer, &counter, &kind, &e.Summary, &e.Body, &recorded); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		e.ID.Seq = uint64(counter)
		e.Kind = notification.Kind(kind)
		e.RecordedAt = nanosToTime(recorded)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}
	rows.Close()

	if len(entries) == 0 {
		return entries, nil
	}
	if err := j.loadNodes(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func queryClauses(q repository.Query) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if q.Stream != "" {
		conds = append(conds, "stream = ?")
		args = append(args, q.Stream)
	}
	if q.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, string(q.Kind))
	}
	if q.Producer != "" {
		conds = append(conds, "producer = ?")
		args = append(args, q.Producer)
	}
	if q.Node != "" {
		conds = append(conds, "seq IN (SELECT seq FROM notification_nodes WHERE node_id = ?)")
		args = append(args, q.Node)
	}
	if q.AfterSeq > 0 {
		conds = append(conds, "seq > ?")
		args = append(args, q.AfterSeq)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "\n\t\tWHERE " + strings.Join(conds, " AND "), args
}

// loadNodes fills the node mentions of entries, which are ordered by seq
func (j *Journal) loadNodes(ctx context.Context, entries []repository.Entry) error {
	bySeq := make(map[int64]*repository.Entry, len(entries))
	for i := range entries {
		bySeq[entries[i].Seq] = &entries[i]
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, node_id FROM notification_nodes
		WHERE seq BETWEEN ? AND ?
		ORDER BY seq, position
	`, entries[0].Seq, entries[len(entries)-1].Seq)
	if err != nil {
		return fmt.Errorf("failed to query notification nodes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			seq  int64
			node string
		)
		if err := rows.Scan(&seq, &node); err != nil {
			return fmt.Errorf("failed to scan notification node: %w", err)
		}
		if e := bySeq[seq]; e != nil {
			e.Nodes = append(e.Nodes, node)
		}
	}
	return rows.Err()
}

// Streams summarizes every stream, ordered by name
func (j *Journal) Streams(ctx context.Context) ([]repository.StreamStats, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT stream, COUNT(*), MIN(seq), MAX(seq)
		FROM notifications
		GROUP BY stream
		ORDER BY stream
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query streams: %w", err)
	}
	defer rows.Close()

	var stats []repository.StreamStats
	for rows.Next() {
		var s repository.StreamStats
		if err := rows.Scan(&s.Stream, &s.Entries, &s.FirstSeq, &s.LastSeq); err != nil {
			return nil, fmt.Errorf("failed to scan stream: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// Close closes the database connection
func (j *Journal) Close() error {
	return j.db.Close()
}
