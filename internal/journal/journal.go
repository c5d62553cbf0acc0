package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded reply.
type Entry struct {
	ID        int64
	SentAt    time.Time
	ChatID    string
	Offer     string
	Reply     string
	LatencyMs int64
}

// Summary aggregates reply latencies over the whole journal.
type Summary struct {
	Count   int
	AvgMs   int64
	MinMs   int64
	MaxMs   int64
	P50Ms   int64
	P95Ms   int64
	FirstAt time.Time
	LastAt  time.Time
}

// offerExcerptLen caps how much of the triggering message is stored.
const offerExcerptLen = 200

// Journal persists every sent reply with its latency so response times can be
// analyzed across runs. In-memory stats reset on restart; this does not.
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal database at dbPath.
func Open(dbPath string) (*Journal, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS responses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sent_at INTEGER NOT NULL,
			chat_id TEXT NOT NULL,
			offer TEXT NOT NULL,
			reply TEXT NOT NULL,
			latency_ms INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create responses table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_responses_sent_at ON responses(sent_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores one sent reply. The offer text is truncated to an excerpt.
func (j *Journal) Record(ctx context.Context, chatID, offer, reply string, latency time.Duration) error {
	if r := []rune(offer); len(r) > offerExcerptLen {
		offer = string(r[:offerExcerptLen])
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO responses (sent_at, chat_id, offer, reply, latency_ms)
		VALUES (?, ?, ?, ?, ?)
	`, time.Now().Unix(), chatID, offer, reply, latency.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to record response: %w", err)
	}
	return nil
}

// Recent returns the latest n entries, newest first.
func (j *Journal) Recent(ctx context.Context, n int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, sent_at, chat_id, offer, reply, latency_ms
		FROM responses
		ORDER BY sent_at DESC, id DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query responses: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var sentAt int64
		if err := rows.Scan(&e.ID, &sentAt, &e.ChatID, &e.Offer, &e.Reply, &e.LatencyMs); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		e.SentAt = time.Unix(sentAt, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Summarize computes latency aggregates over all recorded replies. A zero
// Count means the journal is empty and the other fields are meaningless.
func (j *Journal) Summarize(ctx context.Context) (Summary, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT sent_at, latency_ms FROM responses`)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to query latencies: %w", err)
	}
	defer rows.Close()

	var latencies []int64
	var first, last int64
	for rows.Next() {
		var sentAt, ms int64
		if err := rows.Scan(&sentAt, &ms); err != nil {
			return Summary{}, fmt.Errorf("failed to scan latency: %w", err)
		}
		latencies = append(latencies, ms)
		if first == 0 || sentAt < first {
			first = sentAt
		}
		if sentAt > last {
			last = sentAt
		}
	}
	if err := rows.Err(); err != nil {
		return Summary{}, err
	}
	if len(latencies) == 0 {
		return Summary{}, nil
	}

	sort.Slice(latencies, func(i, k int) bool { return latencies[i] < latencies[k] })

	var total int64
	for _, ms := range latencies {
		total += ms
	}

	return Summary{
		Count:   len(latencies),
		AvgMs:   total / int64(len(latencies)),
		MinMs:   latencies[0],
		MaxMs:   latencies[len(latencies)-1],
		P50Ms:   percentile(latencies, 50),
		P95Ms:   percentile(latencies, 95),
		FirstAt: time.Unix(first, 0),
		LastAt:  time.Unix(last, 0),
	}, nil
}

// percentile returns the nearest-rank percentile of sorted values.
func percentile(sorted []int64, p int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}
