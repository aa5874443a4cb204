// Package archive keeps a local record of finished games in embedded
// SQLite so they can be reviewed offline after the server forgets them.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/iliagerman1985/agentleague-aws-hackathone-sub002/go/internal/models"
)

// ErrNotFound is returned when the requested game is not archived.
var ErrNotFound = errors.New("game not archived")

// ErrNotFinished is returned when an unfinished snapshot is offered for
// archival; only terminal states are stored.
var ErrNotFinished = errors.New("game is not finished")

const schema = `
CREATE TABLE IF NOT EXISTS finished_games (
	id            TEXT PRIMARY KEY,
	game_type     TEXT NOT NULL,
	winner        TEXT NOT NULL DEFAULT '',
	final_version INTEGER NOT NULL,
	turn_number   INTEGER NOT NULL,
	state         BLOB NOT NULL,
	finished_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_finished_games_finished_at ON finished_games(finished_at DESC);
`

// ArchivedGame is a summary row for listing.
type ArchivedGame struct {
	ID           string          `json:"id"`
	GameType     models.GameType `json:"game_type"`
	Winner       string          `json:"winner,omitempty"`
	FinalVersion int64           `json:"final_version"`
	FinishedAt   time.Time       `json:"finished_at"`
}

// Repository stores finished games.
type Repository struct {
	db *sql.DB
}

// Open opens (and if needed creates) the archive database at path.
func Open(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply archive schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// SaveFinished archives a finished game's final snapshot. Re-archiving
// the same game id overwrites the previous row.
func (r *Repository) SaveFinished(ctx context.Context, snap *models.GameSnapshot) error {
	if snap == nil || !snap.IsFinished {
		return ErrNotFinished
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO finished_games
			(id, game_type, winner, final_version, turn_number, state, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, string(snap.GameType), snap.Winner, snap.Version,
		snap.TurnNumber, []byte(snap.State), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("archive game %s: %w", snap.ID, err)
	}
	return nil
}

// Get reconstructs the final snapshot of an archived game. Clock fields
// are not archived; the returned snapshot has no timers.
func (r *Repository) Get(ctx context.Context, id string) (*models.GameSnapshot, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, game_type, winner, final_version, turn_number, state
		FROM finished_games WHERE id = ?`, id)

	var snap models.GameSnapshot
	var gameType string
	var state []byte
	if err := row.Scan(&snap.ID, &gameType, &snap.Winner, &snap.Version, &snap.TurnNumber, &state); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load archived game %s: %w", id, err)
	}

	snap.GameType = models.GameType(gameType)
	snap.State = state
	snap.IsFinished = true
	return &snap, nil
}

// ListRecent returns summaries of the most recently archived games.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]ArchivedGame, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, game_type, winner, final_version, finished_at
		FROM finished_games ORDER BY finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list archived games: %w", err)
	}
	defer rows.Close()

	var games []ArchivedGame
	for rows.Next() {
		var g ArchivedGame
		var gameType string
		if err := rows.Scan(&g.ID, &gameType, &g.Winner, &g.FinalVersion, &g.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan archived game: %w", err)
		}
		g.GameType = models.GameType(gameType)
		games = append(games, g)
	}
	return games, rows.Err()
}
