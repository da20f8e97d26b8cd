// Package favorites persists user favorite songs in SQLite.
package favorites

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harmonia-chat/harmonia/internal/models"
)

// Store persists favorites keyed by user ID. A user cannot favorite the same
// song twice; duplicates are ignored.
type Store struct {
	db *sql.DB
}

// Open opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS favorites (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		song_title TEXT NOT NULL,
		song_author TEXT NOT NULL,
		song_genre TEXT,
		song_mood TEXT,
		song_year INTEGER,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, song_title, song_author)
	);

	CREATE INDEX IF NOT EXISTS idx_favorites_user_id ON favorites(user_id);
	`
	_, err := db.Exec(schema)
	return err
}

// Add stores song as a favorite for userID. It returns false when the song is
// already in the user's favorites.
func (s *Store) Add(ctx context.Context, userID string, song models.Song) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO favorites (user_id, song_title, song_author, song_genre, song_mood, song_year)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, song.Title, song.Author, song.Genre, song.Mood, song.Year,
	)
	if err != nil {
		return false, fmt.Errorf("failed to add favorite: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// List returns the user's favorites, most recently added first.
func (s *Store) List(ctx context.Context, userID string) ([]models.Song, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT song_title, song_author, song_genre, song_mood, song_year
		 FROM favorites WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	var songs []models.Song
	for rows.Next() {
		var song models.Song
		if err := rows.Scan(&song.Title, &song.Author, &song.Genre, &song.Mood, &song.Year); err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

// Remove deletes a favorite by title, case-insensitively. It returns false
// when the user had no such favorite.
func (s *Store) Remove(ctx context.Context, userID, title string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND LOWER(song_title) = LOWER(?)`,
		userID, title,
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove favorite: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Clear deletes all favorites for userID and returns how many were removed.
func (s *Store) Clear(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear favorites: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of favorites for userID.
func (s *Store) Count(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM favorites WHERE user_id = ?`, userID,
	).Scan(&count)
	return count, err
}

// AllUsers returns the IDs of every user with at least one favorite.
func (s *Store) AllUsers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM favorites ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
