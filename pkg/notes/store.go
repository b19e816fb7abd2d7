// Package notes реализует персистентный блокнот агента поверх SQLite.
//
// Заметки переживают перезапуск процесса и компрессию контекста:
// это "внешняя память" агента для долгих research-сессий.
package notes

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Note — одна запись блокнота.
type Note struct {
	ID        int64
	Content   string
	CreatedAt time.Time
}

// Store — SQLite хранилище заметок.
//
// Rule 5: *sql.DB сам по себе thread-safe, дополнительных блокировок не нужно.
type Store struct {
	db *sql.DB
}

// Open открывает (или создает) базу заметок по указанному пути.
//
// Путь ":memory:" дает эфемерное хранилище для тестов.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("notes db path is required")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open notes db: %w", err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS notes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		content TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init notes schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Append добавляет заметку в конец блокнота.
func (s *Store) Append(ctx context.Context, content string) error {
	if content == "" {
		return fmt.Errorf("note content is empty")
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO notes (content, created_at) VALUES (?, ?)",
		content, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("append note: %w", err)
	}
	return nil
}

// ReadAll возвращает все заметки в порядке добавления.
func (s *Store) ReadAll(ctx context.Context) ([]Note, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, content, created_at FROM notes ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("read notes: %w", err)
	}
	defer rows.Close()

	var result []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.Content, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return result, nil
}

// Clear удаляет все заметки.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM notes"); err != nil {
		return fmt.Errorf("clear notes: %w", err)
	}
	return nil
}

// Close закрывает соединение с базой.
func (s *Store) Close() error {
	return s.db.Close()
}
