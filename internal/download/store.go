package download

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vmunix/mediahub/internal/plugin"
)

// TransitionEvent describes one status change of a stored task.
type TransitionEvent struct {
	TaskID string
	Plugin string
	From   plugin.DownloadStatus
	To     plugin.DownloadStatus
	At     time.Time
}

// TransitionHandler is called after a transition is persisted.
type TransitionHandler func(TransitionEvent)

// Filter specifies criteria for listing tasks.
type Filter struct {
	Plugin string
	Status *plugin.DownloadStatus
	Active bool // only pending and downloading
	Limit  int
	Offset int
}

// Store persists download tasks.
type Store struct {
	db       *sql.DB
	handlers []TransitionHandler
	now      func() time.Time
}

// NewStore creates a download store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// OnTransition registers a handler to be called on state transitions.
func (s *Store) OnTransition(h TransitionHandler) {
	s.handlers = append(s.handlers, h)
}

const taskColumns = `id, url, title, status, progress, plugin_name, save_path, metadata, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*plugin.DownloadTask, error) {
	t := &plugin.DownloadTask{}
	var meta string
	if err := row.Scan(&t.ID, &t.URL, &t.Title, &t.Status, &t.Progress, &t.PluginName,
		&t.SavePath, &meta, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if meta != "" && meta != "{}" {
		if err := json.Unmarshal([]byte(meta), &t.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata of %s: %w", t.ID, err)
		}
	}
	return t, nil
}

func encodeMetadata(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	return string(b), nil
}

// Add inserts a new task. CreatedAt and UpdatedAt are set when zero.
func (s *Store) Add(ctx context.Context, t *plugin.DownloadTask) error {
	meta, err := encodeMetadata(t.Metadata)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = plugin.DownloadPending
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO download_tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.URL, t.Title, t.Status, t.Progress, t.PluginName, t.SavePath, meta, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert download task %s: %w", t.ID, err)
	}
	return nil
}

// Get retrieves a task by id.
// Returns ErrNotFound if the task does not exist.
func (s *Store) Get(ctx context.Context, id string) (*plugin.DownloadTask, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM download_tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get download task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get download task %s: %w", id, err)
	}
	return t, nil
}

// FindByClientID returns the task a provider knows as clientID.
func (s *Store) FindByClientID(ctx context.Context, pluginName, clientID string) (*plugin.DownloadTask, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM download_tasks
		WHERE plugin_name = ? AND json_extract(metadata, '$.`+plugin.MetaClientID+`') = ?
		ORDER BY created_at DESC LIMIT 1`, pluginName, clientID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find download %s/%s: %w", pluginName, clientID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find download %s/%s: %w", pluginName, clientID, err)
	}
	return t, nil
}

// Update writes status, progress, save path and metadata without validating
// the status. Use Transition for validated status changes.
// Returns ErrNotFound if the task does not exist.
func (s *Store) Update(ctx context.Context, t *plugin.DownloadTask) error {
	meta, err := encodeMetadata(t.Metadata)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE download_tasks SET status = ?, progress = ?, save_path = ?, metadata = ?, updated_at = ?
		WHERE id = ?`,
		t.Status, t.Progress, t.SavePath, meta, now, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update download task %s: %w", t.ID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update download task %s: %w", t.ID, ErrNotFound)
	}
	t.UpdatedAt = now
	return nil
}

// Transition changes a task's status with validation and notifies handlers.
func (s *Store) Transition(ctx context.Context, t *plugin.DownloadTask, to plugin.DownloadStatus) error {
	if !t.Status.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, to)
	}
	from := t.Status
	now := s.now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE download_tasks SET status = ?, progress = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		to, t.Progress, now, t.ID, from,
	)
	if err != nil {
		return fmt.Errorf("transition download task %s: %w", t.ID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("transition download task %s from %s: %w", t.ID, from, ErrNotFound)
	}

	t.Status = to
	t.UpdatedAt = now

	event := TransitionEvent{TaskID: t.ID, Plugin: t.PluginName, From: from, To: to, At: now}
	for _, h := range s.handlers {
		h(event)
	}
	return nil
}

// List returns tasks matching f, newest first, and the total number of
// matches ignoring Limit and Offset.
func (s *Store) List(ctx context.Context, f Filter) ([]*plugin.DownloadTask, int, error) {
	var conditions []string
	var args []any

	if f.Plugin != "" {
		conditions = append(conditions, "plugin_name = ?")
		args = append(args, f.Plugin)
	}
	if f.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *f.Status)
	}
	if f.Active {
		conditions = append(conditions, "status IN (?, ?)")
		args = append(args, plugin.DownloadPending, plugin.DownloadDownloading)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM download_tasks"+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count download tasks: %w", err)
	}

	query := "SELECT " + taskColumns + " FROM download_tasks" + whereClause + " ORDER BY created_at DESC, id"
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list download tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*plugin.DownloadTask
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan download task: %w", err)
		}
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate download tasks: %w", err)
	}
	return results, total, nil
}

// Delete removes a task by id.
// This operation is idempotent - no error is returned if the task does not exist.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM download_tasks WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete download task %s: %w", id, err)
	}
	return nil
}
