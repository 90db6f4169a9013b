package store

import (
	"database/sql"
	"fmt"
	"time"

	"agriflow/bnpl-api/internal/domain"
)

// WebhookRepo stores registered high-risk alert callbacks.
type WebhookRepo struct {
	db *sql.DB
}

func NewWebhookRepo(db *sql.DB) *WebhookRepo {
	return &WebhookRepo{db: db}
}

func (r *WebhookRepo) Insert(w *domain.WebhookConfig) error {
	active := 0
	if w.Active {
		active = 1
	}
	_, err := r.db.Exec(
		`INSERT INTO webhooks (id, url, pd_threshold, active, created_at)
		VALUES (?,?,?,?,?)`,
		w.ID, w.URL, w.PDThreshold, active, w.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert webhook: %w", err)
	}
	return nil
}

// Delete deactivates a webhook. The row is kept for auditability.
func (r *WebhookRepo) Delete(id string) error {
	res, err := r.db.Exec("UPDATE webhooks SET active = 0 WHERE id = ? AND active = 1", id)
	if err != nil {
		return fmt.Errorf("deactivate webhook: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActive returns all active webhooks, oldest first.
func (r *WebhookRepo) ListActive() ([]domain.WebhookConfig, error) {
	rows, err := r.db.Query(
		"SELECT id, url, pd_threshold, active, created_at FROM webhooks WHERE active = 1 ORDER BY created_at",
	)
	if err != nil {
		return nil, fmt.Errorf("query webhooks: %w", err)
	}
	defer rows.Close()

	var hooks []domain.WebhookConfig
	for rows.Next() {
		w, err := scanWebhook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		hooks = append(hooks, w)
	}
	return hooks, rows.Err()
}

func scanWebhook(rows *sql.Rows) (domain.WebhookConfig, error) {
	var w domain.WebhookConfig
	var active int
	var createdAt string

	if err := rows.Scan(&w.ID, &w.URL, &w.PDThreshold, &active, &createdAt); err != nil {
		return w, err
	}
	w.Active = active == 1
	w.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return w, nil
}
