package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/owlingo/console-backend/internal/entity"
)

// ContentRepository defines the interface for saved content persistence
type ContentRepository interface {
	SaveContent(ctx context.Context, content *entity.GeneratedContent, title, description string) (*entity.SavedContent, error)
	Get(ctx context.Context, id string) (*entity.SavedContent, error)
	List(ctx context.Context, skip, limit int) ([]*entity.SavedContent, error)
	Delete(ctx context.Context, id string) error
}

var _ ContentRepository = &ContentPostgres{}

// ContentPostgres implements ContentRepository using PostgreSQL. The content
// body is stored as one jsonb document; list queries read only the metadata
// columns.
type ContentPostgres struct {
	db *pgxpool.Pool
}

func NewContentPostgres(db *pgxpool.Pool) *ContentPostgres {
	return &ContentPostgres{
		db: db,
	}
}

func (r *ContentPostgres) SaveContent(ctx context.Context, content *entity.GeneratedContent, title, description string) (*entity.SavedContent, error) {
	body, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("marshal content body: %w", err)
	}

	saved := &entity.SavedContent{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Kind:        content.Kind,
		SkillName:   content.SkillName,
		FormatName:  content.FormatName,
		ItemCount:   content.ItemCount(),
		Content:     content,
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO saved_content (id, title, description, kind, skill_name, format_name, item_count, content)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		saved.ID, saved.Title, saved.Description, string(saved.Kind),
		saved.SkillName, saved.FormatName, saved.ItemCount, body,
	)
	if err := row.Scan(&saved.CreatedAt); err != nil {
		return nil, fmt.Errorf("save content: %w", err)
	}

	return saved, nil
}

func (r *ContentPostgres) Get(ctx context.Context, id string) (*entity.SavedContent, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse content ID: %w", err)
	}

	var (
		saved entity.SavedContent
		kind  string
		body  []byte
	)
	row := r.db.QueryRow(ctx, `
		SELECT id, title, description, kind, skill_name, format_name, item_count, content, created_at
		FROM saved_content
		WHERE id = $1`,
		id,
	)
	err := row.Scan(&saved.ID, &saved.Title, &saved.Description, &kind,
		&saved.SkillName, &saved.FormatName, &saved.ItemCount, &body, &saved.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrContentNotFound
		}
		return nil, fmt.Errorf("get content: %w", err)
	}

	saved.Kind = entity.ContentKind(kind)
	saved.Content = &entity.GeneratedContent{}
	if err := json.Unmarshal(body, saved.Content); err != nil {
		return nil, fmt.Errorf("unmarshal content body: %w", err)
	}

	return &saved, nil
}

func (r *ContentPostgres) List(ctx context.Context, skip, limit int) ([]*entity.SavedContent, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, description, kind, skill_name, format_name, item_count, created_at
		FROM saved_content
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		limit, skip,
	)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	var items []*entity.SavedContent
	for rows.Next() {
		var (
			saved entity.SavedContent
			kind  string
		)
		err := rows.Scan(&saved.ID, &saved.Title, &saved.Description, &kind,
			&saved.SkillName, &saved.FormatName, &saved.ItemCount, &saved.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan content row: %w", err)
		}
		saved.Kind = entity.ContentKind(kind)
		items = append(items, &saved)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content rows: %w", err)
	}

	return items, nil
}

func (r *ContentPostgres) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("parse content ID: %w", err)
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM saved_content WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrContentNotFound
	}

	return nil
}
