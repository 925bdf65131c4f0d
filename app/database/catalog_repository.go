package database

import (
	"context"
	"fmt"
)

var _ CatalogStore = (*CatalogRepository)(nil)

// CatalogRepository handles the deduplicated reference entities and their
// association tables. Names are matched case-sensitively.
type CatalogRepository struct {
	db *DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// FindOrCreateAuthor resolves an author by name, creating it on first
// encounter. The no-op DO UPDATE keeps RETURNING valid when the row exists.
func (r *CatalogRepository) FindOrCreateAuthor(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO authors (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, name).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to find or create author: %w", err)
	}

	return id, nil
}

// FindOrCreatePublisher resolves a publisher by name, creating it on first
// encounter. Website/logo are set once and never updated afterwards.
func (r *CatalogRepository) FindOrCreatePublisher(ctx context.Context, name, website, logoURL string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO publishers (name, website, logo_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, name, website, logoURL).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to find or create publisher: %w", err)
	}

	return id, nil
}

// FindOrCreateCategory resolves a category by name, creating it on first encounter.
func (r *CatalogRepository) FindOrCreateCategory(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO categories (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, name).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to find or create category: %w", err)
	}

	return id, nil
}

// LinkItemAuthor associates an item with an author (insert-ignore).
func (r *CatalogRepository) LinkItemAuthor(ctx context.Context, itemID, authorID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO feed_item_authors (item_id, author_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, itemID, authorID)

	if err != nil {
		return fmt.Errorf("failed to link item author: %w", err)
	}

	return nil
}

// LinkItemPublisher associates an item with a publisher (insert-ignore).
func (r *CatalogRepository) LinkItemPublisher(ctx context.Context, itemID, publisherID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO feed_item_publishers (item_id, publisher_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, itemID, publisherID)

	if err != nil {
		return fmt.Errorf("failed to link item publisher: %w", err)
	}

	return nil
}

// LinkFeedCategory associates a feed with a category (insert-ignore).
func (r *CatalogRepository) LinkFeedCategory(ctx context.Context, feedID, categoryID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO feed_categories (feed_id, category_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, feedID, categoryID)

	if err != nil {
		return fmt.Errorf("failed to link feed category: %w", err)
	}

	return nil
}
