package dbhelper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ray-remotestate/pizzeria/models"
)

type CatalogRepo struct {
	DB *sql.DB
}

func NewCatalogRepo(db *sql.DB) *CatalogRepo {
	return &CatalogRepo{DB: db}
}

const productColumns = `
	id, category_id, name, slug, description, base_price, image_url,
	family, option_set, variants, is_featured, is_vegetarian, is_vegan,
	is_spicy, is_available, created_at`

func (r *CatalogRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, slug, description, sort_order
		FROM categories
		ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.SortOrder); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ListProducts returns every product, including unavailable ones, ordered
// for display.
func (r *CatalogRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY category_id, sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *CatalogRepo) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	p, err := scanProduct(r.DB.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return p, err
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.Description, &p.BasePrice, &p.ImageURL,
		&p.Family, &p.OptionSet, &p.Variants, &p.IsFeatured, &p.IsVegetarian, &p.IsVegan,
		&p.IsSpicy, &p.IsAvailable, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
