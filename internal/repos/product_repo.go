package repos

import (
	"albumstore/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productColumns = `id, category, name, description, old_price, current_price, image, highlight`

func (r *ProductRepo) ListByCategory(cat domain.Category) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, `
	  SELECT `+productColumns+`
	  FROM products
	  WHERE category = ?
	  ORDER BY position
	`, cat)
	return out, err
}

// Get returns sql.ErrNoRows for an unknown id.
func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `
	  SELECT `+productColumns+`
	  FROM products
	  WHERE id = ?
	`, id)
	return p, err
}

// CategoryTitle is the section heading shown above a category.
func (r *ProductRepo) CategoryTitle(cat domain.Category) (string, error) {
	var title string
	err := r.db.Get(&title, `SELECT title FROM categories WHERE id = ?`, cat)
	return title, err
}
