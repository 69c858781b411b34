package repos

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"albumstore/internal/domain"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

func (r *CartRepo) EnsureCart(sessionID string) (string, error) {
	var cartID string
	err := r.db.Get(&cartID, `SELECT id FROM carts WHERE session_id = ?`, sessionID)
	if err == nil {
		return cartID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	_, err = r.db.Exec(`INSERT INTO carts(id,session_id,updated_at) VALUES(?,?,?)
		ON CONFLICT(session_id) DO NOTHING`,
		sessionID, sessionID, time.Now().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

// AddOne increments the line for productID, creating it with quantity 1.
func (r *CartRepo) AddOne(cartID, productID string) error {
	_, err := r.db.Exec(`
		INSERT INTO cart_items(cart_id,product_id,qty,created_at)
		VALUES(?,?,1,CURRENT_TIMESTAMP)
		ON CONFLICT(cart_id,product_id) DO UPDATE
		SET qty = cart_items.qty + 1, updated_at = CURRENT_TIMESTAMP
	`, cartID, productID)
	if err != nil {
		return err
	}
	return r.touch(cartID)
}

// AdjustQty adds delta to an existing line, never going below 1. It reports
// whether the line existed.
func (r *CartRepo) AdjustQty(cartID, productID string, delta int) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE cart_items
		SET qty = MAX(1, qty + ?), updated_at = CURRENT_TIMESTAMP
		WHERE cart_id = ? AND product_id = ?
	`, delta, cartID, productID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, r.touch(cartID)
}

func (r *CartRepo) Remove(cartID, productID string) error {
	if _, err := r.db.Exec(`DELETE FROM cart_items WHERE cart_id = ? AND product_id = ?`, cartID, productID); err != nil {
		return err
	}
	return r.touch(cartID)
}

// Lines returns the cart contents in the order they were first added.
func (r *CartRepo) Lines(cartID string) ([]domain.CartItem, error) {
	out := []domain.CartItem{}
	err := r.db.Select(&out, `
	  SELECT p.id, p.category, p.name, p.description, p.old_price, p.current_price,
	         p.image, p.highlight, ci.qty
	  FROM cart_items ci JOIN products p ON p.id = ci.product_id
	  WHERE ci.cart_id = ?
	  ORDER BY ci.rowid
	`, cartID)
	return out, err
}

func (r *CartRepo) touch(cartID string) error {
	_, err := r.db.Exec(`UPDATE carts SET updated_at = ? WHERE id = ?`, time.Now().Format(time.RFC3339), cartID)
	return err
}
