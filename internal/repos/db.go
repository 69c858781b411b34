package repos

import (
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// every new connection to an in-memory database is a separate empty database
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Catalog is fixed; safe to run every start
	if err := seedCatalog(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Storefront sections
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  position INTEGER NOT NULL
);

-- Products (prices kept as decimal text)
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  category TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  old_price TEXT NOT NULL,
  current_price TEXT NOT NULL,
  image TEXT NOT NULL DEFAULT '',
  highlight INTEGER NOT NULL DEFAULT 0,
  position INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);

-- Carts, one per visitor session
CREATE TABLE IF NOT EXISTS carts(
  id TEXT PRIMARY KEY,
  session_id TEXT UNIQUE NOT NULL,
  updated_at TEXT
);

CREATE TABLE IF NOT EXISTS cart_items(
  cart_id    TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
  qty INTEGER NOT NULL CHECK (qty >= 1),
  created_at TEXT,
  updated_at TEXT,
  PRIMARY KEY (cart_id, product_id)
);
`
	_, err := db.Exec(schema)
	return err
}

type seedProduct struct {
	ID, Category, Name, Description, Old, Current, Image string
	Highlight                                            bool
}

var seedCategories = []struct{ ID, Title string }{
	{"kit", "Kits em Destaque Panini 2026"},
	{"album", "Álbuns Oficiais"},
	{"packs", "Pacotes Avulsos"},
}

var seedProducts = []seedProduct{
	{"kit-amador", "kit", "Kit Amador", "1 Álbum Capa Dura + 30 Pacotes de Figurinhas", "147.90", "78.32", "https://i.ibb.co/XrYpY6wQ/1alb3box.webp", true},
	{"kit-campeao", "kit", "Kit Campeão", "1 Álbum Capa Dura + 60 Pacotes de Figurinhas", "227.90", "118.32", "https://i.ibb.co/tMH4WmTj/1alb2box.webp", true},
	{"kit-colecionador", "kit", "Kit Colecionador", "1 Álbum Capa Dura + 90 Pacotes de Figurinhas", "327.90", "159.92", "https://i.ibb.co/qMkYSgyP/1alb1box.webp", true},
	{"album-capa-dura", "album", "Álbum Capa Dura", "Edição Especial de Luxo Oficial 2026", "127.90", "57.90", "https://i.ibb.co/cKGPnNNK/D-798749-MLB106673534321-022026-C.jpg", false},
	{"30-packs", "packs", "30 Pacotes", "150 Figurinhas Oficiais Panini", "59.90", "35.91", "https://i.ibb.co/FLmxpVRf/Gemini-Generated-Image-rocsqgrocsqgrocs.png", false},
	{"60-packs", "packs", "60 Pacotes", "300 Figurinhas Oficiais Panini", "89.90", "53.01", "https://i.ibb.co/FvZFxB5/1.png", false},
	{"90-packs", "packs", "90 Pacotes", "450 Figurinhas Oficiais Panini", "109.90", "69.21", "https://i.ibb.co/7dx669hp/2.png", false},
	{"120-packs", "packs", "120 Pacotes", "600 Figurinhas Oficiais Panini", "149.90", "85.41", "https://i.ibb.co/FLm8dv95/3.png", false},
	{"150-packs", "packs", "150 Pacotes", "750 Figurinhas Oficiais Panini", "179.90", "115.11", "https://i.ibb.co/G4DM1M2K/4.png", false},
}

// seedCatalog inserts the fixed catalog, leaving existing rows alone.
func seedCatalog(db *sqlx.DB) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for i, c := range seedCategories {
		if _, err := tx.Exec(`
			INSERT INTO categories(id, title, position) VALUES(?,?,?)
			ON CONFLICT(id) DO NOTHING
		`, c.ID, c.Title, i); err != nil {
			return err
		}
	}

	var inserted int64
	for i, p := range seedProducts {
		res, err := tx.Exec(`
			INSERT INTO products(id, category, name, description, old_price, current_price, image, highlight, position)
			VALUES(?,?,?,?,?,?,?,?,?)
			ON CONFLICT(id) DO NOTHING
		`, p.ID, p.Category, p.Name, p.Description, p.Old, p.Current, p.Image, p.Highlight, i)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		}
	}
	if inserted > 0 {
		log.Printf("[seed] inserted %d catalog products", inserted)
	}

	return tx.Commit()
}
