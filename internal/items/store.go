// Package items implements the item catalog on an in-memory SQLite
// database. Nothing survives the process; that is intentional.
package items

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	// Register sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

var ErrNotFound = errors.New("item not found")

type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ItemCreate struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// ItemUpdate carries partial updates; nil fields are left untouched.
type ItemUpdate struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates the in-memory database and its schema. A single
// connection keeps the memory database alive for the process lifetime.
func Open() (*Store, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, err
	}
	// A memory database lives and dies with its connection; keep exactly one.
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(0)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS items(
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price REAL NOT NULL,
		quantity INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Seed loads the sample catalog used by the extension demo.
func (s *Store) Seed() error {
	samples := []ItemCreate{
		{Name: "Laptop", Description: "High-performance laptop", Price: 999.99, Quantity: 10},
		{Name: "Mouse", Description: "Wireless gaming mouse", Price: 49.99, Quantity: 50},
		{Name: "Keyboard", Description: "Mechanical keyboard", Price: 79.99, Quantity: 30},
	}
	for _, it := range samples {
		if _, err := s.Create(it); err != nil {
			return err
		}
	}
	return nil
}

func newItemID() string {
	u := uuid.New()
	return "item-" + hex.EncodeToString(u[:4])
}

func (s *Store) Create(in ItemCreate) (Item, error) {
	// Rows store unix seconds; truncate so the returned item matches a
	// later Get exactly.
	now := s.now().UTC().Truncate(time.Second)
	item := Item{
		ID:          newItemID(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := s.db.Exec(`INSERT INTO items(id,name,description,price,quantity,created_at,updated_at)
		VALUES(?,?,?,?,?,?,?)`,
		item.ID, item.Name, item.Description, item.Price, item.Quantity,
		item.CreatedAt.Unix(), item.UpdatedAt.Unix())
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

func (s *Store) Get(id string) (Item, error) {
	row := s.db.QueryRow(`SELECT id,name,description,price,quantity,created_at,updated_at
		FROM items WHERE id=?`, id)
	return scanItem(row)
}

func (s *Store) List() ([]Item, error) {
	return s.query(`SELECT id,name,description,price,quantity,created_at,updated_at
		FROM items ORDER BY created_at, rowid`)
}

// Search matches name or description, case-insensitive.
func (s *Store) Search(q string) ([]Item, error) {
	like := "%" + strings.ToLower(q) + "%"
	return s.query(`SELECT id,name,description,price,quantity,created_at,updated_at
		FROM items WHERE lower(name) LIKE ? OR lower(description) LIKE ?
		ORDER BY created_at, rowid`, like, like)
}

func (s *Store) Update(id string, in ItemUpdate) (Item, error) {
	item, err := s.Get(id)
	if err != nil {
		return Item{}, err
	}
	if in.Name != nil {
		item.Name = *in.Name
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.Price != nil {
		item.Price = *in.Price
	}
	if in.Quantity != nil {
		item.Quantity = *in.Quantity
	}
	item.UpdatedAt = s.now().UTC().Truncate(time.Second)
	_, err = s.db.Exec(`UPDATE items SET name=?,description=?,price=?,quantity=?,updated_at=? WHERE id=?`,
		item.Name, item.Description, item.Price, item.Quantity, item.UpdatedAt.Unix(), id)
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM items WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) query(q string, args ...any) ([]Item, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Item
	for rows.Next() {
		var it Item
		var created, updated int64
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Quantity, &created, &updated); err != nil {
			return nil, err
		}
		it.CreatedAt = time.Unix(created, 0).UTC()
		it.UpdatedAt = time.Unix(updated, 0).UTC()
		out = append(out, it)
	}
	return out, rows.Err()
}

func scanItem(row *sql.Row) (Item, error) {
	var it Item
	var created, updated int64
	err := row.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Quantity, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	if err != nil {
		return Item{}, err
	}
	it.CreatedAt = time.Unix(created, 0).UTC()
	it.UpdatedAt = time.Unix(updated, 0).UTC()
	return it, nil
}
