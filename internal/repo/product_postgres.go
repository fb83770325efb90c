package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
)

type PostgresProductRepository struct {
	db *sql.DB
}

func NewPostgresProductRepository(db *sql.DB) *PostgresProductRepository {
	return &PostgresProductRepository{db: db}
}

const productColumns = `p.id, p.name, p.category_id, COALESCE(c.name, ''), p.price, p.quantity, p.created_at, p.updated_at`

const productFrom = ` FROM products p LEFT JOIN categories c ON c.id = p.category_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product
	var categoryID uuid.NullUUID
	err := row.Scan(&p.ID, &p.Name, &categoryID, &p.Category, &p.Price, &p.Quantity, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return models.Product{}, err
	}
	if categoryID.Valid {
		p.CategoryID = categoryID.UUID
	}
	p.StockHistory = []models.StockEvent{}
	return p, nil
}

func nullableCategory(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}

func insertStockEvent(ctx context.Context, tx *sql.Tx, productID uuid.UUID, prev, next int) error {
	query := `INSERT INTO stock_events (product_id, previous_qty, new_qty) VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, query, productID, prev, next); err != nil {
		return fmt.Errorf("record stock event: %w", err)
	}
	return nil
}

func (r *PostgresProductRepository) Create(p models.Product) (models.Product, error) {
	if p.Quantity < 0 {
		return models.Product{}, ErrInvalidQuantityChange
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Product{}, err
	}
	defer tx.Rollback()

	query := `INSERT INTO products (id, name, category_id, price, quantity) VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.ExecContext(ctx, query, p.ID, p.Name, nullableCategory(p.CategoryID), p.Price, p.Quantity); err != nil {
		return models.Product{}, mapPgError(err)
	}
	if p.Quantity != 0 {
		if err := insertStockEvent(ctx, tx, p.ID, 0, p.Quantity); err != nil {
			return models.Product{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return models.Product{}, err
	}
	return r.GetByID(p.ID)
}

func (r *PostgresProductRepository) GetAll() ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+productColumns+productFrom+` ORDER BY p.created_at, p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	index := map[uuid.UUID]int{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		index[p.ID] = len(products)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	events, err := r.db.QueryContext(ctx,
		`SELECT product_id, previous_qty, new_qty, created_at FROM stock_events ORDER BY product_id, created_at, id`)
	if err != nil {
		return nil, err
	}
	defer events.Close()

	for events.Next() {
		var productID uuid.UUID
		var e models.StockEvent
		if err := events.Scan(&productID, &e.PreviousQty, &e.NewQty, &e.Date); err != nil {
			return nil, err
		}
		if i, ok := index[productID]; ok {
			products[i].StockHistory = append(products[i].StockHistory, e)
		}
	}
	return products, events.Err()
}

func (r *PostgresProductRepository) getOne(where string, arg any) (models.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	p, err := scanProduct(r.db.QueryRowContext(ctx, `SELECT `+productColumns+productFrom+` WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, err
	}
	history, err := r.history(ctx, p.ID)
	if err != nil {
		return models.Product{}, err
	}
	p.StockHistory = history
	return p, nil
}

func (r *PostgresProductRepository) GetByID(id uuid.UUID) (models.Product, error) {
	return r.getOne("p.id = $1", id)
}

func (r *PostgresProductRepository) GetByName(name string) (models.Product, error) {
	return r.getOne("p.name = $1", name)
}

func (r *PostgresProductRepository) Update(p models.Product) (models.Product, error) {
	if p.Quantity < 0 {
		return models.Product{}, ErrInvalidQuantityChange
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Product{}, err
	}
	defer tx.Rollback()

	var previous int
	err = tx.QueryRowContext(ctx, `SELECT quantity FROM products WHERE id = $1 FOR UPDATE`, p.ID).Scan(&previous)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, err
	}

	query := `UPDATE products SET name = $1, category_id = $2, price = $3, quantity = $4, updated_at = now() WHERE id = $5`
	if _, err := tx.ExecContext(ctx, query, p.Name, nullableCategory(p.CategoryID), p.Price, p.Quantity, p.ID); err != nil {
		return models.Product{}, mapPgError(err)
	}
	if p.Quantity != previous {
		if err := insertStockEvent(ctx, tx, p.ID, previous, p.Quantity); err != nil {
			return models.Product{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return models.Product{}, err
	}
	return r.GetByID(p.ID)
}

func (r *PostgresProductRepository) Delete(id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *PostgresProductRepository) AdjustQuantity(id uuid.UUID, delta int) (models.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Product{}, err
	}
	defer tx.Rollback()

	var previous int
	err = tx.QueryRowContext(ctx, `SELECT quantity FROM products WHERE id = $1 FOR UPDATE`, id).Scan(&previous)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, err
	}
	next := previous + delta
	if next < 0 {
		return models.Product{}, ErrInvalidQuantityChange
	}

	if _, err := tx.ExecContext(ctx, `UPDATE products SET quantity = $1, updated_at = now() WHERE id = $2`, next, id); err != nil {
		return models.Product{}, err
	}
	if err := insertStockEvent(ctx, tx, id, previous, next); err != nil {
		return models.Product{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Product{}, err
	}
	return r.GetByID(id)
}

func (r *PostgresProductRepository) History(id uuid.UUID) ([]models.StockEvent, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrProductNotFound
	}
	return r.history(ctx, id)
}

func (r *PostgresProductRepository) history(ctx context.Context, id uuid.UUID) ([]models.StockEvent, error) {
	query := `SELECT previous_qty, new_qty, created_at FROM stock_events WHERE product_id = $1 ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.StockEvent{}
	for rows.Next() {
		var e models.StockEvent
		if err := rows.Scan(&e.PreviousQty, &e.NewQty, &e.Date); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
