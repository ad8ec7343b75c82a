package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"CAMPUSMARKET_BACK-END/internal/models"
)

// PostgresProductStore implements ProductStore on a pgx pool
type PostgresProductStore struct {
	pool *pgxpool.Pool
}

// NewProductStore creates a new PostgresProductStore
func NewProductStore(pool *pgxpool.Pool) *PostgresProductStore {
	return &PostgresProductStore{pool: pool}
}

const productColumns = `
p.id, p.title, p.description, p.price, p.category, p.images, p.seller_id,
p.contact_info, p.whatsapp_number, p.is_sold, p.created_at, p.updated_at,
u.id, u.username, u.email, u.contact_number`

const productFrom = ` from products p join users u on u.id = p.seller_id`

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	var seller models.SellerInfo
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Price, &p.Category, &p.Images, &p.SellerID,
		&p.ContactInfo, &p.WhatsappNumber, &p.IsSold, &p.CreatedAt, &p.UpdatedAt,
		&seller.ID, &seller.Username, &seller.Email, &seller.ContactNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	p.Seller = &seller
	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]models.Product, error) {
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *PostgresProductStore) CreateProduct(ctx context.Context, product *models.Product) error {
	const q = `
insert into products (
	id, title, description, price, category, images, seller_id,
	contact_info, whatsapp_number, is_sold, created_at, updated_at
) values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := s.pool.Exec(ctx, q,
		product.ID, product.Title, product.Description, product.Price,
		product.Category, product.Images, product.SellerID,
		product.ContactInfo, product.WhatsappNumber, product.IsSold,
		product.CreatedAt, product.UpdatedAt)
	return err
}

func (s *PostgresProductStore) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	q := `select` + productColumns + productFrom + ` where p.id = $1`
	return scanProduct(s.pool.QueryRow(ctx, q, id))
}

func (s *PostgresProductStore) SearchProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	// Sold listings never appear in search results
	q := `select` + productColumns + productFrom + ` where p.is_sold = false`
	args := []any{}

	if filter.Search != "" {
		args = append(args, filter.Search)
		q += fmt.Sprintf(" and to_tsvector('english', p.title || ' ' || p.description) @@ websearch_to_tsquery('english', $%d)", len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		q += fmt.Sprintf(" and p.category = $%d", len(args))
	}
	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		q += fmt.Sprintf(" and p.price >= $%d", len(args))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		q += fmt.Sprintf(" and p.price <= $%d", len(args))
	}
	q += " order by p.created_at desc"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (s *PostgresProductStore) ProductsBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Product, error) {
	q := `select` + productColumns + productFrom + ` where p.seller_id = $1 order by p.created_at desc`

	rows, err := s.pool.Query(ctx, q, sellerID)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (s *PostgresProductStore) UpdateProduct(ctx context.Context, product *models.Product) error {
	// seller_id and is_sold are deliberately absent from the update list
	const q = `
update products set
	title = $2, description = $3, price = $4, category = $5, images = $6,
	contact_info = $7, whatsapp_number = $8, updated_at = $9
where id = $1`

	tag, err := s.pool.Exec(ctx, q,
		product.ID, product.Title, product.Description, product.Price,
		product.Category, product.Images, product.ContactInfo,
		product.WhatsappNumber, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresProductStore) MarkSold(ctx context.Context, id uuid.UUID) (bool, error) {
	// The is_sold guard makes the transition one-way even under races
	const q = `update products set is_sold = true, updated_at = $2 where id = $1 and is_sold = false`

	tag, err := s.pool.Exec(ctx, q, id, time.Now())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresProductStore) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `delete from products where id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
