package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables and indexes this service relies on.
// Safe to run on every boot.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`create table if not exists users (
			id uuid primary key,
			username text not null unique,
			email text not null unique,
			password_hash text not null,
			contact_number text,
			created_at timestamptz not null default now(),
			updated_at timestamptz not null default now()
		)`,
		`create table if not exists products (
			id uuid primary key,
			title text not null,
			description text not null,
			price numeric(12,2) not null check (price >= 0),
			category text not null,
			images text[] not null default '{}',
			seller_id uuid not null references users(id),
			contact_info text not null,
			whatsapp_number text not null default '',
			is_sold boolean not null default false,
			created_at timestamptz not null default now(),
			updated_at timestamptz not null default now()
		)`,
		// Text search over title + description
		`create index if not exists products_search_idx on products
			using gin (to_tsvector('english', title || ' ' || description))`,
		`create index if not exists products_category_idx on products (category)`,
		`create index if not exists products_price_idx on products (price)`,
		`create index if not exists products_seller_idx on products (seller_id)`,
		`create index if not exists products_is_sold_idx on products (is_sold)`,
		`create index if not exists products_created_at_idx on products (created_at desc)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
