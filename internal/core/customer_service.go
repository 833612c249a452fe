package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CustomerService manages billing customers. Phone numbers are unique.
type CustomerService interface {
	CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error)
	GetCustomer(ctx context.Context, id int) (*Customer, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
	UpdateCustomer(ctx context.Context, id int, in CustomerInput) (*Customer, error)
	// DeleteCustomer removes the customer; their bills are kept with no customer.
	DeleteCustomer(ctx context.Context, id int) error
}

type customerService struct {
	pool *pgxpool.Pool
}

func NewCustomerService(pool *pgxpool.Pool) CustomerService {
	return &customerService{pool: pool}
}

func toPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func scanCustomer(row interface{ Scan(...any) error }) (*Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Address, &c.PhoneNumber, &c.Email)
	return &c, err
}

func (s *customerService) CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c, err := scanCustomer(s.pool.QueryRow(ctx, `
		INSERT INTO customers (name, address, phone_number, email)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, address, phone_number, email
	`, strings.TrimSpace(in.Name), toPtr(in.Address), strings.TrimSpace(in.PhoneNumber), toPtr(in.Email)))
	if err != nil {
		return nil, classifyWriteError(err, "create customer")
	}
	return c, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id int) (*Customer, error) {
	c, err := scanCustomer(s.pool.QueryRow(ctx, `
		SELECT id, name, address, phone_number, email FROM customers WHERE id = $1
	`, id))
	if err != nil {
		return nil, notFoundf(err, "customer %d", id)
	}
	return c, nil
}

func (s *customerService) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, address, phone_number, email FROM customers ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *customerService) UpdateCustomer(ctx context.Context, id int, in CustomerInput) (*Customer, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c, err := scanCustomer(s.pool.QueryRow(ctx, `
		UPDATE customers SET name = $1, address = $2, phone_number = $3, email = $4
		WHERE id = $5
		RETURNING id, name, address, phone_number, email
	`, strings.TrimSpace(in.Name), toPtr(in.Address), strings.TrimSpace(in.PhoneNumber), toPtr(in.Email), id))
	if err != nil {
		if isNoRows(err) {
			return nil, notFoundf(err, "customer %d", id)
		}
		return nil, classifyWriteError(err, "update customer")
	}
	return c, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id int) error {
	return deleteByID(ctx, s.pool, "customers", "customer", id)
}
