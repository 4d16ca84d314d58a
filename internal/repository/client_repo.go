package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/avelin/pairwise/internal/db"
	svcErr "github.com/avelin/pairwise/internal/errors"
)

// Sort directions accepted by ClientQuery.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// sortColumns whitelists the fields a caller may sort on. Anything
// else falls back to store-default order rather than erroring.
var sortColumns = map[string]string{
	"created_at": "created_at",
	"name":       "name",
	"surname":    "surname",
}

// ClientQuery carries the optional filters and sort for Query.
// Substring filters match case-insensitively; Gender is exact.
type ClientQuery struct {
	NameSubstr    string
	SurnameSubstr string
	Gender        string
	SortField     string
	SortDir       string
}

// ClientRepository provides data access methods for the Client model.
type ClientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new repository bound to the given DB connection.
func NewClientRepository(database *gorm.DB) *ClientRepository {
	return &ClientRepository{db: database}
}

// FindByEmail returns the active client with the given email, or
// (nil, nil) when no such client exists. The email match is exact.
func (r *ClientRepository) FindByEmail(ctx context.Context, email string) (*db.Client, error) {
	var client db.Client
	err := r.db.WithContext(ctx).
		Where("email = ? AND active = ?", email, true).
		First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// FindByID returns the client with the given id, or (nil, nil) when
// there is none.
func (r *ClientRepository) FindByID(ctx context.Context, id uint64) (*db.Client, error) {
	var client db.Client
	err := r.db.WithContext(ctx).First(&client, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// Insert persists a new client. The caller fills every field except ID
// and CreatedAt, which the store assigns. The unique email index is
// the backstop against concurrent registrations; a violation surfaces
// as ErrEmailTaken.
func (r *ClientRepository) Insert(ctx context.Context, client *db.Client) error {
	err := r.db.WithContext(ctx).Create(client).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%q: %w", client.Email, svcErr.ErrEmailTaken)
	}
	return err
}

// Query returns active clients matching q.
//
// Behavior:
//   - NameSubstr / SurnameSubstr filter case-insensitively.
//   - Gender filters exactly when set.
//   - SortField outside the whitelist leaves store-default order.
//
// Example:
//
//	repo.Query(ctx, ClientQuery{NameSubstr: "anna", SortField: "name"})
func (r *ClientRepository) Query(ctx context.Context, q ClientQuery) ([]db.Client, error) {
	query := r.db.WithContext(ctx).Where("active = ?", true)

	if q.NameSubstr != "" {
		query = query.Where("LOWER(name) LIKE ?",
			"%"+strings.ToLower(q.NameSubstr)+"%")
	}
	if q.SurnameSubstr != "" {
		query = query.Where("LOWER(surname) LIKE ?",
			"%"+strings.ToLower(q.SurnameSubstr)+"%")
	}
	if q.Gender != "" {
		query = query.Where("gender = ?", q.Gender)
	}

	if col, ok := sortColumns[q.SortField]; ok {
		dir := "ASC"
		if strings.EqualFold(q.SortDir, SortDesc) {
			dir = "DESC"
		}
		query = query.Order(col + " " + dir)
	}

	var clients []db.Client
	if err := query.Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}
