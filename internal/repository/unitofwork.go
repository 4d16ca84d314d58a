package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repos bundles the transaction-bound repositories handed to a
// unit-of-work closure. Both repositories share the same transaction,
// so every read and write inside the closure sees one consistent view.
type Repos struct {
	Clients *ClientRepository
	Likes   *LikeRepository
}

// UnitOfWork scopes one logical service call to a single database
// transaction: begin, run the closure, commit on nil error, roll back
// on error or panic. gorm releases the transaction handle on every
// exit path, so no cross-call transaction is ever held open.
type UnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a unit-of-work factory bound to the given DB.
func NewUnitOfWork(database *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: database}
}

// Do runs fn inside one transaction. The error returned by fn decides
// commit (nil) or rollback (non-nil); fn's error is returned unchanged
// so business-rule sentinels survive the scope.
func (u *UnitOfWork) Do(ctx context.Context, fn func(r *Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repos{
			Clients: NewClientRepository(tx),
			Likes:   NewLikeRepository(tx),
		})
	})
}
