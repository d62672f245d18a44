package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrInvalidTransition is returned when a conditional status write finds
	// the row no longer in the expected state.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Store groups the repositories that share one database session.
type Store interface {
	// Session returns a store bound to a fresh session carrying ctx. Background
	// units call it so they never reuse a request-scoped connection.
	Session(ctx context.Context) Store
	Transaction(fn func(tx Store) error) error
	Documents() DocumentRepository
	Screenings() ScreeningRepository
	Registry() RegistryRepository
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Session(ctx context.Context) Store {
	return &gormStore{db: s.db.Session(&gorm.Session{NewDB: true}).WithContext(ctx)}
}

func (s *gormStore) Transaction(fn func(tx Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) Documents() DocumentRepository {
	return NewDocumentRepository(s.db)
}

func (s *gormStore) Screenings() ScreeningRepository {
	return NewScreeningRepository(s.db)
}

func (s *gormStore) Registry() RegistryRepository {
	return NewRegistryRepository(s.db)
}
