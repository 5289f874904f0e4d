package store

import (
	"context"
	"errors"
	"strings"
	"sync"

	"gorm.io/gorm"
)

// GormStore implements Store on top of gorm (postgres in production, sqlite in tests).
type GormStore struct {
	db      *gorm.DB
	writeMu *sync.Mutex
	inTx    bool
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, writeMu: &sync.Mutex{}}
}

// DB exposes the underlying handle for migrations and seeding.
func (s *GormStore) DB() *gorm.DB { return s.db }

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *GormStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, writeMu: s.writeMu, inTx: true})
	})
}

func (s *GormStore) Ping(ctx context.Context) error {
	return s.conn(ctx).Exec("SELECT 1").Error
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}

func paginate(q *gorm.DB, opts ListOptions) *gorm.DB {
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	return q
}

func like(query string) string {
	return "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
}
