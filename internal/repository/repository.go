package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/config"
)

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}

// rowScanner 同时适配 *sql.Row 和 *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repository) queryContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
}
