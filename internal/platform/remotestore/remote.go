// Package remotestore implements the document store on postgres: one JSONB
// row per document, equality queries through the ->> operator.
package remotestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/bigdiet/backend/internal/platform/store"
	cfgpkg "github.com/bigdiet/backend/pkg/config"
	gormzap "github.com/bigdiet/backend/pkg/gormlog"
	"github.com/bigdiet/backend/pkg/tool"
)

// Document is the storage row for every collection.
type Document struct {
	Collection string            `gorm:"column:collection;type:varchar(64);primaryKey"`
	ID         string            `gorm:"column:id;type:varchar(128);primaryKey"`
	Data       datatypes.JSONMap `gorm:"column:data;type:jsonb;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Document) TableName() string {
	return "document"
}

type Remote struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(cfg *cfgpkg.Config, log *zap.SugaredLogger) (*Remote, error) {
	if cfg.Database.DSN == "" {
		log.Error("database DSN is empty")
		return nil, gorm.ErrInvalidDB
	}
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{Logger: gormzap.New(log)})
	if err != nil {
		log.Errorf("failed to connect database: %v", err)
		return nil, err
	}
	if err := db.AutoMigrate(&Document{}); err != nil {
		log.Errorf("automigrate failed: %v", err)
		return nil, err
	}
	log.Infow("connected to postgres via DSN")
	return &Remote{db: db, log: log}, nil
}

// Close releases the underlying connection pool.
func (r *Remote) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		r.log.Warnw("gorm: get sql.DB failed", "err", err)
		return nil
	}
	r.log.Infow("closing postgres connection pool")
	return sqlDB.Close()
}

// unavailable wraps backend failures so callers can failover with errors.Is.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, store.ErrUnavailable, err)
}

func (r *Remote) Get(ctx context.Context, collection, id string) (store.Doc, error) {
	var row Document
	err := r.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("get", err)
	}
	return docWithID(row), nil
}

func (r *Remote) Set(ctx context.Context, collection, id string, doc store.Doc, merge bool) error {
	data := withID(doc, id)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row Document
		err := tx.Where("collection = ? AND id = ?", collection, id).First(&row).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&Document{Collection: collection, ID: id, Data: data}).Error
		case err != nil:
			return err
		}
		if merge {
			for k, v := range data {
				row.Data[k] = v
			}
		} else {
			row.Data = data
		}
		return tx.Save(&row).Error
	})
	if err != nil {
		return unavailable("set", err)
	}
	return nil
}

func (r *Remote) Add(ctx context.Context, collection string, doc store.Doc) (string, error) {
	id := tool.GenerateUUIDV7()
	row := Document{Collection: collection, ID: id, Data: withID(doc, id)}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", unavailable("add", err)
	}
	return id, nil
}

func (r *Remote) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row Document
		if err := tx.Where("collection = ? AND id = ?", collection, id).First(&row).Error; err != nil {
			return err
		}
		for k, v := range fields {
			row.Data[k] = v
		}
		return tx.Save(&row).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	if err != nil {
		return unavailable("update", err)
	}
	return nil
}

func (r *Remote) Delete(ctx context.Context, collection, id string) error {
	res := r.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&Document{})
	if res.Error != nil {
		return unavailable("delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Remote) Query(ctx context.Context, collection string, filters []store.Filter) ([]store.Doc, error) {
	q := r.db.WithContext(ctx).Where("collection = ?", collection)
	for _, f := range filters {
		q = q.Where("data->>? = ?", f.Field, fmt.Sprint(f.Value))
	}
	var rows []Document
	if err := q.Find(&rows).Error; err != nil {
		return nil, unavailable("query", err)
	}
	out := make([]store.Doc, 0, len(rows))
	for _, row := range rows {
		out = append(out, docWithID(row))
	}
	return out, nil
}

func withID(doc store.Doc, id string) datatypes.JSONMap {
	data := make(datatypes.JSONMap, len(doc)+1)
	for k, v := range doc {
		data[k] = v
	}
	data["id"] = id
	return data
}

func docWithID(row Document) store.Doc {
	d := make(store.Doc, len(row.Data)+1)
	for k, v := range row.Data {
		d[k] = v
	}
	d["id"] = row.ID
	return d
}

var _ store.Store = (*Remote)(nil)
