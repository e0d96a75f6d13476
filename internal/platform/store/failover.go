package store

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Failover tries the primary store and, when the call fails with
// ErrUnavailable, retries the same operation once against the fallback.
// The decision is per operation; there is no sticky offline mode.
type Failover struct {
	primary  Store
	fallback Store
	log      *zap.SugaredLogger
}

func NewFailover(primary, fallback Store, log *zap.SugaredLogger) *Failover {
	return &Failover{primary: primary, fallback: fallback, log: log}
}

func (f *Failover) degraded(op string, err error) {
	f.log.Warnw("remote store unavailable, using local snapshot", "op", op, "err", err)
}

func (f *Failover) Get(ctx context.Context, collection, id string) (Doc, error) {
	d, err := f.primary.Get(ctx, collection, id)
	if errors.Is(err, ErrUnavailable) {
		f.degraded("get", err)
		return f.fallback.Get(ctx, collection, id)
	}
	return d, err
}

func (f *Failover) Set(ctx context.Context, collection, id string, doc Doc, merge bool) error {
	err := f.primary.Set(ctx, collection, id, doc, merge)
	if errors.Is(err, ErrUnavailable) {
		f.degraded("set", err)
		return f.fallback.Set(ctx, collection, id, doc, merge)
	}
	return err
}

func (f *Failover) Add(ctx context.Context, collection string, doc Doc) (string, error) {
	id, err := f.primary.Add(ctx, collection, doc)
	if errors.Is(err, ErrUnavailable) {
		f.degraded("add", err)
		return f.fallback.Add(ctx, collection, doc)
	}
	return id, err
}

func (f *Failover) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	err := f.primary.Update(ctx, collection, id, fields)
	if errors.Is(err, ErrUnavailable) {
		f.degraded("update", err)
		return f.fallback.Update(ctx, collection, id, fields)
	}
	return err
}

func (f *Failover) Delete(ctx context.Context, collection, id string) error {
	err := f.primary.Delete(ctx, collection, id)
	if errors.Is(err, ErrUnavailable) {
		f.degraded("delete", err)
		return f.fallback.Delete(ctx, collection, id)
	}
	return err
}

func (f *Failover) Query(ctx context.Context, collection string, filters []Filter) ([]Doc, error) {
	docs, err := f.primary.Query(ctx, collection, filters)
	if errors.Is(err, ErrUnavailable) {
		f.degraded("query", err)
		return f.fallback.Query(ctx, collection, filters)
	}
	return docs, err
}

var _ Store = (*Failover)(nil)
