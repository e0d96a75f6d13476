// Package storage wires the configured store composition into fx.
package storage

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/bigdiet/backend/internal/platform/localstore"
	"github.com/bigdiet/backend/internal/platform/remotestore"
	"github.com/bigdiet/backend/internal/platform/store"
	cfgpkg "github.com/bigdiet/backend/pkg/config"
)

// NewStore builds the store for the configured mode. The local snapshot is
// always opened in fallback mode so a remote outage degrades per operation
// instead of failing the call.
func NewStore(lc fx.Lifecycle, cfg *cfgpkg.Config, log *zap.SugaredLogger) (store.Store, error) {
	switch cfg.Storage.Mode {
	case cfgpkg.StorageModeLocal:
		return localstore.New(cfg.Storage.SnapshotPath, log)

	case cfgpkg.StorageModeRemote:
		remote, err := remotestore.New(cfg, log)
		if err != nil {
			return nil, err
		}
		registerClose(lc, remote)
		return remote, nil

	case cfgpkg.StorageModeRemoteFallback:
		remote, err := remotestore.New(cfg, log)
		if err != nil {
			return nil, err
		}
		registerClose(lc, remote)
		local, err := localstore.New(cfg.Storage.SnapshotPath, log)
		if err != nil {
			return nil, err
		}
		return store.NewFailover(remote, local, log), nil

	default:
		return nil, fmt.Errorf("unknown storage mode %q", cfg.Storage.Mode)
	}
}

func registerClose(lc fx.Lifecycle, remote *remotestore.Remote) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return remote.Close()
		},
	})
}

var Module = fx.Options(
	fx.Provide(NewStore),
)
