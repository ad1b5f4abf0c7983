package registry

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/edvin/equipreg/internal/kv"
	"github.com/edvin/equipreg/internal/model"
)

const (
	assetRegistryName = "asset"

	assetBucket     = "asset"
	assetMetaBucket = "asset-meta"
)

var lastAssetIDKey = kv.NewKey(assetMetaBucket, "last-asset-id")

func assetKey(id model.AssetID) kv.Key {
	return kv.NewKey(assetBucket, strconv.FormatUint(uint64(id), 10))
}

// AssetRegistry records physical assets and who owns them. Asset ids are
// allocated from a counter that only ever grows; assets are never removed.
type AssetRegistry struct {
	store  kv.Store
	logger zerolog.Logger
}

func NewAssetRegistry(store kv.Store, logger zerolog.Logger) *AssetRegistry {
	return &AssetRegistry{
		store:  store,
		logger: logger.With().Str("registry", assetRegistryName).Logger(),
	}
}

type RegisterAssetParams struct {
	Name               string
	Model              string
	SerialNumber       string
	Manufacturer       string
	InstallationDate   int64
	WarrantyExpiration int64
}

// Register stores a new asset owned by the caller and returns its id. Any
// caller may register assets.
func (r *AssetRegistry) Register(ctx context.Context, caller CallerContext, p RegisterAssetParams) (model.AssetID, error) {
	owner := caller.CurrentCaller()

	var id model.AssetID
	err := r.store.Update(ctx, func(tx kv.Tx) error {
		var last model.AssetID
		if _, err := kv.GetJSON(ctx, tx, lastAssetIDKey, &last); err != nil {
			return err
		}
		id = last + 1

		asset := model.Asset{
			ID:                 id,
			Name:               p.Name,
			Model:              p.Model,
			SerialNumber:       p.SerialNumber,
			Manufacturer:       p.Manufacturer,
			InstallationDate:   p.InstallationDate,
			WarrantyExpiration: p.WarrantyExpiration,
			Owner:              owner,
		}
		if err := kv.SetJSON(ctx, tx, assetKey(id), asset); err != nil {
			return err
		}
		return kv.SetJSON(ctx, tx, lastAssetIDKey, id)
	})
	observe(assetRegistryName, "register", err)
	if err != nil {
		return 0, fmt.Errorf("register asset: %w", err)
	}

	r.logger.Info().
		Uint64("asset_id", uint64(id)).
		Str("owner", string(owner)).
		Str("serial_number", p.SerialNumber).
		Msg("asset registered")
	return id, nil
}

// Get returns the asset with the given id. A missing asset is reported with
// ok=false, not an error; err is only set when the store fails.
func (r *AssetRegistry) Get(ctx context.Context, id model.AssetID) (asset model.Asset, ok bool, err error) {
	err = r.store.View(ctx, func(rd kv.Reader) error {
		var err error
		ok, err = kv.GetJSON(ctx, rd, assetKey(id), &asset)
		return err
	})
	if err != nil {
		return model.Asset{}, false, fmt.Errorf("get asset %d: %w", id, err)
	}
	if !ok {
		return model.Asset{}, false, nil
	}
	return asset, true, nil
}

// LastAssetID returns the most recently allocated id, 0 before the first
// registration.
func (r *AssetRegistry) LastAssetID(ctx context.Context) (model.AssetID, error) {
	var last model.AssetID
	err := r.store.View(ctx, func(rd kv.Reader) error {
		_, err := kv.GetJSON(ctx, rd, lastAssetIDKey, &last)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("get last asset id: %w", err)
	}
	return last, nil
}

// Transfer hands the asset to newOwner. Only the current owner may transfer.
func (r *AssetRegistry) Transfer(ctx context.Context, caller CallerContext, id model.AssetID, newOwner model.Identity) error {
	sender := caller.CurrentCaller()
	op := fmt.Sprintf("transfer asset %d", id)

	err := r.store.Update(ctx, func(tx kv.Tx) error {
		var asset model.Asset
		found, err := kv.GetJSON(ctx, tx, assetKey(id), &asset)
		if err != nil {
			return err
		}
		if !found {
			return &Error{Op: op, Kind: ErrNotFound, Code: CodeAssetNotFound}
		}
		if asset.Owner != sender {
			return &Error{Op: op, Kind: ErrNotOwner, Code: CodeAssetNotOwner}
		}

		asset.Owner = newOwner
		return kv.SetJSON(ctx, tx, assetKey(id), asset)
	})
	observe(assetRegistryName, "transfer", err)

	var rejected *Error
	switch {
	case errors.As(err, &rejected):
		r.logger.Warn().
			Uint64("asset_id", uint64(id)).
			Str("caller", string(sender)).
			Str("reason", KindName(err)).
			Msg("asset transfer rejected")
		return err
	case err != nil:
		return fmt.Errorf("%s: %w", op, err)
	}

	r.logger.Info().
		Uint64("asset_id", uint64(id)).
		Str("from", string(sender)).
		Str("to", string(newOwner)).
		Msg("asset transferred")
	return nil
}
