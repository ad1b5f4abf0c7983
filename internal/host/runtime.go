// Package host runs the asset and certification registries the way a
// single-writer ledger does: one mutating call at a time, each in its own
// store transaction, with the caller identity supplied per call.
package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/edvin/equipreg/internal/kv"
	"github.com/edvin/equipreg/internal/model"
	"github.com/edvin/equipreg/internal/registry"
)

// Runtime serializes every mutating call against its registries. Reads may
// run concurrently with each other but never with a mutation.
type Runtime struct {
	mu             sync.RWMutex
	store          kv.Store
	logger         zerolog.Logger
	assets         *registry.AssetRegistry
	certifications *registry.CertificationRegistry
}

func New(store kv.Store, logger zerolog.Logger) *Runtime {
	return &Runtime{
		store:          store,
		logger:         logger,
		assets:         registry.NewAssetRegistry(store, logger),
		certifications: registry.NewCertificationRegistry(store, logger),
	}
}

// Deploy is the deployment hook: it initializes the certification registry
// with deployer as contract owner. It must run before any other call.
func (rt *Runtime) Deploy(ctx context.Context, deployer model.Identity) error {
	if deployer == "" {
		return fmt.Errorf("deployer identity is required")
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if err := rt.certifications.Initialize(ctx, deployer); err != nil {
		return fmt.Errorf("deploy: %w", err)
	}
	rt.logger.Info().Str("deployer", string(deployer)).Msg("registries deployed")
	return nil
}

// Ready checks that the store answers reads.
func (rt *Runtime) Ready(ctx context.Context) error {
	return rt.store.View(ctx, func(kv.Reader) error { return nil })
}

// Store returns the store the registries persist into.
func (rt *Runtime) Store() kv.Store {
	return rt.store
}

// ---------- Assets ----------

func (rt *Runtime) RegisterAsset(ctx context.Context, caller registry.CallerContext, p registry.RegisterAssetParams) (model.AssetID, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.assets.Register(ctx, caller, p)
}

func (rt *Runtime) GetAsset(ctx context.Context, id model.AssetID) (model.Asset, bool, error) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.assets.Get(ctx, id)
}

func (rt *Runtime) LastAssetID(ctx context.Context) (model.AssetID, error) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.assets.LastAssetID(ctx)
}

func (rt *Runtime) TransferAsset(ctx context.Context, caller registry.CallerContext, id model.AssetID, newOwner model.Identity) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.assets.Transfer(ctx, caller, id, newOwner)
}

// ---------- Certifications ----------

func (rt *Runtime) ContractOwner(ctx context.Context) (model.Identity, bool, error) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.certifications.ContractOwner(ctx)
}

func (rt *Runtime) AddAuthorizedIssuer(ctx context.Context, caller registry.CallerContext, issuer model.Identity) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.certifications.AddAuthorizedIssuer(ctx, caller, issuer)
}

func (rt *Runtime) IsAuthorizedIssuer(ctx context.Context, id model.Identity) (bool, error) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.certifications.IsAuthorizedIssuer(ctx, id)
}

func (rt *Runtime) IssueCertification(ctx context.Context, caller registry.CallerContext, p registry.IssueCertificationParams) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.certifications.Issue(ctx, caller, p)
}

func (rt *Runtime) GetCertification(ctx context.Context, key model.CertificationKey) (model.Certification, bool, error) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.certifications.Get(ctx, key)
}

func (rt *Runtime) CertificationStatus(ctx context.Context, key model.CertificationKey, now int64) (string, error) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.certifications.Status(ctx, key, now)
}

func (rt *Runtime) IsCertified(ctx context.Context, key model.CertificationKey, now int64) (bool, error) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.certifications.IsCertified(ctx, key, now)
}

func (rt *Runtime) RevokeCertification(ctx context.Context, caller registry.CallerContext, key model.CertificationKey) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.certifications.Revoke(ctx, caller, key)
}
