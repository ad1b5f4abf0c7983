package handler

import (
	"context"

	"github.com/edvin/equipreg/internal/model"
	"github.com/edvin/equipreg/internal/registry"
)

// AssetService is the asset half of the host runtime.
type AssetService interface {
	RegisterAsset(ctx context.Context, caller registry.CallerContext, p registry.RegisterAssetParams) (model.AssetID, error)
	GetAsset(ctx context.Context, id model.AssetID) (model.Asset, bool, error)
	LastAssetID(ctx context.Context) (model.AssetID, error)
	TransferAsset(ctx context.Context, caller registry.CallerContext, id model.AssetID, newOwner model.Identity) error
}

// IssuerService manages the certification issuer allow-list.
type IssuerService interface {
	ContractOwner(ctx context.Context) (model.Identity, bool, error)
	AddAuthorizedIssuer(ctx context.Context, caller registry.CallerContext, issuer model.Identity) error
	IsAuthorizedIssuer(ctx context.Context, id model.Identity) (bool, error)
}

// CertificationService issues, reads and revokes certifications.
type CertificationService interface {
	IssueCertification(ctx context.Context, caller registry.CallerContext, p registry.IssueCertificationParams) error
	GetCertification(ctx context.Context, key model.CertificationKey) (model.Certification, bool, error)
	CertificationStatus(ctx context.Context, key model.CertificationKey, now int64) (string, error)
	RevokeCertification(ctx context.Context, caller registry.CallerContext, key model.CertificationKey) error
}
