package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/edvin/equipreg/internal/kv"
	"github.com/edvin/equipreg/internal/model"
)

const (
	certificationRegistryName = "certification"

	certificationBucket     = "certification"
	certificationMetaBucket = "certification-meta"
	issuerBucket            = "issuer"
)

var contractOwnerKey = kv.NewKey(certificationMetaBucket, "contract-owner")

func certificationKey(k model.CertificationKey) kv.Key {
	return kv.NewKey(certificationBucket, string(k.Technician), k.EquipmentType)
}

func issuerKey(id model.Identity) kv.Key {
	return kv.NewKey(issuerBucket, string(id))
}

// CertificationRegistry tracks technician certifications per equipment type.
// Issuing and revoking is limited to an allow-list of issuers that only the
// contract owner can extend.
type CertificationRegistry struct {
	store  kv.Store
	logger zerolog.Logger
}

func NewCertificationRegistry(store kv.Store, logger zerolog.Logger) *CertificationRegistry {
	return &CertificationRegistry{
		store:  store,
		logger: logger.With().Str("registry", certificationRegistryName).Logger(),
	}
}

type IssueCertificationParams struct {
	Technician         model.Identity
	EquipmentType      string
	CertificationDate  int64
	ExpirationDate     int64
	CertificationLevel int64
}

func (p IssueCertificationParams) Key() model.CertificationKey {
	return model.CertificationKey{Technician: p.Technician, EquipmentType: p.EquipmentType}
}

// Initialize records owner as the contract owner and its first authorized
// issuer. Running it again with the same owner changes nothing.
func (r *CertificationRegistry) Initialize(ctx context.Context, owner model.Identity) error {
	initialized := false
	err := r.store.Update(ctx, func(tx kv.Tx) error {
		var current model.Identity
		found, err := kv.GetJSON(ctx, tx, contractOwnerKey, &current)
		if err != nil {
			return err
		}
		if found {
			if current == owner {
				return nil
			}
			return &Error{Op: "initialize", Kind: ErrAlreadyInitialized}
		}

		if err := kv.SetJSON(ctx, tx, contractOwnerKey, owner); err != nil {
			return err
		}
		initialized = true
		return kv.SetJSON(ctx, tx, issuerKey(owner), model.IssuerAuthorization{IsAuthorized: true})
	})
	observe(certificationRegistryName, "initialize", err)
	if err != nil {
		var rejected *Error
		if errors.As(err, &rejected) {
			return err
		}
		return fmt.Errorf("initialize certification registry: %w", err)
	}

	if initialized {
		r.logger.Info().Str("owner", string(owner)).Msg("certification registry initialized")
	}
	return nil
}

// ContractOwner returns the identity fixed by Initialize.
func (r *CertificationRegistry) ContractOwner(ctx context.Context) (owner model.Identity, ok bool, err error) {
	err = r.store.View(ctx, func(rd kv.Reader) error {
		var err error
		ok, err = kv.GetJSON(ctx, rd, contractOwnerKey, &owner)
		return err
	})
	if err != nil {
		return "", false, fmt.Errorf("get contract owner: %w", err)
	}
	return owner, ok, nil
}

// AddAuthorizedIssuer puts issuer on the allow-list. Only the contract owner
// may call it; adding an existing issuer succeeds without change.
func (r *CertificationRegistry) AddAuthorizedIssuer(ctx context.Context, caller CallerContext, issuer model.Identity) error {
	sender := caller.CurrentCaller()
	const op = "add authorized issuer"

	err := r.store.Update(ctx, func(tx kv.Tx) error {
		var owner model.Identity
		found, err := kv.GetJSON(ctx, tx, contractOwnerKey, &owner)
		if err != nil {
			return err
		}
		if !found || owner != sender {
			return &Error{Op: op, Kind: ErrNotAuthorized, Code: CodeCertificationNotAuthorized}
		}
		return kv.SetJSON(ctx, tx, issuerKey(issuer), model.IssuerAuthorization{IsAuthorized: true})
	})
	observe(certificationRegistryName, "add_issuer", err)
	if err := r.finish(op, err, func(e *zerolog.Event) *zerolog.Event {
		return e.Str("caller", string(sender)).Str("issuer", string(issuer))
	}); err != nil {
		return err
	}

	r.logger.Info().Str("issuer", string(issuer)).Msg("authorized issuer added")
	return nil
}

// IsAuthorizedIssuer reports whether id may issue and revoke certifications.
func (r *CertificationRegistry) IsAuthorizedIssuer(ctx context.Context, id model.Identity) (bool, error) {
	var authorized bool
	err := r.store.View(ctx, func(rd kv.Reader) error {
		var err error
		authorized, err = isAuthorized(ctx, rd, id)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("check issuer %s: %w", id, err)
	}
	return authorized, nil
}

// Issue writes a certification for p.Technician and p.EquipmentType, replacing
// any earlier one for the same pair. The new record is active and names the
// caller as issuer.
func (r *CertificationRegistry) Issue(ctx context.Context, caller CallerContext, p IssueCertificationParams) error {
	sender := caller.CurrentCaller()
	const op = "issue certification"

	err := r.store.Update(ctx, func(tx kv.Tx) error {
		authorized, err := isAuthorized(ctx, tx, sender)
		if err != nil {
			return err
		}
		if !authorized {
			return &Error{Op: op, Kind: ErrNotAuthorized, Code: CodeCertificationNotAuthorized}
		}
		if p.CertificationDate >= p.ExpirationDate {
			return &Error{Op: op, Kind: ErrInvalidDateRange, Code: CodeCertificationInvalidDateRange}
		}

		cert := model.Certification{
			Technician:         p.Technician,
			EquipmentType:      p.EquipmentType,
			CertificationDate:  p.CertificationDate,
			ExpirationDate:     p.ExpirationDate,
			CertificationLevel: p.CertificationLevel,
			Issuer:             sender,
			IsActive:           true,
		}
		return kv.SetJSON(ctx, tx, certificationKey(p.Key()), cert)
	})
	observe(certificationRegistryName, "issue", err)
	if err := r.finish(op, err, func(e *zerolog.Event) *zerolog.Event {
		return e.Str("caller", string(sender)).
			Str("technician", string(p.Technician)).
			Str("equipment_type", p.EquipmentType)
	}); err != nil {
		return err
	}

	r.logger.Info().
		Str("issuer", string(sender)).
		Str("technician", string(p.Technician)).
		Str("equipment_type", p.EquipmentType).
		Int64("level", p.CertificationLevel).
		Int64("expires", p.ExpirationDate).
		Msg("certification issued")
	return nil
}

// Get returns the stored certification for key, active or not.
func (r *CertificationRegistry) Get(ctx context.Context, key model.CertificationKey) (cert model.Certification, ok bool, err error) {
	err = r.store.View(ctx, func(rd kv.Reader) error {
		var err error
		ok, err = kv.GetJSON(ctx, rd, certificationKey(key), &cert)
		return err
	})
	if err != nil {
		return model.Certification{}, false, fmt.Errorf("get certification: %w", err)
	}
	if !ok {
		return model.Certification{}, false, nil
	}
	return cert, true, nil
}

// Status explains whether the technician is certified at time now. A record
// that is still active on its expiration date counts as certified.
func (r *CertificationRegistry) Status(ctx context.Context, key model.CertificationKey, now int64) (string, error) {
	cert, ok, err := r.Get(ctx, key)
	if err != nil {
		return "", err
	}
	switch {
	case !ok:
		return model.CertificationAbsent, nil
	case !cert.IsActive:
		return model.CertificationRevoked, nil
	case cert.ExpirationDate < now:
		return model.CertificationExpired, nil
	default:
		return model.CertificationCertified, nil
	}
}

// IsCertified reports whether an active, unexpired certification exists for
// key at time now.
func (r *CertificationRegistry) IsCertified(ctx context.Context, key model.CertificationKey, now int64) (bool, error) {
	status, err := r.Status(ctx, key, now)
	if err != nil {
		return false, err
	}
	return status == model.CertificationCertified, nil
}

// Revoke deactivates the certification for key. Any authorized issuer may
// revoke, not only the one that issued it. The record is kept; re-issuing is
// the only way to make it active again.
func (r *CertificationRegistry) Revoke(ctx context.Context, caller CallerContext, key model.CertificationKey) error {
	sender := caller.CurrentCaller()
	const op = "revoke certification"

	err := r.store.Update(ctx, func(tx kv.Tx) error {
		authorized, err := isAuthorized(ctx, tx, sender)
		if err != nil {
			return err
		}
		if !authorized {
			return &Error{Op: op, Kind: ErrNotAuthorized, Code: CodeCertificationNotAuthorized}
		}

		var cert model.Certification
		found, err := kv.GetJSON(ctx, tx, certificationKey(key), &cert)
		if err != nil {
			return err
		}
		if !found {
			return &Error{Op: op, Kind: ErrNotFound, Code: CodeCertificationNotFound}
		}

		cert.IsActive = false
		return kv.SetJSON(ctx, tx, certificationKey(key), cert)
	})
	observe(certificationRegistryName, "revoke", err)
	if err := r.finish(op, err, func(e *zerolog.Event) *zerolog.Event {
		return e.Str("caller", string(sender)).
			Str("technician", string(key.Technician)).
			Str("equipment_type", key.EquipmentType)
	}); err != nil {
		return err
	}

	r.logger.Info().
		Str("revoked_by", string(sender)).
		Str("technician", string(key.Technician)).
		Str("equipment_type", key.EquipmentType).
		Msg("certification revoked")
	return nil
}

// finish logs rejected calls on warn and wraps store failures. It returns nil
// when err is nil.
func (r *CertificationRegistry) finish(op string, err error, fields func(*zerolog.Event) *zerolog.Event) error {
	if err == nil {
		return nil
	}
	var rejected *Error
	if errors.As(err, &rejected) {
		fields(r.logger.Warn()).Str("reason", KindName(err)).Msg(op + " rejected")
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isAuthorized(ctx context.Context, rd kv.Reader, id model.Identity) (bool, error) {
	var auth model.IssuerAuthorization
	found, err := kv.GetJSON(ctx, rd, issuerKey(id), &auth)
	if err != nil {
		return false, err
	}
	return found && auth.IsAuthorized, nil
}
