package registry

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/edvin/equipreg/internal/kv"
	"github.com/edvin/equipreg/internal/model"
)

const (
	ownerA = model.Identity("ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM")
	ownerB = model.Identity("ST2PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGN")
	ownerC = model.Identity("ST3PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGO")

	feb2021 int64 = 1612137600
	feb2025 int64 = 1738368000
)

var errStoreDown = errors.New("store unavailable")

// failingStore rejects every transaction.
type failingStore struct{}

func (failingStore) View(ctx context.Context, fn func(kv.Reader) error) error { return errStoreDown }
func (failingStore) Update(ctx context.Context, fn func(kv.Tx) error) error   { return errStoreDown }
func (failingStore) Close() error                                             { return nil }

// bufferLogger returns a logger writing JSON lines into the returned buffer.
func bufferLogger(t *testing.T) (zerolog.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return zerolog.New(&buf), &buf
}

func pumpParams() RegisterAssetParams {
	return RegisterAssetParams{
		Name:               "Industrial Pump",
		Model:              "XP-5000",
		SerialNumber:       "SN12345",
		Manufacturer:       "PumpCo",
		InstallationDate:   feb2021,
		WarrantyExpiration: feb2025,
	}
}
