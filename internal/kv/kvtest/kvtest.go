// Package kvtest holds behavior tests shared by every kv.Store backend.
package kvtest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/equipreg/internal/kv"
)

// RunStoreTests runs the common store behavior against stores built by newStore.
func RunStoreTests(t *testing.T, newStore func(t *testing.T) kv.Store) {
	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		err := s.View(context.Background(), func(r kv.Reader) error {
			v, ok, err := r.Get(context.Background(), kv.NewKey("asset", "1"))
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, v)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("SetThenGet", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		key := kv.NewKey("asset", "1")

		err := s.Update(ctx, func(tx kv.Tx) error {
			return tx.Set(ctx, key, []byte(`{"name":"pump"}`))
		})
		require.NoError(t, err)

		err = s.View(ctx, func(r kv.Reader) error {
			v, ok, err := r.Get(ctx, key)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.JSONEq(t, `{"name":"pump"}`, string(v))
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("Overwrite", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		key := kv.NewKey("cert", "tech", "pump")

		require.NoError(t, s.Update(ctx, func(tx kv.Tx) error {
			return tx.Set(ctx, key, []byte(`1`))
		}))
		require.NoError(t, s.Update(ctx, func(tx kv.Tx) error {
			return tx.Set(ctx, key, []byte(`2`))
		}))

		require.NoError(t, s.View(ctx, func(r kv.Reader) error {
			v, ok, err := r.Get(ctx, key)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `2`, string(v))
			return nil
		}))
	})

	t.Run("ReadYourWritesInTx", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		key := kv.NewKey("asset-meta", "last-id")

		require.NoError(t, s.Update(ctx, func(tx kv.Tx) error {
			if err := tx.Set(ctx, key, []byte(`7`)); err != nil {
				return err
			}
			v, ok, err := tx.Get(ctx, key)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `7`, string(v))
			return nil
		}))
	})

	t.Run("FailedUpdateDiscardsWrites", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		key := kv.NewKey("asset", "1")
		boom := errors.New("boom")

		err := s.Update(ctx, func(tx kv.Tx) error {
			require.NoError(t, tx.Set(ctx, key, []byte(`{}`)))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		require.NoError(t, s.View(ctx, func(r kv.Reader) error {
			_, ok, err := r.Get(ctx, key)
			require.NoError(t, err)
			assert.False(t, ok)
			return nil
		}))
	})

	t.Run("ScanBucket", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Update(ctx, func(tx kv.Tx) error {
			for _, k := range []kv.Key{
				kv.NewKey("asset", "2"),
				kv.NewKey("asset", "1"),
				kv.NewKey("cert", "tech", "pump"),
			} {
				if err := tx.Set(ctx, k, []byte(`true`)); err != nil {
					return err
				}
			}
			return nil
		}))

		var assetKeys []string
		require.NoError(t, s.View(ctx, func(r kv.Reader) error {
			return r.Scan(ctx, "asset", func(key string, value []byte) error {
				assetKeys = append(assetKeys, key)
				return nil
			})
		}))
		assert.Equal(t, []string{"asset/1:1", "asset/1:2"}, assetKeys)

		var all int
		require.NoError(t, s.View(ctx, func(r kv.Reader) error {
			return r.Scan(ctx, "", func(key string, value []byte) error {
				all++
				return nil
			})
		}))
		assert.Equal(t, 3, all)
	})

	t.Run("ScanStopsOnError", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		stop := errors.New("stop")

		require.NoError(t, s.Update(ctx, func(tx kv.Tx) error {
			if err := tx.Set(ctx, kv.NewKey("asset", "1"), []byte(`1`)); err != nil {
				return err
			}
			return tx.Set(ctx, kv.NewKey("asset", "2"), []byte(`2`))
		}))

		calls := 0
		err := s.View(ctx, func(r kv.Reader) error {
			return r.Scan(ctx, "asset", func(key string, value []byte) error {
				calls++
				return stop
			})
		})
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 1, calls)
	})

	t.Run("JSONHelpers", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		key := kv.NewKey("issuer", "ST1")

		type entry struct {
			IsAuthorized bool `json:"is_authorized"`
		}

		require.NoError(t, s.Update(ctx, func(tx kv.Tx) error {
			return kv.SetJSON(ctx, tx, key, entry{IsAuthorized: true})
		}))

		var got entry
		require.NoError(t, s.View(ctx, func(r kv.Reader) error {
			ok, err := kv.GetJSON(ctx, r, key, &got)
			require.NoError(t, err)
			assert.True(t, ok)
			return nil
		}))
		assert.True(t, got.IsAuthorized)
	})
}
