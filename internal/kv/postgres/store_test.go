package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/equipreg/internal/kv"
)

func newTestStore() (*Store, *mockDB, *mockTx) {
	db := &mockDB{}
	tx := &mockTx{}
	tx.On("Rollback", mock.Anything).Return(nil)
	return New(db), db, tx
}

func TestNew(t *testing.T) {
	db := &mockDB{}
	s := New(db)

	require.NotNil(t, s)
	assert.Equal(t, db, s.db)
	assert.NoError(t, s.Close())
}

// ---------- View ----------

func TestStore_View_GetFound(t *testing.T) {
	s, db, tx := newTestStore()
	ctx := context.Background()

	db.On("BeginTx", ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly}).Return(tx, nil)
	row := &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*[]byte)) = []byte(`{"name":"Industrial Pump"}`)
		return nil
	}}
	tx.On("QueryRow", ctx, mock.AnythingOfType("string"), []any{"asset/1:1"}).Return(row)

	err := s.View(ctx, func(r kv.Reader) error {
		v, ok, err := r.Get(ctx, kv.NewKey("asset", "1"))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.JSONEq(t, `{"name":"Industrial Pump"}`, string(v))
		return nil
	})
	require.NoError(t, err)
	db.AssertExpectations(t)
	tx.AssertExpectations(t)
}

func TestStore_View_GetMissing(t *testing.T) {
	s, db, tx := newTestStore()
	ctx := context.Background()

	db.On("BeginTx", ctx, mock.Anything).Return(tx, nil)
	row := &mockRow{scanFunc: func(dest ...any) error {
		return pgx.ErrNoRows
	}}
	tx.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	err := s.View(ctx, func(r kv.Reader) error {
		v, ok, err := r.Get(ctx, kv.NewKey("asset", "404"))
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, v)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_View_GetDBError(t *testing.T) {
	s, db, tx := newTestStore()
	ctx := context.Background()

	db.On("BeginTx", ctx, mock.Anything).Return(tx, nil)
	row := &mockRow{scanFunc: func(dest ...any) error {
		return errors.New("connection reset")
	}}
	tx.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	err := s.View(ctx, func(r kv.Reader) error {
		_, _, err := r.Get(ctx, kv.NewKey("asset", "1"))
		return err
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get entry asset/1:1")
}

func TestStore_View_BeginError(t *testing.T) {
	s, db, _ := newTestStore()
	ctx := context.Background()

	db.On("BeginTx", ctx, mock.Anything).Return(nil, errors.New("pool closed"))

	called := false
	err := s.View(ctx, func(r kv.Reader) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin read tx")
	assert.False(t, called)
}

func TestStore_View_Scan(t *testing.T) {
	s, db, tx := newTestStore()
	ctx := context.Background()

	db.On("BeginTx", ctx, mock.Anything).Return(tx, nil)
	rows := newMockRows(
		func(dest ...any) error {
			*(dest[0].(*string)) = "asset/1:1"
			*(dest[1].(*[]byte)) = []byte(`{"id":1}`)
			return nil
		},
		func(dest ...any) error {
			*(dest[0].(*string)) = "asset/1:2"
			*(dest[1].(*[]byte)) = []byte(`{"id":2}`)
			return nil
		},
	)
	tx.On("Query", ctx, mock.AnythingOfType("string"), []any{"asset/"}).Return(rows, nil)

	var keys []string
	err := s.View(ctx, func(r kv.Reader) error {
		return r.Scan(ctx, "asset", func(key string, value []byte) error {
			keys = append(keys, key)
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"asset/1:1", "asset/1:2"}, keys)
}

func TestStore_View_ScanQueryError(t *testing.T) {
	s, db, tx := newTestStore()
	ctx := context.Background()

	db.On("BeginTx", ctx, mock.Anything).Return(tx, nil)
	tx.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil, errors.New("syntax error"))

	err := s.View(ctx, func(r kv.Reader) error {
		return r.Scan(ctx, "", func(key string, value []byte) error { return nil })
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan entries")
}

// ---------- Update ----------

func TestStore_Update_Commits(t *testing.T) {
	s, db, tx := newTestStore()
	ctx := context.Background()

	db.On("BeginTx", ctx, pgx.TxOptions{}).Return(tx, nil)
	tx.On("Exec", ctx, mock.AnythingOfType("string"), []any{"asset-meta/", []byte(`1`)}).Return(pgconn.CommandTag{}, nil)
	tx.On("Commit", ctx).Return(nil)

	err := s.Update(ctx, func(w kv.Tx) error {
		return w.Set(ctx, kv.NewKey("asset-meta"), []byte(`1`))
	})
	require.NoError(t, err)
	db.AssertExpectations(t)
	tx.AssertExpectations(t)
}

func TestStore_Update_FnErrorSkipsCommit(t *testing.T) {
	s, db, tx := newTestStore()
	ctx := context.Background()
	boom := errors.New("not owner")

	db.On("BeginTx", ctx, mock.Anything).Return(tx, nil)

	err := s.Update(ctx, func(w kv.Tx) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	tx.AssertNotCalled(t, "Commit", mock.Anything)
	tx.AssertCalled(t, "Rollback", ctx)
}

func TestStore_Update_SetError(t *testing.T) {
	s, db, tx := newTestStore()
	ctx := context.Background()

	db.On("BeginTx", ctx, mock.Anything).Return(tx, nil)
	tx.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.CommandTag{}, errors.New("disk full"))

	err := s.Update(ctx, func(w kv.Tx) error {
		return w.Set(ctx, kv.NewKey("asset", "1"), []byte(`{}`))
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "set entry asset/1:1")
	tx.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestStore_Update_CommitError(t *testing.T) {
	s, db, tx := newTestStore()
	ctx := context.Background()

	db.On("BeginTx", ctx, mock.Anything).Return(tx, nil)
	tx.On("Commit", ctx).Return(errors.New("serialization failure"))

	err := s.Update(ctx, func(w kv.Tx) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit tx")
}
