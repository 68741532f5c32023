package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func sampleBond() Bond {
	return Bond{
		Name:         "KTB 3Y 2025-5",
		Account:      "ISA",
		BuyDate:      "2023-05-10",
		MaturityDate: "2026-05-10",
		Rate:         3.5,
		BuyAmount:    1_000_000,
		Quantity:     100,
	}
}

func TestSchemaCreated(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	rows, err := s.db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('bonds','interests')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["bonds"])
	assert.True(t, found["interests"])
}

func TestInsertAndQuery(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	id, err := s.InsertBond(sampleBond())
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	bonds, err := s.Bonds()
	require.NoError(t, err)
	require.Len(t, bonds, 1)

	b := bonds[0]
	assert.Equal(t, id, b.ID)
	assert.Equal(t, "KTB 3Y 2025-5", b.Name)
	assert.Equal(t, "ISA", b.Account)
	assert.Equal(t, "2023-05-10", b.BuyDate)
	assert.Equal(t, "2026-05-10", b.MaturityDate)
	assert.InDelta(t, 3.5, b.Rate, 1e-9)
	assert.Equal(t, int64(1_000_000), b.BuyAmount)
	assert.Equal(t, int64(100), b.Quantity)
	assert.Equal(t, StatusActive, b.Status)
	assert.Equal(t, int64(0), b.RedemptionAmount)
	assert.Empty(t, b.Interests)
}

func TestInsertionOrderStable(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	first := sampleBond()
	first.Name = "first"
	second := sampleBond()
	second.Name = "second"

	_, err := s.InsertBond(first)
	require.NoError(t, err)
	_, err = s.InsertBond(second)
	require.NoError(t, err)

	bonds, err := s.Bonds()
	require.NoError(t, err)
	require.Len(t, bonds, 2)
	assert.Equal(t, "first", bonds[0].Name)
	assert.Equal(t, "second", bonds[1].Name)
}

func TestUpdateBond(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	id, err := s.InsertBond(sampleBond())
	require.NoError(t, err)

	edited := sampleBond()
	edited.ID = id
	edited.Name = "KTB 3Y renamed"
	edited.Rate = 4.1
	edited.BuyAmount = 2_000_000
	require.NoError(t, s.UpdateBond(edited))

	got, err := s.Bond(id)
	require.NoError(t, err)
	assert.Equal(t, "KTB 3Y renamed", got.Name)
	assert.InDelta(t, 4.1, got.Rate, 1e-9)
	assert.Equal(t, int64(2_000_000), got.BuyAmount)
	assert.Equal(t, StatusActive, got.Status)
}

func TestUpdateMissingBond(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	b := sampleBond()
	b.ID = 42
	assert.Error(t, s.UpdateBond(b))
}

func TestDeleteBondCascadesInterests(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	id, err := s.InsertBond(sampleBond())
	require.NoError(t, err)
	require.NoError(t, s.UpsertInterest(id, 2024, 3, 25_000))

	require.NoError(t, s.DeleteBond(id))

	bonds, err := s.Bonds()
	require.NoError(t, err)
	assert.Empty(t, bonds)

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM interests`).Scan(&n))
	assert.Zero(t, n)
}

func TestNetEffectOfMutationSequence(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	keep := sampleBond()
	keep.Name = "keep"
	gone := sampleBond()
	gone.Name = "gone"

	keepID, err := s.InsertBond(keep)
	require.NoError(t, err)
	goneID, err := s.InsertBond(gone)
	require.NoError(t, err)

	keep.ID = keepID
	keep.Account = "pension"
	require.NoError(t, s.UpdateBond(keep))
	require.NoError(t, s.DeleteBond(goneID))

	bonds, err := s.Bonds()
	require.NoError(t, err)
	require.Len(t, bonds, 1)
	assert.Equal(t, keepID, bonds[0].ID)
	assert.Equal(t, "pension", bonds[0].Account)
}

func TestCompleteAndRevert(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	id, err := s.InsertBond(sampleBond())
	require.NoError(t, err)

	redemption := int64(1_050_000)
	require.NoError(t, s.CompleteBond(id, &redemption))

	got, err := s.Bond(id)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, redemption, got.RedemptionAmount)
	assert.Equal(t, int64(1_000_000), got.BuyAmount)

	require.NoError(t, s.RevertBond(id))

	got, err = s.Bond(id)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, got.Status)
	assert.Equal(t, int64(0), got.RedemptionAmount)
	assert.Equal(t, int64(1_000_000), got.BuyAmount)
}

func TestCompleteDefaultsToPrincipal(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	id, err := s.InsertBond(sampleBond())
	require.NoError(t, err)
	require.NoError(t, s.CompleteBond(id, nil))

	got, err := s.Bond(id)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, got.BuyAmount, got.RedemptionAmount)
}

func TestUpsertInterestIdempotent(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	id, err := s.InsertBond(sampleBond())
	require.NoError(t, err)

	require.NoError(t, s.UpsertInterest(id, 2025, 3, 1_000))
	require.NoError(t, s.UpsertInterest(id, 2025, 3, 1_000))

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM interests`).Scan(&n))
	assert.Equal(t, 1, n)

	bonds, err := s.Bonds()
	require.NoError(t, err)
	require.Len(t, bonds, 1)
	assert.Equal(t, int64(1_000), bonds[0].Interests[2025][3])
}

func TestUpsertInterestOverwrites(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	id, err := s.InsertBond(sampleBond())
	require.NoError(t, err)

	require.NoError(t, s.UpsertInterest(id, 2024, 11, 10_000))
	require.NoError(t, s.UpsertInterest(id, 2024, 11, 12_500))

	bonds, err := s.Bonds()
	require.NoError(t, err)
	assert.Equal(t, int64(12_500), bonds[0].Interests[2024][11])
}

func TestUpsertInterestRejectsBadMonth(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	assert.Error(t, s.UpsertInterest(1, 2024, 0, 100))
	assert.Error(t, s.UpsertInterest(1, 2024, 13, 100))
}

func TestExportLoadRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	id1, err := s.InsertBond(sampleBond())
	require.NoError(t, err)

	open := sampleBond()
	open.Name = "perpetual"
	open.MaturityDate = ""
	id2, err := s.InsertBond(open)
	require.NoError(t, err)

	require.NoError(t, s.UpsertInterest(id1, 2024, 6, 17_500))
	require.NoError(t, s.UpsertInterest(id1, 2025, 1, 17_500))
	require.NoError(t, s.UpsertInterest(id2, 2025, 1, 9_000))
	redemption := int64(1_020_000)
	require.NoError(t, s.CompleteBond(id2, &redemption))

	want, err := s.Bonds()
	require.NoError(t, err)

	data, err := s.Export()
	require.NoError(t, err)
	require.NotEmpty(t, data)

	loaded, err := Load(data)
	require.NoError(t, err)
	t.Cleanup(func() { _ = loaded.Close() })

	got, err := loaded.Bonds()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestExportIsSnapshot(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	_, err := s.InsertBond(sampleBond())
	require.NoError(t, err)

	data, err := s.Export()
	require.NoError(t, err)

	// Mutations after the export must not affect the buffer already taken.
	_, err = s.InsertBond(sampleBond())
	require.NoError(t, err)

	loaded, err := Load(data)
	require.NoError(t, err)
	t.Cleanup(func() { _ = loaded.Close() })

	bonds, err := loaded.Bonds()
	require.NoError(t, err)
	assert.Len(t, bonds, 1)
}

func TestLoadRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := Load([]byte("this is not a sqlite database, not even close"))
	assert.ErrorIs(t, err, ErrInvalidDatabase)
}

func TestOperationsAfterClose(t *testing.T) {
	t.Parallel()

	s, err := New()
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Bonds()
	assert.ErrorIs(t, err, ErrNoDatabase)
	_, err = s.InsertBond(sampleBond())
	assert.ErrorIs(t, err, ErrNoDatabase)
	_, err = s.Export()
	assert.ErrorIs(t, err, ErrNoDatabase)
}
