package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjkwon/bondfolio/persist"
	"github.com/sjkwon/bondfolio/portfolio"
	"github.com/sjkwon/bondfolio/store"
)

type scriptedPicker struct {
	openPath string
	savePath string
	saveErr  error
}

func (p *scriptedPicker) PickOpen() (string, error) { return p.openPath, nil }
func (p *scriptedPicker) PickSave(string) (string, error) {
	return p.savePath, p.saveErr
}

func newTestApp(t *testing.T, autosave bool) (*App, *scriptedPicker, string) {
	t.Helper()

	dir := t.TempDir()
	picker := &scriptedPicker{}
	ctrl := persist.NewController(picker, "my_bonds.db", dir)
	a := New(ctrl, autosave)
	t.Cleanup(func() { _ = a.Close() })

	return a, picker, dir
}

// openFresh gives the app a loaded store bound to a file on disk.
func openFresh(t *testing.T, a *App, picker *scriptedPicker, dir string) string {
	t.Helper()

	s, err := store.New()
	require.NoError(t, err)
	data, err := s.Export()
	require.NoError(t, err)
	require.NoError(t, s.Close())

	path := filepath.Join(dir, "work.db")
	require.NoError(t, os.WriteFile(path, data, 0644))

	picker.openPath = path
	require.NoError(t, a.OpenFile())
	return path
}

func TestMutationsRequireDatabase(t *testing.T) {
	t.Parallel()

	a, _, _ := newTestApp(t, false)

	_, err := a.AddBond(store.Bond{Name: "x"})
	assert.ErrorIs(t, err, store.ErrNoDatabase)
	assert.ErrorIs(t, a.RemoveBond(1), store.ErrNoDatabase)
	assert.ErrorIs(t, a.SetInterest(1, 2025, 1, 100), store.ErrNoDatabase)
	_, err = a.Bonds()
	assert.ErrorIs(t, err, store.ErrNoDatabase)
}

func TestMutationFiresChangeSignal(t *testing.T) {
	t.Parallel()

	a, picker, dir := newTestApp(t, false)
	openFresh(t, a, picker, dir)

	var fired int
	a.OnChange(func() { fired++ })

	_, err := a.AddBond(store.Bond{Name: "signal", BuyDate: "2025-01-01"})
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	a.SetTab(TabList)
	a.SetYear(2024)
	a.SetFilter(portfolio.FilterActive)
	assert.Equal(t, 4, fired)
}

func TestExplicitSaveDecoupledFromMutation(t *testing.T) {
	t.Parallel()

	a, picker, dir := newTestApp(t, false)
	path := openFresh(t, a, picker, dir)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = a.AddBond(store.Bond{Name: "unsaved", BuyDate: "2025-01-01"})
	require.NoError(t, err)

	// The file has not moved; only an explicit save writes it.
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	res, err := a.Save()
	require.NoError(t, err)
	assert.Equal(t, persist.SaveOverwrote, res.Mode)

	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, before, saved)
}

func TestAutoSaveWritesThroughDirectBinding(t *testing.T) {
	t.Parallel()

	a, picker, dir := newTestApp(t, true)
	path := openFresh(t, a, picker, dir)

	_, err := a.AddBond(store.Bond{Name: "autosaved", BuyDate: "2025-01-01"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	st, err := store.Load(data)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	bonds, err := st.Bonds()
	require.NoError(t, err)
	require.Len(t, bonds, 1)
	assert.Equal(t, "autosaved", bonds[0].Name)
}

func TestAutoSaveNeverPromptsWhileUnbound(t *testing.T) {
	t.Parallel()

	a, picker, dir := newTestApp(t, true)

	// Upload-tier open: no path to write through.
	s, err := store.New()
	require.NoError(t, err)
	data, err := s.Export()
	require.NoError(t, err)
	require.NoError(t, s.Close())

	path := filepath.Join(dir, "copy.db")
	require.NoError(t, os.WriteFile(path, data, 0644))
	f, err := os.Open(path)
	require.NoError(t, err)
	require.NoError(t, a.OpenUpload("copy.db", f))
	require.NoError(t, f.Close())

	picker.saveErr = persist.ErrCancelled

	// The mutation must succeed without any save attempt surfacing.
	_, err = a.AddBond(store.Bond{Name: "held back", BuyDate: "2025-01-01"})
	require.NoError(t, err)
	assert.Equal(t, persist.TierUpload, a.Binding().Tier)
}

func TestCompleteAndRevertThroughApp(t *testing.T) {
	t.Parallel()

	a, picker, dir := newTestApp(t, false)
	openFresh(t, a, picker, dir)

	id, err := a.AddBond(store.Bond{Name: "b", BuyDate: "2024-01-01", BuyAmount: 1_000_000})
	require.NoError(t, err)

	require.NoError(t, a.Complete(id, nil))
	b, err := a.Bond(id)
	require.NoError(t, err)
	assert.Equal(t, store.StatusCompleted, b.Status)
	assert.Equal(t, int64(1_000_000), b.RedemptionAmount)

	require.NoError(t, a.Revert(id))
	b, err = a.Bond(id)
	require.NoError(t, err)
	assert.Equal(t, store.StatusActive, b.Status)
	assert.Zero(t, b.RedemptionAmount)
}

func TestNotifyMessages(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Notify(nil))
	assert.Empty(t, Notify(persist.ErrCancelled))
	assert.NotEmpty(t, Notify(store.ErrNoDatabase))
	assert.NotEmpty(t, Notify(store.ErrInvalidDatabase))
	assert.NotEmpty(t, Notify(persist.ErrNothingToSave))
	assert.NotEmpty(t, Notify(persist.ErrPermissionDenied))
	assert.NotEmpty(t, Notify(persist.ErrWriteFailed))
}
