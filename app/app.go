// Package app ties the store, the file binding, and the UI selection state
// into one explicit application-state object. Mutations go through here so
// every data change fires the change signal the presentation layer
// subscribes to; persistence stays a separate, explicit action.
package app

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sjkwon/bondfolio/persist"
	"github.com/sjkwon/bondfolio/portfolio"
	"github.com/sjkwon/bondfolio/store"
)

// Tab is one of the four dashboard views.
type Tab string

const (
	TabDashboard Tab = "dashboard"
	TabList      Tab = "list"
	TabInterest  Tab = "interest"
	TabAnalytics Tab = "analytics"
)

// Selection is the transient UI state driving the query layer. It has no
// persistence obligation.
type Selection struct {
	Tab    Tab
	Year   int
	Filter portfolio.StatusFilter
}

// App is the single application-state object: one store, one binding, one
// selection. No hidden module-level state.
type App struct {
	ctrl     *persist.Controller
	sel      Selection
	autosave bool
	onChange func()
}

// New builds an App around a persistence controller. The selection starts
// on the dashboard, the current calendar year, and no list filter.
func New(ctrl *persist.Controller, autosave bool) *App {
	return &App{
		ctrl:     ctrl,
		autosave: autosave,
		sel: Selection{
			Tab:    TabDashboard,
			Year:   time.Now().Year(),
			Filter: portfolio.FilterAll,
		},
	}
}

// OnChange registers the signal fired after every state change. The
// subscriber decides when to re-derive views; nothing re-renders
// implicitly inside mutations.
func (a *App) OnChange(fn func()) { a.onChange = fn }

func (a *App) signal() {
	if a.onChange != nil {
		a.onChange()
	}
}

// Selection returns the current UI selection.
func (a *App) Selection() Selection { return a.sel }

// Binding returns the current file binding.
func (a *App) Binding() persist.Binding { return a.ctrl.Binding() }

// Loaded reports whether a database is loaded.
func (a *App) Loaded() bool { return a.ctrl.Loaded() }

// Bonds returns the current portfolio snapshots.
func (a *App) Bonds() ([]store.Snapshot, error) {
	if !a.ctrl.Loaded() {
		return nil, store.ErrNoDatabase
	}
	return a.ctrl.Store().Bonds()
}

// Bond returns one bond row for the edit flow.
func (a *App) Bond(id int64) (store.Bond, error) {
	if !a.ctrl.Loaded() {
		return store.Bond{}, store.ErrNoDatabase
	}
	return a.ctrl.Store().Bond(id)
}

// SetTab switches the active view.
func (a *App) SetTab(t Tab) {
	a.sel.Tab = t
	a.signal()
}

// SetYear switches the selected year for the interest and analytics views.
func (a *App) SetYear(year int) {
	a.sel.Year = year
	a.signal()
}

// SetFilter switches the list filter.
func (a *App) SetFilter(f portfolio.StatusFilter) {
	a.sel.Filter = f
	a.signal()
}

// AddBond inserts a bond and returns its assigned id.
func (a *App) AddBond(b store.Bond) (int64, error) {
	if !a.ctrl.Loaded() {
		return 0, store.ErrNoDatabase
	}
	id, err := a.ctrl.Store().InsertBond(b)
	if err != nil {
		return 0, err
	}
	return id, a.mutated()
}

// EditBond rewrites a bond's editable fields.
func (a *App) EditBond(b store.Bond) error {
	if !a.ctrl.Loaded() {
		return store.ErrNoDatabase
	}
	if err := a.ctrl.Store().UpdateBond(b); err != nil {
		return err
	}
	return a.mutated()
}

// RemoveBond deletes a bond and its interest history.
func (a *App) RemoveBond(id int64) error {
	if !a.ctrl.Loaded() {
		return store.ErrNoDatabase
	}
	if err := a.ctrl.Store().DeleteBond(id); err != nil {
		return err
	}
	return a.mutated()
}

// Complete marks a bond matured. A nil redemption defaults to the bond's
// principal.
func (a *App) Complete(id int64, redemption *int64) error {
	if !a.ctrl.Loaded() {
		return store.ErrNoDatabase
	}
	if err := a.ctrl.Store().CompleteBond(id, redemption); err != nil {
		return err
	}
	return a.mutated()
}

// Revert puts a completed bond back to active.
func (a *App) Revert(id int64) error {
	if !a.ctrl.Loaded() {
		return store.ErrNoDatabase
	}
	if err := a.ctrl.Store().RevertBond(id); err != nil {
		return err
	}
	return a.mutated()
}

// SetInterest upserts one month's interest receipt.
func (a *App) SetInterest(bondID int64, year, month int, amount int64) error {
	if !a.ctrl.Loaded() {
		return store.ErrNoDatabase
	}
	if err := a.ctrl.Store().UpsertInterest(bondID, year, month, amount); err != nil {
		return err
	}
	return a.mutated()
}

// mutated fires the change signal and, when autosave is on, runs a quiet
// save through an already-bound file. Autosave never prompts: an unbound
// or upload-tier binding skips it. The mutation itself has already
// succeeded; an autosave failure is reported but leaves edits in memory.
func (a *App) mutated() error {
	defer a.signal()
	if a.autosave && a.ctrl.Binding().Tier == persist.TierDirect {
		if _, err := a.ctrl.Save(); err != nil {
			return fmt.Errorf("autosave: %w", err)
		}
	}
	return nil
}

// NewFile runs the new-file workflow.
func (a *App) NewFile() (persist.SaveResult, error) {
	res, err := a.ctrl.NewFile()
	if err != nil {
		return res, err
	}
	a.signal()
	return res, nil
}

// OpenFile runs the direct open workflow.
func (a *App) OpenFile() error {
	if err := a.ctrl.Open(); err != nil {
		return err
	}
	a.signal()
	return nil
}

// OpenUpload loads a one-shot byte snapshot.
func (a *App) OpenUpload(name string, r io.Reader) error {
	if err := a.ctrl.OpenUpload(name, r); err != nil {
		return err
	}
	a.signal()
	return nil
}

// Save runs the save workflow.
func (a *App) Save() (persist.SaveResult, error) {
	res, err := a.ctrl.Save()
	if err != nil {
		return res, err
	}
	a.signal()
	return res, nil
}

// Close releases the loaded store.
func (a *App) Close() error { return a.ctrl.Close() }

// Notify converts a workflow error into the single user-visible message
// for it, or "" for cancellations, which stay silent.
func Notify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, persist.ErrCancelled):
		return ""
	case errors.Is(err, store.ErrNoDatabase):
		return "no data to act on: open or create a file first"
	case errors.Is(err, store.ErrInvalidDatabase):
		return "could not read that file as a bond database"
	case errors.Is(err, persist.ErrNothingToSave):
		return "nothing to save"
	case errors.Is(err, persist.ErrPermissionDenied):
		return "write permission denied; the file stays bound, try again"
	case errors.Is(err, persist.ErrWriteFailed):
		return "saving failed; your edits are still in memory, try again"
	default:
		return err.Error()
	}
}
