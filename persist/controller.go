package persist

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sjkwon/bondfolio/pkg/id"
	"github.com/sjkwon/bondfolio/store"
)

var (
	// ErrNothingToSave reports a save attempt with no store loaded.
	ErrNothingToSave = errors.New("nothing to save")

	// ErrPermissionDenied reports a bound file that refused write access
	// at save time. The binding is preserved so the user may retry.
	ErrPermissionDenied = errors.New("write permission denied")

	// ErrWriteFailed wraps an underlying write failure. Binding and store
	// are preserved; pending edits stay intact for a retry.
	ErrWriteFailed = errors.New("write failed")
)

// SaveMode says which path a completed save took, so the caller can phrase
// the notification ("saved" vs "downloaded a backup copy").
type SaveMode int

const (
	// SaveOverwrote means the bound file was overwritten in place.
	SaveOverwrote SaveMode = iota
	// SavePromoted means the user granted a destination and the binding
	// upgraded to the direct tier.
	SavePromoted
	// SaveDownloaded means the bytes went to a one-shot backup copy; the
	// binding is unchanged.
	SaveDownloaded
)

// SaveResult reports where the bytes went.
type SaveResult struct {
	Mode SaveMode
	Path string
}

// Controller orchestrates the new/open/save workflows, reconciling the
// file binding after each. All methods run to completion on the caller's
// single thread of control; cancellation is user-driven only.
type Controller struct {
	picker      Picker
	defaultName string
	downloadDir string

	store   *store.Store
	binding Binding
}

// NewController builds a controller with no store loaded and an unbound
// file binding.
func NewController(p Picker, defaultName, downloadDir string) *Controller {
	return &Controller{
		picker:      p,
		defaultName: defaultName,
		downloadDir: downloadDir,
	}
}

// Store returns the currently loaded store, or nil.
func (c *Controller) Store() *store.Store { return c.store }

// Binding returns the current file binding.
func (c *Controller) Binding() Binding { return c.binding }

// Loaded reports whether a store is currently loaded.
func (c *Controller) Loaded() bool { return c.store != nil }

// NewFile creates an empty store, persists it immediately, then clears
// both the in-memory store and the binding so the user must explicitly
// re-open the file before editing. Cancelling the destination prompt
// aborts with the prior store and binding untouched.
func (c *Controller) NewFile() (SaveResult, error) {
	fresh, err := store.New()
	if err != nil {
		return SaveResult{}, err
	}
	defer fresh.Close()

	data, err := fresh.Export()
	if err != nil {
		return SaveResult{}, err
	}

	var res SaveResult
	path, err := c.picker.PickSave(c.defaultName)
	switch {
	case err == nil:
		if err := writeFile(path, data); err != nil {
			return SaveResult{}, err
		}
		res = SaveResult{Mode: SavePromoted, Path: path}
	case errors.Is(err, ErrUnavailable):
		// No picker on this platform: immediate one-shot download. The
		// download is the canonical new file, so it keeps the plain name.
		dl, derr := c.download(c.defaultName, data)
		if derr != nil {
			return SaveResult{}, derr
		}
		res = SaveResult{Mode: SaveDownloaded, Path: dl}
	case errors.Is(err, ErrCancelled):
		return SaveResult{}, ErrCancelled
	default:
		return SaveResult{}, err
	}

	// The file exists on disk but is deliberately not kept open: forcing
	// an explicit re-open prevents silent divergence between memory and a
	// file the user never confirmed as the working copy.
	c.reset()
	return res, nil
}

// Open prompts for an existing file, reads it, and binds it at the direct
// tier. Cancellation is a silent no-op; a load failure leaves the prior
// store and binding in place.
func (c *Controller) Open() error {
	path, err := c.picker.PickOpen()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	st, err := store.Load(data)
	if err != nil {
		return err
	}

	c.swap(st)
	c.binding = Binding{Tier: TierDirect, Path: path, Name: filepath.Base(path)}
	return nil
}

// OpenUpload loads a one-time byte snapshot. The binding is explicitly set
// to the upload tier with no path: a later save cannot silently claim to
// overwrite a file it has no handle to.
func (c *Controller) OpenUpload(name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}

	st, err := store.Load(data)
	if err != nil {
		return err
	}

	c.swap(st)
	c.binding = Binding{Tier: TierUpload, Name: name}
	return nil
}

// Save exports the store and writes it out along the path the binding
// allows. A failed save never touches the in-memory store.
func (c *Controller) Save() (SaveResult, error) {
	if c.store == nil {
		return SaveResult{}, ErrNothingToSave
	}

	data, err := c.store.Export()
	if err != nil {
		return SaveResult{}, err
	}

	if c.binding.Tier == TierDirect {
		if err := checkWritable(c.binding.Path); err != nil {
			return SaveResult{}, err
		}
		if err := writeFile(c.binding.Path, data); err != nil {
			return SaveResult{}, err
		}
		return SaveResult{Mode: SaveOverwrote, Path: c.binding.Path}, nil
	}

	// Upload tier or unbound: ask for a destination and promote on grant.
	path, err := c.picker.PickSave(c.suggestedName())
	switch {
	case err == nil:
		if err := writeFile(path, data); err != nil {
			return SaveResult{}, err
		}
		c.binding = Binding{Tier: TierDirect, Path: path, Name: filepath.Base(path)}
		return SaveResult{Mode: SavePromoted, Path: path}, nil
	case errors.Is(err, ErrCancelled), errors.Is(err, ErrUnavailable):
		dl, derr := c.download(backupName(c.suggestedName()), data)
		if derr != nil {
			return SaveResult{}, derr
		}
		return SaveResult{Mode: SaveDownloaded, Path: dl}, nil
	default:
		return SaveResult{}, err
	}
}

// Close releases the loaded store, if any.
func (c *Controller) Close() error {
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.reset()
	return err
}

func (c *Controller) swap(st *store.Store) {
	if c.store != nil {
		c.store.Close()
	}
	c.store = st
}

func (c *Controller) reset() {
	c.swap(nil)
	c.binding = Binding{}
}

func (c *Controller) suggestedName() string {
	if c.binding.Name != "" {
		return c.binding.Name
	}
	return c.defaultName
}

// download writes a one-shot copy into the download directory under the
// given filename.
func (c *Controller) download(name string, data []byte) (string, error) {
	if err := os.MkdirAll(c.downloadDir, 0755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	path := filepath.Join(c.downloadDir, name)
	if err := writeFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// backupName turns my_bonds.db into my_bonds-backup-<ulid>.db.
func backupName(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if ext == "" {
		ext = ".db"
	}
	return fmt.Sprintf("%s-backup-%s%s", base, id.New(), ext)
}

// checkWritable re-verifies write permission on the bound file before an
// overwrite. A file that disappeared is fine; writeFile recreates it.
func checkWritable(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0644)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return nil
		case os.IsPermission(err):
			return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		default:
			return fmt.Errorf("%w: %v", ErrWriteFailed, err)
		}
	}
	return f.Close()
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}
