// Package store wraps the embedded SQLite engine behind typed bond and
// interest records. A Store lives in a private scratch file under the OS
// temp dir; the user-visible file only ever sees whole byte snapshots
// produced by Export and consumed by Load.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

var (
	// ErrNoDatabase is returned by any operation attempted while no
	// database is loaded.
	ErrNoDatabase = errors.New("no database loaded")

	// ErrInvalidDatabase is returned by Load when the buffer is not a
	// readable SQLite database.
	ErrInvalidDatabase = errors.New("not a valid bond database")
)

// Bond lifecycle states.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Bond is one row of the bonds table. Dates are YYYY-MM-DD strings; an
// empty MaturityDate means the bond is open-ended. Amounts are whole
// currency units.
type Bond struct {
	ID               int64
	Name             string
	Account          string
	BuyDate          string
	MaturityDate     string
	Rate             float64
	BuyAmount        int64
	Quantity         int64
	Status           string
	RedemptionAmount int64
}

// Snapshot is a Bond joined with its interest history, grouped year then
// month. Built fresh on every query, never persisted.
type Snapshot struct {
	Bond
	Interests map[int]map[int]int64
}

// Store is an in-memory relational dataset backed by a scratch file the
// caller never sees. Not safe for concurrent use; the application is
// single-threaded by construction.
type Store struct {
	db      *sql.DB
	scratch string
}

// New creates an empty store with the schema applied.
func New() (*Store, error) {
	return open(nil)
}

// Load builds a store from a previously exported byte buffer. The buffer is
// validated before the store is returned, so a failed Load never leaves a
// half-initialized store behind.
func Load(data []byte) (*Store, error) {
	return open(data)
}

func open(data []byte) (*Store, error) {
	f, err := os.CreateTemp("", "bondfolio-*.db")
	if err != nil {
		return nil, fmt.Errorf("create scratch file: %w", err)
	}
	scratch := f.Name()

	if len(data) > 0 {
		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(scratch)
			return nil, fmt.Errorf("write scratch file: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(scratch)
		return nil, fmt.Errorf("close scratch file: %w", err)
	}

	db, err := sql.Open("sqlite3", scratch)
	if err != nil {
		os.Remove(scratch)
		return nil, fmt.Errorf("open scratch db: %w", err)
	}
	// One connection: the scratch db is private and all access is
	// serialized on the UI loop anyway.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, scratch: scratch}

	if len(data) > 0 {
		if err := s.validate(); err != nil {
			s.Close()
			return nil, err
		}
	}
	if err := s.ensureSchema(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// validate forces a read so malformed bytes fail here, not on first query.
func (s *Store) validate() error {
	var n int
	if err := s.db.QueryRow(`SELECT count(*) FROM sqlite_master`).Scan(&n); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDatabase, err)
	}
	return nil
}

// ensureSchema is idempotent: safe on a store that already has data.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDatabase, err)
	}
	return nil
}

// Export serializes the whole store to a byte buffer suitable for writing
// to a .db file or re-opening via Load. The buffer is an immutable snapshot
// at the moment of export.
func (s *Store) Export() ([]byte, error) {
	if s == nil || s.db == nil {
		return nil, ErrNoDatabase
	}

	dir, err := os.MkdirTemp("", "bondfolio-export-")
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	defer os.RemoveAll(dir)

	// VACUUM INTO produces a compact, self-contained copy.
	snap := filepath.Join(dir, "snapshot.db")
	if _, err := s.db.Exec(`VACUUM INTO ?`, snap); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	data, err := os.ReadFile(snap)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return data, nil
}

// Close releases the connection and removes the scratch file.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if rmErr := os.Remove(s.scratch); err == nil {
		err = rmErr
	}
	return err
}

// InsertBond adds a bond and returns the id assigned by the store. Status
// and redemption amount take their schema defaults.
func (s *Store) InsertBond(b Bond) (int64, error) {
	if s == nil || s.db == nil {
		return 0, ErrNoDatabase
	}
	res, err := s.db.Exec(`
		INSERT INTO bonds (name, account, buyDate, maturityDate, rate, buyAmount, quantity)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.Name, b.Account, b.BuyDate, b.MaturityDate, b.Rate, b.BuyAmount, b.Quantity,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateBond rewrites the editable fields of an existing bond. Lifecycle
// fields go through CompleteBond and RevertBond instead.
func (s *Store) UpdateBond(b Bond) error {
	if s == nil || s.db == nil {
		return ErrNoDatabase
	}
	res, err := s.db.Exec(`
		UPDATE bonds
		SET name=?, account=?, rate=?, buyDate=?, maturityDate=?, quantity=?, buyAmount=?
		WHERE id=?`,
		b.Name, b.Account, b.Rate, b.BuyDate, b.MaturityDate, b.Quantity, b.BuyAmount, b.ID,
	)
	if err != nil {
		return err
	}
	return oneRow(res, b.ID)
}

// DeleteBond removes a bond and its interest records. Two sequential
// statements, matching the save-file contract (no multi-statement
// transaction).
func (s *Store) DeleteBond(id int64) error {
	if s == nil || s.db == nil {
		return ErrNoDatabase
	}
	res, err := s.db.Exec(`DELETE FROM bonds WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err := oneRow(res, id); err != nil {
		return err
	}
	_, err = s.db.Exec(`DELETE FROM interests WHERE bond_id = ?`, id)
	return err
}

// CompleteBond marks a bond matured. A nil redemption defaults to the
// bond's purchase amount.
func (s *Store) CompleteBond(id int64, redemption *int64) error {
	if s == nil || s.db == nil {
		return ErrNoDatabase
	}

	final := int64(0)
	if redemption != nil {
		final = *redemption
	} else {
		b, err := s.Bond(id)
		if err != nil {
			return err
		}
		final = b.BuyAmount
	}

	res, err := s.db.Exec(`UPDATE bonds SET status = ?, redemptionAmount = ? WHERE id = ?`,
		StatusCompleted, final, id)
	if err != nil {
		return err
	}
	return oneRow(res, id)
}

// RevertBond puts a completed bond back to active and resets its
// redemption amount to 0.
func (s *Store) RevertBond(id int64) error {
	if s == nil || s.db == nil {
		return ErrNoDatabase
	}
	res, err := s.db.Exec(`UPDATE bonds SET status = ?, redemptionAmount = 0 WHERE id = ?`,
		StatusActive, id)
	if err != nil {
		return err
	}
	return oneRow(res, id)
}

// UpsertInterest records the interest received for (bond, year, month).
// Re-submitting the same key updates the amount in place.
func (s *Store) UpsertInterest(bondID int64, year, month int, amount int64) error {
	if s == nil || s.db == nil {
		return ErrNoDatabase
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("month %d out of range", month)
	}
	_, err := s.db.Exec(`
		INSERT INTO interests (bond_id, year, month, amount)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(bond_id, year, month) DO UPDATE SET amount = excluded.amount`,
		bondID, year, month, amount,
	)
	return err
}

func oneRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("bond %d not found", id)
	}
	return nil
}
