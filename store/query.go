package store

import (
	"database/sql"
	"fmt"
)

// Bonds returns every bond joined with its grouped interest records, in
// insertion order. Callers wanting reverse-chronological display sort
// explicitly.
func (s *Store) Bonds() ([]Snapshot, error) {
	if s == nil || s.db == nil {
		return nil, ErrNoDatabase
	}

	rows, err := s.db.Query(`
		SELECT id, name, account, buyDate, maturityDate, rate, buyAmount, quantity, status, redemptionAmount
		FROM bonds
		ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snapshot
	index := map[int64]int{}
	for rows.Next() {
		var b Bond
		if err := rows.Scan(
			&b.ID,
			&b.Name,
			&b.Account,
			&b.BuyDate,
			&b.MaturityDate,
			&b.Rate,
			&b.BuyAmount,
			&b.Quantity,
			&b.Status,
			&b.RedemptionAmount,
		); err != nil {
			return nil, err
		}
		index[b.ID] = len(out)
		out = append(out, Snapshot{Bond: b, Interests: map[int]map[int]int64{}})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	irows, err := s.db.Query(`SELECT bond_id, year, month, amount FROM interests`)
	if err != nil {
		return nil, err
	}
	defer irows.Close()

	for irows.Next() {
		var (
			bondID      int64
			year, month int
			amount      int64
		)
		if err := irows.Scan(&bondID, &year, &month, &amount); err != nil {
			return nil, err
		}
		i, ok := index[bondID]
		if !ok {
			continue // orphaned interest row, skip
		}
		months := out[i].Interests[year]
		if months == nil {
			months = map[int]int64{}
			out[i].Interests[year] = months
		}
		months[month] = amount
	}
	if err := irows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Bond returns a single bond row by id, without its interest history.
func (s *Store) Bond(id int64) (Bond, error) {
	if s == nil || s.db == nil {
		return Bond{}, ErrNoDatabase
	}

	var b Bond
	row := s.db.QueryRow(`
		SELECT id, name, account, buyDate, maturityDate, rate, buyAmount, quantity, status, redemptionAmount
		FROM bonds
		WHERE id = ?`, id)

	err := row.Scan(
		&b.ID,
		&b.Name,
		&b.Account,
		&b.BuyDate,
		&b.MaturityDate,
		&b.Rate,
		&b.BuyAmount,
		&b.Quantity,
		&b.Status,
		&b.RedemptionAmount,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return Bond{}, fmt.Errorf("bond %d not found", id)
		}
		return Bond{}, err
	}
	return b, nil
}
