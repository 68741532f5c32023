// store/schema.go
package store

const Schema = `
CREATE TABLE IF NOT EXISTS bonds (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT,
	account TEXT,
	buyDate TEXT,
	maturityDate TEXT,
	rate REAL,
	buyAmount INTEGER,
	quantity INTEGER DEFAULT 0,
	status TEXT DEFAULT 'active',
	redemptionAmount INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS interests (
	bond_id INTEGER,
	year INTEGER,
	month INTEGER,
	amount INTEGER,
	PRIMARY KEY (bond_id, year, month)
);
`
