package pedigree

import (
	"fmt"
	"time"

	"github.com/carbocation/pfx"
	"github.com/jmoiron/sqlx"
)

const frequencySchema = `
CREATE TABLE IF NOT EXISTS CarrierFrequency (
	condition TEXT NOT NULL,
	population TEXT NOT NULL,
	frequency REAL NOT NULL,
	PRIMARY KEY (condition, population)
);
CREATE TABLE IF NOT EXISTS Metadata (
	source TEXT NOT NULL,
	imported_at INTEGER NOT NULL
);
`

// FrequencyDB is a SQLite database of carrier frequencies.
type FrequencyDB struct {
	DB       *sqlx.DB
	Metadata *FrequencyMetadata
}

// FrequencyRow conforms to the rows of the SQLite table "CarrierFrequency"
// and can be easily parsed with sqlx.
type FrequencyRow struct {
	Condition  string  `db:"condition"`
	Population string  `db:"population"`
	Frequency  float64 `db:"frequency"`
}

// FrequencyMetadata conforms to the single row of the SQLite table
// "Metadata".
type FrequencyMetadata struct {
	Source     string `db:"source"`
	ImportedAt Time   `db:"imported_at"`
}

// OpenFrequencyDB opens an existing frequency database at path.
func OpenFrequencyDB(path string) (*FrequencyDB, error) {
	db, err := connectFrequencyDB(path)
	if err != nil {
		return nil, pfx.Err(err)
	}

	fdb := &FrequencyDB{
		DB:       db,
		Metadata: &FrequencyMetadata{},
	}

	// Hand-built databases may lack metadata; ignore any error
	_ = fdb.DB.Get(fdb.Metadata, "SELECT source, imported_at FROM Metadata LIMIT 1")

	return fdb, nil
}

// CreateFrequencyDB writes every row of table into a new or existing
// database at path, replacing rows with the same keys, and records source in
// the metadata.
func CreateFrequencyDB(path string, table *FrequencyTable, source string) (*FrequencyDB, error) {
	db, err := connectFrequencyDB(path)
	if err != nil {
		return nil, pfx.Err(err)
	}

	if err := writeFrequencies(db, table, source); err != nil {
		db.Close()
		return nil, pfx.Err(err)
	}
	db.Close()

	return OpenFrequencyDB(path)
}

func writeFrequencies(db *sqlx.DB, table *FrequencyTable, source string) error {
	if _, err := db.Exec(frequencySchema); err != nil {
		return pfx.Err(err)
	}

	tx, err := db.Beginx()
	if err != nil {
		return pfx.Err(err)
	}
	defer tx.Rollback()

	for _, condition := range table.Conditions() {
		for _, population := range table.Populations(condition) {
			q, _ := table.Frequency(condition, population)
			if _, err := tx.NamedExec(
				`INSERT OR REPLACE INTO CarrierFrequency (condition, population, frequency) VALUES (:condition, :population, :frequency)`,
				FrequencyRow{Condition: condition, Population: population, Frequency: q},
			); err != nil {
				return pfx.Err(err)
			}
		}
	}

	if _, err := tx.Exec("DELETE FROM Metadata"); err != nil {
		return pfx.Err(err)
	}
	if _, err := tx.Exec("INSERT INTO Metadata (source, imported_at) VALUES (?, ?)", source, time.Now().Unix()); err != nil {
		return pfx.Err(err)
	}

	if err := tx.Commit(); err != nil {
		return pfx.Err(err)
	}

	return nil
}

// Close releases the database handle.
func (f *FrequencyDB) Close() error {
	return f.DB.Close()
}

// Rows returns every stored frequency ordered by condition and population.
func (f *FrequencyDB) Rows() ([]FrequencyRow, error) {
	var rows []FrequencyRow
	if err := f.DB.Select(&rows, "SELECT condition, population, frequency FROM CarrierFrequency ORDER BY condition ASC, population ASC"); err != nil {
		return nil, pfx.Err(err)
	}
	return rows, nil
}

// Table loads the stored frequencies into an immutable FrequencyTable.
func (f *FrequencyDB) Table() (*FrequencyTable, error) {
	rows, err := f.Rows()
	if err != nil {
		return nil, pfx.Err(err)
	}

	m := make(map[string]map[string]float64)
	for _, row := range rows {
		if row.Frequency < 0 || row.Frequency > 1 {
			return nil, pfx.Err(fmt.Errorf("frequency %v for %s/%s is outside [0,1]", row.Frequency, row.Condition, row.Population))
		}
		if m[row.Condition] == nil {
			m[row.Condition] = make(map[string]float64)
		}
		m[row.Condition][row.Population] = row.Frequency
	}

	return NewFrequencyTable(m), nil
}
