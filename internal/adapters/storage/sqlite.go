package storage

// sqlite.go — trade journal ligero sobre SQLite (pure Go, sin CGo).
//
// Estrategia:
//   - `cycles`: una fila por ciclo de discovery. Pesa ~40 bytes.
//   - `trades`: una fila por buy/sell aceptado por el venue. Precios y
//     cantidades se guardan como TEXT decimal para no perder exactitud.
//   - Prune automático al arrancar: cycles > 30d. Los trades no se podan —
//     son el audit trail.
// El journal es observacional: el ledger en memoria sigue siendo la fuente
// autoritativa y un fallo aquí nunca falla un trade.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/pumpbot/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
-- Resumen ligero por ciclo de discovery
CREATE TABLE IF NOT EXISTS cycles (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    scanned_at DATETIME NOT NULL,
    candidates INTEGER  NOT NULL DEFAULT 0,
    accepted   INTEGER  NOT NULL DEFAULT 0,
    bought     INTEGER  NOT NULL DEFAULT 0,
    open_count INTEGER  NOT NULL DEFAULT 0
);

-- Una fila por orden aceptada por el venue
CREATE TABLE IF NOT EXISTS trades (
    id          TEXT PRIMARY KEY,
    address     TEXT    NOT NULL,
    name        TEXT,
    side        TEXT    NOT NULL,
    price       TEXT    NOT NULL,
    quantity    TEXT    NOT NULL,
    signature   TEXT    NOT NULL,
    client_id   INTEGER NOT NULL,
    executed_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cycles_at    ON cycles(scanned_at DESC);
CREATE INDEX IF NOT EXISTS idx_trades_at    ON trades(executed_at DESC);
CREATE INDEX IF NOT EXISTS idx_trades_addr  ON trades(address);
`

const retentionCycles = 30 * 24 * time.Hour // ciclos: 30 días

// SQLiteJournal implementa ports.TradeJournal usando SQLite.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia ciclos antiguos.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteJournal: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteJournal: apply schema: %w", err)
	}

	j := &SQLiteJournal{db: db}
	j.pruneOld(context.Background())
	return j, nil
}

// SaveCycle persiste el resumen de un ciclo de discovery.
func (j *SQLiteJournal) SaveCycle(ctx context.Context, s domain.CycleSummary) error {
	if _, err := j.db.ExecContext(ctx,
		`INSERT INTO cycles (scanned_at, candidates, accepted, bought, open_count) VALUES (?, ?, ?, ?, ?)`,
		s.ScannedAt.UTC(), s.Candidates, s.Accepted, s.Bought, s.OpenCount,
	); err != nil {
		return fmt.Errorf("storage.SaveCycle: insert: %w", err)
	}
	return nil
}

// SaveTrade persiste un buy o sell ejecutado.
func (j *SQLiteJournal) SaveTrade(ctx context.Context, t domain.TradeRecord) error {
	if _, err := j.db.ExecContext(ctx,
		`INSERT INTO trades (id, address, name, side, price, quantity, signature, client_id, executed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Address, t.Name, string(t.Side),
		t.Price.String(), t.Quantity.String(),
		t.Signature, int64(t.ClientID), t.ExecutedAt.UTC(),
	); err != nil {
		return fmt.Errorf("storage.SaveTrade: insert %s: %w", t.Address, err)
	}
	return nil
}

// GetTradeHistory devuelve los trades cuyo executed_at está en el rango dado,
// más recientes primero.
func (j *SQLiteJournal) GetTradeHistory(ctx context.Context, from, to time.Time) ([]domain.TradeRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, address, name, side, price, quantity, signature, client_id, executed_at
		FROM trades
		WHERE executed_at BETWEEN ? AND ?
		ORDER BY executed_at DESC
	`, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("storage.GetTradeHistory: query: %w", err)
	}
	defer rows.Close()

	var trades []domain.TradeRecord
	for rows.Next() {
		var t domain.TradeRecord
		var side, price, quantity string
		var clientID int64
		var executedAt time.Time

		if err := rows.Scan(
			&t.ID, &t.Address, &t.Name, &side,
			&price, &quantity, &t.Signature, &clientID, &executedAt,
		); err != nil {
			return nil, fmt.Errorf("storage.GetTradeHistory: scan row: %w", err)
		}

		t.Side = domain.Side(side)
		if t.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("storage.GetTradeHistory: parse price %q: %w", price, err)
		}
		if t.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return nil, fmt.Errorf("storage.GetTradeHistory: parse quantity %q: %w", quantity, err)
		}
		t.ClientID = uint64(clientID)
		t.ExecutedAt = executedAt.UTC()
		trades = append(trades, t)
	}

	return trades, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// pruneOld elimina ciclos antiguos para mantener la DB ligera.
func (j *SQLiteJournal) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionCycles)
	j.db.ExecContext(ctx, `DELETE FROM cycles WHERE scanned_at < ?`, cutoff)
}
