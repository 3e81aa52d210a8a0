package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hashforge/kaspay/internal/payout"
)

// PayoutBatch is one journaled payout transaction.
type PayoutBatch struct {
	ID            string
	TransactionID string
	Fee           uint64
	PayoutCount   int
	TotalAmount   uint64
	CreatedAt     time.Time
	Entries       []payout.Payout
}

// RecordPayout journals a submitted payout transaction and its recipients
// atomically.
func (s *Storage) RecordPayout(txID string, fee uint64, payouts []payout.Payout) error {
	dbTx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	batchID := uuid.New().String()
	var total uint64
	for _, p := range payouts {
		total += p.Amount
	}

	_, err = dbTx.Exec(`
		INSERT INTO payout_batches (id, transaction_id, fee, payout_count, total_amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		batchID, txID, fee, len(payouts), total, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to insert payout batch: %w", err)
	}

	for _, p := range payouts {
		_, err = dbTx.Exec(`
			INSERT INTO payout_entries (batch_id, address, amount)
			VALUES (?, ?, ?)`,
			batchID, p.Address, p.Amount)
		if err != nil {
			return fmt.Errorf("failed to insert payout entry: %w", err)
		}
	}

	return dbTx.Commit()
}

// GetPayoutBatch returns one batch with its entries, or nil if not found.
func (s *Storage) GetPayoutBatch(txID string) (*PayoutBatch, error) {
	batch := &PayoutBatch{}
	var createdAt int64
	err := s.db.QueryRow(`
		SELECT id, transaction_id, fee, payout_count, total_amount, created_at
		FROM payout_batches WHERE transaction_id = ?`, txID).
		Scan(&batch.ID, &batch.TransactionID, &batch.Fee, &batch.PayoutCount, &batch.TotalAmount, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query payout batch: %w", err)
	}
	batch.CreatedAt = time.Unix(createdAt, 0)

	rows, err := s.db.Query(`
		SELECT address, amount FROM payout_entries WHERE batch_id = ? ORDER BY id`, batch.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payout entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry payout.Payout
		if err := rows.Scan(&entry.Address, &entry.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan payout entry: %w", err)
		}
		batch.Entries = append(batch.Entries, entry)
	}
	return batch, rows.Err()
}

// ListRecentBatches returns the most recent payout batches, newest first.
func (s *Storage) ListRecentBatches(limit int) ([]*PayoutBatch, error) {
	rows, err := s.db.Query(`
		SELECT id, transaction_id, fee, payout_count, total_amount, created_at
		FROM payout_batches ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query payout batches: %w", err)
	}
	defer rows.Close()

	var batches []*PayoutBatch
	for rows.Next() {
		batch := &PayoutBatch{}
		var createdAt int64
		err := rows.Scan(&batch.ID, &batch.TransactionID, &batch.Fee, &batch.PayoutCount, &batch.TotalAmount, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payout batch: %w", err)
		}
		batch.CreatedAt = time.Unix(createdAt, 0)
		batches = append(batches, batch)
	}
	return batches, rows.Err()
}
