package sqlite

import (
	"context"
	"fmt"

	"github.com/ds124wfegd/ticketqr/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultBatchSize = 100

func NewTicketStore(db *gorm.DB, batchSize int) TicketStore {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &sqliteTicketStore{db: db, batchSize: batchSize}
}

// Import inserts the records, ignoring rows whose ticket_id or code already
// exist, and returns how many rows were actually written.
func (s *sqliteTicketStore) Import(ctx context.Context, importBatch string, tickets []entity.Ticket) (int, error) {
	if len(tickets) == 0 {
		return 0, nil
	}

	models := make([]TicketModel, 0, len(tickets))
	for _, t := range tickets {
		models = append(models, toModel(t, importBatch))
	}

	var imported int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(models, s.batchSize)
		if res.Error != nil {
			return res.Error
		}
		imported = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to import tickets: %w", err)
	}
	return int(imported), nil
}

func (s *sqliteTicketStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&TicketModel{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}
	return n, nil
}

func toModel(t entity.Ticket, importBatch string) TicketModel {
	return TicketModel{
		TicketID:      t.TicketID,
		Code:          t.Code,
		Prefix:        t.Prefix,
		Status:        string(t.Status),
		Scanned:       t.Scanned,
		ScanCount:     t.ScanCount,
		FirstScanTime: t.FirstScanTime,
		LastScanTime:  t.LastScanTime,
		CreatedAt:     t.CreatedAt,
		ImportBatch:   importBatch,
	}
}
