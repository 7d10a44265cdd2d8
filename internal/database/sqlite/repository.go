package sqlite

import (
	"context"
	"time"

	"github.com/ds124wfegd/ticketqr/internal/entity"
	"gorm.io/gorm"
)

type TicketStore interface {
	Import(ctx context.Context, importBatch string, tickets []entity.Ticket) (int, error)
	Count(ctx context.Context) (int64, error)
}

// TicketModel is the tickets table shared with the redemption side.
type TicketModel struct {
	TicketID      int        `gorm:"column:ticket_id;primaryKey;autoIncrement:false"`
	Code          string     `gorm:"column:code;uniqueIndex;not null"`
	Prefix        string     `gorm:"column:prefix;index;not null"`
	Status        string     `gorm:"column:status;not null"`
	Scanned       bool       `gorm:"column:scanned;not null"`
	ScanCount     int        `gorm:"column:scan_count;not null"`
	FirstScanTime *time.Time `gorm:"column:first_scan_time"`
	LastScanTime  *time.Time `gorm:"column:last_scan_time"`
	CreatedAt     time.Time  `gorm:"column:created_at;not null"`
	ImportBatch   string     `gorm:"column:import_batch;index"`
}

func (TicketModel) TableName() string {
	return "tickets"
}

type sqliteTicketStore struct {
	db        *gorm.DB
	batchSize int
}
