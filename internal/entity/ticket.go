package entity

import "time"

type TicketStatus string

// StatusValid is the only status assigned at generation time. Other values
// belong to the redemption side and are carried through untouched.
const StatusValid TicketStatus = "valid"

type Ticket struct {
	TicketID      int          `json:"ticket_id"`
	Code          string       `json:"code"`
	Prefix        string       `json:"prefix"`
	Status        TicketStatus `json:"status"`
	Scanned       bool         `json:"scanned"`
	ScanCount     int          `json:"scan_count"`
	FirstScanTime *time.Time   `json:"first_scan_time"`
	LastScanTime  *time.Time   `json:"last_scan_time"`
	CreatedAt     time.Time    `json:"created_at"`
}

// TicketFields lists the record attributes in their persisted order.
var TicketFields = []string{
	"ticket_id",
	"code",
	"prefix",
	"status",
	"scanned",
	"scan_count",
	"first_scan_time",
	"last_scan_time",
	"created_at",
}

func NewTicket(id int, code, prefix string, createdAt time.Time) Ticket {
	return Ticket{
		TicketID:  id,
		Code:      code,
		Prefix:    prefix,
		Status:    StatusValid,
		CreatedAt: createdAt,
	}
}

type SeriesCount struct {
	Prefix string `json:"prefix"`
	Count  int    `json:"count"`
}

type BatchStats struct {
	Total    int           `json:"total"`
	BySeries []SeriesCount `json:"by_series"`
	Samples  []string      `json:"samples"`
}

// RecordSet is a loaded batch. Records that could not be decoded are kept
// out of Tickets and listed in Rejected so callers can count them as failures.
type RecordSet struct {
	Tickets  []Ticket
	Rejected []RejectedRecord
}

type RejectedRecord struct {
	// Position is 1-based: the array index for JSON, the line for CSV.
	Position int
	Reason   string
}

func (rs *RecordSet) Total() int {
	return len(rs.Tickets) + len(rs.Rejected)
}
