package database

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"slices"
	"strconv"
	"time"

	"github.com/ds124wfegd/ticketqr/internal/entity"
	"github.com/ds124wfegd/ticketqr/internal/pkg/storage"
)

const timeLayout = time.RFC3339Nano

// timestamps written without an offset are read as UTC
var localTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// jsonRecord mirrors entity.Ticket with timestamps kept as text, so one bad
// value rejects its own record instead of the whole file.
type jsonRecord struct {
	TicketID      int                 `json:"ticket_id"`
	Code          string              `json:"code"`
	Prefix        string              `json:"prefix"`
	Status        entity.TicketStatus `json:"status"`
	Scanned       bool                `json:"scanned"`
	ScanCount     int                 `json:"scan_count"`
	FirstScanTime *string             `json:"first_scan_time"`
	LastScanTime  *string             `json:"last_scan_time"`
	CreatedAt     string              `json:"created_at"`
}

func NewTicketRepository(storage storage.FileStorage, jsonPath, csvPath string) TicketRepository {
	return &fileTicketRepository{
		storage:  storage,
		jsonPath: jsonPath,
		csvPath:  csvPath,
	}
}

func (r *fileTicketRepository) SaveJSON(tickets []entity.Ticket) error {
	if tickets == nil {
		tickets = []entity.Ticket{}
	}

	data, err := json.MarshalIndent(tickets, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	return r.storage.Save(r.jsonPath, bytes.NewReader(data))
}

// LoadJSON reads the record set. Only an unreadable file or a document that
// is not an array fails the call; undecodable entries land in Rejected.
func (r *fileTicketRepository) LoadJSON() (*entity.RecordSet, error) {
	reader, err := r.open(r.jsonPath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var raw []json.RawMessage
	if err := json.NewDecoder(reader).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entity.ErrMalformedRecord, r.jsonPath, err)
	}

	rs := &entity.RecordSet{Tickets: make([]entity.Ticket, 0, len(raw))}
	for i, item := range raw {
		t, err := decodeJSONRecord(item)
		if err != nil {
			rs.Rejected = append(rs.Rejected, entity.RejectedRecord{Position: i + 1, Reason: err.Error()})
			continue
		}
		rs.Tickets = append(rs.Tickets, t)
	}
	return rs, nil
}

func decodeJSONRecord(item json.RawMessage) (entity.Ticket, error) {
	var (
		rec jsonRecord
		t   entity.Ticket
		err error
	)
	if err = json.Unmarshal(item, &rec); err != nil {
		return t, err
	}

	t = entity.Ticket{
		TicketID:  rec.TicketID,
		Code:      rec.Code,
		Prefix:    rec.Prefix,
		Status:    rec.Status,
		Scanned:   rec.Scanned,
		ScanCount: rec.ScanCount,
	}
	if rec.FirstScanTime != nil {
		if t.FirstScanTime, err = parseNullableTime(*rec.FirstScanTime); err != nil {
			return t, fmt.Errorf("first_scan_time: %w", err)
		}
	}
	if rec.LastScanTime != nil {
		if t.LastScanTime, err = parseNullableTime(*rec.LastScanTime); err != nil {
			return t, fmt.Errorf("last_scan_time: %w", err)
		}
	}
	if t.CreatedAt, err = parseTime(rec.CreatedAt); err != nil {
		return t, fmt.Errorf("created_at: %w", err)
	}
	return t, nil
}

func (r *fileTicketRepository) SaveCSV(tickets []entity.Ticket) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(entity.TicketFields); err != nil {
		return err
	}
	for _, t := range tickets {
		if err := w.Write(ticketToRow(t)); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	return r.storage.Save(r.csvPath, &buf)
}

// LoadCSV reads the table form. A wrong header fails the call; rows with the
// wrong shape or untypeable values land in Rejected.
func (r *fileTicketRepository) LoadCSV() (*entity.RecordSet, error) {
	reader, err := r.open(r.csvPath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	cr := csv.NewReader(reader)
	cr.FieldsPerRecord = len(entity.TicketFields)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: header: %v", entity.ErrMalformedRecord, r.csvPath, err)
	}
	if !slices.Equal(header, entity.TicketFields) {
		return nil, fmt.Errorf("%w: %s: unexpected header %v", entity.ErrMalformedRecord, r.csvPath, header)
	}

	rs := &entity.RecordSet{Tickets: []entity.Ticket{}}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) && errors.Is(err, csv.ErrFieldCount) {
			rs.Rejected = append(rs.Rejected, entity.RejectedRecord{Position: parseErr.StartLine, Reason: err.Error()})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", entity.ErrMalformedRecord, r.csvPath, err)
		}

		line, _ := cr.FieldPos(0)
		t, err := rowToTicket(row)
		if err != nil {
			rs.Rejected = append(rs.Rejected, entity.RejectedRecord{Position: line, Reason: err.Error()})
			continue
		}
		rs.Tickets = append(rs.Tickets, t)
	}
	return rs, nil
}

func (r *fileTicketRepository) open(path string) (io.ReadCloser, error) {
	reader, err := r.storage.Get(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", entity.ErrRecordSetNotFound, r.storage.FullPath(path))
		}
		return nil, err
	}
	return reader, nil
}

// ticketToRow follows entity.TicketFields order. Null timestamps become empty cells.
func ticketToRow(t entity.Ticket) []string {
	return []string{
		strconv.Itoa(t.TicketID),
		t.Code,
		t.Prefix,
		string(t.Status),
		strconv.FormatBool(t.Scanned),
		strconv.Itoa(t.ScanCount),
		formatNullableTime(t.FirstScanTime),
		formatNullableTime(t.LastScanTime),
		t.CreatedAt.Format(timeLayout),
	}
}

func rowToTicket(row []string) (entity.Ticket, error) {
	var (
		t   entity.Ticket
		err error
	)

	if t.TicketID, err = strconv.Atoi(row[0]); err != nil {
		return t, fmt.Errorf("ticket_id: %w", err)
	}
	t.Code = row[1]
	t.Prefix = row[2]
	t.Status = entity.TicketStatus(row[3])
	if t.Scanned, err = strconv.ParseBool(row[4]); err != nil {
		return t, fmt.Errorf("scanned: %w", err)
	}
	if t.ScanCount, err = strconv.Atoi(row[5]); err != nil {
		return t, fmt.Errorf("scan_count: %w", err)
	}
	if t.FirstScanTime, err = parseNullableTime(row[6]); err != nil {
		return t, fmt.Errorf("first_scan_time: %w", err)
	}
	if t.LastScanTime, err = parseNullableTime(row[7]); err != nil {
		return t, fmt.Errorf("last_scan_time: %w", err)
	}
	if t.CreatedAt, err = parseTime(row[8]); err != nil {
		return t, fmt.Errorf("created_at: %w", err)
	}
	return t, nil
}

func formatNullableTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timeLayout)
}

func parseNullableTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseTime(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseTime accepts RFC 3339 and ISO 8601 without an offset.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err == nil {
		return t, nil
	}
	for _, layout := range localTimeLayouts {
		if lt, lerr := time.ParseInLocation(layout, s, time.UTC); lerr == nil {
			return lt, nil
		}
	}
	return time.Time{}, err
}
