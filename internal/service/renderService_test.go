package service

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/ticketqr/internal/database"
	"github.com/ds124wfegd/ticketqr/internal/entity"
	"github.com/ds124wfegd/ticketqr/internal/pkg/renderer"
	"github.com/ds124wfegd/ticketqr/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	kind  entity.ArtifactKind
	fail  map[string]bool
	calls atomic.Int64
}

func (r *fakeRenderer) Kind() entity.ArtifactKind {
	return r.kind
}

func (r *fakeRenderer) Render(t entity.Ticket) (image.Image, error) {
	r.calls.Add(1)
	if r.fail[t.Code] {
		return nil, errors.New("font resource missing")
	}
	return imaging.New(8, 8, color.White), nil
}

type renderFixture struct {
	base    string
	store   storage.FileStorage
	repo    database.TicketRepository
	tickets []entity.Ticket
}

func newRenderFixture(t *testing.T, writeRecords bool) *renderFixture {
	base := t.TempDir()
	store := storage.NewFileStorage(base)
	repo := database.NewTicketRepository(store, "tickets_database.json", "tickets_database.csv")

	created := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	tickets := []entity.Ticket{
		entity.NewTicket(1, "A-1234-BATEC", "A", created),
		entity.NewTicket(2, "A-5678-DOFUG", "A", created),
		entity.NewTicket(3, "B-4321-HIJAK", "B", created),
		entity.NewTicket(4, "B-8765-LEMON", "B", created),
	}
	if writeRecords {
		require.NoError(t, repo.SaveJSON(tickets))
	}

	return &renderFixture{base: base, store: store, repo: repo, tickets: tickets}
}

func testRenderConfig(workers int) *RenderServiceConfig {
	return &RenderServiceConfig{
		OutputDirs: map[entity.ArtifactKind]string{
			entity.ArtifactTicket: "tickets_qr",
			entity.ArtifactSymbol: "qr_codes_only",
		},
		Workers:       workers,
		ProgressEvery: 2,
	}
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func loadAndRender(ctx context.Context, svc RenderService, mode entity.RenderMode) ([]entity.RenderReport, error) {
	records, err := svc.LoadRecords()
	if err != nil {
		return nil, err
	}
	return svc.Render(ctx, records, mode)
}

func TestRender_Modes(t *testing.T) {
	tests := []struct {
		name      string
		mode      entity.RenderMode
		wantKinds []entity.ArtifactKind
		wantDirs  []string
	}{
		{name: "tickets", mode: entity.RenderTickets, wantKinds: []entity.ArtifactKind{entity.ArtifactTicket}, wantDirs: []string{"tickets_qr"}},
		{name: "symbols", mode: entity.RenderSymbols, wantKinds: []entity.ArtifactKind{entity.ArtifactSymbol}, wantDirs: []string{"qr_codes_only"}},
		{name: "both", mode: entity.RenderBoth, wantKinds: []entity.ArtifactKind{entity.ArtifactTicket, entity.ArtifactSymbol}, wantDirs: []string{"tickets_qr", "qr_codes_only"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newRenderFixture(t, true)
			svc := NewRenderService(fx.repo, fx.store, testRenderConfig(1),
				&fakeRenderer{kind: entity.ArtifactTicket},
				&fakeRenderer{kind: entity.ArtifactSymbol},
			)

			reports, err := loadAndRender(context.Background(), svc, tt.mode)
			require.NoError(t, err)
			require.Len(t, reports, len(tt.wantKinds))

			for i, report := range reports {
				assert.Equal(t, tt.wantKinds[i], report.Kind)
				assert.Equal(t, 4, report.Total)
				assert.Equal(t, 4, report.Rendered)
				assert.Zero(t, report.Failed)
				assert.Equal(t, filepath.Join(fx.base, tt.wantDirs[i]), report.OutputDir)
				assert.Len(t, listFiles(t, report.OutputDir), 4)
			}
		})
	}
}

func TestRender_FileNamesFollowCodes(t *testing.T) {
	fx := newRenderFixture(t, true)

	enc, err := renderer.NewSymbolEncoder(renderer.SymbologyQR, 4)
	require.NoError(t, err)
	layout := renderer.DefaultTicketLayout()
	layout.TitleFont.Path, layout.CodeFont.Path, layout.InfoFont.Path = "", "", ""
	ticketRenderer, err := renderer.NewTicketRenderer(enc, layout)
	require.NoError(t, err)

	svc := NewRenderService(fx.repo, fx.store, testRenderConfig(2), ticketRenderer, renderer.NewSymbolRenderer(enc))

	_, err = loadAndRender(context.Background(), svc, entity.RenderBoth)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(fx.base, "tickets_qr", "ticket_A_1234_BATEC.png"))
	assert.FileExists(t, filepath.Join(fx.base, "qr_codes_only", "qr_A_1234_BATEC.png"))
	assert.FileExists(t, filepath.Join(fx.base, "qr_codes_only", "qr_B_8765_LEMON.png"))
}

func TestRender_PerRecordFailuresAreSkipped(t *testing.T) {
	fx := newRenderFixture(t, false)
	fx.tickets = append(fx.tickets, entity.NewTicket(5, "not-a-code", "A", time.Now().UTC()))
	require.NoError(t, fx.repo.SaveJSON(fx.tickets))

	fake := &fakeRenderer{kind: entity.ArtifactSymbol, fail: map[string]bool{"A-5678-DOFUG": true}}
	svc := NewRenderService(fx.repo, fx.store, testRenderConfig(3), fake)

	reports, err := loadAndRender(context.Background(), svc, entity.RenderSymbols)
	require.NoError(t, err)
	require.Len(t, reports, 1)

	assert.Equal(t, 5, reports[0].Total)
	assert.Equal(t, 3, reports[0].Rendered)
	assert.Equal(t, 2, reports[0].Failed)
	assert.Equal(t, int64(4), fake.calls.Load(), "malformed codes never reach the renderer")

	files := listFiles(t, reports[0].OutputDir)
	assert.ElementsMatch(t, []string{
		"qr_A_1234_BATEC.png",
		"qr_B_4321_HIJAK.png",
		"qr_B_8765_LEMON.png",
	}, files)
}

func TestRender_UndecodableRecordsCountAsFailures(t *testing.T) {
	fx := newRenderFixture(t, false)
	body := `[
  {"ticket_id": 1, "code": "A-1234-BATEC", "prefix": "A", "status": "valid", "scanned": false, "scan_count": 0,
   "first_scan_time": null, "last_scan_time": null, "created_at": "2025-01-15T10:30:00.123456"},
  {"ticket_id": 2, "code": "A-5678-DOFUG", "prefix": "A", "status": "valid", "scanned": false, "scan_count": 0,
   "first_scan_time": null, "last_scan_time": null, "created_at": "not a time"},
  {"ticket_id": 3, "code": "B-4321-HIJAK", "prefix": "B", "status": "valid", "scanned": false, "scan_count": 0,
   "first_scan_time": null, "last_scan_time": null, "created_at": "2025-01-15T10:30:00Z"}
]`
	require.NoError(t, os.WriteFile(filepath.Join(fx.base, "tickets_database.json"), []byte(body), 0644))

	fake := &fakeRenderer{kind: entity.ArtifactSymbol}
	svc := NewRenderService(fx.repo, fx.store, testRenderConfig(2), fake)

	reports, err := loadAndRender(context.Background(), svc, entity.RenderSymbols)
	require.NoError(t, err)
	require.Len(t, reports, 1)

	assert.Equal(t, 3, reports[0].Total)
	assert.Equal(t, 2, reports[0].Rendered)
	assert.Equal(t, 1, reports[0].Failed)
	assert.ElementsMatch(t, []string{"qr_A_1234_BATEC.png", "qr_B_4321_HIJAK.png"}, listFiles(t, reports[0].OutputDir))
}

func TestRender_MissingRecordSetWritesNothing(t *testing.T) {
	fx := newRenderFixture(t, false)
	fake := &fakeRenderer{kind: entity.ArtifactTicket}
	svc := NewRenderService(fx.repo, fx.store, testRenderConfig(1), fake, &fakeRenderer{kind: entity.ArtifactSymbol})

	reports, err := loadAndRender(context.Background(), svc, entity.RenderBoth)
	assert.ErrorIs(t, err, entity.ErrRecordSetNotFound)
	assert.Empty(t, reports)
	assert.Zero(t, fake.calls.Load())

	assert.Empty(t, listFiles(t, fx.base))
}

func TestRender_MissingRenderer(t *testing.T) {
	fx := newRenderFixture(t, true)
	svc := NewRenderService(fx.repo, fx.store, testRenderConfig(1), &fakeRenderer{kind: entity.ArtifactSymbol})

	_, err := loadAndRender(context.Background(), svc, entity.RenderBoth)
	assert.Error(t, err)
	assert.NoDirExists(t, filepath.Join(fx.base, "qr_codes_only"))
}

func TestRender_Cancelled(t *testing.T) {
	fx := newRenderFixture(t, true)
	fake := &fakeRenderer{kind: entity.ArtifactTicket}
	svc := NewRenderService(fx.repo, fx.store, testRenderConfig(1), fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reports, err := loadAndRender(ctx, svc, entity.RenderTickets)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, reports, 1)
	assert.Zero(t, reports[0].Rendered)
	assert.Zero(t, fake.calls.Load())
}
