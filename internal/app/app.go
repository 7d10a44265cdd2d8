// wiring storage, record set, renderers and the SQLite store into services
package app

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ds124wfegd/ticketqr/config"
	"github.com/ds124wfegd/ticketqr/internal/database"
	"github.com/ds124wfegd/ticketqr/internal/database/sqlite"
	"github.com/ds124wfegd/ticketqr/internal/entity"
	"github.com/ds124wfegd/ticketqr/internal/pkg/codegen"
	"github.com/ds124wfegd/ticketqr/internal/pkg/renderer"
	sqlitedb "github.com/ds124wfegd/ticketqr/internal/pkg/sqlite"
	"github.com/ds124wfegd/ticketqr/internal/pkg/storage"
	"github.com/ds124wfegd/ticketqr/internal/service"
	"github.com/ds124wfegd/ticketqr/internal/transport"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

type App struct {
	cfg     *config.Config
	storage storage.FileStorage
	repo    database.TicketRepository
	db      *gorm.DB
}

func New(cfg *config.Config) *App {
	fileStorage := storage.NewFileStorage(cfg.Records.BaseDir)
	return &App{
		cfg:     cfg,
		storage: fileStorage,
		repo:    database.NewTicketRepository(fileStorage, cfg.Records.JSONFile, cfg.Records.CSVFile),
	}
}

func (a *App) Config() *config.Config {
	return a.cfg
}

func (a *App) TicketService() service.TicketService {
	return service.NewTicketService(a.repo, codegen.NewRandomCodeGenerator(), &service.TicketServiceConfig{
		MaxAttempts: a.cfg.Generator.MaxAttempts,
	})
}

func (a *App) RenderService() (service.RenderService, error) {
	rc := a.cfg.Render

	encoder, err := renderer.NewSymbolEncoder(rc.Symbology, rc.ModuleSize)
	if err != nil {
		return nil, err
	}
	ticketRenderer, err := renderer.NewTicketRenderer(encoder, ticketLayout(rc.Ticket))
	if err != nil {
		return nil, err
	}

	return service.NewRenderService(a.repo, a.storage, &service.RenderServiceConfig{
		OutputDirs: map[entity.ArtifactKind]string{
			entity.ArtifactTicket: rc.TicketDir,
			entity.ArtifactSymbol: rc.SymbolDir,
		},
		Workers:       rc.Workers,
		ProgressEvery: rc.ProgressEvery,
	}, ticketRenderer, renderer.NewSymbolRenderer(encoder)), nil
}

// ImportService opens the database on first use so that generate and
// render never touch it.
func (a *App) ImportService() (service.ImportService, error) {
	if a.db == nil {
		path := a.cfg.Database.Path
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}

		db, err := sqlitedb.NewSqliteDB(path, &sqlite.TicketModel{})
		if err != nil {
			return nil, err
		}
		a.db = db
		logrus.WithField("path", path).Debug("SQLite database opened")
	}

	store := sqlite.NewTicketStore(a.db, a.cfg.Database.BatchSize)
	return service.NewImportService(a.repo, store), nil
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	err := sqlitedb.Close(a.db)
	a.db = nil
	return err
}

func ticketLayout(tc config.TicketConfig) renderer.TicketLayout {
	return renderer.TicketLayout{
		Width:        tc.Width,
		Height:       tc.Height,
		SymbolSize:   tc.SymbolSize,
		SymbolX:      tc.SymbolX,
		SymbolY:      tc.SymbolY,
		Title:        tc.Title,
		Instructions: tc.Instructions,
		TitleFont:    renderer.FontSpec{Path: tc.TitleFont.Path, Size: tc.TitleFont.Size},
		CodeFont:     renderer.FontSpec{Path: tc.CodeFont.Path, Size: tc.CodeFont.Size},
		InfoFont:     renderer.FontSpec{Path: tc.InfoFont.Path, Size: tc.InfoFont.Size},
	}
}

// Bootstrap parses the loaded configuration, sets up logging and returns
// the service factory used by the command tree.
func Bootstrap(v *viper.Viper) (transport.ServiceFactory, error) {
	cfg, err := config.ParseConfig(v)
	if err != nil {
		return nil, err
	}
	if err := SetupLogger(cfg.Log, os.Stderr); err != nil {
		return nil, err
	}
	return New(cfg), nil
}

// Execute runs the command tree until it finishes or SIGINT/SIGTERM
// cancels it.
func Execute(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := transport.InitCommands(config.NewViper(), Bootstrap)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
