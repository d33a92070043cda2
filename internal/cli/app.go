package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"os"

	"github.com/dmitrijs2005/mediauploader/internal/config"
	"github.com/dmitrijs2005/mediauploader/internal/device"
	"github.com/dmitrijs2005/mediauploader/internal/events"
	"github.com/dmitrijs2005/mediauploader/internal/history"
	"github.com/dmitrijs2005/mediauploader/internal/logging"
	"github.com/dmitrijs2005/mediauploader/internal/pipeline"
	"github.com/dmitrijs2005/mediauploader/internal/router"
	"github.com/dmitrijs2005/mediauploader/internal/storage"
	"github.com/dmitrijs2005/mediauploader/internal/uploadset"
)

// App wires the uploader together behind the REPL. It is also the
// interactive boundary for device episodes: App implements both
// router.Prompter and router.Handoff.
type App struct {
	config  *config.Config
	log     logging.Logger
	set     *uploadset.Set
	cancel  *uploadset.Cancel
	pipe    *pipeline.Pipeline
	router  *router.Router
	watcher *device.PollWatcher
	journal history.Repository
	db      *sql.DB
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {

	s3Secret := c.S3SecretKey
	if s3Secret == "" {
		b, err := GetSecret("Enter S3 secret key: ", os.Stdout)
		if err != nil {
			return nil, err
		}
		s3Secret = string(b)
	}

	store, err := storage.NewS3Store(ctx, storage.Config{
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		AccessKey:    c.S3AccessKey,
		SecretKey:    s3Secret,
	})
	if err != nil {
		return nil, err
	}

	db, err := history.InitDatabase(ctx, c.HistoryDSN)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	app := &App{
		config:  c,
		log:     log,
		set:     uploadset.New(),
		cancel:  &uploadset.Cancel{},
		journal: history.NewSQLiteRepository(db),
		db:      db,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}

	secret := c.CatalogSecret
	if secret == "" {
		b, err := GetSecret("Enter event catalog secret: ", os.Stdout)
		if err != nil {
			return nil, err
		}
		secret = string(b)
	}

	app.pipe = pipeline.New(store, app.set, app.cancel, log)

	catalog := events.NewHTTPCatalog(c.CatalogBaseURL, []byte(secret))
	matcher := events.NewMatcher(catalog, int(c.OrganizationID))

	app.router = router.New(router.Config{
		DeviceFolders:     c.DeviceFolders,
		DownloadRoot:      c.DownloadRoot,
		LostRoot:          c.LostRoot,
		LookupWindow:      c.LookupWindow,
		StalenessWarn:     c.StalenessWarn,
		DriveRootFormat:   c.DriveRootFormat,
		DeleteAfterUpload: c.DeleteAfterUpload,
	}, matcher, app, app, log)

	app.watcher = device.NewPollWatcher(c.DriveRootFormat, firstLetter(c.FirstDeviceLetter), c.PollInterval, log)

	return app, nil
}

// firstLetter enforces a usable scan start even on empty config.
func firstLetter(s string) rune {
	if s == "" {
		return 'D'
	}
	return rune(s[0])
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}
