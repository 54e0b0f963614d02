package zenithds

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zenithds/zenithds/internal/domain/file"
	"github.com/zenithds/zenithds/internal/domain/table"
	"github.com/zenithds/zenithds/internal/logger"
	collectionrepo "github.com/zenithds/zenithds/internal/repository/collection"
	"github.com/zenithds/zenithds/internal/repository/csvfile"
	collectionuc "github.com/zenithds/zenithds/internal/usecase/collection"
	queryuc "github.com/zenithds/zenithds/internal/usecase/query"
)

const defaultDataPath = "./data"

// Table is a header plus rows; every row has the header's length.
type Table = table.Table

// Internal interfaces for substitution in tests.
type queryUseCase interface {
	Select(ctx context.Context, collection string, fields, predicates []string) (table.Table, error)
}

type collectionUseCase interface {
	Insert(ctx context.Context, collection, filename string, header []string, rows [][]string) error
	Delete(ctx context.Context, collection, filename string) error
	Render(ctx context.Context, data []byte) (table.Table, error)
}

// Client is the zenithds SDK entry point. It is safe for concurrent use.
type Client struct {
	repo     *collectionrepo.Repo
	querySvc queryUseCase
	collSvc  collectionUseCase
	log      *zap.Logger
	obs      *observer
}

// New creates a Client over the collections under the data path.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		dataPath:     defaultDataPath,
		workers:      file.DefaultGroups,
		headerSample: collectionuc.DefaultHeaderSample,
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.dataPath == "" {
		return nil, fmt.Errorf("zenithds: data path required (use WithDataPath): %w", ErrQuery)
	}

	repo, err := collectionrepo.New(collectionrepo.Config{
		Root:    cfg.dataPath,
		Mode:    collectionrepo.FilenameMode(cfg.mode),
		Pattern: cfg.pattern,
	})
	if err != nil {
		return nil, fmt.Errorf("zenithds: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	log := cfg.engineLogger
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		repo:     repo,
		querySvc: queryuc.New(repo, csvfile.NewScanner()).WithWorkers(cfg.workers),
		collSvc:  collectionuc.New(repo).WithHeaderSample(cfg.headerSample),
		log:      log,
		obs:      obs,
	}, nil
}

// Ping checks that the data path is an accessible directory.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe(operation{name: "ping", start: start, err: err}) }()

	if err = c.repo.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Select returns the rows of every eligible file of the collection that
// satisfy all predicates, projected onto fields (all columns when empty).
// Predicates have the form `<field> <op> <value>`; a field starting with "__"
// filters file names instead of rows. Row order is not deterministic.
func (c *Client) Select(
	ctx context.Context, collection string, fields, predicates []string,
) (t Table, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe(operation{
			name: "select", collection: collection, rows: len(t.Rows), start: start, err: err,
		})
	}()

	t, err = c.querySvc.Select(c.engineContext(ctx), collection, fields, predicates)
	if err != nil {
		return Table{}, fmt.Errorf("select: %w", err)
	}
	return t, nil
}

// Insert stores header and rows as filename in the collection. The header
// must match the header of the collection's existing files.
func (c *Client) Insert(
	ctx context.Context, collection, filename string, header []string, rows [][]string,
) (err error) {
	start := time.Now()
	defer func() {
		c.obs.observe(operation{name: "insert", collection: collection, start: start, err: err})
	}()

	if err = c.collSvc.Insert(c.engineContext(ctx), collection, filename, header, rows); err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

// Delete removes filename from the collection.
func (c *Client) Delete(ctx context.Context, collection, filename string) (err error) {
	start := time.Now()
	defer func() {
		c.obs.observe(operation{name: "delete", collection: collection, start: start, err: err})
	}()

	if err = c.collSvc.Delete(c.engineContext(ctx), collection, filename); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// Render parses raw CSV the way a scan would, without storing it.
func (c *Client) Render(ctx context.Context, data []byte) (t Table, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe(operation{name: "render", rows: len(t.Rows), start: start, err: err})
	}()

	t, err = c.collSvc.Render(c.engineContext(ctx), data)
	if err != nil {
		return Table{}, fmt.Errorf("render: %w", err)
	}
	return t, nil
}

func (c *Client) engineContext(ctx context.Context) context.Context {
	return logger.ContextWithLogger(ctx, c.log)
}
