package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second

	slowQueryThreshold = 200 * time.Millisecond
	connMaxIdleTime    = 5 * time.Minute
)

type PostgresOptions struct {
	MaxOpenConns int
	Log          *zap.Logger
}

// GormStore keeps products in the PostgreSQL "products" table. Each call
// runs in its own gorm session, so a pooled connection is held only for
// the duration of one statement.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// OpenPostgres opens a pgx backed pool, wraps it in gorm and creates the
// schema.
func OpenPostgres(ctx context.Context, dsn string, opts PostgresOptions) (*GormStore, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		sqlDB.SetMaxIdleConns(opts.MaxOpenConns)
	}
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: newGormLogger(opts.Log),
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	s := NewGormStore(db)
	if err := s.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

func newGormLogger(log *zap.Logger) gormlogger.Interface {
	if log == nil {
		return gormlogger.Discard
	}
	return gormlogger.New(zap.NewStdLog(log.Named("gorm")), gormlogger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&Product{}); err != nil {
		return fmt.Errorf("migrate products: %w", err)
	}
	return nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
}

func (s *GormStore) List(ctx context.Context, search string) ([]Product, error) {
	out := make([]Product, 0, 16)

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		q := s.db.WithContext(ctx).Order("id ASC")
		if search != "" {
			q = q.Where(`name ILIKE ? ESCAPE '\'`, "%"+escapeLike(search)+"%")
		}
		return q.Find(&out).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if out == nil {
		out = []Product{}
	}
	return out, nil
}

func (s *GormStore) Create(ctx context.Context, in ProductInput) (Product, error) {
	p := in.product(0)

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Create(&p).Error
	})
	if err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (s *GormStore) Get(ctx context.Context, id int64) (Product, bool, error) {
	var p Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.WithContext(ctx).First(&p, id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Product{}, false, nil
	}
	if err != nil {
		return Product{}, false, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, true, nil
}

func (s *GormStore) Update(ctx context.Context, id int64, in ProductInput) (Product, bool, error) {
	var (
		p        Product
		affected int64
	)

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		res := s.db.WithContext(ctx).
			Model(&p).
			Clauses(clause.Returning{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"name":      in.Name,
				"price":     in.Price,
				"stock":     in.Stock,
				"image_url": in.ImageURL,
			})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return Product{}, false, fmt.Errorf("update product %d: %w", id, err)
	}
	if affected == 0 {
		return Product{}, false, nil
	}
	return p, true, nil
}

func (s *GormStore) Delete(ctx context.Context, id int64) (bool, error) {
	var affected int64

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		res := s.db.WithContext(ctx).Delete(&Product{}, id)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return false, fmt.Errorf("delete product %d: %w", id, err)
	}
	return affected > 0, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes search match literally inside a LIKE pattern.
func escapeLike(search string) string {
	return likeEscaper.Replace(search)
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
