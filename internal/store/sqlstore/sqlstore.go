// Package sqlstore implements store.KV on a relational database through gorm,
// for deployments that run on MySQL or a local SQLite file instead of Redis.
package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/suPer8Hu/askboard/internal/metrics"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type counter struct {
	Name string `gorm:"primaryKey;size:191"`
	Val  int64  `gorm:"column:val;not null"`
}

func (counter) TableName() string { return "kv_counters" }

type hashField struct {
	Name  string `gorm:"primaryKey;size:191"`
	Field string `gorm:"primaryKey;size:64"`
	Val   string `gorm:"column:val;type:text;not null"`
}

func (hashField) TableName() string { return "kv_hash_fields" }

// listItem rows are ordered by seq ascending; the head of a list has the
// smallest seq. Rows sharing a seq (concurrent pushes) order newest id first.
type listItem struct {
	ID   uint64 `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"size:191;not null;index:idx_kv_list_name_seq,priority:1"`
	Seq  int64  `gorm:"not null;index:idx_kv_list_name_seq,priority:2"`
	Val  string `gorm:"column:val;type:text;not null"`
}

func (listItem) TableName() string { return "kv_list_items" }

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type Store struct {
	db *gorm.DB
}

// Open connects with the named driver ("mysql" or "sqlite") and migrates the schema.
func Open(driver, dsn string) (*Store, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))

	var dialector gorm.Dialector
	switch driver {
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// one writer at a time, otherwise concurrent pushes hit "database is locked"
		sqlDB.SetMaxOpenConns(1)
	}
	return New(db)
}

// New wraps an open gorm handle and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&counter{}, &hashField{}, &listItem{}); err != nil {
		return nil, fmt.Errorf("sqlstore: automigrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Incr(ctx context.Context, key string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.Assignments(map[string]any{"val": gorm.Expr("val + 1")}),
		}).Create(&counter{Name: key, Val: 1}).Error; err != nil {
			return err
		}
		var c counter
		if err := tx.Where("name = ?", key).Take(&c).Error; err != nil {
			return err
		}
		n = c.Val
		return nil
	})
	return n, s.track("incr", err)
}

func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	rows := make([]hashField, 0, len(fields))
	for f, v := range fields {
		rows = append(rows, hashField{Name: key, Field: f, Val: v})
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}, {Name: "field"}},
		DoUpdates: clause.AssignmentColumns([]string{"val"}),
	}).Create(&rows).Error
	return s.track("hset", err)
}

func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	var rows []hashField
	if err := s.db.WithContext(ctx).Where("name = ?", key).Find(&rows).Error; err != nil {
		return nil, s.track("hgetall", err)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Field] = r.Val
	}
	return out, nil
}

func (s *Store) LPush(ctx context.Context, key string, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var head int64
		if err := tx.Model(&listItem{}).
			Select("COALESCE(MIN(seq), 1)").
			Where("name = ?", key).
			Row().Scan(&head); err != nil {
			return err
		}
		items := make([]listItem, len(values))
		for i, v := range values {
			items[i] = listItem{Name: key, Seq: head - 1 - int64(i), Val: v}
		}
		return tx.Create(&items).Error
	})
	return s.track("lpush", err)
}

func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	db := s.db.WithContext(ctx)

	var n int64
	if err := db.Model(&listItem{}).Where("name = ?", key).Count(&n).Error; err != nil {
		return nil, s.track("lrange", err)
	}
	lo, hi, ok := span(n, start, stop)
	if !ok {
		return []string{}, nil
	}

	var items []listItem
	if err := ordered(db.Where("name = ?", key)).
		Offset(int(lo)).
		Limit(int(hi - lo + 1)).
		Find(&items).Error; err != nil {
		return nil, s.track("lrange", err)
	}
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Val
	}
	return out, nil
}

func (s *Store) LTrim(ctx context.Context, key string, start, stop int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint64
		if err := ordered(tx.Model(&listItem{}).Where("name = ?", key)).Pluck("id", &ids).Error; err != nil {
			return err
		}
		lo, hi, ok := span(int64(len(ids)), start, stop)
		drop := make([]uint64, 0)
		for i, id := range ids {
			if !ok || int64(i) < lo || int64(i) > hi {
				drop = append(drop, id)
			}
		}
		if len(drop) == 0 {
			return nil
		}
		return tx.Where("id IN ?", drop).Delete(&listItem{}).Error
	})
	return s.track("ltrim", err)
}

func (s *Store) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&counter{}, &hashField{}, &listItem{}} {
			if err := tx.Where("name IN ?", keys).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return s.track("del", err)
}

func (s *Store) RenameNX(ctx context.Context, src, dst string) (bool, error) {
	moved := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&counter{}, &hashField{}, &listItem{}} {
			var n int64
			if err := tx.Model(model).Where("name = ?", dst).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return nil
			}
		}
		for _, model := range []any{&counter{}, &hashField{}, &listItem{}} {
			res := tx.Model(model).Where("name = ?", src).Update("name", dst)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				moved = true
			}
		}
		return nil
	})
	if err != nil {
		return false, s.track("renamenx", err)
	}
	return moved, nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) track(command string, err error) error {
	if err != nil {
		metrics.StoreErrors.WithLabelValues("sql", command).Inc()
	}
	return err
}

func ordered(q *gorm.DB) *gorm.DB {
	return q.Order("seq ASC").Order("id DESC")
}

// span resolves Redis-style inclusive list bounds against a list of length n.
func span(n, start, stop int64) (lo, hi int64, ok bool) {
	if start < 0 {
		start += n
		if start < 0 {
			start = 0
		}
	}
	if stop < 0 {
		stop += n
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start >= n || start > stop {
		return 0, 0, false
	}
	return start, stop, true
}
