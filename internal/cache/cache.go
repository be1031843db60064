package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ParseResult is a cached conversion result. Results are keyed by the input
// checksum plus the format and engine that produced them, so the same
// document converted with different settings is cached separately.
type ParseResult struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	Checksum string `gorm:"size:64;not null;uniqueIndex:idx_result_key"`
	Format   string `gorm:"size:20;not null;uniqueIndex:idx_result_key"`
	Engine   string `gorm:"size:20;not null;uniqueIndex:idx_result_key"`

	Content string

	CreationTime time.Time
}

// Cache stores parse results in a local sqlite database so repeat
// conversions of the same document skip the API.
type Cache struct {
	db *gorm.DB
}

// Open creates or opens the cache database under dir.
func Open(dir string) (*Cache, error) {
	path := filepath.Join(dir, "pdf2x.db")
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if err := getMigrator(db).Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate cache database: %w", err)
	}

	return &Cache{db: db}, nil
}

func getMigrator(db *gorm.DB) *gormigrate.Gormigrate {
	migrator := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "0",
			Migrate: func(txn *gorm.DB) error {
				return txn.AutoMigrate(&ParseResult{})
			},
		},
	})

	// Run by the migrator when no previous migration is detected; creates the
	// latest schema directly instead of replaying every migration.
	migrator.InitSchema(func(txn *gorm.DB) error {
		return txn.AutoMigrate(&ParseResult{})
	})

	return migrator
}

// Get returns the cached content for the key, if present.
func (c *Cache) Get(checksum string, format, engine string) (string, bool, error) {
	var result ParseResult
	err := c.db.
		Where("checksum = ? AND format = ? AND engine = ?", checksum, format, engine).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("error querying cache: %w", err)
	}
	return result.Content, true, nil
}

// Put stores content under the key, replacing any previous entry.
func (c *Cache) Put(checksum string, format, engine, content string) error {
	result := ParseResult{
		Id:           uuid.New(),
		Checksum:     checksum,
		Format:       format,
		Engine:       engine,
		Content:      content,
		CreationTime: time.Now(),
	}

	err := c.db.
		Where(ParseResult{Checksum: checksum, Format: format, Engine: engine}).
		Assign(ParseResult{Content: content, CreationTime: result.CreationTime}).
		FirstOrCreate(&result).Error
	if err != nil {
		return fmt.Errorf("error writing cache entry: %w", err)
	}
	return nil
}

// Checksum returns the hex sha256 digest used as the cache key for contents.
func Checksum(contents []byte) string {
	sum := sha256.Sum256(contents)
	return hex.EncodeToString(sum[:])
}
