package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"research-summary/internal/search"
	"research-summary/internal/summary"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("research record not found")

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Record is one generated research summary.
type Record struct {
	ID            string         `gorm:"primaryKey;size:36" json:"id"`
	Query         string         `gorm:"type:text;not null" json:"query"`
	CustomContent string         `gorm:"type:text" json:"customContent,omitempty"`
	Sources       datatypes.JSON `json:"sources"`
	Summary       string         `gorm:"type:text;not null" json:"summary"`
	Sections      datatypes.JSON `json:"sections"`
	Model         string         `gorm:"size:100" json:"model"`
	CreatedAt     time.Time      `gorm:"index" json:"createdAt"`
}

// NewRecord builds a record, storing sources and the parsed sections as JSON.
func NewRecord(query, customContent string, sources []search.Result, raw, model string) (*Record, error) {
	if sources == nil {
		sources = []search.Result{}
	}
	src, err := json.Marshal(sources)
	if err != nil {
		return nil, fmt.Errorf("encode sources: %w", err)
	}
	sections, err := json.Marshal(summary.Parse(raw))
	if err != nil {
		return nil, fmt.Errorf("encode sections: %w", err)
	}
	return &Record{
		Query:         query,
		CustomContent: customContent,
		Sources:       datatypes.JSON(src),
		Summary:       raw,
		Sections:      datatypes.JSON(sections),
		Model:         model,
	}, nil
}

// SourceList decodes the stored search results.
func (r *Record) SourceList() ([]search.Result, error) {
	var out []search.Result
	if len(r.Sources) == 0 {
		return []search.Result{}, nil
	}
	if err := json.Unmarshal(r.Sources, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Formatted decodes the stored sections, re-parsing the raw text when they
// are missing.
func (r *Record) Formatted() summary.Formatted {
	var f summary.Formatted
	if len(r.Sections) == 0 || json.Unmarshal(r.Sections, &f) != nil {
		return summary.Parse(r.Summary)
	}
	return f
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Record{})
}

// Create assigns an id and timestamp when missing and inserts rec.
func (s *Store) Create(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(rec).Error
}

func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	var rec Record
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns the newest records first. limit is clamped to 1..MaxListLimit,
// defaulting to DefaultListLimit.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	var recs []Record
	err := s.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}
