package scenario

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/replaykit/replaykit/logger"
	"github.com/replaykit/replaykit/step"
	"gorm.io/gorm"
)

// StepList stores an ordered step sequence as a JSON column.
type StepList []step.Step

// Value implements driver.Valuer.
func (l StepList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]step.Step{})
	}
	return json.Marshal([]step.Step(l))
}

// Scan implements sql.Scanner.
func (l *StepList) Scan(value interface{}) error {
	if value == nil {
		*l = StepList{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("failed to scan StepList: unsupported column type")
	}

	var steps []step.Step
	if err := json.Unmarshal(raw, &steps); err != nil {
		return err
	}
	*l = StepList(steps)
	return nil
}

// Record is the database row for a stored scenario. The auto-increment Seq
// preserves insertion order so FindByName can pick the latest duplicate.
type Record struct {
	Seq       uint      `gorm:"primaryKey;autoIncrement"`
	ID        uuid.UUID `gorm:"type:char(36);not null;uniqueIndex"`
	Domain    string    `gorm:"type:varchar(255);not null;index:idx_scenarios_domain"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Steps     StepList  `gorm:"type:json"`
	CreatedAt time.Time
}

// TableName overrides the GORM default.
func (Record) TableName() string {
	return "scenarios"
}

func (r *Record) toScenario() *Scenario {
	return &Scenario{
		ID:        r.ID,
		Domain:    r.Domain,
		Name:      r.Name,
		Steps:     []step.Step(r.Steps),
		CreatedAt: r.CreatedAt,
	}
}

// GormStore implements Store on a GORM database (SQLite or MySQL).
type GormStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewGormStore creates a database-backed scenario store.
func NewGormStore(db *gorm.DB, log logger.Logger) *GormStore {
	return &GormStore{db: db, logger: log}
}

// Migrate creates the scenarios table if it does not exist.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(&Record{})
}

// Add persists the scenario. Duplicate names within a domain coexist as
// separate rows.
func (s *GormStore) Add(ctx context.Context, sc *Scenario) error {
	if err := sc.Validate(); err != nil {
		return err
	}

	rec := Record{
		ID:        sc.ID,
		Domain:    sc.Domain,
		Name:      sc.Name,
		Steps:     StepList(sc.Steps),
		CreatedAt: sc.CreatedAt,
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		s.logger.Error(ctx, "failed to store scenario", logger.Fields{
			"error":  err.Error(),
			"domain": sc.Domain,
			"name":   sc.Name,
		})
		return err
	}

	s.logger.Info(ctx, "scenario stored", logger.Fields{
		"scenario_id": rec.ID.String(),
		"domain":      sc.Domain,
		"name":        sc.Name,
		"steps":       len(sc.Steps),
	})
	return nil
}

// List returns the domain's scenarios in insertion order.
func (s *GormStore) List(ctx context.Context, domain string) ([]*Scenario, error) {
	var recs []Record
	err := s.db.WithContext(ctx).
		Where("domain = ?", domain).
		Order("seq ASC").
		Find(&recs).Error
	if err != nil {
		s.logger.Error(ctx, "failed to list scenarios", logger.Fields{
			"error":  err.Error(),
			"domain": domain,
		})
		return nil, err
	}

	out := make([]*Scenario, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toScenario())
	}
	return out, nil
}

// FindByName returns the most recently added scenario with the given name.
func (s *GormStore) FindByName(ctx context.Context, domain, name string) (*Scenario, error) {
	var rec Record
	err := s.db.WithContext(ctx).
		Where("domain = ? AND name = ?", domain, name).
		Order("seq DESC").
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScenarioNotFound
		}
		s.logger.Error(ctx, "failed to find scenario", logger.Fields{
			"error":  err.Error(),
			"domain": domain,
			"name":   name,
		})
		return nil, err
	}
	return rec.toScenario(), nil
}
