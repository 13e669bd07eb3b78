package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/hoermto/unifi-energy/api"
	"github.com/hoermto/unifi-energy/core"
	"github.com/hoermto/unifi-energy/util"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Total is the persisted energy total of an accumulator
type Total struct {
	UniqueID  string `gorm:"primarykey"`
	EntityID  string
	Value     string
	UpdatedAt time.Time
}

// Store persists accumulator totals
type Store struct {
	log *util.Logger
	db  *gorm.DB
}

var _ api.Store = (*Store)(nil)

// NewStore creates a totals store and migrates its schema
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(new(Total)); err != nil {
		return nil, fmt.Errorf("failed to migrate totals: %w", err)
	}

	return &Store{
		log: util.NewLogger("db"),
		db:  db,
	}, nil
}

// Restore returns the persisted total of an accumulator
func (s *Store) Restore(uniqueID string) (string, error) {
	var t Total

	if err := s.db.Where(&Total{UniqueID: uniqueID}).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%s: %w", uniqueID, api.ErrNotFound)
		}
		return "", err
	}

	return t.Value, nil
}

// Save persists the unrounded total
func (s *Store) Save(state api.EnergyState) error {
	t := Total{
		UniqueID:  state.UniqueID,
		EntityID:  state.EntityID,
		Value:     util.FormatFloat(state.Total),
		UpdatedAt: time.Now(),
	}

	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&t).Error
}

// Totals returns all persisted totals
func (s *Store) Totals() ([]Total, error) {
	var res []Total
	err := s.db.Order("unique_id").Find(&res).Error
	return res, err
}

// Run persists energy values received from the publish channel
func (s *Store) Run(in <-chan util.Param) {
	for p := range in {
		if p.Key != core.EnergyKey {
			continue
		}

		state, ok := p.Val.(api.EnergyState)
		if !ok || state.UniqueID == "" {
			continue
		}

		if err := s.Save(state); err != nil {
			s.log.ERROR.Printf("persist %s: %v", state.EntityID, err)
		}
	}
}
