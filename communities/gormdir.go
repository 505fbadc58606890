package communities

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// CommunityRecord is the stored form of one community's rule metadata. The
// rule fields stay as raw JSON so schema drift in the metadata doesn't
// require migrations; normalization happens at load (ProfileFromRuleData).
type CommunityRecord struct {
	gorm.Model
	Name     string `gorm:"uniqueIndex"`
	RuleData []byte
}

// LegacyRuleRecord is the older ruleset schema, kept verbatim. Only consulted
// when no CommunityRecord exists.
type LegacyRuleRecord struct {
	gorm.Model
	Name            string `gorm:"uniqueIndex"`
	LinkPolicy      string
	CooldownMinutes *int
	DailyLimit      *int
}

// GormDirectory serves Directory lookups from the relational store. The
// Upsert write path exists for the admin/ops surface only; evaluation never
// writes.
type GormDirectory struct {
	db *gorm.DB
}

var _ Directory = (*GormDirectory)(nil)

func NewGormDirectory(db *gorm.DB) (*GormDirectory, error) {
	if err := db.AutoMigrate(&CommunityRecord{}, &LegacyRuleRecord{}); err != nil {
		return nil, fmt.Errorf("migrating community tables: %w", err)
	}
	return &GormDirectory{db: db}, nil
}

func (d *GormDirectory) Lookup(ctx context.Context, name string) (*Profile, error) {
	var rec CommunityRecord
	err := d.db.WithContext(ctx).First(&rec, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("community lookup failed: %w", err)
	}

	var raw map[string]any
	if len(rec.RuleData) > 0 {
		if err := json.Unmarshal(rec.RuleData, &raw); err != nil {
			return nil, fmt.Errorf("parsing rule data for %s: %w", name, err)
		}
	}
	return ProfileFromRuleData(rec.Name, raw), nil
}

func (d *GormDirectory) LookupLegacy(ctx context.Context, name string) (*LegacyRuleSet, error) {
	var rec LegacyRuleRecord
	err := d.db.WithContext(ctx).First(&rec, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("legacy rule lookup failed: %w", err)
	}
	return &LegacyRuleSet{
		Name:            rec.Name,
		LinkPolicy:      LinkPolicy(rec.LinkPolicy),
		CooldownMinutes: rec.CooldownMinutes,
		DailyLimit:      rec.DailyLimit,
	}, nil
}

// Upsert stores (or replaces) a community's raw rule metadata.
func (d *GormDirectory) Upsert(ctx context.Context, name string, raw map[string]any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encoding rule data: %w", err)
	}

	var rec CommunityRecord
	err = d.db.WithContext(ctx).First(&rec, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		rec = CommunityRecord{Name: name, RuleData: data}
		if err := d.db.WithContext(ctx).Create(&rec).Error; err != nil {
			return fmt.Errorf("creating community record: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("community lookup failed: %w", err)
	}

	rec.RuleData = data
	if err := d.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("updating community record: %w", err)
	}
	return nil
}
