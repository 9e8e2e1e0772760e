package model

import (
	"fmt"

	"github.com/ariebrainware/clinic-reservation/slot"
	"gorm.io/gorm"
)

// TreatmentItem is the persisted form of a bookable item and its unit cost.
// Items are deactivated, never deleted, so historical reservations keep
// resolving to a name.
// @Description Treatment item information
type TreatmentItem struct {
	gorm.Model
	Name           string `json:"name" gorm:"column:name;type:varchar(191);uniqueIndex;not null" example:"acupuncture"`
	StandaloneCost int    `json:"standalone_cost" gorm:"column:standalone_cost;not null" example:"1"`
	CompoundCost   int    `json:"compound_cost" gorm:"column:compound_cost;not null" example:"1"`
	Category       string `json:"category" gorm:"column:category;type:varchar(64);index" example:"basic"`
	Active         bool   `json:"active" gorm:"column:active;default:true" example:"true"`
	SortOrder      int    `json:"sort_order" gorm:"column:sort_order" example:"1"`
}

// ToSlot converts the row to the engine's item type.
func (t TreatmentItem) ToSlot() slot.TreatmentItem {
	return slot.TreatmentItem{
		Name:           t.Name,
		StandaloneCost: t.StandaloneCost,
		CompoundCost:   t.CompoundCost,
		Category:       t.Category,
		Active:         t.Active,
		SortOrder:      t.SortOrder,
	}
}

// ListTreatmentItems returns items ordered for display. Inactive items are
// included only when all is true.
func ListTreatmentItems(db *gorm.DB, all bool) ([]TreatmentItem, error) {
	var items []TreatmentItem
	query := db.Order("sort_order ASC").Order("name ASC")
	if !all {
		query = query.Where("active = ?", true)
	}
	err := query.Find(&items).Error
	return items, err
}

// SlotItems loads every item, active or not, in engine form.
func SlotItems(db *gorm.DB) ([]slot.TreatmentItem, error) {
	rows, err := ListTreatmentItems(db, true)
	if err != nil {
		return nil, err
	}
	out := make([]slot.TreatmentItem, len(rows))
	for i, r := range rows {
		out[i] = r.ToSlot()
	}
	return out, nil
}

// SeedTreatmentItems inserts catalogue items missing from the table.
// Existing rows are left alone so edits made through the API survive a
// restart.
func SeedTreatmentItems(db *gorm.DB, items []slot.TreatmentItem) error {
	for _, it := range items {
		var existing TreatmentItem
		err := db.Where("name = ?", it.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		row := TreatmentItem{
			Name:           it.Name,
			StandaloneCost: it.StandaloneCost,
			CompoundCost:   it.CompoundCost,
			Category:       it.Category,
			Active:         it.Active,
			SortOrder:      it.SortOrder,
		}
		if err := db.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to seed treatment item %s: %w", it.Name, err)
		}
		// gorm skips zero values that have a column default
		if !it.Active {
			if err := db.Model(&row).Update("active", false).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
