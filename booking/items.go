package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ariebrainware/clinic-reservation/model"
	"github.com/ariebrainware/clinic-reservation/slot"
	"github.com/ariebrainware/clinic-reservation/util"
	"gorm.io/gorm"
)

// ErrItemNotFound is returned when a treatment item id does not exist.
var ErrItemNotFound = errors.New("treatment item not found")

// ItemPatch holds the fields of a treatment item to change. Nil fields are
// left untouched.
type ItemPatch struct {
	StandaloneCost *int
	CompoundCost   *int
	Category       *string
	Active         *bool
	SortOrder      *int
}

func validateCosts(standalone, compound int) error {
	if standalone <= 0 {
		return fmt.Errorf("%w: standalone cost must be positive", slot.ErrInvalidRequest)
	}
	if compound < 0 {
		return fmt.Errorf("%w: compound cost must not be negative", slot.ErrInvalidRequest)
	}
	return nil
}

func (s *Service) itemChanged(item model.TreatmentItem, msg string) {
	s.items.Invalidate()
	util.LogReservationEvent(util.ReservationEvent{
		EventType: util.EventItemChanged,
		Message:   msg,
		Details: map[string]interface{}{
			"name":            item.Name,
			"standalone_cost": item.StandaloneCost,
			"compound_cost":   item.CompoundCost,
			"active":          item.Active,
		},
	})
}

// ListItems returns the treatment items, inactive ones only when all is set.
func (s *Service) ListItems(ctx context.Context, all bool) ([]model.TreatmentItem, error) {
	return model.ListTreatmentItems(s.db.WithContext(ctx), all)
}

// CreateItem registers a new active treatment item.
func (s *Service) CreateItem(ctx context.Context, item model.TreatmentItem) (model.TreatmentItem, error) {
	item.Name = util.NormalizeName(item.Name)
	if item.Name == "" {
		return model.TreatmentItem{}, fmt.Errorf("%w: item name is empty", slot.ErrInvalidRequest)
	}
	if err := validateCosts(item.StandaloneCost, item.CompoundCost); err != nil {
		return model.TreatmentItem{}, err
	}
	if item.CompoundCost == 0 {
		item.CompoundCost = item.StandaloneCost
	}
	item.ID = 0
	item.Active = true

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&model.TreatmentItem{}).Where("name = ?", item.Name).Count(&count).Error; err != nil {
		return model.TreatmentItem{}, err
	}
	if count > 0 {
		return model.TreatmentItem{}, fmt.Errorf("%w: treatment item %q already exists", slot.ErrInvalidRequest, item.Name)
	}
	if err := db.Create(&item).Error; err != nil {
		return model.TreatmentItem{}, err
	}
	s.itemChanged(item, "treatment item created")
	return item, nil
}

// UpdateItem applies patch to the item with id.
func (s *Service) UpdateItem(ctx context.Context, id uint, patch ItemPatch) (model.TreatmentItem, error) {
	db := s.db.WithContext(ctx)
	var item model.TreatmentItem
	if err := db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.TreatmentItem{}, fmt.Errorf("%w: %d", ErrItemNotFound, id)
		}
		return model.TreatmentItem{}, err
	}

	if patch.StandaloneCost != nil {
		item.StandaloneCost = *patch.StandaloneCost
	}
	if patch.CompoundCost != nil {
		item.CompoundCost = *patch.CompoundCost
	}
	if patch.Category != nil {
		item.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.SortOrder != nil {
		item.SortOrder = *patch.SortOrder
	}
	if patch.Active != nil {
		item.Active = *patch.Active
	}
	if err := validateCosts(item.StandaloneCost, item.CompoundCost); err != nil {
		return model.TreatmentItem{}, err
	}
	if item.CompoundCost == 0 {
		item.CompoundCost = item.StandaloneCost
	}

	if err := db.Save(&item).Error; err != nil {
		return model.TreatmentItem{}, err
	}
	s.itemChanged(item, "treatment item updated")
	return item, nil
}

// DeactivateItem hides an item from lookup. Existing reservations keep
// their recorded units.
func (s *Service) DeactivateItem(ctx context.Context, id uint) (model.TreatmentItem, error) {
	inactive := false
	return s.UpdateItem(ctx, id, ItemPatch{Active: &inactive})
}
