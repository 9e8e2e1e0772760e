package model

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Doctor is a practitioner whose calendar column holds reservations.
// @Description Doctor information
type Doctor struct {
	gorm.Model
	Name        string `json:"name" gorm:"column:name;type:varchar(100);uniqueIndex;not null" example:"dr-kim"`
	FullName    string `json:"full_name" gorm:"column:full_name" example:"Dr. Kim Minsu"`
	PhoneNumber string `json:"phone_number" gorm:"column:phone_number" example:"081234567890"`
	Active      bool   `json:"active" gorm:"column:active;default:true" example:"true"`
}

// ActiveDoctors returns the active doctors ordered by name.
func ActiveDoctors(db *gorm.DB) ([]Doctor, error) {
	var doctors []Doctor
	err := db.Where("active = ?", true).Order("name ASC").Find(&doctors).Error
	return doctors, err
}

// DoctorNames returns the names of the active doctors.
func DoctorNames(db *gorm.DB) ([]string, error) {
	var names []string
	err := db.Model(&Doctor{}).Where("active = ?", true).Order("name ASC").Pluck("name", &names).Error
	return names, err
}

// SeedDoctors creates a doctor row for every name that does not exist yet.
func SeedDoctors(db *gorm.DB, names []string) error {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		var existing Doctor
		err := db.Where("name = ?", name).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		doctor := Doctor{Name: name, FullName: name, Active: true}
		if err := db.Create(&doctor).Error; err != nil {
			return fmt.Errorf("failed to seed doctor %s: %w", name, err)
		}
	}
	return nil
}
