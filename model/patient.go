package model

import "gorm.io/gorm"

// Patient is the person a reservation is made for.
// @Description Patient information
type Patient struct {
	gorm.Model
	FullName      string `json:"full_name" example:"John Doe"`
	Gender        string `json:"gender" example:"Male"`
	Age           int    `json:"age" example:"30"`
	Address       string `json:"address" example:"123 Main St"`
	PhoneNumber   string `json:"phone_number" gorm:"index" example:"081234567890"`
	HealthHistory string `json:"health_history" example:"Hypertension"`
}

// PatientExists reports whether a patient row with id exists.
func PatientExists(db *gorm.DB, id uint) (bool, error) {
	var count int64
	err := db.Model(&Patient{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
