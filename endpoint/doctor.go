package endpoint

import (
	"errors"
	"fmt"

	"github.com/ariebrainware/clinic-reservation/model"
	"github.com/ariebrainware/clinic-reservation/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type createDoctorRequest struct {
	Name        string `json:"name" binding:"required" example:"dr-kim"`
	FullName    string `json:"full_name" example:"Dr. Kim Minsu"`
	PhoneNumber string `json:"phone_number" example:"081234567890"`
}

// ListDoctors godoc
// @Summary      List doctors
// @Description  Active doctors, one calendar column each
// @Tags         Doctor
// @Produce      json
// @Success      200 {object} util.APIResponse{data=object} "Doctors retrieved"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /doctor [get]
func ListDoctors(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	doctors, err := model.ActiveDoctors(db)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve doctors", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Doctors retrieved",
		Data: map[string]interface{}{"total": len(doctors), "doctors": doctors},
	})
}

// CreateDoctor godoc
// @Summary      Register a doctor
// @Tags         Doctor
// @Accept       json
// @Produce      json
// @Param        request body createDoctorRequest true "Doctor"
// @Success      201 {object} util.APIResponse{data=model.Doctor} "Doctor created"
// @Failure      400 {object} util.APIResponse "Invalid request or doctor already exists"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /doctor [post]
func CreateDoctor(c *gin.Context) {
	var req createDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid request body", Err: err})
		return
	}
	req.Name = util.NormalizeName(req.Name)
	if req.Name == "" {
		util.CallUserError(c, util.APIErrorParams{Msg: "Doctor name is required", Err: fmt.Errorf("invalid payload")})
		return
	}
	if req.FullName == "" {
		req.FullName = req.Name
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	doctor := model.Doctor{Name: req.Name, FullName: util.NormalizeName(req.FullName), PhoneNumber: req.PhoneNumber, Active: true}
	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Doctor{}).Where("name = ?", doctor.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errDuplicate
		}
		return tx.Create(&doctor).Error
	})
	if errors.Is(err, errDuplicate) {
		util.CallUserError(c, util.APIErrorParams{Msg: "Doctor already exists", Err: fmt.Errorf("doctor %s already registered", doctor.Name)})
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create doctor", Err: err})
		return
	}
	util.CallCreated(c, util.APISuccessParams{Msg: "Doctor created", Data: doctor})
}
