package endpoint

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ariebrainware/clinic-reservation/model"
	"github.com/ariebrainware/clinic-reservation/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type patientListQuery struct {
	Limit   int
	Offset  int
	Keyword string
	SortBy  string
	SortDir string
}

func parseQueryParams(c *gin.Context) patientListQuery {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return patientListQuery{
		Limit:   limit,
		Offset:  offset,
		Keyword: c.Query("keyword"),
		SortBy:  c.Query("sort"),                      // supported values: full_name
		SortDir: strings.ToLower(c.Query("sort_dir")), // supported values: asc, desc
	}
}

func fetchPatients(db *gorm.DB, q patientListQuery) ([]model.Patient, int64, error) {
	var patients []model.Patient
	var total int64

	orderDir := "ASC"
	if q.SortDir == "desc" {
		orderDir = "DESC"
	}

	query := db.Model(&model.Patient{})
	if q.Keyword != "" {
		kw := "%" + q.Keyword + "%"
		query = query.Where("full_name LIKE ? OR address LIKE ? OR phone_number LIKE ?", kw, kw, kw)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if q.SortBy == "full_name" {
		query = query.Order(fmt.Sprintf("patients.full_name %s", orderDir))
	} else {
		query = query.Order("patients.created_at DESC")
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}
	if err := query.Find(&patients).Error; err != nil {
		return nil, 0, err
	}
	return patients, total, nil
}

// ListPatients godoc
// @Summary      List patients
// @Description  Paginated patient search for the booking form
// @Tags         Patient
// @Produce      json
// @Param        limit query int false "Limit number of results"
// @Param        offset query int false "Offset for pagination"
// @Param        keyword query string false "Search keyword for patient name, address, or phone"
// @Param        sort query string false "Optional sort field: full_name"
// @Param        sort_dir query string false "Optional sort direction: asc|desc"
// @Success      200 {object} util.APIResponse{data=object} "Patients retrieved"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /patient [get]
func ListPatients(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	patients, total, err := fetchPatients(db, parseQueryParams(c))
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to retrieve patients",
			Err: err,
		})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Patients retrieved",
		Data: map[string]interface{}{"total": total, "total_fetched": len(patients), "patients": patients},
	})
}

type createPatientRequest struct {
	FullName      string   `json:"full_name" binding:"required" example:"John Doe"`
	Gender        string   `json:"gender" example:"Male"`
	Age           int      `json:"age" binding:"min=0" example:"30"`
	Address       string   `json:"address" example:"123 Main St"`
	PhoneNumber   []string `json:"phone_number" binding:"required,min=1" example:"081234567890,081234567891"`
	HealthHistory []string `json:"health_history" example:"Diabetes,Hypertension"`
}

func normalizePhoneNumbers(numbers []string) []string {
	result := make([]string, 0, len(numbers))
	seen := make(map[string]struct{}, len(numbers))
	for _, n := range numbers {
		trimmed := strings.TrimSpace(n)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}

// hasDuplicatePatient reports whether a patient with the same name already
// shares one of the phone numbers.
func hasDuplicatePatient(db *gorm.DB, fullName string, phoneNumbers []string) (bool, error) {
	phoneSet := make(map[string]struct{}, len(phoneNumbers))
	for _, p := range phoneNumbers {
		phoneSet[p] = struct{}{}
	}

	var matches []model.Patient
	if err := db.Where("full_name = ?", fullName).Find(&matches).Error; err != nil {
		return false, err
	}
	for _, m := range matches {
		for _, sp := range strings.Split(m.PhoneNumber, ",") {
			if _, ok := phoneSet[strings.TrimSpace(sp)]; ok {
				return true, nil
			}
		}
	}
	return false, nil
}

// CreatePatient godoc
// @Summary      Create a new patient
// @Description  Register a patient so reservations can refer to them
// @Tags         Patient
// @Accept       json
// @Produce      json
// @Param        request body createPatientRequest true "Patient information"
// @Success      201 {object} util.APIResponse{data=model.Patient} "Patient created"
// @Failure      400 {object} util.APIResponse "Invalid request or patient already exists"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /patient [post]
func CreatePatient(c *gin.Context) {
	var req createPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Invalid request body",
			Err: err,
		})
		return
	}

	// Normalize full_name to prevent duplicate detection bypass via whitespace variations
	req.FullName = util.NormalizeName(req.FullName)
	phones := normalizePhoneNumbers(req.PhoneNumber)
	if req.FullName == "" || len(phones) == 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Patient payload is empty or missing required fields",
			Err: fmt.Errorf("invalid payload"),
		})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	patient := model.Patient{
		FullName:      req.FullName,
		Gender:        req.Gender,
		Age:           req.Age,
		Address:       req.Address,
		PhoneNumber:   strings.Join(phones, ","),
		HealthHistory: strings.Join(req.HealthHistory, ","),
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		duplicate, err := hasDuplicatePatient(tx, req.FullName, phones)
		if err != nil {
			return err
		}
		if duplicate {
			return errDuplicate
		}
		return tx.Create(&patient).Error
	})
	if errors.Is(err, errDuplicate) {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Patient already exists with same name and phone number",
			Err: fmt.Errorf("patient duplicate detected"),
		})
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to create patient",
			Err: err,
		})
		return
	}

	util.CallCreated(c, util.APISuccessParams{
		Msg:  "Patient created",
		Data: patient,
	})
}

// GetPatient godoc
// @Summary      Get a patient
// @Tags         Patient
// @Produce      json
// @Param        id path int true "Patient ID"
// @Success      200 {object} util.APIResponse{data=model.Patient} "Patient retrieved"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Router       /patient/{id} [get]
func GetPatient(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var patient model.Patient
	if err := db.First(&patient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Patient not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve patient", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Patient retrieved", Data: patient})
}

// GetPatientReservations godoc
// @Summary      List a patient's reservations
// @Description  Newest first. Canceled reservations are included with ?all=true
// @Tags         Patient
// @Produce      json
// @Param        id path int true "Patient ID"
// @Param        all query bool false "Include canceled reservations"
// @Success      200 {object} util.APIResponse{data=object} "Reservations retrieved"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Router       /patient/{id}/reservations [get]
func GetPatientReservations(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	svc, ok := getBookingOrRespond(c)
	if !ok {
		return
	}

	exists, err := model.PatientExists(db, id)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve patient", Err: err})
		return
	}
	if !exists {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Patient not found", Err: fmt.Errorf("patient %d does not exist", id)})
		return
	}

	all, _ := strconv.ParseBool(c.Query("all"))
	records, err := svc.PatientHistory(c.Request.Context(), id, all)
	if err != nil {
		respondServiceError(c, "Failed to retrieve reservations", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Reservations retrieved",
		Data: map[string]interface{}{"patient_id": id, "total": len(records), "reservations": records},
	})
}
