package endpoint

import (
	"github.com/ariebrainware/clinic-reservation/booking"
	"github.com/ariebrainware/clinic-reservation/model"
	"github.com/ariebrainware/clinic-reservation/util"
	"github.com/gin-gonic/gin"
)

type createTreatmentItemRequest struct {
	Name           string `json:"name" binding:"required" example:"head massage"`
	StandaloneCost int    `json:"standalone_cost" binding:"required,min=1" example:"2"`
	CompoundCost   int    `json:"compound_cost" binding:"min=0" example:"1"`
	Category       string `json:"category" example:"basic"`
	SortOrder      int    `json:"sort_order" example:"6"`
}

type updateTreatmentItemRequest struct {
	StandaloneCost *int    `json:"standalone_cost" binding:"omitempty,min=1" example:"2"`
	CompoundCost   *int    `json:"compound_cost" binding:"omitempty,min=0" example:"1"`
	Category       *string `json:"category" example:"basic"`
	Active         *bool   `json:"active" example:"true"`
	SortOrder      *int    `json:"sort_order" example:"6"`
}

type quoteQuery struct {
	Items     []string `form:"items" binding:"required,min=1"`
	VisitType string   `form:"type"`
}

// ListTreatmentItems godoc
// @Summary      List treatment items
// @Tags         TreatmentItem
// @Produce      json
// @Param        all query bool false "Include inactive items"
// @Param        group query string false "Set to category to group the result"
// @Success      200 {object} util.APIResponse{data=object} "Treatment items retrieved"
// @Router       /treatment-item [get]
func ListTreatmentItems(c *gin.Context) {
	svc, ok := getBookingOrRespond(c)
	if !ok {
		return
	}
	items, err := svc.ListItems(c.Request.Context(), c.Query("all") == "true")
	if err != nil {
		respondServiceError(c, "Failed to retrieve treatment items", err)
		return
	}

	data := map[string]interface{}{"total": len(items)}
	if c.Query("group") == "category" {
		groups := map[string][]model.TreatmentItem{}
		for _, it := range items {
			groups[it.Category] = append(groups[it.Category], it)
		}
		data["categories"] = groups
	} else {
		data["items"] = items
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Treatment items retrieved", Data: data})
}

// CreateTreatmentItem godoc
// @Summary      Register a treatment item
// @Tags         TreatmentItem
// @Accept       json
// @Produce      json
// @Param        request body createTreatmentItemRequest true "Treatment item"
// @Success      201 {object} util.APIResponse{data=model.TreatmentItem} "Treatment item created"
// @Failure      400 {object} util.APIResponse "Invalid request or duplicate name"
// @Router       /treatment-item [post]
func CreateTreatmentItem(c *gin.Context) {
	var req createTreatmentItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid request body", Err: err})
		return
	}
	svc, ok := getBookingOrRespond(c)
	if !ok {
		return
	}

	item, err := svc.CreateItem(c.Request.Context(), model.TreatmentItem{
		Name:           req.Name,
		StandaloneCost: req.StandaloneCost,
		CompoundCost:   req.CompoundCost,
		Category:       req.Category,
		SortOrder:      req.SortOrder,
	})
	if err != nil {
		respondServiceError(c, "Failed to create treatment item", err)
		return
	}
	util.CallCreated(c, util.APISuccessParams{Msg: "Treatment item created", Data: item})
}

// UpdateTreatmentItem godoc
// @Summary      Update a treatment item
// @Description  Cost changes apply to new bookings only
// @Tags         TreatmentItem
// @Accept       json
// @Produce      json
// @Param        id path int true "Treatment item ID"
// @Param        request body updateTreatmentItemRequest true "Fields to change"
// @Success      200 {object} util.APIResponse{data=model.TreatmentItem} "Treatment item updated"
// @Failure      404 {object} util.APIResponse "Treatment item not found"
// @Router       /treatment-item/{id} [patch]
func UpdateTreatmentItem(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req updateTreatmentItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid request body", Err: err})
		return
	}
	svc, ok := getBookingOrRespond(c)
	if !ok {
		return
	}

	item, err := svc.UpdateItem(c.Request.Context(), id, booking.ItemPatch{
		StandaloneCost: req.StandaloneCost,
		CompoundCost:   req.CompoundCost,
		Category:       req.Category,
		Active:         req.Active,
		SortOrder:      req.SortOrder,
	})
	if err != nil {
		respondServiceError(c, "Failed to update treatment item", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Treatment item updated", Data: item})
}

// DeactivateTreatmentItem godoc
// @Summary      Deactivate a treatment item
// @Description  Items are never deleted; existing reservations keep their units
// @Tags         TreatmentItem
// @Produce      json
// @Param        id path int true "Treatment item ID"
// @Success      200 {object} util.APIResponse{data=model.TreatmentItem} "Treatment item deactivated"
// @Failure      404 {object} util.APIResponse "Treatment item not found"
// @Router       /treatment-item/{id} [delete]
func DeactivateTreatmentItem(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	svc, ok := getBookingOrRespond(c)
	if !ok {
		return
	}
	item, err := svc.DeactivateItem(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, "Failed to deactivate treatment item", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Treatment item deactivated", Data: item})
}

// QuoteTreatmentItems godoc
// @Summary      Price an item set
// @Description  Returns the capacity units a reservation with these items would consume
// @Tags         TreatmentItem
// @Produce      json
// @Param        items query []string true "Treatment items"
// @Param        type query string false "Visit type"
// @Success      200 {object} util.APIResponse{data=object} "Quote computed"
// @Router       /treatment-item/quote [get]
func QuoteTreatmentItems(c *gin.Context) {
	var q quoteQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid query parameters", Err: err})
		return
	}
	svc, ok := getBookingOrRespond(c)
	if !ok {
		return
	}
	items := itemsParam(q.Items)
	units, err := svc.Quote(c.Request.Context(), items, q.VisitType)
	if err != nil {
		respondServiceError(c, "Failed to quote items", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Quote computed",
		Data: map[string]interface{}{"items": items, "visit_type": q.VisitType, "required_units": units},
	})
}
