package endpoint

import (
	"github.com/ariebrainware/clinic-booking/util"
	"github.com/gin-gonic/gin"
)

type availabilityRequest struct {
	DoctorID string `json:"doctor_id" binding:"required" example:"0b6f1c1e-8a51-4a59-9d3e-3f0f1b7a2c11"`
	Date     string `json:"date" binding:"required,datetime=2006-01-02" example:"2025-06-01"`
	Time     string `json:"time" binding:"required,datetime=15:04" example:"09:00"`
}

// CheckAvailability godoc
// @Summary      Check slot availability
// @Description  Report whether a doctor has no confirmed appointment at a date and time
// @Tags         Availability
// @Accept       json
// @Produce      json
// @Param        request body availabilityRequest true "Doctor, date and time"
// @Success      200 {object} util.APIResponse{data=object} "Availability checked"
// @Failure      400 {object} util.APIResponse "Invalid request body"
// @Failure      404 {object} util.APIResponse "Doctor not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/availability/check [post]
func CheckAvailability(c *gin.Context) {
	svc := bookingService(c)
	if svc == nil {
		return
	}

	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Invalid request body",
			Err: err,
		})
		return
	}

	available, err := svc.CheckAvailability(c.Request.Context(), req.DoctorID, req.Date, req.Time)
	if err != nil {
		respondError(c, err, "Failed to check availability")
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Availability checked",
		Data: map[string]interface{}{"available": available},
	})
}
