package endpoint

import (
	"github.com/ariebrainware/clinic-booking/util"
	"github.com/gin-gonic/gin"
)

// ListDoctors godoc
// @Summary      List doctors
// @Description  Get every doctor in enumeration order
// @Tags         Doctor
// @Produce      json
// @Success      200 {object} util.APIResponse{data=[]model.Doctor} "Doctors retrieved"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/doctors [get]
func ListDoctors(c *gin.Context) {
	svc := bookingService(c)
	if svc == nil {
		return
	}

	doctors, err := svc.ListDoctors(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch doctors")
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Doctors retrieved",
		Data: doctors,
	})
}
