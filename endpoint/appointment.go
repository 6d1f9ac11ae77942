package endpoint

import (
	"github.com/ariebrainware/clinic-booking/model"
	"github.com/ariebrainware/clinic-booking/util"
	"github.com/gin-gonic/gin"
)

// CreateAppointment godoc
// @Summary      Book an appointment
// @Description  Validate, classify and book an appointment with the best matching doctor
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Param        request body model.AppointmentRequest true "Appointment request"
// @Success      201 {object} util.APIResponse{data=booking.Confirmation} "Appointment created"
// @Failure      400 {object} util.APIResponse "Invalid appointment data"
// @Failure      409 {object} util.APIResponse "Slot not available"
// @Failure      429 {object} util.APIResponse "Too many requests"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/appointments [post]
func CreateAppointment(c *gin.Context) {
	svc := bookingService(c)
	if svc == nil {
		return
	}

	var req model.AppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Invalid request body",
			Err: err,
		})
		return
	}

	confirmation, err := svc.Book(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create appointment")
		return
	}

	util.CallCreated(c, util.APISuccessParams{
		Msg:  "Appointment created",
		Data: confirmation,
	})
}

// GetAppointment godoc
// @Summary      Get an appointment
// @Description  Look up an appointment and its doctor by appointment code
// @Tags         Appointment
// @Produce      json
// @Param        appointmentId path string true "Appointment code, e.g. APT-2025-004217"
// @Success      200 {object} util.APIResponse{data=booking.AppointmentDetails} "Appointment retrieved"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/appointments/{appointmentId} [get]
func GetAppointment(c *gin.Context) {
	svc := bookingService(c)
	if svc == nil {
		return
	}

	details, err := svc.GetByCode(c.Request.Context(), c.Param("appointmentId"))
	if err != nil {
		respondError(c, err, "Failed to fetch appointment")
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Appointment retrieved",
		Data: details,
	})
}

// ListAppointments godoc
// @Summary      List appointments
// @Description  Get every appointment with its doctor
// @Tags         Appointment
// @Produce      json
// @Success      200 {object} util.APIResponse{data=[]booking.AppointmentDetails} "Appointments retrieved"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/appointments [get]
func ListAppointments(c *gin.Context) {
	svc := bookingService(c)
	if svc == nil {
		return
	}

	appointments, err := svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch appointments")
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Appointments retrieved",
		Data: appointments,
	})
}

// UpdateAppointment godoc
// @Summary      Update an appointment
// @Description  Change the status, confirmed slot or reason of an appointment
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Param        appointmentId path string true "Appointment code"
// @Param        request body model.AppointmentUpdate true "Fields to change"
// @Success      200 {object} util.APIResponse{data=booking.AppointmentDetails} "Appointment updated"
// @Failure      400 {object} util.APIResponse "Invalid update"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Failure      409 {object} util.APIResponse "Slot not available"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/appointments/{appointmentId} [patch]
func UpdateAppointment(c *gin.Context) {
	svc := bookingService(c)
	if svc == nil {
		return
	}

	var upd model.AppointmentUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Invalid request body",
			Err: err,
		})
		return
	}

	details, err := svc.Update(c.Request.Context(), c.Param("appointmentId"), upd)
	if err != nil {
		respondError(c, err, "Failed to update appointment")
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Appointment updated",
		Data: details,
	})
}
