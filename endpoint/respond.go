package endpoint

import (
	"errors"
	"fmt"

	"github.com/ariebrainware/clinic-booking/booking"
	"github.com/ariebrainware/clinic-booking/middleware"
	"github.com/ariebrainware/clinic-booking/util"
	"github.com/gin-gonic/gin"
)

func bookingService(c *gin.Context) *booking.Service {
	svc := middleware.GetBookingService(c)
	if svc == nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Booking service not available",
			Err: fmt.Errorf("booking service is nil"),
		})
	}
	return svc
}

// respondError maps a service error onto the response envelope. Internal
// causes are logged, not returned.
func respondError(c *gin.Context, err error, serverMsg string) {
	var verr *booking.ValidationError
	if errors.As(err, &verr) {
		util.CallUserError(c, util.APIErrorParams{
			Msg:  "Invalid appointment data",
			Err:  err,
			Data: map[string]interface{}{"errors": verr.Fields},
		})
		return
	}

	var conflict *booking.ConflictError
	if errors.As(err, &conflict) {
		util.CallConflict(c, util.APIErrorParams{
			Msg:  "The requested time slot is not available. Please choose a different time.",
			Err:  err,
			Data: map[string]interface{}{"available_slots": conflict.AvailableSlots},
		})
		return
	}

	var appErr *util.AppError
	if errors.As(err, &appErr) && appErr.Type == util.ErrorTypeNotFound {
		util.CallErrorNotFound(c, util.APIErrorParams{
			Msg: appErr.Message,
			Err: err,
		})
		return
	}

	util.LoggerFromContext(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg(serverMsg)
	util.CallServerError(c, util.APIErrorParams{
		Msg: serverMsg,
		Err: errors.New("internal server error"),
	})
}
