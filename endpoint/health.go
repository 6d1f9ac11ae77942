package endpoint

import (
	"fmt"
	"net/http"

	"github.com/ariebrainware/clinic-booking/util"
	"github.com/gin-gonic/gin"
)

// Index returns the welcome handler for appName.
func Index(appName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Welcome to %s!", appName),
		})
	}
}

// Health godoc
// @Summary      Liveness probe
// @Tags         Health
// @Produce      json
// @Success      200 {object} util.APIResponse "OK"
// @Router       /health [get]
func Health(c *gin.Context) {
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "OK",
		Data: map[string]interface{}{"status": "ok"},
	})
}
