package util

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Msg     string      `json:"msg"`
	Data    interface{} `json:"data"`
}

type APIErrorParams struct {
	Msg  string
	Err  error
	Data interface{}
}

type APISuccessParams struct {
	Msg  string
	Data interface{}
}

func errorResponse(c *gin.Context, status int, params APIErrorParams) {
	errMsg := ""
	if params.Err != nil {
		errMsg = params.Err.Error()
	}
	data := params.Data
	if data == nil {
		data = map[string]interface{}{}
	}
	c.JSON(status, APIResponse{
		Success: false,
		Error:   errMsg,
		Msg:     params.Msg,
		Data:    data,
	})
}

func successResponse(c *gin.Context, status int, params APISuccessParams) {
	c.JSON(status, APIResponse{
		Success: true,
		Error:   "",
		Msg:     params.Msg,
		Data:    params.Data,
	})
}

// CallErrorNotFound is for return API response not found
func CallErrorNotFound(c *gin.Context, params APIErrorParams) {
	errorResponse(c, http.StatusNotFound, params)
}

// CallUserError is for return error from user side
func CallUserError(c *gin.Context, params APIErrorParams) {
	errorResponse(c, http.StatusBadRequest, params)
}

// CallConflict is for return API response when the request clashes with existing state
func CallConflict(c *gin.Context, params APIErrorParams) {
	errorResponse(c, http.StatusConflict, params)
}

// CallTooManyRequests is for return API response when a client is rate limited
func CallTooManyRequests(c *gin.Context, params APIErrorParams) {
	errorResponse(c, http.StatusTooManyRequests, params)
}

// CallServerError is for return API response server error
func CallServerError(c *gin.Context, params APIErrorParams) {
	errorResponse(c, http.StatusInternalServerError, params)
}

// CallSuccessOK is for return API response with status code 200, you need to specify msg, and data as function parameter
func CallSuccessOK(c *gin.Context, params APISuccessParams) {
	successResponse(c, http.StatusOK, params)
}

// CallCreated is for return API response with status code 201
func CallCreated(c *gin.Context, params APISuccessParams) {
	successResponse(c, http.StatusCreated, params)
}

// NormalizeName normalizes a name by trimming leading/trailing whitespace
// and collapsing multiple internal spaces into single spaces.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
