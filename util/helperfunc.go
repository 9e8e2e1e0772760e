package util

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Msg     string      `json:"msg"`
	Data    interface{} `json:"data"`
}

type APIErrorParams struct {
	Msg string
	Err error
}

type APISuccessParams struct {
	Msg  string
	Data interface{}
}

func errorResponse(params APIErrorParams) APIResponse {
	resp := APIResponse{Msg: params.Msg, Data: map[string]interface{}{}}
	if params.Err != nil {
		resp.Error = params.Err.Error()
	}
	return resp
}

// CallError writes an error envelope with the given status.
func CallError(c *gin.Context, status int, params APIErrorParams) {
	c.JSON(status, errorResponse(params))
}

// CallErrorNotFound answers 404.
func CallErrorNotFound(c *gin.Context, params APIErrorParams) {
	CallError(c, http.StatusNotFound, params)
}

// CallUserError answers 400 for a request the client got wrong.
func CallUserError(c *gin.Context, params APIErrorParams) {
	CallError(c, http.StatusBadRequest, params)
}

// CallServerError answers 500.
func CallServerError(c *gin.Context, params APIErrorParams) {
	CallError(c, http.StatusInternalServerError, params)
}

// CallConflict answers 409, used when a calendar has no room left for a
// reservation.
func CallConflict(c *gin.Context, params APIErrorParams) {
	CallError(c, http.StatusConflict, params)
}

// CallTooManyRequests answers 429 and stops the handler chain.
func CallTooManyRequests(c *gin.Context, params APIErrorParams) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse(params))
}

func callSuccess(c *gin.Context, status int, params APISuccessParams) {
	c.JSON(status, APIResponse{Success: true, Msg: params.Msg, Data: params.Data})
}

// CallSuccessOK answers 200 with msg and data.
func CallSuccessOK(c *gin.Context, params APISuccessParams) {
	callSuccess(c, http.StatusOK, params)
}

// CallCreated answers 201 with msg and the created resource.
func CallCreated(c *gin.Context, params APISuccessParams) {
	callSuccess(c, http.StatusCreated, params)
}

// NormalizeName trims a doctor, patient or item name and collapses inner
// whitespace, so "Dr.  Kim " and "Dr. Kim" compare equal in duplicate checks.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
