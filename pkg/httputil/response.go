package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/odontosys/clinic-api/pkg/errors"
)

// Response wraps all API responses in the {ok: bool, ...} envelope.
type Response struct {
	OK    bool           `json:"ok"`
	Data  interface{}    `json:"data,omitempty"`
	Error string         `json:"error,omitempty"`
	InUse map[string]int `json:"inUseBy,omitempty"`
}

// Pagination represents pagination metadata
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// PaginatedResponse wraps paginated data
type PaginatedResponse struct {
	Items      interface{} `json:"items"`
	Pagination Pagination  `json:"pagination"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{OK: true, Data: data})
}

// RespondWithCreated sends a 201 success response
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{OK: true, Data: data})
}

// RespondWithError sends an error response, mapping the AppError taxonomy
// onto HTTP statuses. Anything that is not an AppError becomes a 500 with a
// generic message.
func RespondWithError(c *gin.Context, err error) {
	statusCode := http.StatusInternalServerError
	message := "internal server error"
	var inUse map[string]int

	if appErr, ok := err.(*errors.AppError); ok {
		message = appErr.Message
		inUse = appErr.Details
		switch appErr.Code {
		case errors.ErrNotFound:
			statusCode = http.StatusNotFound
		case errors.ErrBadRequest:
			statusCode = http.StatusBadRequest
		case errors.ErrConflict:
			statusCode = http.StatusConflict
		case errors.ErrUnauthorized:
			statusCode = http.StatusUnauthorized
		default:
			statusCode = http.StatusInternalServerError
			message = "internal server error"
		}
	}

	c.JSON(statusCode, Response{OK: false, Error: message, InUse: inUse})
}

// RespondWithPagination sends a paginated success response
func RespondWithPagination(c *gin.Context, items interface{}, page, limit, total int) {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	c.JSON(http.StatusOK, Response{
		OK: true,
		Data: PaginatedResponse{
			Items: items,
			Pagination: Pagination{
				Page:       page,
				Limit:      limit,
				Total:      total,
				TotalPages: totalPages,
			},
		},
	})
}
