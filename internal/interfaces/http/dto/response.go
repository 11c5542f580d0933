package dto

import (
	"github.com/logistics/console/internal/domain/inventory"
	"github.com/logistics/console/internal/domain/shared"
)

// Response represents a standard API response
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail is a field-level validation message
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithRequestID creates an error response carrying the request ID
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	resp := NewErrorResponse(code, message)
	resp.Error.RequestID = requestID
	return resp
}

// NewValidationErrorResponse creates a validation error response with field details
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	resp := NewErrorResponseWithRequestID(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}

// InventoryItemRequest is the body of an add-item call
type InventoryItemRequest struct {
	ID           int64  `json:"id" form:"id" binding:"required,gt=0"`
	Name         string `json:"name" form:"name" binding:"required,notblank,max=200"`
	Stock        *int64 `json:"stock" form:"stock" binding:"required,gte=0"`
	ReorderLevel *int64 `json:"reorder_level" form:"reorder_level" binding:"required,gte=0"`
}

// ToItem converts the request into a domain item
func (r InventoryItemRequest) ToItem() inventory.Item {
	item := inventory.Item{ID: r.ID, Name: r.Name}
	if r.Stock != nil {
		item.Stock = *r.Stock
	}
	if r.ReorderLevel != nil {
		item.ReorderLevel = *r.ReorderLevel
	}
	return item
}

// MapTokenResponse is returned when a map token is issued
type MapTokenResponse struct {
	Token     string   `json:"token"`
	TokenType string   `json:"token_type"`
	ExpiresIn int64    `json:"expires_in"`
	Scopes    []string `json:"scopes"`
}

// MutationResponse carries the notice shown after a write
type MutationResponse[T any] struct {
	Result T             `json:"result"`
	Notice shared.Notice `json:"notice"`
}
