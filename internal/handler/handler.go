package handler

import (
	"errors"
	"net/http"
	"strconv"
)

var (
	ErrWalletNotFound         = errors.New("wallet not found")
	ErrPlanNotFound           = errors.New("savings plan not found")
	ErrNoSavedCard            = errors.New("no saved card found")
	ErrIdempotencyKeyRequired = errors.New("Idempotency-Key header is required")
	ErrInvalidOTP             = errors.New("invalid or expired OTP")
)

type queryStringValues struct {
	Limit  int
	Offset int
}

func retrieveUrlQueryValues(r *http.Request) *queryStringValues {
	var queryValues = &queryStringValues{}

	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("page")

	// Default pagination values
	offset := 0
	limit := 10

	if limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 {
			limit = parsedLimit
		}
	}
	queryValues.Limit = limit

	if offsetStr != "" {
		if parsedOffset, err := strconv.Atoi(offsetStr); err == nil && parsedOffset >= 1 {
			offset = (parsedOffset - 1) * limit
		}
	}
	queryValues.Offset = offset

	return queryValues
}
