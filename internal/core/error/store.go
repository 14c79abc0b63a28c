package errx

import (
	"database/sql"
	"errors"
	"net/http"
)

// WrapStore maps sqlite store errors to AppError with appropriate status codes.
func WrapStore(err error) *AppError {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return New(err, http.StatusNotFound, StoreNotFoundMessage)
	}

	return New(err, http.StatusBadGateway, StoreErrorMessage)
}
