package service

import (
	"net/http"

	apperrors "github.com/A3Manav/jewellery-wishlist-service/pkg/errors"
)

// Business outcomes are AppErrors with stable codes so the transport layer
// and the storefront can branch on them. None of these are logged as
// failures; they are expected results of user behavior.

func errAlreadyInWishlist() *apperrors.AppError {
	return apperrors.New(
		"ALREADY_IN_WISHLIST",
		"Product is already in your wishlist",
		http.StatusConflict,
		apperrors.ErrAlreadyExists,
	)
}

func errOperationInProgress() *apperrors.AppError {
	return apperrors.New(
		"OPERATION_IN_PROGRESS",
		"This operation is already in progress",
		http.StatusConflict,
		apperrors.ErrConflict,
	)
}

func errNotInWishlist() *apperrors.AppError {
	return apperrors.New(
		"NOT_IN_WISHLIST",
		"Product is not in your wishlist",
		http.StatusNotFound,
		apperrors.ErrNotFound,
	)
}

func errRemoveNotAllowed() *apperrors.AppError {
	return apperrors.New(
		"REMOVE_NOT_ALLOWED",
		"Removal only allowed from profile page",
		http.StatusForbidden,
		apperrors.ErrForbidden,
	)
}
