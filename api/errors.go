package api

import (
	"errors"

	"casino/domain/types"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// kindUnauthenticated is used for requests without a usable actor
const kindUnauthenticated = "UNAUTHENTICATED"

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

var statusByKind = map[types.ErrorKind]int{
	types.KindValidation:        fiber.StatusBadRequest,
	types.KindNotFound:          fiber.StatusNotFound,
	types.KindInsufficientFunds: fiber.StatusUnprocessableEntity,
	types.KindForbidden:         fiber.StatusForbidden,
	types.KindAlreadySettled:    fiber.StatusConflict,
	types.KindAlreadyProcessed:  fiber.StatusConflict,
	types.KindStorageFailure:    fiber.StatusServiceUnavailable,
}

func statusForError(err error) int {
	if status, ok := statusByKind[types.KindOf(err)]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

// errorHandler renders every error returned by a handler as {"error": {"kind", "message"}}
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		kind := "HTTP_ERROR"
		switch fe.Code {
		case fiber.StatusUnauthorized:
			kind = kindUnauthenticated
		case fiber.StatusNotFound:
			kind = string(types.KindNotFound)
		case fiber.StatusBadRequest:
			kind = string(types.KindValidation)
		case fiber.StatusForbidden:
			kind = string(types.KindForbidden)
		}
		return c.Status(fe.Code).JSON(errorResponse{Error: errorBody{Kind: kind, Message: fe.Message}})
	}

	var domainErr *types.Error
	if errors.As(err, &domainErr) {
		message := domainErr.Message
		if domainErr.Kind == types.KindStorageFailure {
			// Storage details stay in the logs
			message = "temporary storage failure, retry the operation"
		}
		if types.IsRetryable(err) {
			c.Set(fiber.HeaderRetryAfter, "1")
		}
		return c.Status(statusForError(err)).JSON(errorResponse{Error: errorBody{Kind: string(domainErr.Kind), Message: message}})
	}

	log.WithFields(log.Fields{
		"path":  c.Path(),
		"error": err,
	}).Error("Unhandled API error")
	return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: errorBody{Kind: "INTERNAL", Message: "internal error"}})
}
