package mongostore

import (
	"errors"
	"fmt"

	"blood-request-coordinator/internal/store"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB server error codes
const (
	codeUnauthorized         = 13
	codeNoQueryExecutionPlan = 291
)

func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, store.ErrNotFound) {
		return store.ErrNotFound
	}

	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		switch {
		case serverErr.HasErrorCode(codeUnauthorized):
			return fmt.Errorf("%s: %w: %w", op, store.ErrPermissionDenied, err)
		case serverErr.HasErrorCode(codeNoQueryExecutionPlan):
			return fmt.Errorf("%s: %w: %w", op, store.ErrIndexRequired, err)
		}
	}

	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%s: %w: %w", op, store.ErrUnavailable, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}
