package ecommerce

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/grigory-zhovtun/seller-apis/internal/domain/integration"
	"github.com/grigory-zhovtun/seller-apis/internal/infrastructure/httpclient"
)

// classifyError maps a client error onto the platform error taxonomy
func classifyError(platform string, err error) error {
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Errorf("%s: %w: %v", platform, statusSentinel(statusErr.StatusCode), err)
	}
	var decodeErr *httpclient.DecodeError
	if errors.As(err, &decodeErr) {
		return fmt.Errorf("%s: %w: %v", platform, integration.ErrPlatformInvalidResponse, err)
	}
	return fmt.Errorf("%s: %w: %v", platform, integration.ErrPlatformUnavailable, err)
}

func statusSentinel(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return integration.ErrPlatformAuthFailed
	case status == http.StatusTooManyRequests || status == httpclient.StatusEnhanceYourCalm:
		return integration.ErrPlatformRateLimited
	case status >= 500:
		return integration.ErrPlatformUnavailable
	default:
		return integration.ErrPlatformRequestFailed
	}
}

// isBatchRejection reports a 4xx that the platform answered with a reason:
// the batch reached the platform and every item in it failed.
func isBatchRejection(status int) bool {
	return status >= 400 && status < 500 &&
		statusSentinel(status) == integration.ErrPlatformRequestFailed
}

// rejectBatch marks every item of a batch as failed with one reason
func rejectBatch(result *integration.BatchResult, skus []string, code, message string) {
	for _, sku := range skus {
		result.RecordFailure(integration.SyncFailure{ItemID: sku, ErrorCode: code, ErrorMessage: message})
	}
}
