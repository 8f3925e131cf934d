package advisor

import (
	"errors"

	"github.com/couchcryptid/ans-recharge-service/internal/domain"
)

// Error kinds, used as metric labels and by the HTTP layer.
const (
	KindInputMissing = "input_missing"
	KindNoData       = "no_data"
	KindAPIError     = "api_error"
	KindMalformed    = "malformed"
	KindOther        = "other"
)

// ErrorKind classifies an assessment error into the service's taxonomy.
func ErrorKind(err error) string {
	var apiErr *domain.APIError
	switch {
	case errors.Is(err, domain.ErrInputMissing):
		return KindInputMissing
	case errors.Is(err, domain.ErrNoData):
		return KindNoData
	case errors.As(err, &apiErr):
		return KindAPIError
	case errors.Is(err, domain.ErrMalformedResponse):
		return KindMalformed
	default:
		return KindOther
	}
}
