package errors

import "fmt"

// ClientError represents a client-side validation or precondition failure.
type ClientError struct {
	Message string
}

func (e *ClientError) Error() string {
	return e.Message
}

// NewClientError creates a new ClientError
func NewClientError(message string) *ClientError {
	return &ClientError{Message: message}
}

// Common errors
var (
	ErrWalletUnavailable          = NewClientError("wallet unavailable: no signer configured")
	ErrGatewayAuthUnavailable     = NewClientError("gateway authentication unavailable: no credentials configured")
	ErrInvalidChainID             = NewClientError("invalid chain ID")
	ErrInsufficientUnifiedBalance = NewClientError("insufficient unified balance for requested transfer")
	ErrMarketNotFound             = NewClientError("market not found")
	ErrMarketClosed               = NewClientError("market is closed for trading")
	ErrUnsupportedPostURL         = NewClientError("URL does not reference a supported social post")
	ErrZeroPlan                   = NewClientError("no usable balance sources for transfer")
)

// NewSlippageError reports a min-out bound that the quoted trade would violate.
func NewSlippageError(quoted, minOut string) error {
	return fmt.Errorf("quoted shares out (%s) below minimum acceptable (%s)", quoted, minOut)
}

// NewRevertError wraps a contract call revert with the call name.
func NewRevertError(call string, err error) error {
	return fmt.Errorf("contract call %s reverted: %w", call, err)
}
