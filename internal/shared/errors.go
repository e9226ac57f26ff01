package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Session errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// Engine failure taxonomy. None of these are fatal to a session.
	ErrNetworkFailure      = fmt.Errorf("network failure")
	ErrEntitlementRequired = fmt.Errorf("entitlement required")
	ErrNotFound            = fmt.Errorf("not found")
	ErrAutoplayRejected    = fmt.Errorf("autoplay rejected")

	// Feed and engagement errors
	ErrNotActive     = fmt.Errorf("item is not active")
	ErrNotMounted    = fmt.Errorf("item is not mounted")
	ErrUnknownEntity = fmt.Errorf("unknown entity")
	ErrDebounced     = fmt.Errorf("action ignored inside debounce window")
	ErrUnknownOption = fmt.Errorf("unknown resolution option")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
