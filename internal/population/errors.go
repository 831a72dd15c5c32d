package population

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks errors caused by the configuration. They are fatal and never retried.
	ErrConfiguration = errors.New("configuration error")

	// ErrUnknownCollection is returned for a collection that is not configured.
	ErrUnknownCollection = fmt.Errorf("%w: unknown collection", ErrConfiguration)

	// ErrCollectionDisabled is returned for a configured collection that is not enabled.
	ErrCollectionDisabled = fmt.Errorf("%w: collection is disabled", ErrConfiguration)

	// ErrInvalidArgument is returned for malformed query arguments.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrShuttingDown is returned by triggers received after Close.
	ErrShuttingDown = errors.New("population orchestrator is shutting down")
)
