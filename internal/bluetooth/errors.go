package bluetooth

import "github.com/pkg/errors"

// Stack errors. Their text is what ends up in the log stream.
var (
	ErrNotEnabled     = errors.New("ERR_NOT_ENABLED")
	ErrBusy           = errors.New("ERR_BUSY")
	ErrNoAdvData      = errors.New("ERR_NO_ADV_DATA")
	ErrPayloadTooLong = errors.New("ERR_PAYLOAD_TOO_LONG")
	ErrNotRunning     = errors.New("ERR_NOT_RUNNING")
)
