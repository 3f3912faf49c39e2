package export

import "errors"

// Sentinel kinds for export errors.
var (
	ErrEncode = errors.New("export encode failed")
)
