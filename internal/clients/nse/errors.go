package nse

import "fmt"

// AcquisitionError is the single terminal failure the client surfaces: it
// means every attempt failed and no recent-enough cached payload existed.
// Cause carries the last observed failure for diagnostics.
type AcquisitionError struct {
	Endpoint string
	Cause    string
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("NSE %s failed after retries: %s", e.Endpoint, e.Cause)
}
