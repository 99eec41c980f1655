package shared

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// maxRequestBody caps decoded request bodies. Seed packet photos are
// sent base64-encoded in JSON, so the cap is generous.
const maxRequestBody = 16 << 20 // 16 MiB

// DecodeJSON decodes the request body into dst, rejecting unknown
// fields and oversized bodies.
func DecodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	return nil
}
