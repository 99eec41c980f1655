package api

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sproutlab/sprout-api/internal/api/shared"
	"github.com/sproutlab/sprout-api/internal/service"
)

func decodeAndValidate[T any](r *http.Request, v *validator.Validate) (T, error) {
	var req T
	if err := shared.DecodeJSON(r, &req); err != nil {
		return req, fmt.Errorf("%w: %v", service.ErrInvalidRequest, err)
	}
	if err := v.Struct(req); err != nil {
		return req, fmt.Errorf("%w: %v", service.ErrInvalidRequest, err)
	}
	return req, nil
}

func decodeImage(encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: image must be base64 encoded: %v", service.ErrInvalidRequest, err)
	}
	return data, nil
}
