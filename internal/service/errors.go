package service

import "errors"

// ErrInvalidRequest indicates a caller-supplied input failed validation
// before any record was created. Handlers map it to a 400 response.
var ErrInvalidRequest = errors.New("invalid request")

// ErrDiaryTimeout indicates the synchronous diary pipeline did not
// finish within its deadline. Handlers map it to a 504 response.
var ErrDiaryTimeout = errors.New("diary generation timed out")
