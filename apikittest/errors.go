package apikittest

import (
	"encoding/json"
	"errors"
)

// Error is an error with the status code it should be answered with.
type Error struct {
	Code    int
	Message error
}

// NewError creates an Error to be propagated up the handler stack and
// written by middleware.
func NewError(code int, err error) Error {
	return Error{
		Code:    code,
		Message: err,
	}
}

func (err Error) Error() string {
	return err.Message.Error()
}

func (err Error) Unwrap() error {
	return err.Message
}

// MarshalJSON renders {"code": 401, "message": "invalid token"}.
func (err Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}{err.Code, err.Error()})
}

// GetError reports whether err carries an Error.
func GetError(err error) (Error, bool) {
	var er Error
	if !errors.As(err, &er) {
		return Error{}, false
	}

	return er, true
}
