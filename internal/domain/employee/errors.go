package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrNoPublicKey      = errors.New("employee has no registered device key")
)
