package errs

import "errors"

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrNotEnoughFunds = errors.New("not enough funds")
	ErrUnknownSchema  = errors.New("unknown event schema")
)
