package model

import "errors"

var (
	ErrRequestFailed = errors.New("note service request failed")
	ErrNoResults     = errors.New("no notes found")
	ErrNotFound      = errors.New("note not found")
	ErrSendFailed    = errors.New("failed to send reply")
)
