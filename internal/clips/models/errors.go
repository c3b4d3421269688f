package models

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrValidation       = errors.New("validation failed")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrTransferFailed   = errors.New("transfer failed")
	ErrCommitFailed     = errors.New("commit failed")
)
