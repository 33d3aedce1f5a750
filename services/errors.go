package services

import "errors"

var (
	ErrPersistenceConflict = errors.New("persistence conflict")
	ErrTourClosed          = errors.New("tour already closed")
	ErrSortieNotFinalized  = errors.New("sortie not finalized")
	ErrUnknownField        = errors.New("unknown position field")
)
