package repository

import "errors"

var (
	// ErrDuplicateBid indica que ya existe una oferta para (email, job_id).
	ErrDuplicateBid = errors.New("bid already exists")
	// ErrOwnerMismatch indica que el upsert chocó con un documento de otro dueño.
	ErrOwnerMismatch = errors.New("owner mismatch")
)
