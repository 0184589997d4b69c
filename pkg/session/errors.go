package session

import "errors"

var (
	// ErrNoSecret indicates neither the configuration nor a cookie parser
	// supplied a signing secret.
	ErrNoSecret = errors.New("session.no_secret")

	// ErrInvalidSession indicates a store call received an empty id or nil record
	ErrInvalidSession = errors.New("session.invalid")

	// ErrSessionNotFound indicates no session was found
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrCorruptRecord indicates a stored record lacks its cookie attributes
	ErrCorruptRecord = errors.New("session.corrupt_record")

	// ErrStoreFetch wraps a failed store lookup during load
	ErrStoreFetch = errors.New("session.store_fetch_failed")

	// ErrPersist wraps a failed save, touch or destroy at the end of a response
	ErrPersist = errors.New("session.persist_failed")

	// ErrPersistTimeout indicates the store did not answer within PersistTimeout
	ErrPersistTimeout = errors.New("session.persist_timeout")

	// ErrNotAttached indicates the handle was unset, destroyed or never bound
	ErrNotAttached = errors.New("session.not_attached")

	// ErrReloadFailed indicates the stored record disappeared before reload
	ErrReloadFailed = errors.New("session.reload_failed")

	// ErrTokenGeneration indicates id generation failed
	ErrTokenGeneration = errors.New("session.token_generation_failed")

	// ErrInvalidConfig indicates an unusable configuration value
	ErrInvalidConfig = errors.New("session.invalid_config")

	// ErrNotSupported indicates the store lacks an optional capability
	ErrNotSupported = errors.New("session.not_supported")
)
