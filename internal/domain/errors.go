package domain

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrNoProviders = errors.New("no providers configured")
	ErrEmptyResult = errors.New("empty result")
)
