package model

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is matched by every *ConfigError.
	ErrConfiguration = errors.New("configuration error")
	// ErrData is matched by every *DataError.
	ErrData = errors.New("data error")
)

// ConfigError reports a forecast setting that cannot be used.
// It is always raised before any training work begins.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrConfiguration }

// DataError reports an input price series the pipeline cannot work with.
type DataError struct {
	Reason string
}

func (e *DataError) Error() string {
	return "data error: " + e.Reason
}

func (e *DataError) Unwrap() error { return ErrData }
