package services

import "fmt"

// DataFetchError wraps a store read failure with the resource and key that
// failed, so handlers can log and map it without string matching.
type DataFetchError struct {
	Resource string
	Key      string
	Err      error
}

func (e *DataFetchError) Error() string {
	return fmt.Sprintf("fetch %s %s: %v", e.Resource, e.Key, e.Err)
}

func (e *DataFetchError) Unwrap() error { return e.Err }

// DataWriteError wraps a store write failure.
type DataWriteError struct {
	Resource string
	Key      string
	Err      error
}

func (e *DataWriteError) Error() string {
	return fmt.Sprintf("write %s %s: %v", e.Resource, e.Key, e.Err)
}

func (e *DataWriteError) Unwrap() error { return e.Err }
