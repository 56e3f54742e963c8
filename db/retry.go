package db

import (
	"strings"
	"time"
)

// RetryOnBusy retries the given function if it fails with a database lock error
func RetryOnBusy(operation func() error) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if strings.Contains(err.Error(), "database is locked") {
			// Exponential backoff: 100ms, 200ms, 400ms
			time.Sleep(baseDelay * time.Duration(1<<i))
			continue
		}

		return err
	}

	return err
}

// RetryOnBusyWithResult retries the given function if it fails with a database
// lock error and returns the result along with any error
func RetryOnBusyWithResult[T any](operation func() (T, error)) (T, error) {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	var result T
	var err error

	for i := 0; i < maxRetries; i++ {
		result, err = operation()
		if err == nil {
			return result, nil
		}

		if strings.Contains(err.Error(), "database is locked") {
			time.Sleep(baseDelay * time.Duration(1<<i))
			continue
		}

		return result, err
	}

	return result, err
}
