package db

import (
	"context"
	"tunevault/models"
)

// Operation represents a database operation that needs to be executed
type Operation struct {
	Execute func() error
	Result  chan error
}

// OperationWithResult represents a database operation that returns a result
type OperationWithResult struct {
	Execute func() (interface{}, error)
	Result  chan OperationResult
}

// OperationResult contains the result of an operation
type OperationResult struct {
	Data  interface{}
	Error error
}

// Manager serializes write access to the database. SQLite allows a single
// writer at a time; funnelling registrations and uploads through one worker
// keeps concurrent requests from tripping over busy errors.
type Manager struct {
	opQueue       chan Operation
	resultOpQueue chan OperationWithResult
	stopping      chan struct{}
}

// NewManager creates a new database write manager
func NewManager() *Manager {
	m := &Manager{
		opQueue:       make(chan Operation, 100),
		resultOpQueue: make(chan OperationWithResult, 100),
		stopping:      make(chan struct{}),
	}

	go m.worker()

	return m
}

// worker processes operations one at a time
func (m *Manager) worker() {
	for {
		select {
		case op := <-m.opQueue:
			err := RetryOnBusy(op.Execute)
			op.Result <- err
		case op := <-m.resultOpQueue:
			data, err := RetryOnBusyWithResult(op.Execute)
			op.Result <- OperationResult{Data: data, Error: err}
		case <-m.stopping:
			return
		}
	}
}

// ExecuteOperation executes a database operation on the write worker
func (m *Manager) ExecuteOperation(execute func() error) error {
	resultChan := make(chan error, 1)
	m.opQueue <- Operation{
		Execute: execute,
		Result:  resultChan,
	}
	return <-resultChan
}

// ExecuteOperationWithResult executes a database operation that returns a result
func (m *Manager) ExecuteOperationWithResult(execute func() (interface{}, error)) (interface{}, error) {
	resultChan := make(chan OperationResult, 1)
	m.resultOpQueue <- OperationWithResult{
		Execute: execute,
		Result:  resultChan,
	}
	result := <-resultChan
	return result.Data, result.Error
}

// Stop stops the database manager
func (m *Manager) Stop() {
	close(m.stopping)
}

// CreateUser serializes access to user creation
func (m *Manager) CreateUser(repo UserRepository, ctx context.Context, user *models.User) (*models.User, error) {
	result, err := m.ExecuteOperationWithResult(func() (interface{}, error) {
		return repo.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.User), nil
}

// CreateTrack serializes access to track creation
func (m *Manager) CreateTrack(repo TrackRepository, ctx context.Context, track *models.Track) (*models.Track, error) {
	result, err := m.ExecuteOperationWithResult(func() (interface{}, error) {
		return repo.Create(ctx, track)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Track), nil
}
