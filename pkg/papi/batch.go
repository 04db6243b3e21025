package papi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pressroom-io/papi/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrUnsupportedResourceType  = errors.New("unsupported resource type")
	ErrUnsupportedOperationType = errors.New("unsupported operation type")
	ErrInvalidDataTypeContent   = errors.New("invalid data type for content operation")
	ErrInvalidDataTypeUser      = errors.New("invalid data type for user operation")
	ErrInvalidDataTypeGroup     = errors.New("invalid data type for group operation")
	ErrInvalidDataTypeTag       = errors.New("invalid data type for tag operation")
	ErrTransactionFailed        = errors.New("transaction failed")
)

// UpdateDataWrapper wraps update data with GUID for consistent handling.
type UpdateDataWrapper[T any] struct {
	GUID    string
	Request *T
}

// DeployData names the bundle a deploy operation publishes. An empty
// BundleID deploys the content item's active bundle.
type DeployData struct {
	GUID     string
	BundleID string
}

// handleCrudOperation is a helper that handles the common CRUD pattern.
func handleCrudOperation(
	operation BatchOperation,
	createFunc func() (interface{}, error),
	updateFunc func() (interface{}, error),
	deleteFunc func() (interface{}, error),
	getFunc func() (interface{}, error),
) *BatchResult {
	result := &BatchResult{ID: operation.ID}

	switch operation.Type {
	case "create":
		data, err := createFunc()
		result.Success = err == nil
		result.Data = data
		result.Error = err
	case "update":
		data, err := updateFunc()
		result.Success = err == nil
		result.Data = data
		result.Error = err
	case "delete":
		data, err := deleteFunc()
		result.Success = err == nil
		result.Data = data
		result.Error = err
	case "get":
		data, err := getFunc()
		result.Success = err == nil
		result.Data = data
		result.Error = err
	default:
		result.Error = fmt.Errorf("%w: %s", ErrUnsupportedOperationType, operation.Type)
	}

	return result
}

// BatchOperation represents a single operation in a batch.
type BatchOperation struct {
	ID       string
	Type     string // "create", "update", "delete", "get", plus resource-specific verbs
	Resource string // "content", "user", "group", "tag"
	Data     interface{}
	Callback func(result *BatchResult)
}

// BatchResult represents the result of a batch operation.
type BatchResult struct {
	ID       string
	Success  bool
	Data     interface{}
	Error    error
	Duration time.Duration
}

// BatchExecutor executes independent operations concurrently against one
// client, bounded by a semaphore. Operations must not depend on each
// other's results; use a BatchTransaction when best-effort rollback of
// creates matters.
type BatchExecutor struct {
	client      Client
	concurrency int
	timeout     time.Duration
}

// NewBatchExecutor creates a new batch executor.
func NewBatchExecutor(client Client, concurrency int) *BatchExecutor {
	if concurrency <= 0 {
		concurrency = constants.DefaultConcurrencyLimit
	}

	return &BatchExecutor{
		client:      client,
		concurrency: concurrency,
		timeout:     constants.DefaultHTTPTimeout,
	}
}

// SetTimeout sets the per-operation timeout.
func (b *BatchExecutor) SetTimeout(timeout time.Duration) {
	b.timeout = timeout
}

// Execute runs a batch of operations. Results are returned in operation
// order regardless of completion order.
func (b *BatchExecutor) Execute(ctx context.Context, operations []BatchOperation) ([]BatchResult, error) {
	results := make([]BatchResult, len(operations))

	var waitGroup sync.WaitGroup

	semaphore := make(chan struct{}, b.concurrency)

	for index, operation := range operations {
		waitGroup.Add(1)

		go func(index int, operation BatchOperation) {
			defer waitGroup.Done()

			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			opCtx, cancel := context.WithTimeout(ctx, b.timeout)
			defer cancel()

			start := time.Now()
			result := b.executeOperation(opCtx, operation)
			result.Duration = time.Since(start)
			results[index] = *result

			if operation.Callback != nil {
				operation.Callback(result)
			}
		}(index, operation)
	}

	waitGroup.Wait()

	return results, nil
}

// executeOperation dispatches a single operation by resource kind.
func (b *BatchExecutor) executeOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	switch operation.Resource {
	case "content":
		return b.executeContentOperation(ctx, operation)
	case "user":
		return b.executeUserOperation(ctx, operation)
	case "group":
		return b.executeGroupOperation(ctx, operation)
	case "tag":
		return b.executeTagOperation(ctx, operation)
	default:
		return &BatchResult{
			ID:    operation.ID,
			Error: fmt.Errorf("%w: %s", ErrUnsupportedResourceType, operation.Resource),
		}
	}
}

// executeContentOperation handles content operations, including the
// deploy verb that is unique to content.
func (b *BatchExecutor) executeContentOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	if operation.Type == "deploy" {
		result := &BatchResult{ID: operation.ID}

		data, ok := operation.Data.(*DeployData)
		if !ok {
			result.Error = fmt.Errorf("%w deploy", ErrInvalidDataTypeContent)

			return result
		}

		task, err := b.client.Content().Deploy(ctx, data.GUID, data.BundleID)
		result.Success = err == nil
		result.Data = task
		result.Error = err

		return result
	}

	return handleCrudOperation(operation,
		func() (interface{}, error) {
			if req, ok := operation.Data.(*ContentCreateRequest); ok {
				return b.client.Content().Create(ctx, req)
			}

			return nil, fmt.Errorf("%w create", ErrInvalidDataTypeContent)
		},
		func() (interface{}, error) {
			if data, ok := operation.Data.(*UpdateDataWrapper[ContentUpdateRequest]); ok {
				return b.client.Content().Update(ctx, data.GUID, data.Request)
			}

			return nil, fmt.Errorf("%w update", ErrInvalidDataTypeContent)
		},
		func() (interface{}, error) {
			if guid, ok := operation.Data.(string); ok {
				err := b.client.Content().Delete(ctx, guid)
				if err != nil {
					return nil, fmt.Errorf("failed to delete content: %w", err)
				}

				return nil, nil
			}

			return nil, fmt.Errorf("%w delete", ErrInvalidDataTypeContent)
		},
		func() (interface{}, error) {
			if guid, ok := operation.Data.(string); ok {
				return b.client.Content().Get(ctx, guid)
			}

			return nil, fmt.Errorf("%w get", ErrInvalidDataTypeContent)
		},
	)
}

// executeUserOperation handles user operations. Users are never created
// or deleted through the API, so the verbs are update, get, lock, and
// unlock.
func (b *BatchExecutor) executeUserOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	result := &BatchResult{ID: operation.ID}

	switch operation.Type {
	case "update":
		data, ok := operation.Data.(*UpdateDataWrapper[UserUpdateRequest])
		if !ok {
			result.Error = fmt.Errorf("%w update", ErrInvalidDataTypeUser)

			return result
		}

		user, err := b.client.Users().Update(ctx, data.GUID, data.Request)
		result.Success = err == nil
		result.Data = user
		result.Error = err
	case "get":
		guid, ok := operation.Data.(string)
		if !ok {
			result.Error = fmt.Errorf("%w get", ErrInvalidDataTypeUser)

			return result
		}

		user, err := b.client.Users().Get(ctx, guid)
		result.Success = err == nil
		result.Data = user
		result.Error = err
	case "lock":
		guid, ok := operation.Data.(string)
		if !ok {
			result.Error = fmt.Errorf("%w lock", ErrInvalidDataTypeUser)

			return result
		}

		err := b.client.Users().Lock(ctx, guid)
		result.Success = err == nil
		result.Error = err
	case "unlock":
		guid, ok := operation.Data.(string)
		if !ok {
			result.Error = fmt.Errorf("%w unlock", ErrInvalidDataTypeUser)

			return result
		}

		err := b.client.Users().Unlock(ctx, guid)
		result.Success = err == nil
		result.Error = err
	default:
		result.Error = fmt.Errorf("%w: %s", ErrUnsupportedOperationType, operation.Type)
	}

	return result
}

// executeGroupOperation handles group operations. Groups have no update
// verb on the wire.
func (b *BatchExecutor) executeGroupOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	return handleCrudOperation(operation,
		func() (interface{}, error) {
			if req, ok := operation.Data.(*GroupCreateRequest); ok {
				return b.client.Groups().Create(ctx, req)
			}

			return nil, fmt.Errorf("%w create", ErrInvalidDataTypeGroup)
		},
		func() (interface{}, error) {
			return nil, fmt.Errorf("%w: group update", ErrUnsupportedOperationType)
		},
		func() (interface{}, error) {
			if guid, ok := operation.Data.(string); ok {
				err := b.client.Groups().Delete(ctx, guid)
				if err != nil {
					return nil, fmt.Errorf("failed to delete group: %w", err)
				}

				return nil, nil
			}

			return nil, fmt.Errorf("%w delete", ErrInvalidDataTypeGroup)
		},
		func() (interface{}, error) {
			if guid, ok := operation.Data.(string); ok {
				return b.client.Groups().Get(ctx, guid)
			}

			return nil, fmt.Errorf("%w get", ErrInvalidDataTypeGroup)
		},
	)
}

// executeTagOperation handles tag operations. Tags have no update verb on
// the wire.
func (b *BatchExecutor) executeTagOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	return handleCrudOperation(operation,
		func() (interface{}, error) {
			if req, ok := operation.Data.(*TagCreateRequest); ok {
				return b.client.Tags().Create(ctx, req)
			}

			return nil, fmt.Errorf("%w create", ErrInvalidDataTypeTag)
		},
		func() (interface{}, error) {
			return nil, fmt.Errorf("%w: tag update", ErrUnsupportedOperationType)
		},
		func() (interface{}, error) {
			if tagID, ok := operation.Data.(string); ok {
				err := b.client.Tags().Delete(ctx, tagID)
				if err != nil {
					return nil, fmt.Errorf("failed to delete tag: %w", err)
				}

				return nil, nil
			}

			return nil, fmt.Errorf("%w delete", ErrInvalidDataTypeTag)
		},
		func() (interface{}, error) {
			if tagID, ok := operation.Data.(string); ok {
				return b.client.Tags().Get(ctx, tagID)
			}

			return nil, fmt.Errorf("%w get", ErrInvalidDataTypeTag)
		},
	)
}

// BatchBuilder helps build batch operations.
type BatchBuilder struct {
	operations []BatchOperation
}

// NewBatchBuilder creates a new batch builder.
func NewBatchBuilder() *BatchBuilder {
	return &BatchBuilder{
		operations: make([]BatchOperation, 0),
	}
}

// AddCreateContent adds a content creation operation.
func (b *BatchBuilder) AddCreateContent(id string, request *ContentCreateRequest) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "create",
		Resource: "content",
		Data:     request,
	})

	return b
}

// AddUpdateContent adds a content update operation.
func (b *BatchBuilder) AddUpdateContent(id, guid string, request *ContentUpdateRequest) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "update",
		Resource: "content",
		Data: &UpdateDataWrapper[ContentUpdateRequest]{
			GUID:    guid,
			Request: request,
		},
	})

	return b
}

// AddDeleteContent adds a content deletion operation.
func (b *BatchBuilder) AddDeleteContent(id, guid string) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "delete",
		Resource: "content",
		Data:     guid,
	})

	return b
}

// AddGetContent adds a content get operation.
func (b *BatchBuilder) AddGetContent(id, guid string) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "get",
		Resource: "content",
		Data:     guid,
	})

	return b
}

// AddDeployContent adds a content deploy operation. An empty bundleID
// deploys the active bundle.
func (b *BatchBuilder) AddDeployContent(id, guid, bundleID string) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "deploy",
		Resource: "content",
		Data: &DeployData{
			GUID:     guid,
			BundleID: bundleID,
		},
	})

	return b
}

// AddUpdateUser adds a user update operation.
func (b *BatchBuilder) AddUpdateUser(id, guid string, request *UserUpdateRequest) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "update",
		Resource: "user",
		Data: &UpdateDataWrapper[UserUpdateRequest]{
			GUID:    guid,
			Request: request,
		},
	})

	return b
}

// AddLockUser adds a user lock operation.
func (b *BatchBuilder) AddLockUser(id, guid string) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "lock",
		Resource: "user",
		Data:     guid,
	})

	return b
}

// AddUnlockUser adds a user unlock operation.
func (b *BatchBuilder) AddUnlockUser(id, guid string) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "unlock",
		Resource: "user",
		Data:     guid,
	})

	return b
}

// AddCreateGroup adds a group creation operation.
func (b *BatchBuilder) AddCreateGroup(id string, request *GroupCreateRequest) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "create",
		Resource: "group",
		Data:     request,
	})

	return b
}

// AddDeleteGroup adds a group deletion operation.
func (b *BatchBuilder) AddDeleteGroup(id, guid string) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "delete",
		Resource: "group",
		Data:     guid,
	})

	return b
}

// AddCreateTag adds a tag creation operation.
func (b *BatchBuilder) AddCreateTag(id string, request *TagCreateRequest) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "create",
		Resource: "tag",
		Data:     request,
	})

	return b
}

// AddDeleteTag adds a tag deletion operation.
func (b *BatchBuilder) AddDeleteTag(id, tagID string) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "delete",
		Resource: "tag",
		Data:     tagID,
	})

	return b
}

// AddOperation adds a custom operation.
func (b *BatchBuilder) AddOperation(operation BatchOperation) *BatchBuilder {
	b.operations = append(b.operations, operation)

	return b
}

// Build returns the built operations.
func (b *BatchBuilder) Build() []BatchOperation {
	return b.operations
}

// BatchTransaction represents a transactional batch of operations. The
// server has no transactions; rollback is best-effort deletion of the
// records the batch created.
type BatchTransaction struct {
	operations []BatchOperation
	results    []BatchResult
	executor   *BatchExecutor
	rollback   bool
}

// NewBatchTransaction creates a new batch transaction.
func NewBatchTransaction(executor *BatchExecutor) *BatchTransaction {
	return &BatchTransaction{
		executor:   executor,
		operations: make([]BatchOperation, 0),
		rollback:   true,
	}
}

// Add adds an operation to the transaction.
func (t *BatchTransaction) Add(operation BatchOperation) *BatchTransaction {
	t.operations = append(t.operations, operation)

	return t
}

// SetRollback sets whether to rollback on failure.
func (t *BatchTransaction) SetRollback(rollback bool) *BatchTransaction {
	t.rollback = rollback

	return t
}

// Execute executes the transaction.
func (t *BatchTransaction) Execute(ctx context.Context) ([]BatchResult, error) {
	results, err := t.executor.Execute(ctx, t.operations)
	t.results = results

	var failedOps []string

	for _, result := range results {
		if !result.Success {
			failedOps = append(failedOps, result.ID)
		}
	}

	if len(failedOps) > 0 && t.rollback {
		t.performRollback(ctx)

		return results, fmt.Errorf("%w, %d operations failed: %v", ErrTransactionFailed, len(failedOps), failedOps)
	}

	return results, err
}

// performRollback deletes the records created by successful operations.
// Deletes and updates cannot be undone; those are left for manual
// intervention.
func (t *BatchTransaction) performRollback(ctx context.Context) {
	var rollbackOps []BatchOperation

	for i, result := range t.results {
		if !result.Success || t.operations[i].Type != "create" {
			continue
		}

		original := t.operations[i]

		uid, ok := rollbackTarget(original.Resource, result.Data)
		if !ok {
			continue
		}

		rollbackOps = append(rollbackOps, BatchOperation{
			ID:       "rollback_" + original.ID,
			Type:     "delete",
			Resource: original.Resource,
			Data:     uid,
		})
	}

	if len(rollbackOps) > 0 {
		_, _ = t.executor.Execute(ctx, rollbackOps)
	}
}

// rollbackTarget extracts the identifier a rollback delete needs from a
// create result.
func rollbackTarget(resource string, data interface{}) (string, bool) {
	switch resource {
	case "content":
		if item, ok := data.(*ContentItem); ok && item.GUID() != "" {
			return item.GUID(), true
		}
	case "group":
		if group, ok := data.(*Group); ok && group.GUID() != "" {
			return group.GUID(), true
		}
	case "tag":
		if tag, ok := data.(*Tag); ok && tag.ID() != "" {
			return tag.ID(), true
		}
	}

	return "", false
}
