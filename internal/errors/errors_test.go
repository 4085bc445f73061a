package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"codeberg.org/mutker/producflow/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	f := errors.New()

	assert.Equal(t, "Resource not found", f.New(errors.ErrResourceNotFound).Error())
	assert.Equal(t, "custom", f.WithMessage(errors.ErrInternal, "custom").Error())
	assert.Equal(t, "Invalid argument provided: shift", f.WithData(errors.ErrInvalidArgument, "shift").Error())
	assert.Equal(t, "unknown_code", f.New(errors.ErrorCode("unknown_code")).Error())
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := errors.New().Wrap(errors.ErrOperationFailed, cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "Operation failed: disk full", err.Error())
}

func TestApplicationCodeMessages(t *testing.T) {
	cause := stderrors.New("database is locked")
	err := errors.New().Wrap(errors.ErrCloseStore, cause)

	assert.Equal(t, errors.ErrCloseStore, err.Code())
	assert.Equal(t, "Failed to close record store: database is locked", err.Error())
	assert.Equal(t, "Failed to open record store", errors.GetErrorMessage(errors.ErrOpenStore))
	assert.Equal(t, "Failed to seed sample data", errors.GetErrorMessage(errors.ErrSeedStore))
}

func TestCodeOf(t *testing.T) {
	inner := errors.New().New(errors.ErrResourceNotFound)
	wrapped := fmt.Errorf("lookup: %w", inner)

	assert.Equal(t, errors.ErrResourceNotFound, errors.CodeOf(wrapped))
	assert.Equal(t, errors.ErrInternal, errors.CodeOf(stderrors.New("plain")))
	assert.Equal(t, errors.ErrInternal, errors.CodeOf(nil))
}

func TestHasCode(t *testing.T) {
	inner := errors.New().New(errors.ErrResourceNotFound)
	outer := errors.New().Wrap(errors.ErrOperationFailed, inner)

	assert.True(t, errors.HasCode(outer, errors.ErrResourceNotFound))
	assert.True(t, errors.HasCode(outer, errors.ErrOperationFailed))
	assert.False(t, errors.HasCode(outer, errors.ErrTimeout))
}

func TestWithDataDoesNotMutate(t *testing.T) {
	base := errors.New().New(errors.ErrInvalidArgument)
	withData := base.WithData("limit")

	assert.Nil(t, base.GetData())
	assert.Equal(t, "limit", withData.GetData())
	assert.Equal(t, errors.ErrInvalidArgument, withData.Code())
}
