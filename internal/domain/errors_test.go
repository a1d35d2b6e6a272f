package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reflex/inventario-api/internal/domain"
)

func TestShortageError_MatchesInsufficientStock(t *testing.T) {
	err := fmt.Errorf("plan: %w", &domain.ShortageError{ProductCode: 7, Requested: 11, Available: 10})

	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var shortage *domain.ShortageError
	require.True(t, errors.As(err, &shortage))
	assert.Equal(t, 1, shortage.Missing())
	assert.Contains(t, err.Error(), "solicitado 11, disponible 10")
}

func TestApprovalError_ExponeFaltantesYCausa(t *testing.T) {
	appErr := &domain.ApprovalError{
		OrderNumber: 42,
		Shortages: []*domain.ShortageError{
			{ProductCode: 1, Requested: 5, Available: 2},
			{ProductCode: 3, Requested: 4, Available: 0},
		},
	}

	assert.True(t, errors.Is(appErr, domain.ErrInsufficientStock))
	assert.False(t, errors.Is(appErr, domain.ErrConcurrentModification))
	assert.Contains(t, appErr.Error(), "producto 1 faltan 3")
	assert.Contains(t, appErr.Error(), "producto 3 faltan 4")

	var shortage *domain.ShortageError
	require.True(t, errors.As(appErr, &shortage))
	assert.Equal(t, int64(1), shortage.ProductCode, "errors.As devuelve la primera línea")

	concurrent := &domain.ApprovalError{OrderNumber: 42, Cause: domain.ErrConcurrentModification}
	assert.True(t, errors.Is(concurrent, domain.ErrConcurrentModification))
	assert.False(t, errors.Is(concurrent, domain.ErrInsufficientStock))
}
