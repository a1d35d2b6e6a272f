package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse(t *testing.T) {
	token, err := Generate("secreto", "u-1", "ana@example.com", RoleCliente, "inventario-api", 5)
	require.NoError(t, err)

	userID, email, role, err := Parse("secreto", token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
	assert.Equal(t, "ana@example.com", email)
	assert.Equal(t, RoleCliente, role)
}

func TestParse_Rechaza(t *testing.T) {
	token, err := Generate("secreto", "u-1", "ana@example.com", RoleAdmin, "inventario-api", 5)
	require.NoError(t, err)

	_, _, _, err = Parse("otro", token)
	assert.Error(t, err, "firma incorrecta")

	expired, err := Generate("secreto", "u-1", "ana@example.com", RoleAdmin, "inventario-api", -1)
	require.NoError(t, err)
	_, _, _, err = Parse("secreto", expired)
	assert.Error(t, err, "expirado")

	_, err = Generate("", "u-1", "", RoleAdmin, "x", 5)
	assert.Error(t, err)
}
