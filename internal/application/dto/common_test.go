package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reflex/inventario-api/internal/application/dto"
)

func TestPageRequest_Normalize(t *testing.T) {
	cases := []struct {
		name string
		in   dto.PageRequest
		want dto.PageRequest
	}{
		{"vacío usa el límite por defecto", dto.PageRequest{}, dto.PageRequest{Limit: dto.DefaultPageLimit}},
		{"límite dentro del rango", dto.PageRequest{Limit: 50, Offset: 10}, dto.PageRequest{Limit: 50, Offset: 10}},
		{"límite acotado al máximo", dto.PageRequest{Limit: 500}, dto.PageRequest{Limit: dto.MaxPageLimit}},
		{"offset negativo", dto.PageRequest{Limit: 5, Offset: -3}, dto.PageRequest{Limit: 5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page := tc.in
			page.Normalize()
			assert.Equal(t, tc.want, page)
		})
	}
}
