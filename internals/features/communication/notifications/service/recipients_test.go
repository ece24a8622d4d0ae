package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessagesDedupesByEmail(t *testing.T) {
	msgs := Messages([]Recipient{
		{Name: "Ana", Email: "ana@colegio.cl"},
		{Name: "Ana Pérez", Email: " ANA@colegio.cl "},
		{Name: "Sin correo", Email: ""},
		{Name: "Luis", Email: "luis@colegio.cl"},
	})
	require.Len(t, msgs, 2)
	assert.Equal(t, "Ana", msgs[0].To[0].Name)
	assert.Equal(t, "luis@colegio.cl", msgs[1].To[0].Address)
}
