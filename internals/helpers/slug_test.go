package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "colegio-san-jose-de-nunoa", Slugify("  Colegio San José de Ñuñoa ", 0))
	assert.Equal(t, "liceo-a-12", Slugify("Liceo A-12!!", 0))
	assert.Equal(t, "colegio", Slugify("¡¿?!", 0))
	assert.Equal(t, "abc", Slugify("abc-def", 4))
}
