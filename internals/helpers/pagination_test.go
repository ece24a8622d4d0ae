package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePagingClamps(t *testing.T) {
	p := resolvePaging("0", "500", 20, 100)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.PerPage)
	assert.Equal(t, 0, p.Offset)

	p = resolvePaging("3", "abc", 20, 100)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 40, p.Offset)
}

func TestBuildPagination(t *testing.T) {
	pg := BuildPagination(45, Paging{Page: 2, PerPage: 20})
	assert.Equal(t, 3, pg.TotalPages)
	assert.True(t, pg.HasNext)
	assert.True(t, pg.HasPrev)

	empty := BuildPagination(0, Paging{Page: 1, PerPage: 20})
	assert.Equal(t, 1, empty.TotalPages)
	assert.False(t, empty.HasNext)
}
