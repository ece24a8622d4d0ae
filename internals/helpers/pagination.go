package helper

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

/* ===============================
   Paging resolver (query → page/perPage/offset)
=================================*/

type Paging struct {
	Page    int
	PerPage int
	Offset  int
	Limit   int
}

// ResolvePaging reads ?page= & ?per_page= (alias ?limit=).
// maxPerPage 0 means no cap.
func ResolvePaging(c *fiber.Ctx, defaultPerPage, maxPerPage int) Paging {
	pageStr := strings.TrimSpace(c.Query("page", "1"))

	perPageStr := strings.TrimSpace(c.Query("per_page"))
	if perPageStr == "" {
		perPageStr = strings.TrimSpace(c.Query("limit", strconv.Itoa(defaultPerPage)))
	}
	return resolvePaging(pageStr, perPageStr, defaultPerPage, maxPerPage)
}

func resolvePaging(pageStr, perPageStr string, defaultPerPage, maxPerPage int) Paging {
	page, _ := strconv.Atoi(pageStr)
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(perPageStr)
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if maxPerPage > 0 && perPage > maxPerPage {
		perPage = maxPerPage
	}
	return Paging{
		Page:    page,
		PerPage: perPage,
		Offset:  (page - 1) * perPage,
		Limit:   perPage,
	}
}

func BuildPagination(total int64, p Paging) *Pagination {
	perPage := p.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := p.Page
	if page <= 0 {
		page = 1
	}
	totalPages := int((total + int64(perPage) - 1) / int64(perPage)) // ceil
	if totalPages == 0 {
		totalPages = 1
	}
	return &Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// ResolveSort picks an ORDER BY from a whitelist (?sort_by=&order=).
func ResolveSort(c *fiber.Ctx, allowed map[string]string, defaultKey, defaultDir string) string {
	key := strings.ToLower(strings.TrimSpace(c.Query("sort_by")))
	col, ok := allowed[key]
	if !ok {
		col = allowed[defaultKey]
	}
	dir := strings.ToLower(strings.TrimSpace(c.Query("order", defaultDir)))
	if dir != "asc" {
		dir = "desc"
	}
	return col + " " + strings.ToUpper(dir)
}
