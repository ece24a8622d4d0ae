package helper

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

var (
	reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	reHyphen   = regexp.MustCompile(`-+`)
)

// Slugify: "Colegio San José de Ñuñoa" → "colegio-san-jose-de-nunoa".
// Diacritics stripped, [a-z0-9-] only, maxLen default 100, fallback "colegio".
func Slugify(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = 100
	}
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	s = reNonAlnum.ReplaceAllString(b.String(), "-")
	s = reHyphen.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if len(s) > maxLen {
		s = strings.Trim(s[:maxLen], "-")
	}
	if s == "" {
		s = "colegio"
	}
	return s
}

// EnsureUniqueSlug appends -2, -3 … until table.column has no live row with that slug.
func EnsureUniqueSlug(ctx context.Context, db *gorm.DB, table, column, base string, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = 100
	}
	slug := base
	for i := 0; i < 50; i++ {
		var count int64
		if err := db.WithContext(ctx).Table(table).
			Where(fmt.Sprintf("LOWER(%s) = ?", column), strings.ToLower(slug)).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		suffix := fmt.Sprintf("-%d", i+2)
		keep := maxLen - len(suffix)
		if keep < 1 {
			keep = 1
		}
		trimmed := base
		if len(trimmed) > keep {
			trimmed = strings.Trim(trimmed[:keep], "-")
		}
		slug = trimmed + suffix
	}
	return "", fmt.Errorf("no se pudo generar slug único para %q", base)
}
