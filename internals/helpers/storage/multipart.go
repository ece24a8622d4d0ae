package storage

import (
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// DocumentFields are the multipart keys accepted for enrollment documents.
var DocumentFields = []string{"documents[]", "documents", "files[]", "files", "file"}

// CollectUploadFiles gathers files from the preferred keys first, then any other key.
func CollectUploadFiles(form *multipart.Form, candidates []string) []*multipart.FileHeader {
	if form == nil || form.File == nil {
		return nil
	}
	var out []*multipart.FileHeader
	seen := map[string]bool{}
	add := func(key string) {
		for _, fh := range form.File[key] {
			if fh != nil && fh.Filename != "" {
				out = append(out, fh)
			}
		}
		seen[key] = true
	}
	for _, key := range candidates {
		add(key)
	}
	for key := range form.File {
		if !seen[key] {
			add(key)
		}
	}
	return out
}

func IsMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}
