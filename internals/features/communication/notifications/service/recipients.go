package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	"colegio_backend/internals/helpers/mailer"
)

const (
	AudienceGuardians = "apoderados"
	AudienceStaff     = "staff"
)

// Recipient is one name/e-mail pair.
type Recipient struct {
	Name  string
	Email string
}

// Messages keeps the first occurrence of every e-mail (case-insensitive), one message each.
func Messages(list []Recipient) []mailer.Message {
	seen := make(map[string]struct{}, len(list))
	out := make([]mailer.Message, 0, len(list))
	for _, r := range list {
		key := strings.ToLower(strings.TrimSpace(r.Email))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, mailer.Message{To: mailer.Addresses([2]string{r.Name, r.Email})})
	}
	return out
}

// InstitutionalRecipients collects guardians (of the given courses, or the whole tenant)
// and active staff users of the tenant.
func InstitutionalRecipients(ctx context.Context, db *gorm.DB, tenantID uuid.UUID, courseIDs []uuid.UUID, audience []string) ([]Recipient, error) {
	want := func(a string) bool {
		if len(audience) == 0 {
			return true
		}
		for _, x := range audience {
			if x == a {
				return true
			}
		}
		return false
	}
	var out []Recipient

	if want(AudienceGuardians) {
		q := db.WithContext(ctx).Table("apoderados").
			Select("apoderado_first_name || ' ' || apoderado_last_name AS name, apoderado_email AS email").
			Where("apoderado_tenant_id = ? AND apoderado_deleted_at IS NULL AND apoderado_email IS NOT NULL", tenantID)
		if len(courseIDs) > 0 {
			q = q.Where(`apoderado_estudiante_id IN (SELECT enrollment_estudiante_id FROM enrollments
				WHERE enrollment_course_id IN ? AND enrollment_deleted_at IS NULL
				  AND enrollment_status NOT IN ('retirada','anulada'))`, courseIDs)
		}
		var rows []Recipient
		if err := q.Scan(&rows).Error; err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}

	if want(AudienceStaff) {
		staff := []string{
			string(constants.RoleSostenedor), string(constants.RoleDirector),
			string(constants.RoleUTP), string(constants.RoleTeacher),
		}
		var rows []Recipient
		if err := db.WithContext(ctx).Table("users").
			Select("user_full_name AS name, user_email AS email").
			Where("user_tenant_id = ? AND user_is_active = TRUE AND user_deleted_at IS NULL", tenantID).
			Where("user_role IN ?", staff).
			Scan(&rows).Error; err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}
