package demo

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	courseModel "colegio_backend/internals/features/academics/courses/model"
	scheduleModel "colegio_backend/internals/features/academics/schedules/model"
	subjectModel "colegio_backend/internals/features/academics/subjects/model"
	tariffModel "colegio_backend/internals/features/finance/tariffs/model"
	tenantModel "colegio_backend/internals/features/tenants/model"
	authService "colegio_backend/internals/features/users/auth/service"
	userModel "colegio_backend/internals/features/users/user/model"
	helper "colegio_backend/internals/helpers"
)

//go:embed data_demo.json
var defaultData []byte

type Block struct {
	Day   int    `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
	Room  string `json:"room"`
}

type SubjectSeed struct {
	Name         string  `json:"name"`
	Code         string  `json:"code"`
	TeacherEmail string  `json:"teacherEmail"`
	WeeklyHours  int     `json:"weeklyHours"`
	Blocks       []Block `json:"blocks"`
}

type CourseSeed struct {
	Name             string        `json:"name"`
	Section          string        `json:"section"`
	Level            string        `json:"level"`
	Capacity         int           `json:"capacity"`
	HeadTeacherEmail string        `json:"headTeacherEmail"`
	Subjects         []SubjectSeed `json:"subjects"`
}

type UserSeed struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type TariffSeed struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	DueDay *int            `json:"dueDay"`
}

type Data struct {
	Tenant struct {
		Name         string          `json:"name"`
		Slug         string          `json:"slug"`
		AnnualFee    decimal.Decimal `json:"annualFee"`
		AcademicYear int             `json:"academicYear"`
	} `json:"tenant"`
	Users   []UserSeed   `json:"users"`
	Courses []CourseSeed `json:"courses"`
	Tariffs []TariffSeed `json:"tariffs"`
}

// Parse decodes and checks a demo file. Every referenced teacher must be
// listed in users and every block must be a valid HH:MM range.
func Parse(raw []byte) (Data, error) {
	var d Data
	if err := sonic.Unmarshal(raw, &d); err != nil {
		return d, fmt.Errorf("json inválido: %w", err)
	}
	if strings.TrimSpace(d.Tenant.Name) == "" {
		return d, errors.New("tenant.name es obligatorio")
	}
	emails := map[string]bool{}
	for _, u := range d.Users {
		if _, ok := constants.ParseRole(u.Role); !ok {
			return d, fmt.Errorf("usuario %s: rol desconocido %q", u.Email, u.Role)
		}
		emails[userModel.NormalizeEmail(u.Email)] = true
	}
	known := func(email string) bool { return email == "" || emails[userModel.NormalizeEmail(email)] }
	for _, c := range d.Courses {
		if !known(c.HeadTeacherEmail) {
			return d, fmt.Errorf("curso %s: profesor jefe %s no está en users", c.Name, c.HeadTeacherEmail)
		}
		for _, s := range c.Subjects {
			if !known(s.TeacherEmail) {
				return d, fmt.Errorf("asignatura %s: profesor %s no está en users", s.Name, s.TeacherEmail)
			}
			for _, b := range s.Blocks {
				if b.Day < 1 || b.Day > 7 || !helper.IsHHMM(b.Start) || !helper.IsHHMM(b.End) || b.End <= b.Start {
					return d, fmt.Errorf("asignatura %s: bloque inválido %d %s-%s", s.Name, b.Day, b.Start, b.End)
				}
			}
		}
	}
	return d, nil
}

// Seed loads the embedded demo school. It does nothing when the slug already exists.
func Seed(ctx context.Context, db *gorm.DB, password string) error {
	d, err := Parse(defaultData)
	if err != nil {
		return err
	}
	return SeedData(ctx, db, d, password)
}

func SeedData(ctx context.Context, db *gorm.DB, d Data, password string) error {
	slug := d.Tenant.Slug
	if slug == "" {
		slug = helper.Slugify(d.Tenant.Name, 100)
	}

	var n int64
	if err := db.WithContext(ctx).Model(&tenantModel.Tenant{}).Where("tenant_slug = ?", slug).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		log.Printf("ℹ️ colegio '%s' ya existe, seed omitido", slug)
		return nil
	}

	hash, err := authService.HashPassword(password)
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t := tenantModel.Tenant{
			TenantName:         d.Tenant.Name,
			TenantSlug:         slug,
			TenantAnnualFee:    d.Tenant.AnnualFee,
			TenantAcademicYear: d.Tenant.AcademicYear,
			TenantIsActive:     true,
		}
		if err := tx.Create(&t).Error; err != nil {
			return fmt.Errorf("tenant: %w", err)
		}

		users := lo.Map(d.Users, func(u UserSeed, _ int) userModel.User {
			return userModel.User{
				UserTenantID: &t.TenantID,
				UserEmail:    u.Email,
				UserPassword: hash,
				UserFullName: u.FullName,
				UserRole:     u.Role,
				UserIsActive: true,
			}
		})
		if len(users) > 0 {
			if err := tx.Create(&users).Error; err != nil {
				return fmt.Errorf("usuarios: %w", err)
			}
		}
		byEmail := lo.SliceToMap(users, func(u userModel.User) (string, uuid.UUID) {
			return userModel.NormalizeEmail(u.UserEmail), u.UserID
		})
		teacher := func(email string) *uuid.UUID {
			if id, ok := byEmail[userModel.NormalizeEmail(email)]; ok {
				return &id
			}
			return nil
		}

		for _, cs := range d.Courses {
			c := courseModel.Course{
				CourseTenantID:          t.TenantID,
				CourseName:              cs.Name,
				CourseLevel:             optional(cs.Level),
				CourseSection:           optional(cs.Section),
				CourseYear:              d.Tenant.AcademicYear,
				CourseHeadTeacherUserID: teacher(cs.HeadTeacherEmail),
			}
			if cs.Capacity > 0 {
				c.CourseCapacity = lo.ToPtr(cs.Capacity)
			}
			if err := tx.Create(&c).Error; err != nil {
				return fmt.Errorf("curso %s: %w", cs.Name, err)
			}

			for _, ss := range cs.Subjects {
				s := subjectModel.Subject{
					SubjectTenantID:      t.TenantID,
					SubjectCourseID:      c.CourseID,
					SubjectName:          ss.Name,
					SubjectCode:          optional(ss.Code),
					SubjectTeacherUserID: teacher(ss.TeacherEmail),
				}
				if ss.WeeklyHours > 0 {
					s.SubjectWeeklyHours = lo.ToPtr(ss.WeeklyHours)
				}
				if err := tx.Create(&s).Error; err != nil {
					return fmt.Errorf("asignatura %s: %w", ss.Name, err)
				}
				for _, b := range ss.Blocks {
					row := scheduleModel.Schedule{
						ScheduleTenantID:  t.TenantID,
						ScheduleCourseID:  c.CourseID,
						ScheduleSubjectID: s.SubjectID,
						ScheduleDayOfWeek: b.Day,
						ScheduleStartTime: b.Start,
						ScheduleEndTime:   b.End,
						ScheduleRoom:      optional(b.Room),
					}
					if err := tx.Create(&row).Error; err != nil {
						return fmt.Errorf("horario %s: %w", ss.Name, err)
					}
				}
			}
		}

		for _, ts := range d.Tariffs {
			tr := tariffModel.Tariff{
				TariffTenantID: t.TenantID,
				TariffName:     ts.Name,
				TariffAmount:   ts.Amount,
				TariffDueDay:   ts.DueDay,
				TariffIsActive: true,
			}
			if err := tx.Create(&tr).Error; err != nil {
				return fmt.Errorf("arancel %s: %w", ts.Name, err)
			}
		}

		log.Printf("✅ colegio demo '%s' creado: %d usuarios, %d cursos, %d aranceles",
			slug, len(users), len(d.Courses), len(d.Tariffs))
		return nil
	})
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
