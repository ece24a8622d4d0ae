package configs

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

var (
	JWTSecret      string
	GoogleClientID string
	FrontendURL    string
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ No se encontró archivo .env, usando ENV del sistema")
		} else {
			log.Println("✅ Archivo .env cargado")
		}
	} else {
		log.Println("🚀 Running in Railway, usando ENV del sistema")
	}

	JWTSecret = GetEnv("JWT_SECRET")
	GoogleClientID = GetEnv("GOOGLE_CLIENT_ID")
	FrontendURL = strings.TrimRight(GetEnv("FRONTEND_URL", "http://localhost:5173"), "/")

	if JWTSecret == "" {
		log.Println("❌ JWT_SECRET no está configurado!")
	} else {
		log.Println("✅ JWT_SECRET cargado.")
	}
	if GoogleClientID == "" {
		log.Println("⚠️ GOOGLE_CLIENT_ID vacío, login con Google deshabilitado")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if (!exists || strings.TrimSpace(value) == "") && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return strings.TrimSpace(value)
}

func GetEnvInt(key string, def int) int {
	if v := GetEnv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func GetEnvBool(key string, def bool) bool {
	v := GetEnv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// GetEnvList splits a comma separated value, dropping blanks.
func GetEnvList(key string, def string) []string {
	raw := GetEnv(key, def)
	out := make([]string, 0)
	for _, p := range strings.Split(raw, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

/* =======================
   Typed snapshot
======================= */

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type Config struct {
	Port                    string
	JWTSecret               string
	JWTTTL                  time.Duration
	Timezone                *time.Location
	FrontendURL             string
	DefaultAccountPassword  string
	MailDriver              string
	SendgridAPIKey          string
	SMTP                    SMTPConfig
	StorageDriver           string
	MidtransServerKey       string
	MidtransUseProd         bool
	RedisURL                string
	GoogleClientID          string
	OverdueCronSchedule     string
	NotificationSenderRoles []string
}

// Load builds the config snapshot. LoadEnv must run first.
func Load() Config {
	loc, err := time.LoadLocation(GetEnv("APP_TIMEZONE", "America/Santiago"))
	if err != nil {
		log.Printf("[WARN] APP_TIMEZONE inválido (%v), usando UTC", err)
		loc = time.UTC
	}
	return Config{
		Port:                   GetEnv("PORT", "3000"),
		JWTSecret:              JWTSecret,
		JWTTTL:                 time.Duration(GetEnvInt("JWT_TTL_MINUTES", 720)) * time.Minute,
		Timezone:               loc,
		FrontendURL:            FrontendURL,
		DefaultAccountPassword: GetEnv("DEFAULT_ACCOUNT_PASSWORD", "Colegio2024!"),
		MailDriver:             strings.ToLower(GetEnv("MAIL_DRIVER", "console")),
		SendgridAPIKey:         GetEnv("SENDGRID_API_KEY"),
		SMTP: SMTPConfig{
			Host:     GetEnv("SMTP_HOST"),
			Port:     GetEnvInt("SMTP_PORT", 587),
			User:     GetEnv("SMTP_USER"),
			Password: GetEnv("SMTP_PASSWORD"),
			From:     GetEnv("SMTP_FROM", "no-reply@colegio.cl"),
		},
		StorageDriver:           strings.ToLower(GetEnv("STORAGE_DRIVER", "oss")),
		MidtransServerKey:       GetEnv("MIDTRANS_SERVER_KEY"),
		MidtransUseProd:         GetEnvBool("MIDTRANS_USE_PROD", false),
		RedisURL:                GetEnv("REDIS_URL"),
		GoogleClientID:          GoogleClientID,
		OverdueCronSchedule:     GetEnv("OVERDUE_CRON_SCHEDULE", "0 3 * * *"),
		NotificationSenderRoles: GetEnvList("NOTIFICATION_SENDER_ROLES", "admin,sostenedor,director,utp,secretary"),
	}
}

// =======================
// DATABASE CONNECTOR (CLI)
// =======================
func InitCommandDB() *gorm.DB {
	dsn := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		GetEnv("DB_USER"), GetEnv("DB_PASSWORD"), GetEnv("DB_HOST"),
		GetEnv("DB_PORT", "5432"), GetEnv("DB_NAME"), GetEnv("DB_SSLMODE", "require"))

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: NewGormLogger(),
	})
	if err != nil {
		log.Fatalf("❌ Error de conexión a la base de datos (CLI): %v", err)
	}
	log.Println("✅ Base de datos (CLI) conectada.")
	return db
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger() gormLogger.Interface {
	level := gormLogger.Warn
	if GetEnvBool("DB_LOG_QUERIES", false) {
		level = gormLogger.Info
	}
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      level,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	l.LogLevel = level
	return l
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		log.Printf("[INFO] "+msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		log.Printf("[WARN] "+msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	log.Printf("[ERROR] "+msg, data...)
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()
	file := utils.FileWithLineNum()

	switch {
	case err != nil && err != gorm.ErrRecordNotFound:
		log.Printf("[ERROR] %s | %v | %s | %d rows | %s", file, err, elapsed, rows, sql)
	case elapsed > l.SlowThreshold:
		log.Printf("[SLOW SQL] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	case l.LogLevel >= gormLogger.Info:
		log.Printf("[QUERY] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	}
}
