package configs

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

var (
	JWTSecret      string
	AccessTokenTTL time.Duration

	// Session idle threshold; requests past it answer 401 SESSION_EXPIRED.
	SessionIdleTimeout time.Duration

	UploadRoot  string
	StaticRoot  string
	PreviewTTL  time.Duration
	CJKFontPath string

	SearchBackend string // "meili" | "like"
	MeiliHost     string
	MeiliAPIKey   string

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	ReportTo     []string

	LLMEndpoint string
	LLMAPIKey   string
	LLMModel    string
	LLMTimeout  time.Duration

	BackupSources   []string
	BackupDir       string
	BackupRetention int
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("[WARN] .env tidak ditemukan, pakai ENV sistem")
	}

	JWTSecret = GetEnv("JWT_SECRET")
	if JWTSecret == "" {
		log.Println("[ERROR] JWT_SECRET belum diset!")
	}
	AccessTokenTTL = minutesEnv("ACCESS_TOKEN_TTL_MINUTES", 60)
	SessionIdleTimeout = minutesEnv("SESSION_IDLE_MINUTES", 60)

	UploadRoot = GetEnv("UPLOAD_ROOT", "uploads")
	StaticRoot = GetEnv("STATIC_ROOT", "static")
	PreviewTTL = minutesEnv("PREVIEW_TTL_MINUTES", 60)
	CJKFontPath = GetEnv("CJK_FONT_PATH")

	SearchBackend = strings.ToLower(GetEnv("SEARCH_BACKEND", "like"))
	MeiliHost = GetEnv("MEILI_HOST")
	MeiliAPIKey = GetEnv("MEILI_API_KEY")

	SMTPHost = GetEnv("SMTP_HOST")
	SMTPPort = GetEnv("SMTP_PORT", "587")
	SMTPUser = GetEnv("SMTP_USER")
	SMTPPassword = GetEnv("SMTP_PASSWORD")
	SMTPFrom = GetEnv("SMTP_FROM")
	ReportTo = splitCSV(GetEnv("REPORT_TO"))

	LLMEndpoint = GetEnv("LLM_ENDPOINT")
	LLMAPIKey = GetEnv("LLM_API_KEY")
	LLMModel = GetEnv("LLM_MODEL", "deepseek-chat")
	LLMTimeout = secondsEnv("LLM_TIMEOUT_SECONDS", 60)

	BackupSources = splitCSV(GetEnv("BACKUP_SOURCES"))
	BackupDir = GetEnv("BACKUP_DIR", "backups")
	BackupRetention = intEnv("BACKUP_RETENTION", 5)
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func intEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func minutesEnv(key string, defMinutes int) time.Duration {
	return time.Duration(intEnv(key, defMinutes)) * time.Minute
}

func secondsEnv(key string, defSeconds int) time.Duration {
	return time.Duration(intEnv(key, defSeconds)) * time.Second
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger() gormLogger.Interface {
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      gormLogger.Warn,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	l.LogLevel = level
	return l
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	log.Printf("[INFO] "+msg, data...)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	log.Printf("[WARN] "+msg, data...)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	log.Printf("[ERROR] "+msg, data...)
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()
	file := utils.FileWithLineNum()

	if err != nil {
		log.Printf("[ERROR] %s | %v | %s | %d rows | %s", file, err, elapsed, rows, sql)
	} else if elapsed > l.SlowThreshold {
		log.Printf("[SLOW SQL] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	}
}
