package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"pmhub_backend/internals/configs"
	announcementModel "pmhub_backend/internals/features/announcements/model"
	attendanceModel "pmhub_backend/internals/features/attendance/model"
	backupModel "pmhub_backend/internals/features/backup/model"
	fileModel "pmhub_backend/internals/features/files/files/model"
	previewModel "pmhub_backend/internals/features/files/pdfmerge/model"
	planModel "pmhub_backend/internals/features/projects/plans/model"
	activityModel "pmhub_backend/internals/features/users/activity/model"
	sessionModel "pmhub_backend/internals/features/users/sessions/model"
	userModel "pmhub_backend/internals/features/users/user/model"
)

var DB *gorm.DB

func ConnectDB() {
	log.Println("[INFO] Koneksi ke PostgreSQL...")

	sslmode := getenv("DB_SSLMODE", "require")
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=pmhub&options=-c statement_timeout=5000",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
		sslmode,
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // cocok untuk PgBouncer (transaction pooling)
	}), &gorm.Config{
		Logger: configs.NewGormLogger(),
	})
	if err != nil {
		log.Fatalf("[ERROR] Gagal konek DB: %v", err)
	}
	DB = db
	log.Println("[INFO] DB connected.")
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

// MigrateAll menjalankan AutoMigrate untuk semua model aplikasi.
func MigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&userModel.UserModel{},
		&sessionModel.SessionModel{},
		&activityModel.ActivityLogModel{},
		&planModel.ProjectModel{},
		&planModel.SubprojectModel{},
		&planModel.StageModel{},
		&planModel.TaskModel{},
		&planModel.ProgressUpdateModel{},
		&fileModel.FileModel{},
		&previewModel.PreviewSessionModel{},
		&announcementModel.AnnouncementModel{},
		&announcementModel.AnnouncementAttachmentModel{},
		&announcementModel.ReadStatusModel{},
		&attendanceModel.AttendanceReportModel{},
		&backupModel.BackupRunModel{},
	)
}

func WarmUpQueries() {
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := ping(); err != nil {
			log.Printf("warm-up ping err: %v", err)
		}
	}()
}

func ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
