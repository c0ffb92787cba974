// internals/features/backup/service/backup_service.go
package service

import (
	"archive/zip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"pmhub_backend/internals/configs"
	backupModel "pmhub_backend/internals/features/backup/model"
	"pmhub_backend/internals/mailer"
)

// BackupService mengarsip tiap source dir menjadi satu zip harian di
// BACKUP_DIR, memangkas arsip lama melebihi retensi, lalu mengirim
// laporan email. Setiap run dicatat sebagai baris backup_runs.
type BackupService struct {
	DB        *gorm.DB
	Mailer    *mailer.Mailer
	Sources   []string
	Dir       string
	Retention int
	ReportTo  []string
}

func NewBackupService(db *gorm.DB, m *mailer.Mailer) *BackupService {
	return &BackupService{
		DB:        db,
		Mailer:    m,
		Sources:   configs.BackupSources,
		Dir:       configs.BackupDir,
		Retention: configs.BackupRetention,
		ReportTo:  configs.ReportTo,
	}
}

// Run menjalankan satu siklus backup penuh dan mengembalikan baris catatannya.
func (s *BackupService) Run() (*backupModel.BackupRunModel, error) {
	run := &backupModel.BackupRunModel{
		BackupRunSources:   s.Sources,
		BackupRunStartedAt: time.Now(),
	}

	archives, removed, runErr := s.execute()
	run.BackupRunArchives = archives
	run.BackupRunRemoved = removed
	if runErr != nil {
		msg := runErr.Error()
		run.BackupRunError = &msg
	}

	now := time.Now()
	run.BackupRunFinishedAt = &now

	run.BackupRunMailed = s.mailReport(run)

	if err := s.DB.Create(run).Error; err != nil {
		log.Printf("[ERROR] catat backup run: %v", err)
		return run, err
	}
	return run, runErr
}

func (s *BackupService) execute() (archives, removed int, err error) {
	if len(s.Sources) == 0 {
		return 0, 0, fmt.Errorf("BACKUP_SOURCES kosong")
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return 0, 0, err
	}

	stamp := time.Now().Format("20060102_150405")
	var firstErr error
	for _, src := range s.Sources {
		name := fmt.Sprintf("%s_%s.zip", filepath.Base(filepath.Clean(src)), stamp)
		dst := filepath.Join(s.Dir, name)
		if err := zipDir(src, dst); err != nil {
			log.Printf("[ERROR] arsip %s: %v", src, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		archives++
		log.Printf("[INFO] arsip dibuat: %s", name)

		n, err := s.prune(filepath.Base(filepath.Clean(src)))
		if err != nil {
			log.Printf("[WARN] pangkas arsip lama %s: %v", src, err)
			continue
		}
		removed += n
	}
	return archives, removed, firstErr
}

// prune menyisakan Retention arsip terbaru per source; sisanya dihapus.
func (s *BackupService) prune(sourceBase string) (int, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return 0, err
	}

	prefix := sourceBase + "_"
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), prefix) && strings.HasSuffix(e.Name(), ".zip") {
			names = append(names, e.Name())
		}
	}
	// nama memuat timestamp; urutan leksikal = urutan waktu
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	removed := 0
	for i := s.Retention; i < len(names); i++ {
		if err := os.Remove(filepath.Join(s.Dir, names[i])); err != nil {
			log.Printf("[WARN] hapus arsip %s: %v", names[i], err)
			continue
		}
		removed++
	}
	return removed, nil
}

func (s *BackupService) mailReport(run *backupModel.BackupRunModel) bool {
	if !s.Mailer.IsConfigured() || len(s.ReportTo) == 0 {
		return false
	}

	status := "成功"
	if run.BackupRunError != nil {
		status = "失败"
	}
	subject := fmt.Sprintf("备份报告 %s — %s", run.BackupRunStartedAt.Format("2006-01-02"), status)

	var b strings.Builder
	fmt.Fprintf(&b, "备份时间: %s\n", run.BackupRunStartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "备份目录: %s\n", strings.Join(run.BackupRunSources, ", "))
	fmt.Fprintf(&b, "生成压缩包: %d\n", run.BackupRunArchives)
	fmt.Fprintf(&b, "清理旧压缩包: %d\n", run.BackupRunRemoved)
	if run.BackupRunError != nil {
		fmt.Fprintf(&b, "错误: %s\n", *run.BackupRunError)
	}

	if err := s.Mailer.Send(s.ReportTo, subject, b.String()); err != nil {
		log.Printf("[WARN] kirim laporan backup: %v", err)
		return false
	}
	return true
}

// zipDir mengemas isi dir secara rekursif; symlink dilewati.
func zipDir(srcDir, dstZip string) error {
	info, err := os.Stat(srcDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s bukan direktori", srcDir)
	}

	out, err := os.Create(dstZip)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	defer zw.Close()

	return filepath.Walk(srcDir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() || !fi.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}

		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
}
