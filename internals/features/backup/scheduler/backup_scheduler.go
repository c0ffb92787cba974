package scheduler

import (
	"log"
	"time"

	backupService "pmhub_backend/internals/features/backup/service"
)

// StartDailyBackup menjalankan backup tiap hari pukul 02:00 waktu server.
func StartDailyBackup(svc *backupService.BackupService, stop <-chan struct{}) {
	go func() {
		log.Println("[INFO] scheduler backup harian aktif")
		for {
			next := nextRunAt(time.Now())
			timer := time.NewTimer(time.Until(next))
			select {
			case <-timer.C:
				log.Println("[INFO] backup harian dimulai")
				if _, err := svc.Run(); err != nil {
					log.Printf("[ERROR] backup harian: %v", err)
				}
			case <-stop:
				timer.Stop()
				log.Println("[INFO] scheduler backup harian berhenti")
				return
			}
		}
	}()
}

func nextRunAt(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), 2, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
