package scheduler

import (
	"log"
	"time"

	mergeService "pmhub_backend/internals/features/files/pdfmerge/service"
)

// StartPreviewReaper memungut sesi preview yang melewati TTL berikut
// staging dir-nya.
func StartPreviewReaper(store *mergeService.PreviewStore, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()

		log.Println("[REAPER] preview reaper aktif")
		for {
			select {
			case <-ticker.C:
				n, err := store.ReapOlderThan(store.TTL)
				if err != nil {
					log.Printf("[ERROR] preview reaper: %v", err)
					continue
				}
				if n > 0 {
					log.Printf("[CLEANUP] %d sesi preview kedaluwarsa dihapus", n)
				}
			case <-stop:
				log.Println("[REAPER] preview reaper berhenti")
				return
			}
		}
	}()
}
