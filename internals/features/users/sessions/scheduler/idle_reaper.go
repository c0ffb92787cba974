package scheduler

import (
	"log"
	"time"

	sessionService "pmhub_backend/internals/features/users/sessions/service"
)

// StartIdleSessionReaper menjalankan worker yang menutup sesi idle
// setiap 5 menit. Threshold diambil dari registry.
func StartIdleSessionReaper(registry *sessionService.SessionRegistry, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				log.Println("[REAPER] Idle session reaper berhenti")
				return
			case <-ticker.C:
				n, err := registry.ReapIdle(registry.IdleTimeout)
				if err != nil {
					log.Printf("[REAPER ERROR] %v", err)
					continue
				}
				if n > 0 {
					log.Printf("[REAPER] %d sesi idle ditutup", n)
				}
			}
		}
	}()
}
