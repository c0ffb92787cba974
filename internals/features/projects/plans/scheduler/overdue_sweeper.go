package scheduler

import (
	"log"
	"time"

	planService "pmhub_backend/internals/features/projects/plans/service"
)

// StartOverdueSweeper menandai project/subproject yang lewat deadline dan
// belum completed sebagai overdue. Sweep memicu re-derivasi rollup biasa;
// status overdue tidak pernah dihitung saat read.
func StartOverdueSweeper(rollup *planService.RollupService, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				log.Println("[SWEEPER] Overdue sweeper berhenti")
				return
			case <-ticker.C:
				swept, err := rollup.SweepOverdue()
				if err != nil {
					log.Printf("[SWEEPER ERROR] %v", err)
				} else if swept > 0 {
					log.Printf("[SWEEPER] %d node dire-derivasi karena lewat deadline", swept)
				}
			}
		}
	}()
}
