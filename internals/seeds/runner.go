package seeds

import (
	"gorm.io/gorm"

	users "pmhub_backend/internals/seeds/users"
)

// RunAllSeeds dipanggil manual saat setup lingkungan baru.
func RunAllSeeds(db *gorm.DB) {
	users.SeedUsersFromJSON(db, "internals/seeds/users/data_users.json")
}
