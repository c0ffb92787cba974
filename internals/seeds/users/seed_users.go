package users

import (
	"encoding/json"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"pmhub_backend/internals/features/users/user/model"
)

type UserSeed struct {
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     int    `json:"role"`
}

// SeedUsersFromJSON membuat user awal (admin dsb). User yang sudah ada
// dilewati.
func SeedUsersFromJSON(db *gorm.DB, filePath string) {
	log.Println("📥 Membaca file user:", filePath)

	file, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatalf("❌ Gagal membaca file JSON: %v", err)
	}

	var inputs []UserSeed
	if err := json.Unmarshal(file, &inputs); err != nil {
		log.Fatalf("❌ Gagal decode JSON: %v", err)
	}

	for _, data := range inputs {
		var existing model.UserModel
		if err := db.Where("user_name = ?", data.UserName).First(&existing).Error; err == nil {
			log.Printf("ℹ️ User '%s' sudah ada, dilewati.", data.UserName)
			continue
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("❌ Gagal hash password untuk '%s': %v", data.UserName, err)
			continue
		}

		newUser := model.UserModel{
			UserName:     data.UserName,
			UserPassword: string(hashed),
			UserRole:     data.Role,
			UserIsActive: true,
		}
		if data.Email != "" {
			newUser.UserEmail = &data.Email
		}

		if err := db.Create(&newUser).Error; err != nil {
			log.Printf("❌ Gagal insert user '%s': %v", data.UserName, err)
		} else {
			log.Printf("✅ Berhasil insert user '%s'", data.UserName)
		}
	}
}
