// internals/features/users/user/service/user_service.go
package service

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"pmhub_backend/internals/constants"
	planModel "pmhub_backend/internals/features/projects/plans/model"
	userDTO "pmhub_backend/internals/features/users/user/dto"
	userModel "pmhub_backend/internals/features/users/user/model"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService { return &UserService{DB: db} }

func (s *UserService) Get(id uuid.UUID) (*userModel.UserModel, error) {
	var m userModel.UserModel
	if err := s.DB.First(&m, "user_id = ? AND user_deleted_at IS NULL", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "用户不存在")
		}
		return nil, err
	}
	return &m, nil
}

func (s *UserService) Create(req userDTO.CreateUserRequest) (*userModel.UserModel, error) {
	if req.TeamLeaderID != nil {
		leader, err := s.Get(*req.TeamLeaderID)
		if err != nil {
			return nil, err
		}
		if leader.UserRole != constants.RoleLeader {
			return nil, fiber.NewError(fiber.StatusBadRequest, "team_leader_id 必须指向组长")
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	m := req.ToModel(string(hashed))
	if err := s.DB.Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fiber.NewError(fiber.StatusConflict, "用户名已存在")
		}
		return nil, err
	}
	return m, nil
}

// Update: perubahan role leader -> non-leader melepas anggota timnya.
func (s *UserService) Update(id uuid.UUID, req userDTO.UpdateUserRequest) (*userModel.UserModel, error) {
	var out *userModel.UserModel
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var m userModel.UserModel
		if err := tx.First(&m, "user_id = ? AND user_deleted_at IS NULL", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "用户不存在")
			}
			return err
		}

		updates := map[string]interface{}{}
		if req.Email != nil {
			updates["user_email"] = *req.Email
		}
		if req.Password != nil {
			hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			updates["user_password"] = string(hashed)
		}
		if req.Role != nil && *req.Role != m.UserRole {
			updates["user_role"] = *req.Role
			if m.UserRole == constants.RoleLeader {
				if err := detachTeamMembers(tx, m.UserID); err != nil {
					return err
				}
			}
		}
		if req.TeamLeaderID != nil {
			if *req.TeamLeaderID == uuid.Nil {
				// uuid kosong = lepas dari tim; penugasan subproject ikut dilepas
				updates["user_team_leader_id"] = nil
				if err := tx.Model(&planModel.SubprojectModel{}).
					Where("subproject_employee_id = ?", m.UserID).
					Update("subproject_employee_id", nil).Error; err != nil {
					return err
				}
			} else {
				var leader userModel.UserModel
				if err := tx.First(&leader, "user_id = ? AND user_deleted_at IS NULL", *req.TeamLeaderID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fiber.NewError(fiber.StatusBadRequest, "team_leader_id 必须指向组长")
					}
					return err
				}
				if leader.UserRole != constants.RoleLeader {
					return fiber.NewError(fiber.StatusBadRequest, "team_leader_id 必须指向组长")
				}
				updates["user_team_leader_id"] = *req.TeamLeaderID
			}
		}
		if req.IsActive != nil {
			updates["user_is_active"] = *req.IsActive
		}

		if len(updates) > 0 {
			if err := tx.Model(&userModel.UserModel{}).
				Where("user_id = ?", id).
				Updates(updates).Error; err != nil {
				return err
			}
		}
		return tx.First(&m, "user_id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	out, err = s.Get(id)
	return out, err
}

// Delete: soft delete + pelepasan relasi. Member yang dihapus dilepas dari
// subproject yang ditugaskan padanya; leader yang dihapus dilepas dari
// anggota timnya.
func (s *UserService) Delete(id uuid.UUID) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var m userModel.UserModel
		if err := tx.First(&m, "user_id = ? AND user_deleted_at IS NULL", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "用户不存在")
			}
			return err
		}

		if err := tx.Model(&planModel.SubprojectModel{}).
			Where("subproject_employee_id = ?", id).
			Update("subproject_employee_id", nil).Error; err != nil {
			return err
		}
		if m.UserRole == constants.RoleLeader {
			if err := detachTeamMembers(tx, id); err != nil {
				return err
			}
		}

		now := time.Now()
		return tx.Model(&userModel.UserModel{}).
			Where("user_id = ?", id).
			Updates(map[string]interface{}{
				"user_deleted_at": now,
				"user_is_active":  false,
			}).Error
	})
}

// detachTeamMembers melepas seluruh anggota tim leaderID. Relasi ke leader
// di-NULL-kan, dan penugasan subproject para anggota ikut dilepas dalam
// transaksi yang sama.
func detachTeamMembers(tx *gorm.DB, leaderID uuid.UUID) error {
	var memberIDs []uuid.UUID
	if err := tx.Model(&userModel.UserModel{}).
		Where("user_team_leader_id = ?", leaderID).
		Pluck("user_id", &memberIDs).Error; err != nil {
		return err
	}
	if len(memberIDs) == 0 {
		return nil
	}

	if err := tx.Model(&planModel.SubprojectModel{}).
		Where("subproject_employee_id IN ?", memberIDs).
		Update("subproject_employee_id", nil).Error; err != nil {
		return err
	}
	return tx.Model(&userModel.UserModel{}).
		Where("user_team_leader_id = ?", leaderID).
		Update("user_team_leader_id", nil).Error
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// pesan driver: postgres 23505 / sqlite UNIQUE constraint
	return strings.Contains(err.Error(), "duplicate key") ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}
