package service

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pmhub_backend/internals/constants"
	planModel "pmhub_backend/internals/features/projects/plans/model"
	userDTO "pmhub_backend/internals/features/users/user/dto"
	userModel "pmhub_backend/internals/features/users/user/model"
)

func newUserDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userModel.UserModel{},
		&planModel.ProjectModel{},
		&planModel.SubprojectModel{},
	))
	return db
}

func intPtr(v int) *int { return &v }

func createUser(t *testing.T, svc *UserService, name string, role int, leaderID *uuid.UUID) *userModel.UserModel {
	t.Helper()
	m, err := svc.Create(userDTO.CreateUserRequest{
		UserName:     name,
		Password:     "secret123",
		Role:         intPtr(role),
		TeamLeaderID: leaderID,
	})
	require.NoError(t, err)
	return m
}

func TestCreateUserHashesPassword(t *testing.T) {
	db := newUserDB(t)
	svc := NewUserService(db)

	m := createUser(t, svc, "zhang_san", constants.RoleMember, nil)
	assert.NotEqual(t, "secret123", m.UserPassword)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(m.UserPassword), []byte("secret123")))
	assert.True(t, m.UserIsActive)
}

func TestCreateUserDuplicateName(t *testing.T) {
	db := newUserDB(t)
	svc := NewUserService(db)

	createUser(t, svc, "zhang_san", constants.RoleMember, nil)

	_, err := svc.Create(userDTO.CreateUserRequest{
		UserName: "zhang_san",
		Password: "secret123",
		Role:     intPtr(constants.RoleMember),
	})
	require.Error(t, err)
	var fe *fiber.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, fiber.StatusConflict, fe.Code)
	assert.Equal(t, "用户名已存在", fe.Message)
}

func TestCreateUserLeaderMustBeLeader(t *testing.T) {
	db := newUserDB(t)
	svc := NewUserService(db)

	manager := createUser(t, svc, "wang_jingli", constants.RoleManager, nil)

	_, err := svc.Create(userDTO.CreateUserRequest{
		UserName:     "li_si",
		Password:     "secret123",
		Role:         intPtr(constants.RoleMember),
		TeamLeaderID: &manager.UserID,
	})
	require.Error(t, err)
	var fe *fiber.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)
}

// seedAssignedSubproject membuat project + subproject yang ditugaskan ke
// employeeID.
func seedAssignedSubproject(t *testing.T, db *gorm.DB, employeeID uuid.UUID) *planModel.SubprojectModel {
	t.Helper()
	project := planModel.ProjectModel{
		ProjectName:    "测试项目",
		ProjectOwnerID: uuid.New(),
		ProjectStatus:  planModel.StatusPending,
	}
	require.NoError(t, db.Create(&project).Error)

	sub := planModel.SubprojectModel{
		SubprojectProjectID:  project.ProjectID,
		SubprojectName:       "分项",
		SubprojectStatus:     planModel.StatusPending,
		SubprojectEmployeeID: &employeeID,
	}
	require.NoError(t, db.Create(&sub).Error)
	return &sub
}

func TestDeleteMemberClearsAssignments(t *testing.T) {
	db := newUserDB(t)
	svc := NewUserService(db)

	member := createUser(t, svc, "li_si", constants.RoleMember, nil)
	sub := seedAssignedSubproject(t, db, member.UserID)

	require.NoError(t, svc.Delete(member.UserID))

	// subproject dilepas dari member yang dihapus
	var got planModel.SubprojectModel
	require.NoError(t, db.First(&got, "subproject_id = ?", sub.SubprojectID).Error)
	assert.Nil(t, got.SubprojectEmployeeID)

	// soft delete: baris masih ada, Get tidak menemukannya lagi
	var raw userModel.UserModel
	require.NoError(t, db.First(&raw, "user_id = ?", member.UserID).Error)
	assert.NotNil(t, raw.UserDeletedAt)
	assert.False(t, raw.UserIsActive)

	_, err := svc.Get(member.UserID)
	var fe *fiber.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, fiber.StatusNotFound, fe.Code)
}

func TestDeleteLeaderDetachesTeam(t *testing.T) {
	db := newUserDB(t)
	svc := NewUserService(db)

	leader := createUser(t, svc, "zu_zhang", constants.RoleLeader, nil)
	memberA := createUser(t, svc, "member_a", constants.RoleMember, &leader.UserID)
	memberB := createUser(t, svc, "member_b", constants.RoleMember, &leader.UserID)
	sub := seedAssignedSubproject(t, db, memberA.UserID)

	require.NoError(t, svc.Delete(leader.UserID))

	for _, id := range []uuid.UUID{memberA.UserID, memberB.UserID} {
		got, err := svc.Get(id)
		require.NoError(t, err)
		assert.Nil(t, got.UserTeamLeaderID)
	}

	// anggota yang dilepas dari tim juga dilepas dari subproject-nya
	var gotSub planModel.SubprojectModel
	require.NoError(t, db.First(&gotSub, "subproject_id = ?", sub.SubprojectID).Error)
	assert.Nil(t, gotSub.SubprojectEmployeeID)
}

func TestDemoteLeaderDetachesTeam(t *testing.T) {
	db := newUserDB(t)
	svc := NewUserService(db)

	leader := createUser(t, svc, "zu_zhang", constants.RoleLeader, nil)
	member := createUser(t, svc, "member_a", constants.RoleMember, &leader.UserID)
	sub := seedAssignedSubproject(t, db, member.UserID)

	updated, err := svc.Update(leader.UserID, userDTO.UpdateUserRequest{
		Role: intPtr(constants.RoleMember),
	})
	require.NoError(t, err)
	assert.Equal(t, constants.RoleMember, updated.UserRole)

	got, err := svc.Get(member.UserID)
	require.NoError(t, err)
	assert.Nil(t, got.UserTeamLeaderID)

	var gotSub planModel.SubprojectModel
	require.NoError(t, db.First(&gotSub, "subproject_id = ?", sub.SubprojectID).Error)
	assert.Nil(t, gotSub.SubprojectEmployeeID)
}

func TestUpdateClearTeamLeaderClearsAssignments(t *testing.T) {
	db := newUserDB(t)
	svc := NewUserService(db)

	leader := createUser(t, svc, "zu_zhang", constants.RoleLeader, nil)
	member := createUser(t, svc, "member_a", constants.RoleMember, &leader.UserID)
	sub := seedAssignedSubproject(t, db, member.UserID)

	// uuid all-zero = lepas dari tim
	clear := uuid.Nil
	updated, err := svc.Update(member.UserID, userDTO.UpdateUserRequest{
		TeamLeaderID: &clear,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.UserTeamLeaderID)

	var gotSub planModel.SubprojectModel
	require.NoError(t, db.First(&gotSub, "subproject_id = ?", sub.SubprojectID).Error)
	assert.Nil(t, gotSub.SubprojectEmployeeID)
}

func TestUpdateTeamLeaderMustBeLeader(t *testing.T) {
	db := newUserDB(t)
	svc := NewUserService(db)

	manager := createUser(t, svc, "wang_jingli", constants.RoleManager, nil)
	member := createUser(t, svc, "member_a", constants.RoleMember, nil)

	_, err := svc.Update(member.UserID, userDTO.UpdateUserRequest{
		TeamLeaderID: &manager.UserID,
	})
	require.Error(t, err)
	var fe *fiber.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)
}

func TestUpdatePasswordRehashes(t *testing.T) {
	db := newUserDB(t)
	svc := NewUserService(db)

	m := createUser(t, svc, "zhang_san", constants.RoleMember, nil)

	newPass := "newsecret456"
	updated, err := svc.Update(m.UserID, userDTO.UpdateUserRequest{Password: &newPass})
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.UserPassword), []byte(newPass)))
}
