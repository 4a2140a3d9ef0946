package users

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/farmfresh-in/farmfresh-backend/pkg/auth"
	"github.com/farmfresh-in/farmfresh-backend/pkg/config"
	"github.com/farmfresh-in/farmfresh-backend/pkg/enums"
	pkgerrors "github.com/farmfresh-in/farmfresh-backend/pkg/errors"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'user',
  phone TEXT,
  farm_name TEXT,
  farm_location TEXT,
  is_approved INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(users).Error)
	return db
}

func testConfigs() (config.JWTConfig, config.PasswordConfig) {
	jwtCfg := config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "farmfresh",
		ExpirationMinutes: 60,
	}
	pwCfg := config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
	return jwtCfg, pwCfg
}

func newUserService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	jwtCfg, pwCfg := testConfigs()
	svc, err := NewService(NewRepository(db), jwtCfg, pwCfg)
	require.NoError(t, err)
	return svc
}

func farmName(name string) *string {
	return &name
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupUsersTestDB(t)
	svc := newUserService(t, db)

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Asha Rao",
		Email:    "Asha@Example.com",
		Password: "a-long-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.Equal(t, enums.UserRoleUser, user.Role)
	assert.True(t, user.IsApproved)
	assert.NotEqual(t, "a-long-password", user.PasswordHash)

	session, err := svc.Login(context.Background(), "asha@example.com", "a-long-password")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.NotNil(t, session.User.LastLoginAt)

	jwtCfg, _ := testConfigs()
	claims, err := auth.ParseAccessToken(jwtCfg, session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, enums.UserRoleUser, claims.Role)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	db := setupUsersTestDB(t)
	svc := newUserService(t, db)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Asha Rao",
		Email:    "asha@example.com",
		Password: "a-long-password",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "asha@example.com", "wrong-password")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	_, err = svc.Login(context.Background(), "nobody@example.com", "whatever-pass")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	db := setupUsersTestDB(t)
	svc := newUserService(t, db)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Asha Rao",
		Email:    "asha@example.com",
		Password: "a-long-password",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{
		Name:     "Another Asha",
		Email:    "ASHA@example.com",
		Password: "other-password",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestRegisterFarmerStartsUnapproved(t *testing.T) {
	db := setupUsersTestDB(t)
	svc := newUserService(t, db)

	farmer, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ravi Kumar",
		Email:    "ravi@example.com",
		Password: "a-long-password",
		Role:     enums.UserRoleFarmer,
		FarmName: farmName("Green Acres"),
	})
	require.NoError(t, err)
	assert.False(t, farmer.IsApproved)

	_, err = svc.Register(context.Background(), RegisterInput{
		Name:     "No Farm",
		Email:    "nofarm@example.com",
		Password: "a-long-password",
		Role:     enums.UserRoleFarmer,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestLoginRejectsUnapprovedFarmer(t *testing.T) {
	db := setupUsersTestDB(t)
	svc := newUserService(t, db)

	farmer, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ravi Kumar",
		Email:    "ravi@example.com",
		Password: "a-long-password",
		Role:     enums.UserRoleFarmer,
		FarmName: farmName("Green Acres"),
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "ravi@example.com", "a-long-password")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = svc.ApproveFarmer(context.Background(), farmer.ID)
	require.NoError(t, err)

	session, err := svc.Login(context.Background(), "ravi@example.com", "a-long-password")
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleFarmer, session.User.Role)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	db := setupUsersTestDB(t)
	svc := newUserService(t, db)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Sneaky",
		Email:    "sneaky@example.com",
		Password: "a-long-password",
		Role:     enums.UserRoleAdmin,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestApproveFarmer(t *testing.T) {
	db := setupUsersTestDB(t)
	svc := newUserService(t, db)

	farmer, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ravi Kumar",
		Email:    "ravi@example.com",
		Password: "a-long-password",
		Role:     enums.UserRoleFarmer,
		FarmName: farmName("Green Acres"),
	})
	require.NoError(t, err)

	approved, err := svc.ApproveFarmer(context.Background(), farmer.ID)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)

	// approving twice is a no-op
	again, err := svc.ApproveFarmer(context.Background(), farmer.ID)
	require.NoError(t, err)
	assert.True(t, again.IsApproved)

	buyer, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Asha Rao",
		Email:    "asha@example.com",
		Password: "a-long-password",
	})
	require.NoError(t, err)

	_, err = svc.ApproveFarmer(context.Background(), buyer.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListFiltersByRoleAndApproval(t *testing.T) {
	db := setupUsersTestDB(t)
	svc := newUserService(t, db)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ravi Kumar",
		Email:    "ravi@example.com",
		Password: "a-long-password",
		Role:     enums.UserRoleFarmer,
		FarmName: farmName("Green Acres"),
	})
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), RegisterInput{
		Name:     "Asha Rao",
		Email:    "asha@example.com",
		Password: "a-long-password",
	})
	require.NoError(t, err)

	farmers, err := svc.List(context.Background(), ListFilter{Role: enums.UserRoleFarmer})
	require.NoError(t, err)
	require.Len(t, farmers, 1)
	assert.Equal(t, "ravi@example.com", farmers[0].Email)

	pending, err := svc.List(context.Background(), ListFilter{Role: enums.UserRoleFarmer, UnapprovedOnly: true})
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
