package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupUserTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:testdb_user_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	assert.NoError(t, err)

	err = Migrate(db)
	assert.NoError(t, err)

	return db
}

func TestSetAndCheckPassword(t *testing.T) {
	user := User{Email: "alice@example.com", Role: RolePatient}
	err := user.SetPassword("s3cret-pass")
	assert.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", user.Password)

	assert.True(t, user.CheckPassword("s3cret-pass"))
	assert.False(t, user.CheckPassword("wrong"))
}

func TestUserCreateSetsUUID(t *testing.T) {
	db := setupUserTestDB(t)

	user := User{Email: "bob@example.com", Role: RoleDoctor}
	assert.NoError(t, user.SetPassword("secret123"))
	assert.NoError(t, db.Create(&user).Error)
	assert.Len(t, user.ID, 36)
}

func TestUserEmailUnique(t *testing.T) {
	db := setupUserTestDB(t)

	first := User{Email: "dup@example.com", Role: RolePatient}
	assert.NoError(t, first.SetPassword("secret123"))
	assert.NoError(t, db.Create(&first).Error)

	second := User{Email: "dup@example.com", Role: RoleDoctor}
	assert.NoError(t, second.SetPassword("secret123"))
	err := db.Create(&second).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestSanitizeOmitsPassword(t *testing.T) {
	user := User{
		BaseModel: BaseModel{ID: "abc", CreatedAt: time.Now()},
		Email:     "carol@example.com",
		Password:  "hashed",
		Role:      RoleAdmin,
	}

	sanitized := user.Sanitize()
	assert.Equal(t, "abc", sanitized.ID)
	assert.Equal(t, "carol@example.com", sanitized.Email)
	assert.Equal(t, RoleAdmin, sanitized.Role)
}
