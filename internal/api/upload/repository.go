package upload

import (
	"errors"

	"github.com/MayTheStar/EVAL/internal/database/model"

	"gorm.io/gorm"
)

// EnsureDefaultUser finds or creates a default user and returns its ID.
// Authentication is out of scope; every document belongs to this user.
func EnsureDefaultUser(db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, errors.New("nil db")
	}
	const defaultEmail = "default@local"
	var u model.User
	err := db.Where("email = ?", defaultEmail).First(&u).Error
	if err == nil {
		return u.ID, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		newUser := model.User{Email: defaultEmail}
		if e := db.Create(&newUser).Error; e != nil {
			return 0, e
		}
		return newUser.ID, nil
	}
	return 0, err
}
