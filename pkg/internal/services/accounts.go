package services

import (
	"errors"

	"github.com/pulsohq/pulso/pkg/internal/database"
	"github.com/pulsohq/pulso/pkg/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func ListAccount(take, offset int) ([]models.Account, int64, error) {
	tx := database.C.Model(&models.Account{})

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var accounts []models.Account
	if err := tx.Order("id ASC").Offset(offset).Limit(take).Find(&accounts).Error; err != nil {
		return nil, 0, err
	}
	return accounts, count, nil
}

func GetAccount(id uint) (models.Account, error) {
	var account models.Account
	if err := database.C.Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account, NewNotFound("account")
		}
		return account, err
	}
	return account, nil
}

func GetAccountWithUsername(username string) (models.Account, error) {
	var account models.Account
	if err := database.C.Where("username = ?", username).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account, NewNotFound("account")
		}
		return account, err
	}
	return account, nil
}

func NewAccount(username, password, role string) (models.Account, error) {
	var count int64
	if err := database.C.Model(&models.Account{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return models.Account{}, err
	}
	if count > 0 {
		return models.Account{}, NewRuleError(ReasonDuplicateTitle, "username is already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Account{}, err
	}

	account := models.Account{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := database.C.Create(&account).Error; err != nil {
		return account, err
	}
	return account, nil
}

// Authenticate verifies credentials and returns the matching account. An
// unknown username and a wrong password come back as the same error, so
// callers cannot probe which usernames exist.
func Authenticate(username, password string) (models.Account, error) {
	account, err := GetAccountWithUsername(username)
	if err != nil {
		return account, errors.New("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return account, errors.New("invalid credentials")
	}
	return account, nil
}

func UpdateAccount(id uint, username, role string) (models.Account, error) {
	account, err := GetAccount(id)
	if err != nil {
		return account, err
	}

	var count int64
	if err := database.C.Model(&models.Account{}).
		Where("username = ? AND id != ?", username, id).
		Count(&count).Error; err != nil {
		return account, err
	}
	if count > 0 {
		return account, NewRuleError(ReasonDuplicateTitle, "username is already taken")
	}

	account.Username = username
	account.Role = role

	if err := database.C.Save(&account).Error; err != nil {
		return account, err
	}
	return account, nil
}

func DeleteAccount(id uint) error {
	account, err := GetAccount(id)
	if err != nil {
		return err
	}
	return database.C.Delete(&account).Error
}

func UpdateAccountPassword(id uint, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return database.C.Model(&models.Account{}).Where("id = ?", id).
		Update("password_hash", string(hash)).Error
}
