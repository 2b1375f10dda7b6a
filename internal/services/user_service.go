package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "expensedash/internal/errors"
	"expensedash/internal/mailer"
	"expensedash/internal/models"
)

// codeTTL bounds how long a staged verification code stays valid.
const codeTTL = 5 * time.Minute

// userService handles identity and verification business logic.
type userService struct {
	db     *gorm.DB
	mailer mailer.Mailer
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB, m mailer.Mailer) UserServicer {
	return &userService{db: db, mailer: m}
}

// generateCode returns a random six digit verification code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// StartRegistration stages a pending registration: the password is
// hashed immediately and kept with a one-time code in a durable
// verification row until VerifyRegistration consumes it.
func (s *userService) StartRegistration(email, password string) error {
	if email == "" || password == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "email and password are required")
	}
	email = strings.ToLower(email)

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateEmail
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	code, err := generateCode()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.stageCode(email, models.VerificationPurposeRegistration, code, string(hashed)); err != nil {
		return err
	}

	if err := s.mailer.SendCode(email, "Expensedash registration code", code); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// VerifyRegistration checks the pending code and creates the user.
func (s *userService) VerifyRegistration(email, code string) (*models.User, error) {
	email = strings.ToLower(email)

	pending, err := s.consumeCode(email, models.VerificationPurposeRegistration, code)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    email,
		Password: pending.PasswordHash,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Delete(pending).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}

// AttemptLogin verifies credentials and returns the user. Lookup
// failures and bad passwords are indistinguishable to the caller.
func (s *userService) AttemptLogin(email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// StartPasswordReset stages a reset code for an existing user.
func (s *userService) StartPasswordReset(email string) error {
	email = strings.ToLower(email)

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrUserNotFound
	}

	code, err := generateCode()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.stageCode(email, models.VerificationPurposePasswordReset, code, ""); err != nil {
		return err
	}

	if err := s.mailer.SendCode(email, "Expensedash password reset code", code); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ResetPassword checks the pending code and stores the new hash.
func (s *userService) ResetPassword(email, code, newPassword string) error {
	if newPassword == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "password is required")
	}
	email = strings.ToLower(email)

	pending, err := s.consumeCode(email, models.VerificationPurposePasswordReset, code)
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Model(&models.User{}).Where("email = ?", email).
		Update("password", string(hashed)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Delete(pending).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// stageCode upserts the single pending verification row for
// (email, purpose), restarting the TTL.
func (s *userService) stageCode(email string, purpose models.VerificationPurpose, code, passwordHash string) error {
	entry := &models.VerificationCode{
		Email:        email,
		Purpose:      purpose,
		Code:         code,
		PasswordHash: passwordHash,
		ExpiresAt:    time.Now().Add(codeTTL),
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}, {Name: "purpose"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "password_hash", "expires_at", "updated_at"}),
	}).Create(entry).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// consumeCode validates a pending verification row without deleting it;
// callers delete after the action it unlocks has succeeded.
func (s *userService) consumeCode(email string, purpose models.VerificationPurpose, code string) (*models.VerificationCode, error) {
	var pending models.VerificationCode
	if err := s.db.Where("email = ? AND purpose = ?", email, purpose).First(&pending).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNoPendingVerification
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if pending.Code != code {
		return nil, apperrors.ErrInvalidCode
	}
	if pending.Expired(time.Now()) {
		return nil, apperrors.ErrCodeExpired
	}
	return &pending, nil
}
