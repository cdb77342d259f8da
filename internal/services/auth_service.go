package services

import (
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"github.com/aboutme-website/aboutme-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCode is returned when the submitted verification code does not match.
var ErrInvalidCode = errors.New("verification code is invalid")

// Supports US numbers: xxx-yyy-zzzz, xxxyyyzzzz, +1 xxx-yyy-zzzz etc.
var phonePattern = regexp.MustCompile(`^(\+\d{1,2}\s)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}$`)

// IsValidPhone reports whether the phone number has a supported format.
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// AuthServiceProvider defines the interface for phone verification services.
type AuthServiceProvider interface {
	IssueCode(phone string) (string, error)
	VerifyCode(phone, code string) (models.PhoneAuth, error)
	MarkVerified(phone, userID string) error
	IsPhoneVerified(phone string) (bool, error)
}

// AuthService provides business logic for phone verification codes.
type AuthService struct {
	db *sql.DB
}

// NewAuthService creates a new AuthService.
func NewAuthService(db *sql.DB) *AuthService {
	return &AuthService{db: db}
}

// IssueCode creates (or refreshes) a 4-digit verification code for a phone
// number and returns the plaintext code for delivery. Only the bcrypt hash is
// stored.
func (s *AuthService) IssueCode(phone string) (string, error) {
	code, err := randomCode()
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash code: %w", err)
	}

	stmt, err := s.db.Prepare(`
		INSERT INTO phone_auth (phone, auth_code_hash, auth_time_stamp)
		VALUES (?, ?, ?)
		ON CONFLICT(phone) DO UPDATE SET
			auth_code_hash = excluded.auth_code_hash,
			auth_time_stamp = excluded.auth_time_stamp`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	if _, err := stmt.Exec(phone, string(hash), time.Now().Unix()); err != nil {
		return "", err
	}
	return code, nil
}

// VerifyCode checks a submitted code against the stored hash and returns the
// phone's verification record on success.
func (s *AuthService) VerifyCode(phone, code string) (models.PhoneAuth, error) {
	var record models.PhoneAuth
	var hash string
	var userID sql.NullString
	var authUnix int64
	row := s.db.QueryRow("SELECT phone, auth_code_hash, user_id, is_verified, auth_time_stamp FROM phone_auth WHERE phone = ?", phone)
	if err := row.Scan(&record.Phone, &hash, &userID, &record.IsVerified, &authUnix); err != nil {
		if err == sql.ErrNoRows {
			return models.PhoneAuth{}, ErrInvalidCode
		}
		return models.PhoneAuth{}, err
	}
	record.UserID = userID.String
	record.AuthTime = time.Unix(authUnix, 0)

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)); err != nil {
		return models.PhoneAuth{}, ErrInvalidCode
	}
	return record, nil
}

// MarkVerified sets the verified flag and binds the phone to a user id.
func (s *AuthService) MarkVerified(phone, userID string) error {
	_, err := s.db.Exec("UPDATE phone_auth SET is_verified = 1, user_id = ? WHERE phone = ?", userID, phone)
	return err
}

// IsPhoneVerified reports whether a verified record exists for the phone.
func (s *AuthService) IsPhoneVerified(phone string) (bool, error) {
	var exists int
	row := s.db.QueryRow("SELECT COUNT(1) FROM phone_auth WHERE phone = ? AND is_verified = 1", phone)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists > 0, nil
}

func randomCode() (string, error) {
	// 4-digit code in [1000, 9999]
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+1000), nil
}
