package models

import "time"

// PhoneAuth represents the verification state of a phone number.
type PhoneAuth struct {
	Phone      string    `json:"phone"`
	UserID     string    `json:"userId,omitempty"` // empty until first successful verification
	IsVerified bool      `json:"isVerified"`
	AuthTime   time.Time `json:"authTime"`
}
