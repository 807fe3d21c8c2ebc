package model

import "strings"

// GenerateRequest represents request for POST /wallet/create and /wallet/import
type GenerateRequest struct {
	Name            string `json:"name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Mnemonic        string `json:"mnemonic,omitempty"` // import only
}

// Validate validates common create/import fields.
func (r *GenerateRequest) Validate(requireMnemonic bool) error {
	if NormalizeName(r.Name) == "" {
		return NewValidationError("Wallet name is required.")
	}
	if strings.TrimSpace(r.Password) == "" {
		return NewValidationError("Password is required.")
	}
	if requireMnemonic && strings.TrimSpace(r.Mnemonic) == "" {
		return NewValidationError("All fields are required.")
	}
	if r.Password != r.ConfirmPassword {
		return NewValidationError("Passwords do not match.")
	}
	return nil
}

// GenerateResponse represents response for POST /wallet/create and /wallet/import
type GenerateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Address string `json:"address,omitempty"`
}
