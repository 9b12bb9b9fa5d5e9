package domain

import "strings"

// ContactMessage is a contact-form submission.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Validate checks the mandatory contact fields.
func (m ContactMessage) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return &ErrValidation{Field: "name", Message: "obrigatório"}
	}
	if strings.TrimSpace(m.Email) == "" {
		return &ErrValidation{Field: "email", Message: "obrigatório"}
	}
	if !emailRe.MatchString(strings.TrimSpace(m.Email)) {
		return &ErrValidation{Field: "email", Message: "email inválido"}
	}
	if strings.TrimSpace(m.Message) == "" {
		return &ErrValidation{Field: "message", Message: "obrigatório"}
	}
	return nil
}

// CompanyInfo is the public company profile shown by the storefront.
type CompanyInfo struct {
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone,omitempty"`
	SocialMedia map[string]string `json:"social_media,omitempty"`
}
