package tutor

import (
	"net/mail"

	"github.com/ajolotes/ajolotes/core"
)

const (
	welcomeTemplate = "welcome"
	welcomeSubject  = "Bienvenido a Ajolotes"
)

// WelcomeData is rendered by the welcome email templates.
type WelcomeData struct {
	Names    string
	FullName string
	Role     string
	Email    string
}

// NewWelcomeMessage is the email a tutor receives right after registering.
func NewWelcomeMessage(t Tutor, baseURL string) *core.EmailMessage {
	return &core.EmailMessage{
		To:           mail.Address{Name: t.FullName(), Address: t.Email},
		Subject:      welcomeSubject,
		TemplateName: welcomeTemplate,
		TemplateData: WelcomeData{Names: t.Names, FullName: t.FullName(), Role: t.Role, Email: t.Email},
		BaseURL:      baseURL,
	}
}
