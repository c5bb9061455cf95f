package core

import (
	"bytes"
	htmltmpl "html/template"
	iofs "io/fs"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"

	appfs "github.com/ajolotes/ajolotes/fs"
)

const emailTemplatesDir = "templates/email"

var (
	ErrNoRecipient  = errors.New("email has no recipient")
	ErrNoSubject    = errors.New("email has no subject")
	ErrEmptyContent = errors.New("email has no text content")

	emailTmpls     emailTemplates
	emailTmplsErr  error
	emailTmplsOnce sync.Once
)

type (
	// EmailMessage is a templated email sent to a single recipient.
	// TextContent and HTMLContent are filled by Render.
	EmailMessage struct {
		To           mail.Address
		Subject      string
		TemplateName string // without ext
		TemplateData interface{}
		BaseURL      string

		TextContent string
		HTMLContent string
	}

	// EmailData is what the email templates are executed with.
	EmailData struct {
		BaseURL string
		Data    interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}

	emailTemplates struct {
		text map[string]*texttmpl.Template
		html map[string]*htmltmpl.Template
	}
)

// Render executes the message templates. The text one is required, the HTML one is optional.
func (m *EmailMessage) Render() error {
	tmpls, err := loadEmailTemplates()
	if err != nil {
		return err
	}
	data := EmailData{BaseURL: m.BaseURL, Data: m.TemplateData}

	text, ok := tmpls.text[m.TemplateName]
	if !ok {
		return errors.Errorf("no text template for email %q", m.TemplateName)
	}
	var buf bytes.Buffer
	if err = text.Execute(&buf, data); err != nil {
		return errors.Wrapf(err, "executing %s.txt", m.TemplateName)
	}
	m.TextContent = strings.TrimSpace(buf.String())

	if html, ok := tmpls.html[m.TemplateName]; ok {
		buf.Reset()
		if err = html.Execute(&buf, data); err != nil {
			return errors.Wrapf(err, "executing %s.gohtml", m.TemplateName)
		}
		m.HTMLContent = buf.String()
	}
	return nil
}

// Ready reports why a rendered message cannot be sent, if it cannot.
func (m *EmailMessage) Ready() error {
	switch {
	case m.To.Address == "":
		return ErrNoRecipient
	case strings.TrimSpace(m.Subject) == "":
		return ErrNoSubject
	case m.TextContent == "":
		return ErrEmptyContent
	}
	return nil
}

// ParseEmailTemplates parses the embedded email templates once.
// Files prefixed with "_" are layouts shared by every email of the same extension.
func ParseEmailTemplates() error {
	_, err := loadEmailTemplates()
	return err
}

func loadEmailTemplates() (emailTemplates, error) {
	emailTmplsOnce.Do(func() {
		emailTmpls, emailTmplsErr = parseEmailTemplates(appfs.FS, emailTemplatesDir)
		emailTmplsErr = errors.Wrap(emailTmplsErr, "parsing email templates")
	})
	return emailTmpls, emailTmplsErr
}

func parseEmailTemplates(fsys iofs.FS, dir string) (emailTemplates, error) {
	tmpls := emailTemplates{
		text: make(map[string]*texttmpl.Template),
		html: make(map[string]*htmltmpl.Template),
	}

	fps, err := iofs.Glob(fsys, path.Join(dir, "*"))
	if err != nil {
		return tmpls, err
	}
	for _, fp := range fps {
		fname := path.Base(fp)
		if strings.HasPrefix(fname, "_") {
			continue
		}
		ext := path.Ext(fname)
		name := strings.TrimSuffix(fname, ext)

		switch ext {
		case ".txt":
			tmpl, err := texttmpl.ParseFS(fsys, path.Join(dir, "_base.txt"), fp)
			if err != nil {
				return tmpls, err
			}
			tmpls.text[name] = tmpl.Option("missingkey=error")
		case ".gohtml":
			tmpl, err := htmltmpl.ParseFS(fsys, path.Join(dir, "_base.gohtml"), fp)
			if err != nil {
				return tmpls, err
			}
			tmpls.html[name] = tmpl.Option("missingkey=error")
		}
	}
	return tmpls, nil
}
