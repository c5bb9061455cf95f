package emailsvc

import (
	"net/http"
	"net/mail"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajolotes/ajolotes/core"
	"github.com/ajolotes/ajolotes/core/tutor"
	logsvc "github.com/ajolotes/ajolotes/services/logger"
)

var rosa = tutor.Tutor{ID: 1, Role: tutor.RoleParent, Names: "Rosa", Surnames: "López", Email: "rosa@mail.com"}

func TestConsoleServiceMock(t *testing.T) {
	conf := core.NewTestConfig(t.TempDir())
	svc := NewConsoleServiceMock(conf)
	ResetSentMessages()
	defer ResetSentMessages()

	svc.SendMessages(
		tutor.NewWelcomeMessage(rosa, conf.BaseURL()),
		&core.EmailMessage{Subject: "sin destinatario", TemplateName: "welcome", TemplateData: tutor.WelcomeData{}},
		&core.EmailMessage{To: mail.Address{Address: "x@mail.com"}, Subject: "sin plantilla", TemplateName: "no_existe"},
	)

	sent := GetSentMessages()
	if !assert.Len(t, sent, 1, "messages that cannot be rendered or sent are dropped") {
		return
	}
	msg := sent[0]
	assert.Equal(t, mail.Address{Name: "Rosa López", Address: "rosa@mail.com"}, msg.To)
	assert.Equal(t, "Bienvenido a Ajolotes", msg.Subject)
	assert.Contains(t, msg.TextContent, "Hola Rosa,")
	assert.Contains(t, msg.TextContent, "Tu cuenta de Padre")
	assert.Contains(t, msg.TextContent, "http://localhost")
	assert.Contains(t, msg.HTMLContent, "Hola Rosa López,")
	assert.Contains(t, msg.HTMLContent, `href="http://localhost"`)
}

func TestConsoleServiceLogs(t *testing.T) {
	conf := core.NewTestConfig(t.TempDir())
	obs, logs := observer.New(zapcore.DebugLevel)
	svc := &consoleService{from: conf.FromEmail(), logger: logsvc.NewRollbarLogger(zap.New(obs), conf), sync: true}
	ResetSentMessages()
	defer ResetSentMessages()

	svc.SendMessages(
		tutor.NewWelcomeMessage(rosa, conf.BaseURL()),
		&core.EmailMessage{To: mail.Address{Address: "x@mail.com"}, TemplateName: "welcome", TemplateData: tutor.WelcomeData{}},
	)

	entries := logs.AllUntimed()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		from := conf.FromEmail()
		assert.Equal(t, from.String(), entries[0].ContextMap()["from"])
		assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
		assert.Contains(t, entries[1].Message, core.ErrNoSubject.Error())
	}
	assert.Len(t, GetSentMessages(), 1)
}

func TestEmailMessageReady(t *testing.T) {
	tests := []struct {
		name string
		msg  core.EmailMessage
		want error
	}{
		{"ok", core.EmailMessage{To: mail.Address{Address: "a@b.c"}, Subject: "Hola", TextContent: "hola"}, nil},
		{"no recipient", core.EmailMessage{Subject: "Hola", TextContent: "hola"}, core.ErrNoRecipient},
		{"blank subject", core.EmailMessage{To: mail.Address{Address: "a@b.c"}, Subject: "  ", TextContent: "hola"}, core.ErrNoSubject},
		{"no text", core.EmailMessage{To: mail.Address{Address: "a@b.c"}, Subject: "Hola", HTMLContent: "<p>hola</p>"}, core.ErrEmptyContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.msg.Ready())
		})
	}
}

type fakeSGClient struct {
	mu     sync.Mutex
	sent   []*sgmail.SGMailV3
	status int
	err    error
}

func (c *fakeSGClient) Send(m *sgmail.SGMailV3) (*rest.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, m)
	if c.err != nil {
		return nil, c.err
	}
	return &rest.Response{StatusCode: c.status, Body: "{}"}, nil
}

func TestSendgridService(t *testing.T) {
	conf := core.NewTestConfig(t.TempDir())
	conf.DefaultFromEmail = "Ajolotes <hola@ajolotes.mx>"

	tests := []struct {
		name       string
		status     int
		err        error
		wantErrors int
	}{
		{name: "accepted", status: http.StatusAccepted},
		{name: "rejected", status: http.StatusBadRequest, wantErrors: 1},
		{name: "unreachable", err: errors.New("dial tcp: timeout"), wantErrors: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, logs := observer.New(zapcore.DebugLevel)
			client := &fakeSGClient{status: tt.status, err: tt.err}
			svc := NewSendgridService(conf, logsvc.NewRollbarLogger(zap.New(obs), conf))
			svc.client = client

			svc.SendMessages(
				tutor.NewWelcomeMessage(rosa, conf.BaseURL()),
				&core.EmailMessage{Subject: "sin destinatario", TemplateName: "welcome", TemplateData: tutor.WelcomeData{}},
			)
			svc.Wait()

			assert.Equal(t, 1+tt.wantErrors, logs.FilterLevelExact(zapcore.ErrorLevel).Len(), "the unsendable message is logged too")
			if !assert.Len(t, client.sent, 1) {
				return
			}
			m := client.sent[0]
			assert.Equal(t, "hola@ajolotes.mx", m.From.Address)
			assert.Equal(t, "Ajolotes", m.From.Name)
			assert.Equal(t, "Bienvenido a Ajolotes", m.Subject)
			if assert.Len(t, m.Personalizations, 1) && assert.Len(t, m.Personalizations[0].To, 1) {
				assert.Equal(t, "rosa@mail.com", m.Personalizations[0].To[0].Address)
			}
			if assert.Len(t, m.Content, 2) {
				assert.Equal(t, "text/plain", m.Content[0].Type)
				assert.Contains(t, m.Content[0].Value, "Hola Rosa,")
				assert.Equal(t, "text/html", m.Content[1].Type)
			}
		})
	}
}
