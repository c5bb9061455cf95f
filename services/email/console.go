// Package emailsvc delivers the emails rendered by core.EmailMessage.
package emailsvc

import (
	"fmt"
	"net/mail"
	"sync"

	"github.com/pkg/errors"

	"github.com/ajolotes/ajolotes/core"
)

var (
	outbox   []core.EmailMessage
	outboxMu sync.Mutex
)

// ResetSentMessages empties the outbox filled by the console services.
func ResetSentMessages() {
	outboxMu.Lock()
	outbox = outbox[:0]
	outboxMu.Unlock()
}

// GetSentMessages returns a copy of the outbox.
func GetSentMessages() []core.EmailMessage {
	outboxMu.Lock()
	defer outboxMu.Unlock()
	msgs := make([]core.EmailMessage, len(outbox))
	copy(msgs, outbox)
	return msgs
}

// prepare renders msg and checks it can be sent.
func prepare(msg *core.EmailMessage) error {
	if err := msg.Render(); err != nil {
		return errors.Wrapf(err, "rendering %q email", msg.TemplateName)
	}
	return errors.Wrapf(msg.Ready(), "%q email", msg.TemplateName)
}

// consoleService logs emails instead of sending them, and keeps them in the outbox.
type consoleService struct {
	from   mail.Address
	logger core.Logger
	sync   bool
}

var _ core.EmailService = (*consoleService)(nil)

func NewConsoleService(conf *core.Config, logger core.Logger) core.EmailService {
	return &consoleService{from: conf.FromEmail(), logger: logger}
}

// NewConsoleServiceMock delivers synchronously and silently, so tests can inspect the outbox right away.
func NewConsoleServiceMock(conf *core.Config) core.EmailService {
	return &consoleService{from: conf.FromEmail(), sync: true}
}

func (svc *consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		if svc.sync {
			svc.deliver(msg)
		} else {
			go svc.deliver(msg)
		}
	}
}

func (svc *consoleService) deliver(msg *core.EmailMessage) {
	if err := prepare(msg); err != nil {
		if svc.logger != nil {
			svc.logger.Error(err.Error(), err)
		}
		return
	}

	outboxMu.Lock()
	outbox = append(outbox, *msg)
	outboxMu.Unlock()

	if svc.logger != nil {
		svc.logger.Info(fmt.Sprintf("email %q to %s", msg.Subject, msg.To.Address), map[string]interface{}{
			"from": svc.from.String(),
			"to":   msg.To.String(),
			"text": msg.TextContent,
		})
	}
}
