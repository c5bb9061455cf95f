package emailsvc

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/ajolotes/ajolotes/core"
)

// sgClient is the part of *sendgrid.Client used here.
type sgClient interface {
	Send(email *sgmail.SGMailV3) (*rest.Response, error)
}

type sendgridService struct {
	client sgClient
	from   *sgmail.Email
	logger core.Logger
	wg     sync.WaitGroup
}

var _ core.EmailService = (*sendgridService)(nil)

func NewSendgridService(conf *core.Config, logger core.Logger) *sendgridService {
	from := conf.FromEmail()
	return &sendgridService{
		client: sendgrid.NewSendClient(conf.SendgridApiKey),
		from:   sgmail.NewEmail(from.Name, from.Address),
		logger: logger,
	}
}

// SendMessages renders every message before returning; the API calls run in the background.
func (svc *sendgridService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		if err := prepare(msg); err != nil {
			svc.logger.Error(err.Error(), err)
			continue
		}
		m := svc.newMail(msg)
		svc.wg.Add(1)
		go func(to string) {
			defer svc.wg.Done()
			svc.send(m, to)
		}(msg.To.Address)
	}
}

// Wait blocks until every pending API call has returned.
func (svc *sendgridService) Wait() {
	svc.wg.Wait()
}

// newMail builds the v3 payload: plain text first, then HTML when the message has it.
func (svc *sendgridService) newMail(msg *core.EmailMessage) *sgmail.SGMailV3 {
	contents := []*sgmail.Content{sgmail.NewContent("text/plain", msg.TextContent)}
	if msg.HTMLContent != "" {
		contents = append(contents, sgmail.NewContent("text/html", msg.HTMLContent))
	}
	to := sgmail.NewEmail(msg.To.Name, msg.To.Address)
	return sgmail.NewV3MailInit(svc.from, msg.Subject, to, contents...)
}

func (svc *sendgridService) send(m *sgmail.SGMailV3, to string) {
	res, err := svc.client.Send(m)
	switch {
	case err != nil:
		svc.logger.Error(fmt.Sprintf("sending email to %s: %v", to, err), err)
	case res.StatusCode >= http.StatusBadRequest:
		svc.logger.Error(fmt.Sprintf("sending email to %s: status %d", to, res.StatusCode),
			map[string]interface{}{"body": res.Body})
	}
}
