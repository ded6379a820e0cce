package submission

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-mail/mail"
	"github.com/skyportal/skyportal/pkg/model"
)

func NewMailNotifier(dailer dailer, from string) *MailNotifier {
	return &MailNotifier{dailer: dailer, from: from}
}

type dailer interface {
	DialAndSend(m ...*mail.Message) error
}

// MailNotifier mails the outcome of a submission to the submitter.
type MailNotifier struct {
	dailer dailer
	from   string
}

// Notify is a no-op for users without an email address.
func (n MailNotifier) Notify(_ context.Context, user *model.User, service *model.SharingService, submission *model.SharingServiceSubmission) error {
	if user.Email == "" {
		return nil
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Hello %s,\n\nyour submission of %s with sharing service %s was processed.\n\n", user.FullName(), submission.ObjID, service.Name)
	if submission.PublishToTNS {
		fmt.Fprintf(&body, "TNS: %s\n", submission.TNSStatus)
	}
	if submission.PublishToHermes {
		fmt.Fprintf(&body, "Hermes: %s\n", submission.HermesStatus)
	}

	m := mail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", user.Email)
	m.SetHeader("Subject", fmt.Sprintf("Submission of %s with %s", submission.ObjID, service.Name))
	m.SetBody("text/plain", body.String())
	return n.dailer.DialAndSend(m)
}
