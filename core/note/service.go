package note

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/tutorpost/backend/core"
)

var ErrNotFound = errors.New("note not found")

type (
	Repository interface {
		CreateNote(ctx context.Context, n Note) (Note, error)
		QueryAllNotes(ctx context.Context) ([]Note, error)
	}

	Service struct {
		repo     Repository
		renderer Renderer
		mailSvc  core.EmailService
	}
)

func NewService(repo Repository, renderer Renderer, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, renderer: renderer, mailSvc: mailSvc}
}

// Send renders the note's markdown, records it and dispatches the email.
// The note is persisted before dispatch so a failed send still leaves an
// audit record; the send error is returned for the caller to surface.
func (svc *Service) Send(ctx context.Context, nn NewNote) (Note, string, error) {
	var sessionDate time.Time
	if nn.SessionDate != "" {
		sessionDate, _ = time.Parse(DateLayout, nn.SessionDate)
	}

	n := Note{
		StudentName: nn.StudentName,
		To:          nn.To,
		Cc:          nn.Cc,
		Subject:     nn.Subject,
		SessionDate: sessionDate,
		Markdown:    nn.Markdown,
		HTML:        svc.renderer.Render(nn.Markdown),
		CreatedAt:   time.Now().UTC(),
	}
	n, err := svc.repo.CreateNote(ctx, n)
	if err != nil {
		return Note{}, "", errors.Wrap(err, "recording note")
	}

	msg := &core.EmailMessage{
		To:          []mail.Address{{Name: nn.StudentName, Address: nn.To}},
		Subject:     nn.Subject,
		TextContent: nn.Markdown,
		HTMLContent: n.HTML,
	}
	for _, cc := range nn.Cc {
		msg.Cc = append(msg.Cc, mail.Address{Address: cc})
	}

	msgID, err := svc.mailSvc.Send(msg)
	if err != nil {
		return n, "", errors.Wrap(err, "dispatching note")
	}
	return n, msgID, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Note, error) {
	return svc.repo.QueryAllNotes(ctx)
}
