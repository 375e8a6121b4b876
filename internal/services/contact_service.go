package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"

	"github.com/quickcart/api/internal/repositories"
)

const contactMessageIDPrefix = "msg_"

// ErrContactInvalidInput signals the caller provided invalid data.
var ErrContactInvalidInput = errors.New("contact: invalid input")

// ContactServiceDeps bundles collaborators required to construct the contact service.
type ContactServiceDeps struct {
	Messages    repositories.ContactRepository
	Clock       func() time.Time
	IDGenerator func() string
}

type contactService struct {
	messages repositories.ContactRepository
	sanitize *bluemonday.Policy
	clock    func() time.Time
	newID    func() string
}

// NewContactService wires dependencies into a concrete ContactService implementation.
func NewContactService(deps ContactServiceDeps) (ContactService, error) {
	if deps.Messages == nil {
		return nil, errors.New("contact service: contact repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return ulid.Make().String()
		}
	}

	return &contactService{
		messages: deps.Messages,
		sanitize: bluemonday.StrictPolicy(),
		clock: func() time.Time {
			return clock().UTC()
		},
		newID: idGen,
	}, nil
}

// Submit validates and stores a contact-form message. User-supplied text is
// stripped of markup before persistence.
func (s *contactService) Submit(ctx context.Context, cmd SubmitMessageCommand) (ContactMessage, error) {
	name := strings.TrimSpace(cmd.Name)
	email := strings.TrimSpace(cmd.Email)
	subject := strings.TrimSpace(cmd.Subject)
	body := strings.TrimSpace(cmd.Message)
	if name == "" || email == "" || subject == "" || body == "" {
		return ContactMessage{}, fmt.Errorf("%w: name, email, subject, and message are required", ErrContactInvalidInput)
	}

	message := ContactMessage{
		ID:        contactMessageIDPrefix + s.newID(),
		Name:      s.sanitize.Sanitize(name),
		Email:     s.sanitize.Sanitize(email),
		Subject:   s.sanitize.Sanitize(subject),
		Message:   s.sanitize.Sanitize(body),
		CreatedAt: s.clock(),
	}

	if err := s.messages.Insert(ctx, message); err != nil {
		return ContactMessage{}, err
	}
	return message, nil
}

func (s *contactService) ListMessages(ctx context.Context) ([]ContactMessage, error) {
	return s.messages.ListAll(ctx)
}
