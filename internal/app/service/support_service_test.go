package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volunteerhub/portal-backend/internal/app/model"
	"github.com/volunteerhub/portal-backend/internal/app/repository"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []*model.SupportMessage
	statuses []model.TicketStatus
}

func (n *recordingNotifier) PublishMessage(_ uint, message *model.SupportMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) PublishStatus(_ uint, status model.TicketStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, status)
}

type supportTestEnv struct {
	svc       SupportService
	mail      *recordingMailer
	notifier  *recordingNotifier
	volunteer Actor
	other     Actor
	moderator Actor
}

func setupSupportServiceTest(t *testing.T) *supportTestEnv {
	testDB := setupServiceDB(t)
	mail := &recordingMailer{}
	notifier := &recordingNotifier{}
	svc := NewSupportService(repository.NewSupportRepository(testDB), repository.NewUserRepository(testDB), notifier, mail, testTemplates)

	volunteer := createServiceTestUser(t, testDB, "volunteer@example.com", "password123", model.RoleVolunteer)
	other := createServiceTestUser(t, testDB, "other@example.com", "password123", model.RoleVolunteer)
	moderator := createServiceTestUser(t, testDB, "moderator@example.com", "password123", model.RoleModerator)

	return &supportTestEnv{
		svc:       svc,
		mail:      mail,
		notifier:  notifier,
		volunteer: Actor{UserID: volunteer.ID, Role: volunteer.Role},
		other:     Actor{UserID: other.ID, Role: other.Role},
		moderator: Actor{UserID: moderator.ID, Role: moderator.Role},
	}
}

func TestSupportService_CreateAndList(t *testing.T) {
	env := setupSupportServiceTest(t)

	ticket, err := env.svc.CreateTicket(env.volunteer, " Cannot log in ", "The login form keeps failing")
	require.NoError(t, err)
	assert.Equal(t, "Cannot log in", ticket.Subject)
	assert.Equal(t, model.TicketStatusOpen, ticket.Status)
	require.Len(t, ticket.Messages, 1)
	assert.False(t, ticket.Messages[0].IsAdmin)

	_, err = env.svc.CreateTicket(env.other, "Another problem", "Something else is broken")
	require.NoError(t, err)

	_, err = env.svc.CreateTicket(env.other, "Empty", "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	own, err := env.svc.ListTickets(env.volunteer)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, ticket.ID, own[0].ID)

	all, err := env.svc.ListTickets(env.moderator)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSupportService_Access(t *testing.T) {
	env := setupSupportServiceTest(t)
	ticket, err := env.svc.CreateTicket(env.volunteer, "Need help", "Please help me with my profile")
	require.NoError(t, err)

	tests := []struct {
		name    string
		id      uint
		actor   Actor
		wantErr error
	}{
		{name: "Owner", id: ticket.ID, actor: env.volunteer},
		{name: "Staff", id: ticket.ID, actor: env.moderator},
		{name: "Foreign ticket", id: ticket.ID, actor: env.other, wantErr: ErrForbidden},
		{name: "Missing ticket", id: 9999, actor: env.moderator, wantErr: ErrTicketNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.svc.GetTicket(tt.id, tt.actor)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, env.svc.Authorize(tt.id, tt.actor), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got.Messages, 1)
			assert.NoError(t, env.svc.Authorize(tt.id, tt.actor))
		})
	}
}

func TestSupportService_AddMessage(t *testing.T) {
	env := setupSupportServiceTest(t)
	ticket, err := env.svc.CreateTicket(env.volunteer, "Need help", "Please help me with my profile")
	require.NoError(t, err)

	reply, err := env.svc.AddMessage(ticket.ID, env.moderator, "We are looking into it")
	require.NoError(t, err)
	assert.True(t, reply.IsAdmin)
	require.NotNil(t, reply.User)

	require.Len(t, env.mail.Sent(), 1)
	assert.Equal(t, "volunteer@example.com", env.mail.Last().To)

	followUp, err := env.svc.AddMessage(ticket.ID, env.volunteer, "Thanks!")
	require.NoError(t, err)
	assert.False(t, followUp.IsAdmin)
	assert.Len(t, env.mail.Sent(), 1, "owner messages are not mailed")

	_, err = env.svc.AddMessage(ticket.ID, env.other, "Hi")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = env.svc.AddMessage(ticket.ID, env.volunteer, "  ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	assert.Len(t, env.notifier.messages, 2)

	thread, err := env.svc.GetTicket(ticket.ID, env.volunteer)
	require.NoError(t, err)
	require.Len(t, thread.Messages, 3)
	assert.Equal(t, "Thanks!", thread.Messages[2].Message)
}

func TestSupportService_UpdateStatus(t *testing.T) {
	env := setupSupportServiceTest(t)
	ticket, err := env.svc.CreateTicket(env.volunteer, "Need help", "Please help me with my profile")
	require.NoError(t, err)

	closed, err := env.svc.UpdateStatus(ticket.ID, env.volunteer, model.TicketStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, model.TicketStatusClosed, closed.Status)
	assert.NotNil(t, closed.ClosedAt)

	reopened, err := env.svc.UpdateStatus(ticket.ID, env.moderator, model.TicketStatusOpen)
	require.NoError(t, err)
	assert.Nil(t, reopened.ClosedAt)

	stored, err := env.svc.GetTicket(ticket.ID, env.volunteer)
	require.NoError(t, err)
	assert.Equal(t, model.TicketStatusOpen, stored.Status)
	assert.Nil(t, stored.ClosedAt)

	_, err = env.svc.UpdateStatus(ticket.ID, env.volunteer, "PENDING")
	assert.ErrorIs(t, err, ErrInvalidTicketStatus)
	_, err = env.svc.UpdateStatus(ticket.ID, env.other, model.TicketStatusClosed)
	assert.ErrorIs(t, err, ErrForbidden)

	assert.Equal(t, []model.TicketStatus{model.TicketStatusClosed, model.TicketStatusOpen}, env.notifier.statuses)
}
