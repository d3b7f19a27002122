package note_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorpost/backend/core"
	"github.com/tutorpost/backend/core/note"
	emailsvc "github.com/tutorpost/backend/services/email"
	inmemdb "github.com/tutorpost/backend/storage/database/inmem"
	testutil "github.com/tutorpost/backend/tests"
)

func setup(t *testing.T) (*note.Service, note.Repository) {
	db, err := inmemdb.Open()
	require.NoError(t, err)
	repo := inmemdb.NewNoteRepository(db)
	mailSvc := emailsvc.NewConsoleServiceMock(testutil.NewConfig())
	emailsvc.ClearSentMessages()
	return note.NewService(repo, note.NewMarkdownRenderer(), mailSvc), repo
}

func Test_Service_Send(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	n, msgID, err := svc.Send(ctx, note.NewNote{
		StudentName: "Hero",
		To:          "hero@test.cd",
		Cc:          []string{"parent@test.cd"},
		Subject:     "Session recap",
		SessionDate: "2026-08-21",
		Markdown:    "# Recap\n\nWe covered *fractions*.",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.NotEmpty(t, msgID)
	assert.Contains(t, n.HTML, "<h1>")
	assert.Contains(t, n.HTML, "<em>fractions</em>")
	assert.Equal(t, time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC), n.SessionDate)

	// the note is on record
	notes, err := repo.QueryAllNotes(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "hero@test.cd", notes[0].To)

	// and the message went out with both recipients
	require.Len(t, emailsvc.SentMessages, 1)
	msg := emailsvc.SentMessages[0]
	require.Len(t, msg.To, 1)
	assert.Equal(t, "hero@test.cd", msg.To[0].Address)
	require.Len(t, msg.Cc, 1)
	assert.Equal(t, "parent@test.cd", msg.Cc[0].Address)
	assert.Equal(t, n.HTML, msg.HTMLContent)
}

func Test_Service_Send_dispatchFailure(t *testing.T) {
	db, err := inmemdb.Open()
	require.NoError(t, err)
	repo := inmemdb.NewNoteRepository(db)
	svc := note.NewService(repo, note.NewMarkdownRenderer(), failingMailService{})

	n, _, err := svc.Send(context.Background(), note.NewNote{
		StudentName: "Hero",
		To:          "hero@test.cd",
		Subject:     "Session recap",
		Markdown:    "hello",
	})
	require.Error(t, err)
	// a failed send still leaves the audit record
	assert.NotEmpty(t, n.ID)
	notes, qErr := repo.QueryAllNotes(context.Background())
	require.NoError(t, qErr)
	assert.Len(t, notes, 1)
}

type failingMailService struct{}

func (failingMailService) Send(*core.EmailMessage) (string, error) {
	return "", errors.New("smtp: connection refused")
}

func Test_NewNote_Validate(t *testing.T) {
	validate, _ := testutil.NewValidator()

	base := note.NewNote{
		StudentName: "Hero",
		To:          "Hero@Test.cd ",
		Cc:          []string{"parent@test.cd", "parent@test.cd", ""},
		Subject:     " Session recap ",
		SessionDate: "2026-08-21",
		Markdown:    "hello",
	}

	t.Run("cleans and dedups", func(t *testing.T) {
		nn := base
		require.NoError(t, nn.Validate(validate, nil))
		assert.Equal(t, "hero@test.cd", nn.To)
		assert.Equal(t, []string{"parent@test.cd"}, nn.Cc)
		assert.Equal(t, "Session recap", nn.Subject)
	})

	t.Run("bad date", func(t *testing.T) {
		nn := base
		nn.SessionDate = "21/08/2026"
		assert.Error(t, nn.Validate(validate, nil))
	})

	t.Run("missing markdown", func(t *testing.T) {
		nn := base
		nn.Markdown = ""
		assert.Error(t, nn.Validate(validate, nil))
	})

	t.Run("allow-list", func(t *testing.T) {
		nn := base
		allowed := []string{"@test.cd"}
		require.NoError(t, nn.Validate(validate, allowed))

		nn = base
		nn.To = "hero@other.cd"
		err := nn.Validate(validate, allowed)
		require.Error(t, err)
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr))

		nn = base
		nn.Cc = []string{"parent@other.cd"}
		assert.Error(t, nn.Validate(validate, allowed))
	})
}

func Test_RecipientAllowed(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		allowed []string
		want    bool
	}{
		{name: "empty list allows all", addr: "a@b.cd", want: true},
		{name: "exact match", addr: "a@b.cd", allowed: []string{"a@b.cd"}, want: true},
		{name: "case-insensitive", addr: "A@B.cd", allowed: []string{"a@b.cd"}, want: true},
		{name: "domain suffix", addr: "a@b.cd", allowed: []string{"@b.cd"}, want: true},
		{name: "wrong domain", addr: "a@other.cd", allowed: []string{"@b.cd"}, want: false},
		{name: "no match", addr: "a@b.cd", allowed: []string{"c@b.cd"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, note.RecipientAllowed(tt.addr, tt.allowed))
		})
	}
}
