package pgrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tutorpost/backend/core/note"
)

type noteRow struct {
	ID          string         `db:"id"`
	StudentName null.String    `db:"student_name"`
	Recipient   string         `db:"recipient"`
	Cc          pq.StringArray `db:"cc"`
	Subject     null.String    `db:"subject"`
	SessionDate null.Time      `db:"session_date"`
	Markdown    null.String    `db:"markdown"`
	HTML        null.String    `db:"html"`
	CreatedAt   null.Time      `db:"created_at"`
}

type noteRepository struct {
	db *sqlx.DB
}

var _ note.Repository = (*noteRepository)(nil) // interface compliance check

func NewNoteRepository(db *sqlx.DB) *noteRepository {
	return &noteRepository{db: db}
}

func (repo noteRepository) row(n note.Note) noteRow {
	return noteRow{
		ID:          n.ID,
		StudentName: null.NewString(n.StudentName, n.StudentName != ""),
		Recipient:   n.To,
		Cc:          emptyIfNil(n.Cc),
		Subject:     null.NewString(n.Subject, n.Subject != ""),
		SessionDate: null.NewTime(n.SessionDate, !n.SessionDate.IsZero()),
		Markdown:    null.NewString(n.Markdown, n.Markdown != ""),
		HTML:        null.NewString(n.HTML, n.HTML != ""),
		CreatedAt:   null.NewTime(n.CreatedAt.UTC(), !n.CreatedAt.IsZero()),
	}
}

func (repo noteRepository) unrow(r noteRow) note.Note {
	return note.Note{
		ID:          r.ID,
		StudentName: r.StudentName.String,
		To:          r.Recipient,
		Cc:          r.Cc,
		Subject:     r.Subject.String,
		SessionDate: r.SessionDate.Time,
		Markdown:    r.Markdown.String,
		HTML:        r.HTML.String,
		CreatedAt:   r.CreatedAt.Time,
	}
}

const noteCols = `id, student_name, recipient, cc, subject, session_date, markdown, html, created_at`

func (repo noteRepository) CreateNote(ctx context.Context, n note.Note) (note.Note, error) {
	n.ID = uuid.New().String()
	r := repo.row(n)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO session_note (`+noteCols+`)
		VALUES (:id, :student_name, :recipient, :cc, :subject, :session_date, :markdown, :html, :created_at)`, r)
	if err != nil {
		return note.Note{}, errors.Wrap(err, "inserting note")
	}
	return repo.unrow(r), nil
}

func (repo noteRepository) QueryAllNotes(ctx context.Context) ([]note.Note, error) {
	var rows []noteRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT `+noteCols+` FROM session_note`); err != nil {
		return nil, errors.Wrap(err, "querying notes")
	}
	notes := make([]note.Note, 0, len(rows))
	for _, r := range rows {
		notes = append(notes, repo.unrow(r))
	}
	return notes, nil
}
