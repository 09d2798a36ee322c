package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestCommentRepository_Append(t *testing.T) {
	mock := newMock(t)
	comment := domain.Comment{
		ID:        "c-1",
		TicketID:  "t-1",
		UserID:    "u-agent",
		Content:   "Replaced the HDMI cable",
		CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec(`INSERT INTO comments \(id,ticket_id,user_id,content,internal,created_at\)`).
		WithArgs(comment.ID, comment.TicketID, comment.UserID, comment.Content, false, comment.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewCommentRepository(mock).Append(context.Background(), &comment))
}

func TestCommentRepository_AppendBlankRejectedByCheck(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`INSERT INTO comments`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23514", ConstraintName: "comments_content_check"})

	err := NewCommentRepository(mock).Append(context.Background(), &domain.Comment{TicketID: "t-1"})
	assert.ErrorIs(t, err, errorutil.ErrValidation)
}

func TestCommentRepository_ListByTicket(t *testing.T) {
	mock := newMock(t)
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+), u\.full_name AS author_name FROM comments cm JOIN users u ON u\.id = cm\.user_id ` +
		`WHERE cm\.ticket_id = \$1 ORDER BY cm\.created_at ASC, cm\.seq ASC`).
		WithArgs("t-1").
		WillReturnRows(pgxmock.NewRows(append(append([]string(nil), commentColumns...), "author_name")).
			AddRow("c-1", "t-1", "u-filer", "Still broken", false, at, "Fiona Filer").
			AddRow("c-2", "t-1", "u-agent", "Needs new lamp", true, at, "Alice Agent"))

	comments, err := NewCommentRepository(mock).ListByTicket(context.Background(), "t-1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "c-1", comments[0].ID)
	assert.Equal(t, "Fiona Filer", comments[0].AuthorName)
	assert.True(t, comments[1].Internal)
}
