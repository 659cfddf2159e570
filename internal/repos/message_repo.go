package repos

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iTeLLiiX/CraftConnect/internal/domain"
)

const msgCols = `id,job_id,sender_id,receiver_id,content,created_at,read_at`

type MessageRepo struct{ DB *sqlx.DB }

func NewMessageRepo(db *sqlx.DB) *MessageRepo { return &MessageRepo{DB: db} }

func (r *MessageRepo) Insert(ctx context.Context, m *domain.Message) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO messages(id,job_id,sender_id,receiver_id,content,created_at)
		VALUES(?,?,?,?,?,?)`,
		m.ID, m.JobID, m.SenderID, m.ReceiverID, m.Content, m.CreatedAt)
	return err
}

const msgSelectWithNames = `
	SELECT m.id, m.job_id, m.sender_id, m.receiver_id, m.content, m.created_at, m.read_at,
	       CASE WHEN s.company_name<>'' THEN s.company_name
	            ELSE s.first_name || ' ' || s.last_name END AS sender_name,
	       CASE WHEN r.company_name<>'' THEN r.company_name
	            ELSE r.first_name || ' ' || r.last_name END AS receiver_name
	FROM messages m
	JOIN users s ON s.id=m.sender_id
	JOIN users r ON r.id=m.receiver_id`

func (r *MessageRepo) ByID(ctx context.Context, id string) (*domain.Message, error) {
	var m domain.Message
	err := r.DB.GetContext(ctx, &m, msgSelectWithNames+` WHERE m.id=?`, id)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Thread returns the full history between two participants on one job,
// ascending by creation time with id as the deterministic tiebreak.
func (r *MessageRepo) Thread(ctx context.Context, jobID, userA, userB string) ([]domain.Message, error) {
	out := []domain.Message{}
	err := r.DB.SelectContext(ctx, &out, msgSelectWithNames+`
		WHERE m.job_id=?
		  AND ((m.sender_id=? AND m.receiver_id=?) OR (m.sender_id=? AND m.receiver_id=?))
		ORDER BY m.created_at, m.id`,
		jobID, userA, userB, userB, userA)
	return out, err
}

// LastInThread returns the most recent message of a thread, or nil when
// nobody has written yet.
func (r *MessageRepo) LastInThread(ctx context.Context, jobID, userA, userB string) (*domain.Message, error) {
	var m domain.Message
	err := r.DB.GetContext(ctx, &m, `
		SELECT `+prefixCols("m", msgCols)+` FROM messages m
		WHERE m.job_id=?
		  AND ((m.sender_id=? AND m.receiver_id=?) OR (m.sender_id=? AND m.receiver_id=?))
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT 1`,
		jobID, userA, userB, userB, userA)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// MarkThreadRead stamps every unread message addressed to receiver in the
// thread. Already-read rows are untouched, so repeated calls are no-ops.
func (r *MessageRepo) MarkThreadRead(ctx context.Context, jobID, senderID, receiverID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE messages SET read_at=?
		WHERE job_id=? AND sender_id=? AND receiver_id=? AND read_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339Nano), jobID, senderID, receiverID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkRead stamps a single message if it is unread and addressed to userID.
func (r *MessageRepo) MarkRead(ctx context.Context, messageID, userID string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE messages SET read_at=?
		WHERE id=? AND receiver_id=? AND read_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339Nano), messageID, userID)
	return err
}

// UnreadCount is the user's global unread badge value.
func (r *MessageRepo) UnreadCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.DB.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM messages WHERE receiver_id=? AND read_at IS NULL`, userID)
	return n, err
}

// UnreadInThread counts unread messages from senderID to receiverID on a job.
func (r *MessageRepo) UnreadInThread(ctx context.Context, jobID, senderID, receiverID string) (int, error) {
	var n int
	err := r.DB.GetContext(ctx, &n, `
		SELECT COUNT(*) FROM messages
		WHERE job_id=? AND sender_id=? AND receiver_id=? AND read_at IS NULL`,
		jobID, senderID, receiverID)
	return n, err
}
