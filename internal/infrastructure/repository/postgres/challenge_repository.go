package postgres

import (
	"context"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/code-challenge/internal/domain/challenge"
	qb "github.com/riskibarqy/code-challenge/internal/platform/querybuilder"
)

type ChallengeRepository struct {
	db *sqlx.DB
}

func NewChallengeRepository(db *sqlx.DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

func (r *ChallengeRepository) GetChallenge(ctx context.Context, challengeID string) (challenge.Challenge, bool, error) {
	return getChallenge(ctx, r.db, challengeID, false)
}

func (r *ChallengeRepository) ListMemberships(ctx context.Context, challengeID string) ([]challenge.Membership, error) {
	return listMemberships(ctx, r.db, challengeID)
}

func (r *ChallengeRepository) ListSubmissionCounts(ctx context.Context, challengeID, userID string, span challenge.DayRange) ([]challenge.DailyCount, error) {
	query, args, err := qb.Select("day", "count").From("challenge_daily_submissions").
		Where(
			qb.Eq("challenge_public_id", challengeID),
			qb.Eq("user_id", userID),
			qb.Gte("day", span.From.UTC()),
			qb.Lt("day", span.To.UTC()),
		).
		OrderBy("day ASC").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list submission counts query")
	}

	var rows []dailySubmissionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrapf(err, "list submission counts challenge=%s user=%s", challengeID, userID)
	}

	out := make([]challenge.DailyCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, challenge.DailyCount{Day: row.Day.UTC(), Count: row.Count})
	}
	return out, nil
}

func (r *ChallengeRepository) ListStatusEvents(ctx context.Context, challengeID string) ([]challenge.StatusEvent, error) {
	query, args, err := qb.Select("*").From("challenge_status_events").
		Where(qb.Eq("challenge_public_id", challengeID)).
		OrderBy("occurred_at ASC", "id ASC").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list status events query")
	}

	var rows []challengeStatusEventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrapf(err, "list status events challenge=%s", challengeID)
	}

	out := make([]challenge.StatusEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, statusEventFromRow(row))
	}
	return out, nil
}

func (r *ChallengeRepository) GetPendingInvitation(ctx context.Context, challengeID, userID string) (challenge.Invitation, bool, error) {
	return getPendingInvitation(ctx, r.db, challengeID, userID)
}

func (r *ChallengeRepository) ListDueChallengeIDs(ctx context.Context, now time.Time) ([]string, error) {
	query, args, err := qb.Select("public_id").From("challenges").
		Where(
			qb.Eq("status", string(challenge.StatusActive)),
			qb.Lte("end_date", now.UTC()),
		).
		OrderBy("public_id ASC").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list due challenges query")
	}

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, crerr.Wrap(err, "list due challenges")
	}
	return ids, nil
}

func (r *ChallengeRepository) UpdateMembershipPenalty(ctx context.Context, challengeID, userID string, totalPenalty int64) error {
	query, args, err := qb.Update("challenge_members").
		Set("total_penalty", totalPenalty).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("challenge_public_id", challengeID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return crerr.Wrap(err, "build update membership penalty query")
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(err, "update membership penalty challenge=%s user=%s", challengeID, userID)
	}
	return nil
}

func (r *ChallengeRepository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx challenge.TxRepository) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return crerr.Wrap(err, "begin challenge tx")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, &challengeTx{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return crerr.Wrap(err, "commit challenge tx")
	}
	return nil
}

type challengeTx struct {
	q sqlx.ExtContext
}

func (t *challengeTx) LockChallenge(ctx context.Context, challengeID string) (challenge.Challenge, bool, error) {
	return getChallenge(ctx, t.q, challengeID, true)
}

func (t *challengeTx) ListMemberships(ctx context.Context, challengeID string) ([]challenge.Membership, error) {
	return listMemberships(ctx, t.q, challengeID)
}

func (t *challengeTx) GetPendingInvitation(ctx context.Context, challengeID, userID string) (challenge.Invitation, bool, error) {
	return getPendingInvitation(ctx, t.q, challengeID, userID)
}

func (t *challengeTx) CreateChallenge(ctx context.Context, c challenge.Challenge) error {
	query, args, err := qb.InsertModel("challenges", challengeToInsert(c), "")
	if err != nil {
		return crerr.Wrap(err, "build create challenge query")
	}
	if _, err := t.q.ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(err, "create challenge %s", c.ID)
	}
	return nil
}

// SaveChallenge persists a transition. Only status and updated_at are writable.
func (t *challengeTx) SaveChallenge(ctx context.Context, c challenge.Challenge) error {
	query, args, err := qb.Update("challenges").
		Set("status", string(c.Status)).
		Set("updated_at", c.UpdatedAt.UTC()).
		Where(qb.Eq("public_id", c.ID)).
		ToSQL()
	if err != nil {
		return crerr.Wrap(err, "build save challenge query")
	}

	result, err := t.q.ExecContext(ctx, query, args...)
	if err != nil {
		return crerr.Wrapf(err, "save challenge %s", c.ID)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return crerr.Wrap(err, "rows affected save challenge")
	}
	if affected == 0 {
		return crerr.Newf("save challenge %s: not found", c.ID)
	}
	return nil
}

func (t *challengeTx) SaveMembership(ctx context.Context, membership challenge.Membership) error {
	query, args, err := qb.InsertModel("challenge_members", challengeMemberInsertModel{
		ChallengeID:  membership.ChallengeID,
		UserID:       membership.UserID,
		InvitedBy:    nullString(membership.InvitedBy),
		TotalPenalty: membership.TotalPenalty,
		JoinedAt:     membership.JoinedAt.UTC(),
	}, "")
	if err != nil {
		return crerr.Wrap(err, "build insert membership query")
	}
	if _, err := t.q.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: challenge=%s user=%s", challenge.ErrAlreadyMember, membership.ChallengeID, membership.UserID)
		}
		return crerr.Wrapf(err, "insert membership challenge=%s user=%s", membership.ChallengeID, membership.UserID)
	}
	return nil
}

func (t *challengeTx) SaveInvitation(ctx context.Context, invitation challenge.Invitation) error {
	var consumedAt *time.Time
	if invitation.ConsumedAt != nil {
		at := invitation.ConsumedAt.UTC()
		consumedAt = &at
	}
	query, args, err := qb.InsertModel("challenge_invitations", challengeInvitationInsertModel{
		PublicID:    invitation.ID,
		ChallengeID: invitation.ChallengeID,
		UserID:      invitation.UserID,
		InvitedBy:   invitation.InvitedBy,
		CreatedAt:   invitation.CreatedAt.UTC(),
		ConsumedAt:  consumedAt,
	}, "ON CONFLICT (public_id) DO UPDATE SET consumed_at = EXCLUDED.consumed_at")
	if err != nil {
		return crerr.Wrap(err, "build save invitation query")
	}
	if _, err := t.q.ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(err, "save invitation %s", invitation.ID)
	}
	return nil
}

func (t *challengeTx) AppendStatusEvent(ctx context.Context, event challenge.StatusEvent) error {
	query, args, err := qb.InsertModel("challenge_status_events", challengeStatusEventInsertModel{
		ChallengeID: event.ChallengeID,
		FromStatus:  nullString(string(event.From)),
		ToStatus:    string(event.To),
		ActorUserID: nullString(event.ActorID),
		OccurredAt:  event.At.UTC(),
	}, "")
	if err != nil {
		return crerr.Wrap(err, "build append status event query")
	}
	if _, err := t.q.ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(err, "append status event challenge=%s", event.ChallengeID)
	}
	return nil
}

func (t *challengeTx) IncrementSubmissionCount(ctx context.Context, challengeID, userID string, day time.Time) (challenge.DailyCount, error) {
	query, args, err := qb.InsertModel("challenge_daily_submissions", dailySubmissionInsertModel{
		ChallengeID: challengeID,
		UserID:      userID,
		Day:         day.UTC(),
		Count:       1,
	}, `ON CONFLICT (challenge_public_id, user_id, day)
DO UPDATE SET count = challenge_daily_submissions.count + 1, updated_at = NOW()
RETURNING day, count`)
	if err != nil {
		return challenge.DailyCount{}, crerr.Wrap(err, "build increment submission count query")
	}

	var row dailySubmissionTableModel
	if err := sqlx.GetContext(ctx, t.q, &row, query, args...); err != nil {
		return challenge.DailyCount{}, crerr.Wrapf(err, "increment submission count challenge=%s user=%s", challengeID, userID)
	}
	return challenge.DailyCount{Day: row.Day.UTC(), Count: row.Count}, nil
}

func getChallenge(ctx context.Context, q sqlx.QueryerContext, challengeID string, forUpdate bool) (challenge.Challenge, bool, error) {
	builder := qb.Select("*").From("challenges").Where(qb.Eq("public_id", challengeID))
	if forUpdate {
		builder = builder.ForUpdate()
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return challenge.Challenge{}, false, crerr.Wrap(err, "build get challenge query")
	}

	var row challengeTableModel
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return challenge.Challenge{}, false, nil
		}
		return challenge.Challenge{}, false, crerr.Wrapf(err, "get challenge %s", challengeID)
	}
	return challengeFromRow(row), true, nil
}

func listMemberships(ctx context.Context, q sqlx.QueryerContext, challengeID string) ([]challenge.Membership, error) {
	query, args, err := qb.Select("*").From("challenge_members").
		Where(qb.Eq("challenge_public_id", challengeID)).
		OrderBy("joined_at ASC", "id ASC").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list memberships query")
	}

	var rows []challengeMemberTableModel
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, crerr.Wrapf(err, "list memberships challenge=%s", challengeID)
	}

	out := make([]challenge.Membership, 0, len(rows))
	for _, row := range rows {
		out = append(out, membershipFromRow(row))
	}
	return out, nil
}

func getPendingInvitation(ctx context.Context, q sqlx.QueryerContext, challengeID, userID string) (challenge.Invitation, bool, error) {
	query, args, err := qb.Select("*").From("challenge_invitations").
		Where(
			qb.Eq("challenge_public_id", challengeID),
			qb.Eq("user_id", userID),
			qb.IsNull("consumed_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return challenge.Invitation{}, false, crerr.Wrap(err, "build get pending invitation query")
	}

	var row challengeInvitationTableModel
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return challenge.Invitation{}, false, nil
		}
		return challenge.Invitation{}, false, crerr.Wrapf(err, "get pending invitation challenge=%s user=%s", challengeID, userID)
	}
	return invitationFromRow(row), true, nil
}
