package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/code-challenge/internal/domain/challenge"
	"github.com/riskibarqy/code-challenge/internal/domain/user"
	idgen "github.com/riskibarqy/code-challenge/internal/platform/id"
	"github.com/riskibarqy/code-challenge/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

const (
	defaultLeaderboardFetchConcurrency = 8
	defaultCompletionWorkers           = 4
	maxInviteCandidateLimit            = 50
)

type ChallengeServiceConfig struct {
	LeaderboardFetchConcurrency int
	CompletionWorkers           int
}

type CreateChallengeInput struct {
	OwnerID              string
	Name                 string
	Description          string
	StartDate            time.Time
	EndDate              time.Time
	MinSubmissionsPerDay int
	PenaltyAmount        int64
	DifficultyFilter     []string
	IsPrivate            bool
}

type GetChallengeInput struct {
	ChallengeID string
	ViewerID    string
	// At overrides the service clock when set.
	At time.Time
}

type JoinChallengeInput struct {
	ChallengeID string
	UserID      string
}

type ChallengeActionInput struct {
	ChallengeID string
	ActorID     string
}

type InviteInput struct {
	ChallengeID string
	ActorID     string
	CandidateID string
}

type ListInviteCandidatesInput struct {
	ChallengeID string
	ActorID     string
	Query       string
	Limit       int
}

type RecordSubmissionInput struct {
	ChallengeID string
	UserID      string
	Difficulty  string
}

// ChallengeView is everything a challenge page renders for one viewer.
type ChallengeView struct {
	Challenge   challenge.Challenge
	Progress    challenge.Progress
	Leaderboard []challenge.LeaderboardEntry
	MemberCount int
	IsMember    bool
	Actions     challenge.Actions
}

type InviteResult struct {
	Invitation challenge.Invitation
	View       ChallengeView
}

type ChallengeService struct {
	repo      challenge.Repository
	directory user.Directory
	idGen     idgen.Generator
	logger    *logging.Logger
	cfg       ChallengeServiceConfig
	now       func() time.Time
}

func NewChallengeService(
	repo challenge.Repository,
	directory user.Directory,
	idGen idgen.Generator,
	logger *logging.Logger,
	cfg ChallengeServiceConfig,
) *ChallengeService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.LeaderboardFetchConcurrency <= 0 {
		cfg.LeaderboardFetchConcurrency = defaultLeaderboardFetchConcurrency
	}
	if cfg.CompletionWorkers <= 0 {
		cfg.CompletionWorkers = defaultCompletionWorkers
	}

	return &ChallengeService{
		repo:      repo,
		directory: directory,
		idGen:     idGen,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *ChallengeService) CreateChallenge(ctx context.Context, input CreateChallengeInput) (ChallengeView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.CreateChallenge")
	defer span.End()

	input.OwnerID = strings.TrimSpace(input.OwnerID)
	if input.OwnerID == "" {
		return ChallengeView{}, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}

	challengeID, err := s.idGen.NewID()
	if err != nil {
		return ChallengeView{}, fmt.Errorf("generate challenge id: %w", err)
	}

	now := s.now().UTC()
	created, err := challenge.New(challengeID, challenge.Draft{
		Name:                 input.Name,
		Description:          input.Description,
		OwnerID:              input.OwnerID,
		StartDate:            input.StartDate,
		EndDate:              input.EndDate,
		MinSubmissionsPerDay: input.MinSubmissionsPerDay,
		PenaltyAmount:        input.PenaltyAmount,
		DifficultyFilter:     input.DifficultyFilter,
		IsPrivate:            input.IsPrivate,
	}, now)
	if err != nil {
		s.logger.WarnContext(ctx, "challenge create rejected", "owner_id", input.OwnerID, "error", err)
		return ChallengeView{}, err
	}

	err = s.runInTx(ctx, "create challenge", func(ctx context.Context, tx challenge.TxRepository) error {
		if err := tx.CreateChallenge(ctx, created); err != nil {
			return MarkTransient(err, "insert challenge")
		}
		if err := tx.AppendStatusEvent(ctx, challenge.StatusEvent{
			ChallengeID: created.ID,
			To:          challenge.StatusPending,
			ActorID:     created.OwnerID,
			At:          now,
		}); err != nil {
			return MarkTransient(err, "append created status event")
		}
		// The owner always participates in their own challenge.
		if err := tx.SaveMembership(ctx, challenge.Membership{
			ChallengeID: created.ID,
			UserID:      created.OwnerID,
			JoinedAt:    now,
		}); err != nil {
			return MarkTransient(err, "insert owner membership")
		}
		return nil
	})
	if err != nil {
		return ChallengeView{}, s.logFailure(ctx, "challenge create failed", created.ID, err)
	}

	s.logger.InfoContext(ctx, "challenge created",
		"challenge_id", created.ID,
		"owner_id", created.OwnerID,
		"is_private", created.IsPrivate,
	)
	return s.buildView(ctx, created.ID, created.OwnerID, now)
}

func (s *ChallengeService) GetChallengeWithLeaderboard(ctx context.Context, input GetChallengeInput) (ChallengeView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.GetChallengeWithLeaderboard")
	defer span.End()

	input.ChallengeID = strings.TrimSpace(input.ChallengeID)
	if input.ChallengeID == "" {
		return ChallengeView{}, fmt.Errorf("%w: challenge id is required", ErrInvalidInput)
	}

	now := input.At
	if now.IsZero() {
		now = s.now()
	}
	return s.buildView(ctx, input.ChallengeID, strings.TrimSpace(input.ViewerID), now.UTC())
}

func (s *ChallengeService) Join(ctx context.Context, input JoinChallengeInput) (ChallengeView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.Join")
	defer span.End()

	input.ChallengeID = strings.TrimSpace(input.ChallengeID)
	input.UserID = strings.TrimSpace(input.UserID)
	if input.ChallengeID == "" || input.UserID == "" {
		return ChallengeView{}, fmt.Errorf("%w: challenge id and user id are required", ErrInvalidInput)
	}

	now := s.now().UTC()
	err := s.runInTx(ctx, "join challenge", func(ctx context.Context, tx challenge.TxRepository) error {
		current, err := lockChallenge(ctx, tx, input.ChallengeID)
		if err != nil {
			return err
		}
		memberships, err := tx.ListMemberships(ctx, current.ID)
		if err != nil {
			return MarkTransient(err, "list memberships")
		}

		var invitation *challenge.Invitation
		if current.IsPrivate {
			pending, exists, err := tx.GetPendingInvitation(ctx, current.ID, input.UserID)
			if err != nil {
				return MarkTransient(err, "get pending invitation")
			}
			if exists {
				invitation = &pending
			}
		}

		membership, err := challenge.CanJoin(current, input.UserID, challenge.MemberIDs(memberships), invitation, now)
		if err != nil {
			return err
		}
		if err := tx.SaveMembership(ctx, membership); err != nil {
			return MarkTransient(err, "insert membership")
		}
		if invitation != nil {
			if err := tx.SaveInvitation(ctx, invitation.Consume(now)); err != nil {
				return MarkTransient(err, "consume invitation")
			}
		}
		return nil
	})
	if err != nil {
		return ChallengeView{}, s.logFailure(ctx, "challenge join failed", input.ChallengeID, err, "user_id", input.UserID)
	}

	s.logger.InfoContext(ctx, "challenge joined", "challenge_id", input.ChallengeID, "user_id", input.UserID)
	return s.buildView(ctx, input.ChallengeID, input.UserID, now)
}

func (s *ChallengeService) Activate(ctx context.Context, input ChallengeActionInput) (ChallengeView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.Activate")
	defer span.End()

	return s.applyTransition(ctx, "activate", input, func(c challenge.Challenge, actorID string, now time.Time) (challenge.Challenge, error) {
		return challenge.Activate(c, actorID, now)
	})
}

func (s *ChallengeService) Cancel(ctx context.Context, input ChallengeActionInput) (ChallengeView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.Cancel")
	defer span.End()

	return s.applyTransition(ctx, "cancel", input, func(c challenge.Challenge, actorID string, now time.Time) (challenge.Challenge, error) {
		return challenge.Cancel(c, actorID, now)
	})
}

type transitionFunc func(c challenge.Challenge, actorID string, now time.Time) (challenge.Challenge, error)

func (s *ChallengeService) applyTransition(ctx context.Context, action string, input ChallengeActionInput, apply transitionFunc) (ChallengeView, error) {
	input.ChallengeID = strings.TrimSpace(input.ChallengeID)
	input.ActorID = strings.TrimSpace(input.ActorID)
	if input.ChallengeID == "" || input.ActorID == "" {
		return ChallengeView{}, fmt.Errorf("%w: challenge id and actor id are required", ErrInvalidInput)
	}

	now := s.now().UTC()
	err := s.runInTx(ctx, action+" challenge", func(ctx context.Context, tx challenge.TxRepository) error {
		current, err := lockChallenge(ctx, tx, input.ChallengeID)
		if err != nil {
			return err
		}
		next, err := apply(current, input.ActorID, now)
		if err != nil {
			return err
		}
		if err := tx.SaveChallenge(ctx, next); err != nil {
			return MarkTransient(err, "save challenge")
		}
		if err := tx.AppendStatusEvent(ctx, challenge.NewStatusEvent(current, next, input.ActorID)); err != nil {
			return MarkTransient(err, "append status event")
		}
		return nil
	})
	if err != nil {
		return ChallengeView{}, s.logFailure(ctx, "challenge "+action+" failed", input.ChallengeID, err, "actor_id", input.ActorID)
	}

	s.logger.InfoContext(ctx, "challenge status changed", "challenge_id", input.ChallengeID, "action", action, "actor_id", input.ActorID)
	return s.buildView(ctx, input.ChallengeID, input.ActorID, now)
}

func (s *ChallengeService) Invite(ctx context.Context, input InviteInput) (InviteResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.Invite")
	defer span.End()

	input.ChallengeID = strings.TrimSpace(input.ChallengeID)
	input.ActorID = strings.TrimSpace(input.ActorID)
	input.CandidateID = strings.TrimSpace(input.CandidateID)
	if input.ChallengeID == "" || input.ActorID == "" || input.CandidateID == "" {
		return InviteResult{}, fmt.Errorf("%w: challenge id, actor id and candidate id are required", ErrInvalidInput)
	}

	now := s.now().UTC()
	var invitation challenge.Invitation
	err := s.runInTx(ctx, "invite to challenge", func(ctx context.Context, tx challenge.TxRepository) error {
		current, err := lockChallenge(ctx, tx, input.ChallengeID)
		if err != nil {
			return err
		}
		memberships, err := tx.ListMemberships(ctx, current.ID)
		if err != nil {
			return MarkTransient(err, "list memberships")
		}
		if err := challenge.CanInvite(current, input.ActorID, input.CandidateID, challenge.MemberIDs(memberships)); err != nil {
			return err
		}

		pending, exists, err := tx.GetPendingInvitation(ctx, current.ID, input.CandidateID)
		if err != nil {
			return MarkTransient(err, "get pending invitation")
		}
		if exists {
			invitation = pending
			return nil
		}

		invitationID, err := s.idGen.NewID()
		if err != nil {
			return fmt.Errorf("generate invitation id: %w", err)
		}
		invitation = challenge.NewInvitation(invitationID, current, input.CandidateID, now)
		if err := tx.SaveInvitation(ctx, invitation); err != nil {
			return MarkTransient(err, "insert invitation")
		}
		return nil
	})
	if err != nil {
		return InviteResult{}, s.logFailure(ctx, "challenge invite failed", input.ChallengeID, err,
			"actor_id", input.ActorID,
			"candidate_id", input.CandidateID,
		)
	}

	s.logger.InfoContext(ctx, "challenge invitation issued",
		"challenge_id", input.ChallengeID,
		"invitation_id", invitation.ID,
		"candidate_id", input.CandidateID,
	)
	view, err := s.buildView(ctx, input.ChallengeID, input.ActorID, now)
	if err != nil {
		return InviteResult{}, err
	}
	return InviteResult{Invitation: invitation, View: view}, nil
}

func (s *ChallengeService) ListInviteCandidates(ctx context.Context, input ListInviteCandidatesInput) ([]user.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.ListInviteCandidates")
	defer span.End()

	input.ChallengeID = strings.TrimSpace(input.ChallengeID)
	input.ActorID = strings.TrimSpace(input.ActorID)
	input.Query = strings.TrimSpace(input.Query)
	if input.ChallengeID == "" || input.ActorID == "" {
		return nil, fmt.Errorf("%w: challenge id and actor id are required", ErrInvalidInput)
	}
	if input.Limit <= 0 || input.Limit > maxInviteCandidateLimit {
		input.Limit = maxInviteCandidateLimit
	}

	current, err := s.getChallenge(ctx, input.ChallengeID)
	if err != nil {
		return nil, err
	}
	if err := challenge.CanListInviteCandidates(current, input.ActorID); err != nil {
		return nil, err
	}

	memberships, err := s.repo.ListMemberships(ctx, current.ID)
	if err != nil {
		return nil, s.logFailure(ctx, "list memberships failed", current.ID, MarkTransient(err, "list memberships"))
	}

	// Over-fetch so that filtering out members still fills the page.
	profiles, err := s.directory.Search(ctx, input.Query, input.Limit+len(memberships))
	if err != nil {
		return nil, s.logFailure(ctx, "search invite candidates failed", current.ID, MarkTransient(err, "search users"))
	}

	candidates := challenge.InviteCandidates(profiles, challenge.MemberIDs(memberships))
	if len(candidates) > input.Limit {
		candidates = candidates[:input.Limit]
	}
	return candidates, nil
}

func (s *ChallengeService) RecordSubmission(ctx context.Context, input RecordSubmissionInput) (challenge.DailyCount, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.RecordSubmission")
	defer span.End()

	input.ChallengeID = strings.TrimSpace(input.ChallengeID)
	input.UserID = strings.TrimSpace(input.UserID)
	difficulty := challenge.Difficulty(strings.ToLower(strings.TrimSpace(input.Difficulty)))
	if input.ChallengeID == "" || input.UserID == "" {
		return challenge.DailyCount{}, fmt.Errorf("%w: challenge id and user id are required", ErrInvalidInput)
	}
	if _, ok := challenge.AllDifficulties[difficulty]; !ok {
		return challenge.DailyCount{}, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInput, input.Difficulty)
	}

	// Stamped here so a submission can only count towards the day that is still open.
	submittedAt := s.now().UTC()

	var count challenge.DailyCount
	err := s.runInTx(ctx, "record submission", func(ctx context.Context, tx challenge.TxRepository) error {
		current, err := lockChallenge(ctx, tx, input.ChallengeID)
		if err != nil {
			return err
		}
		if current.Status != challenge.StatusActive {
			return fmt.Errorf("%w: challenge=%s status=%s", challenge.ErrChallengeClosed, current.ID, current.Status)
		}
		if !current.DifficultyFilter.Accepts(difficulty) {
			return fmt.Errorf("%w: difficulty %s is not accepted by challenge=%s", ErrInvalidInput, difficulty, current.ID)
		}
		day, ok := challenge.DayOf(current, submittedAt)
		if !ok {
			return fmt.Errorf("%w: submission at %s is outside challenge=%s", ErrInvalidInput, submittedAt.Format(time.RFC3339), current.ID)
		}

		memberships, err := tx.ListMemberships(ctx, current.ID)
		if err != nil {
			return MarkTransient(err, "list memberships")
		}
		if !containsMember(memberships, input.UserID) {
			return fmt.Errorf("%w: membership user=%s challenge=%s", ErrNotFound, input.UserID, current.ID)
		}

		count, err = tx.IncrementSubmissionCount(ctx, current.ID, input.UserID, day.From)
		if err != nil {
			return MarkTransient(err, "increment submission count")
		}
		return nil
	})
	if err != nil {
		return challenge.DailyCount{}, s.logFailure(ctx, "record submission failed", input.ChallengeID, err, "user_id", input.UserID)
	}
	return count, nil
}

func (s *ChallengeService) runInTx(ctx context.Context, msg string, fn func(ctx context.Context, tx challenge.TxRepository) error) error {
	return classify(s.repo.RunInTx(ctx, fn), msg)
}

func (s *ChallengeService) getChallenge(ctx context.Context, challengeID string) (challenge.Challenge, error) {
	item, exists, err := s.repo.GetChallenge(ctx, challengeID)
	if err != nil {
		return challenge.Challenge{}, s.logFailure(ctx, "get challenge failed", challengeID, MarkTransient(err, "get challenge"))
	}
	if !exists {
		return challenge.Challenge{}, fmt.Errorf("%w: challenge=%s", ErrNotFound, challengeID)
	}
	return item, nil
}

// buildView loads fresh state outside any transaction and rebuilds the leaderboard.
func (s *ChallengeService) buildView(ctx context.Context, challengeID, viewerID string, now time.Time) (ChallengeView, error) {
	current, err := s.getChallenge(ctx, challengeID)
	if err != nil {
		return ChallengeView{}, err
	}

	progress, err := challenge.CalculateProgress(current.StartDate, current.EndDate, now)
	if err != nil {
		return ChallengeView{}, err
	}

	memberships, err := s.repo.ListMemberships(ctx, current.ID)
	if err != nil {
		return ChallengeView{}, s.logFailure(ctx, "list memberships failed", current.ID, MarkTransient(err, "list memberships"))
	}

	leaderboard, err := s.rebuildLeaderboard(ctx, current, memberships, now)
	if err != nil {
		return ChallengeView{}, err
	}

	memberIDs := challenge.MemberIDs(memberships)
	var invitation *challenge.Invitation
	isMember := containsMember(memberships, viewerID)
	if current.IsPrivate && viewerID != "" && !isMember {
		pending, exists, err := s.repo.GetPendingInvitation(ctx, current.ID, viewerID)
		if err != nil {
			return ChallengeView{}, s.logFailure(ctx, "get pending invitation failed", current.ID, MarkTransient(err, "get pending invitation"))
		}
		if exists {
			invitation = &pending
		}
	}

	return ChallengeView{
		Challenge:   current,
		Progress:    progress,
		Leaderboard: leaderboard,
		MemberCount: len(memberships),
		IsMember:    isMember,
		Actions:     challenge.AvailableActions(current, viewerID, memberIDs, invitation, now),
	}, nil
}

// rebuildLeaderboard recomputes penalties from raw counts and writes changed
// totals back to the membership cache.
func (s *ChallengeService) rebuildLeaderboard(
	ctx context.Context,
	current challenge.Challenge,
	memberships []challenge.Membership,
	now time.Time,
) ([]challenge.LeaderboardEntry, error) {
	events, err := s.repo.ListStatusEvents(ctx, current.ID)
	if err != nil {
		return nil, s.logFailure(ctx, "list status events failed", current.ID, MarkTransient(err, "list status events"))
	}
	days := challenge.EvaluatedDays(current, challenge.TrackingWindowFromEvents(current, events), now)

	submissions, err := s.loadSubmissions(ctx, current.ID, memberships, days)
	if err != nil {
		return nil, s.logFailure(ctx, "load submissions failed", current.ID, err)
	}

	displayNames := map[string]string{}
	if len(memberships) > 0 {
		displayNames, err = s.directory.GetDisplayNames(ctx, challenge.MemberIDs(memberships))
		if err != nil {
			return nil, s.logFailure(ctx, "resolve display names failed", current.ID, MarkTransient(err, "get display names"))
		}
	}

	entries := challenge.BuildLeaderboard(challenge.LeaderboardInput{
		Challenge:     current,
		Memberships:   memberships,
		EvaluatedDays: days,
		Submissions:   submissions,
		DisplayNames:  displayNames,
	})

	for _, stale := range challenge.Reconcile(memberships, entries) {
		if err := s.repo.UpdateMembershipPenalty(ctx, stale.ChallengeID, stale.UserID, stale.TotalPenalty); err != nil {
			// The cached total is advisory; the leaderboard was already computed from source.
			s.logger.ErrorContext(ctx, "reconcile membership penalty failed",
				"challenge_id", stale.ChallengeID,
				"user_id", stale.UserID,
				"error", err,
			)
		}
	}
	return entries, nil
}

func (s *ChallengeService) loadSubmissions(
	ctx context.Context,
	challengeID string,
	memberships []challenge.Membership,
	days []challenge.DayRange,
) (map[string][]challenge.DailyCount, error) {
	out := make(map[string][]challenge.DailyCount, len(memberships))
	if len(days) == 0 || len(memberships) == 0 {
		return out, nil
	}
	span := challenge.DayRange{From: days[0].From, To: days[len(days)-1].To}

	var mu sync.Mutex
	workers := pool.New().
		WithMaxGoroutines(s.cfg.LeaderboardFetchConcurrency).
		WithContext(ctx).
		WithCancelOnError()
	for _, membership := range memberships {
		userID := membership.UserID
		workers.Go(func(ctx context.Context) error {
			counts, err := s.repo.ListSubmissionCounts(ctx, challengeID, userID, span)
			if err != nil {
				return MarkTransient(err, fmt.Sprintf("list submission counts user=%s", userID))
			}
			mu.Lock()
			out[userID] = counts
			mu.Unlock()
			return nil
		})
	}
	if err := workers.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ChallengeService) logFailure(ctx context.Context, msg, challengeID string, err error, args ...any) error {
	fields := append([]any{"challenge_id", challengeID, "error", err}, args...)
	if IsRetryable(err) {
		s.logger.ErrorContext(ctx, msg, fields...)
	} else {
		s.logger.WarnContext(ctx, msg, fields...)
	}
	return err
}

func lockChallenge(ctx context.Context, tx challenge.TxRepository, challengeID string) (challenge.Challenge, error) {
	current, exists, err := tx.LockChallenge(ctx, challengeID)
	if err != nil {
		return challenge.Challenge{}, MarkTransient(err, "lock challenge")
	}
	if !exists {
		return challenge.Challenge{}, fmt.Errorf("%w: challenge=%s", ErrNotFound, challengeID)
	}
	return current, nil
}

func containsMember(memberships []challenge.Membership, userID string) bool {
	if userID == "" {
		return false
	}
	for _, membership := range memberships {
		if membership.UserID == userID {
			return true
		}
	}
	return false
}
