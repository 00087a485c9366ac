// Package lifecycle drives cases through their debate lifecycle: creation,
// verdict commitment, moderation, voting, arguments, and closure.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/huutrungle2001/moral-duel-api/internal/ai"
	"github.com/huutrungle2001/moral-duel-api/internal/config"
	"github.com/huutrungle2001/moral-duel-api/internal/ledger"
	prommetrics "github.com/huutrungle2001/moral-duel-api/internal/metrics"
	"github.com/huutrungle2001/moral-duel-api/internal/models"
	"github.com/huutrungle2001/moral-duel-api/internal/repository"
	"github.com/huutrungle2001/moral-duel-api/pkg/logger"
)

// Likes a voter must hand out before submitting their own argument. Capped by
// how many foreign arguments exist on the case, so early debaters are not
// locked out. Also the per-case like allowance.
const likeQuota = 3

// Submission length bounds.
const (
	minTitleLen    = 10
	maxTitleLen    = 200
	minContextLen  = 50
	maxContextLen  = 2000
	minArgumentLen = 20
	maxArgumentLen = 300
)

// CaseRepository interface for case operations.
type CaseRepository interface {
	Create(c *models.Case) error
	GetByID(id uint) (*models.Case, error)
	List(status string, page, pageSize int) ([]models.Case, int64, error)
	ListExpired(now time.Time) ([]models.Case, error)
	ListNeedingCommitment(limit int) ([]models.Case, error)
	ListStaleClosing(before time.Time) ([]models.Case, error)
	ClaimForClosing(id uint) (bool, error)
	Activate(id uint, from string, closesAt time.Time) (bool, error)
	MarkClosed(id uint, closedAt time.Time) error
	SetCommitment(id uint, txID string, submittedAt time.Time) error
	Update(c *models.Case) error
}

// VoteRepository interface for vote operations.
type VoteRepository interface {
	Create(vote *models.Vote) error
	GetByCaseAndUser(caseID, userID uint) (*models.Vote, error)
}

// ArgumentRepository interface for argument operations.
type ArgumentRepository interface {
	Create(arg *models.Argument, voteID uint) error
	GetByID(id uint) (*models.Argument, error)
	GetByCaseAndUser(caseID, userID uint) (*models.Argument, error)
	ListByCase(caseID uint) ([]models.Argument, error)
	Like(argumentID, voterVoteID, userID uint) error
	Unlike(argumentID, voterVoteID, userID uint) (bool, error)
	HasLiked(argumentID, userID uint) (bool, error)
}

// UserRepository interface for user operations.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
}

// AuditRepository interface for transition records.
type AuditRepository interface {
	Append(entry *models.AuditEntry) error
}

// Settler settles a claimed case's reward pool.
type Settler interface {
	SettleCase(ctx context.Context, c *models.Case) error
}

// Service orchestrates the case lifecycle.
type Service struct {
	caseRepo  CaseRepository
	voteRepo  VoteRepository
	argRepo   ArgumentRepository
	userRepo  UserRepository
	auditRepo AuditRepository
	ledger    ledger.Ledger
	generator ai.Generator
	settler   Settler
	cfg       *config.Config
	log       *logger.Logger
}

// NewService creates a new lifecycle service.
func NewService(
	caseRepo *repository.CaseRepository,
	voteRepo *repository.VoteRepository,
	argRepo *repository.ArgumentRepository,
	userRepo *repository.UserRepository,
	auditRepo *repository.AuditRepository,
	ldg ledger.Ledger,
	generator ai.Generator,
	settler Settler,
	cfg *config.Config,
	log *logger.Logger,
) *Service {
	return &Service{
		caseRepo:  caseRepo,
		voteRepo:  voteRepo,
		argRepo:   argRepo,
		userRepo:  userRepo,
		auditRepo: auditRepo,
		ledger:    ldg,
		generator: generator,
		settler:   settler,
		cfg:       cfg,
		log:       log,
	}
}

// NewServiceWithInterfaces creates a new lifecycle service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	caseRepo CaseRepository,
	voteRepo VoteRepository,
	argRepo ArgumentRepository,
	userRepo UserRepository,
	auditRepo AuditRepository,
	ldg ledger.Ledger,
	generator ai.Generator,
	settler Settler,
	cfg *config.Config,
	log *logger.Logger,
) *Service {
	return &Service{
		caseRepo:  caseRepo,
		voteRepo:  voteRepo,
		argRepo:   argRepo,
		userRepo:  userRepo,
		auditRepo: auditRepo,
		ledger:    ldg,
		generator: generator,
		settler:   settler,
		cfg:       cfg,
		log:       log,
	}
}

// GenerateCase creates a fresh AI-authored case, seals the verdict and anchors
// its hash on the ledger. The case activates once the commitment confirms.
func (s *Service) GenerateCase(ctx context.Context) (*models.Case, error) {
	generated, err := s.generator.GenerateCase(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate case: %w", err)
	}

	c := &models.Case{
		Title:            generated.Title,
		Context:          generated.Context,
		Status:           models.CaseStatusVerdictPending,
		Origin:           models.CaseOriginAI,
		Verdict:          generated.VerdictSide,
		VerdictReasoning: generated.VerdictReasoning,
		VerdictHash:      models.HashVerdict(generated.VerdictSide, generated.VerdictReasoning),
		Confidence:       generated.Confidence,
		RewardPool:       s.cfg.Cases.DefaultRewardPool,
	}
	if err := s.caseRepo.Create(c); err != nil {
		return nil, err
	}
	s.audit("scheduler", models.AuditEntityCase, c.ID, "", models.CaseStatusVerdictPending, "case generated")
	prommetrics.RecordCaseCreated(models.CaseOriginAI)

	if err := s.commitVerdict(ctx, c, models.CaseStatusCommitted); err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("case_id", c.ID).
		Str("title", c.Title).
		Msg("Generated new case")
	return c, nil
}

// SubmitCase creates a user-authored case and queues it for moderation. No
// verdict exists yet; the judge renders it when the case closes, after the
// debate, so neither moderators nor voters can be steered by it.
func (s *Service) SubmitCase(ctx context.Context, creatorID uint, title, caseContext string) (*models.Case, error) {
	if len(title) < minTitleLen || len(title) > maxTitleLen {
		return nil, fmt.Errorf("title must be %d to %d characters", minTitleLen, maxTitleLen)
	}
	if len(caseContext) < minContextLen || len(caseContext) > maxContextLen {
		return nil, fmt.Errorf("context must be %d to %d characters", minContextLen, maxContextLen)
	}
	creator, err := s.userRepo.GetByID(creatorID)
	if err != nil {
		return nil, fmt.Errorf("creator not found: %w", err)
	}

	c := &models.Case{
		Title:      title,
		Context:    caseContext,
		Status:     models.CaseStatusPendingModeration,
		Origin:     models.CaseOriginUser,
		CreatorID:  &creator.ID,
		RewardPool: s.cfg.Cases.DefaultRewardPool,
	}
	if err := s.caseRepo.Create(c); err != nil {
		return nil, err
	}
	s.audit("api", models.AuditEntityCase, c.ID, "", models.CaseStatusPendingModeration, "case submitted")
	prommetrics.RecordCaseCreated(models.CaseOriginUser)

	s.log.Info().
		Uint("case_id", c.ID).
		Uint("creator_id", creator.ID).
		Msg("User submitted case")
	return c, nil
}

// commitVerdict anchors the verdict hash on the ledger and advances the case
// to its post-commit status.
func (s *Service) commitVerdict(ctx context.Context, c *models.Case, next string) error {
	txID, err := s.ledger.SubmitCommitment(ctx, c.ID, c.VerdictHash)
	if err != nil {
		prommetrics.RecordCommitment("submit_failed")
		return fmt.Errorf("failed to commit verdict for case %d: %w", c.ID, err)
	}
	if err := s.caseRepo.SetCommitment(c.ID, txID, time.Now()); err != nil {
		return err
	}

	from := c.Status
	c.Status = next
	c.CommitmentTxID = &txID
	c.CommitmentStatus = models.CommitmentStatusPending
	if err := s.caseRepo.Update(c); err != nil {
		return err
	}
	s.audit("scheduler", models.AuditEntityCase, c.ID, from, next, "verdict committed")
	prommetrics.RecordCommitment("submitted")
	return nil
}

// ApproveCase activates a moderated case and opens voting.
func (s *Service) ApproveCase(ctx context.Context, caseID uint) (*models.Case, error) {
	c, err := s.caseRepo.GetByID(caseID)
	if err != nil {
		return nil, err
	}
	if c.Status != models.CaseStatusPendingModeration {
		return nil, fmt.Errorf("case %d is not awaiting moderation", caseID)
	}

	closesAt := time.Now().Add(s.cfg.Cases.CaseDuration())
	ok, err := s.caseRepo.Activate(caseID, models.CaseStatusPendingModeration, closesAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("case %d left moderation concurrently", caseID)
	}
	s.audit("moderator", models.AuditEntityCase, caseID, models.CaseStatusPendingModeration, models.CaseStatusActive, "moderation approved")
	prommetrics.ActiveCases.Inc()

	s.log.Info().Uint("case_id", caseID).Msg("Case approved and activated")
	return s.caseRepo.GetByID(caseID)
}

// RejectCase removes a case from moderation. It closes without a verdict and
// never settles.
func (s *Service) RejectCase(ctx context.Context, caseID uint, reason string) error {
	c, err := s.caseRepo.GetByID(caseID)
	if err != nil {
		return err
	}
	if c.Status != models.CaseStatusPendingModeration {
		return fmt.Errorf("case %d is not awaiting moderation", caseID)
	}

	now := time.Now()
	c.Status = models.CaseStatusClosed
	c.ClosedAt = &now
	if err := s.caseRepo.Update(c); err != nil {
		return err
	}
	s.audit("moderator", models.AuditEntityCase, caseID, models.CaseStatusPendingModeration, models.CaseStatusClosed, "moderation rejected: "+reason)

	s.log.Info().Uint("case_id", caseID).Str("reason", reason).Msg("Case rejected")
	return nil
}

// ActivateCommitted opens voting on an AI case whose commitment confirmed.
// Called by the reconciler when the commitment transaction lands.
func (s *Service) ActivateCommitted(caseID uint) error {
	closesAt := time.Now().Add(s.cfg.Cases.CaseDuration())
	ok, err := s.caseRepo.Activate(caseID, models.CaseStatusCommitted, closesAt)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("case %d is not in committed state", caseID)
	}
	s.audit("reconciler", models.AuditEntityCase, caseID, models.CaseStatusCommitted, models.CaseStatusActive, "commitment confirmed")
	prommetrics.ActiveCases.Inc()
	return nil
}

// RetryCommitments resubmits verdict anchors that never made it onto the
// ledger: cases stranded before the first submission went out and cases whose
// transaction the reconciler declared failed. Runs with the generation job.
// Returns how many commitments were resubmitted.
func (s *Service) RetryCommitments(ctx context.Context) (int, error) {
	stranded, err := s.caseRepo.ListNeedingCommitment(s.retryBatchSize())
	if err != nil {
		return 0, err
	}

	retried := 0
	for i := range stranded {
		c := &stranded[i]
		if err := s.commitVerdict(ctx, c, models.CaseStatusCommitted); err != nil {
			s.log.Error().Err(err).Uint("case_id", c.ID).Msg("Commitment resubmission failed")
			continue
		}
		retried++
	}

	if retried > 0 {
		s.log.Info().Int("retried", retried).Msg("Resubmitted stranded commitments")
	}
	return retried, nil
}

func (s *Service) retryBatchSize() int {
	if s.cfg.Jobs.ReconcilerBatchSize > 0 {
		return s.cfg.Jobs.ReconcilerBatchSize
	}
	return 100
}

// Vote casts a user's YES/NO vote on an open case.
func (s *Service) Vote(ctx context.Context, caseID, userID uint, side string) (*models.Vote, error) {
	if side != models.SideYes && side != models.SideNo {
		return nil, fmt.Errorf("side must be %s or %s", models.SideYes, models.SideNo)
	}
	c, err := s.caseRepo.GetByID(caseID)
	if err != nil {
		return nil, err
	}
	if !c.IsOpenForVoting(time.Now()) {
		return nil, fmt.Errorf("case %d is not open for voting", caseID)
	}
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	if _, err := s.voteRepo.GetByCaseAndUser(caseID, userID); err == nil {
		return nil, fmt.Errorf("user %d already voted on case %d", userID, caseID)
	}

	vote := &models.Vote{CaseID: caseID, UserID: userID, Side: side}
	if err := s.voteRepo.Create(vote); err != nil {
		return nil, err
	}
	prommetrics.RecordVote(side)

	s.log.Debug().
		Uint("case_id", caseID).
		Uint("user_id", userID).
		Str("side", side).
		Msg("Vote cast")
	return vote, nil
}

// SubmitArgument attaches a user's argument to their vote. The author must
// have voted, must not have argued yet, and must first have spent their like
// quota reading other people's arguments.
func (s *Service) SubmitArgument(ctx context.Context, caseID, userID uint, content string) (*models.Argument, error) {
	if len(content) < minArgumentLen || len(content) > maxArgumentLen {
		return nil, fmt.Errorf("argument must be %d to %d characters", minArgumentLen, maxArgumentLen)
	}

	c, err := s.caseRepo.GetByID(caseID)
	if err != nil {
		return nil, err
	}
	if !c.IsOpenForVoting(time.Now()) {
		return nil, fmt.Errorf("case %d is not open for voting", caseID)
	}

	vote, err := s.voteRepo.GetByCaseAndUser(caseID, userID)
	if err != nil {
		return nil, fmt.Errorf("user %d must vote before arguing", userID)
	}
	if vote.HasArgued {
		return nil, fmt.Errorf("user %d already argued on case %d", userID, caseID)
	}

	required, err := s.requiredLikes(caseID, userID)
	if err != nil {
		return nil, err
	}
	if vote.LikesGiven < required {
		return nil, fmt.Errorf("user %d must like %d more arguments before arguing", userID, required-vote.LikesGiven)
	}

	// The argument inherits the vote's side
	arg := &models.Argument{
		CaseID:  caseID,
		UserID:  userID,
		Side:    vote.Side,
		Content: content,
	}
	if err := s.argRepo.Create(arg, vote.ID); err != nil {
		return nil, err
	}
	prommetrics.ArgumentsSubmittedTotal.Inc()

	s.log.Debug().
		Uint("case_id", caseID).
		Uint("user_id", userID).
		Msg("Argument submitted")
	return arg, nil
}

// requiredLikes computes how many likes the user owes before arguing: the
// quota, capped by how many arguments by other users actually exist.
func (s *Service) requiredLikes(caseID, userID uint) (int, error) {
	args, err := s.argRepo.ListByCase(caseID)
	if err != nil {
		return 0, err
	}
	foreign := 0
	for _, a := range args {
		if a.UserID != userID {
			foreign++
		}
	}
	if foreign < likeQuota {
		return foreign, nil
	}
	return likeQuota, nil
}

// LikeArgument spends one of the user's likes on another voter's argument.
func (s *Service) LikeArgument(ctx context.Context, caseID, argumentID, userID uint) error {
	c, err := s.caseRepo.GetByID(caseID)
	if err != nil {
		return err
	}
	if !c.IsOpenForVoting(time.Now()) {
		return fmt.Errorf("case %d is not open for voting", caseID)
	}

	vote, err := s.voteRepo.GetByCaseAndUser(caseID, userID)
	if err != nil {
		return fmt.Errorf("user %d must vote before liking", userID)
	}
	if vote.LikesGiven >= likeQuota {
		return fmt.Errorf("user %d has no likes left on case %d", userID, caseID)
	}

	arg, err := s.argRepo.GetByID(argumentID)
	if err != nil {
		return err
	}
	if arg.CaseID != caseID {
		return fmt.Errorf("argument %d does not belong to case %d", argumentID, caseID)
	}
	if arg.UserID == userID {
		return fmt.Errorf("cannot like your own argument")
	}

	return s.argRepo.Like(argumentID, vote.ID, userID)
}

// UnlikeArgument takes back a like, refunding it to the user's quota.
func (s *Service) UnlikeArgument(ctx context.Context, caseID, argumentID, userID uint) error {
	c, err := s.caseRepo.GetByID(caseID)
	if err != nil {
		return err
	}
	if !c.IsOpenForVoting(time.Now()) {
		return fmt.Errorf("case %d is not open for voting", caseID)
	}

	vote, err := s.voteRepo.GetByCaseAndUser(caseID, userID)
	if err != nil {
		return fmt.Errorf("user %d has no vote on case %d", userID, caseID)
	}

	removed, err := s.argRepo.Unlike(argumentID, vote.ID, userID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("user %d has not liked argument %d", userID, argumentID)
	}
	return nil
}

// CloseExpired sweeps active cases past their deadline. Each case is claimed
// with a conditional update first, so overlapping sweeps settle it at most
// once; a claim that fails is simply another runner's case. Claimed cases
// whose closure died mid-way on an earlier run are retried once they have sat
// in 'closing' for a full sweep interval. Returns how many cases this sweep
// closed.
func (s *Service) CloseExpired(ctx context.Context) (int, error) {
	expired, err := s.caseRepo.ListExpired(time.Now())
	if err != nil {
		return 0, err
	}

	closed := 0
	for i := range expired {
		c := &expired[i]

		claimed, err := s.caseRepo.ClaimForClosing(c.ID)
		if err != nil {
			s.log.Error().Err(err).Uint("case_id", c.ID).Msg("Failed to claim case for closing")
			continue
		}
		if !claimed {
			continue
		}
		s.audit("scheduler", models.AuditEntityCase, c.ID, models.CaseStatusActive, models.CaseStatusClosing, "voting window elapsed")

		if err := s.closeCase(ctx, c); err != nil {
			s.log.Error().Err(err).Uint("case_id", c.ID).Msg("Failed to close case")
			continue
		}
		closed++
	}

	stale, err := s.caseRepo.ListStaleClosing(time.Now().Add(-s.staleClosingThreshold()))
	if err != nil {
		return closed, err
	}
	for i := range stale {
		c := &stale[i]
		if err := s.closeCase(ctx, c); err != nil {
			s.log.Error().Err(err).Uint("case_id", c.ID).Msg("Failed to close stale case")
			continue
		}
		closed++
	}

	if closed > 0 {
		s.log.Info().Int("closed", closed).Msg("Closure sweep finished")
	}
	return closed, nil
}

// staleClosingThreshold is how long a case may sit in 'closing' before a
// sweep picks it back up. One sweep interval keeps a live runner's case out
// of reach.
func (s *Service) staleClosingThreshold() time.Duration {
	if s.cfg.Jobs.ClosureSweepMinutes > 0 {
		return time.Duration(s.cfg.Jobs.ClosureSweepMinutes) * time.Minute
	}
	return 5 * time.Minute
}

// closeCase settles one claimed case and reveals the verdict. User cases have
// no verdict yet; the judge renders one here, after the debate ended.
func (s *Service) closeCase(ctx context.Context, c *models.Case) error {
	if c.Verdict == "" {
		judged, err := s.generator.JudgeCase(ctx, c.Title, c.Context)
		if err != nil {
			return fmt.Errorf("failed to judge case %d: %w", c.ID, err)
		}
		c.Verdict = judged.VerdictSide
		c.VerdictReasoning = judged.VerdictReasoning
		c.VerdictHash = models.HashVerdict(judged.VerdictSide, judged.VerdictReasoning)
		c.Confidence = judged.Confidence
		if err := s.caseRepo.Update(c); err != nil {
			return err
		}
	}

	if err := s.settler.SettleCase(ctx, c); err != nil {
		return fmt.Errorf("failed to settle case %d: %w", c.ID, err)
	}

	now := time.Now()
	if err := s.caseRepo.MarkClosed(c.ID, now); err != nil {
		return err
	}
	s.audit("scheduler", models.AuditEntityCase, c.ID, models.CaseStatusClosing, models.CaseStatusClosed, "settled")

	prommetrics.ActiveCases.Dec()
	prommetrics.RecordCaseClosed(c.Verdict, c.ParticipantCount)

	s.log.Info().
		Uint("case_id", c.ID).
		Str("verdict", c.Verdict).
		Int("participants", c.ParticipantCount).
		Msg("Case closed")
	return nil
}

// GetCase retrieves a case.
func (s *Service) GetCase(ctx context.Context, id uint) (*models.Case, error) {
	return s.caseRepo.GetByID(id)
}

// ListCases retrieves cases by status with pagination.
func (s *Service) ListCases(ctx context.Context, status string, page, pageSize int) ([]models.Case, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.caseRepo.List(status, page, pageSize)
}

// ListArguments retrieves a case's arguments, most liked first.
func (s *Service) ListArguments(ctx context.Context, caseID uint) ([]models.Argument, error) {
	return s.argRepo.ListByCase(caseID)
}

func (s *Service) audit(actor, entityType string, entityID uint, from, to, reason string) {
	entry := &models.AuditEntry{
		EntityType: entityType,
		EntityID:   entityID,
		FromState:  from,
		ToState:    to,
		Actor:      actor,
		Reason:     reason,
	}
	if err := s.auditRepo.Append(entry); err != nil {
		s.log.Error().Err(err).
			Str("entity_type", entityType).
			Uint("entity_id", entityID).
			Msg("Failed to append audit entry")
	}
}
