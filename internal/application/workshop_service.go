package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/workshop-planner/internal/catalog"
	"github.com/example/workshop-planner/internal/identity"
	"github.com/example/workshop-planner/internal/persistence"
	"github.com/example/workshop-planner/internal/scheduler"
	"github.com/example/workshop-planner/internal/timeline"
)

// DefaultStartTime is used when a request leaves the start time empty.
const DefaultStartTime = "09:00"

// Edited durations are kept within these bounds.
const (
	MinEditDuration = 5
	MaxEditDuration = 180
)

// SessionRepository captures the session-list persistence needed by the service.
type SessionRepository interface {
	Save(ctx context.Context, workshopID string, sessions []scheduler.Session) error
	Load(ctx context.Context, workshopID string) ([]scheduler.Session, error)
	Delete(ctx context.Context, workshopID string) error
	CleanupOrphaned(ctx context.Context, keep []string) ([]string, error)
}

// ScheduleBuilder produces randomized session lists from a catalog.
type ScheduleBuilder interface {
	Build(req scheduler.Request) scheduler.Plan
	Catalog() *catalog.Catalog
}

// WorkshopService orchestrates generation, reproducible reloads and edits of
// workshop agendas.
type WorkshopService struct {
	builder      ScheduleBuilder
	sessions     SessionRepository
	ids          identity.Resolver
	idGenerator  func() string
	now          func() time.Time
	defaultStart timeline.Clock
	logger       *slog.Logger
}

// NewWorkshopService constructs a workshop service with the provided dependencies.
func NewWorkshopService(builder ScheduleBuilder, sessions SessionRepository, idGenerator func() string, now func() time.Time) *WorkshopService {
	return NewWorkshopServiceWithLogger(builder, sessions, idGenerator, now, nil)
}

// NewWorkshopServiceWithLogger constructs a workshop service with a specified logger.
// A nil idGenerator falls back to random UUIDs.
func NewWorkshopServiceWithLogger(builder ScheduleBuilder, sessions SessionRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *WorkshopService {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	return &WorkshopService{
		builder:      builder,
		sessions:     sessions,
		ids:          identity.NewResolver(now),
		idGenerator:  idGenerator,
		now:          now,
		defaultStart: timeline.MustParseClock(DefaultStartTime),
		logger:       defaultLogger(logger),
	}
}

// WithDefaultStart sets the start time used when a request leaves it empty.
func (s *WorkshopService) WithDefaultStart(start timeline.Clock) *WorkshopService {
	s.defaultStart = start
	return s
}

// Catalog exposes the catalog generation draws from.
func (s *WorkshopService) Catalog() *catalog.Catalog {
	if s == nil || s.builder == nil {
		return nil
	}
	return s.builder.Catalog()
}

func (s *WorkshopService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "WorkshopService", operation, attrs...)
}

// Generate runs the builder once and returns a workshop with a new random id.
// Nothing is persisted.
func (s *WorkshopService) Generate(ctx context.Context, params GenerateParams) (workshop Workshop, err error) {
	if s == nil || s.builder == nil {
		err = fmt.Errorf("WorkshopService is not configured")
		return
	}

	logger := s.loggerWith(ctx, "Generate")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to generate workshop", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("workshop_id", workshop.ID, "sessions", len(workshop.Sessions)).InfoContext(ctx, "workshop generated")
	}()

	normalized, start, err := s.normalize(params)
	if err != nil {
		return
	}
	plan := s.builder.Build(buildRequest(normalized, start))
	workshop = assemble("workshop-"+s.idGenerator(), normalized, plan.Sessions)
	return
}

// GenerateOrLoad returns the session list stored under workshopID, running
// the builder and storing its result only on a miss. Unreadable or corrupt
// entries count as misses and a failed save is logged, not returned.
func (s *WorkshopService) GenerateOrLoad(ctx context.Context, workshopID string, params GenerateParams) (sessions []scheduler.Session, err error) {
	if s == nil || s.builder == nil {
		err = fmt.Errorf("WorkshopService is not configured")
		return
	}

	logger := s.loggerWith(ctx, "GenerateOrLoad", "workshop_id", workshopID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to load or generate sessions", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if strings.TrimSpace(workshopID) == "" {
		err = fieldError("workshop_id", "is required")
		return
	}
	normalized, start, err := s.normalize(params)
	if err != nil {
		return
	}
	sessions = s.loadOrBuild(ctx, logger, workshopID, normalized, start)
	return
}

// Preview returns the workshop for the stable id of params, reusing the
// stored agenda when one exists.
func (s *WorkshopService) Preview(ctx context.Context, params GenerateParams) (Workshop, error) {
	return s.resolve(ctx, "Preview", params, s.ids.Stable)
}

// Regenerate returns a workshop under a fresh id, which always produces a new
// agenda.
func (s *WorkshopService) Regenerate(ctx context.Context, params GenerateParams) (Workshop, error) {
	return s.resolve(ctx, "Regenerate", params, s.ids.Fresh)
}

func (s *WorkshopService) resolve(ctx context.Context, operation string, params GenerateParams, idFor func(identity.Params) string) (workshop Workshop, err error) {
	if s == nil || s.builder == nil {
		err = fmt.Errorf("WorkshopService is not configured")
		return
	}

	logger := s.loggerWith(ctx, operation)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to resolve workshop", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("workshop_id", workshop.ID, "sessions", len(workshop.Sessions)).InfoContext(ctx, "workshop resolved")
	}()

	normalized, start, err := s.normalize(params)
	if err != nil {
		return
	}
	id := idFor(identityParams(normalized))
	sessions := s.loadOrBuild(ctx, logger.With("workshop_id", id), id, normalized, start)
	workshop = assemble(id, normalized, sessions)
	return
}

func (s *WorkshopService) loadOrBuild(ctx context.Context, logger *slog.Logger, workshopID string, params GenerateParams, start timeline.Clock) []scheduler.Session {
	if s.sessions != nil {
		cached, err := s.sessions.Load(ctx, workshopID)
		switch {
		case err == nil && len(cached) > 0:
			logger.DebugContext(ctx, "session cache hit")
			if cached[0].StartTime != start.String() {
				scheduler.Retime(cached, start, 0)
				s.persist(ctx, logger, workshopID, cached)
			}
			return cached
		case err == nil, errors.Is(err, persistence.ErrNotFound):
			logger.DebugContext(ctx, "session cache miss")
		default:
			logger.WarnContext(ctx, "stored sessions unusable, regenerating", "error", err, "error_kind", ErrorKind(err))
		}
	}

	plan := s.builder.Build(buildRequest(params, start))
	s.persist(ctx, logger, workshopID, plan.Sessions)
	return plan.Sessions
}

func (s *WorkshopService) persist(ctx context.Context, logger *slog.Logger, workshopID string, sessions []scheduler.Session) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.Save(ctx, workshopID, sessions); err != nil {
		logger.WarnContext(ctx, "failed to persist sessions", "error", err)
	}
}

// Sessions returns the stored session list for workshopID.
func (s *WorkshopService) Sessions(ctx context.Context, workshopID string) ([]scheduler.Session, error) {
	if s == nil || s.sessions == nil {
		return nil, fmt.Errorf("session repository not configured")
	}
	sessions, err := s.sessions.Load(ctx, workshopID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return sessions, nil
}

// Discard removes the stored session list for workshopID.
func (s *WorkshopService) Discard(ctx context.Context, workshopID string) (err error) {
	if s == nil || s.sessions == nil {
		return fmt.Errorf("session repository not configured")
	}

	logger := s.loggerWith(ctx, "Discard", "workshop_id", workshopID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to discard sessions", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "sessions discarded")
	}()

	if err = s.sessions.Delete(ctx, workshopID); err != nil {
		err = mapStoreError(err)
	}
	return
}

// ReplaceActivity swaps the activity of one session between the bookends,
// recomputes its duration and narrative, re-times everything from that
// session on and stores the result under the workshop id.
func (s *WorkshopService) ReplaceActivity(ctx context.Context, workshop Workshop, index int, activityID string) (updated Workshop, err error) {
	if s == nil || s.builder == nil {
		err = fmt.Errorf("WorkshopService is not configured")
		return
	}

	logger := s.loggerWith(ctx, "ReplaceActivity",
		"workshop_id", workshop.ID,
		"session_index", index,
		"activity_id", activityID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to replace activity", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "activity replaced")
	}()

	cat := s.builder.Catalog()
	if cat == nil {
		err = fmt.Errorf("catalog not configured")
		return
	}

	participants := clamp(workshop.Participants, MinParticipants, MaxParticipants)
	vErr := validateWorkshop(workshop)
	if index <= 0 || index >= len(workshop.Sessions)-1 {
		vErr.add("session_index", "must select a session between welcome and closing")
	}
	activity, lookupErr := cat.Activity(activityID)
	switch {
	case lookupErr != nil:
		vErr.add("activity_id", "unknown activity")
	case catalog.IsReserved(activity.ID):
		vErr.add("activity_id", "bookends and breaks cannot be chosen")
	case !activity.Supports(participants):
		vErr.add("activity_id", fmt.Sprintf("does not support %d participants", participants))
	}
	start, startErr := s.workshopStart(workshop)
	vErr.merge(startErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated = workshop.clone()
	session := &updated.Sessions[index]
	session.Activity = activity
	session.Duration = scheduler.ActivityDuration(activity, participants)
	session.IsBreak = false
	session.BreakType = ""
	session.CustomData = nil
	session.IsCustomized = false
	scheduler.Narrate(session, updated.Context)
	scheduler.RefreshTransitions(updated.Sessions, index-1, index)
	scheduler.Retime(updated.Sessions, start, index)
	updated.TotalTime = scheduler.TotalDuration(updated.Sessions)

	s.persist(ctx, logger, updated.ID, updated.Sessions)
	return
}

// EditActivity overlays facilitator overrides on one session. When duration
// is set it is rounded to five minutes, clamped to the edit bounds and the
// agenda is re-timed from that session on.
func (s *WorkshopService) EditActivity(ctx context.Context, workshop Workshop, index int, custom scheduler.CustomData, duration *int) (updated Workshop, err error) {
	if s == nil {
		err = fmt.Errorf("WorkshopService is nil")
		return
	}

	logger := s.loggerWith(ctx, "EditActivity", "workshop_id", workshop.ID, "session_index", index)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to edit activity", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "activity edited")
	}()

	vErr := validateWorkshop(workshop)
	if index < 0 || index >= len(workshop.Sessions) {
		vErr.add("session_index", "out of range")
	}
	start, startErr := s.workshopStart(workshop)
	vErr.merge(startErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated = workshop.clone()
	session := &updated.Sessions[index]
	merged := custom
	if session.CustomData != nil {
		merged = session.CustomData.Merge(custom)
	}
	if !merged.IsZero() {
		session.CustomData = &merged
		session.IsCustomized = true
		applyCustomData(session, merged)
	}
	if duration != nil {
		if minutes := EditDuration(*duration); minutes != session.Duration {
			session.Duration = minutes
			session.IsCustomized = true
			scheduler.Retime(updated.Sessions, start, index)
		}
	}
	updated.TotalTime = scheduler.TotalDuration(updated.Sessions)

	s.persist(ctx, logger, updated.ID, updated.Sessions)
	return
}

// ChangeStartTime moves the whole agenda to a new start time.
func (s *WorkshopService) ChangeStartTime(ctx context.Context, workshop Workshop, startTime string) (updated Workshop, err error) {
	if s == nil {
		err = fmt.Errorf("WorkshopService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ChangeStartTime", "workshop_id", workshop.ID, "start_time", startTime)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to change start time", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "start time changed")
	}()

	vErr := validateWorkshop(workshop)
	start, parseErr := timeline.ParseClock(startTime)
	if parseErr != nil {
		vErr.add("start_time", "must be HH:MM")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated = workshop.clone()
	updated.StartTime = start.String()
	scheduler.Retime(updated.Sessions, start, 0)
	updated.TotalTime = scheduler.TotalDuration(updated.Sessions)

	s.persist(ctx, logger, updated.ID, updated.Sessions)
	return
}

// CleanupOrphanedSessions removes stored session lists whose workshop id is
// not in keep.
func (s *WorkshopService) CleanupOrphanedSessions(ctx context.Context, keep []string) (removed []string, err error) {
	if s == nil || s.sessions == nil {
		return nil, fmt.Errorf("session repository not configured")
	}

	logger := s.loggerWith(ctx, "CleanupOrphanedSessions", "keep", len(keep))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to clean up sessions", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "orphaned sessions removed", "removed", len(removed))
	}()

	removed, err = s.sessions.CleanupOrphaned(ctx, keep)
	if err != nil {
		err = mapStoreError(err)
	}
	return
}

// CheckTimeline reports gaps, overlaps and duration mismatches in an agenda.
func CheckTimeline(sessions []scheduler.Session) []timeline.Issue {
	return timeline.Verify(scheduler.Entries(sessions))
}

// EditDuration rounds minutes to the nearest five and clamps the result to
// the edit bounds.
func EditDuration(minutes int) int {
	rounded := int(math.Round(float64(minutes)/float64(scheduler.DurationStep))) * scheduler.DurationStep
	return clamp(rounded, MinEditDuration, MaxEditDuration)
}

func (s *WorkshopService) normalize(params GenerateParams) (GenerateParams, timeline.Clock, error) {
	vErr := &ValidationError{}
	out := GenerateParams{
		Hours:        clamp(params.Hours, MinHours, MaxHours),
		Participants: clamp(params.Participants, MinParticipants, MaxParticipants),
		Purposes:     s.normalizePurposes(params.Purposes, vErr),
		Context:      params.Context,
		Goals:        params.Goals,
	}

	start := s.defaultStart
	if trimmed := strings.TrimSpace(params.StartTime); trimmed != "" {
		parsed, err := timeline.ParseClock(trimmed)
		if err != nil {
			vErr.add("start_time", "must be HH:MM")
		} else {
			start = parsed
		}
	}
	out.StartTime = start.String()

	if vErr.HasErrors() {
		return GenerateParams{}, 0, vErr
	}
	return out, start, nil
}

// normalizePurposes keeps the first distinct non-empty ids up to MaxPurposes.
func (s *WorkshopService) normalizePurposes(ids []string, vErr *ValidationError) []string {
	cat := s.builder.Catalog()
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if cat != nil {
			if _, err := cat.Purpose(id); err != nil {
				vErr.add("purposes", fmt.Sprintf("unknown purpose %q", id))
				continue
			}
		}
		if len(out) == MaxPurposes {
			continue
		}
		out = append(out, id)
	}
	return out
}

func (s *WorkshopService) workshopStart(workshop Workshop) (timeline.Clock, *ValidationError) {
	if strings.TrimSpace(workshop.StartTime) == "" {
		if len(workshop.Sessions) > 0 {
			if first, err := timeline.ParseClock(workshop.Sessions[0].StartTime); err == nil {
				return first, nil
			}
		}
		return s.defaultStart, nil
	}
	start, err := timeline.ParseClock(workshop.StartTime)
	if err != nil {
		return 0, fieldError("start_time", "must be HH:MM")
	}
	return start, nil
}

func validateWorkshop(workshop Workshop) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(workshop.ID) == "" {
		vErr.add("workshop_id", "is required")
	}
	if len(workshop.Sessions) == 0 {
		vErr.add("sessions", "workshop has no sessions")
	}
	return vErr
}

func applyCustomData(session *scheduler.Session, custom scheduler.CustomData) {
	if custom.Purpose != "" {
		session.Purpose = custom.Purpose
	}
	if custom.Output != "" {
		session.Output = custom.Output
	}
	if custom.Transition != "" {
		session.Transition = custom.Transition
	}
	if custom.Risks != "" {
		session.Risks = custom.Risks
	}
	if custom.Mitigation != "" {
		session.Mitigation = custom.Mitigation
	}
}

func buildRequest(params GenerateParams, start timeline.Clock) scheduler.Request {
	return scheduler.Request{
		Hours:        params.Hours,
		Participants: params.Participants,
		Purposes:     params.Purposes,
		Context:      params.Context,
		Goals:        params.Goals,
		Start:        start,
	}
}

func identityParams(params GenerateParams) identity.Params {
	return identity.Params{
		Hours:        params.Hours,
		Participants: params.Participants,
		Purposes:     params.Purposes,
		Context:      params.Context,
		Goals:        params.Goals,
		StartTime:    params.StartTime,
	}
}

func assemble(id string, params GenerateParams, sessions []scheduler.Session) Workshop {
	purposes := params.Purposes
	if purposes == nil {
		purposes = []string{}
	}
	return Workshop{
		ID:           id,
		Title:        DefaultTitle(params.Hours, params.Participants),
		Duration:     params.Hours,
		Participants: params.Participants,
		Purposes:     purposes,
		Context:      params.Context,
		Goals:        params.Goals,
		StartTime:    params.StartTime,
		Sessions:     sessions,
		TotalTime:    scheduler.TotalDuration(sessions),
	}
}

func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound), errors.Is(err, persistence.ErrCorrupt):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	default:
		return err
	}
}

func clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
