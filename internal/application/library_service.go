package application

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/workshop-planner/internal/persistence"
)

const namePreviewLength = 30

// LibraryRepository captures the saved-workshop persistence needed by the service.
type LibraryRepository interface {
	Put(ctx context.Context, record persistence.SavedWorkshopRecord) error
	Get(ctx context.Context, id string) (persistence.SavedWorkshopRecord, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]persistence.SavedWorkshopRecord, error)
	SaveForm(ctx context.Context, form persistence.FormRecord) error
	LoadForm(ctx context.Context) (persistence.FormRecord, error)
}

// LibraryService manages saved workshops, drafts and the auto-saved form.
type LibraryService struct {
	library     LibraryRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewLibraryService constructs a library service with the provided dependencies.
func NewLibraryService(library LibraryRepository, idGenerator func() string, now func() time.Time) *LibraryService {
	return NewLibraryServiceWithLogger(library, idGenerator, now, nil)
}

// NewLibraryServiceWithLogger constructs a library service with a specified logger.
func NewLibraryServiceWithLogger(library LibraryRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *LibraryService {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	return &LibraryService{library: library, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *LibraryService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "LibraryService", operation, attrs...)
}

func (s *LibraryService) ready() error {
	if s == nil || s.library == nil {
		return fmt.Errorf("library repository not configured")
	}
	return nil
}

// SaveWorkshop stores a completed workshop together with the form it came from.
func (s *LibraryService) SaveWorkshop(ctx context.Context, workshop Workshop, form FormData) (saved SavedWorkshop, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "SaveWorkshop", "workshop_id", workshop.ID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to save workshop", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("saved_id", saved.ID).InfoContext(ctx, "workshop saved")
	}()

	if len(workshop.Sessions) == 0 {
		err = fieldError("workshop", "has no sessions")
		return
	}

	ws := workshop.clone()
	saved = s.newEntry(StatusCompleted, form)
	saved.Workshop = &ws
	err = s.library.Put(ctx, toSavedRecord(saved))
	return
}

// SaveDraft stores the form alone.
func (s *LibraryService) SaveDraft(ctx context.Context, form FormData) (saved SavedWorkshop, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "SaveDraft")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to save draft", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("saved_id", saved.ID).InfoContext(ctx, "draft saved")
	}()

	saved = s.newEntry(StatusDraft, form)
	err = s.library.Put(ctx, toSavedRecord(saved))
	return
}

func (s *LibraryService) newEntry(status SavedStatus, form FormData) SavedWorkshop {
	now := s.now()
	return SavedWorkshop{
		ID:           s.idGenerator(),
		Name:         GenerateName(form.Context, form.Goals, now),
		Status:       status,
		CreatedAt:    now,
		LastModified: now,
		Form:         cloneForm(form),
	}
}

// List returns every saved entry, most recently modified first.
func (s *LibraryService) List(ctx context.Context) ([]SavedWorkshop, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	records, err := s.library.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SavedWorkshop, 0, len(records))
	for _, record := range records {
		out = append(out, fromSavedRecord(record))
	}
	return out, nil
}

// Get returns one saved entry.
func (s *LibraryService) Get(ctx context.Context, id string) (SavedWorkshop, error) {
	if err := s.ready(); err != nil {
		return SavedWorkshop{}, err
	}
	record, err := s.library.Get(ctx, id)
	if err != nil {
		return SavedWorkshop{}, mapStoreError(err)
	}
	return fromSavedRecord(record), nil
}

// Update applies the non-nil fields of update and bumps LastModified.
func (s *LibraryService) Update(ctx context.Context, id string, update SavedWorkshopUpdate) (saved SavedWorkshop, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "Update", "saved_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update saved workshop", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "saved workshop updated")
	}()

	vErr := &ValidationError{}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		vErr.add("name", "must not be empty")
	}
	if update.Status != nil && *update.Status != StatusDraft && *update.Status != StatusCompleted {
		vErr.add("status", "must be draft or completed")
	}
	if update.Workshop != nil && len(update.Workshop.Sessions) == 0 {
		vErr.add("workshop", "has no sessions")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	saved, err = s.Get(ctx, id)
	if err != nil {
		return
	}
	if update.Name != nil {
		saved.Name = strings.TrimSpace(*update.Name)
	}
	if update.Status != nil {
		saved.Status = *update.Status
	}
	if update.Form != nil {
		saved.Form = cloneForm(*update.Form)
	}
	if update.Workshop != nil {
		ws := update.Workshop.clone()
		saved.Workshop = &ws
	}
	saved.LastModified = s.now()

	err = s.library.Put(ctx, toSavedRecord(saved))
	return
}

// Delete removes one saved entry.
func (s *LibraryService) Delete(ctx context.Context, id string) (err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "Delete", "saved_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete saved workshop", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "saved workshop deleted")
	}()

	if err = s.library.Delete(ctx, id); err != nil {
		err = mapStoreError(err)
	}
	return
}

// CleanupDuplicates keeps only the most recently modified entry per name and
// returns the ids it removed.
func (s *LibraryService) CleanupDuplicates(ctx context.Context) (removed []string, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "CleanupDuplicates")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to clean up duplicates", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "duplicate workshops removed", "removed", len(removed))
	}()

	entries, err := s.List(ctx)
	if err != nil {
		return
	}
	kept := make(map[string]struct{}, len(entries))
	removed = make([]string, 0)
	for _, entry := range entries {
		if _, ok := kept[entry.Name]; !ok {
			kept[entry.Name] = struct{}{}
			continue
		}
		if err = s.library.Delete(ctx, entry.ID); err != nil && !errors.Is(err, persistence.ErrNotFound) {
			return
		}
		err = nil
		removed = append(removed, entry.ID)
	}
	return
}

// WorkshopIDs lists the agenda ids referenced by saved workshops.
func (s *LibraryService) WorkshopIDs(ctx context.Context) ([]string, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Workshop != nil && entry.Workshop.ID != "" {
			ids = append(ids, entry.Workshop.ID)
		}
	}
	return ids, nil
}

// AutoSaveForm replaces the auto-saved form.
func (s *LibraryService) AutoSaveForm(ctx context.Context, form FormData) (AutoSavedForm, error) {
	if err := s.ready(); err != nil {
		return AutoSavedForm{}, err
	}
	saved := AutoSavedForm{Form: cloneForm(form), LastSaved: s.now()}
	record := toFormRecord(saved.Form)
	record.LastSaved = &saved.LastSaved
	if err := s.library.SaveForm(ctx, record); err != nil {
		s.loggerWith(ctx, "AutoSaveForm").WarnContext(ctx, "failed to auto-save form", "error", err)
		return AutoSavedForm{}, err
	}
	return saved, nil
}

// LoadAutoSavedForm returns the auto-saved form, or ErrNotFound when there is
// none or it cannot be read.
func (s *LibraryService) LoadAutoSavedForm(ctx context.Context) (AutoSavedForm, error) {
	if err := s.ready(); err != nil {
		return AutoSavedForm{}, err
	}
	record, err := s.library.LoadForm(ctx)
	if err != nil {
		return AutoSavedForm{}, mapStoreError(err)
	}
	out := AutoSavedForm{Form: fromFormRecord(record)}
	if record.LastSaved != nil {
		out.LastSaved = *record.LastSaved
	}
	return out, nil
}

// ShareToken encodes the workshop of a saved entry. Drafts cannot be shared.
func (s *LibraryService) ShareToken(ctx context.Context, id string) (string, error) {
	saved, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if saved.Workshop == nil {
		return "", fieldError("workshop", "drafts cannot be shared")
	}
	return EncodeShareToken(*saved.Workshop)
}

// EncodeShareToken renders a workshop as URL-safe base64 JSON.
func EncodeShareToken(workshop Workshop) (string, error) {
	payload, err := json.Marshal(workshop)
	if err != nil {
		return "", fmt.Errorf("encode workshop: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(payload), nil
}

// DecodeShareToken reverses EncodeShareToken.
func DecodeShareToken(token string) (Workshop, error) {
	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return Workshop{}, fmt.Errorf("%w: %v", ErrInvalidShareToken, err)
	}
	var workshop Workshop
	if err := json.Unmarshal(payload, &workshop); err != nil {
		return Workshop{}, fmt.Errorf("%w: %v", ErrInvalidShareToken, err)
	}
	if workshop.ID == "" || len(workshop.Sessions) == 0 {
		return Workshop{}, fmt.Errorf("%w: missing workshop data", ErrInvalidShareToken)
	}
	return workshop, nil
}

// GenerateName names an entry after its context and goals, shortened to 30
// characters each. With neither it falls back to the date.
func GenerateName(context, goals string, now time.Time) string {
	contextPreview := preview(context)
	goalsPreview := preview(goals)
	switch {
	case context != "" && goals != "":
		return contextPreview + " - " + goalsPreview
	case context != "":
		return contextPreview
	case goals != "":
		return goalsPreview
	default:
		return "Workshop " + now.Format("2006-01-02")
	}
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) > namePreviewLength {
		return string(runes[:namePreviewLength]) + "..."
	}
	return text
}

func cloneForm(form FormData) FormData {
	out := form
	out.Purposes = append([]string(nil), form.Purposes...)
	return out
}

func toFormRecord(form FormData) persistence.FormRecord {
	return persistence.FormRecord{
		Hours:        form.Hours,
		Participants: form.Participants,
		Purposes:     append([]string(nil), form.Purposes...),
		Context:      form.Context,
		Goals:        form.Goals,
		StartTime:    form.StartTime,
	}
}

func fromFormRecord(record persistence.FormRecord) FormData {
	return FormData{
		Hours:        record.Hours,
		Participants: record.Participants,
		Purposes:     append([]string(nil), record.Purposes...),
		Context:      record.Context,
		Goals:        record.Goals,
		StartTime:    record.StartTime,
	}
}

func toSavedRecord(saved SavedWorkshop) persistence.SavedWorkshopRecord {
	record := persistence.SavedWorkshopRecord{
		ID:           saved.ID,
		Name:         saved.Name,
		Status:       string(saved.Status),
		CreatedAt:    saved.CreatedAt,
		LastModified: saved.LastModified,
		Form:         toFormRecord(saved.Form),
	}
	if saved.Workshop != nil {
		ws := saved.Workshop
		record.Workshop = &persistence.WorkshopRecord{
			ID:           ws.ID,
			Title:        ws.Title,
			Hours:        ws.Duration,
			Participants: ws.Participants,
			Purposes:     append([]string(nil), ws.Purposes...),
			Context:      ws.Context,
			Goals:        ws.Goals,
			StartTime:    ws.StartTime,
			Sessions:     ws.Sessions,
			TotalTime:    ws.TotalTime,
		}
	}
	return record
}

func fromSavedRecord(record persistence.SavedWorkshopRecord) SavedWorkshop {
	saved := SavedWorkshop{
		ID:           record.ID,
		Name:         record.Name,
		Status:       SavedStatus(record.Status),
		CreatedAt:    record.CreatedAt,
		LastModified: record.LastModified,
		Form:         fromFormRecord(record.Form),
	}
	if ws := record.Workshop; ws != nil {
		saved.Workshop = &Workshop{
			ID:           ws.ID,
			Title:        ws.Title,
			Duration:     ws.Hours,
			Participants: ws.Participants,
			Purposes:     append([]string(nil), ws.Purposes...),
			Context:      ws.Context,
			Goals:        ws.Goals,
			StartTime:    ws.StartTime,
			Sessions:     ws.Sessions,
			TotalTime:    ws.TotalTime,
		}
	}
	return saved
}
