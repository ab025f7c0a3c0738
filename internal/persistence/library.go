package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

const (
	// LibraryKeyPrefix namespaces saved-workshop library entries.
	LibraryKeyPrefix = "saved_workshop_"
	// AutoSavedFormKey holds the most recent auto-saved form.
	AutoSavedFormKey = "autosaved_form"
)

// LibraryStore persists saved-workshop records, one key per record.
type LibraryStore struct {
	kv KeyValueStore
}

// NewLibraryStore wraps a key-value substrate.
func NewLibraryStore(kv KeyValueStore) *LibraryStore {
	return &LibraryStore{kv: kv}
}

// Put creates or replaces a record.
func (s *LibraryStore) Put(ctx context.Context, record SavedWorkshopRecord) error {
	if s == nil || s.kv == nil {
		return fmt.Errorf("library store not configured")
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode saved workshop %s: %w", record.ID, err)
	}
	if err := s.kv.Set(ctx, LibraryKeyPrefix+record.ID, payload); err != nil {
		return fmt.Errorf("save workshop %s: %w", record.ID, err)
	}
	return nil
}

// Get returns a record by id.
func (s *LibraryStore) Get(ctx context.Context, id string) (SavedWorkshopRecord, error) {
	if s == nil || s.kv == nil {
		return SavedWorkshopRecord{}, fmt.Errorf("library store not configured")
	}
	payload, err := s.kv.Get(ctx, LibraryKeyPrefix+id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return SavedWorkshopRecord{}, ErrNotFound
		}
		return SavedWorkshopRecord{}, fmt.Errorf("load saved workshop %s: %w", id, err)
	}
	var record SavedWorkshopRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return SavedWorkshopRecord{}, fmt.Errorf("%w: saved workshop %s: %v", ErrCorrupt, id, err)
	}
	return record, nil
}

// Delete removes a record. It returns ErrNotFound when no record exists.
func (s *LibraryStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.kv == nil {
		return fmt.Errorf("library store not configured")
	}
	if _, err := s.kv.Get(ctx, LibraryKeyPrefix+id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load saved workshop %s: %w", id, err)
	}
	if err := s.kv.Delete(ctx, LibraryKeyPrefix+id); err != nil {
		return fmt.Errorf("delete saved workshop %s: %w", id, err)
	}
	return nil
}

// List returns every decodable record, most recently modified first.
// Undecodable entries are skipped.
func (s *LibraryStore) List(ctx context.Context) ([]SavedWorkshopRecord, error) {
	if s == nil || s.kv == nil {
		return nil, fmt.Errorf("library store not configured")
	}
	keys, err := s.kv.Keys(ctx, LibraryKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list saved workshops: %w", err)
	}
	records := make([]SavedWorkshopRecord, 0, len(keys))
	for _, key := range keys {
		payload, err := s.kv.Get(ctx, key)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("load %s: %w", key, err)
		}
		var record SavedWorkshopRecord
		if err := json.Unmarshal(payload, &record); err != nil {
			continue
		}
		records = append(records, record)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].LastModified.Equal(records[j].LastModified) {
			return records[i].ID < records[j].ID
		}
		return records[i].LastModified.After(records[j].LastModified)
	})
	return records, nil
}

// SaveForm stores the auto-saved form, replacing any previous one.
func (s *LibraryStore) SaveForm(ctx context.Context, form FormRecord) error {
	if s == nil || s.kv == nil {
		return fmt.Errorf("library store not configured")
	}
	payload, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("encode auto-saved form: %w", err)
	}
	if err := s.kv.Set(ctx, AutoSavedFormKey, payload); err != nil {
		return fmt.Errorf("auto-save form: %w", err)
	}
	return nil
}

// LoadForm returns the auto-saved form.
func (s *LibraryStore) LoadForm(ctx context.Context) (FormRecord, error) {
	if s == nil || s.kv == nil {
		return FormRecord{}, fmt.Errorf("library store not configured")
	}
	payload, err := s.kv.Get(ctx, AutoSavedFormKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return FormRecord{}, ErrNotFound
		}
		return FormRecord{}, fmt.Errorf("load auto-saved form: %w", err)
	}
	var form FormRecord
	if err := json.Unmarshal(payload, &form); err != nil {
		return FormRecord{}, fmt.Errorf("%w: auto-saved form: %v", ErrCorrupt, err)
	}
	return form, nil
}
