package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/calyx-health/formgate/internal/rules"
	"github.com/calyx-health/formgate/internal/types"
)

/*
 * Form-definition store.
 *
 * Questions are stored one row each with their sequence position; the
 * optional rule is embedded as a JSON expression column, mirroring how the
 * wire protocol carries it. Definitions are validated on both save and load:
 * save rejects bad forms outright, load re-validates so a row edited behind
 * the store's back cannot smuggle a backward reference into a session.
 */

// FormStore persists and loads form definitions.
type FormStore struct {
	queries *Queries
}

// NewFormStore creates a store over loaded named queries.
func NewFormStore(queries *Queries) (*FormStore, error) {
	if queries == nil {
		return nil, fmt.Errorf("queries cannot be nil")
	}
	return &FormStore{queries: queries}, nil
}

// formRow mirrors the forms table.
type formRow struct {
	FormID    string `db:"form_id"`
	Name      string `db:"name"`
	CreatedAt string `db:"created_at"`
}

// questionRow mirrors the questions table.
type questionRow struct {
	QuestionID string         `db:"question_id"`
	Position   int            `db:"position"`
	Label      sql.NullString `db:"label"`
	ValueType  string         `db:"value_type"`
	Rule       sql.NullString `db:"rule"`
}

// SaveForm validates and persists a form definition.
// An existing form with the same id is replaced.
func (s *FormStore) SaveForm(form types.Form) error {
	if err := rules.ValidateForm(form); err != nil {
		return fmt.Errorf("invalid form definition: %w", err)
	}

	// Replace semantics: drop old rows first. Not transactional across the
	// two tables; the definition store has a single writer (the import
	// path) so partial replace is not a practical concern.
	if _, err := s.queries.Exec("delete-questions", string(form.ID)); err != nil {
		return fmt.Errorf("failed to clear questions: %w", err)
	}
	if _, err := s.queries.Exec("delete-form", string(form.ID)); err != nil {
		return fmt.Errorf("failed to clear form: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.queries.Exec("insert-form", string(form.ID), form.Name, now); err != nil {
		return fmt.Errorf("failed to insert form: %w", err)
	}

	for i, q := range form.Questions {
		var ruleJSON any
		if q.Rule != nil {
			encoded, err := json.Marshal(q.Rule)
			if err != nil {
				return fmt.Errorf("failed to encode rule for question %s: %w", q.ID, err)
			}
			ruleJSON = string(encoded)
		}
		_, err := s.queries.Exec("insert-question",
			string(form.ID), string(q.ID), i, q.Label, string(q.ValueType), ruleJSON)
		if err != nil {
			return fmt.Errorf("failed to insert question %s: %w", q.ID, err)
		}
	}

	return nil
}

// LoadForm loads and validates a form definition.
// Returns types.ErrFormNotFound when the id is unknown.
func (s *FormStore) LoadForm(id types.FormID) (types.Form, error) {
	var fr formRow
	if err := s.queries.Get("get-form", &fr, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Form{}, fmt.Errorf("form %s: %w", id, types.ErrFormNotFound)
		}
		return types.Form{}, fmt.Errorf("failed to load form: %w", err)
	}

	var qrs []questionRow
	if err := s.queries.Select("list-questions", &qrs, string(id)); err != nil {
		return types.Form{}, fmt.Errorf("failed to load questions: %w", err)
	}

	form := types.Form{
		ID:        types.FormID(fr.FormID),
		Name:      fr.Name,
		Questions: make([]types.Question, 0, len(qrs)),
	}
	for _, qr := range qrs {
		q := types.Question{
			ID:        types.QuestionID(qr.QuestionID),
			Label:     qr.Label.String,
			ValueType: types.ValueType(qr.ValueType),
		}
		if qr.Rule.Valid && qr.Rule.String != "" {
			var rule types.Rule
			if err := json.Unmarshal([]byte(qr.Rule.String), &rule); err != nil {
				return types.Form{}, fmt.Errorf("malformed rule for question %s: %w", q.ID, err)
			}
			q.Rule = &rule
		}
		form.Questions = append(form.Questions, q)
	}

	if err := rules.ValidateForm(form); err != nil {
		return types.Form{}, fmt.Errorf("stored form %s failed validation: %w", id, err)
	}

	return form, nil
}

// ListForms returns ids and names of all stored forms, newest first.
func (s *FormStore) ListForms() ([]types.Form, error) {
	var rows []formRow
	if err := s.queries.Select("list-forms", &rows); err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	forms := make([]types.Form, 0, len(rows))
	for _, r := range rows {
		forms = append(forms, types.Form{ID: types.FormID(r.FormID), Name: r.Name})
	}
	return forms, nil
}

// DeleteForm removes a form and its questions.
func (s *FormStore) DeleteForm(id types.FormID) error {
	if _, err := s.queries.Exec("delete-questions", string(id)); err != nil {
		return fmt.Errorf("failed to delete questions: %w", err)
	}
	if _, err := s.queries.Exec("delete-form", string(id)); err != nil {
		return fmt.Errorf("failed to delete form: %w", err)
	}
	return nil
}
