package orchestrators

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"gymhub/internal/application/validation"
	"gymhub/internal/domain/member"
)

// ImportMembersInput carries the CSV reader and import options.
// PRE: Reader is a CSV stream with a header row containing NAME and EMAIL
// POST: Returns aggregate counts and per-row errors; writes are skipped when DryRun=true
// INVARIANT: Existing members are never modified
type ImportMembersInput struct {
	Reader      io.Reader
	DefaultPlan string // used when the PLAN column is missing or empty
	DryRun      bool
	SendWelcome bool
}

// ImportMembersResult holds aggregate counts and per-row errors from an import run.
type ImportMembersResult struct {
	Total     int
	Created   int
	Skipped   int
	Errors    []ImportMembersRowError
	DryRun    bool
	Unknown   []string
	Passwords map[string]string // email -> temporary password, for created members
}

// ImportMembersRowError describes a validation or processing error for a single CSV row.
type ImportMembersRowError struct {
	Row     int
	Message string
}

// ImportMembersDeps holds external dependencies for the import orchestrator.
type ImportMembersDeps struct {
	MemberStore MemberStoreForRegister
	Outbox      OutboxWriter
	GenerateID  func() string
	Now         func() time.Time
}

// ImportMembersValidationError is returned when the CSV structure is invalid (e.g. missing required columns).
type ImportMembersValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ImportMembersValidationError) Error() string {
	return e.Message
}

// ExecuteImportMembers registers one member per CSV row.
// Rows whose email already belongs to a member or account are skipped.
func ExecuteImportMembers(ctx context.Context, input ImportMembersInput, deps ImportMembersDeps) (ImportMembersResult, error) {
	cr := csv.NewReader(input.Reader)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return ImportMembersResult{}, err
	}

	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"NAME", "EMAIL"} {
		if _, ok := colIdx[required]; !ok {
			return ImportMembersResult{}, &ImportMembersValidationError{Message: "CSV missing required column: " + required}
		}
	}

	known := map[string]bool{"NAME": true, "EMAIL": true, "PHONE": true, "PLAN": true}
	var unknownCols []string
	for _, h := range header {
		if !known[strings.ToUpper(strings.TrimSpace(h))] {
			unknownCols = append(unknownCols, h)
		}
	}

	getCol := func(row []string, col string) string {
		i, ok := colIdx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	defaultPlan := input.DefaultPlan
	if defaultPlan == "" {
		defaultPlan = member.PlanBasic
	}

	outbox := deps.Outbox
	if !input.SendWelcome {
		outbox = nil
	}
	register := RegisterMemberDeps{
		MemberStore: deps.MemberStore,
		Outbox:      outbox,
		GenerateID:  deps.GenerateID,
		Now:         deps.Now,
	}

	result := ImportMembersResult{DryRun: input.DryRun, Unknown: unknownCols, Passwords: map[string]string{}}
	rowNum := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			// A malformed row is reported and skipped; the reader has moved past it.
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.Errors = append(result.Errors, ImportMembersRowError{Row: rowNum, Message: err.Error()})
				continue
			}
			slog.Error("members_import_read_failed", "row", rowNum, "created", result.Created, "error", err)
			return result, fmt.Errorf("read CSV row %d: %w", rowNum, err)
		}
		result.Total++

		plan := strings.ToLower(getCol(row, "PLAN"))
		if plan == "" {
			plan = defaultPlan
		}
		in := RegisterMemberInput{
			Name:  getCol(row, "NAME"),
			Email: getCol(row, "EMAIL"),
			Phone: getCol(row, "PHONE"),
			Plan:  plan,
		}

		if input.DryRun {
			if msgs := validation.Messages(validation.Struct(in)); len(msgs) > 0 {
				result.Errors = append(result.Errors, ImportMembersRowError{Row: rowNum, Message: strings.Join(msgs, "; ")})
				continue
			}
			result.Created++
			continue
		}

		res, err := ExecuteRegisterMember(ctx, in, register)
		switch {
		case err == nil:
			result.Created++
			result.Passwords[strings.ToLower(in.Email)] = res.TempPassword
		case containsMessage(err, ErrMemberEmailTaken.Error()):
			result.Skipped++
		case validation.Messages(err) != nil:
			result.Errors = append(result.Errors, ImportMembersRowError{Row: rowNum, Message: strings.Join(validation.Messages(err), "; ")})
		default:
			slog.Error("members_import_save_failed", "row", rowNum, "email", in.Email, "error", err)
			result.Errors = append(result.Errors, ImportMembersRowError{Row: rowNum, Message: "save failed (see server log)"})
		}
	}

	slog.Info("members_import",
		"dry_run", input.DryRun,
		"total", result.Total,
		"created", result.Created,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
	)
	return result, nil
}

func containsMessage(err error, msg string) bool {
	for _, m := range validation.Messages(err) {
		if m == msg {
			return true
		}
	}
	return false
}
