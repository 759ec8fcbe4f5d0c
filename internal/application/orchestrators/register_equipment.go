package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gymhub/internal/application/validation"
	"gymhub/internal/domain/equipment"
	"gymhub/internal/domain/payment"
)

// EquipmentStore defines the store interface needed by the equipment orchestrators.
type EquipmentStore interface {
	GetByID(ctx context.Context, id string) (equipment.Equipment, error)
	Save(ctx context.Context, e equipment.Equipment) error
}

// RegisterEquipmentInput carries the equipment registration form.
type RegisterEquipmentInput struct {
	Name          string `validate:"required,max=100" label:"Name"`
	Category      string `validate:"required,oneof=cardio strength free_weights functional other" label:"Category"`
	SerialNumber  string `validate:"required,max=64" label:"Serial number"`
	PurchaseDate  string `validate:"required,datetime=2006-01-02" label:"Purchase date"`
	PurchasePrice string `label:"Purchase price"` // decimal; empty means 0
	Notes         string `validate:"max=500" label:"Notes"`
}

// EquipmentDeps holds dependencies for the equipment orchestrators.
type EquipmentDeps struct {
	EquipmentStore EquipmentStore
	GenerateID     func() string
	Now            func() time.Time
}

// ExecuteRegisterEquipment adds an asset to the register as operational.
// PRE: caller is admin
// POST: Equipment saved
// INVARIANT: Serial numbers are unique (enforced by store)
func ExecuteRegisterEquipment(ctx context.Context, input RegisterEquipmentInput, deps EquipmentDeps) (equipment.Equipment, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.SerialNumber = strings.TrimSpace(input.SerialNumber)
	input.Notes = strings.TrimSpace(input.Notes)

	errs := &validation.Errors{}
	validation.CheckStruct(errs, input)
	price := 0
	if s := strings.TrimSpace(input.PurchasePrice); s != "" {
		cents, err := payment.ParseCents(s)
		if err != nil {
			errs.Add("Purchase price must be a number with at most two decimals")
		}
		price = cents
	}
	if err := errs.Err(); err != nil {
		return equipment.Equipment{}, err
	}

	now := clock(deps.Now)
	purchased, _ := time.Parse(equipment.DateLayout, input.PurchaseDate)
	e := equipment.Equipment{
		ID:                 newID(deps.GenerateID),
		Name:               input.Name,
		Category:           input.Category,
		SerialNumber:       input.SerialNumber,
		PurchaseDate:       purchased,
		PurchasePriceCents: price,
		Status:             equipment.StatusOperational,
		Notes:              input.Notes,
		CreatedAt:          now,
	}
	if err := e.Validate(now); err != nil {
		return equipment.Equipment{}, validation.Wrap(err)
	}

	if err := deps.EquipmentStore.Save(ctx, e); err != nil {
		if errors.Is(err, equipment.ErrDuplicateSerial) {
			return equipment.Equipment{}, validation.Wrap(err)
		}
		return equipment.Equipment{}, err
	}

	slog.Info("equipment_registered", "equipment_id", e.ID, "category", e.Category, "serial", e.SerialNumber)
	return e, nil
}

// UpdateEquipmentStatusInput carries input for the orchestrator.
type UpdateEquipmentStatusInput struct {
	EquipmentID string `validate:"required" label:"Equipment"`
	Status      string `validate:"required" label:"Status"`
	Notes       string `validate:"max=500" label:"Notes"` // replaces the notes when non-empty
}

// ExecuteUpdateEquipmentStatus moves equipment between operational, maintenance and retired.
// PRE: caller is admin
// POST: Status updated; returning from maintenance stamps LastServicedOn
func ExecuteUpdateEquipmentStatus(ctx context.Context, input UpdateEquipmentStatusInput, deps EquipmentDeps) (equipment.Equipment, error) {
	input.Notes = strings.TrimSpace(input.Notes)
	if err := validation.Struct(input); err != nil {
		return equipment.Equipment{}, err
	}

	e, err := deps.EquipmentStore.GetByID(ctx, input.EquipmentID)
	if err != nil {
		return equipment.Equipment{}, err
	}
	previous := e.Status

	today := clock(deps.Now).Truncate(24 * time.Hour)
	if err := e.TransitionTo(input.Status, today); err != nil {
		return equipment.Equipment{}, validation.Wrap(err)
	}
	if input.Notes != "" {
		e.Notes = input.Notes
	}

	if err := deps.EquipmentStore.Save(ctx, e); err != nil {
		return equipment.Equipment{}, err
	}

	slog.Info("equipment_status_changed", "equipment_id", e.ID, "from", previous, "to", e.Status)
	return e, nil
}
