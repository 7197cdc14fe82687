package services

import (
	"context"
	"errors"
	"testing"

	"condoflow/internal/core"
	"condoflow/internal/storage/memory"
)

func validRegistration(unitID string) core.RegistrationRequest {
	return core.RegistrationRequest{
		UnitID:                 unitID,
		FullName:               "João Lima",
		CPF:                    "529.982.247-25",
		Phone:                  "11987654321",
		ResidentRole:           core.RoleTenant,
		IsFinancialResponsible: true,
	}
}

func TestRegistrationWorkflow(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	seedUnit(t, mem, "u-1", "101")
	svc := NewRegistrationService(mem)

	created, err := svc.Submit(ctx, validRegistration("u-1"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if created.Status != core.RegistrationPending {
		t.Errorf("new registrations start PENDENTE, got %s", created.Status)
	}

	// Profile edits are allowed while pending.
	created.Phone = "11912345678"
	if err := svc.Update(ctx, created); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := svc.Approve(ctx, created.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	unit, err := mem.GetUnit(ctx, "u-1")
	if err != nil {
		t.Fatalf("get unit: %v", err)
	}
	if unit.ResidentName != "João Lima" {
		t.Errorf("approval must copy the resident name, got %q", unit.ResidentName)
	}
	if unit.ResidentRole != core.RoleTenant {
		t.Errorf("approval must copy the role, got %s", unit.ResidentRole)
	}

	got, _ := svc.Get(ctx, created.ID)
	if got.Status != core.RegistrationApproved {
		t.Errorf("expected APROVADO, got %s", got.Status)
	}

	// A reviewed request is closed for further edits and reviews.
	if err := svc.Update(ctx, created); !errors.Is(err, ErrRegistrationClosed) {
		t.Errorf("expected ErrRegistrationClosed on edit, got %v", err)
	}
	if err := svc.Reject(ctx, created.ID); !errors.Is(err, ErrRegistrationClosed) {
		t.Errorf("expected ErrRegistrationClosed on reject, got %v", err)
	}
}

func TestRegistrationReject(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	seedUnit(t, mem, "u-1", "101")
	svc := NewRegistrationService(mem)

	created, err := svc.Submit(ctx, validRegistration("u-1"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := svc.Reject(ctx, created.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}

	// Rejection leaves the unit untouched.
	unit, _ := mem.GetUnit(ctx, "u-1")
	if unit.ResidentName != "Morador 101" {
		t.Errorf("rejection must not change the unit, got %q", unit.ResidentName)
	}
}

func TestRegistrationSubmitValidation(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	seedUnit(t, mem, "u-1", "101")
	svc := NewRegistrationService(mem)

	tests := []struct {
		name    string
		mutate  func(*core.RegistrationRequest)
		wantErr error
	}{
		{"bad cpf", func(r *core.RegistrationRequest) { r.CPF = "111.111.111-11" }, core.ErrInvalidCPF},
		{"bad phone", func(r *core.RegistrationRequest) { r.Phone = "123" }, core.ErrInvalidPhone},
		{"no unit", func(r *core.RegistrationRequest) { r.UnitID = "" }, core.ErrNoUnitSelected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := validRegistration("u-1")
			tt.mutate(&reg)
			if _, err := svc.Submit(ctx, reg); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
