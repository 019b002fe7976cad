package notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/paneworks/glassdesk_backend/internal/model"
)

// Triggers is the facade business code calls when domain events happen. It
// hides template names and category wiring from callers.
type Triggers struct {
	svc Service
}

func NewTriggers(svc Service) *Triggers {
	return &Triggers{svc: svc}
}

func (t *Triggers) RepairApproved(ctx context.Context, technician uuid.UUID, repairRef, approver string) error {
	_, err := t.svc.CreateFromTemplate(ctx, TemplateRequest{
		Recipient: model.Recipient{Kind: model.RecipientTechnician, ID: technician},
		Template:  "repair_approved",
		Data:      map[string]any{"repair_ref": repairRef, "approver": approver},
	})
	return err
}

func (t *Triggers) RepairDenied(ctx context.Context, technician uuid.UUID, repairRef, reason string) error {
	_, err := t.svc.CreateFromTemplate(ctx, TemplateRequest{
		Recipient: model.Recipient{Kind: model.RecipientTechnician, ID: technician},
		Template:  "repair_denied",
		Data:      map[string]any{"repair_ref": repairRef, "reason": reason},
	})
	return err
}

func (t *Triggers) RepairStatusChanged(ctx context.Context, r model.Recipient, repairRef, status string) error {
	_, err := t.svc.CreateFromTemplate(ctx, TemplateRequest{
		Recipient: r,
		Template:  "repair_status_changed",
		Data:      map[string]any{"repair_ref": repairRef, "status": status},
	})
	return err
}

func (t *Triggers) TechnicianAssigned(ctx context.Context, technician uuid.UUID, repairRef, scheduledAt string) error {
	_, err := t.svc.CreateFromTemplate(ctx, TemplateRequest{
		Recipient: model.Recipient{Kind: model.RecipientTechnician, ID: technician},
		Template:  "technician_assigned",
		Data:      map[string]any{"repair_ref": repairRef, "scheduled_at": scheduledAt},
	})
	return err
}

func (t *Triggers) BatchCompleted(ctx context.Context, r model.Recipient, operation string, succeeded, failed int) error {
	_, err := t.svc.CreateFromTemplate(ctx, TemplateRequest{
		Recipient: r,
		Template:  "batch_completed",
		Data:      map[string]any{"operation": operation, "succeeded": succeeded, "failed": failed},
	})
	return err
}

func (t *Triggers) RewardRedeemed(ctx context.Context, customer uuid.UUID, rewardName string, points int) error {
	_, err := t.svc.CreateFromTemplate(ctx, TemplateRequest{
		Recipient: model.Recipient{Kind: model.RecipientCustomer, ID: customer},
		Template:  "reward_redeemed",
		Data:      map[string]any{"reward_name": rewardName, "points": points},
	})
	return err
}
