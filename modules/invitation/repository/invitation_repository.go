package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"setlist-api/core/database"
	"setlist-api/core/logger"
	"setlist-api/modules/invitation/entity"

	"github.com/google/uuid"
)

const invitationColumns = `id, type, status, token, sender_id, recipient_id, email, username, project_id,
	expires_at, attempts, created_at, updated_at`

// ErrNotPending is returned by Accept and Decline when the row left the
// pending state after it was read.
var ErrNotPending = errors.New("invitation is no longer pending")

type InvitationRepositoryInterface interface {
	Create(ctx context.Context, invitation *entity.Invitation) error
	GetByToken(ctx context.Context, token string) (*entity.Invitation, error)
	ListForRecipientInProject(ctx context.Context, projectID uuid.UUID, recipientID uuid.UUID) ([]entity.Invitation, error)
	GetLatestCodeInvitation(ctx context.Context, projectID uuid.UUID, email string) (*entity.Invitation, error)
	ListPendingForRecipient(ctx context.Context, recipientID uuid.UUID) ([]entity.Invitation, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]entity.Invitation, error)
	Accept(ctx context.Context, invitation *entity.Invitation, memberID uuid.UUID) error
	Decline(ctx context.Context, invitation *entity.Invitation) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// invitationRow is the flat table shape; code fields are NULL for the
// other invitation types.
type invitationRow struct {
	ID          uuid.UUID  `db:"id"`
	Type        string     `db:"type"`
	Status      string     `db:"status"`
	Token       string     `db:"token"`
	SenderID    uuid.UUID  `db:"sender_id"`
	RecipientID *uuid.UUID `db:"recipient_id"`
	Email       *string    `db:"email"`
	Username    *string    `db:"username"`
	ProjectID   uuid.UUID  `db:"project_id"`
	ExpiresAt   *time.Time `db:"expires_at"`
	Attempts    *int       `db:"attempts"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (r invitationRow) toEntity() entity.Invitation {
	inv := entity.Invitation{
		ID:          r.ID,
		Type:        entity.Type(r.Type),
		Status:      entity.Status(r.Status),
		Token:       r.Token,
		SenderID:    r.SenderID,
		RecipientID: r.RecipientID,
		Email:       r.Email,
		Username:    r.Username,
		ProjectID:   r.ProjectID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if inv.Type == entity.TypeCodeInvitation && r.ExpiresAt != nil {
		details := &entity.CodeDetails{ExpiresAt: *r.ExpiresAt}
		if r.Attempts != nil {
			details.Attempts = *r.Attempts
		}
		inv.Code = details
	}
	return inv
}

func toEntities(rows []invitationRow) []entity.Invitation {
	out := make([]entity.Invitation, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toEntity())
	}
	return out
}

type InvitationRepository struct {
	db database.IDatabase
}

func NewInvitationRepository(db database.IDatabase) *InvitationRepository {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) Create(ctx context.Context, invitation *entity.Invitation) error {
	if !invitation.Type.Valid() {
		return fmt.Errorf("unknown invitation type %q", invitation.Type)
	}

	var expiresAt *time.Time
	var attempts *int
	if invitation.Code != nil {
		expiresAt = &invitation.Code.ExpiresAt
		attempts = &invitation.Code.Attempts
	}

	query := `
		INSERT INTO invitations (type, status, token, sender_id, recipient_id, email, username, project_id, expires_at, attempts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	row := r.db.QueryRowContext(ctx, query,
		invitation.Type,
		invitation.Status,
		invitation.Token,
		invitation.SenderID,
		invitation.RecipientID,
		invitation.Email,
		invitation.Username,
		invitation.ProjectID,
		expiresAt,
		attempts,
	)
	if err := row.Scan(&invitation.ID, &invitation.CreatedAt, &invitation.UpdatedAt); err != nil {
		if !database.IsUniqueViolation(err) {
			logger.Error("InvitationRepository:Create:Error:", err)
		}
		return err
	}
	return nil
}

// GetByToken returns nil, nil when no invitation carries the token.
func (r *InvitationRepository) GetByToken(ctx context.Context, token string) (*entity.Invitation, error) {
	var row invitationRow
	err := r.db.GetContext(ctx, &row, `SELECT `+invitationColumns+` FROM invitations WHERE token = $1`, token)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, nil
		}
		logger.Error("InvitationRepository:GetByToken:Error:", err)
		return nil, err
	}
	inv := row.toEntity()
	return &inv, nil
}

func (r *InvitationRepository) ListForRecipientInProject(ctx context.Context, projectID uuid.UUID, recipientID uuid.UUID) ([]entity.Invitation, error) {
	query := `SELECT ` + invitationColumns + `
		FROM invitations
		WHERE project_id = $1 AND recipient_id = $2
		ORDER BY created_at DESC`

	var rows []invitationRow
	if err := r.db.SelectContext(ctx, &rows, query, projectID, recipientID); err != nil {
		logger.Error("InvitationRepository:ListForRecipientInProject:Error:", err)
		return nil, err
	}
	return toEntities(rows), nil
}

// GetLatestCodeInvitation returns the most recent code invitation sent to
// email for the project, or nil, nil.
func (r *InvitationRepository) GetLatestCodeInvitation(ctx context.Context, projectID uuid.UUID, email string) (*entity.Invitation, error) {
	query := `SELECT ` + invitationColumns + `
		FROM invitations
		WHERE project_id = $1 AND email = $2 AND type = $3
		ORDER BY created_at DESC
		LIMIT 1`

	var row invitationRow
	err := r.db.GetContext(ctx, &row, query, projectID, email, entity.TypeCodeInvitation)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, nil
		}
		logger.Error("InvitationRepository:GetLatestCodeInvitation:Error:", err)
		return nil, err
	}
	inv := row.toEntity()
	return &inv, nil
}

func (r *InvitationRepository) ListPendingForRecipient(ctx context.Context, recipientID uuid.UUID) ([]entity.Invitation, error) {
	query := `SELECT ` + invitationColumns + `
		FROM invitations
		WHERE recipient_id = $1 AND status = $2
		ORDER BY created_at DESC`

	var rows []invitationRow
	if err := r.db.SelectContext(ctx, &rows, query, recipientID, entity.StatusPending); err != nil {
		logger.Error("InvitationRepository:ListPendingForRecipient:Error:", err)
		return nil, err
	}
	return toEntities(rows), nil
}

func (r *InvitationRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]entity.Invitation, error) {
	query := `SELECT ` + invitationColumns + `
		FROM invitations
		WHERE project_id = $1
		ORDER BY created_at DESC`

	var rows []invitationRow
	if err := r.db.SelectContext(ctx, &rows, query, projectID); err != nil {
		logger.Error("InvitationRepository:ListByProject:Error:", err)
		return nil, err
	}
	return toEntities(rows), nil
}

// Accept marks the invitation accepted, records its recipient and adds
// memberID to the project in one transaction.
func (r *InvitationRepository) Accept(ctx context.Context, invitation *entity.Invitation, memberID uuid.UUID) error {
	tx, err := r.db.SQLx().BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowxContext(ctx, `
		UPDATE invitations SET status = $1, recipient_id = $2, updated_at = now()
		WHERE id = $3 AND status = $4
		RETURNING updated_at`,
		entity.StatusAccepted, invitation.RecipientID, invitation.ID, entity.StatusPending,
	).Scan(&invitation.UpdatedAt)
	if database.IsNotFound(err) {
		return ErrNotPending
	}
	if err != nil {
		logger.Error("InvitationRepository:Accept:Update:Error:", err)
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO project_members (project_id, user_id) VALUES ($1, $2)
		ON CONFLICT (project_id, user_id) DO NOTHING`,
		invitation.ProjectID, memberID,
	); err != nil {
		logger.Error("InvitationRepository:Accept:AddMember:Error:", err)
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	invitation.Status = entity.StatusAccepted
	return nil
}

func (r *InvitationRepository) Decline(ctx context.Context, invitation *entity.Invitation) error {
	res, err := r.db.SQLx().ExecContext(ctx,
		`UPDATE invitations SET status = $1, updated_at = now() WHERE id = $2 AND status = $3`,
		entity.StatusDeclined, invitation.ID, entity.StatusPending)
	if err != nil {
		logger.Error("InvitationRepository:Decline:Error:", err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotPending
	}
	invitation.Status = entity.StatusDeclined
	return nil
}

func (r *InvitationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.ExecContext(ctx, `DELETE FROM invitations WHERE id = $1`, id); err != nil {
		logger.Error("InvitationRepository:Delete:Error:", err)
		return err
	}
	return nil
}
