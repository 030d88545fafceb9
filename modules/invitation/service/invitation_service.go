package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"strings"
	"time"

	"setlist-api/core/cache"
	"setlist-api/core/constants"
	"setlist-api/core/database"
	"setlist-api/core/errors"
	"setlist-api/core/logger"
	"setlist-api/core/mailer"
	"setlist-api/core/metrics"
	"setlist-api/core/utils"
	"setlist-api/modules/invitation/dto"
	"setlist-api/modules/invitation/entity"
	"setlist-api/modules/invitation/mapper"
	"setlist-api/modules/invitation/repository"
	notifentity "setlist-api/modules/notification/entity"
	notifservice "setlist-api/modules/notification/service"
	projectentity "setlist-api/modules/project/entity"
	"setlist-api/modules/project/guard"
	userentity "setlist-api/modules/user/entity"

	"github.com/google/uuid"
)

const maxTokenAttempts = 3

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID uuid.UUID
}

type ProjectReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*projectentity.Project, error)
	IsMember(ctx context.Context, projectID uuid.UUID, userID uuid.UUID) (bool, error)
	IsMemberByEmail(ctx context.Context, projectID uuid.UUID, email string) (bool, error)
	SharesProject(ctx context.Context, a uuid.UUID, b uuid.UUID) (bool, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*userentity.User, error)
	GetByEmail(ctx context.Context, email string) (*userentity.User, error)
	Count(ctx context.Context) (int, error)
}

type Settings struct {
	BaseURL         string
	MaxUsers        int
	UserCapMargin   int
	CodeTTL         time.Duration
	CodeCooldown    time.Duration
	CodeMaxAttempts int
}

type InvitationServiceInterface interface {
	SendInvitation(ctx context.Context, actor Actor, recipientID uuid.UUID, projectID uuid.UUID) (*dto.MessageResponse, *errors.AppError)
	RequestCollaboration(ctx context.Context, actor Actor, projectID uuid.UUID, targetID uuid.UUID) (*dto.MessageResponse, *errors.AppError)
	AcceptInvitation(ctx context.Context, actor Actor, token string) (*dto.MessageResponse, *errors.AppError)
	DeclineInvitation(ctx context.Context, actor Actor, token string) (*dto.MessageResponse, *errors.AppError)
	CancelInvitation(ctx context.Context, actor Actor, token string) (*dto.MessageResponse, *errors.AppError)
	InviteByEmail(ctx context.Context, actor Actor, email string, projectID uuid.UUID) (*dto.MessageResponse, *errors.AppError)
	JoinWithCode(ctx context.Context, actor Actor, code string) (*dto.MessageResponse, *errors.AppError)
	ListPending(ctx context.Context, actor Actor) (*dto.PendingInvitationsResponse, *errors.AppError)
	ListProjectInvitations(ctx context.Context, actor Actor, projectID uuid.UUID) ([]dto.InvitationResponse, *errors.AppError)
}

type InvitationService struct {
	repo     repository.InvitationRepositoryInterface
	projects ProjectReader
	users    UserReader
	guard    *guard.Guard
	mail     mailer.Gateway
	notifier notifservice.Emitter
	locker   cache.Locker
	settings Settings

	now      func() time.Time
	newToken func() (string, error)
	newCode  func() (string, error)
}

func NewInvitationService(
	repo repository.InvitationRepositoryInterface,
	projects ProjectReader,
	users UserReader,
	g *guard.Guard,
	mail mailer.Gateway,
	notifier notifservice.Emitter,
	locker cache.Locker,
	settings Settings,
) *InvitationService {
	return &InvitationService{
		repo:     repo,
		projects: projects,
		users:    users,
		guard:    g,
		mail:     mail,
		notifier: notifier,
		locker:   locker,
		settings: settings,
		now:      time.Now,
		newToken: utils.GenerateInvitationToken,
		newCode:  utils.GenerateJoinCode,
	}
}

func (s *InvitationService) SendInvitation(ctx context.Context, actor Actor, recipientID uuid.UUID, projectID uuid.UUID) (*dto.MessageResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if recipientID == uuid.Nil || projectID == uuid.Nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "recipientId and projectId are required", nil)
	}

	project, appErr := s.loadProject(ctx, projectID)
	if appErr != nil {
		return nil, appErr
	}
	recipient, appErr := s.loadUser(ctx, recipientID, "Recipient not found")
	if appErr != nil {
		return nil, appErr
	}
	sender, appErr := s.loadUser(ctx, actor.ID, "User not found")
	if appErr != nil {
		return nil, appErr
	}
	if appErr := s.guard.Require(ctx, project, actor.ID); appErr != nil {
		return nil, appErr
	}

	var invitation *entity.Invitation
	appErr = s.withProjectLock(ctx, projectID, func() *errors.AppError {
		isMember, err := s.projects.IsMember(ctx, projectID, recipient.ID)
		if err != nil {
			return errors.NewAppError(errors.ErrGetFailed, "check membership failed", err)
		}
		if isMember {
			return errors.NewAppError(errors.ErrConflict, "User is already a member of this project", nil)
		}

		if !recipient.IsPublic {
			shares, err := s.projects.SharesProject(ctx, actor.ID, recipient.ID)
			if err != nil {
				return errors.NewAppError(errors.ErrGetFailed, "check reachability failed", err)
			}
			if !shares {
				return errors.NewAppError(errors.ErrForbidden, "You cannot invite this user", nil)
			}
		}

		existing, err := s.repo.ListForRecipientInProject(ctx, projectID, recipient.ID)
		if err != nil {
			return errors.NewAppError(errors.ErrGetFailed, "get invitations failed", err)
		}
		for i := range existing {
			if existing[i].IsPending() {
				return errors.NewAppError(errors.ErrConflict, "An invitation is already pending for this user", nil)
			}
		}

		rid := recipient.ID
		invitation = &entity.Invitation{
			Type:        entity.TypeInvitation,
			Status:      entity.StatusPending,
			SenderID:    actor.ID,
			RecipientID: &rid,
			Username:    &recipient.Username,
			ProjectID:   projectID,
		}
		return s.create(ctx, invitation, s.newToken)
	})
	if appErr != nil {
		return nil, appErr
	}
	s.record(invitation, "created")

	err := s.mail.SendKind(ctx, recipient.Email, mailer.KindProjectInvitation, mailer.Data{
		RecipientName: recipient.DisplayName(),
		ActorName:     sender.DisplayName(),
		ProjectName:   project.Name,
		ActionURL:     s.invitationURL(invitation.Token),
	})
	if err != nil {
		return nil, s.deliveryFailed("SendInvitation", "Invitation email could not be sent, please try again later", err)
	}

	err = s.notifier.CreateSingleNotification(ctx, recipient.ID,
		fmt.Sprintf("%s invited you to join %s", sender.DisplayName(), project.Name),
		notifentity.TypeInvitation, s.invitationPath(invitation.Token), &project.ID,
		map[string]any{"invitation_id": invitation.ID.String()},
	)
	if err != nil {
		return nil, s.notifyFailed("SendInvitation", err)
	}

	return &dto.MessageResponse{
		Message:    "Invitation sent",
		Invitation: mapper.ToInvitationResponse(invitation, actor.ID),
	}, nil
}

func (s *InvitationService) RequestCollaboration(ctx context.Context, actor Actor, projectID uuid.UUID, targetID uuid.UUID) (*dto.MessageResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if projectID == uuid.Nil || targetID == uuid.Nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "projectId and targetId are required", nil)
	}

	project, appErr := s.loadProject(ctx, projectID)
	if appErr != nil {
		return nil, appErr
	}
	target, appErr := s.loadUser(ctx, targetID, "Target user not found")
	if appErr != nil {
		return nil, appErr
	}
	requester, appErr := s.loadUser(ctx, actor.ID, "User not found")
	if appErr != nil {
		return nil, appErr
	}
	if !project.IsPublic {
		return nil, errors.NewAppError(errors.ErrForbidden, "This project does not accept collaboration requests", nil)
	}

	var invitation *entity.Invitation
	appErr = s.withProjectLock(ctx, projectID, func() *errors.AppError {
		if s.guard.VerifyAccess(ctx, project, actor.ID) {
			return errors.NewAppError(errors.ErrInvalidInput, "You are already a member of this project", nil)
		}
		if !s.guard.VerifyAccess(ctx, project, target.ID) {
			return errors.NewAppError(errors.ErrInvalidInput, "The selected user is not a member of this project", nil)
		}

		existing, err := s.repo.ListForRecipientInProject(ctx, projectID, actor.ID)
		if err != nil {
			return errors.NewAppError(errors.ErrGetFailed, "get invitations failed", err)
		}
		if appErr := requestBlocked(existing); appErr != nil {
			return appErr
		}

		tid := target.ID
		invitation = &entity.Invitation{
			Type:        entity.TypeRequest,
			Status:      entity.StatusPending,
			SenderID:    actor.ID,
			RecipientID: &tid,
			Username:    &target.Username,
			ProjectID:   projectID,
		}
		return s.create(ctx, invitation, s.newToken)
	})
	if appErr != nil {
		return nil, appErr
	}
	s.record(invitation, "created")

	err := s.mail.SendKind(ctx, target.Email, mailer.KindCollaborationRequest, mailer.Data{
		RecipientName: target.DisplayName(),
		ActorName:     requester.DisplayName(),
		ProjectName:   project.Name,
		ActionURL:     s.invitationURL(invitation.Token),
	})
	if err != nil {
		return nil, s.deliveryFailed("RequestCollaboration", "Collaboration request email could not be sent, please try again later", err)
	}

	err = s.notifier.CreateSingleNotification(ctx, target.ID,
		fmt.Sprintf("%s would like to join %s", requester.DisplayName(), project.Name),
		notifentity.TypeCollaborationRequest, s.invitationPath(invitation.Token), &project.ID,
		map[string]any{"invitation_id": invitation.ID.String()},
	)
	if err != nil {
		return nil, s.notifyFailed("RequestCollaboration", err)
	}

	return &dto.MessageResponse{
		Message:    "Collaboration request sent",
		Invitation: mapper.ToInvitationResponse(invitation, actor.ID),
	}, nil
}

// requestBlocked checks earlier invitations addressed to the requester.
// A pending one wins over a revoked one, which wins over a declined one.
func requestBlocked(existing []entity.Invitation) *errors.AppError {
	seen := map[entity.Status]bool{}
	for i := range existing {
		seen[existing[i].Status] = true
	}
	switch {
	case seen[entity.StatusPending]:
		return errors.NewAppError(errors.ErrInvalidInput, "A request is already pending for this project", nil)
	case seen[entity.StatusRevoked]:
		return errors.NewAppError(errors.ErrForbidden, "Your access to this project has been revoked", nil)
	case seen[entity.StatusDeclined]:
		return errors.NewAppError(errors.ErrForbidden, "Your request was previously declined", nil)
	}
	return nil
}

func (s *InvitationService) AcceptInvitation(ctx context.Context, actor Actor, token string) (*dto.MessageResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	invitation, appErr := s.loadInvitation(ctx, token)
	if appErr != nil {
		return nil, appErr
	}
	if !invitation.Status.CanTransitionTo(entity.StatusAccepted) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "This invitation is no longer pending", nil)
	}
	if invitation.Type == entity.TypeCodeInvitation {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Code invitations must be redeemed with their code", nil)
	}
	if !invitation.IsRecipient(actor.ID) {
		return nil, errors.NewAppError(errors.ErrForbidden, "You are not the recipient of this invitation", nil)
	}

	project, appErr := s.loadProject(ctx, invitation.ProjectID)
	if appErr != nil {
		return nil, appErr
	}
	sender, appErr := s.loadUser(ctx, invitation.SenderID, "Sender not found")
	if appErr != nil {
		return nil, appErr
	}
	accepter, appErr := s.loadUser(ctx, actor.ID, "User not found")
	if appErr != nil {
		return nil, appErr
	}

	joiner := invitation.Joiner()
	if err := s.repo.Accept(ctx, invitation, joiner); err != nil {
		return nil, writeFailed("accept invitation failed", err)
	}
	s.record(invitation, "accepted")

	isRequest := invitation.Type == entity.TypeRequest
	err := s.mail.SendKind(ctx, sender.Email, mailer.KindInvitationAccepted, mailer.Data{
		RecipientName: sender.DisplayName(),
		ActorName:     accepter.DisplayName(),
		ProjectName:   project.Name,
		ActionURL:     s.projectURL(project.ID),
		IsRequest:     isRequest,
	})
	if err != nil {
		return nil, s.deliveryFailed("AcceptInvitation", "Acceptance email could not be sent, please try again later", err)
	}

	joinerName := accepter.DisplayName()
	if isRequest {
		joinerName = sender.DisplayName()
	}
	err = s.notifier.NotifyProjectMembers(ctx,
		fmt.Sprintf("%s joined %s", joinerName, project.Name),
		notifentity.TypeMemberJoined, s.projectPath(project.ID), project.ID,
		map[string]any{"invitation_id": invitation.ID.String(), "user_id": joiner.String()},
		actor.ID,
	)
	if err != nil {
		return nil, s.notifyFailed("AcceptInvitation", err)
	}

	return &dto.MessageResponse{
		Message:    "Invitation accepted",
		Invitation: mapper.ToInvitationResponse(invitation, actor.ID),
	}, nil
}

func (s *InvitationService) DeclineInvitation(ctx context.Context, actor Actor, token string) (*dto.MessageResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	invitation, appErr := s.loadInvitation(ctx, token)
	if appErr != nil {
		return nil, appErr
	}
	if !invitation.Status.CanTransitionTo(entity.StatusDeclined) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "This invitation is no longer pending", nil)
	}
	if !invitation.IsRecipient(actor.ID) {
		return nil, errors.NewAppError(errors.ErrForbidden, "You are not the recipient of this invitation", nil)
	}

	project, appErr := s.loadProject(ctx, invitation.ProjectID)
	if appErr != nil {
		return nil, appErr
	}
	sender, appErr := s.loadUser(ctx, invitation.SenderID, "Sender not found")
	if appErr != nil {
		return nil, appErr
	}
	decliner, appErr := s.loadUser(ctx, actor.ID, "User not found")
	if appErr != nil {
		return nil, appErr
	}

	if err := s.repo.Decline(ctx, invitation); err != nil {
		return nil, writeFailed("decline invitation failed", err)
	}
	s.record(invitation, "declined")

	isRequest := invitation.Type == entity.TypeRequest
	err := s.mail.SendKind(ctx, sender.Email, mailer.KindInvitationDeclined, mailer.Data{
		RecipientName: sender.DisplayName(),
		ActorName:     decliner.DisplayName(),
		ProjectName:   project.Name,
		IsRequest:     isRequest,
	})
	if err != nil {
		return nil, s.deliveryFailed("DeclineInvitation", "Decline email could not be sent, please try again later", err)
	}

	content := fmt.Sprintf("%s declined your invitation to %s", decliner.DisplayName(), project.Name)
	if isRequest {
		content = fmt.Sprintf("%s declined your request to join %s", decliner.DisplayName(), project.Name)
	}
	err = s.notifier.CreateSingleNotification(ctx, sender.ID, content,
		notifentity.TypeInvitationDeclined, s.projectPath(project.ID), &project.ID,
		map[string]any{"invitation_id": invitation.ID.String()},
	)
	if err != nil {
		return nil, s.notifyFailed("DeclineInvitation", err)
	}

	return &dto.MessageResponse{
		Message:    "Invitation declined",
		Invitation: mapper.ToInvitationResponse(invitation, actor.ID),
	}, nil
}

// CancelInvitation deletes a pending invitation. Only its sender may do so.
func (s *InvitationService) CancelInvitation(ctx context.Context, actor Actor, token string) (*dto.MessageResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	invitation, appErr := s.loadInvitation(ctx, token)
	if appErr != nil {
		return nil, appErr
	}
	if invitation.SenderID != actor.ID {
		return nil, errors.NewAppError(errors.ErrForbidden, "Only the sender can cancel this invitation", nil)
	}
	if !invitation.IsPending() {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "This invitation is no longer pending", nil)
	}

	project, appErr := s.loadProject(ctx, invitation.ProjectID)
	if appErr != nil {
		return nil, appErr
	}
	sender, appErr := s.loadUser(ctx, actor.ID, "User not found")
	if appErr != nil {
		return nil, appErr
	}

	to, name, appErr := s.counterparty(ctx, invitation)
	if appErr != nil {
		return nil, appErr
	}

	if err := s.repo.Delete(ctx, invitation.ID); err != nil {
		return nil, errors.NewAppError(errors.ErrDeleteFailed, "cancel invitation failed", err)
	}
	s.record(invitation, "cancelled")

	if to != "" {
		err := s.mail.SendKind(ctx, to, mailer.KindInvitationCancelled, mailer.Data{
			RecipientName: name,
			ActorName:     sender.DisplayName(),
			ProjectName:   project.Name,
		})
		if err != nil {
			return nil, s.deliveryFailed("CancelInvitation", "Cancellation email could not be sent, please try again later", err)
		}
	}

	return &dto.MessageResponse{Message: "Invitation cancelled"}, nil
}

// counterparty resolves where a cancellation notice goes: the linked
// recipient when there is one, otherwise the invited address.
func (s *InvitationService) counterparty(ctx context.Context, invitation *entity.Invitation) (string, string, *errors.AppError) {
	if invitation.RecipientID != nil {
		recipient, err := s.users.GetByID(ctx, *invitation.RecipientID)
		if err != nil {
			return "", "", errors.NewAppError(errors.ErrGetFailed, "get recipient failed", err)
		}
		if recipient != nil {
			return recipient.Email, recipient.DisplayName(), nil
		}
	}
	if invitation.Email != nil {
		return *invitation.Email, *invitation.Email, nil
	}
	return "", "", nil
}

func (s *InvitationService) InviteByEmail(ctx context.Context, actor Actor, email string, projectID uuid.UUID) (*dto.MessageResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "A valid email address is required", nil)
	}
	if projectID == uuid.Nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "projectId is required", nil)
	}

	project, appErr := s.loadProject(ctx, projectID)
	if appErr != nil {
		return nil, appErr
	}
	sender, appErr := s.loadUser(ctx, actor.ID, "User not found")
	if appErr != nil {
		return nil, appErr
	}
	if appErr := s.guard.Require(ctx, project, actor.ID); appErr != nil {
		return nil, appErr
	}

	if s.settings.MaxUsers > 0 {
		count, err := s.users.Count(ctx)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrGetFailed, "count users failed", err)
		}
		if count >= s.settings.MaxUsers-s.settings.UserCapMargin {
			return nil, errors.NewAppError(errors.ErrForbidden, "The platform has reached its user limit, no new invitations can be sent", nil)
		}
	}

	now := s.now()
	var invitation *entity.Invitation
	appErr = s.withProjectLock(ctx, projectID, func() *errors.AppError {
		isMember, err := s.projects.IsMemberByEmail(ctx, projectID, email)
		if err != nil {
			return errors.NewAppError(errors.ErrGetFailed, "check membership failed", err)
		}
		if isMember {
			return errors.NewAppError(errors.ErrConflict, "This email already belongs to a member of the project", nil)
		}

		latest, err := s.repo.GetLatestCodeInvitation(ctx, projectID, email)
		if err != nil {
			return errors.NewAppError(errors.ErrGetFailed, "get invitations failed", err)
		}
		attempts, appErr := s.nextAttempt(latest, now)
		if appErr != nil {
			return appErr
		}

		invitation = &entity.Invitation{
			Type:      entity.TypeCodeInvitation,
			Status:    entity.StatusPending,
			SenderID:  actor.ID,
			Email:     &email,
			ProjectID: projectID,
			Code: &entity.CodeDetails{
				ExpiresAt: now.Add(s.settings.CodeTTL),
				Attempts:  attempts,
			},
		}

		existing, err := s.users.GetByEmail(ctx, email)
		if err != nil {
			return errors.NewAppError(errors.ErrGetFailed, "get user failed", err)
		}
		if existing != nil {
			rid := existing.ID
			invitation.RecipientID = &rid
			invitation.Username = &existing.Username
		}
		return s.create(ctx, invitation, s.newCode)
	})
	if appErr != nil {
		return nil, appErr
	}
	s.record(invitation, "created")

	err := s.mail.SendKind(ctx, email, mailer.KindCodeInvitation, mailer.Data{
		ActorName:   sender.DisplayName(),
		ProjectName: project.Name,
		Code:        invitation.Token,
		ActionURL:   strings.TrimRight(s.settings.BaseURL, "/") + "/join",
		ExpiresAt:   invitation.Code.ExpiresAt,
	})
	if err != nil {
		return nil, s.deliveryFailed("InviteByEmail", "Invitation email could not be sent, please try again later", err)
	}

	if invitation.RecipientID != nil {
		err = s.notifier.CreateSingleNotification(ctx, *invitation.RecipientID,
			fmt.Sprintf("%s invited you to join %s, check your email for the code", sender.DisplayName(), project.Name),
			notifentity.TypeInvitation, "/join", &project.ID,
			map[string]any{"invitation_id": invitation.ID.String()},
		)
		if err != nil {
			return nil, s.notifyFailed("InviteByEmail", err)
		}
	}

	return &dto.MessageResponse{
		Message:    "Invitation sent",
		Invitation: mapper.ToInvitationResponse(invitation, actor.ID),
	}, nil
}

// nextAttempt applies the resend policy to the previous code invitation
// for the same address and returns the attempt number of the new one.
func (s *InvitationService) nextAttempt(latest *entity.Invitation, now time.Time) (int, *errors.AppError) {
	if latest == nil || latest.Code == nil {
		return 1, nil
	}

	if !latest.IsExpired(now) {
		if latest.IsPending() {
			return 0, errors.NewAppError(errors.ErrConflict, "An invitation is already pending for this email", nil)
		}
		return latest.Code.Attempts + 1, nil
	}

	if latest.Code.Attempts >= s.settings.CodeMaxAttempts {
		return 0, errors.NewAppError(errors.ErrForbidden, "This email has reached the maximum attempts for this project", nil)
	}

	elapsed := now.Sub(latest.Code.ExpiresAt)
	if elapsed < s.settings.CodeCooldown {
		wait := int(math.Ceil((s.settings.CodeCooldown - elapsed).Seconds() / 60))
		return 0, errors.NewAppError(errors.ErrTooManyRequests,
			fmt.Sprintf("Please wait %d minutes before sending a new invitation to this email", wait), nil)
	}

	return latest.Code.Attempts + 1, nil
}

func (s *InvitationService) JoinWithCode(ctx context.Context, actor Actor, code string) (*dto.MessageResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "code is required", nil)
	}

	invitation, appErr := s.loadInvitation(ctx, code)
	if appErr != nil {
		return nil, appErr
	}
	if invitation.Type != entity.TypeCodeInvitation {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "This code is not a valid invitation code", nil)
	}
	if !invitation.IsPending() {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "This invitation is no longer pending", nil)
	}
	if invitation.IsExpired(s.now()) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "This invitation has expired", nil)
	}

	joiner, appErr := s.loadUser(ctx, actor.ID, "User not found")
	if appErr != nil {
		return nil, appErr
	}
	if invitation.Email == nil || *invitation.Email != joiner.Email {
		return nil, errors.NewAppError(errors.ErrForbidden, "This invitation was sent to a different email address", nil)
	}

	project, appErr := s.loadProject(ctx, invitation.ProjectID)
	if appErr != nil {
		return nil, appErr
	}
	sender, appErr := s.loadUser(ctx, invitation.SenderID, "Sender not found")
	if appErr != nil {
		return nil, appErr
	}

	rid := joiner.ID
	invitation.RecipientID = &rid
	if err := s.repo.Accept(ctx, invitation, joiner.ID); err != nil {
		return nil, writeFailed("join project failed", err)
	}
	s.record(invitation, "accepted")

	err := s.mail.SendKind(ctx, sender.Email, mailer.KindInvitationAccepted, mailer.Data{
		RecipientName: sender.DisplayName(),
		ActorName:     joiner.DisplayName(),
		ProjectName:   project.Name,
		ActionURL:     s.projectURL(project.ID),
	})
	if err != nil {
		return nil, s.deliveryFailed("JoinWithCode", "Acceptance email could not be sent, please try again later", err)
	}

	err = s.notifier.NotifyProjectMembers(ctx,
		fmt.Sprintf("%s joined %s", joiner.DisplayName(), project.Name),
		notifentity.TypeMemberJoined, s.projectPath(project.ID), project.ID,
		map[string]any{"invitation_id": invitation.ID.String(), "user_id": joiner.ID.String()},
		actor.ID,
	)
	if err != nil {
		return nil, s.notifyFailed("JoinWithCode", err)
	}

	return &dto.MessageResponse{
		Message:    "You joined " + project.Name,
		Invitation: mapper.ToInvitationResponse(invitation, actor.ID),
	}, nil
}

func (s *InvitationService) ListPending(ctx context.Context, actor Actor) (*dto.PendingInvitationsResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	invitations, err := s.repo.ListPendingForRecipient(ctx, actor.ID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get invitations failed", err)
	}

	// code invitations are redeemed by code, never from this list
	visible := invitations[:0]
	for _, inv := range invitations {
		if inv.Type != entity.TypeCodeInvitation {
			visible = append(visible, inv)
		}
	}

	items := mapper.ToInvitationResponses(visible, actor.ID)
	return &dto.PendingInvitationsResponse{Invitations: items, Total: len(items)}, nil
}

func (s *InvitationService) ListProjectInvitations(ctx context.Context, actor Actor, projectID uuid.UUID) ([]dto.InvitationResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	project, appErr := s.loadProject(ctx, projectID)
	if appErr != nil {
		return nil, appErr
	}
	if appErr := s.guard.Require(ctx, project, actor.ID); appErr != nil {
		return nil, appErr
	}

	invitations, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get invitations failed", err)
	}
	return mapper.ToInvitationResponses(invitations, actor.ID), nil
}

// create assigns a fresh token and inserts the invitation, retrying when the
// token collides with an existing one.
func (s *InvitationService) create(ctx context.Context, invitation *entity.Invitation, generate func() (string, error)) *errors.AppError {
	var err error
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		invitation.Token, err = generate()
		if err != nil {
			return errors.NewAppError(errors.ErrCreateFailed, "generate token failed", err)
		}

		err = s.repo.Create(ctx, invitation)
		if err == nil {
			return nil
		}
		if !database.IsUniqueViolation(err) {
			break
		}
		logger.Warn("InvitationService:Create:TokenCollision", "attempt", attempt+1)
	}
	return errors.NewAppError(errors.ErrCreateFailed, "create invitation failed", err)
}

// withProjectLock runs fn while holding the invitation lock for projectID so
// the duplicate checks and the insert cannot interleave with another request.
func (s *InvitationService) withProjectLock(ctx context.Context, projectID uuid.UUID, fn func() *errors.AppError) *errors.AppError {
	unlock, err := s.locker.Lock(ctx, constants.RedisKeyInvitationLock+projectID.String(), constants.InvitationLockTTL)
	if err != nil {
		if stderrors.Is(err, cache.ErrLockTimeout) {
			return errors.NewAppError(errors.ErrConflict, "Another invitation for this project is being processed, please retry", err)
		}
		return errors.NewAppError(errors.ErrInternalServer, "acquire invitation lock failed", err)
	}
	defer unlock()

	return fn()
}

func (s *InvitationService) loadProject(ctx context.Context, id uuid.UUID) (*projectentity.Project, *errors.AppError) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get project failed", err)
	}
	if project == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Project not found", nil)
	}
	return project, nil
}

func (s *InvitationService) loadUser(ctx context.Context, id uuid.UUID, notFound string) (*userentity.User, *errors.AppError) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get user failed", err)
	}
	if user == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, notFound, nil)
	}
	return user, nil
}

func (s *InvitationService) loadInvitation(ctx context.Context, token string) (*entity.Invitation, *errors.AppError) {
	if token == "" {
		return nil, errors.NewAppError(errors.ErrNotFound, "Invitation not found", nil)
	}
	invitation, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get invitation failed", err)
	}
	if invitation == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Invitation not found", nil)
	}
	return invitation, nil
}

// writeFailed maps a lost race on the pending status to the same 400 the
// upfront check returns.
func writeFailed(message string, err error) *errors.AppError {
	if stderrors.Is(err, repository.ErrNotPending) {
		return errors.NewAppError(errors.ErrInvalidInput, "This invitation is no longer pending", err)
	}
	return errors.NewAppError(errors.ErrUpdateFailed, message, err)
}

func (s *InvitationService) deliveryFailed(op, message string, err error) *errors.AppError {
	logger.Error("InvitationService:"+op+":EmailFailed", err)
	return errors.NewAppError(errors.ErrDeliveryFailed, message, err)
}

func (s *InvitationService) notifyFailed(op string, err error) *errors.AppError {
	logger.Error("InvitationService:"+op+":NotifyFailed", err)
	return errors.NewAppError(errors.ErrDeliveryFailed, "Notification could not be sent, please try again later", err)
}

func (s *InvitationService) record(invitation *entity.Invitation, transition string) {
	metrics.InvitationTransitions.WithLabelValues(string(invitation.Type), transition).Inc()
	logger.Info("InvitationService:Transition",
		"invitation_id", invitation.ID,
		"type", invitation.Type,
		"transition", transition,
		"project_id", invitation.ProjectID,
	)
}

func (s *InvitationService) invitationPath(token string) string {
	return "/invitations/" + token
}

func (s *InvitationService) invitationURL(token string) string {
	return strings.TrimRight(s.settings.BaseURL, "/") + s.invitationPath(token)
}

func (s *InvitationService) projectPath(id uuid.UUID) string {
	return "/projects/" + id.String()
}

func (s *InvitationService) projectURL(id uuid.UUID) string {
	return strings.TrimRight(s.settings.BaseURL, "/") + s.projectPath(id)
}
