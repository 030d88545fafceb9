package mailer

import (
	"fmt"
	"time"
)

type Kind string

const (
	KindTwoFactorCode        Kind = "two_factor_code"
	KindVerificationCode     Kind = "verification_code"
	KindPasswordReset        Kind = "password_reset"
	KindEventReminder        Kind = "event_reminder"
	KindProjectInvitation    Kind = "project_invitation"
	KindCollaborationRequest Kind = "collaboration_request"
	KindInvitationAccepted   Kind = "invitation_accepted"
	KindInvitationDeclined   Kind = "invitation_declined"
	KindInvitationCancelled  Kind = "invitation_cancelled"
	KindCodeInvitation       Kind = "code_invitation"
)

// Data carries every field any template may read. Each kind uses a subset.
type Data struct {
	RecipientName string
	ActorName     string
	ProjectName   string
	Code          string
	ActionURL     string
	EventTitle    string
	EventStart    time.Time
	EventLocation string
	ExpiresAt     time.Time
	// IsRequest switches the accepted/declined wording from an invitation to
	// a collaboration request.
	IsRequest bool
}

type definition struct {
	subject func(d Data) string
	body    string
}

const layout = `{{define "layout"}}<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
<h2>{{.Title}}</h2>
{{template "content" .}}
<p>The {{.FromName}} team</p>
</body>
</html>{{end}}`

var definitions = map[Kind]definition{
	KindTwoFactorCode: {
		subject: func(Data) string { return "Your login code" },
		body: `{{define "content"}}<p>Hello {{.RecipientName}},</p>
<p>Your login code is <strong>{{.Code}}</strong>.</p>
<p>It expires at {{fmtTime .ExpiresAt}}.</p>{{end}}`,
	},
	KindVerificationCode: {
		subject: func(Data) string { return "Verify your email address" },
		body: `{{define "content"}}<p>Hello {{.RecipientName}},</p>
<p>Your verification code is <strong>{{.Code}}</strong>.</p>{{end}}`,
	},
	KindPasswordReset: {
		subject: func(Data) string { return "Reset your password" },
		body: `{{define "content"}}<p>Hello {{.RecipientName}},</p>
<p>Follow this link to choose a new password:</p>
<p><a href="{{.ActionURL}}">{{.ActionURL}}</a></p>
<p>If you did not ask for this, ignore this email.</p>{{end}}`,
	},
	KindEventReminder: {
		subject: func(d Data) string { return fmt.Sprintf("Reminder: %s", d.EventTitle) },
		body: `{{define "content"}}<p>Hello {{.RecipientName}},</p>
<p><strong>{{.EventTitle}}</strong> ({{.ProjectName}}) starts soon.</p>
<ul>
<li>When: {{fmtTime .EventStart}}</li>
{{if .EventLocation}}<li>Where: {{.EventLocation}}</li>{{end}}
</ul>
<p><a href="{{.ActionURL}}">Open the event</a></p>{{end}}`,
	},
	KindProjectInvitation: {
		subject: func(d Data) string { return fmt.Sprintf("Invitation to join %s", d.ProjectName) },
		body: `{{define "content"}}<p>Hello {{.RecipientName}},</p>
<p>{{.ActorName}} invited you to collaborate on <strong>{{.ProjectName}}</strong>.</p>
<p><a href="{{.ActionURL}}">View the invitation</a></p>{{end}}`,
	},
	KindCollaborationRequest: {
		subject: func(d Data) string { return fmt.Sprintf("Collaboration request for %s", d.ProjectName) },
		body: `{{define "content"}}<p>Hello {{.RecipientName}},</p>
<p>{{.ActorName}} would like to join <strong>{{.ProjectName}}</strong>.</p>
<p><a href="{{.ActionURL}}">Review the request</a></p>{{end}}`,
	},
	KindInvitationAccepted: {
		subject: func(d Data) string {
			if d.IsRequest {
				return fmt.Sprintf("Your request to join %s was accepted", d.ProjectName)
			}
			return fmt.Sprintf("%s accepted your invitation", d.ActorName)
		},
		body: `{{define "content"}}<p>Hello {{.RecipientName}},</p>
{{if .IsRequest}}<p>{{.ActorName}} accepted your request. You are now a member of <strong>{{.ProjectName}}</strong>.</p>
{{else}}<p>{{.ActorName}} accepted your invitation and joined <strong>{{.ProjectName}}</strong>.</p>
{{end}}<p><a href="{{.ActionURL}}">Open the project</a></p>{{end}}`,
	},
	KindInvitationDeclined: {
		subject: func(d Data) string {
			if d.IsRequest {
				return fmt.Sprintf("Your request to join %s was declined", d.ProjectName)
			}
			return fmt.Sprintf("%s declined your invitation", d.ActorName)
		},
		body: `{{define "content"}}<p>Hello {{.RecipientName}},</p>
{{if .IsRequest}}<p>{{.ActorName}} declined your request to join <strong>{{.ProjectName}}</strong>.</p>
{{else}}<p>{{.ActorName}} declined your invitation to <strong>{{.ProjectName}}</strong>.</p>
{{end}}{{end}}`,
	},
	KindInvitationCancelled: {
		subject: func(d Data) string { return fmt.Sprintf("Invitation to %s cancelled", d.ProjectName) },
		body: `{{define "content"}}<p>Hello {{.RecipientName}},</p>
<p>{{.ActorName}} cancelled the pending invitation for <strong>{{.ProjectName}}</strong>.</p>{{end}}`,
	},
	KindCodeInvitation: {
		subject: func(d Data) string { return fmt.Sprintf("Your code to join %s", d.ProjectName) },
		body: `{{define "content"}}<p>Hello,</p>
<p>{{.ActorName}} invited you to collaborate on <strong>{{.ProjectName}}</strong>.</p>
<p>Your invitation code is <strong>{{.Code}}</strong>.</p>
<ul>
<li>Create an account or sign in with this email address.</li>
<li>Enter the code on the join page: <a href="{{.ActionURL}}">{{.ActionURL}}</a></li>
</ul>
<p>The code expires on {{fmtTime .ExpiresAt}}.</p>{{end}}`,
	},
}

func titleFor(kind Kind, d Data) string {
	switch kind {
	case KindEventReminder:
		return "Upcoming event"
	case KindTwoFactorCode, KindVerificationCode:
		return "Your code"
	case KindPasswordReset:
		return "Password reset"
	default:
		return d.ProjectName
	}
}
