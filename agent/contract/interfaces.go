package contract

import (
	"context"

	statex "github.com/pharmesol/salesline/agent/state"
)

// DirectoryLookup resolves a caller phone number against the pharmacy
// directory. A miss is ErrNotFound; transport or decode trouble after
// retries is ErrLookup.
type DirectoryLookup interface {
	Lookup(ctx context.Context, phone string) (*statex.CustomerRecord, error)
}

// Completer produces the next agent reply from a completion request.
// Failures are reported as ErrCompletion so callers can fall back to
// canned replies.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// EmailSender delivers pricing/information emails.
type EmailSender interface {
	SendEmail(ctx context.Context, req EmailRequest) (ActionResult, error)
}

// CallbackScheduler books sales callbacks.
type CallbackScheduler interface {
	ScheduleCallback(ctx context.Context, req CallbackRequest) (ActionResult, error)
}

// LeadRecorder writes qualified leads to the CRM.
type LeadRecorder interface {
	RecordLead(ctx context.Context, req LeadRequest) (ActionResult, error)
}

// FollowUpCreator opens follow-up tasks for the sales team.
type FollowUpCreator interface {
	CreateFollowUp(ctx context.Context, req FollowUpRequest) (ActionResult, error)
}
