package router

import "github.com/tarunerror/openNova/pkg/actions"

// Status classifies the outcome of one processed command.
type Status string

const (
	// StatusSuccess means the command was handled and everything worked.
	StatusSuccess Status = "success"
	// StatusPartial means a plan ran but at least one step failed.
	StatusPartial Status = "partial"
	// StatusError means the command could not be handled.
	StatusError Status = "error"
)

// Response is the router's answer to one command.
type Response struct {
	Status  Status `json:"status"`
	Message string `json:"message"`

	// Plan is populated when a plan was synthesized, whether it ran or is
	// awaiting confirmation.
	Plan actions.Plan `json:"plan,omitempty"`

	// NeedsConfirmation is set when the plan is parked behind the gate.
	NeedsConfirmation      bool `json:"needs_confirmation,omitempty"`
	RemainingConfirmations int  `json:"remaining_confirmations,omitempty"`

	// Result carries the execution report when a plan ran.
	Result *actions.ExecutionReport `json:"result,omitempty"`
}

func errorResponse(message string) Response {
	return Response{Status: StatusError, Message: message}
}
