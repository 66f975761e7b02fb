package model

import (
	"time"
)

// FunnelStage is the sales-pipeline status of a customer. Any stage is
// reachable from any other stage by explicit agent action.
type FunnelStage string

const (
	StageNewLead        FunnelStage = "new_lead"
	StageInNegotiation  FunnelStage = "in_negotiation"
	StageWaitingPayment FunnelStage = "waiting_payment"
	StageSold           FunnelStage = "sold"
)

// Valid reports whether the stage is one of the known funnel stages.
func (s FunnelStage) Valid() bool {
	switch s {
	case StageNewLead, StageInNegotiation, StageWaitingPayment, StageSold:
		return true
	}
	return false
}

// Customer is a sales lead. One customer maps to exactly one conversation.
type Customer struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Phone             string      `json:"phone"`
	FunnelStage       FunnelStage `json:"funnel_stage"`
	InterestedProduct string      `json:"interested_product"`
	LastInteraction   time.Time   `json:"last_interaction"`
}

// UpdateStageRequest is the request to move a customer to another funnel stage.
type UpdateStageRequest struct {
	FunnelStage FunnelStage `json:"funnel_stage"`
}

// ListCustomersResponse is the response for listing customers.
type ListCustomersResponse struct {
	Customers []Customer `json:"customers"`
	Total     int        `json:"total"`
}
