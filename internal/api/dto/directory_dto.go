package dto

import (
	"time"

	"github.com/atendo-hq/atendo/internal/domain"
)

// AddressRequest carries an address by value; lookup rows are resolved or
// created server-side.
type AddressRequest struct {
	Name        string `json:"name"`
	Number      int    `json:"number"`
	Postcode    string `json:"postcode"`
	AddressType string `json:"address_type"`
	City        string `json:"city"`
	State       string `json:"state"`
	UF          string `json:"uf"`
}

// CreateCostumerRequest payload.
type CreateCostumerRequest struct {
	Name    string          `json:"name"`
	Address *AddressRequest `json:"address,omitempty"`
}

// CostumerResponse is one costumer.
type CostumerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AddressID *string   `json:"address_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCostumerResponse maps a domain costumer.
func NewCostumerResponse(costumer *domain.Costumer) CostumerResponse {
	return CostumerResponse{
		ID:        costumer.ID,
		Name:      costumer.Name,
		AddressID: costumer.AddressID,
		CreatedAt: costumer.CreatedAt,
	}
}

// CreateTeamRequest payload.
type CreateTeamRequest struct {
	Name string `json:"name"`
}

// TeamMemberRequest payload for join/leave endpoints.
type TeamMemberRequest struct {
	UserID string `json:"user_id"`
}

// NameRequest payload for name-keyed lookup-or-create endpoints.
type NameRequest struct {
	Name string `json:"name"`
}
