package store

import "github.com/ecocycle/connect/types"

// MaterialFilter narrows material queries. Zero fields do not filter.
type MaterialFilter struct {
	OwnerID string
	Status  types.MaterialStatus
	// LocationContains matches case-insensitively anywhere in the location.
	LocationContains string
	Limit            int
}

// RequestFilter narrows request and transaction queries. Zero fields do not filter.
type RequestFilter struct {
	OwnerID     string
	RequesterID string
	Status      types.RequestStatus
	Limit       int
}
