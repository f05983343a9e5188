package types

import "time"

// Dashboard is the role-dependent snapshot served by GET /dashboard.
// Only the collections relevant to UserType are populated.
type Dashboard struct {
	UserType           Role              `json:"user_type"`
	Stats              DashboardStats    `json:"stats"`
	RecentMaterials    []Material        `json:"recent_materials,omitempty"`
	RecentRequests     []MaterialRequest `json:"recent_requests,omitempty"`
	AvailableMaterials []Material        `json:"available_materials,omitempty"`
	RecentUsers        []Identity        `json:"recent_users,omitempty"`
}

// DashboardStats holds the counters of every role. Counters that do not
// apply to the caller's role are zero.
type DashboardStats struct {
	TotalMaterials     int     `json:"total_materials,omitempty"`
	AvailableMaterials int     `json:"available_materials,omitempty"`
	TotalRequests      int     `json:"total_requests,omitempty"`
	PendingRequests    int     `json:"pending_requests,omitempty"`
	AcceptedRequests   int     `json:"accepted_requests,omitempty"`
	TotalTransactions  int     `json:"total_transactions,omitempty"`
	TotalRevenue       float64 `json:"total_revenue,omitempty"`
	TotalSpent         float64 `json:"total_spent,omitempty"`
	TotalUsers         int     `json:"total_users,omitempty"`
	TotalIndustries    int     `json:"total_industries,omitempty"`
	TotalArtisans      int     `json:"total_artisans,omitempty"`
	PlatformRevenue    float64 `json:"platform_revenue,omitempty"`
}

// MaterialStatus tracks a listing through the marketplace.
type MaterialStatus string

const (
	MaterialAvailable MaterialStatus = "available"
	MaterialReserved  MaterialStatus = "reserved"
	MaterialSold      MaterialStatus = "sold"
)

// Material is a waste material listed by an industry.
type Material struct {
	ID          string         `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	Category    string         `json:"category" db:"category"`
	Quantity    float64        `json:"quantity" db:"quantity"`
	Unit        string         `json:"unit" db:"unit"`
	Location    string         `json:"location" db:"location"`
	Price       float64        `json:"price" db:"price"`
	Description string         `json:"description" db:"description"`
	Status      MaterialStatus `json:"status" db:"status"`
	OwnerID     string         `json:"owner_id" db:"owner_id"`
	OwnerName   string         `json:"owner_name,omitempty"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
}

// RequestStatus tracks an artisan's request for a material.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestAccepted  RequestStatus = "accepted"
	RequestRejected  RequestStatus = "rejected"
	RequestCompleted RequestStatus = "completed"
)

// MaterialRequest is an artisan's request for part of a listing.
type MaterialRequest struct {
	ID            string        `json:"id" db:"id"`
	MaterialID    string        `json:"material_id" db:"material_id"`
	MaterialName  string        `json:"material_name,omitempty"`
	RequesterID   string        `json:"requester_id" db:"requester_id"`
	RequesterName string        `json:"requester_name,omitempty"`
	OwnerID       string        `json:"owner_id" db:"owner_id"`
	OwnerName     string        `json:"owner_name,omitempty"`
	Quantity      float64       `json:"quantity" db:"quantity"`
	Message       string        `json:"message" db:"message"`
	Status        RequestStatus `json:"status" db:"status"`
	TotalAmount   float64       `json:"total_amount"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}

// TransactionStatus is the payment state of a completed request.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

// Transaction records payment for a request.
type Transaction struct {
	ID            string            `json:"id" db:"id"`
	RequestID     string            `json:"request_id" db:"request_id"`
	Amount        float64           `json:"amount" db:"amount"`
	Status        TransactionStatus `json:"status" db:"status"`
	PaymentMethod string            `json:"payment_method" db:"payment_method"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
}
