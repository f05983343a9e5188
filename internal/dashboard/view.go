// Package dashboard turns a dashboard snapshot into what the caller's role
// should see.
package dashboard

import (
	"strconv"

	"github.com/ecocycle/connect/types"
)

const listLimit = 5

// Card is one headline counter.
type Card struct {
	Label string
	Value string
}

// MaterialLine is one row of the materials listing.
type MaterialLine struct {
	Name     string
	Category string
	Location string
	Price    string
	Quantity string
}

// RequestLine is one row of the requests listing. Counterparty is the
// requester for industries and the owner for everyone else.
type RequestLine struct {
	Material     string
	Counterparty string
	Status       types.RequestStatus
	Amount       string
}

// View is the role-conditioned dashboard.
type View struct {
	Role           types.Role
	Greeting       string
	Subtitle       string
	Cards          []Card
	MaterialsTitle string
	Materials      []MaterialLine
	Requests       []RequestLine
	QuickActions   []string
}

// Build assembles the view for identity. The identity's role decides what is
// shown; the snapshot's user_type is only used when the role is unknown.
func Build(identity types.Identity, snapshot types.Dashboard) View {
	role := identity.Role
	if !role.Valid() {
		role = snapshot.UserType
	}

	v := View{
		Role:         role,
		Greeting:     "Welcome back, " + identity.Name + "!",
		Subtitle:     Subtitle(role),
		Cards:        Cards(role, snapshot.Stats),
		QuickActions: QuickActions(role),
	}

	materials := snapshot.AvailableMaterials
	v.MaterialsTitle = "Available Materials"
	if role == types.RoleIndustry {
		materials = snapshot.RecentMaterials
		v.MaterialsTitle = "Recent Materials"
	}
	for _, m := range limit(materials) {
		v.Materials = append(v.Materials, MaterialLine{
			Name:     m.Name,
			Category: m.Category,
			Location: m.Location,
			Price:    formatAmount(m.Price),
			Quantity: formatAmount(m.Quantity) + " " + m.Unit,
		})
	}

	for _, r := range limit(snapshot.RecentRequests) {
		line := RequestLine{
			Material: r.MaterialName,
			Status:   r.Status,
			Amount:   formatAmount(r.TotalAmount),
		}
		if role == types.RoleIndustry {
			line.Counterparty = "From: " + r.RequesterName
		} else {
			line.Counterparty = "To: " + r.OwnerName
		}
		v.Requests = append(v.Requests, line)
	}

	return v
}

// Subtitle is the one-line description under the greeting.
func Subtitle(role types.Role) string {
	switch role {
	case types.RoleIndustry:
		return "Manage your materials and requests"
	case types.RoleArtisan:
		return "Discover materials and track your requests"
	case types.RoleAdmin:
		return "Monitor platform activity and users"
	default:
		return ""
	}
}

// Cards returns the headline counters for role, in display order.
func Cards(role types.Role, s types.DashboardStats) []Card {
	switch role {
	case types.RoleIndustry:
		return []Card{
			{"Total Materials", strconv.Itoa(s.TotalMaterials)},
			{"Available", strconv.Itoa(s.AvailableMaterials)},
			{"Requests", strconv.Itoa(s.TotalRequests)},
			{"Revenue", formatAmount(s.TotalRevenue)},
		}
	case types.RoleArtisan:
		return []Card{
			{"My Requests", strconv.Itoa(s.TotalRequests)},
			{"Accepted", strconv.Itoa(s.AcceptedRequests)},
			{"Available Materials", strconv.Itoa(s.AvailableMaterials)},
			{"Total Spent", formatAmount(s.TotalSpent)},
		}
	case types.RoleAdmin:
		return []Card{
			{"Users", strconv.Itoa(s.TotalUsers)},
			{"Industries", strconv.Itoa(s.TotalIndustries)},
			{"Artisans", strconv.Itoa(s.TotalArtisans)},
			{"Materials", strconv.Itoa(s.TotalMaterials)},
			{"Requests", strconv.Itoa(s.TotalRequests)},
			{"Transactions", strconv.Itoa(s.TotalTransactions)},
			{"Platform Revenue", formatAmount(s.PlatformRevenue)},
		}
	default:
		return nil
	}
}

// QuickActions lists the shortcuts offered to role.
func QuickActions(role types.Role) []string {
	switch role {
	case types.RoleIndustry:
		return []string{"Add New Material", "View All Requests", "Analytics Dashboard"}
	case types.RoleArtisan:
		return []string{"Browse Materials", "My Requests", "Update Profile"}
	default:
		return nil
	}
}

func limit[T any](items []T) []T {
	if len(items) > listLimit {
		return items[:listLimit]
	}
	return items
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
