package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ecocycle/connect/types"
)

type seedAccount struct {
	account  types.Account
	password string
}

func seedAccounts() []seedAccount {
	verified := func(role types.Role, email, name string) types.Identity {
		return types.Identity{Email: email, Role: role, Name: name, IsVerified: true}
	}
	industry := func(email, name, company, gst string) types.Identity {
		id := verified(types.RoleIndustry, email, name)
		id.CompanyName = company
		id.GSTNumber = gst
		return id
	}
	artisan := func(email, name, location string) types.Identity {
		id := verified(types.RoleArtisan, email, name)
		id.Location = location
		return id
	}

	return []seedAccount{
		{types.Account{Identity: verified(types.RoleAdmin, "admin@ecocycleconnect.com", "System Administrator")}, "admin123"},
		{types.Account{Identity: industry("contact@tatasteels.com", "Rajesh Kumar", "Tata Steel Limited", "27AAACT2727Q1ZZ")}, "industry123"},
		{types.Account{Identity: industry("waste@reliancetextiles.com", "Priya Sharma", "Reliance Textiles Pvt Ltd", "24AABCR1234M1Z5")}, "industry123"},
		{types.Account{Identity: artisan("ravi.craftsman@gmail.com", "Ravi Vishwakarma", "Mumbai, Maharashtra")}, "artisan123"},
		{types.Account{Identity: artisan("meera.weaver@gmail.com", "Meera Devi", "Jaipur, Rajasthan")}, "artisan123"},
	}
}

// Seed fills an empty store with demo accounts and marketplace activity.
// It does nothing when any account exists.
func Seed(ctx context.Context, users UserRepository, market MarketplaceRepository) error {
	existing, err := users.CountUsers(ctx, "")
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if existing > 0 {
		return nil
	}

	var created []types.Account
	for _, seed := range seedAccounts() {
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		account := seed.account
		account.PasswordHash = string(hash)
		account.IsActive = true
		account, err = users.Create(ctx, account)
		if err != nil {
			return fmt.Errorf("create %s: %w", account.Email, err)
		}
		created = append(created, account)
	}
	steel, textiles := created[1], created[2]
	ravi, meera := created[3], created[4]

	base := time.Now().UTC().Add(-72 * time.Hour)
	materials := []types.Material{
		{Name: "Steel Scrap - Grade A", Category: "Metals", Quantity: 500, Unit: "kg", Location: "Mumbai, Maharashtra",
			Price: 45, Description: "High-quality steel scrap suitable for recycling and crafting", OwnerID: steel.ID},
		{Name: "Cotton Fabric Waste", Category: "Textiles", Quantity: 200, Unit: "meters", Location: "Ahmedabad, Gujarat",
			Price: 25, Description: "Pure cotton fabric waste in various colors", OwnerID: textiles.ID},
		{Name: "Copper Wire Scraps", Category: "Metals", Quantity: 75, Unit: "kg", Location: "Chennai, Tamil Nadu",
			Price: 650, Description: "Pure copper wire scraps from electrical installations", OwnerID: steel.ID},
		{Name: "Glass Bottles", Category: "Glass", Quantity: 500, Unit: "pieces", Location: "Jaipur, Rajasthan",
			Price: 8, Description: "Various colored glass bottles for decorative crafts", OwnerID: textiles.ID},
	}
	for i := range materials {
		materials[i].Status = types.MaterialAvailable
		materials[i].CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if materials[i], err = market.AddMaterial(ctx, materials[i]); err != nil {
			return fmt.Errorf("create material: %w", err)
		}
	}

	requests := []types.MaterialRequest{
		{MaterialID: materials[0].ID, RequesterID: ravi.ID, OwnerID: steel.ID, Quantity: 50,
			Message: "Need steel scrap for decorative metal art pieces.", Status: types.RequestPending},
		{MaterialID: materials[1].ID, RequesterID: meera.ID, OwnerID: textiles.ID, Quantity: 25,
			Message: "Looking for cotton fabric waste for handicrafts.", Status: types.RequestAccepted},
		{MaterialID: materials[3].ID, RequesterID: meera.ID, OwnerID: textiles.ID, Quantity: 100,
			Message: "Glass bottles for decorative lamps.", Status: types.RequestCompleted},
	}
	for i := range requests {
		requests[i].CreatedAt = base.Add(time.Duration(24+i) * time.Hour)
		if requests[i], err = market.AddRequest(ctx, requests[i]); err != nil {
			return fmt.Errorf("create request: %w", err)
		}
	}

	_, err = market.AddTransaction(ctx, types.Transaction{
		RequestID:     requests[2].ID,
		Amount:        requests[2].Quantity * materials[3].Price,
		Status:        types.TransactionCompleted,
		PaymentMethod: "upi",
		CreatedAt:     base.Add(48 * time.Hour),
	})
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}
