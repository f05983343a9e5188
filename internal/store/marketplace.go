package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ecocycle/connect/types"
)

// MarketplaceRepository reads materials, requests and transactions for dashboards.
type MarketplaceRepository struct {
	db *sql.DB
}

func NewMarketplaceRepository(db *sql.DB) *MarketplaceRepository {
	return &MarketplaceRepository{db: db}
}

// where collects parameterized conditions in order.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func materialWhere(f MaterialFilter) *where {
	w := &where{}
	if f.OwnerID != "" {
		w.add("m.owner_id = $%d", f.OwnerID)
	}
	if f.Status != "" {
		w.add("m.status = $%d", string(f.Status))
	}
	if f.LocationContains != "" {
		w.add(`m.location ILIKE '%%' || $%d || '%%' ESCAPE '\'`, escapeLike(f.LocationContains))
	}
	return w
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func requestWhere(f RequestFilter) *where {
	w := &where{}
	if f.OwnerID != "" {
		w.add("r.owner_id = $%d", f.OwnerID)
	}
	if f.RequesterID != "" {
		w.add("r.requester_id = $%d", f.RequesterID)
	}
	if f.Status != "" {
		w.add("r.status = $%d", string(f.Status))
	}
	return w
}

func limitClause(w *where, limit int) string {
	if limit <= 0 {
		return ""
	}
	w.args = append(w.args, limit)
	return fmt.Sprintf(" LIMIT $%d", len(w.args))
}

func (r *MarketplaceRepository) ListMaterials(ctx context.Context, f MaterialFilter) ([]types.Material, error) {
	w := materialWhere(f)
	query := `
		SELECT m.id, m.name, m.category, m.quantity, m.unit, m.location, m.price,
			m.description, m.status, m.owner_id, COALESCE(u.company_name, u.name, ''), m.created_at
		FROM materials m
		LEFT JOIN users u ON u.id = m.owner_id` + w.String() + `
		ORDER BY m.created_at DESC` + limitClause(w, f.Limit)

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var materials []types.Material
	for rows.Next() {
		var m types.Material
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Category, &m.Quantity, &m.Unit, &m.Location, &m.Price,
			&m.Description, &m.Status, &m.OwnerID, &m.OwnerName, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

func (r *MarketplaceRepository) CountMaterials(ctx context.Context, f MaterialFilter) (int, error) {
	w := materialWhere(f)
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM materials m`+w.String(), w.args...).Scan(&count)
	return count, err
}

func (r *MarketplaceRepository) ListRequests(ctx context.Context, f RequestFilter) ([]types.MaterialRequest, error) {
	w := requestWhere(f)
	query := `
		SELECT r.id, r.material_id, COALESCE(m.name, ''), r.requester_id, COALESCE(ru.name, ''),
			r.owner_id, COALESCE(ou.company_name, ou.name, ''), r.quantity, r.message, r.status,
			r.quantity * COALESCE(m.price, 0), r.created_at
		FROM requests r
		LEFT JOIN materials m ON m.id = r.material_id
		LEFT JOIN users ru ON ru.id = r.requester_id
		LEFT JOIN users ou ON ou.id = r.owner_id` + w.String() + `
		ORDER BY r.created_at DESC` + limitClause(w, f.Limit)

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []types.MaterialRequest
	for rows.Next() {
		var req types.MaterialRequest
		if err := rows.Scan(
			&req.ID, &req.MaterialID, &req.MaterialName, &req.RequesterID, &req.RequesterName,
			&req.OwnerID, &req.OwnerName, &req.Quantity, &req.Message, &req.Status,
			&req.TotalAmount, &req.CreatedAt,
		); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (r *MarketplaceRepository) CountRequests(ctx context.Context, f RequestFilter) (int, error) {
	w := requestWhere(f)
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM requests r`+w.String(), w.args...).Scan(&count)
	return count, err
}

// CountTransactions counts transactions whose request matches f, in any payment state.
func (r *MarketplaceRepository) CountTransactions(ctx context.Context, f RequestFilter) (int, error) {
	w := requestWhere(f)
	query := `SELECT count(*) FROM transactions t JOIN requests r ON r.id = t.request_id` + w.String()
	var count int
	err := r.db.QueryRowContext(ctx, query, w.args...).Scan(&count)
	return count, err
}

// SumCompletedTransactions totals completed payments whose request matches f.
func (r *MarketplaceRepository) SumCompletedTransactions(ctx context.Context, f RequestFilter) (float64, error) {
	w := requestWhere(f)
	w.add("t.status = $%d", string(types.TransactionCompleted))
	query := `SELECT COALESCE(sum(t.amount), 0) FROM transactions t JOIN requests r ON r.id = t.request_id` + w.String()
	var total float64
	err := r.db.QueryRowContext(ctx, query, w.args...).Scan(&total)
	return total, err
}

func (r *MarketplaceRepository) AddMaterial(ctx context.Context, m types.Material) (types.Material, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	const query = `
		INSERT INTO materials (id, name, category, quantity, unit, location, price,
			description, status, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.Name, m.Category, m.Quantity, m.Unit, m.Location, m.Price,
		m.Description, m.Status, m.OwnerID, m.CreatedAt,
	)
	if err != nil {
		return types.Material{}, err
	}
	return m, nil
}

func (r *MarketplaceRepository) AddRequest(ctx context.Context, req types.MaterialRequest) (types.MaterialRequest, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	const query = `
		INSERT INTO requests (id, material_id, requester_id, owner_id, quantity, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.MaterialID, req.RequesterID, req.OwnerID, req.Quantity, req.Message, req.Status, req.CreatedAt,
	)
	if err != nil {
		return types.MaterialRequest{}, err
	}
	return req, nil
}

func (r *MarketplaceRepository) AddTransaction(ctx context.Context, t types.Transaction) (types.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	const query = `
		INSERT INTO transactions (id, request_id, amount, status, payment_method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, t.ID, t.RequestID, t.Amount, t.Status, t.PaymentMethod, t.CreatedAt)
	if err != nil {
		return types.Transaction{}, err
	}
	return t, nil
}
