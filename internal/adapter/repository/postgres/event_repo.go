package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/gosplit/internal/domain"
	"github.com/iho/gosplit/internal/usecase"
)

// querier is the subset of pgx shared by pools and transactions.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// EventRepository implements event persistence. Members and expenses live in
// order-preserving child tables; expense participants travel as a JSONB
// document since they are only ever read back whole.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new event repository.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

type participantRecord struct {
	UserID         string          `json:"user_id"`
	ResponsibleFor decimal.Decimal `json:"responsible_for"`
	Paid           decimal.Decimal `json:"paid"`
}

func encodeParticipants(participants []domain.Participation) ([]byte, error) {
	records := make([]participantRecord, len(participants))
	for i, p := range participants {
		records[i] = participantRecord{
			UserID:         p.UserID,
			ResponsibleFor: p.ResponsibleFor,
			Paid:           p.Paid,
		}
	}
	return json.Marshal(records)
}

func decodeParticipants(raw []byte) ([]domain.Participation, error) {
	var records []participantRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decoding participants: %w", err)
	}

	participants := make([]domain.Participation, len(records))
	for i, r := range records {
		participants[i] = domain.Participation{
			UserID:         r.UserID,
			ResponsibleFor: r.ResponsibleFor,
			Paid:           r.Paid,
		}
	}
	return participants, nil
}

// Create inserts an event with its member list.
func (r *EventRepository) Create(ctx context.Context, event *domain.Event) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO events (id, name, base_currency, created_at)
		VALUES ($1, $2, $3, $4)
	`, event.ID, event.Name, event.BaseCurrency, event.CreatedAt)
	if err != nil {
		return err
	}

	for i, member := range event.Members {
		_, err = tx.Exec(ctx, `
			INSERT INTO event_members (event_id, user_id, email, position)
			VALUES ($1, $2, $3, $4)
		`, event.ID, member.UserID, member.Email, i)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetByID retrieves an event with its members and expenses.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return loadEvent(ctx, r.pool, id, false)
}

// GetByIDForUpdate retrieves an event inside tx, locking its row until the
// transaction ends. Concurrent writers to the same event queue up here.
func (r *EventRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Event, error) {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return nil, err
	}
	return loadEvent(ctx, pgxTx, id, true)
}

func loadEvent(ctx context.Context, q querier, id string, forUpdate bool) (*domain.Event, error) {
	query := `
		SELECT id, name, base_currency, created_at
		FROM events
		WHERE id = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var event domain.Event
	err := q.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.BaseCurrency,
		&event.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrEventNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if event.Members, err = loadMembers(ctx, q, id); err != nil {
		return nil, err
	}

	if event.Expenses, err = loadExpenses(ctx, q, id); err != nil {
		return nil, err
	}

	return &event, nil
}

func loadMembers(ctx context.Context, q querier, eventID string) ([]domain.Member, error) {
	rows, err := q.Query(ctx, `
		SELECT user_id, email
		FROM event_members
		WHERE event_id = $1
		ORDER BY position
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.UserID, &m.Email); err != nil {
			return nil, err
		}
		members = append(members, m)
	}

	return members, rows.Err()
}

func loadExpenses(ctx context.Context, q querier, eventID string) ([]domain.Expense, error) {
	rows, err := q.Query(ctx, `
		SELECT amount, currency, note, exchange_rate, created_at, participants
		FROM expenses
		WHERE event_id = $1
		ORDER BY position
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []domain.Expense
	for rows.Next() {
		var (
			expense domain.Expense
			amount  pgtype.Numeric
			rate    pgtype.Numeric
			raw     []byte
		)
		if err := rows.Scan(
			&amount,
			&expense.Currency,
			&expense.Note,
			&rate,
			&expense.CreatedAt,
			&raw,
		); err != nil {
			return nil, err
		}

		expense.Amount = numericToDecimal(amount)
		if rate.Valid {
			converted := numericToDecimal(rate)
			expense.ExchangeRate = &converted
		}

		if expense.Participants, err = decodeParticipants(raw); err != nil {
			return nil, err
		}

		expenses = append(expenses, expense)
	}

	return expenses, rows.Err()
}

// ReplaceExpenses overwrites the full expense list of an event. Positional
// indices are the slice order.
func (r *EventRepository) ReplaceExpenses(ctx context.Context, tx usecase.Transaction, eventID string, expenses []domain.Expense) error {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return err
	}

	if _, err := pgxTx.Exec(ctx, `DELETE FROM expenses WHERE event_id = $1`, eventID); err != nil {
		return err
	}

	for i, expense := range expenses {
		participants, err := encodeParticipants(expense.Participants)
		if err != nil {
			return err
		}

		rate := pgtype.Numeric{}
		if expense.ExchangeRate != nil {
			rate = decimalToNumeric(*expense.ExchangeRate)
		}

		_, err = pgxTx.Exec(ctx, `
			INSERT INTO expenses (event_id, position, amount, currency, note, exchange_rate, created_at, participants)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, eventID, i, decimalToNumeric(expense.Amount), expense.Currency, expense.Note, rate, expense.CreatedAt, participants)
		if err != nil {
			return err
		}
	}

	return nil
}

// List retrieves events ordered by creation time, newest first.
func (r *EventRepository) List(ctx context.Context, limit, offset int) ([]*domain.Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM events
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	events := make([]*domain.Event, 0, len(ids))
	for _, id := range ids {
		event, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, nil
}

// Delete removes an event; members and expenses cascade.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}

	return nil
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

// pgxTxFrom unwraps the pgx transaction behind a usecase.Transaction.
func pgxTxFrom(tx usecase.Transaction) (pgx.Tx, error) {
	wrapped, ok := tx.(*Tx)
	if !ok {
		return nil, errors.New("transaction is not a postgres transaction")
	}
	return wrapped.PgxTx(), nil
}
