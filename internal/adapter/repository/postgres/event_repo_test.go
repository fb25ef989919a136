package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gosplit/internal/domain"
)

func TestParticipantsRoundTrip(t *testing.T) {
	participants := []domain.Participation{
		{UserID: "u1", ResponsibleFor: decimal.RequireFromString("30"), Paid: decimal.RequireFromString("90")},
		{UserID: "u2", ResponsibleFor: decimal.RequireFromString("60"), Paid: decimal.Zero},
	}

	raw, err := encodeParticipants(participants)
	require.NoError(t, err)

	decoded, err := decodeParticipants(raw)
	require.NoError(t, err)
	require.Len(t, decoded, 2)

	assert.Equal(t, "u1", decoded[0].UserID)
	assert.True(t, decoded[0].ResponsibleFor.Equal(decimal.RequireFromString("30")))
	assert.True(t, decoded[0].Paid.Equal(decimal.RequireFromString("90")))
	assert.True(t, decoded[1].Paid.IsZero())
}

func TestDecodeParticipantsRejectsGarbage(t *testing.T) {
	_, err := decodeParticipants([]byte(`not json`))
	assert.Error(t, err)
}

func TestLoadEventNotFound(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("SELECT id, name, base_currency, created_at").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := loadEvent(context.Background(), mockPool, "missing", false)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)

	assertExpectations(t, mockPool)
}

func TestLoadMembersPreservesOrder(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("SELECT user_id, email").
		WithArgs("ev1").
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "email"}).
			AddRow("u1", "alice@example.com").
			AddRow("u2", "bob@example.com"))

	members, err := loadMembers(context.Background(), mockPool, "ev1")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "alice@example.com", members[0].Email)
	assert.Equal(t, "bob@example.com", members[1].Email)

	assertExpectations(t, mockPool)
}

func TestNumericConversionRoundTrip(t *testing.T) {
	values := []string{"0", "1.25", "90.01", "123456.789012", "0.0000000001"}

	for _, value := range values {
		d := decimal.RequireFromString(value)
		got := numericToDecimal(decimalToNumeric(d))
		assert.True(t, got.Equal(d), "round trip of %s gave %s", value, got)
	}
}

func TestNumericToDecimalNull(t *testing.T) {
	var n = decimalToNumeric(decimal.RequireFromString("5"))
	n.Valid = false
	assert.True(t, numericToDecimal(n).IsZero())
}

func TestPgxTxFromRejectsForeignTransaction(t *testing.T) {
	_, err := pgxTxFrom(fakeTransaction{})
	assert.Error(t, err)
}

type fakeTransaction struct{}

func (fakeTransaction) Commit(context.Context) error   { return nil }
func (fakeTransaction) Rollback(context.Context) error { return nil }
