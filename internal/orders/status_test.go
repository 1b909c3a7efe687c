package orders

import (
	"testing"

	"github.com/cloudclutches/storefront/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"pending", "approved", "shipped", "delivered", "cancelled", " Shipped "} {
		s, err := ParseStatus(raw)
		require.NoError(t, err, raw)
		assert.True(t, s.Valid())
	}

	for _, raw := range []string{"", "paid", "canceled", "refunded"} {
		_, err := ParseStatus(raw)
		var ve *apperr.ValidationError
		require.ErrorAs(t, err, &ve, raw)
		assert.Equal(t, "status", ve.Field)
		assert.Contains(t, ve.Message, "pending, approved, shipped, delivered, cancelled")
	}
}

func TestStrictTransitions(t *testing.T) {
	allowed := [][2]Status{
		{StatusPending, StatusApproved},
		{StatusPending, StatusShipped},
		{StatusPending, StatusDelivered},
		{StatusPending, StatusCancelled},
		{StatusApproved, StatusDelivered},
		{StatusApproved, StatusShipped},
		{StatusApproved, StatusCancelled},
		{StatusShipped, StatusDelivered},
		{StatusShipped, StatusCancelled},
	}
	for _, e := range allowed {
		assert.True(t, Strict.Allows(e[0], e[1]), "%s -> %s", e[0], e[1])
	}

	rejected := [][2]Status{
		{StatusPending, StatusPending},
		{StatusApproved, StatusPending},
		{StatusShipped, StatusPending},
		{StatusDelivered, StatusPending},
		{StatusDelivered, StatusCancelled},
		{StatusCancelled, StatusApproved},
	}
	for _, e := range rejected {
		assert.False(t, Strict.Allows(e[0], e[1]), "%s -> %s", e[0], e[1])
	}
}

func TestLenientAllowsAnyKnownStatus(t *testing.T) {
	assert.True(t, Lenient.Allows(StatusDelivered, StatusPending))
	assert.True(t, Lenient.Allows(StatusPending, StatusShipped))
	assert.True(t, Lenient.Allows(StatusCancelled, StatusCancelled))
	assert.False(t, Lenient.Allows(StatusPending, Status("lost")))
}

func TestTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusShipped.Terminal())
	assert.False(t, Status("lost").Terminal())
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("strict")
	require.NoError(t, err)
	assert.Equal(t, Strict, p)

	p, err = ParsePolicy("LENIENT")
	require.NoError(t, err)
	assert.Equal(t, Lenient, p)

	_, err = ParsePolicy("yolo")
	assert.Error(t, err)
}
