package checkout

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseMethod(t *testing.T) {
	for _, valid := range []string{"cash", "card", "mobile"} {
		m, err := ParseMethod(valid)
		require.NoError(t, err)
		require.Equal(t, Method(valid), m)
	}
	_, err := ParseMethod("cheque")
	require.ErrorIs(t, err, ErrInvalidMethod)
}

func TestSelectMethodCashRequiresAmount(t *testing.T) {
	now := time.Now()
	s := NewSession(uuid.New(), now)
	require.Equal(t, StateAwaitingMethod, s.State)

	require.NoError(t, s.SelectMethod(MethodCash, now))
	require.Equal(t, StateAwaitingAmount, s.State)
	require.ErrorIs(t, s.ReadyToSubmit(), ErrInvalidTransition)
}

func TestSelectMethodCardReadyImmediately(t *testing.T) {
	now := time.Now()
	s := NewSession(uuid.New(), now)

	require.NoError(t, s.SelectMethod(MethodCard, now))
	require.Equal(t, StateAwaitingMethod, s.State)
	require.NoError(t, s.ReadyToSubmit())
}

func TestReselectMethodClearsTender(t *testing.T) {
	now := time.Now()
	s := NewSession(uuid.New(), now)

	require.NoError(t, s.SelectMethod(MethodCash, now))
	require.NoError(t, s.Tender(decimal.NewFromInt(100), decimal.NewFromInt(50), now))
	require.NotNil(t, s.AmountTendered)

	require.NoError(t, s.SelectMethod(MethodMobile, now))
	require.Nil(t, s.AmountTendered)
	require.Nil(t, s.Change)
}

func TestTenderBelowTotal(t *testing.T) {
	now := time.Now()
	s := NewSession(uuid.New(), now)
	require.NoError(t, s.SelectMethod(MethodCash, now))

	err := s.Tender(decimal.NewFromInt(40), decimal.RequireFromString("54.00"), now)
	require.ErrorIs(t, err, ErrInsufficientAmount)
	require.Nil(t, s.AmountTendered)
}

func TestTenderComputesChange(t *testing.T) {
	now := time.Now()
	s := NewSession(uuid.New(), now)
	require.NoError(t, s.SelectMethod(MethodCash, now))

	require.NoError(t, s.Tender(decimal.NewFromInt(100), decimal.RequireFromString("97.20"), now))
	require.True(t, s.Change.Equal(decimal.RequireFromString("2.80")), s.Change.String())
	require.NoError(t, s.ReadyToSubmit())
}

func TestTenderExactAmount(t *testing.T) {
	now := time.Now()
	s := NewSession(uuid.New(), now)
	require.NoError(t, s.SelectMethod(MethodCash, now))

	require.NoError(t, s.Tender(decimal.RequireFromString("54.00"), decimal.RequireFromString("54.00"), now))
	require.True(t, s.Change.IsZero())
}

func TestFailedSessionAllowsMethodReselect(t *testing.T) {
	now := time.Now()
	s := NewSession(uuid.New(), now)
	require.NoError(t, s.SelectMethod(MethodCard, now))
	s.BeginSubmit(now)
	s.Fail("network unreachable", now)
	require.Equal(t, StateFailed, s.State)
	require.Equal(t, "network unreachable", s.FailureReason)

	require.NoError(t, s.SelectMethod(MethodCash, now))
	require.Empty(t, s.FailureReason)
	require.Equal(t, StateAwaitingAmount, s.State)
}

func TestCannotSelectMethodAfterSuccess(t *testing.T) {
	now := time.Now()
	s := NewSession(uuid.New(), now)
	require.NoError(t, s.SelectMethod(MethodCard, now))
	s.BeginSubmit(now)
	s.Succeed(uuid.New(), "RX-20260301-0001", now)

	require.ErrorIs(t, s.SelectMethod(MethodCash, now), ErrInvalidTransition)
	require.ErrorIs(t, s.ReadyToSubmit(), ErrInvalidTransition)
}
