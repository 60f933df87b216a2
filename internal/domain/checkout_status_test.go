package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckoutStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from CheckoutStatus
		to   CheckoutStatus
		want bool
	}{
		{CheckoutStatusIdle, CheckoutStatusValidating, true},
		{CheckoutStatusIdle, CheckoutStatusDispatching, false},
		{CheckoutStatusValidating, CheckoutStatusIdle, true},
		{CheckoutStatusValidating, CheckoutStatusBuilding, true},
		{CheckoutStatusBuilding, CheckoutStatusDispatching, true},
		{CheckoutStatusBuilding, CheckoutStatusCommitted, false},
		{CheckoutStatusDispatching, CheckoutStatusCommitted, true},
		{CheckoutStatusDispatching, CheckoutStatusFailed, true},
		{CheckoutStatusDispatching, CheckoutStatusIdle, false},
		{CheckoutStatusCommitted, CheckoutStatusValidating, true},
		{CheckoutStatusFailed, CheckoutStatusValidating, true},
		{CheckoutStatusFailed, CheckoutStatusCommitted, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestCheckoutStatus_IsTerminal(t *testing.T) {
	assert.True(t, CheckoutStatusCommitted.IsTerminal())
	assert.True(t, CheckoutStatusFailed.IsTerminal())
	assert.False(t, CheckoutStatusIdle.IsTerminal())
	assert.False(t, CheckoutStatusDispatching.IsTerminal())
}
