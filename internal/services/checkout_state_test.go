package services_test

import (
	"encoding/json"
	"testing"

	"storefront-checkout/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduceCheckout_HappyPath(t *testing.T) {
	state := services.CheckoutState{Phase: services.PhaseIdle}

	steps := []struct {
		event services.CheckoutEvent
		phase services.CheckoutPhase
	}{
		{services.CheckoutEvent{Type: services.EventSubmit}, services.PhaseValidating},
		{services.CheckoutEvent{Type: services.EventValidated}, services.PhaseCreatingOrder},
		{services.CheckoutEvent{Type: services.EventOrderCreated, OrderNumber: "ORD-1"}, services.PhaseCreatingPaymentSession},
		{services.CheckoutEvent{Type: services.EventPaymentSessionCreated, RedirectURL: "https://pay/x"}, services.PhaseRedirecting},
		{services.CheckoutEvent{Type: services.EventRedirected}, services.PhaseSucceeded},
	}

	for _, step := range steps {
		state = services.ReduceCheckout(state, step.event)
		require.Equal(t, step.phase, state.Phase, "after %s", step.event.Type)
	}
	assert.Equal(t, "ORD-1", state.OrderNumber)
	assert.Equal(t, "https://pay/x", state.RedirectURL)
	assert.True(t, state.Phase.IsTerminal())
}

func TestReduceCheckout_IllegalEventsLeaveStateUnchanged(t *testing.T) {
	tests := []struct {
		name  string
		state services.CheckoutState
		event services.CheckoutEvent
	}{
		{"submit while validating", services.CheckoutState{Phase: services.PhaseValidating}, services.CheckoutEvent{Type: services.EventSubmit}},
		{"submit while creating order", services.CheckoutState{Phase: services.PhaseCreatingOrder}, services.CheckoutEvent{Type: services.EventSubmit}},
		{"validated while idle", services.CheckoutState{Phase: services.PhaseIdle}, services.CheckoutEvent{Type: services.EventValidated}},
		{"order created while idle", services.CheckoutState{Phase: services.PhaseIdle}, services.CheckoutEvent{Type: services.EventOrderCreated, OrderNumber: "X"}},
		{"order created without number", services.CheckoutState{Phase: services.PhaseCreatingOrder}, services.CheckoutEvent{Type: services.EventOrderCreated}},
		{"payment session before order", services.CheckoutState{Phase: services.PhaseCreatingOrder}, services.CheckoutEvent{Type: services.EventPaymentSessionCreated, RedirectURL: "u"}},
		{"redirected while creating payment", services.CheckoutState{Phase: services.PhaseCreatingPaymentSession}, services.CheckoutEvent{Type: services.EventRedirected}},
		{"failed while idle", services.CheckoutState{Phase: services.PhaseIdle}, services.CheckoutEvent{Type: services.EventFailed, ErrorKind: services.KindServiceError}},
		{"failed after success", services.CheckoutState{Phase: services.PhaseSucceeded, OrderNumber: "A"}, services.CheckoutEvent{Type: services.EventFailed}},
		{"reset while busy", services.CheckoutState{Phase: services.PhaseRedirecting}, services.CheckoutEvent{Type: services.EventReset}},
		{"unknown event", services.CheckoutState{Phase: services.PhaseIdle}, services.CheckoutEvent{Type: "bogus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.state, services.ReduceCheckout(tt.state, tt.event))
		})
	}
}

func TestReduceCheckout_FailureKeepsOrderNumber(t *testing.T) {
	state := services.CheckoutState{Phase: services.PhaseCreatingPaymentSession, OrderNumber: "ORD-9"}

	state = services.ReduceCheckout(state, services.CheckoutEvent{
		Type:      services.EventFailed,
		ErrorKind: services.KindServiceError,
		Message:   "card network down",
	})

	assert.Equal(t, services.PhaseFailed, state.Phase)
	assert.Equal(t, "ORD-9", state.OrderNumber)
	assert.Equal(t, services.KindServiceError, state.ErrorKind)
	assert.Equal(t, "card network down", state.ErrorMessage)
}

func TestReduceCheckout_SubmitFromTerminalStartsFresh(t *testing.T) {
	failed := services.CheckoutState{Phase: services.PhaseFailed, OrderNumber: "A", ErrorKind: services.KindValidation, ErrorMessage: "x"}

	state := services.ReduceCheckout(failed, services.CheckoutEvent{Type: services.EventSubmit})
	assert.Equal(t, services.CheckoutState{Phase: services.PhaseValidating}, state)

	state = services.ReduceCheckout(failed, services.CheckoutEvent{Type: services.EventReset})
	assert.Equal(t, services.CheckoutState{Phase: services.PhaseIdle}, state)
}

func TestReduceCheckout_ResumeSkipsOrderCreation(t *testing.T) {
	state := services.CheckoutState{Phase: services.PhaseValidating}

	state = services.ReduceCheckout(state, services.CheckoutEvent{Type: services.EventOrderCreated, OrderNumber: "ORD-2"})

	assert.Equal(t, services.PhaseCreatingPaymentSession, state.Phase)
	assert.Equal(t, "ORD-2", state.OrderNumber)
}

func TestCheckoutState_JSON(t *testing.T) {
	data, err := json.Marshal(services.CheckoutState{
		Phase:        services.PhaseFailed,
		ErrorKind:    services.KindMissingRedirectURL,
		ErrorMessage: "no url",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"phase":"failed","error_kind":"missing_redirect_url","error_message":"no url"}`, string(data))
}

func TestCheckoutPhase_Predicates(t *testing.T) {
	assert.False(t, services.PhaseIdle.IsBusy())
	assert.False(t, services.PhaseIdle.IsTerminal())
	assert.True(t, services.PhaseCreatingOrder.IsBusy())
	assert.True(t, services.PhaseFailed.IsTerminal())
	assert.False(t, services.PhaseSucceeded.IsBusy())
	assert.False(t, services.CheckoutPhase("").IsBusy())
}
