package services

// CheckoutPhase is where a checkout attempt currently is.
type CheckoutPhase string

const (
	PhaseIdle                   CheckoutPhase = "idle"
	PhaseValidating             CheckoutPhase = "validating"
	PhaseCreatingOrder          CheckoutPhase = "creating_order"
	PhaseCreatingPaymentSession CheckoutPhase = "creating_payment_session"
	PhaseRedirecting            CheckoutPhase = "redirecting"
	PhaseSucceeded              CheckoutPhase = "succeeded"
	PhaseFailed                 CheckoutPhase = "failed"
)

// IsTerminal reports whether the attempt has finished.
func (p CheckoutPhase) IsTerminal() bool {
	return p == PhaseSucceeded || p == PhaseFailed
}

// IsBusy reports whether an attempt is running.
func (p CheckoutPhase) IsBusy() bool {
	switch p {
	case PhaseValidating, PhaseCreatingOrder, PhaseCreatingPaymentSession, PhaseRedirecting:
		return true
	}
	return false
}

// CheckoutState is the observable state of the orchestrator.
type CheckoutState struct {
	Phase        CheckoutPhase `json:"phase"`
	OrderNumber  string        `json:"order_number,omitempty"`
	RedirectURL  string        `json:"redirect_url,omitempty"`
	ErrorKind    ErrorKind     `json:"error_kind,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// CheckoutEventType names a transition input.
type CheckoutEventType string

const (
	EventSubmit                CheckoutEventType = "submit"
	EventValidated             CheckoutEventType = "validated"
	EventOrderCreated          CheckoutEventType = "order_created"
	EventPaymentSessionCreated CheckoutEventType = "payment_session_created"
	EventRedirected            CheckoutEventType = "redirected"
	EventFailed                CheckoutEventType = "failed"
	EventReset                 CheckoutEventType = "reset"
)

type CheckoutEvent struct {
	Type        CheckoutEventType
	OrderNumber string
	RedirectURL string
	ErrorKind   ErrorKind
	Message     string
}

// ReduceCheckout returns the state that follows state after event. Events
// that are not legal in the current phase return state unchanged.
//
// EventOrderCreated is accepted while validating as well as while creating
// the order: a retry that already holds an order number skips order creation.
func ReduceCheckout(state CheckoutState, event CheckoutEvent) CheckoutState {
	switch event.Type {
	case EventSubmit:
		if state.Phase.IsBusy() {
			return state
		}
		return CheckoutState{Phase: PhaseValidating}

	case EventValidated:
		if state.Phase != PhaseValidating {
			return state
		}
		state.Phase = PhaseCreatingOrder
		return state

	case EventOrderCreated:
		if state.Phase != PhaseValidating && state.Phase != PhaseCreatingOrder {
			return state
		}
		if event.OrderNumber == "" {
			return state
		}
		state.Phase = PhaseCreatingPaymentSession
		state.OrderNumber = event.OrderNumber
		return state

	case EventPaymentSessionCreated:
		if state.Phase != PhaseCreatingPaymentSession {
			return state
		}
		state.Phase = PhaseRedirecting
		state.RedirectURL = event.RedirectURL
		return state

	case EventRedirected:
		if state.Phase != PhaseRedirecting {
			return state
		}
		state.Phase = PhaseSucceeded
		return state

	case EventFailed:
		if !state.Phase.IsBusy() {
			return state
		}
		state.Phase = PhaseFailed
		state.ErrorKind = event.ErrorKind
		state.ErrorMessage = event.Message
		return state

	case EventReset:
		if state.Phase.IsBusy() {
			return state
		}
		return CheckoutState{Phase: PhaseIdle}
	}
	return state
}
