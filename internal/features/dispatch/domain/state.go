package domain

// State is the lifecycle position of a shipment. The set is closed; every
// change goes through the transition table below.
type State string

const (
	StateCreated          State = "CREATED"
	StatePriced           State = "PRICED"
	StatePaymentPending   State = "PAYMENT_PENDING"
	StatePaid             State = "PAID"
	StateDispatching      State = "DISPATCHING"
	StateAssigned         State = "ASSIGNED"
	StateArrivedPickup    State = "ARRIVED_PICKUP"
	StatePickedUp         State = "PICKED_UP"
	StateEnRoute          State = "EN_ROUTE"
	StateArrivedDropoff   State = "ARRIVED_DROPOFF"
	StateDelivered        State = "DELIVERED"
	StateCancelled        State = "CANCELLED"
	StateOffered          State = "OFFERED"
	StateCounterOffer     State = "COUNTER_OFFER"
	StateAcceptedOffer    State = "ACCEPTED_OFFER"
	StateCourierAbandoned State = "COURIER_ABANDONED"
)

// transitions is the single authority on which state changes are legal.
// Self-edges record events that leave the state untouched (rejections,
// replacement offers).
var transitions = map[State][]State{
	StateCreated: {
		StateCreated, StateEnRoute, StateOffered, StateCancelled,
	},
	StateDispatching: {
		StateDispatching, StateEnRoute, StateOffered, StateCancelled,
	},
	StateCourierAbandoned: {
		StateCourierAbandoned, StateEnRoute, StateOffered, StateCancelled,
	},
	StatePriced:         {StateDispatching, StateCancelled},
	StatePaymentPending: {StateDispatching, StateCancelled},
	StatePaid:           {StateDispatching, StateCancelled},
	StateOffered: {
		StateOffered, StateCounterOffer, StateEnRoute, StateCancelled,
	},
	StateCounterOffer: {
		StateCounterOffer, StateAcceptedOffer, StateCreated, StateCancelled,
	},
	StateAcceptedOffer: {
		StateEnRoute, StateCourierAbandoned, StateCancelled,
	},
	StateAssigned: {
		StateEnRoute, StateArrivedPickup, StateCourierAbandoned, StateCancelled,
	},
	StateEnRoute: {
		StateArrivedPickup, StateArrivedDropoff, StateDelivered, StateCourierAbandoned, StateCancelled,
	},
	StateArrivedPickup: {
		StatePickedUp, StateCourierAbandoned, StateCancelled,
	},
	StatePickedUp: {
		StateEnRoute, StateCourierAbandoned,
	},
	StateArrivedDropoff: {
		StateDelivered, StateCourierAbandoned,
	},
	StateDelivered: {},
	StateCancelled: {},
}

// CanTransition reports whether the table allows from -> to.
func CanTransition(from, to State) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the legal next states.
func AllowedTransitions(from State) []State {
	return transitions[from]
}

// IsValid reports whether s is one of the known states.
func (s State) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no transition leaves s.
func (s State) IsTerminal() bool {
	return s.IsValid() && len(transitions[s]) == 0
}

// IsPreAssignment reports whether no courier holds the shipment and it may be
// offered to couriers.
func (s State) IsPreAssignment() bool {
	switch s {
	case StateCreated, StateDispatching, StateCourierAbandoned, StateOffered, StateCounterOffer:
		return true
	}
	return false
}

// HoldsCourier reports whether a shipment in s has a courier attached.
func (s State) HoldsCourier() bool {
	switch s {
	case StateAcceptedOffer, StateAssigned, StateEnRoute, StateArrivedPickup,
		StatePickedUp, StateArrivedDropoff, StateDelivered:
		return true
	}
	return false
}

// IsNegotiating reports whether the counter-offer sub-protocol is open.
func (s State) IsNegotiating() bool {
	return s == StateOffered || s == StateCounterOffer
}
