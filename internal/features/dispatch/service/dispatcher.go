package service

import (
	"context"
	"time"

	"courier-dispatch/internal/features/dispatch/domain"
	"courier-dispatch/internal/features/dispatch/ports"
)

// Dispatcher is the single entry point the HTTP layer talks to.
type Dispatcher struct {
	machine       *StateMachine
	negotiator    *Negotiator
	windows       *WindowController
	notifications *NotificationService
}

var _ ports.DispatchService = (*Dispatcher)(nil)

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(machine *StateMachine, negotiator *Negotiator, windows *WindowController, notifications *NotificationService) *Dispatcher {
	return &Dispatcher{
		machine:       machine,
		negotiator:    negotiator,
		windows:       windows,
		notifications: notifications,
	}
}

func (d *Dispatcher) Quote(ctx context.Context, in domain.NewShipmentInput) (domain.Quote, error) {
	return d.machine.Quote(ctx, in)
}

func (d *Dispatcher) CreateShipment(ctx context.Context, actor domain.Actor, in domain.NewShipmentInput) (*domain.Shipment, error) {
	return d.machine.CreateShipment(ctx, actor, in)
}

func (d *Dispatcher) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Shipment, error) {
	return d.machine.Get(ctx, actor, id)
}

func (d *Dispatcher) Feed(ctx context.Context, actor domain.Actor) ([]*domain.Shipment, error) {
	return d.notifications.Feed(ctx, actor)
}

func (d *Dispatcher) OpenWindow(ctx context.Context, actor domain.Actor, id string) (time.Time, error) {
	w, err := d.windows.Open(ctx, actor, id)
	if err != nil {
		return time.Time{}, err
	}
	return w.Deadline, nil
}

func (d *Dispatcher) CloseWindow(ctx context.Context, actor domain.Actor, id string) error {
	return d.windows.Close(ctx, actor, id)
}

func (d *Dispatcher) AcceptWindow(ctx context.Context, actor domain.Actor, id string) (*domain.Shipment, error) {
	return d.windows.Accept(ctx, actor, id)
}

func (d *Dispatcher) RejectWindow(ctx context.Context, actor domain.Actor, id string) (*domain.Shipment, error) {
	return d.windows.Reject(ctx, actor, id)
}

func (d *Dispatcher) StartAcceptedOffer(ctx context.Context, actor domain.Actor, id string) (*domain.Shipment, error) {
	return d.machine.StartAcceptedOffer(ctx, actor, id)
}

func (d *Dispatcher) ConfirmArrivalAtPickup(ctx context.Context, actor domain.Actor, id string, in ports.MilestoneInput) (*domain.Shipment, error) {
	return d.machine.ConfirmArrivalAtPickup(ctx, actor, id, in)
}

func (d *Dispatcher) ConfirmPickup(ctx context.Context, actor domain.Actor, id string, in ports.MilestoneInput) (*domain.Shipment, error) {
	return d.machine.ConfirmPickup(ctx, actor, id, in)
}

func (d *Dispatcher) DepartToDropoff(ctx context.Context, actor domain.Actor, id string) (*domain.Shipment, error) {
	return d.machine.DepartToDropoff(ctx, actor, id)
}

func (d *Dispatcher) ConfirmArrivalAtDropoff(ctx context.Context, actor domain.Actor, id string, in ports.MilestoneInput) (*domain.Shipment, error) {
	return d.machine.ConfirmArrivalAtDropoff(ctx, actor, id, in)
}

func (d *Dispatcher) ConfirmDelivery(ctx context.Context, actor domain.Actor, id string, in ports.MilestoneInput) (*domain.Shipment, error) {
	return d.machine.ConfirmDelivery(ctx, actor, id, in)
}

func (d *Dispatcher) Abandon(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Shipment, error) {
	return d.machine.Abandon(ctx, actor, id, reason)
}

func (d *Dispatcher) Cancel(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Shipment, error) {
	return d.machine.Cancel(ctx, actor, id, reason)
}

func (d *Dispatcher) SubmitOffer(ctx context.Context, actor domain.Actor, id string, in ports.OfferInput) (*domain.Shipment, error) {
	return d.negotiator.SubmitOffer(ctx, actor, id, in)
}

func (d *Dispatcher) AcceptOffer(ctx context.Context, actor domain.Actor, id, offerID string) (*domain.Shipment, error) {
	return d.negotiator.AcceptOffer(ctx, actor, id, offerID)
}

func (d *Dispatcher) RejectOffer(ctx context.Context, actor domain.Actor, id, offerID string) (*domain.Shipment, error) {
	return d.negotiator.RejectOffer(ctx, actor, id, offerID)
}
