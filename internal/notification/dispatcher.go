package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/event"
	"github.com/osse101/RespawnQueue_Go/internal/logger"
)

// AudienceProvider resolves who receives broadcast notifications
type AudienceProvider interface {
	MemberUserIDs(ctx context.Context) ([]string, error)
	AdminUserIDs(ctx context.Context) ([]string, error)
}

// Dispatcher turns domain events that are not coordinator transitions into
// notification rows: tickets go to admins or the ticket owner, hunted
// sightings and system alerts go to every member
type Dispatcher struct {
	svc      Service
	audience AudienceProvider
	now      func() time.Time
}

// NewDispatcher creates the event fan-out
func NewDispatcher(svc Service, audience AudienceProvider) *Dispatcher {
	return &Dispatcher{svc: svc, audience: audience, now: time.Now}
}

// Register subscribes the dispatcher to the events it fans out
func (d *Dispatcher) Register(bus event.Bus) {
	event.SubscribeAll(bus, d.HandleEvent,
		event.TicketCreated,
		event.TicketUpdated,
		event.HuntedOnline,
		event.SystemAlert,
	)
}

// HandleEvent builds and sends the notifications for one event
func (d *Dispatcher) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	notifications, err := d.build(ctx, evt)
	if err != nil {
		log.Error(LogMsgDispatchFailed, "type", evt.Type, "error", err)
		return err
	}
	if len(notifications) == 0 {
		return nil
	}

	if _, err := d.svc.Send(ctx, notifications); err != nil {
		log.Error(LogMsgDispatchFailed, "type", evt.Type, "error", err)
		return err
	}
	log.Info(LogMsgDispatched, "type", evt.Type, "count", len(notifications))
	return nil
}

func (d *Dispatcher) build(ctx context.Context, evt event.Event) ([]domain.Notification, error) {
	switch evt.Type {
	case event.TicketCreated:
		p, err := event.DecodePayload[event.TicketPayloadV1](evt.Payload)
		if err != nil {
			return nil, fmt.Errorf(ErrMsgDecodePayload, evt.Type, err)
		}
		admins, err := d.audience.AdminUserIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf(ErrMsgResolveAudience, evt.Type, err)
		}
		return fanOut(admins, domain.Notification{
			Title:   domain.TitleNewTicket,
			Message: fmt.Sprintf(MsgFmtNewTicket, p.Ticket.ID, p.Ticket.Subject),
			Type:    domain.NotificationNewTicket,
		}), nil

	case event.TicketUpdated:
		p, err := event.DecodePayload[event.TicketPayloadV1](evt.Payload)
		if err != nil {
			return nil, fmt.Errorf(ErrMsgDecodePayload, evt.Type, err)
		}
		return fanOut([]string{p.Ticket.OwnerUserID}, domain.Notification{
			Title:   domain.TitleTicketUpdate,
			Message: fmt.Sprintf(MsgFmtTicketUpdate, p.Ticket.ID, p.Ticket.Subject, p.Ticket.Status),
			Type:    domain.NotificationTicketUpdate,
		}), nil

	case event.HuntedOnline:
		p, err := event.DecodePayload[event.HuntedOnlinePayloadV1](evt.Payload)
		if err != nil {
			return nil, fmt.Errorf(ErrMsgDecodePayload, evt.Type, err)
		}
		members, err := d.audience.MemberUserIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf(ErrMsgResolveAudience, evt.Type, err)
		}
		expiresAt := d.now().Add(HuntedSightingLifetime)
		return fanOut(members, domain.Notification{
			Title:     domain.TitleHuntedOnline,
			Message:   fmt.Sprintf(domain.MsgFmtHuntedOnline, p.Sighting.CharacterName, p.Sighting.World),
			Type:      domain.NotificationHuntedOnline,
			ExpiresAt: &expiresAt,
		}), nil

	case event.SystemAlert:
		p, err := event.DecodePayload[event.SystemAlertPayloadV1](evt.Payload)
		if err != nil {
			return nil, fmt.Errorf(ErrMsgDecodePayload, evt.Type, err)
		}
		members, err := d.audience.MemberUserIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf(ErrMsgResolveAudience, evt.Type, err)
		}
		return fanOut(members, domain.Notification{
			Title:   p.Alert.Title,
			Message: p.Alert.Message,
			Type:    domain.NotificationSystemAlert,
		}), nil
	}

	logger.FromContext(ctx).Debug(LogMsgUnhandledEventType, "type", evt.Type)
	return nil, nil
}

// fanOut copies a template notification to each user
func fanOut(userIDs []string, template domain.Notification) []domain.Notification {
	out := make([]domain.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		if id == "" {
			continue
		}
		n := template
		n.UserID = id
		out = append(out, n)
	}
	return out
}
