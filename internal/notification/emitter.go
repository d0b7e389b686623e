package notification

import (
	"context"
	"fmt"
	"time"

	"printdesk-be/internal/logger"
	"printdesk-be/internal/mailer"
	"printdesk-be/internal/order"
	"printdesk-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Emitter synthesizes lifecycle notifications for an order's creator.
// It implements order.Notifier.
type Emitter struct {
	repo Repository
	mail mailer.Mailer
	now  func() time.Time
}

func NewEmitter(repo Repository, mail mailer.Mailer) *Emitter {
	return &Emitter{repo: repo, mail: mail, now: time.Now}
}

func (e *Emitter) OrderCreated(ctx context.Context, o *order.Order) error {
	ref := utils.ShortOrderRef(o.ID)
	return e.emit(ctx, o, TypeOrderCreated,
		fmt.Sprintf("Order %s received", ref),
		fmt.Sprintf("We received your order %s and will review it shortly.", ref),
		"order_created",
	)
}

func (e *Emitter) OrderConfirmed(ctx context.Context, o *order.Order) error {
	ref := utils.ShortOrderRef(o.ID)
	return e.emit(ctx, o, TypeOrderConfirmed,
		fmt.Sprintf("Order %s confirmed", ref),
		fmt.Sprintf("Order %s was confirmed and is queued for production.", ref),
		"order_confirmed",
	)
}

func (e *Emitter) emit(ctx context.Context, o *order.Order, typ Type, title, message, template string) error {
	n := &Notification{
		ID:        uuid.NewString(),
		UserID:    o.CreatedBy,
		Type:      typ,
		Title:     title,
		Message:   message,
		OrderID:   o.ID,
		CreatedAt: e.now(),
	}

	if err := e.repo.Insert(ctx, n); err != nil {
		return err
	}

	// Mail is queued after the record exists; a queue failure never rolls
	// the notification back.
	err := e.mail.Send(ctx, mailer.Payload{
		Recipient: o.CreatedByEmail,
		Template:  template,
		Params: map[string]string{
			"order_ref": utils.ShortOrderRef(o.ID),
			"title":     title,
			"message":   message,
		},
	})
	if err != nil {
		logger.FromCtx(ctx).Warn("failed to queue notification mail",
			zap.String("order_id", o.ID),
			zap.String("type", string(typ)),
			zap.Error(err),
		)
	}

	return nil
}
