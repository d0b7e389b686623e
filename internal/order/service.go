package order

import (
	"context"
	"fmt"
	"time"

	"printdesk-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier produces the fire-and-forget lifecycle notifications. Failures
// are logged and never unwind the write that triggered them.
type Notifier interface {
	OrderCreated(ctx context.Context, o *Order) error
	OrderConfirmed(ctx context.Context, o *Order) error
}

// ChangePublisher tells the live-view layer that an order changed.
type ChangePublisher interface {
	PublishOrderChanged(ctx context.Context, orderID string)
}

type SubOrderInput struct {
	ProductType   string     `json:"product_type"`
	ProductLabel  string     `json:"product_label"`
	Quantity      int        `json:"quantity"`
	Dimensions    *string    `json:"dimensions"`
	Description   string     `json:"description"`
	DesignFileURL *string    `json:"design_file_url"`
	DeliveryAt    *time.Time `json:"delivery_at"`
	Notes         string     `json:"notes"`
}

type CreateOrderInput struct {
	DisplayName *string
	Client      ClientInfo
	SubOrders   []SubOrderInput
}

type Service interface {
	CreateOrder(ctx context.Context, actor Actor, input CreateOrderInput) (*Order, error)
	GetOrderView(ctx context.Context, actor Actor, orderID string) (*View, error)
	ListOrderViews(ctx context.Context, actor Actor, q ListQuery) ([]View, error)
	TransitionOrderStatus(ctx context.Context, actor Actor, orderID string, status OrderStatus) error
	TransitionSubOrderStatus(ctx context.Context, actor Actor, orderID, subOrderID string, status SubOrderStatus) error
	ConfirmOrder(ctx context.Context, actor Actor, orderID string) error
	AppendUpdate(ctx context.Context, actor Actor, orderID, text string, attachment *Attachment) (*Update, error)
	ListUpdates(ctx context.Context, actor Actor, orderID string) ([]Update, error)
	DeleteUpdate(ctx context.Context, actor Actor, orderID, updateID string) error
	DeleteOrder(ctx context.Context, actor Actor, orderID string) error
}

type service struct {
	repo     Repository
	notifier Notifier
	changes  ChangePublisher
	now      func() time.Time
}

func NewService(repo Repository, notifier Notifier, changes ChangePublisher) Service {
	return &service{
		repo:     repo,
		notifier: notifier,
		changes:  changes,
		now:      time.Now,
	}
}

func (s *service) CreateOrder(ctx context.Context, actor Actor, input CreateOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.String("actor_id", actor.ID),
		zap.Int("item_count", len(input.SubOrders)),
	)

	// 1. Validate line items
	if len(input.SubOrders) == 0 {
		return nil, ErrNoItems
	}
	for _, item := range input.SubOrders {
		if item.Quantity <= 0 {
			log.Warn("invalid quantity", zap.String("product_type", item.ProductType))
			return nil, fmt.Errorf("%w: %s", ErrBadQuantity, item.ProductType)
		}
	}

	// 2. Build order domain. Client-originated orders wait for the client's
	// confirmation before fulfillment begins.
	now := s.now()
	status := StatusPending
	if actor.Role == RoleClient {
		status = StatusPendingConfirmation
	}

	o := &Order{
		ID:             uuid.NewString(),
		CreatedBy:      actor.ID,
		CreatedByName:  actor.Name,
		CreatedByEmail: actor.Email,
		DisplayName:    input.DisplayName,
		Client:         input.Client,
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	subs := make([]SubOrder, 0, len(input.SubOrders))
	for _, item := range input.SubOrders {
		subs = append(subs, SubOrder{
			ID:            uuid.NewString(),
			OrderID:       o.ID,
			ProductType:   item.ProductType,
			ProductLabel:  item.ProductLabel,
			Quantity:      item.Quantity,
			Dimensions:    item.Dimensions,
			Description:   item.Description,
			DesignFileURL: item.DesignFileURL,
			DeliveryAt:    item.DeliveryAt,
			Notes:         item.Notes,
			Status:        SubStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	// 3. Persist order and items together
	if err := s.repo.CreateOrderTx(ctx, o, subs); err != nil {
		log.Error("failed to create order", zap.Error(err))
		return nil, err
	}

	// 4. Trail entry, notification, change event — best effort past this
	// point; completed writes are never unwound.
	s.appendSystemUpdate(ctx, o.ID, "order:created")

	if err := s.notifier.OrderCreated(ctx, o); err != nil {
		log.Warn("order-created notification failed", zap.Error(err))
	}

	s.changes.PublishOrderChanged(ctx, o.ID)

	log.Info("order created", zap.String("order_id", o.ID), zap.String("status", string(o.Status)))
	return o, nil
}

func (s *service) GetOrderView(ctx context.Context, actor Actor, orderID string) (*View, error) {
	o, err := s.loadVisibleOrder(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}

	subs, err := s.repo.ListSubOrders(ctx, orderID)
	if err != nil {
		return nil, err
	}

	view := Aggregate(*o, subs)
	return &view, nil
}

// ListOrderViews is the one-shot counterpart of the live feed: same scope,
// same aggregation, same list transform.
func (s *service) ListOrderViews(ctx context.Context, actor Actor, q ListQuery) ([]View, error) {
	var (
		orders []Order
		err    error
	)
	if actor.IsStaff() {
		orders, err = s.repo.ListOrders(ctx)
	} else {
		orders, err = s.repo.ListOrdersByCreator(ctx, actor.ID)
	}
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(orders))
	for _, o := range orders {
		subs, err := s.repo.ListSubOrders(ctx, o.ID)
		if err != nil {
			// Same degradation rule as the live feed: keep the order, drop
			// its line items for this read.
			logger.FromCtx(ctx).Warn("sub-order fetch failed, order degraded",
				zap.String("order_id", o.ID), zap.Error(err))
			v := Aggregate(o, nil)
			v.Degraded = true
			views = append(views, v)
			continue
		}
		views = append(views, Aggregate(o, subs))
	}

	return ApplyListQuery(views, q), nil
}

func (s *service) TransitionOrderStatus(ctx context.Context, actor Actor, orderID string, status OrderStatus) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "TransitionOrderStatus"),
		zap.String("order_id", orderID),
		zap.String("requested", string(status)),
	)

	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	subs, err := s.repo.ListSubOrders(ctx, orderID)
	if err != nil {
		return fmt.Errorf("load sub-orders: %w", err)
	}

	if err := ValidateOrderTransition(o.Status, status, actor.Role, subs); err != nil {
		log.Warn("transition denied", zap.Error(err))
		return err
	}

	if err := s.repo.UpdateOrderStatus(ctx, orderID, status); err != nil {
		log.Error("failed to update status", zap.Error(err))
		return err
	}

	s.appendSystemUpdate(ctx, orderID, "status:"+string(status))
	s.changes.PublishOrderChanged(ctx, orderID)

	log.Info("order status changed", zap.String("from", string(o.Status)))
	return nil
}

func (s *service) TransitionSubOrderStatus(ctx context.Context, actor Actor, orderID, subOrderID string, status SubOrderStatus) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "TransitionSubOrderStatus"),
		zap.String("order_id", orderID),
		zap.String("sub_order_id", subOrderID),
		zap.String("requested", string(status)),
	)

	sub, err := s.repo.GetSubOrder(ctx, orderID, subOrderID)
	if err != nil {
		return err
	}

	if err := ValidateSubOrderTransition(sub.Status, status, actor.Role); err != nil {
		log.Warn("transition denied", zap.Error(err))
		return err
	}

	if err := s.repo.UpdateSubOrderStatus(ctx, orderID, subOrderID, status); err != nil {
		log.Error("failed to update status", zap.Error(err))
		return err
	}

	s.appendSystemUpdate(ctx, orderID, fmt.Sprintf("suborder:%s:status:%s", subOrderID, status))
	s.changes.PublishOrderChanged(ctx, orderID)

	log.Info("sub-order status changed", zap.String("from", string(sub.Status)))
	return nil
}

func (s *service) ConfirmOrder(ctx context.Context, actor Actor, orderID string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ConfirmOrder"),
		zap.String("order_id", orderID),
		zap.String("actor_id", actor.ID),
	)

	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if err := ValidateConfirm(o, actor); err != nil {
		log.Warn("confirmation denied", zap.Error(err))
		return err
	}

	if err := s.repo.ConfirmOrder(ctx, orderID); err != nil {
		log.Error("failed to confirm order", zap.Error(err))
		return err
	}
	o.Status = StatusPending
	o.ConfirmedByClient = true

	s.appendSystemUpdate(ctx, orderID, "order:confirmed")

	if err := s.notifier.OrderConfirmed(ctx, o); err != nil {
		log.Warn("order-confirmed notification failed", zap.Error(err))
	}

	s.changes.PublishOrderChanged(ctx, orderID)

	log.Info("order confirmed by client")
	return nil
}

func (s *service) AppendUpdate(ctx context.Context, actor Actor, orderID, text string, attachment *Attachment) (*Update, error) {
	if text == "" && attachment == nil {
		return nil, ErrEmptyUpdate
	}

	if _, err := s.loadVisibleOrder(ctx, actor, orderID); err != nil {
		return nil, err
	}

	u := &Update{
		ID:         uuid.NewString(),
		OrderID:    orderID,
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		Text:       text,
		Attachment: attachment,
		CreatedAt:  s.now(),
	}

	if err := s.repo.InsertUpdate(ctx, u); err != nil {
		logger.FromCtx(ctx).Error("failed to append update",
			zap.String("order_id", orderID), zap.Error(err))
		return nil, err
	}

	s.changes.PublishOrderChanged(ctx, orderID)
	return u, nil
}

func (s *service) ListUpdates(ctx context.Context, actor Actor, orderID string) ([]Update, error) {
	if _, err := s.loadVisibleOrder(ctx, actor, orderID); err != nil {
		return nil, err
	}
	return s.repo.ListUpdates(ctx, orderID)
}

func (s *service) DeleteUpdate(ctx context.Context, actor Actor, orderID, updateID string) error {
	if !actor.IsStaff() {
		return fmt.Errorf("%w: role %q may not delete updates", ErrForbidden, actor.Role)
	}

	if _, err := s.repo.GetUpdate(ctx, orderID, updateID); err != nil {
		return err
	}

	if err := s.repo.DeleteUpdate(ctx, orderID, updateID); err != nil {
		return err
	}

	s.changes.PublishOrderChanged(ctx, orderID)
	return nil
}

func (s *service) DeleteOrder(ctx context.Context, actor Actor, orderID string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "DeleteOrder"),
		zap.String("order_id", orderID),
	)

	if !actor.IsStaff() {
		return fmt.Errorf("%w: role %q may not delete orders", ErrForbidden, actor.Role)
	}

	if err := s.repo.DeleteOrderTx(ctx, orderID); err != nil {
		log.Error("failed to delete order", zap.Error(err))
		return err
	}

	s.changes.PublishOrderChanged(ctx, orderID)

	log.Info("order deleted")
	return nil
}

// appendSystemUpdate writes the system-authored trail entry for a mutation.
// The text is a stable token resolved to display copy by the presentation
// layer; failure is logged but never fails the mutation itself.
func (s *service) appendSystemUpdate(ctx context.Context, orderID, token string) {
	u := &Update{
		ID:         uuid.NewString(),
		OrderID:    orderID,
		AuthorID:   SystemAuthor,
		AuthorName: SystemAuthor,
		Text:       token,
		IsSystem:   true,
		CreatedAt:  s.now(),
	}

	if err := s.repo.InsertUpdate(ctx, u); err != nil {
		logger.FromCtx(ctx).Warn("failed to append system update",
			zap.String("order_id", orderID),
			zap.String("token", token),
			zap.Error(err),
		)
	}
}

// loadVisibleOrder fetches an order and enforces read scope: clients only
// see orders they created.
func (s *service) loadVisibleOrder(ctx context.Context, actor Actor, orderID string) (*Order, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && o.CreatedBy != actor.ID {
		return nil, fmt.Errorf("%w: cannot access another client's order", ErrForbidden)
	}
	return o, nil
}
