package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"robot-factory-backend/internal/model"
	"robot-factory-backend/internal/store"
)

// Notifier emails customers whose pending orders reference a robot that became available.
type Notifier struct {
	store  store.Store
	mailer Mailer
	from   string
	log    *zap.Logger
}

// NewNotifier creates a notifier sending from the given default address.
func NewNotifier(s store.Store, mailer Mailer, from string, log *zap.Logger) *Notifier {
	return &Notifier{
		store:  s,
		mailer: mailer,
		from:   from,
		log:    log,
	}
}

// RobotSaved is a store.SaveHook. It sends one email per pending order for the
// robot's serial and marks each order notified right after its email goes out.
// The first failure stops the loop; orders handled before it stay notified.
func (n *Notifier) RobotSaved(ctx context.Context, robot *model.Robot) error {
	if !robot.Available {
		return nil
	}

	orders, err := n.store.PendingOrders(ctx, robot.Serial)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return nil
	}

	n.log.Info("notifying customers about available robot",
		zap.String("serial", robot.Serial),
		zap.Int("orders", len(orders)),
	)

	for i := range orders {
		order := &orders[i]
		msg := availabilityMessage(robot, n.from, order.Customer.Email)
		if err := n.mailer.Send(ctx, msg); err != nil {
			n.log.Error("failed to send availability email",
				zap.Int64("order_id", order.ID),
				zap.String("serial", robot.Serial),
				zap.Error(err),
			)
			return fmt.Errorf("notify order %d: %w", order.ID, err)
		}
		if err := n.store.MarkOrderNotified(ctx, order); err != nil {
			return err
		}
	}
	return nil
}

func availabilityMessage(robot *model.Robot, from, to string) Message {
	return Message{
		From:    from,
		To:      []string{to},
		Subject: fmt.Sprintf("Робот %s %s теперь в наличии", robot.Model, robot.Version),
		Body: fmt.Sprintf("Добрый день!\n\n"+
			"Недавно вы интересовались нашим роботом модели %s, версии %s. \n"+
			"Этот робот теперь в наличии. Если вам подходит этот вариант, пожалуйста, свяжитесь с нами.",
			robot.Model, robot.Version),
	}
}
