package messaging

import (
	"context"

	"github.com/oksasatya/go-ddd-user-service/internal/application"
	"github.com/oksasatya/go-ddd-user-service/pkg/helpers"
)

// RoutingPattern matches every user lifecycle event.
const RoutingPattern = "user.*"

type jsonPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, body any) error
}

// UserEventPublisher routes each event by its type, e.g. "user.created".
type UserEventPublisher struct {
	pub jsonPublisher
}

func NewUserEventPublisher(pub *helpers.RabbitPublisher) *UserEventPublisher {
	return &UserEventPublisher{pub: pub}
}

func (p *UserEventPublisher) Publish(ctx context.Context, ev application.UserEvent) error {
	return p.pub.PublishJSON(ctx, string(ev.Type), ev)
}

var _ application.EventPublisher = (*UserEventPublisher)(nil)
