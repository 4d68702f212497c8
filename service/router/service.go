// Package router matches inbound messages against active routes, applies the
// routes' named transformations and fans matched messages out to their
// destinations through the dispatch queue.
package router

import (
	"context"
	"fmt"
	"log"

	"github.com/viant/conduit/internal/clock"
	"github.com/viant/conduit/internal/idgen"
	"github.com/viant/conduit/model"
	"github.com/viant/conduit/service/dao"
	"github.com/viant/conduit/service/dao/route"
	"github.com/viant/conduit/service/event"
	"github.com/viant/conduit/service/messaging"
	"github.com/viant/conduit/service/transform"
	"github.com/viant/conduit/tracing"
	"github.com/viant/toolbox"
)

// Outcome summarises one routing pass.
type Outcome struct {
	Message    *model.Message `json:"message"`
	Status     string         `json:"status"`
	Matched    []string       `json:"matched,omitempty"`
	Dispatched int            `json:"dispatched"`
	Errors     []string       `json:"errors,omitempty"`
}

// Service is the message router.
type Service struct {
	routes     *route.Service
	transforms *transform.Registry
	dispatch   messaging.Queue[model.Message]
	logs       dao.Service[string, model.MessageLog]
	events     *event.Service
}

// New creates a router.
func New(routes *route.Service, transforms *transform.Registry,
	dispatch messaging.Queue[model.Message], logs dao.Service[string, model.MessageLog],
	events *event.Service) *Service {
	if transforms == nil {
		transforms = transform.NewRegistry()
	}
	return &Service{
		routes:     routes,
		transforms: transforms,
		dispatch:   dispatch,
		logs:       logs,
		events:     events,
	}
}

// Route matches the message against active routes in priority order and
// dispatches one copy per destination of every matched route. Matched routes
// are processed independently: a transform or dispatch failure on one route
// is logged and surfaced as an error event without blocking the others.
func (s *Service) Route(ctx context.Context, message *model.Message) (*Outcome, error) {
	ctx, span := tracing.StartSpan(ctx, "router.Route", "INTERNAL")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	if message == nil {
		err = fmt.Errorf("message was nil")
		return nil, err
	}
	if message.ID == "" {
		message.ID = idgen.New()
	}
	if message.CorrelationID == "" {
		message.CorrelationID = idgen.New()
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = clock.Now()
	}
	if message.Headers == nil {
		message.Headers = map[string]interface{}{}
	}
	span.WithAttributes(map[string]string{"message.type": message.MessageType})

	s.log(ctx, message, model.LogStatusReceived, "", "")

	outcome := &Outcome{Message: message, Status: model.LogStatusNoRoute}
	for _, candidate := range s.routes.ActiveByPriority() {
		if !s.matches(message, candidate) {
			continue
		}
		outcome.Matched = append(outcome.Matched, candidate.Name)
		dispatched, routeErr := s.processRoute(ctx, message, candidate)
		outcome.Dispatched += dispatched
		if routeErr != nil {
			outcome.Errors = append(outcome.Errors, routeErr.Error())
		}
	}

	if len(outcome.Matched) == 0 {
		s.log(ctx, message, model.LogStatusNoRoute, "", "")
		s.publish(ctx, event.TypeMessageNoRoute, message)
		return outcome, nil
	}
	if len(outcome.Errors) == len(outcome.Matched) {
		outcome.Status = model.LogStatusError
		return outcome, nil
	}
	outcome.Status = model.LogStatusRouted
	s.publish(ctx, event.TypeMessageRouted, message)
	return outcome, nil
}

// matches applies the pattern and condition checks of one route.
func (s *Service) matches(message *model.Message, candidate *model.Route) bool {
	pattern, err := candidate.CompilePattern()
	if err != nil || !pattern.MatchString(message.MessageType) {
		return false
	}
	for key, expected := range candidate.Conditions {
		switch {
		case key == "source":
			if message.Source != toolbox.AsString(expected) {
				return false
			}
		case len(key) > 7 && key[:7] == "header.":
			actual, ok := message.Headers[key[7:]]
			if !ok || toolbox.AsString(actual) != toolbox.AsString(expected) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// processRoute transforms the message and dispatches one copy per
// destination; failures are logged against the route and surfaced as an
// error event.
func (s *Service) processRoute(ctx context.Context, message *model.Message, candidate *model.Route) (int, error) {
	processed, err := s.transforms.Apply(ctx, candidate.Transformations, message)
	if err != nil {
		s.log(ctx, message, model.LogStatusError, candidate.Name, err.Error())
		s.publish(ctx, event.TypeMessageRouteError, message)
		return 0, err
	}
	dispatched := 0
	for _, destination := range candidate.Destinations {
		outbound := processed.Clone()
		outbound.Destination = destination
		if err = s.dispatch.Publish(ctx, outbound); err != nil {
			s.log(ctx, message, model.LogStatusError, candidate.Name, err.Error())
			s.publish(ctx, event.TypeMessageRouteError, message)
			return dispatched, fmt.Errorf("failed to dispatch to %s: %w", destination, err)
		}
		dispatched++
	}
	s.log(ctx, message, model.LogStatusRouted, candidate.Name, "")
	return dispatched, nil
}

func (s *Service) log(ctx context.Context, message *model.Message, status, routeName, errorMessage string) {
	if s.logs == nil {
		return
	}
	entry := &model.MessageLog{
		ID:            idgen.New(),
		MessageID:     message.ID,
		CorrelationID: message.CorrelationID,
		Source:        message.Source,
		Destination:   message.Destination,
		MessageType:   message.MessageType,
		Payload:       message.Payload,
		Headers:       message.Headers,
		Status:        status,
		RouteName:     routeName,
		ErrorMessage:  errorMessage,
		CreatedAt:     clock.Now(),
	}
	if err := s.logs.Save(ctx, entry); err != nil {
		log.Printf("failed to persist message log for %s: %v", message.ID, err)
	}
}

func (s *Service) publish(ctx context.Context, eventType string, message *model.Message) {
	if s.events == nil {
		return
	}
	publisher, err := event.PublisherOf[*model.Message](s.events)
	if err != nil {
		return
	}
	_ = publisher.Publish(ctx, event.NewEvent(&event.Context{
		CorrelationID: message.CorrelationID,
		MessageID:     message.ID,
		EventType:     eventType,
	}, message.Clone()))
}
