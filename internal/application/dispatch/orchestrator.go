// Package dispatch runs the dispatch form flow: guard against duplicate
// submits, create the dispatch, then adapt its route into a map preview.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/logistics/console/internal/domain/dispatch"
	"github.com/logistics/console/internal/domain/route"
	"github.com/logistics/console/internal/domain/shared"
	"github.com/logistics/console/internal/infrastructure/logger"
	"github.com/logistics/console/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// MsgRoutePreviewUnavailable titles the warning shown when a created
// dispatch has no renderable route
const MsgRoutePreviewUnavailable = "Route preview unavailable"

// Backend is the part of the backend API the dispatch flow uses
type Backend interface {
	CreateDispatch(ctx context.Context, req dispatch.Request) (dispatch.Response, error)
}

// Directions resolves driving directions
type Directions interface {
	Route(ctx context.Context, req route.DirectionsRequest) (*route.DirectionsResult, error)
}

// Config tunes the orchestrator
type Config struct {
	Center      route.Coordinate
	Zoom        int
	InFlightTTL time.Duration
}

// Result is what the dispatch page renders after a submit
type Result struct {
	Status   dispatch.SubmissionStatus `json:"status"`
	Form     dispatch.Form             `json:"form"`
	Response *dispatch.Response        `json:"dispatch,omitempty"`
	MapView  route.MapView             `json:"map"`
	Summary  *route.RouteSummary       `json:"summary,omitempty"`
	Notices  []shared.Notice           `json:"notices"`
}

// Preview is a route adapted for the map
type Preview struct {
	MapView route.MapView      `json:"map"`
	Summary route.RouteSummary `json:"summary"`
	Status  route.Status       `json:"status"`
}

// Orchestrator drives dispatch submissions
type Orchestrator struct {
	backend    Backend
	directions Directions
	guard      shared.InFlightGuard
	cfg        Config
	metrics    *telemetry.ConsoleMetrics
	logger     *zap.Logger
}

// NewOrchestrator creates an orchestrator. metrics may be nil.
func NewOrchestrator(backend Backend, directions Directions, guard shared.InFlightGuard, cfg Config, metrics *telemetry.ConsoleMetrics, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Zoom == 0 && cfg.Center == (route.Coordinate{}) {
		cfg.Center, cfg.Zoom = route.DefaultCenter, route.DefaultZoom
	}
	if cfg.InFlightTTL <= 0 {
		cfg.InFlightTTL = 2 * time.Minute
	}
	return &Orchestrator{
		backend:    backend,
		directions: directions,
		guard:      guard,
		cfg:        cfg,
		metrics:    metrics,
		logger:     logger,
	}
}

// EmptyMapView returns the map before any directions arrive
func (o *Orchestrator) EmptyMapView() route.MapView {
	return route.NewMapView(o.cfg.Center, o.cfg.Zoom)
}

// Submit runs one submission of form. key identifies the submitting form
// session; while a submission with the same key is in flight further
// submits fail with shared.ErrSubmissionPending. An empty key skips the guard.
//
// The returned Result is never nil. A backend failure returns the error
// alongside a Result carrying the failure notice and the entered values.
// Route preview problems never fail a created dispatch; they add a warning.
func (o *Orchestrator) Submit(ctx context.Context, key string, form dispatch.Form) (*Result, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "dispatch", "submit",
		attribute.String(telemetry.SpanAttrSubmissionKey, key))
	defer span.End()
	log := logger.WithLogger(ctx, o.logger)

	result := &Result{
		Status:  dispatch.SubmissionIdle,
		Form:    form,
		MapView: o.EmptyMapView(),
		Notices: []shared.Notice{},
	}

	req := form.ToRequest()
	if err := req.Validate(); err != nil {
		o.metrics.RecordDispatch(ctx, telemetry.OutcomeInvalid, 0)
		result.Notices = append(result.Notices, shared.ErrorNotice(err.Error()))
		return result, err
	}

	if key != "" && o.guard != nil {
		token, acquired, err := o.guard.Acquire(ctx, key, o.cfg.InFlightTTL)
		switch {
		case err != nil:
			log.Warn("In-flight guard unavailable, submitting unguarded", zap.Error(err))
		case !acquired:
			o.metrics.RecordDispatch(ctx, telemetry.OutcomeRejected, 0)
			return result, shared.ErrSubmissionPending
		default:
			defer func() {
				if err := o.guard.Release(context.WithoutCancel(ctx), key, token); err != nil {
					log.Warn("Failed to release in-flight guard", zap.Error(err))
				}
			}()
		}
	}

	sub := dispatch.NewSubmission(form)
	if err := sub.Begin(); err != nil {
		return result, err
	}

	// Submitted calls are never cancelled, even if the client goes away.
	callCtx := context.WithoutCancel(ctx)
	resp, err := o.backend.CreateDispatch(callCtx, req)
	if err != nil {
		_ = sub.Fail(err)
		o.metrics.RecordDispatch(ctx, telemetry.OutcomeFailed, sub.Elapsed())
		telemetry.RecordError(span, err)
		log.Warn("Dispatch creation failed", zap.Error(err))

		result.Status = sub.Status
		notice, _ := sub.Acknowledge()
		result.Notices = append(result.Notices, notice)
		return result, err
	}

	_ = sub.Succeed(resp)
	o.metrics.RecordDispatch(ctx, telemetry.OutcomeSucceeded, sub.Elapsed())
	span.SetAttributes(
		attribute.Int64(telemetry.SpanAttrDispatchID, resp.DispatchID),
		attribute.Int(telemetry.SpanAttrRouteStops, resp.Route.Len()),
	)
	log.Info("Dispatch created",
		zap.Int64("dispatch_id", resp.DispatchID),
		zap.Int("route_stops", resp.Route.Len()),
		zap.Duration("elapsed", sub.Elapsed()),
	)

	result.Status = sub.Status
	result.Response = sub.Response
	notice, _ := sub.Acknowledge()
	result.Notices = append(result.Notices, notice)

	preview, err := o.Preview(callCtx, resp.Route)
	result.MapView = preview.MapView
	result.Summary = &preview.Summary
	if err != nil {
		result.Notices = append(result.Notices, shared.WarningNotice(MsgRoutePreviewUnavailable, previewProblem(err)))
	} else if !preview.MapView.HasDirections() {
		result.Notices = append(result.Notices, shared.WarningNotice(MsgRoutePreviewUnavailable,
			fmt.Sprintf("Directions status: %s", preview.Status)))
	}
	return result, nil
}

// Preview adapts a backend route and asks the provider for directions.
// An invalid or empty route fails before any provider request. A non-OK
// provider status is not an error: the map simply stays empty.
func (o *Orchestrator) Preview(ctx context.Context, resp route.RouteResponse) (Preview, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "route", "preview",
		attribute.Int(telemetry.SpanAttrRouteStops, resp.Len()))
	defer span.End()

	view := o.EmptyMapView()
	out := Preview{MapView: view, Summary: route.Summarize(resp, view)}

	req, err := route.BuildDirectionsRequest(resp)
	if err != nil {
		telemetry.RecordError(span, err)
		return out, err
	}

	dirs, err := o.directions.Route(ctx, req)
	if err != nil {
		o.metrics.RecordDirections(ctx, "error")
		telemetry.RecordError(span, err)
		return out, err
	}

	o.metrics.RecordDirections(ctx, string(dirs.Status))
	span.SetAttributes(attribute.String(telemetry.SpanAttrDirections, string(dirs.Status)))
	out.Status = dirs.Status
	view.Apply(dirs)
	out.MapView = view
	out.Summary = route.Summarize(resp, view)
	return out, nil
}

func previewProblem(err error) string {
	switch {
	case errors.Is(err, route.ErrEmptyRoute):
		return "The dispatch route has no points"
	case errors.Is(err, route.ErrInvalidCoordinate):
		return "The dispatch route contains an invalid coordinate"
	default:
		return "Directions could not be retrieved"
	}
}
