package telemetry

import (
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentResty wraps every request made through a resty client in a
// span carrying method, url, and response status.
func InstrumentResty(client *resty.Client, tracerName string) {
	tracer := otel.Tracer(tracerName)

	client.OnBeforeRequest(func(cli *resty.Client, req *resty.Request) error {
		ctx, _ := tracer.Start(req.Context(), req.Method)
		req.SetContext(ctx)
		return nil
	})
	client.OnAfterResponse(func(cli *resty.Client, res *resty.Response) error {
		span := trace.SpanFromContext(res.Request.Context())
		defer span.End()

		span.SetAttributes(
			attribute.String("url", res.Request.URL),
			attribute.Int("status", res.StatusCode()),
			attribute.Int64("duration_ms", res.Time().Milliseconds()),
		)
		if res.StatusCode() >= 400 {
			span.SetStatus(codes.Error, res.Status())
		}
		return nil
	})
	client.OnError(func(req *resty.Request, err error) {
		span := trace.SpanFromContext(req.Context())
		defer span.End()

		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
	})
}
