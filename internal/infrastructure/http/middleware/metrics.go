package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InFlightRequests counts requests currently being served, per method
func InFlightRequests(meter metric.Meter) func(next http.Handler) http.Handler {
	inFlight, err := meter.Int64UpDownCounter(
		"catalog.http.requests.in_flight",
		metric.WithDescription("Number of catalog HTTP requests being served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return passThrough
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attrs := metric.WithAttributes(attribute.String("http.request.method", r.Method))
			inFlight.Add(r.Context(), 1, attrs)
			defer inFlight.Add(r.Context(), -1, attrs)

			next.ServeHTTP(w, r)
		})
	}
}

// RequestDuration records how long each request took in milliseconds.
// Requests against a single product also carry its code.
func RequestDuration(meter metric.Meter) func(next http.Handler) http.Handler {
	duration, err := meter.Float64Histogram(
		"catalog.http.request.duration",
		metric.WithDescription("Catalog HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return passThrough
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := RoutePattern(r)
			attrs := []attribute.KeyValue{
				attribute.String("http.request.method", r.Method),
				attribute.String("http.route", route),
				attribute.Int("http.response.status_code", status(ww)),
				attribute.String("catalog.resource", resourceOf(route)),
			}
			if code := productCode(r); code != "" {
				attrs = append(attrs, attribute.String("product.code", code))
			}

			elapsed := float64(time.Since(start).Microseconds()) / 1000
			duration.Record(r.Context(), elapsed, metric.WithAttributes(attrs...))
		})
	}
}

// RoutePattern returns the matched chi route pattern, falling back to the URL path
func RoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func productCode(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.URLParam("code")
	}
	return ""
}

// resourceOf maps "/products/{code}" to "products"
func resourceOf(route string) string {
	first, _, _ := strings.Cut(strings.TrimPrefix(route, "/"), "/")
	if first == "" {
		return "root"
	}
	return first
}

// status reports 200 for handlers that wrote a body without a header
func status(ww middleware.WrapResponseWriter) int {
	if ww.Status() == 0 {
		return http.StatusOK
	}
	return ww.Status()
}

func passThrough(next http.Handler) http.Handler {
	return next
}
