package httpclient

import (
	"net/http"
	"time"

	"courier-dispatch/internal/core/logger"

	"go.uber.org/zap"
)

// LoggingRoundTripper logs every outbound request with its status and latency.
type LoggingRoundTripper struct {
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
	// Component tags the log lines, e.g. "routing".
	Component string
}

// RoundTrip executes the request and logs details. Server errors are logged
// at Warn so collaborator degradation shows up without debug logging.
func (lrt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	log := logger.Get()
	if lrt.Component != "" {
		log = log.Named(lrt.Component)
	}

	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("host", req.URL.Host),
		zap.String("path", req.URL.Path),
	}

	log.Debug("HTTP Request Started", fields...)

	resp, err := lrt.Proxied.RoundTrip(req)

	fields = append(fields, zap.Duration("duration", time.Since(start)))

	if err != nil {
		log.Error("HTTP Request Failed", append(fields, zap.Error(err))...)
		return nil, err
	}

	fields = append(fields, zap.Int("status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusInternalServerError {
		log.Warn("HTTP Request Completed With Server Error", fields...)
	} else {
		log.Debug("HTTP Request Completed", fields...)
	}

	return resp, nil
}

// NewClient returns an http.Client with logging middleware.
func NewClient(timeout time.Duration) *http.Client {
	return NewNamedClient("", timeout)
}

// NewNamedClient is NewClient with the log lines tagged by component.
func NewNamedClient(component string, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &LoggingRoundTripper{
			Proxied:   http.DefaultTransport,
			Component: component,
		},
		Timeout: timeout,
	}
}
