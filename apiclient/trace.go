package apiclient

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const (
	green   = "\033[32m"
	blue    = "\033[34m"
	cyan    = "\033[36m"
	yellow  = "\033[33m"
	magenta = "\033[35m"
	red     = "\033[31m"
	gray    = "\033[90m"
	reset   = "\033[0m"
)

var methodColors = map[string]string{
	http.MethodGet:    green,
	http.MethodPost:   blue,
	http.MethodPut:    cyan,
	http.MethodDelete: yellow,
	http.MethodPatch:  magenta,
}

// traceTransport prints one coloured line per request, for watching traffic in DEV.
type traceTransport struct {
	next http.RoundTripper
	mu   sync.Mutex
	out  io.Writer
}

func (t *traceTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)

	status := red + "ERR" + reset
	if err == nil {
		status = statusColour(resp.StatusCode) + fmt.Sprint(resp.StatusCode) + reset
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "[%s] %s %s %s\n", colourMethod(req.Method), req.URL.Path, status, time.Since(start).Round(time.Millisecond))
	return resp, err
}

func colourMethod(method string) string {
	padded := fmt.Sprintf(" %-7s", method)
	if colour, ok := methodColors[method]; ok {
		return colour + padded + reset
	}
	return gray + padded + reset
}

func statusColour(code int) string {
	switch {
	case code >= 500:
		return red
	case code >= 400:
		return yellow
	default:
		return green
	}
}

// withTrace returns a copy of hc whose transport also writes a trace line to out.
func withTrace(hc *http.Client, out io.Writer) *http.Client {
	next := hc.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	traced := *hc
	traced.Transport = &traceTransport{next: next, out: out}
	return &traced
}
