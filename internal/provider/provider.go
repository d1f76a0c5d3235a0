// Package provider holds the helpers shared by every upstream adapter:
// defensive numeric coercion and a status-checked JSON GET. Each adapter
// lives in its own subpackage and owns its request budget.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/bitvera/priceoracle/internal/httpx"
)

// maxBody caps how much of an upstream response body is read. The largest
// legitimate payload (six assets from the markets endpoint) is a few KB.
const maxBody = 1 << 20

// ToFloat coerces an arbitrary decoded JSON value to a finite float64.
// Missing, malformed, NaN, and infinite values all become 0 so a single bad
// field never poisons a quote.
func ToFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	case json.Number:
		f, err := n.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}

// GetJSON issues a GET via the shared client, requires a 2xx status, and
// decodes the body into out.
func GetJSON(ctx context.Context, c *httpx.Client, url string, out any) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 256))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
