package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/zhouzirui/objectchat/backend/internal/config"
)

// ErrUnavailable is the only error the gateway surfaces. Configuration gaps,
// transport failures, provider errors, timeouts and empty responses all fold
// into it; callers react by taking the template fallback path.
var ErrUnavailable = errors.New("completion provider unavailable")

// Params are the sampling parameters for a single completion call.
type Params struct {
	Temperature float32
	MaxTokens   int
	TopP        float32
}

// provider issues one text-completion request against a hosted model.
type provider interface {
	Complete(ctx context.Context, prompt string, p Params) (string, error)
}

// Gateway wraps the completion provider behind an availability flag that is
// decided once at startup. No retries: a failed call is unavailable for that
// call, the next turn asks again.
type Gateway struct {
	provider  provider
	timeout   time.Duration
	available bool
}

// NewGateway constructs the gateway: configuration check, provider
// construction, then a lightweight verification call. Any failure leaves the
// gateway permanently unavailable for the process lifetime; it never returns
// an error so the service can always start and serve template replies.
func NewGateway(ctx context.Context, cfg config.AIConfig) *Gateway {
	gw := &Gateway{timeout: cfg.Timeout}
	if gw.timeout <= 0 {
		gw.timeout = 20 * time.Second
	}

	if !cfg.Enabled() {
		slog.Info("completion provider not configured, using template replies", "provider", cfg.Provider)
		return gw
	}

	var (
		p   provider
		err error
	)
	switch cfg.Provider {
	case config.ProviderVertex:
		p, err = newVertexProvider(ctx, cfg)
	default:
		p, err = newArkProvider(ctx, cfg)
	}
	if err != nil {
		slog.Warn("completion provider init failed, using template replies", "provider", cfg.Provider, "error", err)
		return gw
	}
	gw.provider = p

	if err := gw.verify(ctx); err != nil {
		slog.Warn("completion provider verification failed, using template replies", "provider", cfg.Provider, "error", err)
		return gw
	}

	gw.available = true
	slog.Info("completion provider ready", "provider", cfg.Provider, "model", cfg.Model)
	return gw
}

// Available reports whether completion calls will be attempted at all.
func (g *Gateway) Available() bool {
	return g != nil && g.available
}

// Complete issues a single completion request. The per-call timeout is
// enforced here; a timeout is unavailable like any other failure.
func (g *Gateway) Complete(ctx context.Context, prompt string, p Params) (string, error) {
	if !g.Available() {
		return "", ErrUnavailable
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.provider.Complete(callCtx, prompt, p)
	if err != nil {
		slog.Warn("completion call failed", "error", err)
		return "", ErrUnavailable
	}
	if strings.TrimSpace(text) == "" {
		slog.Warn("completion returned empty text")
		return "", ErrUnavailable
	}
	return text, nil
}

func (g *Gateway) verify(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if _, err := g.provider.Complete(probeCtx, "Hello", Params{Temperature: 0.1, MaxTokens: 8, TopP: 0.9}); err != nil {
		return fmt.Errorf("verification call: %w", err)
	}
	return nil
}
