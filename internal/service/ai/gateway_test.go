package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zhouzirui/objectchat/backend/internal/config"
)

type scriptedProvider struct {
	text string
	err  error
}

func (s scriptedProvider) Complete(context.Context, string, Params) (string, error) {
	return s.text, s.err
}

func TestNewGatewayUnconfigured(t *testing.T) {
	gw := NewGateway(context.Background(), config.AIConfig{})
	if gw == nil {
		t.Fatal("NewGateway must never return nil")
	}
	if gw.Available() {
		t.Fatal("unconfigured gateway must be unavailable")
	}

	_, err := gw.Complete(context.Background(), "hi", Params{})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestNilGatewayUnavailable(t *testing.T) {
	var gw *Gateway
	if gw.Available() {
		t.Fatal("nil gateway must report unavailable")
	}
}

func TestCompleteFoldsProviderError(t *testing.T) {
	gw := &Gateway{
		provider:  scriptedProvider{err: errors.New("transport down")},
		timeout:   time.Second,
		available: true,
	}

	_, err := gw.Complete(context.Background(), "hi", Params{})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestCompleteFoldsEmptyText(t *testing.T) {
	gw := &Gateway{
		provider:  scriptedProvider{text: "   \n"},
		timeout:   time.Second,
		available: true,
	}

	_, err := gw.Complete(context.Background(), "hi", Params{})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestCompletePassesThroughText(t *testing.T) {
	gw := &Gateway{
		provider:  scriptedProvider{text: "I am a lamp."},
		timeout:   time.Second,
		available: true,
	}

	text, err := gw.Complete(context.Background(), "hi", Params{})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "I am a lamp." {
		t.Fatalf("text = %q", text)
	}
}

func TestVerifyFailureLeavesUnavailable(t *testing.T) {
	gw := &Gateway{provider: scriptedProvider{err: errors.New("probe failed")}, timeout: time.Second}
	if err := gw.verify(context.Background()); err == nil {
		t.Fatal("expected verification error")
	}
	if gw.Available() {
		t.Fatal("gateway must stay unavailable after a failed probe")
	}
}
