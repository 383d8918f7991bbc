package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/koscakluka/ema-dictation/internal/config"
	"github.com/koscakluka/ema-dictation/internal/history"
)

// delivery hands a finished dictation to wherever the user reads it from.
type delivery interface {
	Deliver(ctx context.Context, text, transcript string) error
}

type outputDelivery struct {
	// copyText is nil when clipboard output is disabled
	copyText     func(text string) error
	history      *history.Store
	historyLimit int
}

func newOutputDelivery(ctx context.Context, cfg *config.Config) (*outputDelivery, error) {
	d := &outputDelivery{historyLimit: cfg.History.Limit}
	if cfg.Output.Clipboard {
		d.copyText = clipboard.WriteAll
	}
	if cfg.History.Enabled {
		store, err := openHistory(ctx, cfg.History)
		if err != nil {
			return nil, err
		}
		d.history = store
	}
	return d, nil
}

func openHistory(ctx context.Context, cfg config.HistoryConfig) (*history.Store, error) {
	path, err := cfg.ResolvedPath()
	if err != nil {
		return nil, err
	}
	store, err := history.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history at %s: %w", path, err)
	}
	return store, nil
}

// Deliver copies the text and records it. A failing clipboard does not keep
// the entry out of the history.
func (d *outputDelivery) Deliver(ctx context.Context, text, transcript string) error {
	if text == "" {
		return nil
	}

	var errs error
	if d.copyText != nil {
		if err := d.copyText(text); err != nil {
			errs = errors.Join(errs, fmt.Errorf("failed to copy to clipboard: %w", err))
		}
	}
	if d.history != nil {
		if _, err := d.history.Add(ctx, text, transcript); err != nil {
			errs = errors.Join(errs, err)
		} else if err := d.history.Trim(ctx, d.historyLimit); err != nil {
			logger.WarnContext(ctx, "failed to trim history", "error", err)
		}
	}
	return errs
}

func (d *outputDelivery) Close() error {
	if d.history == nil {
		return nil
	}
	return d.history.Close()
}
