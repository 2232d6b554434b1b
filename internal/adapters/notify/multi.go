package notify

import (
	"context"
	"errors"

	"github.com/alejandrodnm/pumpbot/internal/domain"
	"github.com/alejandrodnm/pumpbot/internal/ports"
)

// Multi hace fan-out a varios notificadores. Intenta todos aunque alguno
// falle y devuelve los errores unidos.
type Multi struct {
	targets []ports.Notifier
}

// NewMulti crea el fan-out.
func NewMulti(targets ...ports.Notifier) *Multi {
	return &Multi{targets: targets}
}

// Notify entrega el evento a todos los targets.
func (m *Multi) Notify(ctx context.Context, subject, body string) error {
	var errs []error
	for _, t := range m.targets {
		if err := t.Notify(ctx, subject, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ReportPositions entrega el reporte a todos los targets.
func (m *Multi) ReportPositions(ctx context.Context, positions []domain.Position) error {
	var errs []error
	for _, t := range m.targets {
		if err := t.ReportPositions(ctx, positions); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
