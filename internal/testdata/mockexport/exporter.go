package mockexport

import (
	"context"

	"jobclicks/internal/domain"

	"github.com/stretchr/testify/mock"
)

type Exporter struct {
	mock.Mock
}

// Interface compliance check
var _ domain.ExportClient = &Exporter{}

func (m *Exporter) Export(ctx context.Context, records []domain.ExportRecord, window domain.DateWindow) error {
	args := m.Called(ctx, records, window)
	return args.Error(0)
}
