package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mindwell-care/scheduling-api/internal/dto"
	appErrors "github.com/mindwell-care/scheduling-api/pkg/errors"
	"github.com/mindwell-care/scheduling-api/pkg/export"
	"github.com/mindwell-care/scheduling-api/pkg/storage"
)

// ExportFile is a rendered day-sheet document. DownloadToken is set when the
// file was also archived for later retrieval.
type ExportFile struct {
	Filename      string
	ContentType   string
	Data          []byte
	DownloadToken string
}

// ExportService renders a provider's appointments for a date range as a
// downloadable day sheet. When an archive store is configured, each rendered
// sheet is kept on disk and addressable through a signed token.
type ExportService struct {
	providers    providerReader
	appointments appointmentReader
	csv          *export.CSVExporter
	pdf          *export.PDFExporter
	store        *storage.LocalStorage
	signer       *storage.SignedURLSigner
	logger       *zap.Logger
	now          func() time.Time
}

// NewExportService constructs the service. store and signer may be nil to
// disable archiving.
func NewExportService(providers providerReader, appointments appointmentReader, store *storage.LocalStorage, signer *storage.SignedURLSigner, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		providers:    providers,
		appointments: appointments,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		store:        store,
		signer:       signer,
		logger:       logger,
		now:          time.Now,
	}
}

// DaySheet renders the caller's appointments between the requested dates.
// Format is "csv" (default) or "pdf".
func (s *ExportService) DaySheet(ctx context.Context, userID string, query dto.DaySheetQuery) (*ExportFile, error) {
	if userID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	provider, err := s.providers.FindByUserID(ctx, userID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "provider profile not found")
	}

	loc := provider.Location()
	from := query.From
	if from == "" {
		from = s.now().In(loc).Format(dateLayout)
	}
	to := query.To
	if to == "" {
		to = from
	}
	rangeStart, err := time.ParseInLocation(dateLayout, from, loc)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "from must be formatted YYYY-MM-DD")
	}
	rangeEnd, err := time.ParseInLocation(dateLayout, to, loc)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must be formatted YYYY-MM-DD")
	}
	if rangeEnd.Before(rangeStart) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must not precede from")
	}
	rangeEnd = rangeEnd.AddDate(0, 0, 1)

	appointments, err := s.appointments.ListActiveInRange(ctx, provider.ID, rangeStart.UTC(), rangeEnd.UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointments")
	}

	dataset := export.Dataset{
		Headers: []string{"Date", "Start", "End", "Patient", "Status"},
	}
	for i := range appointments {
		a := &appointments[i]
		localStart := a.ScheduledAt.In(loc)
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":    localStart.Format(dateLayout),
			"Start":   localStart.Format("15:04"),
			"End":     a.EndsAt().In(loc).Format("15:04"),
			"Patient": a.PatientID,
			"Status":  string(a.Status),
		})
	}

	var file *ExportFile
	switch query.Format {
	case "", "csv":
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		file = &ExportFile{
			Filename:    fmt.Sprintf("day-sheet-%s-%s.csv", from, to),
			ContentType: "text/csv",
			Data:        data,
		}
	case "pdf":
		title := fmt.Sprintf("Day sheet %s to %s", from, to)
		data, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		file = &ExportFile{
			Filename:    fmt.Sprintf("day-sheet-%s-%s.pdf", from, to),
			ContentType: "application/pdf",
			Data:        data,
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", query.Format))
	}

	s.archive(provider.ID, file)
	return file, nil
}

// archive keeps a copy of the rendered sheet and attaches a signed download
// token. Archive failures only cost the token, never the download itself.
func (s *ExportService) archive(providerID string, file *ExportFile) {
	if s.store == nil || s.signer == nil {
		return
	}
	relPath := path.Join(providerID, file.Filename)
	if _, err := s.store.Save(relPath, file.Data); err != nil {
		s.logger.Warn("failed to archive day sheet", zap.String("path", relPath), zap.Error(err))
		return
	}
	token, _, err := s.signer.Generate(providerID, relPath)
	if err != nil {
		s.logger.Warn("failed to sign day sheet link", zap.String("path", relPath), zap.Error(err))
		return
	}
	file.DownloadToken = token
}

// Archived serves a previously archived day sheet addressed by its signed
// token.
func (s *ExportService) Archived(ctx context.Context, token string) (*ExportFile, error) {
	if s.store == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export archive is disabled")
	}
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")
	}
	handle, err := s.store.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "archived export not found")
	}
	defer handle.Close() //nolint:errcheck
	data, err := io.ReadAll(handle)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read archived export")
	}

	contentType := "text/csv"
	if strings.HasSuffix(relPath, ".pdf") {
		contentType = "application/pdf"
	}
	return &ExportFile{
		Filename:    path.Base(relPath),
		ContentType: contentType,
		Data:        data,
	}, nil
}
