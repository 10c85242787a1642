package registration

import (
	"context"
	"strings"
	"time"

	"github.com/akeren/event-registration/internal/log"
	"github.com/akeren/event-registration/internal/models"
	apperrors "github.com/akeren/event-registration/pkg/errors"
	"github.com/akeren/event-registration/pkg/phone"
	"github.com/akeren/event-registration/pkg/report"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExportFormat selects a report generator.
type ExportFormat string

const (
	ExportFormatExcel ExportFormat = "excel"
	ExportFormatPDF   ExportFormat = "pdf"
)

type RegistrationService interface {
	// Register validates, de-duplicates and stores one submission.
	Register(ctx context.Context, req *RegisterRequest) (*RegistrantResponse, error)

	// List returns one page of registrants for the admin console.
	List(ctx context.Context, query *ListRegistrationsQuery) (*RegistrationPageResponse, error)

	// Delete hard-deletes a registrant by its hex ID.
	Delete(ctx context.Context, id string) (*DeleteRegistrationResponse, error)

	// Export renders every registrant matching query in the given format.
	Export(ctx context.Context, format ExportFormat, query *ExportQuery) (*report.Document, error)

	// Count returns the total number of registrants.
	Count(ctx context.Context) (int64, error)
}

type ServiceOptions struct {
	Location    *time.Location
	ReportTitle string
	Registerer  prometheus.Registerer
	Now         func() time.Time
}

type registrationService struct {
	logger     *log.Logger
	repository RegistrationRepository
	validate   *validator.Validate
	generators map[ExportFormat]report.Generator
	location   *time.Location
	metrics    *metrics
	now        func() time.Time
}

func NewRegistrationService(logger *log.Logger, repository RegistrationRepository, opts ServiceOptions) RegistrationService {
	if opts.Location == nil {
		opts.Location = report.DefaultLocation()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	reportOpts := report.Options{Title: opts.ReportTitle, Location: opts.Location, Now: opts.Now}

	return &registrationService{
		logger:     logger,
		repository: repository,
		validate:   newValidator(),
		generators: map[ExportFormat]report.Generator{
			ExportFormatExcel: report.NewSpreadsheetGenerator(reportOpts),
			ExportFormatPDF:   report.NewPDFGenerator(reportOpts),
		},
		location: opts.Location,
		metrics:  newMetrics(opts.Registerer),
		now:      opts.Now,
	}
}

func (s *registrationService) Register(ctx context.Context, req *RegisterRequest) (*RegistrantResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		logger.Error("Register received nil request")
		return nil, apperrors.NewInvalidRequestError("request cannot be nil", nil)
	}

	req.trim()

	if reasons := validationReasons(s.validate, req); len(reasons) > 0 {
		logger.Info("Registration rejected", "reasons", reasons)
		s.metrics.submissions.WithLabelValues(outcomeRejected).Inc()
		return nil, apperrors.NewValidationError("Please correct the highlighted details and try again.", reasons)
	}

	canonicalPhone, _ := phone.Normalize(req.Phone)

	existing, err := s.repository.FindDuplicate(ctx, canonicalPhone, req.Email)
	if err != nil {
		logger.Error("Duplicate check failed", "error", err)
		s.countFailure(err)
		return nil, err
	}

	if fields := collidingFields(existing, canonicalPhone, req.Email); len(fields) > 0 {
		logger.Info("Duplicate registration", "fields", fields, "phone", phone.Mask(canonicalPhone))
		s.metrics.submissions.WithLabelValues(outcomeDuplicate).Inc()
		return nil, apperrors.NewDuplicateError(duplicateMessage(fields), fields, nil)
	}

	registrant := ToRegistrantModel(req, canonicalPhone, s.now())

	created, err := s.repository.Insert(ctx, registrant)
	if err != nil {
		logger.Error("Failed to store registration", "error", err)
		s.countFailure(err)
		return nil, err
	}

	logger.Info("Registration accepted", "id", created.ID.Hex(), "phone", phone.Mask(canonicalPhone))
	s.metrics.submissions.WithLabelValues(outcomeAccepted).Inc()

	resp := ToRegistrantResponse(created, s.formatTime)
	return &resp, nil
}

func (s *registrationService) List(ctx context.Context, query *ListRegistrationsQuery) (*RegistrationPageResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if query == nil {
		query = &ListRegistrationsQuery{}
	}

	page := NewPagination(query.Page, query.Limit)
	filter := NewFilter(query.Search, query.College)

	records, total, err := s.repository.Paginate(ctx, filter, page)
	if err != nil {
		logger.Error("Failed to list registrations", "error", err)
		return nil, err
	}

	items := make([]RegistrantResponse, 0, len(records))
	for _, record := range records {
		items = append(items, ToRegistrantResponse(record, s.formatTime))
	}

	return &RegistrationPageResponse{
		Registrations: items,
		Page:          page.Page,
		Limit:         page.Limit,
		Total:         total,
		HasMore:       page.HasMore(len(records), total),
	}, nil
}

func (s *registrationService) Delete(ctx context.Context, id string) (*DeleteRegistrationResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		logger.Warn("Delete received malformed ID", "id", id)
		return nil, apperrors.NewMalformedIdentifierError("invalid registration ID", err)
	}

	deleted, err := s.repository.Delete(ctx, objectID)
	if err != nil {
		logger.Error("Failed to delete registration", "id", id, "error", err)
		return nil, err
	}

	if deleted == 0 {
		return nil, apperrors.NewNotFoundError("registration not found", nil)
	}

	logger.Info("Registration deleted", "id", id)
	return &DeleteRegistrationResponse{ID: objectID.Hex(), Deleted: deleted}, nil
}

func (s *registrationService) Export(ctx context.Context, format ExportFormat, query *ExportQuery) (*report.Document, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	generator, ok := s.generators[format]
	if !ok {
		return nil, apperrors.NewInvalidRequestError("unsupported export format", nil)
	}

	if query == nil {
		query = &ExportQuery{}
	}
	filter := NewFilter(query.Search, query.College)

	records, err := s.repository.Query(ctx, filter)
	if err != nil {
		logger.Error("Failed to load registrations for export", "format", format, "error", err)
		return nil, err
	}

	if len(records) == 0 {
		return nil, apperrors.NewNothingToExportError("No registrations to export.")
	}

	rows := make([]models.Registrant, 0, len(records))
	for _, record := range records {
		rows = append(rows, *record)
	}

	doc, err := generator.Generate(rows, report.Filter{Search: filter.Search, College: filter.College})
	if err != nil {
		logger.Error("Failed to generate export", "format", format, "error", err)
		return nil, apperrors.NewInternalServerError("unable to generate export", err)
	}

	s.metrics.exports.WithLabelValues(string(format)).Inc()
	logger.Info("Export generated", "format", format, "records", len(rows), "bytes", len(doc.Body))

	return doc, nil
}

func (s *registrationService) Count(ctx context.Context) (int64, error) {
	return s.repository.Count(ctx)
}

func (s *registrationService) formatTime(t time.Time) string {
	return report.FormatTimestamp(t, s.location)
}

func (s *registrationService) countFailure(err error) {
	if apperrors.IsType(err, apperrors.ErrorTypeServiceUnavailable) {
		s.metrics.submissions.WithLabelValues(outcomeUnavailable).Inc()
		return
	}
	if apperrors.IsType(err, apperrors.ErrorTypeDuplicate) {
		s.metrics.submissions.WithLabelValues(outcomeDuplicate).Inc()
		return
	}
	s.metrics.submissions.WithLabelValues(outcomeError).Inc()
}

// collidingFields names which submitted values already belong to a record.
func collidingFields(existing []*models.Registrant, canonicalPhone, email string) []string {
	var phoneHit, emailHit bool
	forms := phone.LegacyForms(canonicalPhone)

	for _, r := range existing {
		for _, form := range forms {
			if r.Phone == form {
				phoneHit = true
			}
		}
		if email != "" && strings.EqualFold(r.Email, email) {
			emailHit = true
		}
	}

	var fields []string
	if phoneHit {
		fields = append(fields, "phone")
	}
	if emailHit {
		fields = append(fields, "email")
	}
	return fields
}

func duplicateMessage(fields []string) string {
	switch {
	case len(fields) > 1:
		return "A registration with this phone number and email already exists."
	case fields[0] == "email":
		return "A registration with this email address already exists."
	default:
		return "A registration with this phone number already exists."
	}
}
