package registration

import (
	"context"
	"testing"
	"time"

	"github.com/akeren/event-registration/internal/log"
	"github.com/akeren/event-registration/internal/models"
	apperrors "github.com/akeren/event-registration/pkg/errors"
	"github.com/akeren/event-registration/pkg/report"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2025, 11, 1, 4, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, repo RegistrationRepository) (RegistrationService, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	service := NewRegistrationService(log.NewLoggerWithJSONOutput(), repo, ServiceOptions{
		Location:   report.DefaultLocation(),
		Registerer: reg,
		Now:        func() time.Time { return fixedNow },
	})
	return service, reg
}

func validRequest() *RegisterRequest {
	return &RegisterRequest{
		Name:    "Asha Rao",
		College: "MGM College, Udupi",
		Course:  "BCA",
		Role:    "Student",
		Phone:   "9876543210",
		Email:   "asha@example.com",
	}
}

func submissions(t *testing.T, service RegistrationService, outcome string) float64 {
	t.Helper()
	return testutil.ToFloat64(service.(*registrationService).metrics.submissions.WithLabelValues(outcome))
}

func TestRegistrationService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("accepted submission is stored once with a UTC timestamp", func(t *testing.T) {
		mockRepo := NewMockRegistrationRepository(ctrl)
		service, _ := newTestService(t, mockRepo)

		req := validRequest()
		req.Phone = "+91 98765 43210"
		req.Email = "  Asha@Example.com "

		mockRepo.EXPECT().FindDuplicate(gomock.Any(), "9876543210", "asha@example.com").Return(nil, nil)
		mockRepo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, r *models.Registrant) (*models.Registrant, error) {
				assert.Equal(t, "9876543210", r.Phone)
				assert.Equal(t, "asha@example.com", r.Email)
				assert.Equal(t, models.RoleStudent, r.Role)
				assert.True(t, r.CreatedAt.Equal(fixedNow))
				assert.Equal(t, time.UTC, r.CreatedAt.Location())
				r.ID = primitive.NewObjectID()
				return r, nil
			}).
			Times(1)

		result, err := service.Register(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, "Asha Rao", result.Name)
		assert.Equal(t, "2025-11-01T04:00:00Z", result.CreatedAt)
		assert.Equal(t, "01 Nov 2025 · 09:30 AM", result.RegisteredOn)
		assert.Equal(t, float64(1), submissions(t, service, outcomeAccepted))
	})

	t.Run("every failing rule is reported in order without touching the store", func(t *testing.T) {
		mockRepo := NewMockRegistrationRepository(ctrl)
		service, _ := newTestService(t, mockRepo)

		_, err := service.Register(context.Background(), &RegisterRequest{
			Name:  "   ",
			Role:  "Guest",
			Phone: "12345",
			Email: "not-an-email",
		})

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		assert.Equal(t, []string{
			reasonsByField["Name"],
			reasonsByField["College"],
			reasonsByField["Course"],
			reasonsByField["Role"],
			reasonsByField["Phone"],
			reasonsByField["Email"],
		}, apperrors.GetDetails(err))
		assert.Equal(t, float64(1), submissions(t, service, outcomeRejected))
	})

	t.Run("single failing rule is named", func(t *testing.T) {
		cases := map[string]struct {
			mutate func(*RegisterRequest)
			reason string
		}{
			"empty name":    {func(r *RegisterRequest) { r.Name = "" }, reasonsByField["Name"]},
			"empty college": {func(r *RegisterRequest) { r.College = "" }, reasonsByField["College"]},
			"empty course":  {func(r *RegisterRequest) { r.Course = "" }, reasonsByField["Course"]},
			"invalid role":  {func(r *RegisterRequest) { r.Role = "student" }, reasonsByField["Role"]},
			"landline":      {func(r *RegisterRequest) { r.Phone = "0802345678" }, reasonsByField["Phone"]},
			"email sans at": {func(r *RegisterRequest) { r.Email = "asha.example.com" }, reasonsByField["Email"]},
		}

		for name, tc := range cases {
			tc := tc
			t.Run(name, func(t *testing.T) {
				service, _ := newTestService(t, NewMockRegistrationRepository(ctrl))
				req := validRequest()
				tc.mutate(req)

				_, err := service.Register(context.Background(), req)

				assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
				assert.Equal(t, []string{tc.reason}, apperrors.GetDetails(err))
			})
		}
	})

	t.Run("email is optional", func(t *testing.T) {
		mockRepo := NewMockRegistrationRepository(ctrl)
		service, _ := newTestService(t, mockRepo)

		req := validRequest()
		req.Email = ""

		mockRepo.EXPECT().FindDuplicate(gomock.Any(), "9876543210", "").Return(nil, nil)
		mockRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, r *models.Registrant) (*models.Registrant, error) {
				r.ID = primitive.NewObjectID()
				return r, nil
			})

		result, err := service.Register(context.Background(), req)

		require.NoError(t, err)
		assert.Empty(t, result.Email)
	})

	t.Run("legacy prefixed phone is a duplicate and nothing is inserted", func(t *testing.T) {
		mockRepo := NewMockRegistrationRepository(ctrl)
		service, _ := newTestService(t, mockRepo)

		mockRepo.EXPECT().FindDuplicate(gomock.Any(), "9876543210", "asha@example.com").Return(
			[]*models.Registrant{{ID: primitive.NewObjectID(), Phone: "+919876543210"}}, nil)

		_, err := service.Register(context.Background(), validRequest())

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDuplicate))
		assert.Equal(t, []string{"phone"}, apperrors.GetDetails(err))
		assert.Equal(t, apperrors.StatusConflict, apperrors.HTTPStatusCode(err))
	})

	t.Run("phone and email collisions on different records are both named", func(t *testing.T) {
		mockRepo := NewMockRegistrationRepository(ctrl)
		service, _ := newTestService(t, mockRepo)

		mockRepo.EXPECT().FindDuplicate(gomock.Any(), gomock.Any(), gomock.Any()).Return([]*models.Registrant{
			{Phone: "9876543210"},
			{Phone: "9000000000", Email: "asha@example.com"},
		}, nil)

		_, err := service.Register(context.Background(), validRequest())

		assert.Equal(t, []string{"phone", "email"}, apperrors.GetDetails(err))
	})

	t.Run("unreachable store is reported as unavailable", func(t *testing.T) {
		mockRepo := NewMockRegistrationRepository(ctrl)
		service, _ := newTestService(t, mockRepo)

		mockRepo.EXPECT().FindDuplicate(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, apperrors.NewServiceUnavailableError(storeUnavailableMessage, nil))

		_, err := service.Register(context.Background(), validRequest())

		require.Error(t, err)
		assert.Equal(t, apperrors.StatusServiceUnavailable, apperrors.HTTPStatusCode(err))
		assert.Equal(t, float64(1), submissions(t, service, outcomeUnavailable))
	})

	t.Run("insert race surfaces the storage-level duplicate", func(t *testing.T) {
		mockRepo := NewMockRegistrationRepository(ctrl)
		service, _ := newTestService(t, mockRepo)

		mockRepo.EXPECT().FindDuplicate(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		mockRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).
			Return(nil, apperrors.NewDuplicateError("A registration with this phone number already exists.", []string{"phone"}, nil))

		_, err := service.Register(context.Background(), validRequest())

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDuplicate))
		assert.Equal(t, float64(1), submissions(t, service, outcomeDuplicate))
	})
}

func TestRegistrationService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := NewMockRegistrationRepository(ctrl)
	service, _ := newTestService(t, mockRepo)

	t.Run("defaults and has_more", func(t *testing.T) {
		records := make([]*models.Registrant, 10)
		for i := range records {
			records[i] = &models.Registrant{ID: primitive.NewObjectID(), Name: "R", CreatedAt: fixedNow}
		}

		mockRepo.EXPECT().
			Paginate(gomock.Any(), Filter{Search: "mgm", College: "MGM College, Udupi"}, Pagination{Page: 1, Limit: 10}).
			Return(records, int64(25), nil)

		page, err := service.List(context.Background(), &ListRegistrationsQuery{
			Page: 0, Limit: 0, Search: "  mgm ", College: "MGM College, Udupi",
		})

		require.NoError(t, err)
		assert.Len(t, page.Registrations, 10)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 10, page.Limit)
		assert.Equal(t, int64(25), page.Total)
		assert.True(t, page.HasMore)
	})

	t.Run("last page has no more", func(t *testing.T) {
		mockRepo.EXPECT().
			Paginate(gomock.Any(), Filter{}, Pagination{Page: 3, Limit: 10}).
			Return(make([]*models.Registrant, 0, 5), int64(25), nil)

		page, err := service.List(context.Background(), &ListRegistrationsQuery{Page: 3, Limit: 10})

		require.NoError(t, err)
		assert.False(t, page.HasMore)
		assert.NotNil(t, page.Registrations)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		mockRepo.EXPECT().Paginate(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, int64(0), apperrors.NewServiceUnavailableError(storeUnavailableMessage, nil))

		_, err := service.List(context.Background(), nil)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeServiceUnavailable))
	})
}

func TestRegistrationService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := NewMockRegistrationRepository(ctrl)
	service, _ := newTestService(t, mockRepo)

	t.Run("malformed id never reaches the store", func(t *testing.T) {
		_, err := service.Delete(context.Background(), "not-an-object-id")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeMalformedIdentifier))
		assert.Equal(t, apperrors.StatusBadRequest, apperrors.HTTPStatusCode(err))
	})

	t.Run("removed then not found", func(t *testing.T) {
		id := primitive.NewObjectID()

		gomock.InOrder(
			mockRepo.EXPECT().Delete(gomock.Any(), id).Return(int64(1), nil),
			mockRepo.EXPECT().Delete(gomock.Any(), id).Return(int64(0), nil),
		)

		resp, err := service.Delete(context.Background(), id.Hex())
		require.NoError(t, err)
		assert.Equal(t, int64(1), resp.Deleted)

		_, err = service.Delete(context.Background(), id.Hex())
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestRegistrationService_Export(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := NewMockRegistrationRepository(ctrl)
	service, reg := newTestService(t, mockRepo)

	records := []*models.Registrant{
		{ID: primitive.NewObjectID(), Name: "Asha Rao", College: "MGM College, Udupi", Course: "BCA", Role: models.RoleStudent, Phone: "9876543210", CreatedAt: fixedNow},
	}

	t.Run("empty result is nothing to export", func(t *testing.T) {
		mockRepo.EXPECT().Query(gomock.Any(), Filter{College: "Nowhere"}).Return([]*models.Registrant{}, nil)

		doc, err := service.Export(context.Background(), ExportFormatExcel, &ExportQuery{College: "Nowhere"})

		assert.Nil(t, doc)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNothingToExport))
	})

	t.Run("spreadsheet", func(t *testing.T) {
		mockRepo.EXPECT().Query(gomock.Any(), Filter{}).Return(records, nil)

		doc, err := service.Export(context.Background(), ExportFormatExcel, nil)

		require.NoError(t, err)
		assert.Equal(t, report.SpreadsheetFilename, doc.Filename)
		assert.NotEmpty(t, doc.Body)
	})

	t.Run("pdf", func(t *testing.T) {
		mockRepo.EXPECT().Query(gomock.Any(), Filter{Search: "asha"}).Return(records, nil)

		doc, err := service.Export(context.Background(), ExportFormatPDF, &ExportQuery{Search: "asha"})

		require.NoError(t, err)
		assert.Equal(t, report.PDFContentType, doc.ContentType)
		assert.Equal(t, 1, doc.Pages)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := service.Export(context.Background(), ExportFormat("csv"), nil)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidRequest))
	})

	count, err := testutil.GatherAndCount(reg, "registration_exports_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
