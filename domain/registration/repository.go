//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=registration

package registration

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/akeren/event-registration/internal/docstore"
	"github.com/akeren/event-registration/internal/log"
	"github.com/akeren/event-registration/internal/models"
	apperrors "github.com/akeren/event-registration/pkg/errors"
	"github.com/akeren/event-registration/pkg/phone"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	phoneIndexName     = "uniq_phone"
	emailIndexName     = "uniq_email"
	createdAtIndexName = "created_at_id"

	storeUnavailableMessage = "The registration database is currently unreachable. Please try again once connectivity is restored."
)

// searchableFields are matched case-insensitively by the free-text search.
var searchableFields = []string{"name", "college", "course", "role", "phone", "email"}

// canonicalSort is the one listing order used by the admin list and exports:
// oldest first, ties broken by id.
var canonicalSort = bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}

var tracer = otel.Tracer("github.com/akeren/event-registration/domain/registration")

type RegistrationRepository interface {
	// Insert persists a new registrant and returns it with its generated ID.
	Insert(ctx context.Context, registrant *models.Registrant) (*models.Registrant, error)
	// FindDuplicate returns the registrants whose phone (canonical or legacy
	// "+91" form) or email matches. Empty when both are blank.
	FindDuplicate(ctx context.Context, canonicalPhone, email string) ([]*models.Registrant, error)
	// Query returns every registrant matching filter in canonical order.
	Query(ctx context.Context, filter Filter) ([]*models.Registrant, error)
	// Paginate returns one page of matches and the total match count.
	Paginate(ctx context.Context, filter Filter, page Pagination) ([]*models.Registrant, int64, error)
	// Delete hard-deletes by ID and reports how many records were removed.
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	// Count returns the number of stored registrants.
	Count(ctx context.Context) (int64, error)
}

type registrationRepository struct {
	store docstore.Database
}

func NewRegistrationRepository(store docstore.Database) RegistrationRepository {
	return &registrationRepository{store: store}
}

func (rr *registrationRepository) collection(ctx context.Context) (*mongo.Collection, error) {
	db, err := rr.store.Database(ctx)
	if err != nil {
		return nil, apperrors.NewServiceUnavailableError(storeUnavailableMessage, err)
	}
	return db.Collection(models.RegistrationsCollection), nil
}

func (rr *registrationRepository) Insert(ctx context.Context, registrant *models.Registrant) (_ *models.Registrant, err error) {
	ctx, span := startSpan(ctx, "Insert")
	defer func() { endSpan(span, err) }()

	coll, err := rr.collection(ctx)
	if err != nil {
		return nil, err
	}

	result, err := coll.InsertOne(ctx, registrant)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			fields := duplicateIndexFields(err)
			return nil, apperrors.NewDuplicateError(duplicateMessage(fields), fields, err)
		}
		return nil, storeError("unable to save registration", err)
	}

	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		registrant.ID = id
	}

	return registrant, nil
}

// duplicateFilters returns one filter per field that can collide. Email
// matches case-insensitively so older mixed-case records are still found.
func duplicateFilters(canonicalPhone, email string) []bson.M {
	var filters []bson.M
	if canonicalPhone != "" {
		filters = append(filters, bson.M{"phone": bson.M{"$in": phone.LegacyForms(canonicalPhone)}})
	}
	if email != "" {
		filters = append(filters, bson.M{"email": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(email) + "$", Options: "i"}})
	}
	return filters
}

// FindDuplicate returns at most one existing record per colliding field.
// Fields are queried separately so several legacy phone forms cannot crowd
// out an email match.
func (rr *registrationRepository) FindDuplicate(ctx context.Context, canonicalPhone, email string) (_ []*models.Registrant, err error) {
	filters := duplicateFilters(canonicalPhone, email)
	if len(filters) == 0 {
		return nil, nil
	}

	ctx, span := startSpan(ctx, "FindDuplicate")
	defer func() { endSpan(span, err) }()

	coll, err := rr.collection(ctx)
	if err != nil {
		return nil, err
	}

	var matches []*models.Registrant
	seen := make(map[primitive.ObjectID]bool)
	for _, filter := range filters {
		var match models.Registrant
		err := coll.FindOne(ctx, filter).Decode(&match)
		if errors.Is(err, mongo.ErrNoDocuments) {
			continue
		}
		if err != nil {
			return nil, storeError("unable to check for existing registrations", err)
		}
		if seen[match.ID] {
			continue
		}
		seen[match.ID] = true
		matches = append(matches, &match)
	}

	return matches, nil
}

func (rr *registrationRepository) Query(ctx context.Context, filter Filter) (_ []*models.Registrant, err error) {
	ctx, span := startSpan(ctx, "Query")
	defer func() { endSpan(span, err) }()

	coll, err := rr.collection(ctx)
	if err != nil {
		return nil, err
	}

	cursor, err := coll.Find(ctx, filter.toBSON(), options.Find().SetSort(canonicalSort))
	if err != nil {
		return nil, storeError("unable to fetch registrations", err)
	}

	records := make([]*models.Registrant, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, storeError("unable to fetch registrations", err)
	}

	return records, nil
}

func (rr *registrationRepository) Paginate(ctx context.Context, filter Filter, page Pagination) (_ []*models.Registrant, _ int64, err error) {
	ctx, span := startSpan(ctx, "Paginate")
	defer func() { endSpan(span, err) }()

	span.SetAttributes(attribute.Int("page", page.Page), attribute.Int("limit", page.Limit))

	coll, err := rr.collection(ctx)
	if err != nil {
		return nil, 0, err
	}

	query := filter.toBSON()

	total, err := coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, storeError("unable to count registrations", err)
	}

	opts := options.Find().
		SetSort(canonicalSort).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))

	cursor, err := coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, storeError("unable to fetch registrations", err)
	}

	records := make([]*models.Registrant, 0, page.Limit)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, 0, storeError("unable to fetch registrations", err)
	}

	return records, total, nil
}

func (rr *registrationRepository) Delete(ctx context.Context, id primitive.ObjectID) (_ int64, err error) {
	ctx, span := startSpan(ctx, "Delete")
	defer func() { endSpan(span, err) }()

	coll, err := rr.collection(ctx)
	if err != nil {
		return 0, err
	}

	result, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, storeError("unable to delete registration", err)
	}

	return result.DeletedCount, nil
}

func (rr *registrationRepository) Count(ctx context.Context) (_ int64, err error) {
	ctx, span := startSpan(ctx, "Count")
	defer func() { endSpan(span, err) }()

	coll, err := rr.collection(ctx)
	if err != nil {
		return 0, err
	}

	total, err := coll.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, storeError("unable to count registrations", err)
	}

	return total, nil
}

// EnsureIndexes creates the uniqueness and ordering indexes. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(models.RegistrationsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetName(phoneIndexName).SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetName(emailIndexName).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"email": bson.M{"$type": "string", "$gt": ""}}),
		},
		{
			Keys:    canonicalSort,
			Options: options.Index().SetName(createdAtIndexName),
		},
	})
	return err
}

// IndexInitializer ensures indexes on every fresh connection. Only
// connectivity failures fail the connection; anything else, such as legacy
// duplicates blocking a unique index, is logged and the store stays usable.
func IndexInitializer(logger *log.Logger) docstore.Initializer {
	return func(ctx context.Context, db *mongo.Database) error {
		err := EnsureIndexes(ctx, db)
		if err == nil || docstore.IsUnavailable(err) {
			return err
		}
		logger.Warn("Registration indexes not ensured", "error", err)
		return nil
	}
}

func storeError(message string, err error) error {
	if docstore.IsUnavailable(err) {
		return apperrors.NewServiceUnavailableError(storeUnavailableMessage, err)
	}
	return apperrors.NewDatabaseError(message, err)
}

func duplicateIndexFields(err error) []string {
	msg := err.Error()
	var fields []string
	if strings.Contains(msg, phoneIndexName) {
		fields = append(fields, "phone")
	}
	if strings.Contains(msg, emailIndexName) {
		fields = append(fields, "email")
	}
	if len(fields) == 0 {
		fields = []string{"phone"}
	}
	return fields
}

func startSpan(ctx context.Context, operation string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "registration.repository."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "mongodb"),
			attribute.String("db.collection", models.RegistrationsCollection),
		),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			span.SetAttributes(attribute.String("error.type", appErr.Type))
		}
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Filter narrows a listing. College matches exactly; Search matches any
// searchable field as a case-insensitive substring.
type Filter struct {
	Search  string
	College string
}

func NewFilter(search, college string) Filter {
	return Filter{Search: strings.TrimSpace(search), College: strings.TrimSpace(college)}
}

func (f Filter) toBSON() bson.M {
	query := bson.M{}

	if f.College != "" {
		query["college"] = f.College
	}

	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		or := make(bson.A, 0, len(searchableFields))
		for _, field := range searchableFields {
			or = append(or, bson.M{field: pattern})
		}
		query["$or"] = or
	}

	return query
}
