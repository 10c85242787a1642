//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=options

package options

import (
	"context"
	"errors"

	"github.com/akeren/event-registration/internal/docstore"
	"github.com/akeren/event-registration/internal/models"
	apperrors "github.com/akeren/event-registration/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"
)

const storeUnavailableMessage = "The registration database is currently unreachable. Please try again once connectivity is restored."

type OptionsRepository interface {
	// Load returns the persisted option lists, or nil when none were saved.
	Load(ctx context.Context) (*models.FormOptions, error)
	// Save upserts the singleton options document.
	Save(ctx context.Context, opts models.FormOptions) error
	// SeedIfMissing writes opts only when no document exists yet and reports
	// whether it did.
	SeedIfMissing(ctx context.Context, opts models.FormOptions) (bool, error)
}

type optionsRepository struct {
	store docstore.Database
}

func NewOptionsRepository(store docstore.Database) OptionsRepository {
	return &optionsRepository{store: store}
}

func (repo *optionsRepository) collection(ctx context.Context) (*mongo.Collection, error) {
	db, err := repo.store.Database(ctx)
	if err != nil {
		return nil, apperrors.NewServiceUnavailableError(storeUnavailableMessage, err)
	}
	return db.Collection(models.MetaCollection), nil
}

func (repo *optionsRepository) Load(ctx context.Context) (*models.FormOptions, error) {
	coll, err := repo.collection(ctx)
	if err != nil {
		return nil, err
	}

	var doc models.FormOptions
	err = coll.FindOne(ctx, bson.M{"_id": models.FormOptionsDocumentID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("unable to load form options", err)
	}

	return &doc, nil
}

func (repo *optionsRepository) Save(ctx context.Context, opts models.FormOptions) error {
	coll, err := repo.collection(ctx)
	if err != nil {
		return err
	}

	_, err = coll.UpdateOne(ctx,
		bson.M{"_id": models.FormOptionsDocumentID},
		bson.M{"$set": bson.M{"colleges": opts.Colleges, "courses": opts.Courses}},
		mongooptions.Update().SetUpsert(true),
	)
	if err != nil {
		return storeError("unable to save form options", err)
	}

	return nil
}

func (repo *optionsRepository) SeedIfMissing(ctx context.Context, opts models.FormOptions) (bool, error) {
	coll, err := repo.collection(ctx)
	if err != nil {
		return false, err
	}

	result, err := coll.UpdateOne(ctx,
		bson.M{"_id": models.FormOptionsDocumentID},
		bson.M{"$setOnInsert": bson.M{"colleges": opts.Colleges, "courses": opts.Courses}},
		mongooptions.Update().SetUpsert(true),
	)
	if err != nil {
		return false, storeError("unable to seed form options", err)
	}

	return result.UpsertedCount > 0, nil
}

func storeError(message string, err error) error {
	if docstore.IsUnavailable(err) {
		return apperrors.NewServiceUnavailableError(storeUnavailableMessage, err)
	}
	return apperrors.NewDatabaseError(message, err)
}
