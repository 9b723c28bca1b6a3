package remote

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/databases"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
)

// MongoStore serves the remote store contract from the cases collection
type MongoStore struct {
	DB databases.CaseDatabase
}

// NewMongoStore wraps a case collection
func NewMongoStore(db databases.CaseDatabase) *MongoStore {
	return &MongoStore{DB: db}
}

// FetchCases lists every stored case, oldest first
func (m *MongoStore) FetchCases(ctx context.Context) ([]models.Case, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cases, err := m.DB.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: listing cases: %v", ErrRemoteUnavailable, err)
	}
	for i := range cases {
		cases[i].Source = models.OriginRemote
		if st, err := models.NormalizeCaseStatus(string(cases[i].Status)); err == nil {
			cases[i].Status = st
		} else {
			zap.S().Warnw("stored case has unknown status, treating as New",
				"caseId", cases[i].ID,
				"status", cases[i].Status,
			)
			cases[i].Status = models.StatusNew
		}
		if cases[i].Evidence == nil {
			cases[i].Evidence = []models.Evidence{}
		}
	}
	return cases, nil
}

// SubmitCase inserts the case under its own id. A duplicate id means an earlier sync already
// delivered it, so it counts as accepted.
func (m *MongoStore) SubmitCase(ctx context.Context, c models.Case) (string, error) {
	_, err := m.DB.InsertOne(ctx, c)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return "", fmt.Errorf("%w: inserting case %s: %v", ErrRemoteUnavailable, c.ID, err)
	}
	return c.ID, nil
}

// UpdateCase replaces the stored case, inserting it when it is missing
func (m *MongoStore) UpdateCase(ctx context.Context, c models.Case) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := m.DB.ReplaceOne(ctx, bson.M{"_id": c.ID}, c, opts); err != nil {
		return fmt.Errorf("%w: replacing case %s: %v", ErrRemoteUnavailable, c.ID, err)
	}
	return nil
}

// DeleteCase removes the stored case
func (m *MongoStore) DeleteCase(ctx context.Context, id string) error {
	if err := m.DB.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("%w: deleting case %s: %v", ErrRemoteUnavailable, id, err)
	}
	return nil
}

// Disabled is the remote store used when no remote is configured. Every call fails, so all
// cases stay in the local queue.
type Disabled struct{}

// FetchCases always fails
func (Disabled) FetchCases(context.Context) ([]models.Case, error) {
	return nil, fmt.Errorf("%w: remote store disabled", ErrRemoteUnavailable)
}

// SubmitCase always fails
func (Disabled) SubmitCase(context.Context, models.Case) (string, error) {
	return "", fmt.Errorf("%w: remote store disabled", ErrRemoteUnavailable)
}

// UpdateCase always fails
func (Disabled) UpdateCase(context.Context, models.Case) error {
	return fmt.Errorf("%w: remote store disabled", ErrRemoteUnavailable)
}

// DeleteCase always fails
func (Disabled) DeleteCase(context.Context, string) error {
	return fmt.Errorf("%w: remote store disabled", ErrRemoteUnavailable)
}
