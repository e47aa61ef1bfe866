package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/opsdesk/incident-report/internal/core/domain"
	"github.com/opsdesk/incident-report/internal/core/ports"
)

const collectionIncidents = "incidents"

// IncidentRepository implements ports.IncidentRepository on MongoDB.
type IncidentRepository struct {
	col *mongo.Collection
}

func NewIncidentRepository(db *mongo.Database) *IncidentRepository {
	return &IncidentRepository{col: db.Collection(collectionIncidents)}
}

func (r *IncidentRepository) Insert(ctx context.Context, inc *domain.Incident) (*domain.Incident, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, inc); err != nil {
		return nil, storeErr("insert incident", err)
	}
	return inc, nil
}

func (r *IncidentRepository) FindByID(ctx context.Context, id string) (*domain.Incident, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var inc domain.Incident
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&inc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIncidentNotFound
		}
		return nil, storeErr("find incident", err)
	}
	return &inc, nil
}

func (r *IncidentRepository) Replace(ctx context.Context, id string, inc *domain.Incident) (*domain.Incident, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": id}, inc)
	if err != nil {
		return nil, storeErr("replace incident", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrIncidentNotFound
	}
	return inc, nil
}

// List returns active incidents, newest first, optionally narrowed by category.
func (r *IncidentRepository) List(ctx context.Context, filter ports.IncidentFilter) ([]domain.Incident, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{"active": true}
	if filter.Category != "" {
		query["category"] = filter.Category
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, storeErr("list incidents", err)
	}
	defer cursor.Close(ctx)

	var incidents []domain.Incident
	if err := cursor.All(ctx, &incidents); err != nil {
		return nil, storeErr("list incidents", err)
	}
	return incidents, nil
}

// EnsureIndexes creates the category/active listing index.
func (r *IncidentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "active", Value: 1}, {Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
