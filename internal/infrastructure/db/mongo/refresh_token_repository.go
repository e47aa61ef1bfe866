package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/opsdesk/incident-report/internal/core/domain"
)

const collectionRefreshTokens = "refresh_tokens"

// RefreshTokenRepository implements ports.RefreshTokenStore on MongoDB.
// Documents are append-only except for the one-shot revocation transition.
type RefreshTokenRepository struct {
	col *mongo.Collection
}

func NewRefreshTokenRepository(db *mongo.Database) *RefreshTokenRepository {
	return &RefreshTokenRepository{col: db.Collection(collectionRefreshTokens)}
}

func (r *RefreshTokenRepository) FindByValue(ctx context.Context, token string) (*domain.RefreshToken, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rt domain.RefreshToken
	if err := r.col.FindOne(ctx, bson.M{"token": token}).Decode(&rt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInvalidToken
		}
		return nil, storeErr("find refresh token", err)
	}
	return &rt, nil
}

func (r *RefreshTokenRepository) Insert(ctx context.Context, rt *domain.RefreshToken) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, rt); err != nil {
		return storeErr("insert refresh token", err)
	}
	return nil
}

// Revoke is the conditional write guarding the whole rotation protocol. The
// filter matches only while revoked_at is unset and the token is unexpired,
// so two concurrent attempts on the same token cannot both pass: the loser
// sees zero matches and gets ErrInvalidToken. Returns the pre-transition
// document so the caller learns the owner without a second read.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, token string, revokedAt time.Time, revokedByIP, replacedBy string) (*domain.RefreshToken, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"token":      token,
		"revoked_at": nil,
		"expires_at": bson.M{"$gt": revokedAt},
	}
	set := bson.M{
		"revoked_at":    revokedAt,
		"revoked_by_ip": revokedByIP,
	}
	if replacedBy != "" {
		set["replaced_by_token"] = replacedBy
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)
	var rt domain.RefreshToken
	err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&rt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInvalidToken
		}
		return nil, storeErr("revoke refresh token", err)
	}
	return &rt, nil
}

func (r *RefreshTokenRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.RefreshToken, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, storeErr("list refresh tokens", err)
	}
	defer cursor.Close(ctx)

	var tokens []domain.RefreshToken
	if err := cursor.All(ctx, &tokens); err != nil {
		return nil, storeErr("list refresh tokens", err)
	}
	return tokens, nil
}

// EnsureIndexes creates the unique token index and the owner lookup index.
// No TTL index: expired tokens are kept for audit and rejected lazily.
func (r *RefreshTokenRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
