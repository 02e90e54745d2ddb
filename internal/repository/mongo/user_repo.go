package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iamasit07/game-records/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Nome         string             `bson:"nome"`
	Picture      string             `bson:"picture"`
	PasswordHash string             `bson:"passwordHash"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func (d userDocument) toDomain() domain.User {
	return domain.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Nome:         d.Nome,
		Picture:      d.Picture,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}

type UserRepo struct {
	coll *mongo.Collection
}

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{coll: db.Collection(usersCollection)}
}

func (r *UserRepo) CreateUser(ctx context.Context, u domain.User) (string, error) {
	doc := userDocument{
		ID:           primitive.NewObjectID(),
		Username:     u.Username,
		Nome:         u.Nome,
		Picture:      u.Picture,
		PasswordHash: u.PasswordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("username %q: %w", u.Username, domain.ErrConflict)
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	return doc.ID.Hex(), nil
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.D) (*domain.User, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u := doc.toDomain()
	return &u, nil
}

func (r *UserRepo) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "username", Value: username}})
}

// objectIDs keeps the ids that parse as ObjectIDs; the rest cannot match a user.
func objectIDs(ids []string) []primitive.ObjectID {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	return oids
}

// FindByIDs runs a single "_id in set" query
func (r *UserRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	users := make([]domain.User, 0, len(ids))
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return users, nil
	}

	cur, err := r.coll.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: oids}}}})
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	for _, d := range docs {
		users = append(users, d.toDomain())
	}
	return users, nil
}
