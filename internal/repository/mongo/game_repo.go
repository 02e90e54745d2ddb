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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type gameDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Nome        string             `bson:"nome"`
	Description string             `bson:"description"`
	Image       string             `bson:"image"`
	UserID      string             `bson:"userId"`
	Status      string             `bson:"status"`
	UpdatedBy   string             `bson:"updatedBy,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d gameDocument) toDomain() domain.Game {
	return domain.Game{
		ID:          d.ID.Hex(),
		Nome:        d.Nome,
		Description: d.Description,
		Image:       d.Image,
		UserID:      d.UserID,
		Status:      domain.GameStatus(d.Status),
		UpdatedBy:   d.UpdatedBy,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func gameFromDomain(g domain.Game) gameDocument {
	return gameDocument{
		Nome:        g.Nome,
		Description: g.Description,
		Image:       g.Image,
		UserID:      g.UserID,
		Status:      string(g.Status),
		UpdatedBy:   g.UpdatedBy,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

// recentProjection is the field subset read by the recent reports.
var recentProjection = bson.D{
	{Key: "nome", Value: 1},
	{Key: "image", Value: 1},
	{Key: "userId", Value: 1},
	{Key: "updatedAt", Value: 1},
	{Key: "updatedBy", Value: 1},
}

// GameRepo stores games as documents in the games collection.
type GameRepo struct {
	coll *mongo.Collection
}

func NewGameRepo(db *mongo.Database) *GameRepo {
	return &GameRepo{coll: db.Collection(gamesCollection)}
}

func filterDocument(filter domain.GameFilter) bson.D {
	switch filter.Kind {
	case domain.FilterByUser:
		return bson.D{{Key: "userId", Value: filter.UserID}}
	case domain.FilterByUserAndStatus:
		return bson.D{{Key: "userId", Value: filter.UserID}, {Key: "status", Value: string(filter.Status)}}
	default:
		return bson.D{}
	}
}

func updateDocument(patch domain.GamePatch, updatedAt time.Time) bson.D {
	set := bson.D{{Key: "updatedAt", Value: updatedAt}}
	if patch.Nome != nil {
		set = append(set, bson.E{Key: "nome", Value: *patch.Nome})
	}
	if patch.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *patch.Description})
	}
	if patch.Image != nil {
		set = append(set, bson.E{Key: "image", Value: *patch.Image})
	}
	if patch.UserID != nil {
		set = append(set, bson.E{Key: "userId", Value: *patch.UserID})
	}
	if patch.Status != nil {
		set = append(set, bson.E{Key: "status", Value: string(*patch.Status)})
	}
	if patch.UpdatedBy != nil {
		set = append(set, bson.E{Key: "updatedBy", Value: *patch.UpdatedBy})
	}
	return bson.D{{Key: "$set", Value: set}}
}

func (r *GameRepo) decodeAll(ctx context.Context, cur *mongo.Cursor) ([]domain.Game, error) {
	var docs []gameDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode games: %w", err)
	}
	games := make([]domain.Game, 0, len(docs))
	for _, d := range docs {
		games = append(games, d.toDomain())
	}
	return games, nil
}

func (r *GameRepo) Find(ctx context.Context, filter domain.GameFilter) ([]domain.Game, error) {
	cur, err := r.coll.Find(ctx, filterDocument(filter))
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	return r.decodeAll(ctx, cur)
}

// FindByID retrieves a game by id; ids that are not ObjectIDs match nothing
func (r *GameRepo) FindByID(ctx context.Context, id string) (*domain.Game, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var doc gameDocument
	err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game by ID: %w", err)
	}
	g := doc.toDomain()
	return &g, nil
}

func (r *GameRepo) FindRecent(ctx context.Context, filter domain.GameFilter, limit int) ([]domain.Game, error) {
	opts := options.Find().
		SetProjection(recentProjection).
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, filterDocument(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent games: %w", err)
	}
	return r.decodeAll(ctx, cur)
}

func (r *GameRepo) CountByStatus(ctx context.Context, userID string) (domain.StatusDistribution, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "userId", Value: userID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count games by status: %w", err)
	}

	var groups []struct {
		Status string `bson:"_id"`
		Count  int    `bson:"count"`
	}
	if err := cur.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode status counts: %w", err)
	}

	counts := domain.StatusDistribution{}
	for _, g := range groups {
		counts[domain.GameStatus(g.Status)] = g.Count
	}
	return counts, nil
}

func (r *GameRepo) Insert(ctx context.Context, game *domain.Game) error {
	doc := gameFromDomain(*game)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert game: %w", err)
	}
	game.ID = doc.ID.Hex()
	return nil
}

func (r *GameRepo) UpdateByID(ctx context.Context, id string, patch domain.GamePatch, updatedAt time.Time) (*domain.Game, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc gameDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, updateDocument(patch, updatedAt), opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}
	g := doc.toDomain()
	return &g, nil
}

func (r *GameRepo) DeleteByID(ctx context.Context, id string) (*domain.Game, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var doc gameDocument
	err = r.coll.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete game: %w", err)
	}
	g := doc.toDomain()
	return &g, nil
}
