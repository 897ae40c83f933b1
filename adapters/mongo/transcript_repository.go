package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/satriahrh/farsisub/domain/entities"
	"github.com/satriahrh/farsisub/domain/repositories"
)

const (
	transcriptCollection = "transcripts"
	maxListLimit         = 500
)

// TranscriptRepository stores translated chunks in MongoDB
type TranscriptRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

var _ repositories.TranscriptRepository = (*TranscriptRepository)(nil)

// NewTranscriptRepository creates the repository and ensures its indexes in the background
func NewTranscriptRepository(db *mongo.Database, logger *zap.Logger) *TranscriptRepository {
	collection := db.Collection(transcriptCollection)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "subtitle_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		})
		if err != nil {
			logger.Error("Failed to create transcript indexes", zap.Error(err))
		} else {
			logger.Info("Transcript indexes created successfully")
		}
	}()

	return &TranscriptRepository{
		collection: collection,
		logger:     logger,
	}
}

// Create implements repositories.TranscriptRepository
func (r *TranscriptRepository) Create(ctx context.Context, transcript *entities.Transcript) error {
	if transcript == nil {
		return errors.New("transcript cannot be nil")
	}
	if err := transcript.Validate(); err != nil {
		return fmt.Errorf("invalid transcript: %w", err)
	}
	if transcript.CreatedAt.IsZero() {
		transcript.CreatedAt = time.Now()
	}

	result, err := r.collection.InsertOne(ctx, transcript)
	if err != nil {
		return fmt.Errorf("failed to create transcript: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		transcript.ID = oid
	}
	return nil
}

// ListRecent implements repositories.TranscriptRepository, newest first
func (r *TranscriptRepository) ListRecent(ctx context.Context, limit int) ([]*entities.Transcript, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}
	defer cursor.Close(ctx)

	transcripts := make([]*entities.Transcript, 0, limit)
	if err := cursor.All(ctx, &transcripts); err != nil {
		return nil, fmt.Errorf("failed to decode transcripts: %w", err)
	}
	return transcripts, nil
}

// DeleteOlderThan implements repositories.TranscriptRepository
func (r *TranscriptRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete transcripts: %w", err)
	}

	if result.DeletedCount > 0 {
		r.logger.Info("Deleted old transcripts",
			zap.Int64("count", result.DeletedCount),
			zap.Time("cutoff", cutoff))
	}
	return result.DeletedCount, nil
}
