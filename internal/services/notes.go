package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/warriorcare/warriorcare-backend/internal/database"
	"github.com/warriorcare/warriorcare-backend/internal/models"
)

const notesCollection = "notes"

// EnsureNoteIndexes configures indexes for the notes collection. Called on
// startup from main after Mongo has connected.
func EnsureNoteIndexes(ctx context.Context) error {
	col := database.DB.Collection(notesCollection)

	// Compound index on (participant_id, created_at) to support efficient
	// newest-first paging per participant.
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "participant_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_participant_created"),
		},
	}

	for _, m := range indexes {
		if _, err := col.Indexes().CreateOne(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// SaveNote persists a clinician note. The caller is responsible for the
// assignment check; this only writes.
func SaveNote(ctx context.Context, note *models.Note) (*models.Note, error) {
	if note.ID.IsZero() {
		note.ID = primitive.NewObjectID()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}

	col := database.DB.Collection(notesCollection)
	if _, err := col.InsertOne(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// ListNotes returns a participant's notes, newest-first.
func ListNotes(ctx context.Context, participantID string, limit int64) ([]models.Note, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	col := database.DB.Collection(notesCollection)

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cur, err := col.Find(ctx, bson.M{"participant_id": participantID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var notes []models.Note
	if err := cur.All(ctx, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}
