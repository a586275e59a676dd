package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"mip-notes/internal/model"
	"mip-notes/internal/repository"
)

// DefaultCollection имя коллекции заметок по умолчанию
const DefaultCollection = "Notes"

var _ repository.NoteRepository = (*repo)(nil)

// noteDocument документ заметки в MongoDB. Внутренний _id наружу не отдается.
type noteDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UUID      string        `bson:"uuid"`
	Text      string        `bson:"text"`
	Color     string        `bson:"color"`
	NrOfEdits int64         `bson:"nrOfEdits"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func (d noteDocument) toModel() model.Note {
	return model.Note{
		UUID:      d.UUID,
		Text:      d.Text,
		Color:     d.Color,
		NrOfEdits: d.NrOfEdits,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func fromModel(n model.Note) noteDocument {
	return noteDocument{
		UUID:      n.UUID,
		Text:      n.Text,
		Color:     n.Color,
		NrOfEdits: n.NrOfEdits,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

type repo struct {
	coll *mongo.Collection
}

// Connect подключается к MongoDB и проверяет соединение через Ping
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, nil
}

// NewRepository создает репозиторий поверх коллекции заметок
func NewRepository(db *mongo.Database, collection string) repository.NoteRepository {
	if collection == "" {
		collection = DefaultCollection
	}
	return &repo{coll: db.Collection(collection)}
}

// EnsureIndexes создает уникальный индекс по uuid и индекс для сортировки по createdAt
func EnsureIndexes(ctx context.Context, db *mongo.Database, collection string) error {
	if collection == "" {
		collection = DefaultCollection
	}

	_, err := db.Collection(collection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "uuid", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}

	return nil
}

// Create вставляет новый документ
func (r *repo) Create(ctx context.Context, note model.Note) (model.Note, error) {
	if _, err := r.coll.InsertOne(ctx, fromModel(note)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.Note{}, fmt.Errorf("duplicate uuid %q: %w", note.UUID, err)
		}
		return model.Note{}, fmt.Errorf("insert note: %w", err)
	}

	return note, nil
}

// GetByUUID ищет документ по uuid
func (r *repo) GetByUUID(ctx context.Context, uuid string) (model.Note, error) {
	var doc noteDocument
	err := r.coll.FindOne(ctx, bson.D{{Key: "uuid", Value: uuid}}).Decode(&doc)
	if err != nil {
		return model.Note{}, mapError("find note", err)
	}

	return doc.toModel(), nil
}

// List возвращает все документы, новые первыми
func (r *repo) List(ctx context.Context) ([]model.Note, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: -1},
	})

	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find notes: %w", err)
	}

	var docs []noteDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}

	notes := make([]model.Note, len(docs))
	for i, d := range docs {
		notes[i] = d.toModel()
	}

	return notes, nil
}

// Update выполняет findOneAndUpdate с $set и $inc одной операцией
func (r *repo) Update(ctx context.Context, uuid string, changes model.NoteChanges, now time.Time) (model.Note, error) {
	set := bson.D{
		{Key: "text", Value: changes.Text},
		{Key: "updatedAt", Value: now},
	}
	if changes.Color != nil {
		set = append(set, bson.E{Key: "color", Value: *changes.Color})
	}

	update := bson.D{
		{Key: "$set", Value: set},
		{Key: "$inc", Value: bson.D{{Key: "nrOfEdits", Value: 1}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc noteDocument
	err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "uuid", Value: uuid}}, update, opts).Decode(&doc)
	if err != nil {
		return model.Note{}, mapError("update note", err)
	}

	return doc.toModel(), nil
}

// Delete удаляет документ по uuid
func (r *repo) Delete(ctx context.Context, uuid string) error {
	err := r.coll.FindOneAndDelete(ctx, bson.D{{Key: "uuid", Value: uuid}}).Err()
	if err != nil {
		return mapError("delete note", err)
	}

	return nil
}

// mapError переводит mongo.ErrNoDocuments в repository.ErrNoteNotFound
func mapError(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNoteNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
