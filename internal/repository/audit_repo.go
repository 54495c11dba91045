package repository

import (
	"adaudit/internal/model"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when an audit id does not exist
var ErrNotFound = errors.New("audit not found")

// AuditRepo persists submitted audits. Audits are write-once and delete-only.
type AuditRepo interface {
	Create(ctx context.Context, audit *model.Audit) (string, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Audit, error)
	GetByID(ctx context.Context, id string) (*model.Audit, error)
	DeleteByID(ctx context.Context, id string) error
}

// auditDoc is the stored shape: the audit plus its ObjectID
type auditDoc struct {
	OID         primitive.ObjectID `bson:"_id,omitempty"`
	model.Audit `bson:",inline"`
}

func (d *auditDoc) toModel() *model.Audit {
	a := d.Audit
	a.ID = d.OID.Hex()
	a.NormalizeRisks()
	return &a
}

type auditRepo struct {
	collection *mongo.Collection
}

// NewAuditRepo creates a MongoDB-backed audit repository
func NewAuditRepo(db *mongo.Database) AuditRepo {
	return &auditRepo{
		collection: db.Collection("audits"),
	}
}

// EnsureIndexes creates the owner lookup index used by ListByOwner
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("audits").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}

func (r *auditRepo) Create(ctx context.Context, audit *model.Audit) (string, error) {
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = time.Now().UTC()
	}

	doc := auditDoc{OID: primitive.NewObjectID(), Audit: *audit}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert audit: %w", err)
	}
	audit.ID = doc.OID.Hex()
	return audit.ID, nil
}

func (r *auditRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Audit, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find audits: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []auditDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode audits: %w", err)
	}
	audits := make([]*model.Audit, 0, len(docs))
	for i := range docs {
		audits = append(audits, docs[i].toModel())
	}
	return audits, nil
}

func (r *auditRepo) GetByID(ctx context.Context, id string) (*model.Audit, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// Malformed ids cannot exist in the collection
		return nil, ErrNotFound
	}

	var doc auditDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find audit %s: %w", id, err)
	}
	return doc.toModel(), nil
}

func (r *auditRepo) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete audit %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
