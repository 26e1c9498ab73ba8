package database

import (
	"context"
	"fmt"

	"github.com/agencyflow/agencyflow/pkg/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoClient maps database node operations onto a MongoDB database, the
// table name is used as the collection.
type MongoClient struct {
	client   *mongo.Client
	database string
}

func NewMongoClient(ctx context.Context, uri string, database string) (*MongoClient, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	return &MongoClient{
		client:   client,
		database: database,
	}, nil
}

func (c *MongoClient) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

func (c *MongoClient) Execute(ctx context.Context, q domain.DatabaseQuery) (domain.DatabaseResult, error) {
	collection := c.client.Database(c.database).Collection(q.Table)

	filter := bson.M{}
	for key, value := range q.Where {
		filter[key] = value
	}

	switch q.Operation {
	case domain.DatabaseOperationSelect:
		return c.find(ctx, collection, filter, q.Limit)

	case domain.DatabaseOperationQuery:
		parsed := bson.M{}
		if err := bson.UnmarshalExtJSON([]byte(q.Query), false, &parsed); err != nil {
			return domain.DatabaseResult{}, fmt.Errorf("invalid mongodb filter: %w", err)
		}
		return c.find(ctx, collection, parsed, q.Limit)

	case domain.DatabaseOperationInsert:
		if len(q.Data) == 0 {
			return domain.DatabaseResult{}, domain.NewMissingFieldError("data")
		}

		result, err := collection.InsertOne(ctx, bson.M(q.Data))
		if err != nil {
			return domain.DatabaseResult{}, err
		}

		return domain.DatabaseResult{AffectedRows: 1, InsertedID: normalizeID(result.InsertedID)}, nil

	case domain.DatabaseOperationUpdate:
		if len(q.Data) == 0 {
			return domain.DatabaseResult{}, domain.NewMissingFieldError("data")
		}
		if len(filter) == 0 {
			return domain.DatabaseResult{}, ErrUnboundedMutation
		}

		result, err := collection.UpdateMany(ctx, filter, bson.M{"$set": bson.M(q.Data)})
		if err != nil {
			return domain.DatabaseResult{}, err
		}

		return domain.DatabaseResult{AffectedRows: result.ModifiedCount}, nil

	case domain.DatabaseOperationDelete:
		if len(filter) == 0 {
			return domain.DatabaseResult{}, ErrUnboundedMutation
		}

		result, err := collection.DeleteMany(ctx, filter)
		if err != nil {
			return domain.DatabaseResult{}, err
		}

		return domain.DatabaseResult{AffectedRows: result.DeletedCount}, nil
	}

	return domain.DatabaseResult{}, fmt.Errorf("unsupported operation %q", q.Operation)
}

func (c *MongoClient) find(ctx context.Context, collection *mongo.Collection, filter bson.M, limit int) (domain.DatabaseResult, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return domain.DatabaseResult{}, err
	}
	defer cursor.Close(ctx)

	var result domain.DatabaseResult

	for cursor.Next(ctx) {
		var document map[string]any
		if err := cursor.Decode(&document); err != nil {
			return domain.DatabaseResult{}, err
		}

		if id, ok := document["_id"]; ok {
			document["_id"] = normalizeID(id)
		}

		result.Rows = append(result.Rows, document)
	}

	if err := cursor.Err(); err != nil {
		return domain.DatabaseResult{}, err
	}

	return result, nil
}

func normalizeID(id any) any {
	if oid, ok := id.(primitive.ObjectID); ok {
		return oid.Hex()
	}

	return id
}
