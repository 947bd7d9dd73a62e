package db

import (
	"context"
	"fmt"

	"ads-harvest/pkg/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Client stores documents in a MongoDB collection, one document per archive
// id with the trailer metadata embedded under "metadata".
type Client struct {
	mongoClient *mongo.Client
	database    *mongo.Database
	collection  *mongo.Collection
}

// NewClient creates a new database client
func NewClient(connectionString, databaseName, collectionName string) *Client {
	clientOptions := options.Client().ApplyURI(connectionString)
	mongoClient, err := mongo.Connect(context.Background(), clientOptions)
	if err != nil {
		// Connect reports the missing client.
		return &Client{}
	}

	database := mongoClient.Database(databaseName)
	return &Client{
		mongoClient: mongoClient,
		database:    database,
		collection:  database.Collection(collectionName),
	}
}

// Connect verifies the connection to MongoDB and creates the id index.
func (c *Client) Connect(ctx context.Context) error {
	if c.mongoClient == nil {
		return fmt.Errorf("mongo client: %w", ErrNotConnected)
	}
	if err := c.mongoClient.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}

	_, err := c.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create id index: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection
func (c *Client) Close(ctx context.Context) error {
	if c.mongoClient == nil {
		return nil
	}
	return c.mongoClient.Disconnect(ctx)
}

// SaveRecord upserts a record by its archive id. Stored metadata is kept.
func (c *Client) SaveRecord(ctx context.Context, rec domain.DocumentRecord) error {
	if c.collection == nil {
		return fmt.Errorf("collection: %w", ErrNotConnected)
	}
	if rec.ID == nil {
		return ErrMissingID
	}

	filter := bson.M{"id": *rec.ID}
	update := bson.M{"$set": rec}
	_, err := c.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// SaveMetadata sets the metadata sub-document of the record with the given id.
func (c *Client) SaveMetadata(ctx context.Context, id string, md domain.DocumentMetadata) error {
	if c.collection == nil {
		return fmt.Errorf("collection: %w", ErrNotConnected)
	}
	if id == "" {
		return ErrMissingID
	}

	filter := bson.M{"id": id}
	update := bson.M{"$set": bson.M{"metadata": md}}
	_, err := c.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// GetAllDocuments returns every stored document.
func (c *Client) GetAllDocuments(ctx context.Context) ([]domain.Document, error) {
	if c.collection == nil {
		return nil, fmt.Errorf("collection: %w", ErrNotConnected)
	}

	cursor, err := c.collection.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 0}))
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []domain.Document
	for cursor.Next(ctx) {
		var doc domain.Document
		if err := cursor.Decode(&doc); err != nil {
			continue // Skip invalid documents
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return docs, nil
}

// GetProcessedIDs returns the ids of documents that already carry metadata.
func (c *Client) GetProcessedIDs(ctx context.Context) (map[string]bool, error) {
	if c.collection == nil {
		return nil, fmt.Errorf("collection: %w", ErrNotConnected)
	}

	filter := bson.M{"metadata": bson.M{"$exists": true}}
	cursor, err := c.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"id": 1, "_id": 0}))
	if err != nil {
		return nil, fmt.Errorf("failed to query ids: %w", err)
	}
	defer cursor.Close(ctx)

	ids := make(map[string]bool)
	for cursor.Next(ctx) {
		var result struct {
			ID string `bson:"id"`
		}
		if err := cursor.Decode(&result); err != nil {
			continue
		}
		if result.ID != "" {
			ids[result.ID] = true
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return ids, nil
}
