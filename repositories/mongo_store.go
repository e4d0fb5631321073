package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gemini-chat/db"
	"gemini-chat/models"
)

// MongoStore implements Store on MongoDB. Numeric ids come from the counters
// collection so that the API keeps integer conversation ids on both backends.
type MongoStore struct {
	client        *mongo.Client
	users         *mongo.Collection
	conversations *mongo.Collection
	messages      *mongo.Collection
	counters      *mongo.Collection
	revoked       *mongo.Collection
}

// NewMongoStore connects to uri and prepares the collections and indexes.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, database, err := db.OpenMongo(ctx, uri, dbName)
	if err != nil {
		return nil, fmt.Errorf("connecting mongo: %w", err)
	}
	return &MongoStore{
		client:        client,
		users:         database.Collection("users"),
		conversations: database.Collection("conversations"),
		messages:      database.Collection("messages"),
		counters:      database.Collection("counters"),
		revoked:       database.Collection("revoked_sessions"),
	}, nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

// nextID atomically increments and returns the sequence named name.
func (s *MongoStore) nextID(ctx context.Context, name string) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return doc.Seq, nil
}

func (s *MongoStore) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	id, err := s.nextID(ctx, "users")
	if err != nil {
		return nil, err
	}
	u := &models.User{ID: id, Username: username, PasswordHash: passwordHash, CreatedAt: now()}
	if _, err := s.users.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	return u, nil
}

func (s *MongoStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.users.FindOne(ctx, bson.M{"username": username}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}

func (s *MongoStore) CreateConversation(ctx context.Context, userID int64, title string) (*models.Conversation, error) {
	id, err := s.nextID(ctx, "conversations")
	if err != nil {
		return nil, err
	}
	c := &models.Conversation{ID: id, UserID: userID, Title: title, CreatedAt: now()}
	if _, err := s.conversations.InsertOne(ctx, c); err != nil {
		return nil, fmt.Errorf("inserting conversation: %w", err)
	}
	return c, nil
}

func (s *MongoStore) GetConversation(ctx context.Context, id int64) (*models.Conversation, error) {
	var c models.Conversation
	if err := s.conversations.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying conversation: %w", err)
	}
	return &c, nil
}

func (s *MongoStore) ListConversations(ctx context.Context, userID int64) ([]models.Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.conversations.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("querying conversations: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.Conversation{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decoding conversations: %w", err)
	}
	return out, nil
}

func (s *MongoStore) AppendMessage(ctx context.Context, conversationID int64, role, content string) (*models.Message, error) {
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("invalid message role %q", role)
	}
	id, err := s.nextID(ctx, "messages")
	if err != nil {
		return nil, err
	}
	m := &models.Message{ID: id, ConversationID: conversationID, Role: role, Content: content, CreatedAt: now()}
	if _, err := s.messages.InsertOne(ctx, m); err != nil {
		return nil, fmt.Errorf("inserting message: %w", err)
	}
	return m, nil
}

func (s *MongoStore) ListMessages(ctx context.Context, conversationID int64) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.messages.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.Message{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decoding messages: %w", err)
	}
	return out, nil
}

// RevokeSession upserts tokenID; the TTL index on expires_at removes it after expiry.
func (s *MongoStore) RevokeSession(ctx context.Context, tokenID string, expiresAt time.Time) error {
	_, err := s.revoked.UpdateOne(ctx,
		bson.M{"_id": tokenID},
		bson.M{"$set": bson.M{"expires_at": expiresAt.UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("revoking session: %w", err)
	}
	return nil
}

func (s *MongoStore) IsSessionRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.revoked.CountDocuments(ctx, bson.M{"_id": tokenID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("querying revoked session: %w", err)
	}
	return n > 0, nil
}
