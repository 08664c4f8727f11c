package store

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/onnwee/chatmood/backend/db"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("store: not found")

// Store wraps a MongoDB database with typed collection accessors.
type Store struct {
	database *mongo.Database
}

// New returns a Store over the given database handle.
func New(database *mongo.Database) *Store {
	return &Store{database: database}
}

func (s *Store) users() *mongo.Collection {
	return s.database.Collection(db.UsersCollection)
}

func (s *Store) channelSets() *mongo.Collection {
	return s.database.Collection(db.TrackedChannelsCollection)
}

func (s *Store) messages() *mongo.Collection {
	return s.database.Collection(db.ChatMessagesCollection)
}

func (s *Store) sessions() *mongo.Collection {
	return s.database.Collection(db.SessionsCollection)
}
