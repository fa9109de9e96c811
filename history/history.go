package history

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"

	"tryon/shared/log"
)

const collectionName = "tryon_requests"

// Entry is one audit record per pipeline run, accepted or not.
type Entry struct {
	RequestID      string    `bson:"request_id"`
	Size           string    `bson:"size"`
	Items          int       `bson:"items"`
	Success        bool      `bson:"success"`
	Reason         string    `bson:"reason,omitempty"`
	Detail         string    `bson:"detail,omitempty"`
	Results        int       `bson:"results"`
	Recommendation string    `bson:"recommendation,omitempty"`
	DurationMS     int64     `bson:"duration_ms"`
	Logs           []string  `bson:"logs"`
	CreatedAt      time.Time `bson:"created_at"`
}

// History writes audit records to Mongo. Best effort: a write failure costs
// a warning, never the request.
type History struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

func New(client *mongo.Client, database string, logger *zap.Logger) *History {
	return &History{
		collection: client.Database(database).Collection(collectionName),
		logger:     logger.Named("history"),
	}
}

func (h *History) Record(ctx context.Context, entry Entry) {
	if h == nil {
		return
	}

	logger := log.LoggerWithTrace(ctx, h.logger)

	entry.CreatedAt = time.Now().UTC()

	if _, err := h.collection.InsertOne(ctx, entry); err != nil {
		logger.Warn("history record failed: " + err.Error())
		return
	}

	logger.Debug("history record stored for request " + entry.RequestID)
}
