package transactions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pennywise-app/pennywise/internal/shared"
)

const collectionName = "transactions"

// MongoStore implements Store backed by MongoDB. Amounts are persisted as
// Decimal128 so server-side aggregation stays exact.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore constructs the live store.
func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collectionName),
	}
}

// Mode reports the live persistence mode.
func (s *MongoStore) Mode() Mode { return ModeLive }

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) {
	_ = s.client.Disconnect(ctx)
}

type transactionDoc struct {
	ID              string               `bson:"_id"`
	UserID          string               `bson:"userId"`
	Amount          primitive.Decimal128 `bson:"amount"`
	Description     string               `bson:"description"`
	Category        string               `bson:"category"`
	Type            string               `bson:"type"`
	Date            time.Time            `bson:"date"`
	Tags            []string             `bson:"tags"`
	IsRecurring     bool                 `bson:"isRecurring"`
	RecurringPeriod string               `bson:"recurringPeriod,omitempty"`
	CreatedAt       time.Time            `bson:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt"`
}

// Insert assigns an id and storage defaults, then writes the document.
func (s *MongoStore) Insert(ctx context.Context, txn *Transaction) (*Transaction, error) {
	now := time.Now().UTC()
	stored := *txn
	stored.ID = uuid.NewString()
	if stored.Date.IsZero() {
		stored.Date = now
	}
	if stored.Tags == nil {
		stored.Tags = []string{}
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now

	doc, err := toDoc(&stored)
	if err != nil {
		return nil, err
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("transactions: insert: %w", err)
	}
	return &stored, nil
}

// Find lists documents matching the conjunctive filter, newest first,
// with offset pagination. The count covers the whole filtered set.
func (s *MongoStore) Find(ctx context.Context, filter Filter, page, pageSize int) ([]Transaction, int64, error) {
	query := filterQuery(filter)

	total, err := s.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("transactions: count: %w", err)
	}

	if pageSize <= 0 {
		pageSize = shared.DefaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("transactions: find: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]Transaction, 0, pageSize)
	for cursor.Next(ctx) {
		var doc transactionDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("transactions: decode: %w", err)
		}
		txn, err := fromDoc(&doc)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *txn)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("transactions: cursor: %w", err)
	}
	return items, total, nil
}

// FindByID fetches a single document.
func (s *MongoStore) FindByID(ctx context.Context, id string) (*Transaction, error) {
	var doc transactionDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("transactions: find by id: %w", err)
	}
	return fromDoc(&doc)
}

// UpdateByID replaces the full document, keeping id and creation
// timestamp. The $set deliberately leaves createdAt untouched so both
// persistence modes preserve it.
func (s *MongoStore) UpdateByID(ctx context.Context, id string, txn *Transaction) error {
	amount, err := primitive.ParseDecimal128(txn.Amount.String())
	if err != nil {
		return fmt.Errorf("transactions: encode amount: %w", err)
	}
	tags := txn.Tags
	if tags == nil {
		tags = []string{}
	}

	update := bson.M{"$set": bson.M{
		"userId":          txn.UserID,
		"amount":          amount,
		"description":     txn.Description,
		"category":        string(txn.Category),
		"type":            string(txn.Type),
		"date":            txn.Date,
		"tags":            tags,
		"isRecurring":     txn.IsRecurring,
		"recurringPeriod": string(txn.RecurringPeriod),
		"updatedAt":       time.Now().UTC(),
	}}
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("transactions: update: %w", err)
	}
	if result.MatchedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByID removes the document permanently.
func (s *MongoStore) DeleteByID(ctx context.Context, id string) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("transactions: delete: %w", err)
	}
	if result.DeletedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindRecurring returns every recurring transaction across all users.
func (s *MongoStore) FindRecurring(ctx context.Context) ([]Transaction, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"isRecurring": true})
	if err != nil {
		return nil, fmt.Errorf("transactions: find recurring: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]Transaction, 0)
	for cursor.Next(ctx) {
		var doc transactionDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("transactions: decode: %w", err)
		}
		txn, err := fromDoc(&doc)
		if err != nil {
			return nil, err
		}
		items = append(items, *txn)
	}
	return items, cursor.Err()
}

// GroupByType runs the per-type aggregation pipeline over the window.
func (s *MongoStore) GroupByType(ctx context.Context, userID string, from, to time.Time) (map[Type]TypeAggregate, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: windowQuery(userID, from, to)}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$type",
			"total": bson.M{"$sum": "$amount"},
			"count": bson.M{"$sum": 1},
			"avg":   bson.M{"$avg": "$amount"},
		}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("transactions: group by type: %w", err)
	}
	defer cursor.Close(ctx)

	result := make(map[Type]TypeAggregate)
	for cursor.Next(ctx) {
		var row struct {
			Type  string               `bson:"_id"`
			Total primitive.Decimal128 `bson:"total"`
			Count int64                `bson:"count"`
			Avg   primitive.Decimal128 `bson:"avg"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("transactions: decode group: %w", err)
		}
		total, err := fromDecimal128(row.Total)
		if err != nil {
			return nil, err
		}
		avg, err := fromDecimal128(row.Avg)
		if err != nil {
			return nil, err
		}
		result[Type(row.Type)] = TypeAggregate{Total: total, Count: row.Count, Avg: avg}
	}
	return result, cursor.Err()
}

// GroupByCategoryAndType runs the category/type aggregation pipeline,
// sorted by total descending.
func (s *MongoStore) GroupByCategoryAndType(ctx context.Context, userID string, from, to time.Time) ([]CategoryTypeAggregate, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: windowQuery(userID, from, to)}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"category": "$category", "type": "$type"},
			"total": bson.M{"$sum": "$amount"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "total", Value: -1},
			{Key: "_id.category", Value: 1},
			{Key: "_id.type", Value: 1},
		}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("transactions: group by category: %w", err)
	}
	defer cursor.Close(ctx)

	result := make([]CategoryTypeAggregate, 0)
	for cursor.Next(ctx) {
		var row struct {
			ID struct {
				Category string `bson:"category"`
				Type     string `bson:"type"`
			} `bson:"_id"`
			Total primitive.Decimal128 `bson:"total"`
			Count int64                `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("transactions: decode group: %w", err)
		}
		total, err := fromDecimal128(row.Total)
		if err != nil {
			return nil, err
		}
		result = append(result, CategoryTypeAggregate{
			Category: Category(row.ID.Category),
			Type:     Type(row.ID.Type),
			Total:    total,
			Count:    row.Count,
		})
	}
	return result, cursor.Err()
}

func filterQuery(filter Filter) bson.M {
	query := bson.M{"userId": filter.UserID}
	if filter.Category != nil {
		query["category"] = string(*filter.Category)
	}
	if filter.Type != nil {
		query["type"] = string(*filter.Type)
	}
	dateRange := bson.M{}
	if filter.From != nil {
		dateRange["$gte"] = *filter.From
	}
	if filter.To != nil {
		dateRange["$lt"] = *filter.To
	}
	if len(dateRange) > 0 {
		query["date"] = dateRange
	}
	return query
}

func windowQuery(userID string, from, to time.Time) bson.M {
	return bson.M{
		"userId": userID,
		"date":   bson.M{"$gte": from, "$lt": to},
	}
}

func toDoc(t *Transaction) (*transactionDoc, error) {
	amount, err := primitive.ParseDecimal128(t.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("transactions: encode amount: %w", err)
	}
	return &transactionDoc{
		ID:              t.ID,
		UserID:          t.UserID,
		Amount:          amount,
		Description:     t.Description,
		Category:        string(t.Category),
		Type:            string(t.Type),
		Date:            t.Date,
		Tags:            t.Tags,
		IsRecurring:     t.IsRecurring,
		RecurringPeriod: string(t.RecurringPeriod),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}, nil
}

func fromDoc(doc *transactionDoc) (*Transaction, error) {
	amount, err := fromDecimal128(doc.Amount)
	if err != nil {
		return nil, err
	}
	return &Transaction{
		ID:              doc.ID,
		UserID:          doc.UserID,
		Amount:          amount,
		Description:     doc.Description,
		Category:        Category(doc.Category),
		Type:            Type(doc.Type),
		Date:            doc.Date,
		Tags:            doc.Tags,
		IsRecurring:     doc.IsRecurring,
		RecurringPeriod: RecurringPeriod(doc.RecurringPeriod),
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("transactions: decode amount: %w", err)
	}
	return d, nil
}

var _ Store = (*MongoStore)(nil)
