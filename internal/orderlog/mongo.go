package orderlog

import (
	"context"
	"fmt"
	"time"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/pricing"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type orderDocument struct {
	OrderID         string              `bson:"_id"`
	CustomerName    string              `bson:"customer_name"`
	CustomerEmail   string              `bson:"customer_email"`
	CustomerPhone   string              `bson:"customer_phone,omitempty"`
	CustomerComment string              `bson:"customer_comment,omitempty"`
	Items           []orderItemDocument `bson:"items"`
	Subtotal        string              `bson:"subtotal"`
	DiscountAmount  string              `bson:"discount_amount"`
	DiscountPercent int                 `bson:"discount_percent"`
	Total           string              `bson:"total"`
	PlacedAt        time.Time           `bson:"placed_at"`
	ArchivedAt      time.Time           `bson:"archived_at"`
}

type orderItemDocument struct {
	Name     string `bson:"name"`
	Quantity int    `bson:"quantity"`
	Price    string `bson:"price"`
	Subtotal string `bson:"subtotal"`
}

// MongoArchive stores every order as a document keyed by order id.
type MongoArchive struct {
	collection *mongo.Collection
}

func NewMongoArchive(db *mongo.Database, collection string) *MongoArchive {
	return &MongoArchive{collection: db.Collection(collection)}
}

func ConnectMongoDB(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(20).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client, nil
}

func (m *MongoArchive) LogOrder(ctx context.Context, order domain.OrderRecord) error {
	items := make([]orderItemDocument, len(order.Items))
	for i, item := range order.Items {
		items[i] = orderItemDocument{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    pricing.Display(item.Price),
			Subtotal: pricing.Display(item.Subtotal),
		}
	}

	doc := orderDocument{
		OrderID:         order.OrderID,
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		CustomerPhone:   order.CustomerPhone,
		CustomerComment: order.CustomerComment,
		Items:           items,
		Subtotal:        pricing.Display(order.Subtotal),
		DiscountAmount:  pricing.Display(order.DiscountAmount),
		DiscountPercent: order.DiscountPercent,
		Total:           pricing.Display(order.Total),
		PlacedAt:        order.PlacedAt.UTC(),
		ArchivedAt:      time.Now().UTC(),
	}

	if _, err := m.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to archive order %s: %w", order.OrderID, err)
	}
	return nil
}

// CountByEmail returns how many archived orders a customer has placed.
func (m *MongoArchive) CountByEmail(ctx context.Context, email string) (int64, error) {
	n, err := m.collection.CountDocuments(ctx, bson.M{"customer_email": email})
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return n, nil
}
