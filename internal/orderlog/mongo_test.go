package orderlog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
)

func setupTestArchive(t *testing.T) (*MongoArchive, func()) {
	if testing.Short() {
		t.Skip("skipping mongodb container test in short mode")
	}
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7",
		testcontainers.WithWaitStrategy(wait.ForListeningPort("27017/tcp")),
	)
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := ConnectMongoDB(ctx, uri)
	require.NoError(t, err)

	archive := NewMongoArchive(client.Database("testdb"), "orders")

	cleanup := func() {
		_ = client.Disconnect(ctx)
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return archive, cleanup
}

func TestMongoArchive_LogOrder(t *testing.T) {
	archive, cleanup := setupTestArchive(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, archive.LogOrder(ctx, sampleOrder()))

	var doc orderDocument
	err := archive.collection.FindOne(ctx, bson.M{"_id": "WC-1700000000000-ABCD1234"}).Decode(&doc)
	require.NoError(t, err)
	assert.Equal(t, "17.10", doc.Total)
	assert.Equal(t, "0.90", doc.DiscountAmount)
	assert.Len(t, doc.Items, 2)

	n, err := archive.CountByEmail(ctx, "mika@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMongoArchive_DuplicateOrderID(t *testing.T) {
	archive, cleanup := setupTestArchive(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, archive.LogOrder(ctx, sampleOrder()))
	assert.Error(t, archive.LogOrder(ctx, sampleOrder()))
}
