package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestEnsureMongoIndexesUsesDefaultEmailIndexName(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("indexes", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)
		require.NoError(mt, EnsureMongoIndexes(context.Background(), mt.DB))

		byColl := map[string]int{}
		for _, evt := range mt.GetAllStartedEvents() {
			if evt.CommandName != "createIndexes" {
				continue
			}
			coll := evt.Command.Lookup("createIndexes").StringValue()
			byColl[coll]++
			if coll == CollUsers {
				assert.Equal(mt, "email_1", evt.Command.Lookup("indexes", "0", "name").StringValue())
				assert.True(mt, evt.Command.Lookup("indexes", "0", "unique").Boolean())
			}
		}
		assert.Equal(mt, map[string]int{CollUsers: 1, CollDashboards: 1, CollInsights: 1}, byColl)
	})
}
