package mongodb

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"heartbeat-insights/internal/domain"
)

func TestChartDataRoundTrip(t *testing.T) {
	raw := json.RawMessage(`{"chartType":"bar","labels":["a","b"],"values":[1,2.5,"3"],"title":"T"}`)
	d, err := chartDataToBSON(raw)
	require.NoError(t, err)

	// stored through the real codec, as the driver would
	b, err := bson.Marshal(dashboardDoc{Data: d})
	require.NoError(t, err)
	var back dashboardDoc
	require.NoError(t, bson.Unmarshal(b, &back))

	out, err := chartDataFromBSON(back.Data)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(out))
}

func TestChartDataWrappedNumbers(t *testing.T) {
	d, err := chartDataToBSON(json.RawMessage(`{"values":[{"$numberInt":"42"},{"$numberDouble":"1.5"}]}`))
	require.NoError(t, err)
	out, err := chartDataFromBSON(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"values":[42,1.5]}`, string(out))
}

func TestChartDataRejectsNonObject(t *testing.T) {
	_, err := chartDataToBSON(json.RawMessage(`[1,2,3]`))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	d, err := chartDataToBSON(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestInsightDocConversion(t *testing.T) {
	owner := primitive.NewObjectID().Hex()
	dash := primitive.NewObjectID().Hex()
	now := time.Now().UTC().Truncate(time.Millisecond)
	in := &domain.Insight{
		Title: "t", Content: "c", Type: domain.InsightWarning, Priority: domain.PriorityUrgent,
		DashboardID: dash, CreatedBy: owner, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	doc, err := toInsightDoc(in)
	require.NoError(t, err)
	assert.Equal(t, 4, doc.PriorityRank)
	assert.NotNil(t, doc.ActionItems)
	require.NotNil(t, doc.DashboardID)

	back := doc.toDomain()
	assert.Equal(t, dash, back.DashboardID)
	assert.Equal(t, owner, back.CreatedBy)
	assert.Nil(t, back.ActionItems)

	in.CreatedBy = "not-hex"
	_, err = toInsightDoc(in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseIDs(t *testing.T) {
	_, err := parseID("zzz")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	good := primitive.NewObjectID()
	assert.Equal(t, []primitive.ObjectID{good}, parseIDs([]string{"bad", good.Hex()}))
}
