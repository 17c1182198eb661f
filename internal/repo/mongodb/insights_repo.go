package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"heartbeat-insights/internal/core/database"
	"heartbeat-insights/internal/domain"
)

type insightDoc struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty"`
	Title        string              `bson:"title"`
	Content      string              `bson:"content"`
	Type         string              `bson:"type"`
	Priority     string              `bson:"priority"`
	PriorityRank int                 `bson:"priorityRank"`
	MedicalData  *domain.MedicalData `bson:"medicalData,omitempty"`
	ActionItems  []domain.ActionItem `bson:"actionItems"`
	DashboardID  *primitive.ObjectID `bson:"dashboardId,omitempty"`
	CreatedBy    primitive.ObjectID  `bson:"createdBy"`
	IsActive     bool                `bson:"isActive"`
	CreatedAt    time.Time           `bson:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt"`
}

func toInsightDoc(in *domain.Insight) (*insightDoc, error) {
	owner, err := refID(in.CreatedBy)
	if err != nil {
		return nil, err
	}
	doc := &insightDoc{
		Title:        in.Title,
		Content:      in.Content,
		Type:         string(in.Type),
		Priority:     string(in.Priority),
		PriorityRank: in.Priority.Rank(),
		MedicalData:  in.MedicalData,
		ActionItems:  in.ActionItems,
		CreatedBy:    owner,
		IsActive:     in.IsActive,
		CreatedAt:    in.CreatedAt,
		UpdatedAt:    in.UpdatedAt,
	}
	if doc.ActionItems == nil {
		doc.ActionItems = []domain.ActionItem{}
	}
	if in.DashboardID != "" {
		dash, err := refID(in.DashboardID)
		if err != nil {
			return nil, err
		}
		doc.DashboardID = &dash
	}
	if in.ID != "" {
		if doc.ID, err = parseID(in.ID); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func (doc *insightDoc) toDomain() *domain.Insight {
	in := &domain.Insight{
		ID:          doc.ID.Hex(),
		Title:       doc.Title,
		Content:     doc.Content,
		Type:        domain.InsightType(doc.Type),
		Priority:    domain.Priority(doc.Priority),
		MedicalData: doc.MedicalData,
		CreatedBy:   hexOrEmpty(doc.CreatedBy),
		IsActive:    doc.IsActive,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
	if len(doc.ActionItems) > 0 {
		in.ActionItems = doc.ActionItems
	}
	if doc.DashboardID != nil {
		in.DashboardID = doc.DashboardID.Hex()
	}
	return in
}

type InsightsRepo struct{ coll *mongo.Collection }

func NewInsightsRepo(db *mongo.Database) *InsightsRepo {
	return &InsightsRepo{coll: db.Collection(database.CollInsights)}
}

var _ domain.InsightRepository = (*InsightsRepo)(nil)

func (r *InsightsRepo) Create(ctx context.Context, in *domain.Insight) (err error) {
	defer track(database.CollInsights, "create", time.Now(), &err)
	doc, err := toInsightDoc(in)
	if err != nil {
		return err
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert insight: %w", err)
	}
	in.ID = doc.ID.Hex()
	return nil
}

func (r *InsightsRepo) FindByID(ctx context.Context, id string) (in *domain.Insight, err error) {
	defer track(database.CollInsights, "find", time.Now(), &err)
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var doc insightDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.toDomain(), nil
}

func (r *InsightsRepo) ListActive(ctx context.Context) (out []domain.Insight, err error) {
	defer track(database.CollInsights, "list", time.Now(), &err)
	opts := options.Find().SetSort(bson.D{{Key: "priorityRank", Value: -1}, {Key: "createdAt", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"isActive": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("find insights: %w", err)
	}
	var docs []insightDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode insights: %w", err)
	}
	out = make([]domain.Insight, 0, len(docs))
	for i := range docs {
		out = append(out, *docs[i].toDomain())
	}
	return out, nil
}

func (r *InsightsRepo) Update(ctx context.Context, in *domain.Insight) (err error) {
	defer track(database.CollInsights, "update", time.Now(), &err)
	doc, err := toInsightDoc(in)
	if err != nil {
		return err
	}
	set := bson.M{
		"title":        doc.Title,
		"content":      doc.Content,
		"type":         doc.Type,
		"priority":     doc.Priority,
		"priorityRank": doc.PriorityRank,
		"actionItems":  doc.ActionItems,
		"isActive":     doc.IsActive,
		"updatedAt":    doc.UpdatedAt,
	}
	unset := bson.M{}
	if doc.MedicalData != nil {
		set["medicalData"] = doc.MedicalData
	} else {
		unset["medicalData"] = ""
	}
	if doc.DashboardID != nil {
		set["dashboardId"] = doc.DashboardID
	} else {
		unset["dashboardId"] = ""
	}
	upd := bson.M{"$set": set}
	if len(unset) > 0 {
		upd["$unset"] = unset
	}
	res, err := r.coll.UpdateByID(ctx, doc.ID, upd)
	if err != nil {
		return fmt.Errorf("update insight: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *InsightsRepo) Deactivate(ctx context.Context, id string) (err error) {
	defer track(database.CollInsights, "deactivate", time.Now(), &err)
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}})
	if err != nil {
		return fmt.Errorf("deactivate insight: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *InsightsRepo) ReassignOwner(ctx context.Context, from, to string) (int64, error) {
	return reassign(ctx, r.coll, from, to)
}
