package mongodb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"heartbeat-insights/internal/core/database"
	"heartbeat-insights/internal/domain"
)

type dashboardDoc struct {
	ID                 primitive.ObjectID         `bson:"_id,omitempty"`
	Title              string                     `bson:"title"`
	Description        string                     `bson:"description"`
	Data               bson.D                     `bson:"data,omitempty"`
	CardiovascularData *domain.CardiovascularData `bson:"cardiovascularData,omitempty"`
	IsActive           bool                       `bson:"isActive"`
	CreatedBy          primitive.ObjectID         `bson:"createdBy"`
	CreatedAt          time.Time                  `bson:"createdAt"`
	UpdatedAt          time.Time                  `bson:"updatedAt"`
}

// chartDataToBSON 按 relaxed extended JSON 解析图表描述，数字保留 int/double 类型
func chartDataToBSON(raw json.RawMessage) (bson.D, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var d bson.D
	if err := bson.UnmarshalExtJSON(raw, false, &d); err != nil {
		return nil, fmt.Errorf("%w: data must be a JSON object", domain.ErrInvalidInput)
	}
	return d, nil
}

// chartDataFromBSON 还原为 relaxed extended JSON（对数字和字符串来说就是普通 JSON）
func chartDataFromBSON(d bson.D) (json.RawMessage, error) {
	if d == nil {
		return nil, nil
	}
	b, err := bson.MarshalExtJSON(d, false, false)
	if err != nil {
		return nil, fmt.Errorf("encode chart data: %w", err)
	}
	return json.RawMessage(b), nil
}

func toDashboardDoc(d *domain.Dashboard) (*dashboardDoc, error) {
	data, err := chartDataToBSON(d.Data)
	if err != nil {
		return nil, err
	}
	owner, err := refID(d.CreatedBy)
	if err != nil {
		return nil, err
	}
	doc := &dashboardDoc{
		Title:              d.Title,
		Description:        d.Description,
		Data:               data,
		CardiovascularData: d.CardiovascularData,
		IsActive:           d.IsActive,
		CreatedBy:          owner,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
	if d.ID != "" {
		if doc.ID, err = parseID(d.ID); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func (doc *dashboardDoc) toDomain() (*domain.Dashboard, error) {
	data, err := chartDataFromBSON(doc.Data)
	if err != nil {
		return nil, err
	}
	return &domain.Dashboard{
		ID:                 doc.ID.Hex(),
		Title:              doc.Title,
		Description:        doc.Description,
		Data:               data,
		CardiovascularData: doc.CardiovascularData,
		IsActive:           doc.IsActive,
		CreatedBy:          hexOrEmpty(doc.CreatedBy),
		CreatedAt:          doc.CreatedAt,
		UpdatedAt:          doc.UpdatedAt,
	}, nil
}

type DashboardsRepo struct{ coll *mongo.Collection }

func NewDashboardsRepo(db *mongo.Database) *DashboardsRepo {
	return &DashboardsRepo{coll: db.Collection(database.CollDashboards)}
}

var _ domain.DashboardRepository = (*DashboardsRepo)(nil)

func (r *DashboardsRepo) Create(ctx context.Context, d *domain.Dashboard) (err error) {
	defer track(database.CollDashboards, "create", time.Now(), &err)
	doc, err := toDashboardDoc(d)
	if err != nil {
		return err
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert dashboard: %w", err)
	}
	d.ID = doc.ID.Hex()
	return nil
}

func (r *DashboardsRepo) FindByID(ctx context.Context, id string) (d *domain.Dashboard, err error) {
	defer track(database.CollDashboards, "find", time.Now(), &err)
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var doc dashboardDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.toDomain()
}

func (r *DashboardsRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.Dashboard, error) {
	oids := parseIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}}, nil)
}

func (r *DashboardsRepo) ListActive(ctx context.Context) (out []domain.Dashboard, err error) {
	defer track(database.CollDashboards, "list", time.Now(), &err)
	return r.find(ctx, bson.M{"isActive": true}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *DashboardsRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Dashboard, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find dashboards: %w", err)
	}
	var docs []dashboardDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode dashboards: %w", err)
	}
	out := make([]domain.Dashboard, 0, len(docs))
	for i := range docs {
		d, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

func (r *DashboardsRepo) Update(ctx context.Context, d *domain.Dashboard) (err error) {
	defer track(database.CollDashboards, "update", time.Now(), &err)
	doc, err := toDashboardDoc(d)
	if err != nil {
		return err
	}
	set := bson.M{
		"title":       doc.Title,
		"description": doc.Description,
		"isActive":    doc.IsActive,
		"updatedAt":   doc.UpdatedAt,
	}
	unset := bson.M{}
	if doc.Data != nil {
		set["data"] = doc.Data
	} else {
		unset["data"] = ""
	}
	if doc.CardiovascularData != nil {
		set["cardiovascularData"] = doc.CardiovascularData
	} else {
		unset["cardiovascularData"] = ""
	}
	upd := bson.M{"$set": set}
	if len(unset) > 0 {
		upd["$unset"] = unset
	}
	res, err := r.coll.UpdateByID(ctx, doc.ID, upd)
	if err != nil {
		return fmt.Errorf("update dashboard: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DashboardsRepo) Delete(ctx context.Context, id string) (err error) {
	defer track(database.CollDashboards, "delete", time.Now(), &err)
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete dashboard: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DashboardsRepo) ReassignOwner(ctx context.Context, from, to string) (int64, error) {
	return reassign(ctx, r.coll, from, to)
}

func reassign(ctx context.Context, coll *mongo.Collection, from, to string) (n int64, err error) {
	defer track(coll.Name(), "reassign", time.Now(), &err)
	fromID, err := parseID(from)
	if err != nil {
		return 0, nil
	}
	toID, err := parseID(to)
	if err != nil {
		return 0, domain.ErrInvalidInput
	}
	res, err := coll.UpdateMany(ctx, bson.M{"createdBy": fromID}, bson.M{"$set": bson.M{"createdBy": toID}})
	if err != nil {
		return 0, fmt.Errorf("reassign %s: %w", coll.Name(), err)
	}
	return res.ModifiedCount, nil
}
