package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"livestock-sync/internal/livestock_sync/helper"
	"livestock-sync/internal/livestock_sync/model"
)

// MongoRegistry stores entities in the FarmInfo, AnimalMaster and AnimalHistoryDetail
// collections.
type MongoRegistry struct {
	Stores *helper.Stores
}

func NewMongoRegistry(stores *helper.Stores) *MongoRegistry {
	return &MongoRegistry{Stores: stores}
}

var upsert = options.Update().SetUpsert(true)

func (r *MongoRegistry) UpsertFarm(ctx context.Context, farm model.Farm) error {
	_, err := r.Stores.FarmInfo.UpdateOne(ctx,
		bson.M{"farm_unique_no": farm.FarmUniqueNo},
		bson.M{"$set": farm},
		upsert,
	)
	if err != nil {
		return fmt.Errorf("upsert farm %s: %w", farm.FarmUniqueNo, err)
	}
	return nil
}

// ListFarms decodes loosely and re-normalizes, since documents written by older importers
// kept list-typed ids and dashed phone numbers.
func (r *MongoRegistry) ListFarms(ctx context.Context) ([]model.Farm, error) {
	cur, err := r.Stores.FarmInfo.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "farm_unique_no", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find farms: %w", err)
	}
	defer func(cur *mongo.Cursor, ctx context.Context) {
		_ = cur.Close(ctx)
	}(cur, ctx)

	var out []model.Farm
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode farm: %w", err)
		}
		out = append(out, model.NormalizeFarm(model.RawFarm(doc)))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate farms: %w", err)
	}
	return out, nil
}

func (r *MongoRegistry) UpsertAnimalStatus(ctx context.Context, cattleNo, farmID string, status model.AnimalStatus) error {
	_, err := r.Stores.AnimalMaster.UpdateOne(ctx,
		bson.M{"cattleNo": cattleNo},
		bson.M{"$set": bson.M{"farm_id": farmID, "status": status}},
		upsert,
	)
	if err != nil {
		return fmt.Errorf("upsert animal %s: %w", cattleNo, err)
	}
	return nil
}

func (r *MongoRegistry) UpsertAnimalDetail(ctx context.Context, detail model.AnimalHistoryDetail) error {
	set := bson.M{
		"history":      detail.History,
		"status":       detail.Status,
		"last_updated": detail.LastUpdated,
	}
	update := bson.M{"$set": set}
	switch {
	case detail.Status != model.StatusSlaughtered:
		update["$unset"] = bson.M{"grade_result": ""}
	case detail.GradeResult != nil:
		set["grade_result"] = detail.GradeResult
	}
	_, err := r.Stores.AnimalHistoryDetail.UpdateOne(ctx,
		bson.M{"cattleNo": detail.CattleNo},
		update,
		upsert,
	)
	if err != nil {
		return fmt.Errorf("upsert history detail %s: %w", detail.CattleNo, err)
	}
	return nil
}

func (r *MongoRegistry) TouchAnimalTimestamp(ctx context.Context, cattleNo string, ts time.Time) error {
	_, err := r.Stores.AnimalMaster.UpdateOne(ctx,
		bson.M{"cattleNo": cattleNo},
		bson.M{"$set": bson.M{"last_updated": ts}},
	)
	if err != nil {
		return fmt.Errorf("touch animal %s: %w", cattleNo, err)
	}
	return nil
}

// SelectStaleAnimals relies on MongoDB's ascending sort placing null and missing
// last_updated before any date.
func (r *MongoRegistry) SelectStaleAnimals(ctx context.Context, threshold time.Duration, limit int, now time.Time) ([]model.Animal, error) {
	if limit <= 0 {
		return nil, nil
	}
	filter := bson.M{"$or": bson.A{
		bson.M{"last_updated": bson.M{"$exists": false}},
		bson.M{"last_updated": nil},
		bson.M{"last_updated": bson.M{"$lt": Cutoff(now, threshold)}},
	}}
	opts := options.Find().
		SetSort(bson.D{{Key: "last_updated", Value: 1}, {Key: "cattleNo", Value: 1}}).
		SetLimit(int64(limit))

	cur, err := r.Stores.AnimalMaster.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find stale animals: %w", err)
	}
	var out []model.Animal
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode stale animals: %w", err)
	}
	return out, nil
}

func (r *MongoRegistry) ListAnimals(ctx context.Context, filter AnimalFilter) ([]model.Animal, int64, error) {
	q := bson.M{}
	if filter.FarmID != "" {
		q["farm_id"] = filter.FarmID
	}
	if filter.Status != model.StatusUnknown {
		q["status"] = filter.Status
	}

	total, err := r.Stores.AnimalMaster.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("count animals: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "cattleNo", Value: 1}}).SetSkip(filter.Skip)
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}
	cur, err := r.Stores.AnimalMaster.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find animals: %w", err)
	}
	var out []model.Animal
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("decode animals: %w", err)
	}
	return out, total, nil
}

func (r *MongoRegistry) GetAnimalDetail(ctx context.Context, cattleNo string) (*model.AnimalHistoryDetail, error) {
	var detail model.AnimalHistoryDetail
	err := r.Stores.AnimalHistoryDetail.FindOne(ctx, bson.M{"cattleNo": cattleNo}).Decode(&detail)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find history detail %s: %w", cattleNo, err)
	}
	return &detail, nil
}
