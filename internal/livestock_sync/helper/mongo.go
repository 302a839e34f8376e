package helper

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	FarmInfoCollection            = "FarmInfo"
	AnimalMasterCollection        = "AnimalMaster"
	AnimalHistoryDetailCollection = "AnimalHistoryDetail"
)

type Stores struct {
	Client              *mongo.Client
	DB                  *mongo.Database
	FarmInfo            *mongo.Collection // 농장 정보, key: farm_unique_no
	AnimalMaster        *mongo.Collection // 개체 마스터, key: cattleNo
	AnimalHistoryDetail *mongo.Collection // 개체 이력 상세, key: cattleNo
}

// Connect opens the client, pings it within serverSelectionTimeout and ensures indexes.
func Connect(ctx context.Context, uri, dbname string, serverSelectionTimeout time.Duration) (*Stores, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(serverSelectionTimeout)

	cli, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err = cli.Ping(ctx, nil); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := cli.Database(dbname)
	s := &Stores{
		Client:              cli,
		DB:                  db,
		FarmInfo:            db.Collection(FarmInfoCollection),
		AnimalMaster:        db.Collection(AnimalMasterCollection),
		AnimalHistoryDetail: db.Collection(AnimalHistoryDetailCollection),
	}
	if err := ensureIndexes(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// MustMongo is Connect that panics; without the store nothing can run.
func MustMongo(ctx context.Context, uri, dbname string, serverSelectionTimeout time.Duration) *Stores {
	s, err := Connect(ctx, uri, dbname, serverSelectionTimeout)
	if err != nil {
		panic(err)
	}
	return s
}

// Close disconnects the underlying client.
func (s *Stores) Close(ctx context.Context) error {
	if s == nil || s.Client == nil {
		return nil
	}
	return s.Client.Disconnect(ctx)
}

func ensureIndexes(ctx context.Context, s *Stores) error {
	unique := options.Index().SetUnique(true)

	if _, err := s.FarmInfo.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "farm_unique_no", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "farm_name", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("create FarmInfo indexes: %w", err)
	}

	// last_updated 오름차순 조회 (갱신 대상 선별)
	if _, err := s.AnimalMaster.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "cattleNo", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "last_updated", Value: 1}, {Key: "cattleNo", Value: 1}}},
		{Keys: bson.D{{Key: "farm_id", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("create AnimalMaster indexes: %w", err)
	}

	if _, err := s.AnimalHistoryDetail.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "cattleNo", Value: 1}}, Options: unique},
	}); err != nil {
		return fmt.Errorf("create AnimalHistoryDetail indexes: %w", err)
	}
	return nil
}
