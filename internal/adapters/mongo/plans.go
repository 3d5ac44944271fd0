package mongo

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/wedding-invites-and-seating/internal/domain"
	"github.com/robertarktes/wedding-invites-and-seating/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PlanRepository struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewPlanRepository(ctx context.Context, db *mongo.Database, logger observability.Logger) (*PlanRepository, error) {
	coll := db.Collection("seatingPlans")
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, errors.Wrap(err, "create slug index")
	}
	return &PlanRepository{coll: coll, logger: logger}, nil
}

type tableDoc struct {
	ID       string   `bson:"id"`
	Label    string   `bson:"label"`
	Type     string   `bson:"type"`
	X        float64  `bson:"x"`
	Y        float64  `bson:"y"`
	Rotation float64  `bson:"rotation"`
	Capacity int      `bson:"capacity"`
	GuestIDs []string `bson:"guestIds"`
}

type planDoc struct {
	Slug      string     `bson:"slug"`
	Name      string     `bson:"name"`
	Width     float64    `bson:"width"`
	Height    float64    `bson:"height"`
	Tables    []tableDoc `bson:"tables"`
	CreatedAt time.Time  `bson:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt"`
}

func (d planDoc) toDomain() *domain.SeatingPlan {
	tables := make([]domain.Table, len(d.Tables))
	for i, t := range d.Tables {
		guestIDs := t.GuestIDs
		if guestIDs == nil {
			guestIDs = []string{}
		}
		tables[i] = domain.Table{
			ID:       t.ID,
			Label:    t.Label,
			Type:     domain.TableType(t.Type),
			X:        t.X,
			Y:        t.Y,
			Rotation: t.Rotation,
			Capacity: t.Capacity,
			GuestIDs: guestIDs,
		}
	}
	return &domain.SeatingPlan{
		Slug:      d.Slug,
		Name:      d.Name,
		Width:     d.Width,
		Height:    d.Height,
		Tables:    tables,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func tablesToDocs(tables []domain.Table) []tableDoc {
	docs := make([]tableDoc, len(tables))
	for i, t := range tables {
		guestIDs := t.GuestIDs
		if guestIDs == nil {
			guestIDs = []string{}
		}
		docs[i] = tableDoc{
			ID:       t.ID,
			Label:    t.Label,
			Type:     string(t.Type),
			X:        t.X,
			Y:        t.Y,
			Rotation: t.Rotation,
			Capacity: t.Capacity,
			GuestIDs: guestIDs,
		}
	}
	return docs
}

func (r *PlanRepository) Get(ctx context.Context, slug string) (*domain.SeatingPlan, error) {
	var doc planDoc
	err := r.coll.FindOne(ctx, bson.M{"slug": slug}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find plan")
	}
	return doc.toDomain(), nil
}

// GetOrCreate returns the plan for slug, creating it with the given defaults
// and an empty table list when absent. A duplicate-key error on insert means
// another request created the plan first; the fresh document is refetched.
func (r *PlanRepository) GetOrCreate(ctx context.Context, slug string, defaults domain.PlanDefaults) (*domain.SeatingPlan, error) {
	plan, err := r.Get(ctx, slug)
	if err == nil {
		return plan, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	doc := planDoc{
		Slug:      slug,
		Name:      defaults.Name,
		Width:     defaults.Width,
		Height:    defaults.Height,
		Tables:    []tableDoc{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return r.Get(ctx, slug)
		}
		r.logger.Error("failed to create seating plan", err)
		return nil, errors.Wrap(err, "insert plan")
	}
	return doc.toDomain(), nil
}

func (r *PlanRepository) UpdateDetails(ctx context.Context, slug string, details domain.PlanDetails) (*domain.SeatingPlan, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if details.Name != nil {
		set["name"] = *details.Name
	}
	if details.Width != nil {
		set["width"] = *details.Width
	}
	if details.Height != nil {
		set["height"] = *details.Height
	}
	return r.findOneAndSet(ctx, slug, set)
}

// ReplaceTables atomically overwrites the whole table array. This is the sole
// mutation primitive tables go through; callers compute the next array in
// memory and round-trip it here. O(N) per mutation, fine for tens of tables.
func (r *PlanRepository) ReplaceTables(ctx context.Context, slug string, tables []domain.Table) (*domain.SeatingPlan, error) {
	start := time.Now()
	plan, err := r.findOneAndSet(ctx, slug, bson.M{
		"tables":    tablesToDocs(tables),
		"updatedAt": time.Now().UTC(),
	})
	observability.PlanWriteDuration.Observe(time.Since(start).Seconds())
	return plan, err
}

func (r *PlanRepository) findOneAndSet(ctx context.Context, slug string, set bson.M) (*domain.SeatingPlan, error) {
	var doc planDoc
	err := r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"slug": slug},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to update seating plan", err)
		return nil, errors.Wrap(err, "update plan")
	}
	return doc.toDomain(), nil
}
