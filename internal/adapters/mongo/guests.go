package mongo

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/wedding-invites-and-seating/internal/domain"
	"github.com/robertarktes/wedding-invites-and-seating/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GuestRepository is the guest directory. Phone uniqueness is backed by a
// unique index in addition to the duplicate-key mapping here.
type GuestRepository struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewGuestRepository(ctx context.Context, db *mongo.Database, logger observability.Logger) (*GuestRepository, error) {
	coll := db.Collection("guests")
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "phone", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, errors.Wrap(err, "create phone index")
	}
	return &GuestRepository{coll: coll, logger: logger}, nil
}

type guestDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	FirstName        string             `bson:"firstName"`
	LastName         string             `bson:"lastName"`
	Phone            string             `bson:"phone"`
	PartySize        int                `bson:"partySize"`
	Attending        *bool              `bson:"attending"`
	Language         string             `bson:"language"`
	LastInviteSentAt *time.Time         `bson:"lastInviteSentAt"`
	CreatedAt        time.Time          `bson:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt"`
}

func (d guestDoc) toDomain() *domain.Guest {
	return &domain.Guest{
		ID:               d.ID.Hex(),
		FirstName:        d.FirstName,
		LastName:         d.LastName,
		Phone:            d.Phone,
		PartySize:        d.PartySize,
		Attending:        d.Attending,
		Language:         domain.Language(d.Language),
		LastInviteSentAt: d.LastInviteSentAt,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func (r *GuestRepository) Create(ctx context.Context, input domain.GuestInput) (string, error) {
	now := time.Now().UTC()
	doc := guestDoc{
		FirstName:        input.FirstName,
		LastName:         input.LastName,
		Phone:            input.Phone,
		PartySize:        input.PartySize,
		Attending:        input.Attending,
		Language:         string(input.Language),
		LastInviteSentAt: nil,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", domain.ErrDuplicateContact
		}
		r.logger.Error("failed to create guest", err)
		return "", errors.Wrap(err, "insert guest")
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id.Hex(), nil
}

func (r *GuestRepository) FindByID(ctx context.Context, id string) (*domain.Guest, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	var doc guestDoc
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find guest")
	}
	return doc.toDomain(), nil
}

// List returns all guests, most recently updated first.
func (r *GuestRepository) List(ctx context.Context) ([]domain.Guest, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "list guests")
	}
	defer cur.Close(ctx)

	var guests []domain.Guest
	for cur.Next(ctx) {
		var doc guestDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode guest")
		}
		guests = append(guests, *doc.toDomain())
	}
	return guests, cur.Err()
}

func (r *GuestRepository) Update(ctx context.Context, id string, update domain.GuestUpdate) (*domain.Guest, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.FirstName != nil {
		set["firstName"] = *update.FirstName
	}
	if update.LastName != nil {
		set["lastName"] = *update.LastName
	}
	if update.Phone != nil {
		set["phone"] = *update.Phone
	}
	if update.PartySize != nil {
		set["partySize"] = *update.PartySize
	}
	if update.Language != nil {
		set["language"] = string(*update.Language)
	}
	if update.SetAttending {
		set["attending"] = update.Attending
	}
	if update.SetLastInviteSentAt {
		set["lastInviteSentAt"] = update.LastInviteSentAt
	}

	var doc guestDoc
	err = r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateContact
		}
		r.logger.Error("failed to update guest", err)
		return nil, errors.Wrap(err, "update guest")
	}
	return doc.toDomain(), nil
}

// Delete removes a guest and reports whether a record existed. Deleting an
// absent guest is not an error.
func (r *GuestRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, errors.Wrap(err, "delete guest")
	}
	return res.DeletedCount > 0, nil
}

func (r *GuestRepository) MarkInvited(ctx context.Context, id string) (*domain.Guest, error) {
	now := time.Now().UTC()
	return r.Update(ctx, id, domain.GuestUpdate{
		LastInviteSentAt:    &now,
		SetLastInviteSentAt: true,
	})
}
