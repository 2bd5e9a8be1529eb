package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clubroster/membership/internal/core/domain"
	"github.com/clubroster/membership/internal/core/ports"
)

const collectionProfiles = "users"

// queryableFields maps directory filter fields to document keys.
var queryableFields = map[string]string{
	"id":       "_id",
	"email":    "email",
	"role":     "role",
	"category": "category",
}

// ProfileRepository implements ports.ProfileRepository using MongoDB.
type ProfileRepository struct {
	col *mongo.Collection
	log zerolog.Logger
}

func NewProfileRepository(db *mongo.Database, log zerolog.Logger) *ProfileRepository {
	return &ProfileRepository{col: db.Collection(collectionProfiles), log: log}
}

type profileDoc struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	FullName     string    `bson:"full_name"`
	Role         string    `bson:"role"`
	Age          int       `bson:"age"`
	Gender       string    `bson:"gender,omitempty"`
	Category     string    `bson:"category,omitempty"`
	Phone        string    `bson:"phone,omitempty"`
	ProfileImage string    `bson:"profile_image,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toProfileDoc(u *domain.User) profileDoc {
	return profileDoc{
		ID:           u.ID,
		Email:        domain.NormalizeEmail(u.Email),
		FullName:     u.FullName,
		Role:         string(u.Role),
		Age:          u.Age,
		Gender:       u.Gender,
		Category:     string(u.Category),
		Phone:        u.Phone,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt.UTC(),
		UpdatedAt:    u.UpdatedAt.UTC(),
	}
}

func (d profileDoc) toDomain() domain.User {
	return domain.User{
		ID:           d.ID,
		Email:        d.Email,
		FullName:     d.FullName,
		Role:         domain.Role(d.Role),
		Age:          d.Age,
		Gender:       d.Gender,
		Category:     domain.Category(d.Category),
		Phone:        d.Phone,
		ProfileImage: d.ProfileImage,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// buildFilter turns an equality filter into a document filter.
func buildFilter(f ports.FieldFilter) (bson.M, error) {
	key, ok := queryableFields[f.Field]
	if !ok {
		return nil, fmt.Errorf("field %q is not queryable", f.Field)
	}
	return bson.M{key: f.Value}, nil
}

// Query returns up to limit profiles matching filter.
func (r *ProfileRepository) Query(ctx context.Context, filter ports.FieldFilter, limit int64) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q, err := buildFilter(filter)
	if err != nil {
		return nil, err
	}
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return r.find(ctx, q, opts)
}

// Get returns the profile with id, or nil when it does not exist.
func (r *ProfileRepository) Get(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d profileDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	u := d.toDomain()
	return &u, nil
}

// Insert adds a new profile. A clash on _id or the unique email index is
// reported as domain.ErrUserExists.
func (r *ProfileRepository) Insert(ctx context.Context, u *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toProfileDoc(u)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// Stream watches the collection and emits a fresh snapshot on subscribe and
// after every change. Change streams need a replica set. The channel closes
// when ctx is done or the stream breaks.
func (r *ProfileRepository) Stream(ctx context.Context) (<-chan []domain.User, error) {
	cs, err := r.col.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, fmt.Errorf("watch profiles: %w", err)
	}

	out := make(chan []domain.User, 1)
	go pumpSnapshots(ctx, cs, r.snapshot, out, r.log)
	return out, nil
}

func (r *ProfileRepository) snapshot(ctx context.Context) ([]domain.User, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "full_name", Value: 1}}))
}

// changeCursor is the part of *mongo.ChangeStream that pumpSnapshots drives.
type changeCursor interface {
	Next(ctx context.Context) bool
	Err() error
	Close(ctx context.Context) error
}

// pumpSnapshots sends one snapshot up front and one per change event, then
// closes out. Failures are logged unless ctx was cancelled.
func pumpSnapshots(
	ctx context.Context,
	cs changeCursor,
	snapshot func(context.Context) ([]domain.User, error),
	out chan<- []domain.User,
	log zerolog.Logger,
) {
	defer close(out)
	defer cs.Close(context.WithoutCancel(ctx))

	emit := func() bool {
		users, err := snapshot(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Error().Err(err).Msg("directory snapshot failed, closing stream")
			}
			return false
		}
		select {
		case out <- users:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if !emit() {
		return
	}
	for cs.Next(ctx) {
		if !emit() {
			return
		}
	}
	if err := cs.Err(); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("directory change stream broke, closing stream")
	}
}

func (r *ProfileRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.User, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer cur.Close(ctx)

	var docs []profileDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	users := make([]domain.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toDomain())
	}
	return users, nil
}

// EnsureIndexes creates the unique email index that backs registration's
// duplicate check.
func (r *ProfileRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
