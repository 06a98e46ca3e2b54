package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/GoArmGo/PhotoHub/internal/domain"
	"github.com/GoArmGo/PhotoHub/internal/messaging/payloads"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	reg, err := env.auth.Register(ctx, RegisterInput{
		Username: "ann",
		Email:    "Ann@Example.com",
		Password: "correct-horse",
		Name:     strPtr("Ann"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "ann@example.com", reg.User.Email)

	stored, err := env.store.GetUserByUsername(ctx, "ann")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", stored.PasswordHash)

	login, err := env.auth.Login(ctx, "ann", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	_, err = env.auth.Login(ctx, "ann", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = env.auth.Login(ctx, "nobody", "correct-horse")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestRegister_ConflictsAndValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.auth.Register(ctx, RegisterInput{Username: "ann", Email: "ann@example.com", Password: "12345678"})
	require.NoError(t, err)

	_, err = env.auth.Register(ctx, RegisterInput{Username: "ann", Email: "other@example.com", Password: "12345678"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = env.auth.Register(ctx, RegisterInput{Username: "other", Email: "ann@example.com", Password: "12345678"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	cases := []RegisterInput{
		{Username: "an", Email: "a@b.c", Password: "12345678"},
		{Username: strings.Repeat("a", 51), Email: "a@b.c", Password: "12345678"},
		{Username: "anna", Email: "not-an-email", Password: "12345678"},
		{Username: "anna", Email: "a@b.c", Password: "short"},
	}
	for _, in := range cases {
		_, err := env.auth.Register(ctx, in)
		assert.ErrorIs(t, err, domain.ErrValidation, "input %+v", in)
	}
}

func TestProfile_PartialUpdateSelfOnly(t *testing.T) {
	env := newTestEnv(t)
	ann, bob := env.user(t, "ann"), env.user(t, "bob")
	ctx := context.Background()

	_, err := env.users.UpdateProfile(ctx, ann, domain.ProfilePatch{Bio: strPtr("hi")}, bob)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	got, err := env.users.UpdateProfile(ctx, ann, domain.ProfilePatch{Bio: strPtr("hi"), Location: strPtr("Oslo")}, ann)
	require.NoError(t, err)
	assert.Equal(t, "hi", *got.Bio)
	assert.Equal(t, "ann@example.com", got.Email)

	got, err = env.users.UpdateProfile(ctx, ann, domain.ProfilePatch{Bio: strPtr("")}, ann)
	require.NoError(t, err)
	assert.Equal(t, "", *got.Bio)
	assert.Equal(t, "Oslo", *got.Location)

	_, err = env.users.UpdateProfile(ctx, ann, domain.ProfilePatch{Bio: strPtr(strings.Repeat("b", 501))}, ann)
	assert.ErrorIs(t, err, domain.ErrValidation)

	public, err := env.users.GetByUsername(ctx, "ann", bob)
	require.NoError(t, err)
	assert.Empty(t, public.Email)
}

func TestProfile_ImageReplacesPrevious(t *testing.T) {
	env := newTestEnv(t)
	ann := env.user(t, "ann")
	ctx := context.Background()

	first, err := env.users.UpdateProfileImage(ctx, ann, validImage, ann)
	require.NoError(t, err)
	require.NotNil(t, first.ProfileImageURL)
	assert.Equal(t, "http://files.test/bucket/profiles/1", *first.ProfileImageURL)

	second, err := env.users.UpdateProfileImage(ctx, ann, validImage, ann)
	require.NoError(t, err)
	assert.Equal(t, "http://files.test/bucket/profiles/2", *second.ProfileImageURL)
	assert.Equal(t, []string{"profiles/1"}, env.files.deleted)

	_, err = env.users.UpdateProfileImage(ctx, ann, []byte("nope"), ann)
	assert.ErrorIs(t, err, domain.ErrInvalidMedia)
}

func TestProfile_Stats(t *testing.T) {
	env := newTestEnv(t)
	ann := env.user(t, "ann")
	ctx := context.Background()
	env.photo(t, ann, "one")
	env.photo(t, ann, "two")
	_, err := env.collections.Create(ctx, ann, CollectionInput{Title: "c", IsPrivate: true})
	require.NoError(t, err)

	got, err := env.users.Get(ctx, ann, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.PhotosCount)
	assert.Equal(t, int64(1), got.CollectionsCount)

	_, err = env.users.Get(ctx, uuid.New(), uuid.Nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestThumbnail_GeneratedOnceAndSkippedForSmallOrDeleted(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "ann")
	ctx := context.Background()
	p := env.photo(t, owner, "lake")
	event := env.publisher.events[0]

	require.NoError(t, env.thumbnails.Process(ctx, event))
	stored, err := env.store.GetPhotoByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ThumbnailKey)
	assert.True(t, strings.HasPrefix(*stored.ThumbnailKey, ThumbnailsFolder+"/"))

	view, err := env.photos.View(ctx, p.ID, uuid.Nil)
	require.NoError(t, err)
	assert.NotEqual(t, view.ImageURL, view.ThumbnailURL)

	uploads := len(env.files.objects)
	require.NoError(t, env.thumbnails.Process(ctx, event))
	assert.Len(t, env.files.objects, uploads)

	require.NoError(t, env.thumbnails.Process(ctx, payloads.PhotoUploadedPayload{PhotoID: p.ID, Width: 300}))
	require.NoError(t, env.thumbnails.Process(ctx, payloads.PhotoUploadedPayload{PhotoID: uuid.New(), Width: 4000}))
}

func TestThumbnail_MissingOriginalIsSkipped(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "ann")
	ctx := context.Background()
	p := env.photo(t, owner, "lake")
	event := env.publisher.events[0]

	stored, err := env.store.GetPhotoByID(ctx, p.ID)
	require.NoError(t, err)
	delete(env.files.objects, stored.ImageKey)

	require.NoError(t, env.thumbnails.Process(ctx, event))

	stored, err = env.store.GetPhotoByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ThumbnailKey)
	assert.Empty(t, env.files.objects)
}
