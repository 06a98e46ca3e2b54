package usecase

import (
	"context"
	"testing"

	"github.com/GoArmGo/PhotoHub/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollection_PrivateVisibility(t *testing.T) {
	env := newTestEnv(t)
	a, b := env.user(t, "ann"), env.user(t, "bob")
	ctx := context.Background()

	private, err := env.collections.Create(ctx, a, CollectionInput{Title: "drafts", IsPrivate: true})
	require.NoError(t, err)
	public, err := env.collections.Create(ctx, a, CollectionInput{Title: "best of"})
	require.NoError(t, err)

	got, err := env.collections.Get(ctx, private.ID, a)
	require.NoError(t, err)
	assert.Equal(t, "drafts", got.Title)

	_, err = env.collections.Get(ctx, private.ID, b)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = env.collections.Get(ctx, private.ID, uuid.Nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = env.collections.Photos(ctx, private.ID, domain.NewPageRequest(0, 10), b)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	req := domain.NewPageRequest(0, 10)
	asOwner, err := env.collections.ListForUser(ctx, a, req, a)
	require.NoError(t, err)
	assert.Equal(t, int64(2), asOwner.TotalElements)

	asOther, err := env.collections.ListForUser(ctx, a, req, b)
	require.NoError(t, err)
	require.Len(t, asOther.Content, 1)
	assert.Equal(t, public.ID, asOther.Content[0].ID)

	listed, err := env.collections.ListPublic(ctx, req)
	require.NoError(t, err)
	require.Len(t, listed.Content, 1)
	assert.False(t, listed.Content[0].IsPrivate)
}

func TestCollection_AddPhotoTwiceConflicts(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "ann")
	ctx := context.Background()
	p := env.photo(t, owner, "lake")
	c, err := env.collections.Create(ctx, owner, CollectionInput{Title: "trips"})
	require.NoError(t, err)

	got, err := env.collections.AddPhoto(ctx, c.ID, p.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.PhotosCount)

	_, err = env.collections.AddPhoto(ctx, c.ID, p.ID, owner)
	assert.ErrorIs(t, err, domain.ErrConflict)

	after, err := env.collections.Get(ctx, c.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), after.PhotosCount)
}

func TestCollection_MembershipRules(t *testing.T) {
	env := newTestEnv(t)
	owner, other := env.user(t, "ann"), env.user(t, "bob")
	ctx := context.Background()
	p := env.photo(t, owner, "lake")
	c, err := env.collections.Create(ctx, owner, CollectionInput{Title: "trips"})
	require.NoError(t, err)

	_, err = env.collections.AddPhoto(ctx, c.ID, uuid.New(), owner)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.collections.AddPhoto(ctx, c.ID, p.ID, other)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = env.collections.RemovePhoto(ctx, c.ID, p.ID, owner)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = env.collections.AddPhoto(ctx, c.ID, p.ID, owner)
	require.NoError(t, err)
	got, err := env.collections.RemovePhoto(ctx, c.ID, p.ID, owner)
	require.NoError(t, err)
	assert.Zero(t, got.PhotosCount)
}

func TestCollection_CoversAreFirstThreeMembers(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "ann")
	ctx := context.Background()
	c, err := env.collections.Create(ctx, owner, CollectionInput{Title: "trips"})
	require.NoError(t, err)

	var urls []string
	for i := 0; i < 4; i++ {
		p := env.photo(t, owner, "p")
		urls = append(urls, p.ImageURL)
		_, err := env.collections.AddPhoto(ctx, c.ID, p.ID, owner)
		require.NoError(t, err)
	}

	got, err := env.collections.Get(ctx, c.ID, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.PhotosCount)
	assert.Equal(t, urls[:3], got.CoverPhotoURLs)

	photos, err := env.collections.Photos(ctx, c.ID, domain.NewPageRequest(0, 10), uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), photos.TotalElements)
}

func TestCollection_UpdateAndDeleteOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	owner, other := env.user(t, "ann"), env.user(t, "bob")
	ctx := context.Background()
	c, err := env.collections.Create(ctx, owner, CollectionInput{Title: "trips", Description: strPtr("2024")})
	require.NoError(t, err)

	private := true
	_, err = env.collections.Update(ctx, c.ID, domain.CollectionPatch{IsPrivate: &private}, other)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	got, err := env.collections.Update(ctx, c.ID, domain.CollectionPatch{IsPrivate: &private}, owner)
	require.NoError(t, err)
	assert.True(t, got.IsPrivate)
	assert.Equal(t, "trips", got.Title)
	assert.Equal(t, "2024", *got.Description)

	_, err = env.collections.Update(ctx, c.ID, domain.CollectionPatch{Title: strPtr("")}, owner)
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.ErrorIs(t, env.collections.Delete(ctx, c.ID, other), domain.ErrUnauthorized)
	require.NoError(t, env.collections.Delete(ctx, c.ID, owner))
	_, err = env.collections.Get(ctx, c.ID, owner)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCollection_DeletingPhotoDropsMembership(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "ann")
	ctx := context.Background()
	p := env.photo(t, owner, "lake")
	c, err := env.collections.Create(ctx, owner, CollectionInput{Title: "trips"})
	require.NoError(t, err)
	_, err = env.collections.AddPhoto(ctx, c.ID, p.ID, owner)
	require.NoError(t, err)

	require.NoError(t, env.photos.Delete(ctx, p.ID, owner))

	got, err := env.collections.Get(ctx, c.ID, owner)
	require.NoError(t, err)
	assert.Zero(t, got.PhotosCount)
	assert.Empty(t, got.CoverPhotoURLs)
}
