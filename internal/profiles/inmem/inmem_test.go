package inmem

import (
	"context"
	"testing"
	"time"

	"github.com/dekarrin/constrain/internal/errs"
	"github.com/dekarrin/constrain/internal/profiles"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func Test_ProfilesRepository_CreateThenGetByID(t *testing.T) {
	assert := assert.New(t)

	repo := NewProfilesRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, profiles.Profile{
		Name:      "dna",
		Owner:     "alice",
		BNFSource: "<dna> ::= 'A' ;",
		Start:     "dna",
	})
	if !assert.NoError(err) {
		return
	}
	assert.NotEqual(created.ID.String(), "00000000-0000-0000-0000-000000000000")

	got, err := repo.GetByID(ctx, created.ID)
	if !assert.NoError(err) {
		return
	}
	assert.Equal(created, got)
}

func Test_ProfilesRepository_GetByID_notFound(t *testing.T) {
	repo := NewProfilesRepository()
	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func Test_ProfilesRepository_Delete(t *testing.T) {
	assert := assert.New(t)
	repo := NewProfilesRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, profiles.Profile{Name: "x", Owner: "bob"})
	if !assert.NoError(err) {
		return
	}

	_, err = repo.Delete(ctx, created.ID)
	assert.NoError(err)

	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(err, errs.ErrNotFound)
}

func Test_ProfilesRepository_GetAllByOwner(t *testing.T) {
	assert := assert.New(t)
	repo := NewProfilesRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, profiles.Profile{Name: "a", Owner: "alice"})
	assert.NoError(err)
	_, err = repo.Create(ctx, profiles.Profile{Name: "b", Owner: "alice"})
	assert.NoError(err)
	_, err = repo.Create(ctx, profiles.Profile{Name: "c", Owner: "bob"})
	assert.NoError(err)

	owned, err := repo.GetAllByOwner(ctx, "alice")
	if !assert.NoError(err) {
		return
	}
	assert.Len(owned, 2)
}

func Test_SessionsRepository_CreateThenTouch(t *testing.T) {
	assert := assert.New(t)
	repo := NewSessionsRepository()
	ctx := context.Background()

	profileID := uuid.New()
	created, err := repo.Create(ctx, profiles.Session{ProfileID: profileID})
	if !assert.NoError(err) {
		return
	}

	later := created.LastActive.Add(time.Minute)
	touched, err := repo.Touch(ctx, created.ID, later)
	if !assert.NoError(err) {
		return
	}
	assert.True(touched.LastActive.Equal(later))
}

func Test_SessionsRepository_GetAllByProfile(t *testing.T) {
	assert := assert.New(t)
	repo := NewSessionsRepository()
	ctx := context.Background()

	profileID := uuid.New()
	otherProfileID := uuid.New()

	_, err := repo.Create(ctx, profiles.Session{ProfileID: profileID})
	assert.NoError(err)
	_, err = repo.Create(ctx, profiles.Session{ProfileID: profileID})
	assert.NoError(err)
	_, err = repo.Create(ctx, profiles.Session{ProfileID: otherProfileID})
	assert.NoError(err)

	sessions, err := repo.GetAllByProfile(ctx, profileID)
	if !assert.NoError(err) {
		return
	}
	assert.Len(sessions, 2)
}
