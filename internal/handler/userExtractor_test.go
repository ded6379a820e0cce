package handler

import (
	"context"
	"testing"

	"github.com/skyportal/skyportal/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserFromContext(t *testing.T) {
	user := &model.User{
		ID:       1000,
		Username: "some@thing.dk",
		Groups: []model.Group{
			{ID: 1, Name: "ztf"},
			{ID: 2, Name: "grandma"},
		},
		Affiliations: []string{"Caltech"},
	}
	ctx := model.NewContextWithUser(context.Background(), user)

	u, err := GetUserFromContext(ctx)
	require.NoError(t, err)

	assert.Equal(t, uint(1000), u.ID)
	assert.Equal(t, "some@thing.dk", u.Username)
	assert.Len(t, u.Groups, 2)
	assert.Equal(t, []string{"Caltech"}, []string(u.Affiliations))
}

func TestGetUserFromContext_Missing(t *testing.T) {
	_, err := GetUserFromContext(context.Background())

	assert.EqualError(t, err, "user not found on context")
}
