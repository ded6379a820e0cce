package group

import (
	"context"
	"testing"

	"github.com/skyportal/skyportal/internal/errdef"
	"github.com/skyportal/skyportal/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindAllFromUser(t *testing.T) {
	user := &model.User{
		Groups:      []model.Group{{ID: 2, Name: "ztf"}, {ID: 1, Name: "atlas"}},
		AdminGroups: []model.Group{{ID: 2, Name: "ztf"}},
	}

	groups := findAllFromUser(user)

	require.Len(t, groups, 2)
	assert.Equal(t, "atlas", groups[0].Name)
	assert.Equal(t, "ztf", groups[1].Name)
}

func TestService_FindWithDetails(t *testing.T) {
	s := NewService(nil, nil)

	_, err := s.FindWithDetails(context.Background(), &model.User{ID: 1}, 7)

	require.Error(t, err)
	assert.True(t, errdef.IsNotFound(err), "want non members to not see the group")
}
