package provision

import (
	"context"
	"errors"
	"testing"

	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver() (*Resolver, *fakeCustomers) {
	source := &fakeCustomers{customers: []model.Customer{
		customer("c1", "김영희"),
		customer("c2", "김영수"),
		customer("c3", "박철수"),
		{ID: "c4", Name: "김영자", Status: "중지"},
	}}
	return NewResolver(source), source
}

func TestResolver_EmptyKeywordIssuesNoQuery(t *testing.T) {
	r, source := newTestResolver()

	_, err := r.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyKeyword)
	assert.Zero(t, source.calls)
	assert.Equal(t, ResolverClosed, r.State())
}

func TestResolver_FiltersByNameAndStatus(t *testing.T) {
	r, _ := newTestResolver()

	n, err := r.Search(context.Background(), "김영")
	require.NoError(t, err)
	assert.Nil(t, n)
	assert.Equal(t, ResolverOpen, r.State())
	assert.Equal(t, -1, r.ActiveIndex())

	ids := []string{}
	for _, c := range r.Candidates() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"c1", "c2"}, ids)
}

func TestResolver_NoMatch(t *testing.T) {
	r, _ := newTestResolver()

	n, err := r.Search(context.Background(), "최")
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, NoticeCustomerNotFound, n.Code)
	assert.Equal(t, ResolverClosed, r.State())
}

func TestResolver_SingleMatchIsHighlightedNotTaken(t *testing.T) {
	r, _ := newTestResolver()

	_, err := r.Search(context.Background(), "철수")
	require.NoError(t, err)
	assert.Equal(t, ResolverSelected, r.State())

	c, ok := r.Selected()
	require.True(t, ok)
	assert.Equal(t, "c3", c.ID)
	assert.Len(t, r.Candidates(), 1)
}

func TestResolver_MoveIsCircular(t *testing.T) {
	r, _ := newTestResolver()
	_, err := r.Search(context.Background(), "김영")
	require.NoError(t, err)

	r.Move(DirectionDown)
	assert.Equal(t, 0, r.ActiveIndex())
	r.Move(DirectionDown)
	assert.Equal(t, 1, r.ActiveIndex())
	r.Move(DirectionDown)
	assert.Equal(t, 0, r.ActiveIndex())
	r.Move(DirectionUp)
	assert.Equal(t, 1, r.ActiveIndex())
}

func TestResolver_UpFromNothingSelectsLast(t *testing.T) {
	r, _ := newTestResolver()
	_, err := r.Search(context.Background(), "김영")
	require.NoError(t, err)

	r.Move(DirectionUp)
	assert.Equal(t, 1, r.ActiveIndex())
}

func TestResolver_TakeRequiresSelection(t *testing.T) {
	r, _ := newTestResolver()
	_, err := r.Search(context.Background(), "김영")
	require.NoError(t, err)

	_, err = r.Take()
	assert.ErrorIs(t, err, ErrNoSelection)

	require.NoError(t, r.Select(1))
	c, err := r.Take()
	require.NoError(t, err)
	assert.Equal(t, "c2", c.ID)
	assert.Equal(t, ResolverClosed, r.State())
	assert.Empty(t, r.Query())
}

func TestResolver_SelectOutOfRange(t *testing.T) {
	r, _ := newTestResolver()
	assert.ErrorIs(t, r.Select(0), ErrCandidateOutOfRange)
}

func TestResolver_Abort(t *testing.T) {
	r, _ := newTestResolver()
	_, err := r.Search(context.Background(), "김영")
	require.NoError(t, err)

	r.Abort()
	assert.Equal(t, ResolverClosed, r.State())
	assert.Empty(t, r.Query())
	_, ok := r.Selected()
	assert.False(t, ok)
}

func TestResolver_SourceFailure(t *testing.T) {
	source := &fakeCustomers{err: errors.New("unavailable")}
	r := NewResolver(source)

	_, err := r.Search(context.Background(), "김")
	assert.Error(t, err)
	assert.Equal(t, ResolverClosed, r.State())
}
