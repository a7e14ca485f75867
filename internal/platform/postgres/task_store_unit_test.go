package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/store"
)

func TestBuildListQuery_OwnerOnly(t *testing.T) {
	ownerID := uuid.New()

	query, args := buildListQuery(ownerID, store.TaskFilter{Limit: 20})

	assert.Contains(t, query, "WHERE owner_id = $1")
	assert.Contains(t, query, "ORDER BY created_at DESC, id DESC")
	assert.Contains(t, query, "LIMIT $2")
	assert.Contains(t, query, "OFFSET $3")
	assert.Equal(t, []any{ownerID, 20, 0}, args)
}

func TestBuildListQuery_StatusFilter(t *testing.T) {
	ownerID := uuid.New()
	status := domain.TaskStatusDone

	query, args := buildListQuery(ownerID, store.TaskFilter{Status: &status, Limit: 10})

	assert.Contains(t, query, "AND status = $2")
	assert.Equal(t, []any{ownerID, status, 10, 0}, args)
}

func TestBuildListQuery_Search(t *testing.T) {
	ownerID := uuid.New()

	query, args := buildListQuery(ownerID, store.TaskFilter{Search: "groceries", Limit: 10})

	assert.Contains(t, query, "AND (title ILIKE $2 OR description ILIKE $2)")
	assert.Equal(t, "%groceries%", args[1])
}

func TestBuildListQuery_SearchEscapesMetacharacters(t *testing.T) {
	ownerID := uuid.New()

	_, args := buildListQuery(ownerID, store.TaskFilter{Search: `50%_done\now`, Limit: 10})

	assert.Equal(t, `%50\%\_done\\now%`, args[1])
}

func TestBuildListQuery_DueBounds(t *testing.T) {
	ownerID := uuid.New()
	after := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

	query, args := buildListQuery(ownerID, store.TaskFilter{
		DueAfter:  &after,
		DueBefore: &before,
		Limit:     10,
	})

	assert.Contains(t, query, "AND due_date >= $2")
	assert.Contains(t, query, "AND due_date <= $3")
	assert.Equal(t, []any{ownerID, after, before, 10, 0}, args)
}

func TestBuildListQuery_AllFiltersTogether(t *testing.T) {
	ownerID := uuid.New()
	status := domain.TaskStatusTodo
	after := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

	query, args := buildListQuery(ownerID, store.TaskFilter{
		Status:    &status,
		Search:    "report",
		DueAfter:  &after,
		DueBefore: &before,
		Offset:    40,
		Limit:     20,
	})

	assert.Contains(t, query, "AND status = $2")
	assert.Contains(t, query, "AND (title ILIKE $3 OR description ILIKE $3)")
	assert.Contains(t, query, "AND due_date >= $4")
	assert.Contains(t, query, "AND due_date <= $5")
	assert.Contains(t, query, "LIMIT $6")
	assert.Contains(t, query, "OFFSET $7")

	require.Len(t, args, 7)
	assert.Equal(t, ownerID, args[0])
	assert.Equal(t, status, args[1])
	assert.Equal(t, "%report%", args[2])
	assert.Equal(t, after, args[3])
	assert.Equal(t, before, args[4])
	assert.Equal(t, 20, args[5])
	assert.Equal(t, 40, args[6])
}

func TestEscapeLikePattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "plain"},
		{in: "100%", want: `100\%`},
		{in: "snake_case", want: `snake\_case`},
		{in: `back\slash`, want: `back\\slash`},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeLikePattern(tt.in), "input %q", tt.in)
	}
}
