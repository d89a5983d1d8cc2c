package directory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiberdesk/fiberdesk/internal/shared"
)

var fixtureTime = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func TestFixturesAreDeterministic(t *testing.T) {
	a, b := Fixtures(fixtureTime), Fixtures(fixtureTime)
	ctx := context.Background()

	ac, _ := a.Complaints(ctx)
	bc, _ := b.Complaints(ctx)
	assert.Equal(t, ac, bc)
	assert.Len(t, ac, 30)
}

func TestSummary(t *testing.T) {
	svc := NewService(Fixtures(fixtureTime))

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 24, summary.Customers)
	assert.Equal(t, 8, summary.Engineers)
	assert.Equal(t, 15, summary.Leads)
	assert.Equal(t, 16, summary.OpenComplaints)
	require.Len(t, summary.ComplaintsByStatus, 4)
	assert.Equal(t, Count{Label: ComplaintOpen, Count: 8}, summary.ComplaintsByStatus[0])
	assert.Equal(t, Count{Label: LeadNew, Count: 3}, summary.LeadsByStage[0])
	assert.Greater(t, summary.MonthlyRevenue, 0.0)
}

func TestFind(t *testing.T) {
	svc := NewService(Fixtures(fixtureTime))
	ctx := context.Background()

	customer, err := svc.FindCustomer(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Citra Maharani", customer.Name)

	_, err = svc.FindEngineer(ctx, 999)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestFieldAbsentValues(t *testing.T) {
	e := Engineer{ID: 1, Name: "Rudi"}
	assert.Nil(t, e.Field("rating"))
	assert.Nil(t, e.Field("email"))
	assert.Nil(t, e.Field("unknown"))
	assert.Equal(t, "Rudi", e.Field("name"))

	c := Complaint{ID: 2}
	assert.Nil(t, c.Field("resolvedAt"))
	assert.Nil(t, c.Field("createdAt"))
}
