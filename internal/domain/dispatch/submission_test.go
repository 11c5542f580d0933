package dispatch

import (
	"errors"
	"testing"

	"github.com/logistics/console/internal/domain/route"
	"github.com/logistics/console/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     SubmissionStatus
		to       SubmissionStatus
		canTrans bool
	}{
		{SubmissionIdle, SubmissionSubmitting, true},
		{SubmissionIdle, SubmissionSucceeded, false},
		{SubmissionSubmitting, SubmissionSucceeded, true},
		{SubmissionSubmitting, SubmissionFailed, true},
		{SubmissionSubmitting, SubmissionSubmitting, false},
		{SubmissionSubmitting, SubmissionIdle, false},
		{SubmissionSucceeded, SubmissionIdle, true},
		{SubmissionFailed, SubmissionIdle, true},
		{SubmissionFailed, SubmissionSubmitting, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestSubmission_SuccessCycle(t *testing.T) {
	sub := NewSubmission(Form{ItemID: 1, Quantity: 2, DeliveryPoint: "1600 Amphitheatre Pkwy"})

	require.NoError(t, sub.Begin())
	assert.Equal(t, SubmissionSubmitting, sub.Status)

	resp := Response{DispatchID: 7, Route: route.RouteResponse{Route: []string{"1,2", "3,4"}}}
	require.NoError(t, sub.Succeed(resp))
	assert.Equal(t, SubmissionSucceeded, sub.Status)
	assert.Equal(t, int64(7), sub.Response.DispatchID)
	assert.GreaterOrEqual(t, sub.Elapsed().Nanoseconds(), int64(0))

	notice, err := sub.Acknowledge()
	require.NoError(t, err)
	assert.Equal(t, SubmissionIdle, sub.Status)
	assert.Equal(t, "Success", notice.Title)
	assert.Equal(t, "Dispatch created successfully", notice.Description)
	assert.Equal(t, shared.NoticeDefault, notice.Variant)
}

func TestSubmission_FailureKeepsForm(t *testing.T) {
	form := Form{ItemID: 3, Quantity: 4, DeliveryPoint: "Pier 39"}
	sub := NewSubmission(form)
	cause := errors.New("boom")

	require.NoError(t, sub.Begin())
	require.NoError(t, sub.Fail(cause))

	assert.Equal(t, SubmissionFailed, sub.Status)
	assert.Equal(t, cause, sub.Err)
	assert.Equal(t, form, sub.Form)

	notice, err := sub.Acknowledge()
	require.NoError(t, err)
	assert.Equal(t, "Error", notice.Title)
	assert.Equal(t, "Failed to create dispatch", notice.Description)
	assert.Equal(t, shared.NoticeDestructive, notice.Variant)
	assert.Equal(t, form, sub.Form)
}

func TestSubmission_BeginTwiceRejected(t *testing.T) {
	sub := NewSubmission(DefaultForm())
	require.NoError(t, sub.Begin())

	err := sub.Begin()

	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "INVALID_STATE", de.Code)
}

func TestSubmission_AcknowledgeWithoutOutcome(t *testing.T) {
	sub := NewSubmission(DefaultForm())

	_, err := sub.Acknowledge()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_STATE", de.Code)
	assert.Equal(t, SubmissionIdle, sub.Status)

	require.NoError(t, sub.Begin())
	_, err = sub.Acknowledge()
	assert.Error(t, err)
	assert.Equal(t, SubmissionSubmitting, sub.Status, "an in-flight submission is not reset")
}

func TestForm_ToRequest(t *testing.T) {
	form := Form{ItemID: 1, Quantity: 2, DeliveryPoint: " 1600 Amphitheatre Pkwy "}

	req := form.ToRequest()

	assert.Equal(t, []LineItem{{ID: 1, Quantity: 2}}, req.Items)
	assert.Equal(t, []string{"1600 Amphitheatre Pkwy"}, req.DeliveryPoints)
	assert.NoError(t, req.Validate())
}

func TestDefaultForm(t *testing.T) {
	form := DefaultForm()

	assert.Equal(t, int64(1), form.ItemID)
	assert.Equal(t, int64(1), form.Quantity)
	assert.Empty(t, form.DeliveryPoint)
}

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name     string
		req      Request
		wantCode string
	}{
		{"no items", Request{DeliveryPoints: []string{"a"}}, "NO_ITEMS"},
		{"bad id", Request{Items: []LineItem{{ID: 0, Quantity: 1}}, DeliveryPoints: []string{"a"}}, "INVALID_ITEM_ID"},
		{"bad quantity", Request{Items: []LineItem{{ID: 1, Quantity: 0}}, DeliveryPoints: []string{"a"}}, "INVALID_QUANTITY"},
		{"no delivery points", Request{Items: []LineItem{{ID: 1, Quantity: 1}}}, "NO_DELIVERY_POINTS"},
		{"blank delivery point", Request{Items: []LineItem{{ID: 1, Quantity: 1}}, DeliveryPoints: []string{"  "}}, "INVALID_DELIVERY_POINT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var de *shared.DomainError
			require.True(t, errors.As(tt.req.Validate(), &de))
			assert.Equal(t, tt.wantCode, de.Code)
		})
	}
}
