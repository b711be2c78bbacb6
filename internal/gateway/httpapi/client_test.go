package httpapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cropdoctor/diagnosis-api/internal/gateway"
	"github.com/cropdoctor/diagnosis-api/internal/model"
)

const baseURL = "http://api.test"

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client := NewClient(Config{BaseURL: baseURL})
	httpmock.ActivateNonDefault(client.http)
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

const diagnosisJSON = `{
	"diagnosis_id": 17,
	"farmer_id": "farmer-3",
	"image_path": "/uploads/leaf.jpg",
	"disease_detected": "Rice blast",
	"confidence": 0.92,
	"severity": "high",
	"full_response": "Rice blast detected on leaf tissue.",
	"treatment_suggestions": ["Apply tricyclazole"],
	"prevention_tips": ["Avoid excess nitrogen"],
	"status": "pending",
	"expert_reviewed": false,
	"created_at": "2025-06-01T08:30:00"
}`

func TestGetByIDParsesResponse(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, baseURL+"/api/v1/diagnoses/17",
		httpmock.NewStringResponder(http.StatusOK, diagnosisJSON))

	record, err := client.GetByID(context.Background(), 17)
	require.NoError(t, err)

	assert.Equal(t, 17, record.ID)
	require.NotNil(t, record.FarmerID)
	assert.Equal(t, "farmer-3", *record.FarmerID)
	assert.Equal(t, "Rice blast", record.DiseaseDetected)
	assert.InDelta(t, 0.92, record.Confidence, 1e-9)
	assert.Equal(t, model.StatusPending, record.Status)
	assert.Equal(t, time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC), record.CreatedAt)
	assert.Nil(t, record.UpdatedAt)
	require.NotNil(t, record.Details)
	assert.Equal(t, []string{"Apply tricyclazole"}, record.Details.TreatmentSuggestions)
}

func TestGetByIDDefaultsMissingStatus(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, baseURL+"/api/v1/diagnoses/1",
		httpmock.NewStringResponder(http.StatusOK,
			`{"diagnosis_id": 1, "image_path": "/a.jpg", "disease_detected": "x", "confidence": 0.5, "created_at": "2025-06-01T08:30:00"}`))

	record, err := client.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, record.Status)
	assert.Nil(t, record.Details, "no detail lists in payload")
}

func TestGetByIDDegradesBadTimestamp(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, baseURL+"/api/v1/diagnoses/1",
		httpmock.NewStringResponder(http.StatusOK,
			`{"diagnosis_id": 1, "image_path": "/a.jpg", "disease_detected": "x", "confidence": 0.5, "created_at": "yesterday", "updated_at": "also-bad"}`))

	before := time.Now().UTC()
	record, err := client.GetByID(context.Background(), 1)
	require.NoError(t, err)

	assert.False(t, record.CreatedAt.Before(before), "unparsable created_at degrades to now")
	assert.Nil(t, record.UpdatedAt, "unparsable updated_at is dropped")
}

func TestGetByIDNotFound(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, baseURL+"/api/v1/diagnoses/99",
		httpmock.NewStringResponder(http.StatusNotFound, `{"error": "no such diagnosis"}`))

	_, err := client.GetByID(context.Background(), 99)
	assert.Equal(t, gateway.KindNotFound, gateway.KindOf(err))
	assert.True(t, gateway.IsNotFound(err))
}

func TestGetByIDServerError(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, baseURL+"/api/v1/diagnoses/1",
		httpmock.NewStringResponder(http.StatusInternalServerError, "boom"))

	_, err := client.GetByID(context.Background(), 1)
	assert.Equal(t, gateway.KindServerError, gateway.KindOf(err))

	var te *gateway.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusInternalServerError, te.StatusCode)
	assert.Contains(t, te.Error(), "boom")
}

func TestGetByIDMalformedBody(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, baseURL+"/api/v1/diagnoses/1",
		httpmock.NewStringResponder(http.StatusOK, "{not json"))

	_, err := client.GetByID(context.Background(), 1)
	assert.Equal(t, gateway.KindMalformed, gateway.KindOf(err))
}

func TestGetByIDUnreachable(t *testing.T) {
	client := newTestClient(t)
	// no responder registered: httpmock fails the connection

	_, err := client.GetByID(context.Background(), 1)
	assert.Equal(t, gateway.KindUnreachable, gateway.KindOf(err))
}

func TestGetByIDCancelledContext(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, baseURL+"/api/v1/diagnoses/1",
		httpmock.NewStringResponder(http.StatusOK, diagnosisJSON))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetByID(ctx, 1)
	assert.Equal(t, gateway.KindTimeout, gateway.KindOf(err))
}

func TestCreateSubmitsMultipartForm(t *testing.T) {
	client := newTestClient(t)

	var contentType string
	httpmock.RegisterResponder(http.MethodPost, baseURL+"/api/v1/diagnoses",
		func(req *http.Request) (*http.Response, error) {
			contentType = req.Header.Get("Content-Type")
			require.NoError(t, req.ParseMultipartForm(1<<20))
			assert.Equal(t, "/uploads/leaf.jpg", req.FormValue("image"))
			assert.Equal(t, "farmer-3", req.FormValue("farmer_id"))
			assert.Equal(t, "10.7051", req.FormValue("latitude"))
			assert.Empty(t, req.FormValue("question"), "nil fields are omitted")
			return httpmock.NewStringResponse(http.StatusCreated, diagnosisJSON), nil
		})

	farmer := "farmer-3"
	lat := 10.7051
	record, err := client.Create(context.Background(), &model.CreateDiagnosisRequest{
		ImagePath: "/uploads/leaf.jpg",
		FarmerID:  &farmer,
		Latitude:  &lat,
	})
	require.NoError(t, err)
	assert.Equal(t, 17, record.ID)
	assert.Contains(t, contentType, "multipart/form-data")
}

func TestGetHistoryPaginates(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet, baseURL+"/api/v1/diagnoses",
		func(req *http.Request) (*http.Response, error) {
			query := req.URL.Query()
			assert.Equal(t, "5", query.Get("limit"))
			assert.Equal(t, "10", query.Get("offset"))
			assert.Equal(t, "farmer-3", query.Get("farmer_id"))
			return httpmock.NewStringResponse(http.StatusOK,
				`{"diagnoses": [`+diagnosisJSON+`], "total": 23, "offset": 10, "limit": 5}`), nil
		})

	farmer := "farmer-3"
	records, total, err := client.GetHistory(context.Background(), &farmer, 5, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 17, records[0].ID)
	assert.Equal(t, 23, total)
}

func TestGetHistoryDefaultsLimit(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet, baseURL+"/api/v1/diagnoses",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "10", req.URL.Query().Get("limit"))
			assert.Equal(t, "0", req.URL.Query().Get("offset"))
			return httpmock.NewStringResponse(http.StatusOK, `{"diagnoses": [], "total": 0}`), nil
		})

	records, total, err := client.GetHistory(context.Background(), nil, 0, -3)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Zero(t, total)
}
