package nlp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spec-synth/internal/model"
)

func TestDescribeRoundTrip(t *testing.T) {
	var got Request
	var level string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/describe", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		level = r.URL.Query().Get("level")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"shortDescription":"Get order.","mediumDescription":"Returns one order.","paramDocs":[{"name":"id","doc":"Order id."}],"returnDoc":"The order."}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	resp, err := c.Describe(context.Background(), model.LevelLong, Request{
		Symbol:    "OrderController_get",
		Signature: "GET /api/orders/{id}",
		Params:    []Param{{Name: "id", Type: "Long", Required: true}},
		Returns:   Returns{Type: "OrderDto"},
	})
	require.NoError(t, err)

	assert.Equal(t, "long", level)
	assert.Equal(t, KindEndpoint, got.Kind)
	assert.Equal(t, "GET /api/orders/{id}", got.Signature)
	assert.Equal(t, "", got.Comment)
	assert.Equal(t, "OrderDto", got.Returns.Type)

	assert.Equal(t, "Returns one order.", resp.MediumDescription)
	assert.Equal(t, "Order id.", resp.ParamDoc("id"))
	assert.Equal(t, "", resp.ParamDoc("missing"))
	assert.Equal(t, "The order.", resp.ReturnDoc)
}

func TestDescribeFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			check: func(t *testing.T, err error) { assert.Contains(t, err.Error(), "status 500") },
		},
		{
			name:    "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {},
			check:   func(t *testing.T, err error) { assert.True(t, errors.Is(err, ErrEmptyResponse)) },
		},
		{
			name: "blank fields",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"shortDescription":"  ","paramDocs":[]}`))
			},
			check: func(t *testing.T, err error) { assert.True(t, errors.Is(err, ErrEmptyResponse)) },
		},
		{
			name: "malformed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"shortDescription":`))
			},
			check: func(t *testing.T, err error) { assert.Contains(t, err.Error(), "decoding response") },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			resp, err := NewClient(srv.URL).Describe(context.Background(), model.LevelMedium, Request{Symbol: "x"})
			require.Error(t, err)
			assert.Nil(t, resp)
			tt.check(t, err)
		})
	}
}

func TestDescribeHonorsDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewClient(srv.URL).Describe(ctx, model.LevelMedium, Request{Symbol: "slow"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestDescribeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Describe(context.Background(), model.LevelMedium, Request{Symbol: "x"})
	assert.Error(t, err)
}

func TestPickDescription(t *testing.T) {
	full := &Response{ShortDescription: "S", MediumDescription: "M", LongDescription: "L"}
	assert.Equal(t, "S", PickDescription(full, model.LevelShort))
	assert.Equal(t, "M", PickDescription(full, model.LevelMedium))
	assert.Equal(t, "L", PickDescription(full, model.LevelLong))
	assert.Equal(t, "M", PickDescription(full, ""))

	tests := []struct {
		name  string
		resp  *Response
		level model.DetailLevel
		want  string
	}{
		{"short falls back to medium", &Response{MediumDescription: "M", LongDescription: "L"}, model.LevelShort, "M"},
		{"short falls back to long", &Response{LongDescription: "L"}, model.LevelShort, "L"},
		{"long falls back to medium", &Response{ShortDescription: "S", MediumDescription: "M"}, model.LevelLong, "M"},
		{"long falls back to short", &Response{ShortDescription: "S"}, model.LevelLong, "S"},
		{"medium falls back to short", &Response{ShortDescription: "S", LongDescription: "L"}, model.LevelMedium, "S"},
		{"medium falls back to long", &Response{LongDescription: "L"}, model.LevelMedium, "L"},
		{"blank counts as absent", &Response{MediumDescription: "   ", LongDescription: "L"}, model.LevelMedium, "L"},
		{"nothing", &Response{}, model.LevelMedium, ""},
		{"nil", nil, model.LevelShort, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PickDescription(tt.resp, tt.level))
		})
	}
}

func TestResponseExamplesDecode(t *testing.T) {
	raw := `{
		"examples": {
			"requests": [{"curl": "curl -X GET http://localhost/api/orders/1"}, "  ", "curl http://localhost/api/orders"],
			"response": {"status": 201, "body": {"id": 1}}
		}
	}`
	var resp Response
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))

	require.NotNil(t, resp.Examples)
	assert.Equal(t, []string{"curl -X GET http://localhost/api/orders/1", "curl http://localhost/api/orders"}, resp.Examples.Curls())
	assert.Equal(t, 201, resp.Examples.Response.StatusCode())
	assert.Equal(t, map[string]any{"id": float64(1)}, resp.Examples.Response.Body)
	assert.False(t, resp.IsEmpty(), "examples alone are usable")

	var bare Response
	require.NoError(t, json.Unmarshal([]byte(`{"examples": {"response": {}}}`), &bare))
	assert.True(t, bare.IsEmpty())
	assert.Equal(t, 200, bare.Examples.Response.StatusCode())
}
