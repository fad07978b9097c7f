package nlu

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestParse(t *testing.T) {
	var testCases = []struct {
		description string
		content     string
		expect      *Result
		expectErr   bool
	}{
		{
			description: "fenced json",
			content:     "```json\n{\"intent\":\"balance_inquiry\",\"entities\":{\"card_id\":\"6222001\",\"requested_amount\":2000},\"confidence\":0.92}\n```",
			expect: &Result{Intent: "balance_inquiry", Confidence: 0.92, Entities: map[string]interface{}{
				"card_id": "6222001", "requested_amount": float64(2000),
			}},
		},
		{
			description: "string confidence",
			content:     `{"intent":"transfer_limit_issue","confidence":"0.7"}`,
			expect:      &Result{Intent: "transfer_limit_issue", Confidence: 0.7, Entities: map[string]interface{}{}},
		},
		{
			description: "missing intent",
			content:     `{"confidence":0.9}`,
			expect:      &Result{Intent: UnknownIntent, Confidence: 0.9, Entities: map[string]interface{}{}},
		},
		{
			description: "percent confidence clamped",
			content:     `{"intent":"balance_inquiry","confidence":85}`,
			expect:      &Result{Intent: "balance_inquiry", Confidence: 1, Entities: map[string]interface{}{}},
		},
		{
			description: "negative confidence clamped",
			content:     `{"intent":"balance_inquiry","confidence":-0.2}`,
			expect:      &Result{Intent: "balance_inquiry", Confidence: 0, Entities: map[string]interface{}{}},
		},
		{description: "not json", content: "I cannot help", expectErr: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			actual, err := Parse(testCase.content)
			if testCase.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.expect, actual)
		})
	}
}

func TestResult_NeedsClarification(t *testing.T) {
	assert.True(t, Unknown().NeedsClarification(DefaultMinConfidence))
	assert.True(t, (&Result{Intent: "balance_inquiry", Confidence: 0.59}).NeedsClarification(DefaultMinConfidence))
	assert.False(t, (&Result{Intent: "balance_inquiry", Confidence: 0.6}).NeedsClarification(DefaultMinConfidence))
	var nilResult *Result
	assert.True(t, nilResult.NeedsClarification(DefaultMinConfidence))
}

func TestClient_Extract(t *testing.T) {
	var captured string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		captured = string(data)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"intent\":\"balance_inquiry\",\"entities\":{\"customer_id\":\"c1\"},\"confidence\":0.95}"}}]}`))
	}))
	defer server.Close()

	client := NewClient(&Config{URL: server.URL + "/v1/", APIKey: "secret", Model: "test", Temperature: 0.3, TopP: 0.95}, nil)
	result := client.Extract(context.Background(), "customer c1 asks: what is my balance")
	assert.Equal(t, "balance_inquiry", result.Intent)
	assert.Equal(t, "c1", result.Entities["customer_id"])
	assert.Equal(t, 0.95, result.Confidence)

	request := gjson.Parse(captured)
	assert.Equal(t, "test", request.Get("model").String())
	assert.Equal(t, 0.95, request.Get("top_p").Float())
	assert.Contains(t, request.Get("messages.1.content").String(), "balance_inquiry - balance inquiry")
	assert.Contains(t, request.Get("messages.1.content").String(), "customer c1 asks: what is my balance")
}

func TestClient_Extract_Failure(t *testing.T) {
	var testCases = []struct {
		description string
		handler     http.HandlerFunc
		timeoutMs   int
	}{
		{
			description: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			description: "empty choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"choices":[]}`))
			},
		},
		{
			description: "timeout",
			timeoutMs:   20,
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(time.Second):
				}
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			server := httptest.NewServer(testCase.handler)
			defer server.Close()
			client := NewClient(&Config{URL: server.URL, TimeoutMs: testCase.timeoutMs}, nil)
			result := client.Extract(context.Background(), "hello")
			assert.Equal(t, Unknown(), result)
		})
	}
}
