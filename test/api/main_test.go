package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

var baseURL = "http://localhost:8080/api/v1"

// apiResponse is the envelope every endpoint wraps its payload in.
type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (r apiResponse) IsSuccess() bool {
	return r.Status == "success"
}

// makeRequest sends a JSON request to the running server and decodes
// the response envelope.
func makeRequest(t *testing.T, method, path string, body interface{}) (int, apiResponse) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var response apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.StatusCode, response
}

// decodeData unmarshals the envelope's data field into target.
func decodeData(t *testing.T, resp apiResponse, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(resp.Data, target); err != nil {
		t.Fatalf("failed to decode response data: %v", err)
	}
}

func uniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func checkAPIServer() error {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(baseURL + "/health/live")
	if err != nil {
		return fmt.Errorf("API server not reachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API server unhealthy: %s", resp.Status)
	}
	return nil
}

func TestMain(m *testing.M) {
	if url := os.Getenv("API_URL"); url != "" {
		baseURL = url + "/api/v1"
	}

	// These tests drive a running server. Without one they are
	// skipped rather than failed, so unit test runs stay green.
	maxRetries := 3
	for i := 0; i < maxRetries; i++ {
		err := checkAPIServer()
		if err == nil {
			break
		}
		if i == maxRetries-1 {
			fmt.Printf("skipping API tests: %v\n", err)
			os.Exit(0)
		}
		fmt.Printf("waiting for API server (attempt %d/%d)...\n", i+1, maxRetries)
		time.Sleep(2 * time.Second)
	}

	os.Exit(m.Run())
}
