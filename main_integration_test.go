//go:build integration

package main_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAppBinary      = "./swappy_test_app"
	testAppPort        = "8089"
	testServiceApiPort = "8091"
	testAppURL         = "http://localhost:" + testAppPort
	testServiceApiURL  = "http://localhost:" + testServiceApiPort
	startupTimeout     = 15 * time.Second
	pingEndpoint       = testAppURL + "/v1/ping"
)

// TestMain builds the binary, runs it in "all" mode against the MongoDB and
// Redis named in the environment, and tears it down afterwards.
func TestMain(m *testing.M) {
	os.Exit(runIntegration(m))
}

func runIntegration(m *testing.M) int {
	defer func() {
		log.Println("Integration Test Teardown: Cleaning up test binary...")
		_ = os.Remove(testAppBinary)
	}()

	godotenv.Load()
	mongoURI := os.Getenv("MONGO_URI_TEST")
	if mongoURI == "" {
		log.Println("MONGO_URI_TEST not set; skipping integration tests")
		return 0
	}

	log.Println("Integration Test Setup: Building application...")
	buildCmd := exec.Command("go", "build", "-o", testAppBinary, ".")
	if buildOutput, err := buildCmd.CombinedOutput(); err != nil {
		log.Printf("Failed to build application: %v\nOutput:\n%s", err, string(buildOutput))
		return 1
	}

	appCmd := exec.Command(testAppBinary, "-m", "all")
	appCmd.Env = append(os.Environ(),
		"MONGO_URI="+mongoURI,
		fmt.Sprintf("MONGO_DB_NAME=swappy_it_%d", time.Now().UnixNano()),
		"API_PORT="+testAppPort,
		"SERVICE_API_PORT="+testServiceApiPort,
		"JWT_SECRET=integration-test-secret",
		"GIN_MODE=release",
		"RATE_LIMIT_SOFT_BUCKET_SIZE=200",
		"RATE_LIMIT_SOFT_REFILL_RATE=200",
		"RATE_LIMIT_HARD_BUCKET_SIZE=400",
		"RATE_LIMIT_HARD_REFILL_RATE=400",
	)
	appCmd.Stderr = os.Stderr
	appCmd.Stdout = os.Stdout
	if err := appCmd.Start(); err != nil {
		log.Printf("Failed to start application: %v", err)
		return 1
	}
	defer func() {
		log.Println("Integration Test Teardown: Sending SIGTERM to application...")
		if err := appCmd.Process.Signal(syscall.SIGTERM); err != nil {
			_ = appCmd.Process.Kill()
			return
		}
		_, _ = appCmd.Process.Wait()
	}()

	log.Printf("Integration Test Setup: Waiting for application at %s...", pingEndpoint)
	startTime := time.Now()
	for time.Since(startTime) < startupTimeout {
		resp, err := http.Get(pingEndpoint)
		if err == nil {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK && string(body) == "pong" {
				return m.Run()
			}
		}
		time.Sleep(200 * time.Millisecond)
	}
	log.Printf("Application failed to start within %v", startupTimeout)
	return 1
}

func call(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, testAppURL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

// registerAndLogin creates a fresh user and returns its id and token.
func registerAndLogin(t *testing.T, name string) (string, string) {
	t.Helper()
	email := fmt.Sprintf("%s_%d@example.com", name, time.Now().UnixNano())
	status, user := call(t, http.MethodPost, "/api/users", "", map[string]string{
		"full_name": name, "email": email, "password": "pw-" + name,
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := call(t, http.MethodPost, "/api/auth", "", map[string]string{"email": email, "password": "pw-" + name})
	require.Equal(t, http.StatusOK, status)
	return user["id"].(string), body["token"].(string)
}

func TestIntegration_Ping(t *testing.T) {
	resp, err := http.Get(pingEndpoint)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pong", string(body))
}

func TestIntegration_DuplicateEmail(t *testing.T) {
	email := fmt.Sprintf("dup_%d@example.com", time.Now().UnixNano())
	status, _ := call(t, http.MethodPost, "/api/users", "", map[string]string{"email": email, "password": "pw"})
	require.Equal(t, http.StatusCreated, status)
	status, body := call(t, http.MethodPost, "/api/users", "", map[string]string{"email": email, "password": "pw"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "already_exists", body["code"])
}

func TestIntegration_AcceptScenario(t *testing.T) {
	_, sellerToken := registerAndLogin(t, "seller")
	_, buyerToken := registerAndLogin(t, "buyer")

	status, product := call(t, http.MethodPost, "/api/products", sellerToken, map[string]interface{}{
		"product_title": "Vintage bike", "estimated_retail_price": 150,
	})
	require.Equal(t, http.StatusCreated, status)
	productID := product["id"].(string)

	status, body := call(t, http.MethodPost, "/api/swaps", sellerToken, map[string]interface{}{
		"product_id": productID, "swap_product_title": "Own goal",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "self_swap", body["code"])

	status, swap := call(t, http.MethodPost, "/api/swaps", buyerToken, map[string]interface{}{
		"product_id": productID, "swap_product_title": "Guitar", "estimated_retail_price": 120,
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "PENDING", swap["swap_status"])
	swapID := swap["id"].(string)

	status, body = call(t, http.MethodPatch, "/api/swaps/"+swapID, buyerToken, map[string]string{"swap_status": "ACCEPTED"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized_transition", body["code"])

	status, swap = call(t, http.MethodPatch, "/api/swaps/"+swapID, sellerToken, map[string]string{"swap_status": "ACCEPTED"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ACCEPTED", swap["swap_status"])

	status, body = call(t, http.MethodPatch, "/api/swaps/"+swapID, sellerToken, map[string]string{"swap_status": "DENIED"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "already_resolved", body["code"])

	status, product = call(t, http.MethodGet, "/api/products/"+productID, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, product["is_sold"])
}

func TestIntegration_CancelScenario(t *testing.T) {
	_, sellerToken := registerAndLogin(t, "seller2")
	_, buyerToken := registerAndLogin(t, "buyer2")

	_, product := call(t, http.MethodPost, "/api/products", sellerToken, map[string]interface{}{"product_title": "Lamp"})
	productID := product["id"].(string)

	_, swap := call(t, http.MethodPost, "/api/swaps", buyerToken, map[string]interface{}{
		"product_id": productID, "swap_product_title": "Chair",
	})
	swapID := swap["id"].(string)

	status, swap := call(t, http.MethodPatch, "/api/swaps/"+swapID, buyerToken, map[string]string{"swap_status": "CANCELLED"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "CANCELLED", swap["swap_status"])

	status, product = call(t, http.MethodGet, "/api/products/"+productID, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, product["is_sold"])
}

func TestIntegration_RecentSwapEvents(t *testing.T) {
	data, _ := json.Marshal(map[string]interface{}{"method": "recentSwapEvents", "arguments": []int{5}})
	resp, err := http.Post(testServiceApiURL+"/api", "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
