package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	baseURL = "http://localhost:8080"
)

// Smoke test for a locally running server. Start the backend with
// STORE_PROVIDER=memory FACEMATCH_PROVIDER=mock and run this binary.
func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	// 1. Create Process
	fmt.Println("1. Creating Process...")
	created, ok := sendRequest("POST", "/processes", map[string]any{
		"name":     fmt.Sprintf("smoke-%d", time.Now().Unix()),
		"username": "smoke",
	})
	if !ok {
		fmt.Println("FAILED: Create process")
		os.Exit(1)
	}
	processID, _ := created["id"].(string)
	if processID == "" {
		fmt.Println("FAILED: Create process returned no id")
		os.Exit(1)
	}
	fmt.Println("PASSED: Create process")

	// 2. Attach Files
	fmt.Println("2. Attaching Files...")
	_, ok = sendRequest("POST", "/processes/"+processID+"/files", map[string]any{
		"files": []map[string]string{
			{"file_name": "alice.png", "base64": "QWxpY2U="},
			{"file_name": "bob.png", "base64": "Qm9i"},
			{"file_name": "alice-copy.png", "base64": "QWxpY2U="},
		},
	})
	if !ok {
		fmt.Println("FAILED: Attach files")
		os.Exit(1)
	}
	fmt.Println("PASSED: Attach files")

	// 3. Start Deduplication
	fmt.Println("3. Starting Deduplication...")
	started, ok := sendRequest("POST", "/processes/"+processID+"/start", nil)
	if !ok {
		fmt.Println("FAILED: Start process")
		os.Exit(1)
	}
	fmt.Printf("Process finished with status %v\n", started["status"])
	fmt.Println("PASSED: Start process")

	// 4. Report
	fmt.Println("4. Fetching Report...")
	if _, ok = sendRequest("GET", "/processes/"+processID+"/report", nil); !ok {
		fmt.Println("FAILED: Report")
		os.Exit(1)
	}
	fmt.Println("PASSED: Report")
}

func sendRequest(method, endpoint string, payload any) (map[string]any, bool) {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return nil, false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return nil, false
	}
	fmt.Printf("Response: %s\n", string(respBody))

	var decoded map[string]any
	_ = json.Unmarshal(respBody, &decoded)
	return decoded, true
}
