// Command shakeplot uploads one accelerometer CSV to the graph service and
// saves the returned PNG, mirroring what the printer-side macros do after a
// measurement.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

var (
	urlFlag     = flag.String("url", "http://localhost:5000", "base URL of the graph service")
	typeFlag    = flag.String("type", "", "macro type: axes_map, belts, shaper, vibrations or static")
	fileFlag    = flag.String("file", "", "path of the accelerometer CSV to upload")
	outFlag     = flag.String("out", "", "output PNG path (default: <input>_result.png)")
	timeoutFlag = flag.Duration("timeout", 60*time.Second, "request timeout")
)

func main() {
	flag.Parse()

	if *typeFlag == "" || *fileFlag == "" {
		fmt.Fprintln(os.Stderr, "both -type and -file are required")
		flag.Usage()
		os.Exit(2)
	}

	outPath := *outFlag
	if outPath == "" {
		base := strings.TrimSuffix(filepath.Base(*fileFlag), filepath.Ext(*fileFlag))
		outPath = base + "_result.png"
	}

	if err := run(*urlFlag, *typeFlag, *fileFlag, outPath, *timeoutFlag); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("graph saved to %s\n", outPath)
}

func run(baseURL, macroType, csvPath, outPath string, timeout time.Duration) error {
	data, err := os.ReadFile(csvPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", csvPath, err)
	}

	body, contentType, err := buildUpload(filepath.Base(csvPath), data)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/process/%s", strings.TrimRight(baseURL, "/"), macroType)
	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(endpoint, contentType, body)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %s", resp.Status, serviceError(payload))
	}

	if err := os.WriteFile(outPath, payload, 0644); err != nil {
		return fmt.Errorf("failed to save graph: %w", err)
	}
	return nil
}

// buildUpload assembles the multipart body with the CSV under the "file"
// field, the way the service expects it.
func buildUpload(filename string, data []byte) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("failed to write upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}

// serviceError extracts the message from an {"error": ...} response body,
// falling back to the raw body.
func serviceError(payload []byte) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(payload, &parsed); err == nil && parsed.Error != "" {
		return parsed.Error
	}
	return strings.TrimSpace(string(payload))
}
