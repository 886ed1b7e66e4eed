// Command seed-demo uploads a file through a running API instance and
// creates a time-mode definition pointing at it, printing the scan URL.
//
// Usage:
//
//	go run scripts/seed-demo.go -api http://localhost:8080 -file menu.pdf -start 09:00 -end 17:00
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

func main() {
	var (
		apiBase = flag.String("api", "http://localhost:8080", "Base URL of the API")
		file    = flag.String("file", "", "Path of the payload file to upload")
		name    = flag.String("name", "", "Display name (defaults to the file name)")
		start   = flag.String("start", "00:00", "Window start (HH:MM)")
		end     = flag.String("end", "23:59", "Window end (HH:MM)")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "-file is required")
		os.Exit(1)
	}
	if *name == "" {
		*name = filepath.Base(*file)
	}

	client := &http.Client{Timeout: 30 * time.Second}

	ref, err := upload(client, *apiBase, *file)
	if err != nil {
		fmt.Fprintln(os.Stderr, "upload:", err)
		os.Exit(1)
	}
	fmt.Println("payload ref:", ref)

	id, err := createDefinition(client, *apiBase, ref, *name, *start, *end)
	if err != nil {
		fmt.Fprintln(os.Stderr, "create definition:", err)
		os.Exit(1)
	}

	fmt.Println("definition id:", id)
	fmt.Printf("scan URL: %s/code/%s\n", *apiBase, id)
}

func upload(client *http.Client, apiBase, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, apiBase+"/upload", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}

	var desc struct {
		PayloadRef string `json:"payloadRef"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&desc); err != nil {
		return "", err
	}
	return desc.PayloadRef, nil
}

func createDefinition(client *http.Client, apiBase, ref, name, start, end string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"mode": "time",
		"configurations": []map[string]string{
			{"payloadRef": ref, "displayName": name, "start": start, "end": end},
		},
	})
	if err != nil {
		return "", err
	}

	resp, err := client.Post(apiBase+"/definitions", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, respBody)
	}

	var def struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&def); err != nil {
		return "", err
	}
	return def.ID, nil
}
