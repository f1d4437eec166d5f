// seed_analyses.go — standalone script to post sample assessment documents to the Stature API.
//
// Reads a JSON Lines file where each line is one request body for
// POST /api/v1/analyses (subject_id plus a raw document).
//
// Usage:
//
//	go run scripts/seed_analyses.go -file samples.jsonl -api http://localhost:8700 -client seed
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
)

func main() {
	filePath := flag.String("file", "samples.jsonl", "path to JSONL file of analysis requests")
	apiURL := flag.String("api", "http://localhost:8700", "Stature API base URL")
	clientID := flag.String("client", "seed", "X-Client-ID header value")
	dryRun := flag.Bool("dry-run", false, "print requests without posting")
	flag.Parse()

	f, err := os.Open(*filePath)
	if err != nil {
		log.Fatalf("open %s: %v", *filePath, err)
	}
	defer f.Close()

	var requests []map[string]any
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		var req map[string]any
		if err := json.Unmarshal(line, &req); err != nil {
			log.Printf("skip line %d: %v", lineNo, err)
			continue
		}
		requests = append(requests, req)
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("read %s: %v", *filePath, err)
	}

	if *dryRun {
		for i, req := range requests {
			subject, _ := req["subject_id"].(string)
			domain, _ := req["domain"].(string)
			fmt.Printf("[%d] subject=%s domain=%s\n", i+1, subject, domain)
		}
		return
	}

	client := &http.Client{}
	created, skipped := 0, 0
	for i, req := range requests {
		body, _ := json.Marshal(req)
		httpReq, err := http.NewRequest("POST", *apiURL+"/api/v1/analyses", bytes.NewReader(body))
		if err != nil {
			log.Printf("skip request %d: %v", i+1, err)
			skipped++
			continue
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("X-Client-ID", *clientID)

		resp, err := client.Do(httpReq)
		if err != nil {
			log.Printf("skip request %d: %v", i+1, err)
			skipped++
			continue
		}
		resp.Body.Close()

		if resp.StatusCode == http.StatusCreated {
			created++
		} else {
			log.Printf("skip request %d: status %d", i+1, resp.StatusCode)
			skipped++
		}
	}

	log.Printf("done: %d created, %d skipped", created, skipped)
}
