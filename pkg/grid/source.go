package grid

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"filegrid/pkg/tree"
)

var sourceClient = &http.Client{Timeout: 10 * time.Second}

// FetchSource retrieves a hierarchy from a URL returning a JSON array of
// nested nodes.
func FetchSource(url string) ([]tree.Node, error) {
	resp, err := sourceClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source returned status %d", resp.StatusCode)
	}
	var nodes []tree.Node
	if err := json.NewDecoder(resp.Body).Decode(&nodes); err != nil {
		return nil, fmt.Errorf("decode source payload: %w", err)
	}
	return nodes, nil
}
