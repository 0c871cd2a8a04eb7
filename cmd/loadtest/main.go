// Command loadtest hammers a running server with concurrent add-to-cart
// requests for one configuration, verifies they merged into a single cart
// line with the summed quantity, then checks out the cart.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	baseURL       = "http://localhost:8080"
	userID        = 1
	productID     = 1
	engineID      = 1
	totalRequests = 50
	qtyPerRequest = 2
)

type cartLine struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

type orderResult struct {
	ID         string `json:"id"`
	TotalPrice string `json:"total_price"`
}

func main() {
	client := &http.Client{Timeout: 5 * time.Second}

	// Start from an empty cart
	clearReq, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/cart?user_id=%d", baseURL, userID), nil)
	if _, err := client.Do(clearReq); err != nil {
		log.Fatalf("failed to clear cart: %v", err)
	}

	var successCount atomic.Int32
	var failCount atomic.Int32
	var wg sync.WaitGroup

	start := time.Now()
	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			body, _ := json.Marshal(map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
				"engine_id":  engineID,
				"quantity":   qtyPerRequest,
			})
			resp, err := client.Post(baseURL+"/api/cart", "application/json", bytes.NewReader(body))
			if err != nil || resp.StatusCode != http.StatusOK {
				failCount.Add(1)
				if resp != nil {
					resp.Body.Close()
				}
				return
			}
			resp.Body.Close()
			successCount.Add(1)
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	log.Printf("add-to-cart: %d ok, %d failed in %s", successCount.Load(), failCount.Load(), elapsed)

	// The merge invariant: all successful adds land on one line
	resp, err := client.Get(fmt.Sprintf("%s/api/cart?user_id=%d", baseURL, userID))
	if err != nil {
		log.Fatalf("failed to list cart: %v", err)
	}
	var lines []cartLine
	if err := json.NewDecoder(resp.Body).Decode(&lines); err != nil {
		log.Fatalf("failed to decode cart: %v", err)
	}
	resp.Body.Close()

	wantQty := int(successCount.Load()) * qtyPerRequest
	if len(lines) != 1 {
		log.Fatalf("MERGE VIOLATION: expected 1 cart line, got %d", len(lines))
	}
	if lines[0].Quantity != wantQty {
		log.Fatalf("LOST UPDATE: expected quantity %d, got %d", wantQty, lines[0].Quantity)
	}
	log.Printf("merged into one line, quantity %d", lines[0].Quantity)

	// Checkout with an idempotency key; a second identical request must fail
	checkoutBody, _ := json.Marshal(map[string]interface{}{
		"user_id":    userID,
		"request_id": uuid.NewString(),
		"full_name":  "Load Test",
		"phone":      "+10000000000",
		"email":      "loadtest@example.com",
		"address":    "1 Test Way",
		"city":       "Testville",
	})
	resp, err = client.Post(baseURL+"/api/checkout", "application/json", bytes.NewReader(checkoutBody))
	if err != nil {
		log.Fatalf("checkout failed: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		log.Fatalf("checkout failed with status %d", resp.StatusCode)
	}
	var order orderResult
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		log.Fatalf("failed to decode order: %v", err)
	}
	resp.Body.Close()
	log.Printf("order %s created, total %s", order.ID, order.TotalPrice)

	resp, err = client.Post(baseURL+"/api/checkout", "application/json", bytes.NewReader(checkoutBody))
	if err != nil {
		log.Fatalf("repeat checkout failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusCreated {
		log.Fatal("IDEMPOTENCY VIOLATION: repeated checkout request succeeded")
	}
	log.Printf("repeated checkout rejected with status %d", resp.StatusCode)
}
