package main

import (
	"flag"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	initialStock  = 10
	maxCapacity   = 50
	totalRequests = 100
)

type item struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	MaxCapacity int    `json:"maxCapacity"`
	Quantity    int    `json:"quantity"`
	Type        string `json:"type"`
}

type incrementRequest struct {
	Amount int `json:"amount"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the item service")
	flag.Parse()

	client := resty.New().
		SetBaseURL(*baseURL).
		SetTimeout(10 * time.Second)

	// Create a fresh item to hammer
	var created item
	resp, err := client.R().
		SetBody(item{
			Name:        "stress-" + uuid.NewString()[:8],
			Brand:       "Stress",
			MaxCapacity: maxCapacity,
			Quantity:    initialStock,
			Type:        "LAGER",
		}).
		SetResult(&created).
		Post("/api/v1/items")
	if err != nil {
		log.Fatalf("failed to create item: %v", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		log.Fatalf("failed to create item: %d %s", resp.StatusCode(), resp.String())
	}
	log.Printf("created item %s (id=%d) with stock %d/%d", created.Name, created.ID, initialStock, maxCapacity)

	// Run stress test
	var successCount atomic.Int32
	var exceededCount atomic.Int32
	var errorCount atomic.Int32
	var wg sync.WaitGroup

	incrementPath := "/api/v1/items/" + strconv.FormatInt(created.ID, 10) + "/increment"
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			resp, err := client.R().
				SetHeader("Idempotency-Key", uuid.NewString()).
				SetBody(incrementRequest{Amount: 1}).
				Patch(incrementPath)
			switch {
			case err != nil:
				errorCount.Add(1)
			case resp.StatusCode() == http.StatusOK:
				successCount.Add(1)
			case resp.StatusCode() == http.StatusBadRequest:
				exceededCount.Add(1)
			default:
				errorCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Verify final stock
	var final item
	if _, err := client.R().SetResult(&final).Get("/api/v1/items/" + created.Name); err != nil {
		log.Fatalf("failed to read item: %v", err)
	}

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Total Requests:    %d\n", totalRequests)
	fmt.Printf("Accepted:          %d\n", successCount.Load())
	fmt.Printf("Stock Exceeded:    %d\n", exceededCount.Load())
	fmt.Printf("Errors:            %d\n", errorCount.Load())
	fmt.Printf("Final Stock:       %d/%d\n", final.Quantity, final.MaxCapacity)
	fmt.Printf("Elapsed:           %v\n", elapsed)
	fmt.Println("==========================================")

	expected := int32(maxCapacity - initialStock)
	if successCount.Load() == expected && final.Quantity == maxCapacity {
		fmt.Println("PASS: Capacity never exceeded")
	} else {
		fmt.Printf("FAIL: Expected %d accepted increments and stock %d\n", expected, maxCapacity)
	}

	// Cleanup
	if _, err := client.R().Delete("/api/v1/items/" + strconv.FormatInt(created.ID, 10)); err != nil {
		log.Warnf("failed to delete item %d: %v", created.ID, err)
	}
}
