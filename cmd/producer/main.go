package main

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	kafkaBroker = "localhost:9092"
	topic       = "trip-stream"
)

// Example Trip Message Structure (matches what ZonePulse expects)
type TripMessage struct {
	PickupDatetime *string `json:"pickup_datetime"`
	ZoneID         *int64  `json:"zone_id"`
}

func main() {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(kafkaBroker),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	defer func() {
		if err := writer.Close(); err != nil {
			log.Fatalf("Error closing kafka writer: %v", err)
		}
	}()
	log.Printf("Starting sample trip producer for topic: %s on broker: %s", topic, kafkaBroker)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signals
		log.Println("Shutdown signal received, stopping producer...")
		cancel()
	}()

	// Produce messages periodically
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		select {
		case <-ticker.C:
			msg := generateSampleTrip(rng)
			msgBytes, err := json.Marshal(msg)
			if err != nil {
				log.Printf("Error marshalling message: %v", err)
				continue
			}

			err = writer.WriteMessages(ctx, kafka.Message{Value: msgBytes})
			if err != nil {
				if ctx.Err() != nil { // Check if context was cancelled (shutdown)
					log.Println("Context cancelled, exiting message loop.")
					return
				}
				log.Printf("Error writing message: %v", err)
			} else {
				log.Printf("Produced message: %s", string(msgBytes))
			}

		case <-ctx.Done():
			log.Println("Producer loop stopped.")
			return
		}
	}
}

// Generates a sample trip with zone popularity skew and occasional
// missing fields, so drop counting is exercised end to end.
func generateSampleTrip(rng *rand.Rand) TripMessage {
	var pickup *string
	// ~2% chance of a missing pickup timestamp
	if rng.Float64() > 0.02 {
		// Scatter pickups over the trailing 24h so every window fills
		offset := time.Duration(rng.Int63n(int64(24 * time.Hour)))
		ts := time.Now().UTC().Add(-offset).Format(time.RFC3339Nano)
		pickup = &ts
	}

	var zoneID *int64
	// ~3% chance of a missing zone
	if rng.Float64() > 0.03 {
		var z int64
		// A handful of hot zones get most of the traffic
		if rng.Float64() < 0.6 {
			hot := []int64{132, 138, 161, 237}
			z = hot[rng.Intn(len(hot))]
		} else {
			z = int64(1 + rng.Intn(263))
		}
		zoneID = &z
	}

	return TripMessage{
		PickupDatetime: pickup,
		ZoneID:         zoneID,
	}
}
