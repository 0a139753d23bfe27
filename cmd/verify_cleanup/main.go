package main

import (
	"log"
	"os"
	"time"

	"keymaster/internal/database"
)

// A verification stays pending only while its background reconciliation
// goroutine is in flight. Rows still pending after this long belong to a
// process that died mid-reconcile.
const staleAfter = time.Hour

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	cutoff := time.Now().Add(-staleAfter)

	// Rows that never got an outcome fail so the guest can retry. Status
	// never moves backwards, so only still-pending rows are touched.
	res1 := db.Exec(
		`UPDATE reservations
		 SET status = 'failed',
		     verification_pending = false,
		     verification_reason = 'Verification was interrupted. Please try again.'
		 WHERE verification_pending = true AND status = 'pending' AND updated_at < ?`,
		cutoff,
	)
	if res1.Error != nil {
		log.Fatalf("cleanup stale verifications failed: %v", res1.Error)
	}

	// Rows that moved on anyway just lose the stale flag.
	res2 := db.Exec(
		`UPDATE reservations
		 SET verification_pending = false
		 WHERE verification_pending = true AND updated_at < ?`,
		cutoff,
	)
	if res2.Error != nil {
		log.Fatalf("cleanup stale flags failed: %v", res2.Error)
	}

	log.Printf("verification cleanup completed: failed=%d cleared=%d", res1.RowsAffected, res2.RowsAffected)
}
