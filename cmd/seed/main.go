package main

import (
	"context"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"keymaster/internal/database"
	"keymaster/internal/domain"
	"keymaster/internal/repository"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "keymaster.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM reservations")
	db.Exec("DELETE FROM properties")
	db.Exec("DELETE FROM host_users")

	ctx := context.Background()
	properties := repository.NewPropertyRepository(db)
	reservations := repository.NewReservationRepository(db)
	hosts := repository.NewHostUserRepository(db)

	// ================== PROPERTIES ==================
	log.Println("Creating properties...")

	villa := &domain.Property{
		Name:          "Paradise Villa",
		Category:      domain.CategoryVilla,
		Address:       "123 Ocean Drive, Miami, FL",
		ImageURL:      "https://picsum.photos/seed/villa/1200/800",
		ImageHint:     "tropical villa",
		GoogleMapsURL: "https://www.google.com/maps/search/?api=1&query=123+Ocean+Drive,Miami,FL",
		CheckinInstructions: domain.CheckinInstructions{
			WiFiNetwork:  "Villa_WiFi",
			WiFiPassword: "Sunshine123!",
			DoorCode:     "1984",
			Rules: []string{
				"No smoking indoors.",
				"Quiet hours after 10 PM.",
				"Check-out is at 11 AM.",
				"Please leave the keys on the kitchen counter upon departure.",
			},
		},
		ContractTemplate: `<h2>Short-Term Rental Agreement</h2>
<p>This agreement is between the Host and the Guest, {{guest_name}}.</p>
<p><strong>Property:</strong> {{property_name}}</p>
<p><strong>Address:</strong> {{property_address}}</p>
<p><strong>Check-in:</strong> {{checkin_date}}</p>
<p><strong>Check-out:</strong> {{checkout_date}}</p>
<h3>House Rules</h3>
<ul>
<li>No smoking indoors.</li>
<li>No parties or events.</li>
<li>Quiet hours are from 10 PM to 8 AM.</li>
</ul>
<p>By signing below, you agree to all terms and conditions of this rental agreement.</p>`,
	}
	if err := properties.Create(ctx, villa); err != nil {
		log.Fatal("seed property failed:", err)
	}
	log.Println("Property created:", villa.ID)

	loft := &domain.Property{
		Name:          "Downtown Loft",
		Category:      domain.CategoryApartment,
		Address:       "456 Main Street, New York, NY",
		ImageURL:      "https://picsum.photos/seed/loft/1200/800",
		ImageHint:     "city loft",
		GoogleMapsURL: "https://www.google.com/maps/search/?api=1&query=456+Main+Street,New+York,NY",
		CheckinInstructions: domain.CheckinInstructions{
			WiFiNetwork:  "LoftLife_5G",
			WiFiPassword: "CityLights!5G",
			DoorCode:     "9876",
			Rules: []string{
				"No pets allowed.",
				"Please respect the neighbors.",
				"Check-out is at 12 PM.",
			},
		},
		ContractTemplate: `<h2>Loft Rental Agreement</h2>
<p>This agreement is made between the Host and {{guest_name}}.</p>
<p><strong>Property:</strong> {{property_name}}</p>
<p><strong>Address:</strong> {{property_address}}</p>
<p><strong>Check-in:</strong> {{checkin_date}}</p>
<p><strong>Check-out:</strong> {{checkout_date}}</p>
<h3>Apartment Rules</h3>
<ul>
<li>No smoking of any kind.</li>
<li>Maximum 2 guests.</li>
</ul>
<p>Your signature below confirms your agreement to these terms.</p>`,
	}
	if err := properties.Create(ctx, loft); err != nil {
		log.Fatal("seed property failed:", err)
	}
	log.Println("Property created:", loft.ID)

	// ================== RESERVATIONS ==================
	log.Println("Creating reservations...")

	seedReservations := []domain.Reservation{
		{
			BookingReference: "AIRBNB-11A",
			PropertyID:       villa.ID,
			GuestName:        "Elon Tusk",
			CheckInDate:      "2024-09-01",
			CheckOutDate:     "2024-09-08",
			Status:           domain.ReservationPending,
		},
		{
			BookingReference: "AIRBNB-22B",
			PropertyID:       loft.ID,
			GuestName:        "Ada Lovelace",
			CheckInDate:      "2024-09-05",
			CheckOutDate:     "2024-09-10",
			Status:           domain.ReservationVerified,
		},
	}
	for i := range seedReservations {
		if err := reservations.Create(ctx, &seedReservations[i]); err != nil {
			log.Fatal("seed reservation failed:", err)
		}
		log.Println("Reservation created:", seedReservations[i].BookingReference)
	}

	// ================== HOST USER ==================
	log.Println("Creating host user...")

	hash, err := bcrypt.GenerateFromPassword([]byte("host123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("hash password failed:", err)
	}
	if err := hosts.Create(ctx, &domain.HostUser{
		Email:        "host@keymaster.com",
		PasswordHash: string(hash),
		Name:         "KeyMaster Host",
	}); err != nil {
		log.Fatal("seed host failed:", err)
	}
	log.Println("Host created: host@keymaster.com / host123")

	log.Println("Seeding complete.")
}
