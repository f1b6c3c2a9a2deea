package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedCategories(ctx, pool)
	seedDrugs(ctx, pool)
	seedBatches(ctx, pool)

	log.Println("Seeding completed successfully!")
}

func seedCategories(ctx context.Context, pool *pgxpool.Pool) {
	categories := []struct {
		name, description string
	}{
		{"Analgesics", "Pain relief and fever reducers"},
		{"Antibiotics", "Prescription antibacterial drugs"},
		{"Antihistamines", "Allergy relief"},
		{"Antacids", "Digestive and stomach acid relief"},
		{"Vitamins & Supplements", "Nutritional supplements"},
	}
	for _, c := range categories {
		_, err := pool.Exec(ctx, `
			INSERT INTO categories (name, description)
			VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING`, c.name, c.description)
		if err != nil {
			log.Fatalf("Failed to seed category %q: %v", c.name, err)
		}
	}
	log.Printf("Seeded %d categories", len(categories))
}

func seedDrugs(ctx context.Context, pool *pgxpool.Pool) {
	drugs := []struct {
		name, generic, brand, dosage, form, barcode, category string
	}{
		{"Paracetamol", "Acetaminophen", "Panadol", "500mg", "tablet", "6001234567890", "Analgesics"},
		{"Ibuprofen", "Ibuprofen", "Brufen", "200mg", "tablet", "6001234567891", "Analgesics"},
		{"Amoxicillin", "Amoxicillin", "Amoxil", "250mg", "capsule", "6001234567892", "Antibiotics"},
		{"Azithromycin", "Azithromycin", "Zithromax", "500mg", "tablet", "6001234567893", "Antibiotics"},
		{"Cetirizine", "Cetirizine", "Zyrtec", "10mg", "tablet", "6001234567894", "Antihistamines"},
		{"Loratadine", "Loratadine", "Claritin", "10mg", "tablet", "6001234567895", "Antihistamines"},
		{"Omeprazole", "Omeprazole", "Losec", "20mg", "capsule", "6001234567896", "Antacids"},
		{"Vitamin C", "Ascorbic acid", "Celin", "500mg", "tablet", "6001234567897", "Vitamins & Supplements"},
	}
	for _, d := range drugs {
		_, err := pool.Exec(ctx, `
			INSERT INTO drugs (name, generic_name, brand, dosage, form, barcode, category_id)
			SELECT $1, $2, $3, $4, $5, $6, c.id
			FROM categories c WHERE c.name = $7
			ON CONFLICT (barcode) DO NOTHING`,
			d.name, d.generic, d.brand, d.dosage, d.form, d.barcode, d.category)
		if err != nil {
			log.Fatalf("Failed to seed drug %q: %v", d.name, err)
		}
	}
	log.Printf("Seeded %d drugs", len(drugs))
}

func seedBatches(ctx context.Context, pool *pgxpool.Pool) {
	now := time.Now()
	batches := []struct {
		barcode, number     string
		quantity            int
		cost, selling       string
		expiryMonthsFromNow int
	}{
		{"6001234567890", "PCM-2401", 120, "5.00", "12.50", 18},
		{"6001234567891", "IBU-2402", 80, "6.50", "15.00", 14},
		{"6001234567892", "AMX-2403", 60, "18.00", "35.00", 10},
		{"6001234567893", "AZI-2404", 40, "45.00", "85.00", 12},
		{"6001234567894", "CET-2405", 100, "4.00", "10.00", 20},
		{"6001234567895", "LOR-2406", 8, "5.50", "12.00", 16},
		{"6001234567896", "OMP-2407", 50, "22.00", "40.00", 2},
		{"6001234567897", "VTC-2408", 150, "3.00", "8.00", 24},
	}
	for _, b := range batches {
		_, err := pool.Exec(ctx, `
			INSERT INTO drug_batches (drug_id, batch_number, quantity, cost_price, selling_price, expiry_date)
			SELECT d.id, $2, $3, $4, $5, $6
			FROM drugs d WHERE d.barcode = $1
			ON CONFLICT (drug_id, batch_number) DO NOTHING`,
			b.barcode, b.number, b.quantity, b.cost, b.selling, now.AddDate(0, b.expiryMonthsFromNow, 0))
		if err != nil {
			log.Fatalf("Failed to seed batch %q: %v", b.number, err)
		}
	}
	log.Printf("Seeded %d batches", len(batches))
}
