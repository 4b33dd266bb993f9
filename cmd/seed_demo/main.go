package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/xelth-com/loadboard/internal/config"
	"github.com/xelth-com/loadboard/internal/database"
	"github.com/xelth-com/loadboard/internal/models"
	"github.com/xelth-com/loadboard/internal/services/orders"
	"github.com/xelth-com/loadboard/internal/services/products"
	"github.com/xelth-com/loadboard/internal/services/profiles"
	"github.com/xelth-com/loadboard/internal/store"
	"github.com/xelth-com/loadboard/internal/timeorder"
)

func intPtr(v int) *int { return &v }

func line(code, packs string) models.OrderLine {
	return models.OrderLine{ProductCode: code, PacksOrdered: packs}
}

func main() {
	fmt.Println("🌱 Loadboard Demo Data Seeder")
	fmt.Println(strings.Repeat("=", 60))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()
	fmt.Println("✅ Connected to database")

	fmt.Println("🔨 Running database migrations...")
	if err := db.Migrate(); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	ctx := context.Background()

	productSvc := products.NewService(store.NewProducts(db.DB))
	if err := productSvc.Load(ctx, cfg.CatalogFile); err != nil {
		log.Fatalf("❌ Failed to load catalog: %v", err)
	}
	fmt.Printf("📦 Catalog has %d products\n", productSvc.Index().Len())

	profileSvc := profiles.NewService(store.NewProfiles(db.DB))
	profile, err := profileSvc.Current(ctx, "")
	if err != nil {
		log.Fatalf("❌ Failed to resolve profile: %v", err)
	}
	fmt.Printf("👤 Seeding orders for profile %q\n", profile.Name)

	orderSvc := orders.NewService(store.NewOrders(db.DB), timeorder.Ordering{ShiftStart: cfg.Loading.ShiftStartHour})
	existing, err := orderSvc.List(ctx, profile.ID)
	if err != nil {
		log.Fatalf("❌ Failed to list orders: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("⚠️  Profile already has %d orders. Clear it first? (y/N): ", len(existing))
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("❌ Aborted. Database not modified.")
			return
		}
		fmt.Println("🗑️  Clearing existing orders...")
		for _, o := range existing {
			if err := orderSvc.Delete(ctx, o.ID); err != nil {
				log.Printf("⚠️  Failed to delete order %s: %v", o.ID, err)
			}
		}
	}

	demo := []models.Order{
		{
			Destination: "BANYO", Time: "07:30", ManifestNumber: "MN-1001", TransportCompany: "Followmont",
			TrailerType: "Flat Top", TrailerSize: "48",
			Products: []models.OrderLine{line("2006093", "40"), line("2006094", "12")},
		},
		{
			Destination: "SALISBURY", Time: "19:00", TransportCompany: "Ron Finemore",
			TrailerType: "Taut", TrailerSize: "45",
			Products: []models.OrderLine{line("901217", "25")},
		},
		{
			Destination: "DERRIMUT", Time: "03:15",
			Products: []models.OrderLine{
				line("2006093", "10"),
				{ProductCode: "PAL-CHEP", PacksOrdered: "2", ManualDetails: &models.ManualDetails{
					Category: "Pallet", Description: "CHEP pallet", Type: models.ManualTypePallet,
				}},
				{ProductCode: "9990001", PacksOrdered: "16", ManualDetails: &models.ManualDetails{
					Category: "Ceiling Batts", Description: "R4.0 trial", Type: models.ManualTypeBatt, PacksPerBale: intPtr(4),
				}},
			},
		},
	}

	for i := range demo {
		if err := orderSvc.Create(ctx, &demo[i], profile.ID); err != nil {
			log.Printf("⚠️  Failed to create order %s %s: %v", demo[i].Destination, demo[i].Time, err)
			continue
		}
		fmt.Printf("   ✓ %s %s (%d lines)\n", demo[i].Destination, demo[i].Time, len(demo[i].Products))
	}

	fmt.Println()
	fmt.Println("✅ Demo data ready. Orders in loading order:")
	sorted, err := orderSvc.List(ctx, profile.ID)
	if err != nil {
		log.Fatalf("❌ Failed to list orders: %v", err)
	}
	for _, o := range sorted {
		fmt.Printf("   %s  %s\n", o.Time, o.Destination)
	}
}
