package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/xelth-com/loadboard/internal/catalog"
	"github.com/xelth-com/loadboard/internal/config"
	"github.com/xelth-com/loadboard/internal/database"
	"github.com/xelth-com/loadboard/internal/loading"
	"github.com/xelth-com/loadboard/internal/models"
	"github.com/xelth-com/loadboard/internal/session"
	"github.com/xelth-com/loadboard/internal/store"
	"github.com/xelth-com/loadboard/internal/timeorder"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		fmt.Printf("❌ Failed to connect: %v\n", err)
		fmt.Println("\n💡 Try starting the server first:")
		fmt.Println("   go run ./cmd/api")
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()

	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║          📊 Loadboard Data Report                         ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	products, err := store.NewProducts(db.DB).All(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to read products: %v", err)
	}
	idx := catalog.NewIndex(products)

	orders, err := store.NewOrders(db.DB).List(ctx, "")
	if err != nil {
		log.Fatalf("❌ Failed to read orders: %v", err)
	}
	sessions, err := store.NewLoadSessions(db.DB).List(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to read load sessions: %v", err)
	}

	fmt.Println("📈 DATABASE STATISTICS")
	fmt.Println("──────────────────────────────────────────────────────────")
	fmt.Printf("  Products:       %3d\n", idx.Len())
	fmt.Printf("  Orders:         %3d\n", len(orders))
	fmt.Printf("  Load sessions:  %3d\n", len(sessions))
	fmt.Println()

	ordering := timeorder.Ordering{ShiftStart: cfg.Loading.ShiftStartHour}
	byKey := make(map[string][]models.LoadSession)
	for _, s := range sessions {
		byKey[s.OrderKey()] = append(byKey[s.OrderKey()], s)
	}

	fmt.Println("🚚 ORDERS")
	fmt.Println("──────────────────────────────────────────────────────────")
	for _, o := range ordering.SortOrders(orders) {
		fmt.Printf("  %s  %-14s %d lines\n", o.Time, o.Destination, len(o.Products))

		group := byKey[o.Key()]
		delete(byKey, o.Key())
		keep, drop, ok := session.Rank(group, "")
		if !ok {
			fmt.Println("      └─ not started")
			continue
		}
		if len(drop) > 0 {
			fmt.Printf("      ⚠️  %d duplicate sessions\n", len(drop))
		}

		m, err := loading.NewMachine(o, idx, loading.ParseProgress(keep.Progress))
		if err != nil {
			fmt.Printf("      ❌ %v\n", err)
			continue
		}
		for _, st := range m.Statuses() {
			fmt.Printf("      └─ %-28s %3d/%-3d packs  %s\n",
				catalog.DisplayName(lineOf(o, st.LineID), idx), st.CurrentPacks, st.TargetPacks, st.Status)
		}
		if m.Done() {
			fmt.Println("      ✅ loaded")
		}
	}

	orphans := 0
	for _, group := range byKey {
		orphans += len(group)
	}
	if orphans > 0 {
		fmt.Println()
		fmt.Printf("🧹 %d sessions reference no order and will be removed by cleanup\n", orphans)
	}
}

func lineOf(o models.Order, lineID string) models.OrderLine {
	for i, l := range o.Products {
		if loading.LineID(o.ID, l.ProductCode, i) == lineID {
			return l
		}
	}
	return models.OrderLine{}
}
