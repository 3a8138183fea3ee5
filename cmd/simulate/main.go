package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"checkout-gateway/internal/config"
	"checkout-gateway/internal/database"
	"checkout-gateway/internal/domain"
	"checkout-gateway/internal/infrastructure/payment"
	"checkout-gateway/internal/logging"
	"checkout-gateway/internal/repo"
	"checkout-gateway/internal/service"
)

// simulate runs checkouts end to end against the mock gateway and a scratch
// SQLite file, mixing genuine and forged payment confirmations.
func main() {
	n := flag.Int("orders", 10, "number of checkouts to simulate")
	forgeEvery := flag.Int("forge-every", 3, "forge the signature of every n-th checkout (0 disables)")
	dbPath := flag.String("db", "", "SQLite file to use (default: temporary file)")
	flag.Parse()

	ctx := context.Background()

	path := *dbPath
	if path == "" {
		dir, err := os.MkdirTemp("", "checkout-simulate")
		if err != nil {
			log.Fatal(err)
		}
		defer os.RemoveAll(dir)
		path = filepath.Join(dir, "orders.db")
	}

	db, err := database.Open(ctx, config.Database{Driver: config.DriverSQLite, Path: path})
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	const secret = "simulation_secret"
	gateway := payment.NewMockGateway("rzp_test_simulation", secret)
	orderRepo := repo.NewOrderRepo(db, config.DriverSQLite)
	logger := logging.New(config.Logs{Level: "warn", Service: "checkout-simulate"})
	orderService := service.NewOrderService(orderRepo, gateway, secret, []string{"INR"}, logger)

	fmt.Printf("--- STARTING SIMULATION (%d ORDERS) ---\n", *n)
	counts := map[domain.OrderStatus]int{}
	for i := 1; i <= *n; i++ {
		created, err := orderService.CreateOrder(ctx, service.CreateOrderRequest{
			Amount:   int64(50000 * i),
			Currency: "INR",
			Product:  "Morning Kit",
			Quantity: i%20 + 1,
		})
		if err != nil {
			fmt.Printf("[%d] Create failed: %v\n", i, err)
			continue
		}

		paymentID, signature, err := gateway.Pay(created.OrderID)
		if err != nil {
			fmt.Printf("[%d] Pay failed: %v\n", i, err)
			continue
		}
		forged := *forgeEvery > 0 && i%*forgeEvery == 0
		if forged {
			signature = payment.Sign(created.OrderID, paymentID, "attacker_guess")
		}

		res, err := orderService.VerifyPayment(ctx, domain.PaymentConfirmation{
			OrderID:   created.OrderID,
			PaymentID: paymentID,
			Signature: signature,
		})
		if err != nil {
			fmt.Printf("[%d] Verify failed: %v\n", i, err)
			continue
		}

		stored, err := orderService.GetOrder(ctx, created.OrderID)
		if err != nil {
			fmt.Printf("[%d] Lookup failed: %v\n", i, err)
			continue
		}
		counts[stored.Status]++
		fmt.Printf("[%d] %s forged=%t -> verify: %s, DB status: %s\n", i, created.OrderID, forged, res.Status, stored.Status)
	}

	fmt.Println("---------------------------------------------------")
	fmt.Printf("paid=%d failed=%d created=%d\n", counts[domain.OrderPaid], counts[domain.OrderFailed], counts[domain.OrderCreated])
}
