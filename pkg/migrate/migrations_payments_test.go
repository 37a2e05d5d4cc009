package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPaymentOrdersMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_payment_orders.sql")

	checks := []string{
		"CREATE TYPE payment_order_status AS ENUM ('pending', 'completed', 'failed', 'cancelled')",
		"CONSTRAINT ux_payment_orders_gateway_reference UNIQUE (gateway_reference)",
		"CONSTRAINT ux_payment_orders_order_number UNIQUE (order_number)",
		"FOREIGN KEY (payment_order_id) REFERENCES payment_orders(id) ON DELETE CASCADE",
		"CHECK (quantity > 0)",
		"DROP TABLE IF EXISTS payment_orders",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPurchasesMigrationEnforcesOrderDealUniqueness(t *testing.T) {
	content := readMigration(t, "*_create_purchases.sql")

	checks := []string{
		"CONSTRAINT ux_purchases_order_deal UNIQUE (payment_order_id, deal_id)",
		"CHECK (quantity > 0)",
		"DROP TABLE IF EXISTS purchases",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestDealsMigrationGuardsStock(t *testing.T) {
	content := readMigration(t, "*_create_deals.sql")

	checks := []string{
		"CHECK (stock_quantity >= 0)",
		"CHECK (sold_quantity >= 0)",
		"DROP TABLE IF EXISTS deals",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q found", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestMigrationsDirValidates(t *testing.T) {
	entries, err := os.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	if len(entries) == 0 {
		t.Fatalf("expected migrations to exist")
	}
}
