// seed inserts development sample data for local testing; run with go run ./cmd/seed.
// Idempotent: skips inserts if the dev employee (dev@hrms.example) already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"hrms-platform/backend/internal/config"
	customerdomain "hrms-platform/backend/internal/customer/domain"
	customerrepo "hrms-platform/backend/internal/customer/repository"
	"hrms-platform/backend/internal/db"
	employeedomain "hrms-platform/backend/internal/employee/domain"
	employeerepo "hrms-platform/backend/internal/employee/repository"
	"hrms-platform/backend/internal/security"
)

const (
	devEmployeeEmail = "dev@hrms.example"
	devCustomerEmail = "customer@client.example"
	devPassword      = "password123"
)

// devFixtures builds the dev employee+account and customer+access rows. The
// id columns are typed UUID, so IDs are freshly generated; the email
// existence check in main keeps reruns idempotent.
func devFixtures(passwordHash string, now time.Time) (*employeedomain.Employee, *employeedomain.Account, *customerdomain.Customer, *customerdomain.Access) {
	emp := &employeedomain.Employee{
		ID:            uuid.New().String(),
		OfficialEmail: devEmployeeEmail,
		FirstName:     "Dev",
		LastName:      "Employee",
		Status:        employeedomain.EmployeeStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	account := &employeedomain.Account{
		ID:           uuid.New().String(),
		EmployeeID:   emp.ID,
		PasswordHash: passwordHash,
		Role:         "hr_manager",
		Status:       employeedomain.AccountStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	cust := &customerdomain.Customer{
		ID:          uuid.New().String(),
		Email:       devCustomerEmail,
		CompanyName: "Acme Client",
		Status:      customerdomain.CustomerStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	access := &customerdomain.Access{
		ID:           uuid.New().String(),
		CustomerID:   cust.ID,
		PasswordHash: passwordHash,
		Status:       customerdomain.AccessStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return emp, account, cust, access
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	employees := employeerepo.NewPostgresRepository(conn)
	customers := customerrepo.NewPostgresRepository(conn)
	ctx := context.Background()

	existing, err := employees.GetByOfficialEmail(ctx, devEmployeeEmail)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (dev@hrms.example exists). Skipping.")
		os.Exit(0)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	emp, account, cust, access := devFixtures(passwordHash, time.Now().UTC())

	if err := employees.Create(ctx, emp); err != nil {
		log.Fatalf("create dev employee: %v", err)
	}
	if err := employees.CreateAccount(ctx, account); err != nil {
		log.Fatalf("create dev account: %v", err)
	}
	if err := customers.Create(ctx, cust); err != nil {
		log.Fatalf("create dev customer: %v", err)
	}
	if err := customers.CreateAccess(ctx, access); err != nil {
		log.Fatalf("create dev access: %v", err)
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Employee login: %s / %s\n", devEmployeeEmail, devPassword)
	fmt.Printf("Customer login: %s / %s\n", devCustomerEmail, devPassword)
}
