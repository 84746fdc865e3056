package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/foodmarket/provision-backend/config"
	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/internal/app/repository"
	"github.com/foodmarket/provision-backend/internal/app/repository/docstore"
	"github.com/foodmarket/provision-backend/internal/db"
	"github.com/foodmarket/provision-backend/pkg/firebase"
	"github.com/foodmarket/provision-backend/pkg/logger"
	"github.com/spf13/pflag"
	"github.com/xuri/excelize/v2"
)

type options struct {
	customersFile string
	productsFile  string
	sheet         string
	dryRun        bool
	yes           bool
}

func main() {
	flagSet := pflag.NewFlagSet("import", pflag.ContinueOnError)
	var opts options
	flagSet.StringVar(&opts.customersFile, "customers", "", "XLSX file with customers (이름, 생년월일, 성별, 상태, 주소, 전화번호, 비고)")
	flagSet.StringVar(&opts.productsFile, "products", "", "XLSX file with products (이름, 가격, 바코드, 분류)")
	flagSet.StringVar(&opts.sheet, "sheet", "", "sheet name to read (default: first sheet)")
	flagSet.BoolVar(&opts.dryRun, "dry-run", false, "parse and report without writing")
	flagSet.BoolVarP(&opts.yes, "yes", "y", false, "skip the confirmation prompt")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "import: %v\n", err)
		os.Exit(2)
	}
	if opts.customersFile == "" && opts.productsFile == "" {
		fmt.Fprintln(os.Stderr, "import: at least one of --customers or --products is required")
		flagSet.PrintDefaults()
		os.Exit(2)
	}

	logger.Initialize(logger.Config{Level: "info", Format: "console", EnableColor: true})

	if err := run(context.Background(), opts); err != nil {
		logger.Fatal("Import failed", err)
	}
}

func run(ctx context.Context, opts options) error {
	var (
		customers []model.Customer
		products  []model.Product
	)
	if opts.customersFile != "" {
		parsed, err := parseFile(opts.customersFile, opts.sheet, readCustomers)
		if err != nil {
			return err
		}
		customers = parsed
	}
	if opts.productsFile != "" {
		parsed, err := parseFile(opts.productsFile, opts.sheet, readProducts)
		if err != nil {
			return err
		}
		products = parsed
	}

	fmt.Printf("Customers to import: %d\nProducts to import: %d\n", len(customers), len(products))
	if opts.dryRun {
		fmt.Println("Dry run, nothing written.")
		return nil
	}
	if !opts.yes && !confirm("Do you want to proceed with the import? (yes/no): ") {
		fmt.Println("Import cancelled.")
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	customerRepo, productRepo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	created, failed := 0, 0
	for i := range customers {
		if err := customerRepo.Create(ctx, &customers[i]); err != nil {
			failed++
			logger.Warn("Failed to import customer", map[string]interface{}{
				"name":  customers[i].Name,
				"error": err.Error(),
			})
			continue
		}
		created++
	}
	for i := range products {
		if err := productRepo.Create(ctx, &products[i]); err != nil {
			failed++
			logger.Warn("Failed to import product", map[string]interface{}{
				"barcode": products[i].Barcode,
				"error":   err.Error(),
			})
			continue
		}
		created++
	}

	logger.Info("Import completed", map[string]interface{}{
		"created": created,
		"failed":  failed,
	})
	return nil
}

func parseFile[T any](path, sheet string, read func(*excelize.File, string) ([]T, []rowError, error)) ([]T, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file %s: %w", path, err)
	}
	defer f.Close()

	items, skipped, err := read(f, sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, s := range skipped {
		fmt.Printf("  skipped %s\n", s)
	}
	return items, nil
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "yes" || answer == "y"
}

// openStore connects to the configured backend and returns its repositories.
func openStore(ctx context.Context, cfg *config.Config) (repository.CustomerRepository, repository.ProductRepository, func(), error) {
	if cfg.Store.Driver == "firestore" {
		fb, err := firebase.Init(ctx, &cfg.Firebase, true, false)
		if err != nil {
			return nil, nil, nil, err
		}
		return docstore.NewCustomerRepository(fb.Firestore), docstore.NewProductRepository(fb.Firestore), fb.Close, nil
	}

	conn, err := db.Open(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if err := db.MigrateDB(conn); err != nil {
		closeDB()
		return nil, nil, nil, err
	}
	return repository.NewCustomerRepository(conn), repository.NewProductRepository(conn), closeDB, nil
}
