package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	cartapp "github.com/omorfo/backend/internal/application/cart"
	"github.com/omorfo/backend/internal/domain/cart"
	"github.com/omorfo/backend/internal/infrastructure/cache"
	"github.com/omorfo/backend/internal/infrastructure/config"
	"github.com/omorfo/backend/internal/infrastructure/localstore"
	"github.com/omorfo/backend/internal/infrastructure/logger"
	"github.com/omorfo/backend/internal/infrastructure/persistence"
)

// cartctl is a local development shell for the cart sync engine: it
// drives the same Engine the storefront embeds, with the guest cart in
// the device-local file store and the authenticated cart in postgres.
func main() {
	var (
		userFlag    string
		productFlag string
		lineFlag    string
		qtyFlag     int
		sizeFlag    string
		frameFlag   string
		nameFlag    string
		priceFlag   string
		imageFlag   string
		logLevel    string
	)

	flag.StringVar(&userFlag, "user", "", "User ID; runs the command against the authenticated cart")
	flag.StringVar(&productFlag, "product", "", "Product ID (add)")
	flag.StringVar(&lineFlag, "line", "", "Cart line ID (update, remove)")
	flag.IntVar(&qtyFlag, "qty", 1, "Quantity (add, update)")
	flag.StringVar(&sizeFlag, "size", "A4", "Poster size: A4, A3, A2, 50x70")
	flag.StringVar(&frameFlag, "frame", "none", "Frame style: none, black, white, oak")
	flag.StringVar(&nameFlag, "name", "", "Display name for guest lines (add)")
	flag.StringVar(&priceFlag, "price", "0", "Unit price for guest lines (add)")
	flag.StringVar(&imageFlag, "image", "", "Image URL for guest lines (add)")
	flag.StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	guestStore, err := localstore.NewFileStore(cfg.Cart.GuestStorePath)
	if err != nil {
		log.Fatal("Failed to open guest cart store", zap.Error(err))
	}

	var userID uuid.UUID
	authenticated := userFlag != ""
	if authenticated {
		userID, err = uuid.Parse(userFlag)
		if err != nil {
			log.Fatal("Invalid -user", zap.Error(err))
		}
	}

	// The remote side is only dialed for authenticated commands; guest
	// commands work entirely against the local file.
	needsRemote := authenticated || command == "signin"
	var remote cart.RemoteStore
	if needsRemote {
		db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{Logger: log})
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer func() {
			_ = db.Close()
		}()

		productCache, err := cache.NewProductCache(cfg, log)
		if err != nil {
			log.Fatal("Failed to initialize product cache", zap.Error(err))
		}
		defer func() {
			_ = productCache.Close()
		}()

		productProvider := cache.NewCachedProductProvider(
			persistence.NewGormProductRepository(db.DB), productCache, cfg.Cache.TTL, log)
		remote = cartapp.NewService(
			persistence.NewGormCartItemRepository(db.DB), productProvider, nil, log)
	}

	engine := cartapp.NewEngine(cartapp.NewContainer(), guestStore, remote, nil, log, cartapp.EngineConfig{
		RemoteTimeout:            cfg.Cart.RemoteTimeout,
		ClearGuestStoreOnSignOut: cfg.Cart.ClearGuestStoreOnSignOut,
	})

	ctx := context.Background()

	status := cartapp.Guest()
	if authenticated && command != "signin" {
		status = cartapp.Authenticated(userID)
	}
	if err := engine.Initialize(ctx, status); err != nil {
		log.Fatal("Failed to load cart", zap.Error(err))
	}

	switch command {
	case "show":
		// Initialize already loaded the view

	case "add":
		productID, err := uuid.Parse(productFlag)
		if err != nil {
			log.Fatal("Invalid -product", zap.Error(err))
		}
		price, err := decimal.NewFromString(priceFlag)
		if err != nil {
			log.Fatal("Invalid -price", zap.Error(err))
		}
		input := cartapp.AddItemInput{
			ProductID: productID,
			Name:      nameFlag,
			UnitPrice: price,
			ImageURL:  imageFlag,
			Quantity:  qtyFlag,
			Size:      cart.PosterSize(sizeFlag),
			Frame:     cart.FrameStyle(frameFlag),
		}
		if err := engine.AddItem(ctx, input); err != nil {
			log.Fatal("Add failed", zap.Error(err))
		}

	case "update":
		lineID, err := uuid.Parse(lineFlag)
		if err != nil {
			log.Fatal("Invalid -line", zap.Error(err))
		}
		if err := engine.UpdateItem(ctx, lineID, qtyFlag); err != nil {
			log.Fatal("Update failed", zap.Error(err))
		}

	case "remove":
		lineID, err := uuid.Parse(lineFlag)
		if err != nil {
			log.Fatal("Invalid -line", zap.Error(err))
		}
		if err := engine.RemoveItem(ctx, lineID); err != nil {
			log.Fatal("Remove failed", zap.Error(err))
		}

	case "clear":
		if err := engine.ClearCart(ctx); err != nil {
			log.Fatal("Clear failed", zap.Error(err))
		}

	case "signin":
		if userFlag == "" {
			log.Fatal("signin requires -user")
		}
		report, err := engine.SignIn(ctx, userID)
		if err != nil {
			log.Fatal("Sign-in merge failed", zap.Error(err))
		}
		fmt.Printf("merge: planned=%d succeeded=%d failed=%d\n",
			report.Planned, report.Succeeded, report.Failed)

	case "signout":
		if err := engine.SignOut(ctx); err != nil {
			log.Fatal("Sign-out failed", zap.Error(err))
		}

	default:
		printUsage()
		os.Exit(1)
	}

	printCart(engine.Snapshot())
}

func printCart(c cart.Cart) {
	if c.IsEmpty() {
		fmt.Println("cart is empty")
		return
	}
	for i := range c.Items {
		item := &c.Items[i]
		fmt.Printf("%s  %-30s %s/%s  x%d  %s\n",
			item.ID, item.Name, item.Size, item.Frame, item.Quantity, item.Subtotal().StringFixed(2))
	}
	fmt.Printf("total: %s  items: %d\n", c.Total.StringFixed(2), c.ItemCount)
}

func printUsage() {
	fmt.Println(`Usage: cartctl [flags] <command>

Commands:
  show      Print the cart (guest by default, -user for authenticated)
  add       Add a line: -product, -qty, -size, -frame (-name/-price/-image for guest)
  update    Set a line's quantity: -line, -qty
  remove    Remove a line: -line
  clear     Empty the cart
  signin    Merge the guest cart into a user's cart: -user
  signout   Drop back to the guest cart view: -user

Flags:
  -user       User ID for authenticated commands
  -log-level  Log level (debug, info, warn, error)`)
}
