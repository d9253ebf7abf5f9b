package main

import (
	"github.com/DeiVid1337/Boss-Pods-Api/internal/model"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/config"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/database"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeds the database with an admin account and demo data for local
// development. Safe to run more than once: existing rows are kept.
func main() {
	if err := godotenv.Load(); err != nil {
		// Fallback values are used when no .env is present
	}

	appConfig, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	db, err := database.InitDB(&appConfig.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}

	err = database.MigrateModels(
		&model.Store{},
		&model.User{},
		&model.Product{},
		&model.StoreProduct{},
		&model.Customer{},
		&model.Sale{},
		&model.SaleItem{},
		&model.SellerInventory{},
	)
	if err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	admin := user(db, log, "Admin", "admin@bosspods.local", "password123", model.RoleAdmin, nil)

	central := store(db, log, "Boss Pods Central", "Av. Paulista 1000", "+55 11 99999-0001")
	mall := store(db, log, "Boss Pods Mall", "Shopping Center Norte", "+55 11 99999-0002")

	manager := user(db, log, "Maria Manager", "maria@bosspods.local", "password123", model.RoleManager, &central.ID)
	seller := user(db, log, "Pedro Seller", "pedro@bosspods.local", "password123", model.RoleSeller, &central.ID)
	user(db, log, "Sofia Seller", "sofia@bosspods.local", "password123", model.RoleSeller, &mall.ID)

	mint := product(db, log, "Ignite", "V50", "Icy Mint")
	grape := product(db, log, "Ignite", "V50", "Grape Ice")
	berry := product(db, log, "Elf Bar", "BC5000", "Blue Razz")
	watermelon := product(db, log, "Lost Mary", "OS5000", "Watermelon")

	sp := storeProduct(db, log, central, mint, 45.00, 90.00, 120, 10)
	storeProduct(db, log, central, grape, 45.00, 90.00, 80, 10)
	storeProduct(db, log, central, berry, 60.00, 110.00, 40, 5)
	storeProduct(db, log, mall, mint, 45.00, 95.00, 60, 10)
	storeProduct(db, log, mall, watermelon, 55.00, 100.00, 30, 5)

	customer(db, log, "Joao Silva", "+55 11 98888-0001")
	customer(db, log, "Ana Souza", "+55 11 98888-0002")

	// Give the demo seller a small holding so the inventory endpoints have
	// data to show
	holding(db, log, seller, sp, 10)

	log.Info("Seed completed",
		zap.Uint("admin_id", admin.ID),
		zap.Uint("manager_id", manager.ID),
		zap.Uint("seller_id", seller.ID))
}

func user(db *gorm.DB, log *zap.Logger, name, email, password string, role model.Role, storeID *uint) *model.User {
	var existing model.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		return &existing
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password", zap.Error(err))
	}

	u := model.User{
		Name:     name,
		Email:    email,
		Password: string(hash),
		Role:     role,
		StoreID:  storeID,
		IsActive: true,
	}
	if err := db.Create(&u).Error; err != nil {
		log.Fatal("Failed to seed user", zap.String("email", email), zap.Error(err))
	}
	log.Info("Seeded user", zap.String("email", email), zap.String("role", string(role)))
	return &u
}

func store(db *gorm.DB, log *zap.Logger, name, address, phone string) *model.Store {
	var existing model.Store
	if err := db.Where("name = ?", name).First(&existing).Error; err == nil {
		return &existing
	}

	s := model.Store{Name: name, Address: address, Phone: phone, IsActive: true}
	if err := db.Create(&s).Error; err != nil {
		log.Fatal("Failed to seed store", zap.String("name", name), zap.Error(err))
	}
	log.Info("Seeded store", zap.String("name", name))
	return &s
}

func product(db *gorm.DB, log *zap.Logger, brand, name, flavor string) *model.Product {
	var existing model.Product
	err := db.Where("brand = ? AND name = ? AND flavor = ?", brand, name, flavor).First(&existing).Error
	if err == nil {
		return &existing
	}

	p := model.Product{Brand: brand, Name: name, Flavor: flavor}
	if err := db.Create(&p).Error; err != nil {
		log.Fatal("Failed to seed product", zap.String("name", p.FullName()), zap.Error(err))
	}
	log.Info("Seeded product", zap.String("name", p.FullName()))
	return &p
}

func storeProduct(db *gorm.DB, log *zap.Logger, s *model.Store, p *model.Product, cost, sale float64, stock, minStock int) *model.StoreProduct {
	var existing model.StoreProduct
	err := db.Where("store_id = ? AND product_id = ?", s.ID, p.ID).First(&existing).Error
	if err == nil {
		return &existing
	}

	sp := model.StoreProduct{
		StoreID:       s.ID,
		ProductID:     p.ID,
		CostPrice:     cost,
		SalePrice:     sale,
		StockQuantity: stock,
		MinStockLevel: minStock,
		IsActive:      true,
	}
	if err := db.Create(&sp).Error; err != nil {
		log.Fatal("Failed to seed store product",
			zap.Uint("store_id", s.ID),
			zap.Uint("product_id", p.ID),
			zap.Error(err))
	}
	return &sp
}

func customer(db *gorm.DB, log *zap.Logger, name, phone string) *model.Customer {
	var existing model.Customer
	if err := db.Where("phone = ?", phone).First(&existing).Error; err == nil {
		return &existing
	}

	c := model.Customer{Name: name, Phone: phone}
	if err := db.Create(&c).Error; err != nil {
		log.Fatal("Failed to seed customer", zap.String("name", name), zap.Error(err))
	}
	return &c
}

func holding(db *gorm.DB, log *zap.Logger, u *model.User, sp *model.StoreProduct, quantity int) {
	var existing model.SellerInventory
	err := db.Where("user_id = ? AND store_product_id = ?", u.ID, sp.ID).First(&existing).Error
	if err == nil {
		return
	}

	h := model.SellerInventory{UserID: u.ID, StoreProductID: sp.ID, Quantity: quantity}
	if err := db.Create(&h).Error; err != nil {
		log.Fatal("Failed to seed seller inventory", zap.Uint("user_id", u.ID), zap.Error(err))
	}
	log.Info("Seeded seller inventory", zap.Uint("user_id", u.ID), zap.Int("quantity", quantity))
}
