package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sangkips/dentalbill-api/internal/config"
	"github.com/sangkips/dentalbill-api/internal/domain/entity"
	"github.com/sangkips/dentalbill-api/pkg/feecalc"
	"github.com/sangkips/dentalbill-api/pkg/utils"
)

// RolePermissions is the permission set every seeded role carries
var RolePermissions = map[string][]string{
	entity.RoleAdmin: {
		entity.PermManagePatients,
		entity.PermManageReceipts,
		entity.PermManageCatalog,
		entity.PermManageFees,
		entity.PermViewReports,
		entity.PermManageUsers,
	},
	entity.RoleDoctor: {
		entity.PermManagePatients,
		entity.PermManageReceipts,
		entity.PermViewReports,
	},
	entity.RoleFrontDesk: {
		entity.PermManagePatients,
		entity.PermManageReceipts,
	},
}

// SeedDefaultData seeds roles, permissions, the admin account, the billing
// settings row, one fee row per payment method and the service catalog.
// Existing rows are left untouched, so running it twice is harmless.
func SeedDefaultData(db *gorm.DB, cfg *config.Config, log zerolog.Logger) error {
	log.Info().Msg("seeding default data")

	if err := seedAccessControl(db); err != nil {
		return err
	}
	if err := seedAdmin(db, cfg.Admin, log); err != nil {
		return err
	}
	if err := seedBilling(db, cfg.Billing); err != nil {
		return err
	}

	catalog, err := LoadCatalog(cfg.Billing.CatalogFile)
	if err != nil {
		return err
	}
	created, err := seedCatalog(db, catalog)
	if err != nil {
		return err
	}

	log.Info().Int("services_created", created).Msg("default data seeding completed")
	return nil
}

func seedAccessControl(db *gorm.DB) error {
	byName := make(map[string]entity.Permission)
	for _, name := range RolePermissions[entity.RoleAdmin] {
		perm := entity.Permission{Name: name}
		if err := db.Where(entity.Permission{Name: name}).FirstOrCreate(&perm).Error; err != nil {
			return fmt.Errorf("seed permission %s: %w", name, err)
		}
		byName[name] = perm
	}

	for roleName, permNames := range RolePermissions {
		role := entity.Role{Name: roleName}
		if err := db.Where(entity.Role{Name: roleName}).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", roleName, err)
		}
		perms := make([]entity.Permission, 0, len(permNames))
		for _, name := range permNames {
			perms = append(perms, byName[name])
		}
		if err := db.Model(&role).Association("Permissions").Replace(perms); err != nil {
			return fmt.Errorf("seed role %s permissions: %w", roleName, err)
		}
	}
	return nil
}

func seedAdmin(db *gorm.DB, admin config.AdminConfig, log zerolog.Logger) error {
	if admin.Email == "" || admin.Password == "" {
		log.Warn().Msg("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin account")
		return nil
	}

	var existing entity.User
	err := db.Where("LOWER(email) = ?", strings.ToLower(admin.Email)).First(&existing).Error
	if err == nil {
		log.Info().Str("email", admin.Email).Msg("admin account already exists")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := utils.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	var role entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&role).Error; err != nil {
		return fmt.Errorf("load admin role: %w", err)
	}

	user := entity.User{
		Name:     admin.Name,
		Email:    strings.ToLower(admin.Email),
		Password: hashed,
		Active:   true,
		Roles:    []entity.Role{role},
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}
	log.Info().Str("email", user.Email).Msg("admin account created")
	return nil
}

func seedBilling(db *gorm.DB, billing config.BillingConfig) error {
	var count int64
	if err := db.Model(&entity.BillingSettings{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		settings := entity.BillingSettings{
			Currency:              billing.Currency,
			TerminalChargeEnabled: billing.TerminalChargeEnabled,
			TerminalChargeRate:    billing.TerminalChargeRate,
		}
		// gorm skips zero values that have a column default, so write the
		// flag explicitly when terminal charges start disabled
		if err := db.Create(&settings).Error; err != nil {
			return fmt.Errorf("seed billing settings: %w", err)
		}
		if !billing.TerminalChargeEnabled {
			if err := db.Model(&settings).Update("terminal_charge_enabled", false).Error; err != nil {
				return err
			}
		}
	}

	fees := billing.FeePercentages()
	for _, method := range feecalc.Methods {
		fee := entity.PaymentMethodFee{Method: method, FeePercentage: fees[method]}
		if err := db.Where(entity.PaymentMethodFee{Method: method}).Attrs(entity.PaymentMethodFee{FeePercentage: fees[method]}).FirstOrCreate(&fee).Error; err != nil {
			return fmt.Errorf("seed fee for %s: %w", method, err)
		}
	}
	return nil
}

func seedCatalog(db *gorm.DB, catalog []CatalogEntry) (int, error) {
	created := 0
	for _, entry := range catalog {
		var count int64
		if err := db.Model(&entity.Service{}).Where("LOWER(name) = ?", entity.ServiceKey(entry.Name)).Count(&count).Error; err != nil {
			return created, err
		}
		if count > 0 {
			continue
		}

		svc := entity.Service{Name: entry.Name, Percentage: entry.Percentage, Active: true}
		if entry.Description != "" {
			desc := entry.Description
			svc.Description = &desc
		}
		if err := db.Create(&svc).Error; err != nil {
			return created, fmt.Errorf("seed service %s: %w", entry.Name, err)
		}
		created++
	}
	return created, nil
}
