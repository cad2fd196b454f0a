package database

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"

	"github.com/gridpanel/gridpanel/cache"
	"github.com/gridpanel/gridpanel/config"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn  *sql.DB
	Cache cache.Cache
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		instance = &Datasource{Conn: con, Cache: nil}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}

	// The database may still be coming up when the process starts; retry
	// the ping with exponential backoff before giving up.
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	err = backoff.Retry(db.Ping, bo)
	if err != nil {
		log.Printf("database connection error: %v", err)
		return nil, errors.Wrap(err, "database unreachable")
	}

	for _, create := range []func(*sql.DB) error{
		createUserTable,
		createCountryTable,
		createCityTable,
		createCurrencyTable,
		createRoleTable,
		createSettingTable,
		createCmsBlockTable,
		createBrandTable,
		createModelTable,
		createErrorLogTable,
	} {
		if err := create(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// auditColumns are shared by every master table: soft-delete flags plus
// creator/modifier stamps resolved to usernames on read.
const auditColumns = `
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	is_locked BOOLEAN NOT NULL DEFAULT FALSE,
	is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
	created_by TEXT,
	created_at TIMESTAMP NOT NULL DEFAULT NOW(),
	modified_by TEXT,
	modified_at TIMESTAMP,
	deleted_by TEXT,
	deleted_at TIMESTAMP`

func createCountryTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS countries (
			id SERIAL PRIMARY KEY,
			country_uuid TEXT NOT NULL UNIQUE,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			dial_code TEXT,` + auditColumns + `
		)
	`)
	if err != nil {
		log.Printf("Error creating countries table: %v", err)
	}
	return err
}

func createCityTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS cities (
			id SERIAL PRIMARY KEY,
			city_uuid TEXT NOT NULL UNIQUE,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			country_uuid TEXT REFERENCES countries(country_uuid),` + auditColumns + `
		)
	`)
	if err != nil {
		log.Printf("Error creating cities table: %v", err)
	}
	return err
}

func createCurrencyTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS currencies (
			id SERIAL PRIMARY KEY,
			currency_uuid TEXT NOT NULL UNIQUE,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			symbol TEXT,` + auditColumns + `
		)
	`)
	if err != nil {
		log.Printf("Error creating currencies table: %v", err)
	}
	return err
}

func createRoleTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS roles (
			id SERIAL PRIMARY KEY,
			role_uuid TEXT NOT NULL UNIQUE,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			description TEXT,` + auditColumns + `
		)
	`)
	if err != nil {
		log.Printf("Error creating roles table: %v", err)
	}
	return err
}

func createSettingTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			id SERIAL PRIMARY KEY,
			setting_uuid TEXT NOT NULL UNIQUE,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			value TEXT,
			settingdate DATE,` + auditColumns + `
		)
	`)
	if err != nil {
		log.Printf("Error creating settings table: %v", err)
	}
	return err
}

func createCmsBlockTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS cms_blocks (
			id SERIAL PRIMARY KEY,
			cmsblock_uuid TEXT NOT NULL UNIQUE,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			title TEXT,
			content TEXT,` + auditColumns + `
		)
	`)
	if err != nil {
		log.Printf("Error creating cms_blocks table: %v", err)
	}
	return err
}

func createBrandTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS brands (
			id SERIAL PRIMARY KEY,
			brand_uuid TEXT NOT NULL UNIQUE,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,` + auditColumns + `
		)
	`)
	if err != nil {
		log.Printf("Error creating brands table: %v", err)
	}
	return err
}

func createModelTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS models (
			id SERIAL PRIMARY KEY,
			model_uuid TEXT NOT NULL UNIQUE,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			brand_id INTEGER REFERENCES brands(id),` + auditColumns + `
		)
	`)
	if err != nil {
		log.Printf("Error creating models table: %v", err)
	}
	return err
}

func createUserTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			user_uuid TEXT NOT NULL UNIQUE,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			first_name TEXT,
			last_name TEXT,
			role_uuid TEXT,` + auditColumns + `
		)
	`)
	if err != nil {
		log.Printf("Error creating users table: %v", err)
	}
	return err
}

func createErrorLogTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS error_logs (
			id SERIAL PRIMARY KEY,
			api_name TEXT,
			method TEXT,
			payload TEXT,
			message TEXT,
			stack TEXT,
			error_code INTEGER,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		log.Printf("Error creating error_logs table: %v", err)
	}
	return err
}
