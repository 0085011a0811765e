package main

import (
	"flag"
	"log"
	"os"

	"go-almoxarifado/internal/repository"
	"go-almoxarifado/internal/snapshot"
	"go-almoxarifado/pkg/database"

	"github.com/joho/godotenv"
)

// Operator CLI for full-database backup and restore, for use when the API is
// down or before risky maintenance.
//
//	snapshot -export backup.json
//	snapshot -import backup.json
func main() {
	exportPath := flag.String("export", "", "write a snapshot of the database to this file")
	importPath := flag.String("import", "", "replace the database with the snapshot in this file")
	flag.Parse()

	if (*exportPath == "") == (*importPath == "") {
		log.Fatal("exactly one of -export or -import is required")
	}

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	store := repository.NewSnapshotStore(db)

	if *exportPath != "" {
		snap, err := store.ExportAll()
		if err != nil {
			log.Fatalf("export failed: %v", err)
		}
		data, err := snapshot.MarshalWire(snap)
		if err != nil {
			log.Fatalf("failed to encode snapshot: %v", err)
		}
		if err := os.WriteFile(*exportPath, data, 0o600); err != nil {
			log.Fatalf("failed to write %s: %v", *exportPath, err)
		}
		log.Printf("exported %d items and %d movements to %s",
			len(snap.Items), len(snap.Movements), *exportPath)
		return
	}

	data, err := os.ReadFile(*importPath)
	if err != nil {
		log.Fatalf("failed to read %s: %v", *importPath, err)
	}
	snap, err := snapshot.UnmarshalWire(data)
	if err != nil {
		log.Fatalf("failed to decode snapshot: %v", err)
	}
	if err := store.ReplaceAll(snap); err != nil {
		log.Fatalf("import failed: %v", err)
	}
	log.Printf("imported %d items and %d movements from %s",
		len(snap.Items), len(snap.Movements), *importPath)
}
