// Command linkstubd runs a local record store for development, backed by a
// sqlite file. Point the tracer at it with LINKAGE_API_URL.
package main

import (
	"log"
	"os"

	"linkage-tracer/internal/stubserver"
)

func main() {
	addr := os.Getenv("LINKSTUB_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	dbPath := os.Getenv("LINKSTUB_DB")
	if dbPath == "" {
		dbPath = "linkage.db"
	}

	store, err := stubserver.OpenStore(dbPath)
	if err != nil {
		log.Fatal("failed to open store:", err)
	}
	defer store.Close()

	router := stubserver.NewServer(store).Router()

	log.Printf("record store listening on %s (db %s)", addr, dbPath)
	if err := router.Run(addr); err != nil {
		log.Fatal("server failed:", err)
	}
}
