package main

import (
	"fmt"
	"net"
	"sync"

	"github.com/oschwald/geoip2-golang"
)

// GeoIPService provides country lookups for client IPs using a local
// MaxMind GeoLite2 database. Optional; all lookups degrade to empty
// results when disabled.
type GeoIPService struct {
	db *geoip2.Reader
	mu sync.RWMutex
}

// NewGeoIPService opens the GeoIP database at the given path
func NewGeoIPService(dbPath string) (*GeoIPService, error) {
	db, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open GeoIP database: %w", err)
	}

	return &GeoIPService{db: db}, nil
}

// CountryCode returns the ISO country code for an IP address, or "" when
// the IP is unparseable or not in the database
func (g *GeoIPService) CountryCode(ipStr string) string {
	if g == nil {
		return ""
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return ""
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	record, err := g.db.Country(ip)
	if err != nil {
		return ""
	}
	return record.Country.IsoCode
}

// Close releases the database
func (g *GeoIPService) Close() {
	if g == nil {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.db.Close()
}
