package enricher

import (
	"net"

	"github.com/mssola/useragent"
	"github.com/oschwald/geoip2-golang"
)

// Enricher adds request-derived context (browser, OS, geo) to collected
// events before they go downstream.
type Enricher struct {
	geoIP *geoip2.Reader
}

func NewEnricher(geoIPPath string) *Enricher {
	// GeoIP is optional; enrichment degrades to user-agent only
	var geoIP *geoip2.Reader
	if geoIPPath != "" {
		geoIP, _ = geoip2.Open(geoIPPath)
	}

	return &Enricher{geoIP: geoIP}
}

func (e *Enricher) Enrich(event map[string]interface{}, userAgentString, clientIP string) map[string]interface{} {
	if userAgentString != "" {
		ua := useragent.New(userAgentString)
		browser, version := ua.Browser()
		event["browser"] = browser
		event["browser_version"] = version
		event["os"] = ua.OS()
		event["device_type"] = deviceType(ua)
	}

	if e.geoIP != nil && clientIP != "" {
		ip := net.ParseIP(clientIP)
		if ip != nil {
			record, err := e.geoIP.City(ip)
			if err == nil {
				event["country"] = record.Country.IsoCode
				if name, ok := record.City.Names["en"]; ok {
					event["city"] = name
				}
			}
		}
	}

	return event
}

func deviceType(ua *useragent.UserAgent) string {
	if ua.Mobile() {
		return "mobile"
	}
	if ua.Bot() {
		return "bot"
	}
	return "desktop"
}

func (e *Enricher) Close() {
	if e.geoIP != nil {
		e.geoIP.Close()
	}
}
